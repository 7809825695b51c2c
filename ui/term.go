package ui

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Control sequences for the screens and the cursor.
const (
	enableAlternateScreen  = "\x1b[?1049h"
	disableAlternateScreen = "\x1b[?1049l"
	hideCursor             = "\x1b[?25l"
	showCursor             = "\x1b[?25h"
	clearScreen            = "\x1b[2J"
	cursorHome             = "\x1b[H"
	bell                   = "\a"
)

// Term drives the controlling terminal: raw mode, the alternate screen and
// the cursor. The termios saved before raw mode is restored bit-exact on
// every shutdown path.
type Term struct {
	in    *os.File
	out   *os.File
	saved *term.State
}

// NewTerm returns a terminal on stdin/stdout.
func NewTerm() *Term {
	return &Term{in: os.Stdin, out: os.Stdout}
}

// EnableRaw saves the terminal attributes and enters raw mode.
func (t *Term) EnableRaw() error {
	saved, err := term.MakeRaw(int(t.in.Fd()))
	if err != nil {
		return fmt.Errorf("failed to enable the raw terminal: %w", err)
	}
	if t.saved == nil {
		t.saved = saved
	}
	return nil
}

// RestoreAttrs restores the attributes saved by EnableRaw.
func (t *Term) RestoreAttrs() error {
	if t.saved == nil {
		return nil
	}
	if err := term.Restore(int(t.in.Fd()), t.saved); err != nil {
		return fmt.Errorf("failed to restore the terminal attributes: %w", err)
	}
	return nil
}

// TerminalSize queries the size of the controlling terminal. Components are
// constructed against it before the app runs.
func TerminalSize() (Size, error) {
	return NewTerm().Size()
}

// Size queries the current terminal size.
func (t *Term) Size() (Size, error) {
	ws, err := unix.IoctlGetWinsize(int(t.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return Size{}, fmt.Errorf("failed to get the terminal size: %w", err)
	}
	return Size{Rows: int(ws.Row), Columns: int(ws.Col)}, nil
}

// EnableAlternateScreen switches to the alternate screen.
func (t *Term) EnableAlternateScreen() {
	_, _ = t.out.WriteString(enableAlternateScreen)
}

// DisableAlternateScreen switches back to the main screen.
func (t *Term) DisableAlternateScreen() {
	_, _ = t.out.WriteString(disableAlternateScreen)
}

// HideCursor hides the cursor.
func (t *Term) HideCursor() {
	_, _ = t.out.WriteString(hideCursor)
}

// ShowCursor shows the cursor.
func (t *Term) ShowCursor() {
	_, _ = t.out.WriteString(showCursor)
}

// ClearScreen clears the screen.
func (t *Term) ClearScreen() {
	_, _ = t.out.WriteString(clearScreen)
}

// Bell rings the terminal bell.
func (t *Term) Bell() {
	_, _ = t.out.WriteString(bell)
}
