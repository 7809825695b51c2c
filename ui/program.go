package ui

import (
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"github.com/sirupsen/logrus"
)

// runProgram hands the terminal to a program via a pty sized like the UI.
// Keystrokes from the input forwarder are written to the pty master; resizes
// propagate with TIOCSWINSZ; the child's output is copied to stdout, through
// the alternate-screen filter when the program asks for it. It returns the
// terminal size current when the child exited.
func (a *App) runProgram(program Program, termEvents <-chan TermEvent) Size {
	log := logrus.WithField("program", program.Filename())
	log.Info("Running program...")

	cmd := exec.Command(program.Filename(), program.Args()...)
	if cwd := program.Cwd(); cwd != "" {
		cmd.Dir = cwd
	}
	cmd.Env = append(os.Environ(), program.Env()...)

	winsize := &pty.Winsize{
		Rows: uint16(a.size.Rows),
		Cols: uint16(a.size.Columns),
	}
	master, err := pty.StartWithSize(cmd, winsize)
	if err != nil {
		log.Errorf("Failed to start program: %v", err)
		return a.size
	}

	// Monitor the child.
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cmd.Wait(); err != nil {
			log.Debugf("Program exited: %v", err)
		}
	}()

	// Copy the child's output to stdout. The copy ends with an EIO read
	// error when the child exits and the pty slave closes.
	var out io.Writer = os.Stdout
	if program.FilterAltScreen() {
		out = newAltScreenFilter(os.Stdout)
	}
	piped := make(chan struct{})
	go func() {
		defer close(piped)
		_, _ = io.Copy(out, master)
	}()

	exited := false
	for !exited {
		select {
		case event, ok := <-termEvents:
			if !ok {
				exited = true
				break
			}
			switch {
			case event.Key != nil:
				if _, err := master.Write(event.Key.Bytes); err != nil {
					exited = true
				}
			case event.Resize != nil:
				a.size = *event.Resize
				resize := &pty.Winsize{
					Rows: uint16(a.size.Rows),
					Cols: uint16(a.size.Columns),
				}
				if err := pty.Setsize(master, resize); err != nil {
					log.Warnf("Failed to signal terminal resize to program: %v", err)
				}
			}
		case <-done:
			exited = true
		}
	}

	<-done
	_ = master.Close()
	<-piped

	cleanup := program.Cleanup()
	if cleanup.EnableRawTerminal {
		if err := a.term.EnableRaw(); err != nil {
			log.Warnf("Failed to re-enable the raw terminal: %v", err)
		}
	}
	if cleanup.HideCursor {
		a.term.HideCursor()
	}
	a.term.ClearScreen()

	log.Info("Done running program.")
	return a.size
}
