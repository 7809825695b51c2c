package ui

import (
	"fmt"
)

// VimArgs say where vim should land.
type VimArgs struct {
	Path   string
	Line   int
	Column int
}

// Vim is the external editor program.
type Vim struct {
	args VimArgs
}

// NewVim returns a vim program for args.
func NewVim(args VimArgs) *Vim {
	return &Vim{args: args}
}

// Filename returns the executable name.
func (v *Vim) Filename() string {
	return "vim"
}

// Args returns the vim command line.
func (v *Vim) Args() []string {
	var args []string

	if v.args.Path != "" {
		args = append(args, v.args.Path)
	}
	if v.args.Line > 0 {
		args = append(args, fmt.Sprintf("+%d", v.args.Line))
	}
	if v.args.Column > 1 {
		args = append(args, "-c", fmt.Sprintf("norm %dl", v.args.Column-1))
	}

	// See https://github.com/vim/vim/issues/6365
	args = append(args, "--cmd", "set t_u7=")

	return args
}

// Cwd keeps the current working directory.
func (v *Vim) Cwd() string {
	return ""
}

// Env adds nothing.
func (v *Vim) Env() []string {
	return nil
}

// FilterAltScreen strips vim's alternate-screen toggles so the enclosing
// alternate screen survives.
func (v *Vim) FilterAltScreen() bool {
	return true
}

// Cleanup re-hides the cursor after vim exits.
func (v *Vim) Cleanup() ProgramCleanup {
	return ProgramCleanup{HideCursor: true}
}
