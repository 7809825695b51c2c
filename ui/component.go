package ui

import (
	"github.com/AustinScola/insh-sub000/api"
)

// Event is what the runtime dispatches to the root component: a terminal
// event or a daemon response. Exactly one field is set.
type Event struct {
	Term     *TermEvent
	Response *api.Response
}

// SystemEffect is an effect a component surfaces to the runtime. Exactly one
// field is meaningful.
type SystemEffect struct {
	// Exit ends the application.
	Exit bool
	// Request is sent to the daemon.
	Request *api.Request
	// Program takes over the terminal until it exits.
	Program Program
	// Bell rings the terminal bell.
	Bell bool
}

// RootComponent is the root of the component tree. Children are plain
// structs owned by their parents; only the root is behind an interface so
// the runtime does not know the concrete UI.
//
// Handle consumes one event, mutates state, and optionally returns an
// effect. Render produces a pure snapshot of cells for the given size; it
// must be side-effect free and deterministic given the component state.
type RootComponent interface {
	Handle(Event) *SystemEffect
	Render(Size) Fabric
}

// ProgramCleanup is what the runtime must redo after a program ran.
type ProgramCleanup struct {
	// HideCursor re-hides the cursor.
	HideCursor bool
	// EnableRawTerminal re-enters raw mode.
	EnableRawTerminal bool
}

// Program is an external program that takes over the terminal via a pty.
type Program interface {
	// Filename is the executable looked up on PATH.
	Filename() string
	// Args are the arguments, excluding the program name.
	Args() []string
	// Cwd is the working directory for the child; "" keeps the current one.
	Cwd() string
	// Env are extra environment entries in KEY=VALUE form.
	Env() []string
	// FilterAltScreen strips the child's alternate-screen toggles from its
	// output so they do not disturb the enclosing alternate screen.
	FilterAltScreen() bool
	// Cleanup tells the runtime what to restore once the child exits.
	Cleanup() ProgramCleanup
}
