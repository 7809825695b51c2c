package ui

import (
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// TermEvent is a terminal event: a keystroke or a resize. Exactly one field
// is set.
type TermEvent struct {
	Key    *KeyEvent
	Resize *Size
}

// inputForwarder owns stdin. It multiplexes stdin readiness with a self-pipe
// written on SIGWINCH (and on Stop), emitting key and resize events into the
// UI channel. It keeps running across program hand-offs so keystrokes can be
// routed to a pty without fighting over stdin.
type inputForwarder struct {
	term   *Term
	events chan<- TermEvent

	pipeRead  int
	pipeWrite int
	winch     chan os.Signal
	stopped   chan struct{}
}

// Self-pipe bytes.
const (
	pipeByteResize = 'r'
	pipeByteStop   = 's'
)

func newInputForwarder(term *Term, events chan<- TermEvent) (*inputForwarder, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return nil, err
	}
	f := &inputForwarder{
		term:      term,
		events:    events,
		pipeRead:  fds[0],
		pipeWrite: fds[1],
		winch:     make(chan os.Signal, 1),
		stopped:   make(chan struct{}),
	}

	signal.Notify(f.winch, unix.SIGWINCH)
	go func() {
		for range f.winch {
			f.wake(pipeByteResize)
		}
	}()

	return f, nil
}

// run is the forwarder loop.
func (f *inputForwarder) run() {
	defer close(f.stopped)

	stdin := int(os.Stdin.Fd())
	parser := &keyParser{}
	buf := make([]byte, 1024)

	for {
		fds := []unix.PollFd{
			{Fd: int32(stdin), Events: unix.POLLIN},
			{Fd: int32(f.pipeRead), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(fds, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			logrus.Errorf("Input forwarder poll failed: %v", err)
			return
		}

		if fds[1].Revents&unix.POLLIN != 0 {
			var b [16]byte
			n, _ := unix.Read(f.pipeRead, b[:])
			stop := false
			resize := false
			for _, c := range b[:n] {
				switch c {
				case pipeByteStop:
					stop = true
				case pipeByteResize:
					resize = true
				}
			}
			if stop {
				return
			}
			if resize {
				if size, err := f.term.Size(); err == nil {
					f.events <- TermEvent{Resize: &size}
				}
			}
		}

		if fds[0].Revents&unix.POLLIN != 0 {
			n, err := unix.Read(stdin, buf)
			if err != nil || n <= 0 {
				continue
			}
			for _, key := range parser.feed(buf[:n]) {
				key := key
				f.events <- TermEvent{Key: &key}
			}
		}
	}
}

// wake writes one byte to the self-pipe.
func (f *inputForwarder) wake(b byte) {
	_, _ = unix.Write(f.pipeWrite, []byte{b})
}

// stop ends the forwarder and waits for it.
func (f *inputForwarder) stop() {
	signal.Stop(f.winch)
	close(f.winch)
	f.wake(pipeByteStop)
	<-f.stopped
	_ = unix.Close(f.pipeRead)
	_ = unix.Close(f.pipeWrite)
}
