package ui

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// Requester writes requests to the daemon until the channel closes.
type Requester interface {
	Run(<-chan api.Request)
}

// ResponseHandler reads responses from the daemon into the channel, closing
// it when the stream ends.
type ResponseHandler interface {
	Run(chan<- api.Response)
}

// Stopper wakes a blocked transport loop so it can exit.
type Stopper interface {
	Stop()
}

// RunOptions configure an app run.
type RunOptions struct {
	// Root is the component tree.
	Root RootComponent
	// StartingEffects are interpreted before the first event, as if the
	// root had returned them.
	StartingEffects []SystemEffect
	// Requester and ResponseHandler connect the app to the daemon. Both may
	// be nil for a daemon-less run.
	Requester       Requester
	ResponseHandler ResponseHandler
	// ResponseHandlerStopper wakes the response handler's blocked read at
	// shutdown.
	ResponseHandlerStopper Stopper
}

// App is the UI runtime: it owns the terminal, the event loop, and the
// auxiliary transport goroutines. The UI itself is single threaded; the
// auxiliary goroutines only feed channels that the UI thread consumes.
type App struct {
	term     *Term
	renderer *renderer
	size     Size
}

// NewApp returns an app on the current terminal.
func NewApp() *App {
	return &App{
		term:     NewTerm(),
		renderer: newRenderer(),
	}
}

// Run drives the root component until it asks to exit. The terminal is
// always restored, also when the loop panics.
func (a *App) Run(opts RunOptions) error {
	if err := a.setUp(); err != nil {
		return err
	}

	// The panic path must leave a usable terminal before the panic
	// continues.
	defer func() {
		if r := recover(); r != nil {
			a.tearDown()
			panic(r)
		}
	}()

	size, err := a.term.Size()
	if err != nil {
		a.tearDown()
		return err
	}
	a.size = size

	requests := make(chan api.Request, 16)
	responses := make(chan api.Response, 16)
	termEvents := make(chan TermEvent, 64)

	var wg sync.WaitGroup
	if opts.Requester != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts.Requester.Run(requests)
		}()
	}
	if opts.ResponseHandler != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			opts.ResponseHandler.Run(responses)
		}()
	}

	forwarder, err := newInputForwarder(a.term, termEvents)
	if err != nil {
		a.tearDown()
		return err
	}
	go forwarder.run()

	logrus.Info("Running.")

	root := opts.Root
	running := true
	for _, effect := range opts.StartingEffects {
		if !a.interpret(root, effect, requests, termEvents) {
			running = false
			break
		}
	}

	for running {
		fabric := root.Render(a.size)
		a.renderer.render(fabric)

		var event Event
		select {
		case termEvent := <-termEvents:
			if termEvent.Resize != nil {
				a.size = *termEvent.Resize
			}
			event = Event{Term: &termEvent}
		case response, ok := <-responses:
			if !ok {
				logrus.Info("Response channel closed.")
				running = false
				continue
			}
			event = Event{Response: &response}
		}

		if effect := root.Handle(event); effect != nil {
			running = a.interpret(root, *effect, requests, termEvents)
		}
	}

	logrus.Info("Exiting.")

	// Stop the transport goroutines: closing the request channel ends the
	// requester; the stopper wakes the response handler's blocked read. The
	// response channel is drained so the handler is never stuck sending.
	close(requests)
	if opts.ResponseHandlerStopper != nil {
		opts.ResponseHandlerStopper.Stop()
	}
	go func() {
		for range responses {
		}
	}()
	wg.Wait()

	// Drain terminal events while the forwarder winds down so it is never
	// stuck sending.
	forwarderStopped := make(chan struct{})
	go func() {
		forwarder.stop()
		close(forwarderStopped)
	}()
	for stopping := true; stopping; {
		select {
		case <-termEvents:
		case <-forwarderStopped:
			stopping = false
		}
	}

	a.tearDown()
	return nil
}

// interpret performs one system effect. It reports whether the loop should
// keep running.
func (a *App) interpret(root RootComponent, effect SystemEffect, requests chan<- api.Request, termEvents <-chan TermEvent) bool {
	switch {
	case effect.Exit:
		return false
	case effect.Request != nil:
		requests <- *effect.Request
	case effect.Program != nil:
		sizeBefore := a.size
		a.runProgram(effect.Program, termEvents)
		if a.size != sizeBefore {
			// The terminal changed size while the program ran; the
			// component tree still has to hear about it. An effect from
			// this synthesized resize is not interpreted.
			size := a.size
			event := TermEvent{Resize: &size}
			_ = root.Handle(Event{Term: &event})
		}
	case effect.Bell:
		a.term.Bell()
	}
	return true
}

func (a *App) setUp() error {
	a.term.EnableAlternateScreen()
	if err := a.term.EnableRaw(); err != nil {
		a.term.DisableAlternateScreen()
		return err
	}
	a.term.HideCursor()
	a.term.ClearScreen()
	return nil
}

func (a *App) tearDown() {
	a.term.DisableAlternateScreen()
	if err := a.term.RestoreAttrs(); err != nil {
		logrus.Errorf("Failed to restore the terminal: %v", err)
	}
	a.term.ShowCursor()
}
