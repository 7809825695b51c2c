package daemon

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// clientHandlerMonitor reconciles two asynchronous streams, newly spawned
// client handlers and disconnect notices, so that every handler is joined
// exactly once. A disconnect may arrive before its handle; it is stashed as
// pending until the handle shows up. On shutdown every still-connected
// handler is stopped via its read half and joined.
type clientHandlerMonitor struct {
	handles     <-chan clientHandlerHandle
	disconnects <-chan disconnectedClient
	stop        <-chan struct{}
}

func (m *clientHandlerMonitor) run() {
	logrus.Info("Client handler monitor running...")

	running := make(map[uuid.UUID]clientHandlerHandle)
	pending := make(map[uuid.UUID]struct{})

	for {
		select {
		case <-m.stop:
			m.shutdown(running, pending)
			logrus.Info("Client handler monitor stopping...")
			return
		case handle := <-m.handles:
			if _, ok := pending[handle.clientID]; ok {
				delete(pending, handle.clientID)
				joinClientHandler(handle)
				continue
			}
			running[handle.clientID] = handle
		case disconnect := <-m.disconnects:
			handle, ok := running[disconnect.clientID]
			if !ok {
				pending[disconnect.clientID] = struct{}{}
				continue
			}
			delete(running, disconnect.clientID)
			joinClientHandler(handle)
		}
	}
}

// shutdown stops every still-connected reader and joins them all. Exiting
// readers fan their disconnect notice out to this monitor too, so the notice
// channel must keep draining while the joins are in flight.
func (m *clientHandlerMonitor) shutdown(running map[uuid.UUID]clientHandlerHandle, pending map[uuid.UUID]struct{}) {
	var wg sync.WaitGroup
	join := func(handle clientHandlerHandle) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			joinClientHandler(handle)
		}()
	}

	for _, handle := range running {
		handle.stopRead()
		join(handle)
	}

	// Readers that disconnected before their handle arrived still publish a
	// handle; the connection handler has already stopped, so these are
	// bounded.
	if len(pending) > 0 {
		logrus.Infof("There are %d pending disconnected clients.", len(pending))
	}
	for len(pending) > 0 {
		handle := <-m.handles
		delete(pending, handle.clientID)
		join(handle)
	}

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()
	for {
		select {
		case <-m.disconnects:
		case handle := <-m.handles:
			handle.stopRead()
			join(handle)
		case <-joined:
			return
		}
	}
}

func joinClientHandler(handle clientHandlerHandle) {
	log := logrus.WithField("client", handle.clientID)
	log.Info("Waiting for the client handler to stop...")
	<-handle.done
	log.Info("Client handler stopped.")
}
