package daemon

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"

	"github.com/AustinScola/insh-sub000/api"
)

// DefaultNumWorkers is the default size of the request handler pool.
const DefaultNumWorkers = 8

// Options configure a server run.
type Options struct {
	// SocketPath is where the unix socket is bound.
	SocketPath string
	// PidFilePath is removed on shutdown (it is written by the start
	// command before the server runs).
	PidFilePath string
	// NumWorkers is the number of request handlers; zero means
	// DefaultNumWorkers.
	NumWorkers int
}

// Server is the inshd server: it owns the socket and all of the daemon's
// goroutines.
type Server struct {
	opts Options
	// stop ends Run like a termination signal would.
	stop chan struct{}
}

// NewServer returns a server with the given options.
func NewServer(opts Options) *Server {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = DefaultNumWorkers
	}
	return &Server{opts: opts, stop: make(chan struct{})}
}

// Run binds the socket, starts every component, and blocks until SIGTERM or
// SIGINT arrives. Shutdown is cooperative and ordered: connection handler,
// reader monitor, scheduler, worker manager, response multiplexer; then the
// socket and pid file are removed, and signal delivery stops when Run returns.
func (s *Server) Run() error {
	logrus.Info("Running...")

	addr, err := net.ResolveUnixAddr("unix", s.opts.SocketPath)
	if err != nil {
		return fmt.Errorf("bad socket path %q: %w", s.opts.SocketPath, err)
	}
	logrus.WithField("socket", s.opts.SocketPath).Debug("Creating the unix socket...")
	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("failed to create the unix socket: %w", err)
	}

	// Termination signals.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, unix.SIGTERM, unix.SIGINT)
	defer signal.Stop(signals)

	spawn := func(run func()) *sync.WaitGroup {
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			run()
		}()
		return &wg
	}

	// Response multiplexer.
	responses := newQueue[api.Response]()
	newClients := make(chan client, 16)
	clientRequests := make(chan clientRequest, 64)
	responderDisconnects := make(chan disconnectedClient, 16)
	responderStop := make(chan struct{})
	responder := &responseHandler{
		responses:      responses.Out,
		newClients:     newClients,
		clientRequests: clientRequests,
		disconnects:    responderDisconnects,
		stop:           responderStop,
	}
	responderDone := spawn(responder.run)

	// Worker pool behind its manager. Each worker has an unbounded inbox so
	// the scheduler never blocks.
	inboxes := make([]*queue[api.Request], s.opts.NumWorkers)
	inboxIns := make([]chan<- api.Request, s.opts.NumWorkers)
	inboxOuts := make([]<-chan api.Request, s.opts.NumWorkers)
	for i := range inboxes {
		inboxes[i] = newQueue[api.Request]()
		inboxIns[i] = inboxes[i].In
		inboxOuts[i] = inboxes[i].Out
	}
	managerStop := make(chan struct{})
	manager := &workerManager{
		numWorkers: s.opts.NumWorkers,
		inboxes:    inboxOuts,
		responses:  responses.In,
		died:       make(chan workerDied, s.opts.NumWorkers),
		stop:       managerStop,
	}
	managerDone := spawn(manager.run)

	// Scheduler.
	incoming := newQueue[api.Request]()
	schedulerStop := make(chan struct{})
	sched := &scheduler{
		incoming: incoming.Out,
		inboxes:  inboxIns,
		stop:     schedulerStop,
	}
	schedulerDone := spawn(sched.run)

	// Reader lifecycle monitor.
	monitorDisconnects := make(chan disconnectedClient, 16)
	handles := make(chan clientHandlerHandle, 16)
	monitorStop := make(chan struct{})
	monitor := &clientHandlerMonitor{
		handles:     handles,
		disconnects: monitorDisconnects,
		stop:        monitorStop,
	}
	monitorDone := spawn(monitor.run)

	// Connection handler.
	conns := &connHandler{
		listener:       listener,
		newClients:     newClients,
		requests:       incoming.In,
		clientRequests: clientRequests,
		disconnects:    []chan<- disconnectedClient{responderDisconnects, monitorDisconnects},
		handles:        handles,
	}
	connsDone := spawn(conns.run)

	// Block until signaled to stop.
	select {
	case sig := <-signals:
		logrus.WithField("signal", sig).Info("Stopping...")
	case <-s.stop:
		logrus.Info("Stopping...")
	}

	logrus.Info("Stopping all threads...")

	_ = listener.Close()
	connsDone.Wait()
	logrus.Info("Connection handler stopped.")

	close(monitorStop)
	monitorDone.Wait()
	logrus.Info("Client handler monitor stopped.")

	close(schedulerStop)
	schedulerDone.Wait()
	logrus.Info("Scheduler stopped.")

	close(managerStop)
	managerDone.Wait()
	logrus.Info("Request handler manager stopped.")

	close(responderStop)
	responderDone.Wait()
	logrus.Info("Response handler stopped.")

	logrus.Info("All threads stopped.")

	s.cleanup()
	return nil
}

// cleanup removes the socket and pid files. Failures are logged, not fatal.
func (s *Server) cleanup() {
	logrus.Debug("Removing the socket...")
	if err := os.Remove(s.opts.SocketPath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove the socket: %v", err)
	}

	if s.opts.PidFilePath == "" {
		return
	}
	logrus.Debug("Removing the pid file...")
	if err := os.Remove(s.opts.PidFilePath); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove the pid file: %v", err)
	}
}
