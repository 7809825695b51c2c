package daemon

import (
	"errors"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// clientHandlerHandle lets the lifecycle monitor stop and join one client
// handler.
type clientHandlerHandle struct {
	clientID uuid.UUID
	done     <-chan struct{}
	stopRead func()
}

// connHandler accepts connections on the daemon socket. For each accepted
// client it spawns a reader, registers the reader with the lifecycle monitor,
// and hands the write half to the response multiplexer. Closing the listener
// stops the loop.
type connHandler struct {
	listener       *net.UnixListener
	newClients     chan<- client
	requests       chan<- api.Request
	clientRequests chan<- clientRequest
	disconnects    []chan<- disconnectedClient
	handles        chan<- clientHandlerHandle
}

func (c *connHandler) run() {
	logrus.Info("Accepting connections...")

	for {
		conn, err := c.listener.AcceptUnix()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}
			logrus.Errorf("Error with a new connection: %v", err)
			continue
		}

		cl := client{id: uuid.New(), conn: conn}
		logrus.WithField("client", cl.id).Info("Accepted a new connection.")

		handler := &clientHandler{
			client:         cl,
			requests:       c.requests,
			clientRequests: c.clientRequests,
			disconnects:    c.disconnects,
			done:           make(chan struct{}),
		}
		go handler.run()

		c.handles <- clientHandlerHandle{
			clientID: cl.id,
			done:     handler.done,
			stopRead: handler.stopRead,
		}
		c.newClients <- cl
	}

	logrus.Info("Connection handler stopping...")
}
