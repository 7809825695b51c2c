// Package client implements the insh side of the daemon protocol: dialing
// the socket, the request writer, and the streamed response reader.
package client

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// Dial connects to the daemon socket.
func Dial(socketPath string) (*net.UnixConn, error) {
	addr, err := net.ResolveUnixAddr("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("bad socket path %q: %w", socketPath, err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the inshd socket: %w", err)
	}
	return conn, nil
}

// Requester owns the write half of the socket. Run frames every request it
// receives onto the socket; a closed channel ends the loop, and a socket
// error is fatal to it.
type Requester struct {
	conn *net.UnixConn
}

// NewRequester returns a requester writing to conn.
func NewRequester(conn *net.UnixConn) *Requester {
	return &Requester{conn: conn}
}

// Run consumes requests until the channel closes.
func (r *Requester) Run(requests <-chan api.Request) {
	logrus.Info("Requester running.")

	writer := api.NewFrameWriter(r.conn)
	for req := range requests {
		logrus.WithField("request", req.ID).Debug("Writing request to socket...")
		if err := writer.WriteRequest(req); err != nil {
			logrus.Errorf("Failed to write a request: %v", err)
			break
		}
	}

	logrus.Info("Requester stopping...")
}

// ResponseHandler owns the read half of the socket. Run reads framed
// responses and forwards them until EOF; EOF is expected at shutdown, when
// the stopper half-closes the socket to wake the blocked read.
type ResponseHandler struct {
	conn *net.UnixConn
}

// NewResponseHandler returns a response handler reading from conn.
func NewResponseHandler(conn *net.UnixConn) *ResponseHandler {
	return &ResponseHandler{conn: conn}
}

// Run forwards responses until the stream ends. The responses channel is
// closed on exit.
func (h *ResponseHandler) Run(responses chan<- api.Response) {
	logrus.Info("Response handler running.")
	defer close(responses)

	reader := api.NewFrameReader(h.conn)
	for {
		resp, err := reader.ReadResponse()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
				logrus.Info("Disconnected from inshd.")
			default:
				logrus.Errorf("Error reading a response: %v", err)
			}
			break
		}
		logrus.WithField("response", resp.ID).Debug("Received response.")
		responses <- resp
	}

	logrus.Info("Response handler stopping...")
}

// Stopper wakes the response handler's blocked read by shutting down the
// read direction of the socket.
type Stopper struct {
	conn *net.UnixConn
}

// NewStopper returns a stopper for conn.
func NewStopper(conn *net.UnixConn) *Stopper {
	return &Stopper{conn: conn}
}

// Stop half-closes the read side.
func (s *Stopper) Stop() {
	if err := s.conn.CloseRead(); err != nil && !errors.Is(err, net.ErrClosed) {
		logrus.Warnf("Failed to shut down the read half: %v", err)
	}
}
