package daemon

import (
	"errors"
	"io"
	"net"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// client pairs a connection with its stable identifier. The write half is
// owned by the response multiplexer; the client handler only reads.
type client struct {
	id   uuid.UUID
	conn *net.UnixConn
}

// clientRequest tells the response multiplexer which client a request came
// from.
type clientRequest struct {
	clientID  uuid.UUID
	requestID uuid.UUID
}

// disconnectedClient reports that a client's reader has exited, along with
// how many requests the client made in total.
type disconnectedClient struct {
	clientID    uuid.UUID
	numRequests int
}

// clientHandler reads framed requests from one client and feeds them to the
// scheduler. For every fully framed request it also publishes a
// client-request notice so the multiplexer can route the responses. On exit,
// for any reason, a disconnect notice is fanned out to every subscriber.
type clientHandler struct {
	client         client
	requests       chan<- api.Request
	clientRequests chan<- clientRequest
	disconnects    []chan<- disconnectedClient
	done           chan struct{}
}

func (h *clientHandler) run() {
	log := logrus.WithField("client", h.client.id)
	log.Info("Client handler running.")

	numRequests := 0
	reader := api.NewFrameReader(h.client.conn)

	for {
		req, err := reader.ReadRequest()
		if err != nil {
			switch {
			case errors.Is(err, io.EOF):
				log.Info("Client disconnected.")
			case errors.Is(err, io.ErrUnexpectedEOF):
				log.Error("Client disconnected mid-frame.")
			case errors.Is(err, net.ErrClosed):
				log.Info("Client connection closed.")
			default:
				log.Errorf("Error reading a request: %v", err)
			}
			break
		}
		log.WithField("request", req.ID).Debug("Received request.")

		h.requests <- req
		numRequests++
		h.clientRequests <- clientRequest{clientID: h.client.id, requestID: req.ID}
	}

	log.Info("Client handler stopping...")
	disconnect := disconnectedClient{clientID: h.client.id, numRequests: numRequests}
	for _, subscriber := range h.disconnects {
		subscriber <- disconnect
	}
	close(h.done)
}

// stopRead wakes the handler's blocked read. The handler then exits through
// its normal disconnect path.
func (h *clientHandler) stopRead() {
	if err := h.client.conn.CloseRead(); err != nil && !errors.Is(err, net.ErrClosed) {
		logrus.WithField("client", h.client.id).Warnf("Failed to close the read half: %v", err)
	}
}
