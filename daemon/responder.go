package daemon

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// responseHandler is the response multiplexer: it consumes worker output and
// frames each response onto the socket of the client that made the request.
//
// It is a pure event processor over explicit state. The drain invariant is
// load-bearing: a client's writer and counters are destroyed if and only if
// a disconnect has been reported for it and the number of responses handled
// equals the total number of requests reported at disconnect. Until then
// writes are attempted and failures tolerated.
type responseHandler struct {
	responses      <-chan api.Response
	newClients     <-chan client
	clientRequests <-chan clientRequest
	disconnects    <-chan disconnectedClient
	stop           <-chan struct{}

	requestClient map[uuid.UUID]uuid.UUID
	writers       map[uuid.UUID]*api.FrameWriter
	handled       map[uuid.UUID]int
	totals        map[uuid.UUID]int
}

func (rh *responseHandler) run() {
	logrus.Info("Response handler running.")

	rh.requestClient = make(map[uuid.UUID]uuid.UUID)
	rh.writers = make(map[uuid.UUID]*api.FrameWriter)
	rh.handled = make(map[uuid.UUID]int)
	rh.totals = make(map[uuid.UUID]int)

	for {
		select {
		case <-rh.stop:
			logrus.Info("Response handler stopping...")
			return
		case cl := <-rh.newClients:
			rh.handleNewClient(cl)
		case notice := <-rh.clientRequests:
			rh.handleClientRequest(notice)
		case resp := <-rh.responses:
			rh.handleResponse(resp)
		case disconnect := <-rh.disconnects:
			rh.handleDisconnect(disconnect)
		}
	}
}

func (rh *responseHandler) handleNewClient(cl client) {
	rh.writers[cl.id] = api.NewFrameWriter(cl.conn)
	if _, ok := rh.handled[cl.id]; !ok {
		rh.handled[cl.id] = 0
	}
}

func (rh *responseHandler) handleClientRequest(notice clientRequest) {
	rh.requestClient[notice.requestID] = notice.clientID
}

func (rh *responseHandler) handleResponse(resp api.Response) {
	log := logrus.WithField("response", resp.ID)
	log.Debug("Handling response.")

	// Determine which client the response belongs to. The reader publishes
	// the client-request notice after forwarding the request, so a response
	// can transiently arrive first; drain queued notices to catch up.
	clientID, ok := rh.requestClient[resp.ID]
	if !ok {
		clientID, ok = rh.drainClientRequests(resp.ID)
	}
	if !ok {
		log.Warn("No client is known for the response; discarding it.")
		return
	}

	// The last response retires the request id.
	if resp.Last {
		delete(rh.requestClient, resp.ID)
	}

	writer, ok := rh.writers[clientID]
	if !ok {
		writer, ok = rh.drainNewClients(clientID)
	}
	if !ok {
		logrus.WithField("client", clientID).Warn("No writer is known for the client; discarding the response.")
		return
	}

	if err := writer.WriteResponse(resp); err != nil {
		logrus.WithField("client", clientID).Errorf("Failed to write a response: %v", err)
	}

	rh.handled[clientID]++
	rh.maybeCleanupClient(clientID)
}

func (rh *responseHandler) handleDisconnect(disconnect disconnectedClient) {
	clientID := disconnect.clientID

	handled, ok := rh.handled[clientID]
	if !ok {
		// The new-client event has not been consumed yet.
		if _, ok := rh.drainNewClients(clientID); !ok {
			logrus.WithField("client", clientID).Warn("Disconnect for an unknown client.")
			return
		}
		handled = rh.handled[clientID]
	}

	if handled == disconnect.numRequests {
		rh.cleanupClient(clientID)
		return
	}

	// In-flight responses still have to drain; keep the writer until the
	// handled count catches up.
	rh.totals[clientID] = disconnect.numRequests
}

// maybeCleanupClient destroys the client record once a disconnect has been
// reported and all of its responses have been handled.
func (rh *responseHandler) maybeCleanupClient(clientID uuid.UUID) {
	total, disconnected := rh.totals[clientID]
	if !disconnected {
		return
	}
	if rh.handled[clientID] == total {
		rh.cleanupClient(clientID)
	}
}

func (rh *responseHandler) cleanupClient(clientID uuid.UUID) {
	logrus.WithField("client", clientID).Debug("Cleaning up the client.")
	delete(rh.writers, clientID)
	delete(rh.handled, clientID)
	delete(rh.totals, clientID)
}

// drainClientRequests consumes every queued client-request notice, looking
// for the one naming requestID.
func (rh *responseHandler) drainClientRequests(requestID uuid.UUID) (uuid.UUID, bool) {
	for {
		select {
		case notice := <-rh.clientRequests:
			rh.handleClientRequest(notice)
			if notice.requestID == requestID {
				return notice.clientID, true
			}
		default:
			return uuid.UUID{}, false
		}
	}
}

// drainNewClients consumes every queued new-client event, looking for
// clientID.
func (rh *responseHandler) drainNewClients(clientID uuid.UUID) (*api.FrameWriter, bool) {
	for {
		select {
		case cl := <-rh.newClients:
			rh.handleNewClient(cl)
			if cl.id == clientID {
				return rh.writers[clientID], true
			}
		default:
			return nil, false
		}
	}
}
