package daemon

import (
	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// scheduler assigns incoming requests to worker inboxes round-robin. There is
// no work stealing and no priority: the cursor advances one slot per request.
type scheduler struct {
	incoming <-chan api.Request
	inboxes  []chan<- api.Request
	stop     <-chan struct{}
}

func (s *scheduler) run() {
	logrus.Info("Scheduler running.")

	cursor := 0
	for {
		select {
		case <-s.stop:
			logrus.Info("Scheduler stopping...")
			return
		case req, ok := <-s.incoming:
			if !ok {
				return
			}
			logrus.WithFields(logrus.Fields{
				"request":         req.ID,
				"request-handler": cursor,
			}).Debug("Scheduling request.")
			s.inboxes[cursor] <- req
			cursor = (cursor + 1) % len(s.inboxes)
		}
	}
}
