package daemon

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AustinScola/insh-sub000/api"
)

// workerManager spawns the worker pool, respawns workers that die, and stops
// and joins them on shutdown. A respawned worker reuses the dead slot's inbox
// and stop channel, so queued requests for that slot are not reassigned.
type workerManager struct {
	numWorkers int
	inboxes    []<-chan api.Request
	responses  chan<- api.Response
	died       chan workerDied
	stop       <-chan struct{}

	wg          sync.WaitGroup
	workerStops []chan struct{}
}

func (m *workerManager) run() {
	logrus.Info("Request handler manager running.")

	m.workerStops = make([]chan struct{}, m.numWorkers)
	for number := 0; number < m.numWorkers; number++ {
		m.workerStops[number] = make(chan struct{})
		m.spawn(number)
	}

	for {
		select {
		case <-m.stop:
			logrus.Info("Stopping request handlers...")
			for _, stop := range m.workerStops {
				close(stop)
			}
			m.wg.Wait()
			logrus.Info("Stopped request handlers.")
			logrus.Info("Request handler manager stopping...")
			return
		case died := <-m.died:
			logrus.WithField("request-handler", died.number).Info("Restarting request handler...")
			m.spawn(died.number)
		}
	}
}

func (m *workerManager) spawn(number int) {
	w := &worker{
		number:    number,
		requests:  m.inboxes[number],
		responses: m.responses,
		stop:      m.workerStops[number],
		died:      m.died,
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		w.run()
	}()
}
