package telegram

import (
	"sync"

	"mediabot/internal/models"
)

// dispatcher runs events of one user in arrival order on a single goroutine
// while different users proceed in parallel. The goroutine of a user exits
// once the user's queue is empty.
type dispatcher struct {
	mu     sync.Mutex
	queues map[int64][]models.Event
	run    func(models.Event)
	wg     sync.WaitGroup
}

func newDispatcher(run func(models.Event)) *dispatcher {
	return &dispatcher{queues: make(map[int64][]models.Event), run: run}
}

// Submit enqueues ev behind every earlier event of the same user.
func (d *dispatcher) Submit(ev models.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	q, active := d.queues[ev.From.ID]
	d.queues[ev.From.ID] = append(q, ev)
	if !active {
		d.wg.Add(1)
		go d.drain(ev.From.ID)
	}
}

func (d *dispatcher) drain(userID int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[userID]
		if len(q) == 0 {
			delete(d.queues, userID)
			d.mu.Unlock()
			return
		}
		ev := q[0]
		d.queues[userID] = q[1:]
		d.mu.Unlock()

		d.run(ev)
	}
}

// Wait blocks until every submitted event has been handled.
func (d *dispatcher) Wait() {
	d.wg.Wait()
}
