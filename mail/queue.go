package mail

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const sendTimeout = 30 * time.Second

// Queue hands messages to a single background worker so callers do not
// wait on delivery. Close drains what is already queued.
type Queue struct {
	next   Sender
	log    logrus.FieldLogger
	msgs   chan Message
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewQueue(next Sender, size int, log logrus.FieldLogger) *Queue {
	q := &Queue{
		next: next,
		log:  log,
		msgs: make(chan Message, size),
	}

	q.wg.Add(1)
	go q.run()

	return q
}

func (q *Queue) run() {
	defer q.wg.Done()

	for m := range q.msgs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		err := q.next.Send(ctx, m)
		cancel()
		if err != nil {
			q.log.WithError(err).WithField("to", m.To).Error("failed to deliver mail")
		}
	}
}

func (q *Queue) Send(_ context.Context, m Message) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.msgs <- m:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	close(q.msgs)
	q.mu.Unlock()

	q.wg.Wait()
	return q.next.Close()
}
