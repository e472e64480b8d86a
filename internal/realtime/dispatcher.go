package realtime

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MultiPusher pushes to every transport and joins their errors.
type MultiPusher []Pusher

func (m MultiPusher) Push(ctx context.Context, ev Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Push(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatcher is a bounded worker pool in front of a Pusher. Publish never
// blocks; when the queue is full the event is dropped and logged.
type Dispatcher struct {
	pusher      Pusher
	queue       chan Event
	workers     int
	pushTimeout time.Duration
	log         *zap.Logger

	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

func NewDispatcher(pusher Pusher, workers, queueSize int, log *zap.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Dispatcher{
		pusher:      pusher,
		queue:       make(chan Event, queueSize),
		workers:     workers,
		pushTimeout: 5 * time.Second,
		log:         log.With(zap.String("component", "dispatcher")),
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.run()
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for ev := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.pushTimeout)
		if err := d.pusher.Push(ctx, ev); err != nil {
			d.log.Warn("Push failed",
				zap.Error(err),
				zap.String("event", ev.Name),
				zap.String("user_id", ev.UserID.String()),
			)
		}
		cancel()
	}
}

func (d *Dispatcher) Publish(ev Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}

	select {
	case d.queue <- ev:
	default:
		d.log.Warn("Push queue full, dropping event",
			zap.String("event", ev.Name),
			zap.String("user_id", ev.UserID.String()),
		)
	}
}

// Close stops accepting events and waits for queued ones to drain.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.queue)
		d.mu.Unlock()
	})
	d.wg.Wait()
}
