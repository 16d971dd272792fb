// Package notify delivers booking and catalog events to downstream consumers
// without blocking the request that produced them.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/metinatakli/movie-booking-system/internal/domain"
)

var (
	ErrQueueFull        = errors.New("notification queue is full")
	ErrDispatcherClosed = errors.New("notification dispatcher is closed")
)

const (
	DefaultQueueSize      = 256
	DefaultWorkers        = 2
	DefaultPublishTimeout = 5 * time.Second
)

type DispatcherConfig struct {
	QueueSize int
	Workers   int
	Timeout   time.Duration
}

type event struct {
	ctx     context.Context
	topic   string
	message string
}

// Dispatcher queues events and hands them to a publisher from a fixed set of
// worker goroutines. Publish never blocks: when the queue is full the event is
// dropped and ErrQueueFull returned.
type Dispatcher struct {
	publisher domain.Notifier
	logger    *slog.Logger
	timeout   time.Duration
	workers   int

	queue chan event
	wg    sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(publisher domain.Notifier, logger *slog.Logger, cfg DispatcherConfig) *Dispatcher {
	if cfg.QueueSize < 1 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.Workers < 1 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultPublishTimeout
	}

	return &Dispatcher{
		publisher: publisher,
		logger:    logger,
		timeout:   cfg.Timeout,
		workers:   cfg.Workers,
		queue:     make(chan event, cfg.QueueSize),
	}
}

func (d *Dispatcher) Start() {
	for range d.workers {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) Publish(ctx context.Context, topic, message string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.queue <- event{ctx: context.WithoutCancel(ctx), topic: topic, message: message}:
		return nil
	default:
		d.logger.Warn("notification dropped, queue is full", "topic", topic, "capacity", cap(d.queue))
		return ErrQueueFull
	}
}

// Shutdown stops accepting events and waits for queued ones to be delivered
// until ctx expires.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()

	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev event) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("notification publisher panicked", "topic", ev.topic, "panic", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ev.ctx, d.timeout)
	defer cancel()

	err := d.publisher.Publish(ctx, ev.topic, ev.message)
	if err != nil {
		d.logger.Error("failed to publish notification", "topic", ev.topic, "error", err)
		return
	}

	d.logger.Debug("notification published", "topic", ev.topic)
}
