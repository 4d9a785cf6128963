package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/baedalgo/delivery/internal/core/domain"
	"github.com/baedalgo/delivery/internal/metrics"
	"github.com/baedalgo/delivery/internal/port"
)

// Dispatcher fans notifications out to the configured sinks from a
// pool of workers draining a buffered queue. Delivery is best-effort:
// every send runs under its own timeout, failures are logged and
// counted but never reach the code that enqueued the notification.
type Dispatcher struct {
	queue   chan domain.Notification
	sinks   []port.Notifier
	timeout time.Duration
	workers int
	wg      sync.WaitGroup
	logger  zerolog.Logger
}

func NewDispatcher(sinks []port.Notifier, queueSize, workers int, timeout time.Duration, logger zerolog.Logger) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	return &Dispatcher{
		queue:   make(chan domain.Notification, queueSize),
		sinks:   sinks,
		timeout: timeout,
		workers: workers,
		logger:  logger,
	}
}

func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for n := range d.queue {
				d.deliver(n)
			}
		}()
	}
}

// Enqueue hands a notification to the workers without ever blocking
// the caller. Returns false when the queue is full; the notification
// is dropped in that case.
func (d *Dispatcher) Enqueue(n domain.Notification) bool {
	select {
	case d.queue <- n:
		return true
	default:
		metrics.NotificationsDropped.Inc()
		d.logger.Warn().
			Str("order_id", n.OrderID).
			Str("status", string(n.Status)).
			Msg("notification queue full, dropping")
		return false
	}
}

// Close stops accepting notifications and waits for the workers to
// drain what is already queued.
func (d *Dispatcher) Close() {
	close(d.queue)
	d.wg.Wait()
}

func (d *Dispatcher) deliver(n domain.Notification) {
	for _, sink := range d.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := sink.Notify(ctx, n)
		cancel()

		if err != nil {
			metrics.Notifications.WithLabelValues(sink.Name(), "failure").Inc()
			d.logger.Error().
				Err(err).
				Str("sink", sink.Name()).
				Str("order_id", n.OrderID).
				Str("status", string(n.Status)).
				Msg("notification delivery failed")
			continue
		}
		metrics.Notifications.WithLabelValues(sink.Name(), "success").Inc()
	}
}
