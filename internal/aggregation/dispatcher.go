package aggregation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
)

const drainTimeout = 30 * time.Second

// ErrQueueFull is returned by Enqueue when the event buffer is at
// capacity. Callers treat the event as dropped; aggregation is
// best-effort by contract, never a reason to block a bill mutation.
var ErrQueueFull = errors.New("bill event queue is full")

// Dispatcher is the asynchronous front of the aggregation service: a
// buffered channel drained by a single consumer goroutine, so events
// apply serially and fire-and-forget callers can never race each other.
type Dispatcher struct {
	svc    *Service
	events chan analytics.BillEvent
}

// NewDispatcher creates a dispatcher with the given buffer capacity.
func NewDispatcher(svc *Service, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	return &Dispatcher{
		svc:    svc,
		events: make(chan analytics.BillEvent, buffer),
	}
}

// Enqueue hands an event to the consumer without blocking.
func (d *Dispatcher) Enqueue(ev analytics.BillEvent) error {
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending reports the number of buffered events. Diagnostic only.
func (d *Dispatcher) Pending() int {
	return len(d.events)
}

// Start consumes events until the context is cancelled, then drains
// whatever is still buffered before returning.
func (d *Dispatcher) Start(ctx context.Context) error {
	slog.Info("[Dispatcher] Starting bill event consumer",
		"buffer", cap(d.events))

	for {
		select {
		case ev := <-d.events:
			d.apply(ctx, ev)
		case <-ctx.Done():
			slog.Info("[Dispatcher] Stopping (context cancelled), draining buffered events",
				"pending", len(d.events))

			drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout)
			defer cancel()
			d.drain(drainCtx)

			slog.Info("[Dispatcher] Drain complete")
			return nil
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	for {
		select {
		case ev := <-d.events:
			d.apply(ctx, ev)
		default:
			return
		}
	}
}

// apply runs one event and logs failures. Errors are not propagated:
// the producer has long since moved on, so server-side logging is the
// only surface they can have.
func (d *Dispatcher) apply(ctx context.Context, ev analytics.BillEvent) {
	if _, err := d.svc.ApplyBillEvent(ctx, ev); err != nil {
		slog.Error("[Dispatcher] Failed to apply bill event",
			"error", err,
			"year", ev.Year,
			"action", ev.Action,
			"bill_type", ev.BillType)
	}
}
