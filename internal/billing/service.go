package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
)

// EventSink receives the bill events derived from ledger mutations.
// The aggregation dispatcher satisfies it; bill handlers never wait for
// aggregation, they hand off and move on.
type EventSink interface {
	Enqueue(ev analytics.BillEvent) error
}

// Service owns the bill ledger and emits one bill event per mutation.
type Service struct {
	bills Store
	sink  EventSink
	nowFn func() time.Time
}

// NewService creates the billing service.
func NewService(bills Store, sink EventSink) *Service {
	if bills == nil {
		panic("billing: store must not be nil")
	}
	if sink == nil {
		panic("billing: event sink must not be nil")
	}
	return &Service{
		bills: bills,
		sink:  sink,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// CreateBill persists a new bill and emits its ADD event.
func (s *Service) CreateBill(ctx context.Context, bill *Bill) (*Bill, error) {
	switch bill.BillType {
	case analytics.BillSold, analytics.BillStitched:
	default:
		return nil, fmt.Errorf("%w: %q", analytics.ErrUnknownBillType, bill.BillType)
	}
	switch bill.CustomerType {
	case analytics.CustomerNew, analytics.CustomerOld:
	default:
		return nil, fmt.Errorf("%w: %q", analytics.ErrUnknownCustomerType, bill.CustomerType)
	}
	if err := bill.Validate(); err != nil {
		return nil, err
	}

	bill.ID = uuid.New()
	bill.CreatedAt = s.nowFn()
	bill.UpdatedAt = bill.CreatedAt

	if err := s.bills.Insert(ctx, bill); err != nil {
		return nil, err
	}

	s.emit(addEventFor(bill))
	return bill, nil
}

// GetBill returns one bill, or ErrBillNotFound.
func (s *Service) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	return s.bills.Get(ctx, id)
}

// AmendBillAmount changes a bill's amount and emits the matching UPDATE
// event, keyed by the bill's original creation date so prior-year
// amendments land on the prior year's analytics record.
func (s *Service) AmendBillAmount(ctx context.Context, id uuid.UUID, amountMinor int64) (*Bill, error) {
	if amountMinor < 0 {
		return nil, fmt.Errorf("amount must not be negative")
	}

	bill, err := s.bills.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if amountMinor == bill.AmountMinor {
		return bill, nil
	}

	if err := s.bills.UpdateAmount(ctx, id, amountMinor); err != nil {
		return nil, err
	}

	s.emit(updateEventFor(bill, amountMinor))

	bill.AmountMinor = amountMinor
	bill.UpdatedAt = s.nowFn()
	return bill, nil
}

// DeleteBill removes a bill and emits its DELETE event.
func (s *Service) DeleteBill(ctx context.Context, id uuid.UUID) error {
	bill, err := s.bills.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.bills.Delete(ctx, id); err != nil {
		return err
	}

	s.emit(deleteEventFor(bill))
	return nil
}

// emit is fire-and-forget: a full queue is logged, never surfaced to
// the bill mutation that triggered it.
func (s *Service) emit(ev analytics.BillEvent) {
	if err := s.sink.Enqueue(ev); err != nil {
		slog.Error("[Billing] Failed to enqueue bill event",
			"error", err,
			"action", ev.Action,
			"year", ev.Year)
	}
}

// addEventFor derives the ADD event from a freshly created bill.
func addEventFor(b *Bill) analytics.BillEvent {
	month, day := analytics.BucketKeysFor(b.CreatedAt)
	return analytics.BillEvent{
		AmountMinor:  b.AmountMinor,
		BillType:     b.BillType,
		CustomerType: b.CustomerType,
		Action:       analytics.ActionAdd,
		Month:        month,
		Day:          day,
		Year:         b.CreatedAt.UTC().Year(),
	}
}

// updateEventFor derives the UPDATE event from an amount amendment.
// The magnitude is the absolute change; direction rides on IsNegative.
func updateEventFor(b *Bill, newAmountMinor int64) analytics.BillEvent {
	delta := newAmountMinor - b.AmountMinor
	negative := delta < 0
	if negative {
		delta = -delta
	}

	month, day := analytics.BucketKeysFor(b.CreatedAt)
	return analytics.BillEvent{
		AmountMinor:  delta,
		BillType:     b.BillType,
		CustomerType: b.CustomerType,
		Action:       analytics.ActionUpdate,
		IsNegative:   negative,
		Month:        month,
		Day:          day,
		Year:         b.CreatedAt.UTC().Year(),
	}
}

// deleteEventFor derives the DELETE event from a removed bill.
func deleteEventFor(b *Bill) analytics.BillEvent {
	month, day := analytics.BucketKeysFor(b.CreatedAt)
	return analytics.BillEvent{
		AmountMinor:  b.AmountMinor,
		BillType:     b.BillType,
		CustomerType: b.CustomerType,
		Action:       analytics.ActionDelete,
		Month:        month,
		Day:          day,
		Year:         b.CreatedAt.UTC().Year(),
	}
}
