package aggregation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
)

const defaultMaxApplyRetries = 3

// Service applies bill events to the yearly analytics records.
// It is the only writer of analytics documents: load (or seed) the
// target year, fold the event in, persist with compare-and-swap, and
// retry against the fresh snapshot when a concurrent writer got there
// first. Retries are bounded; an exhausted apply surfaces the conflict
// instead of spinning.
type Service struct {
	store      storage.AnalyticsStore
	opts       analytics.Options
	maxRetries int
}

// NewService creates the aggregation service.
// maxRetries <= 0 selects the default retry budget.
func NewService(store storage.AnalyticsStore, opts analytics.Options, maxRetries int) *Service {
	if maxRetries <= 0 {
		maxRetries = defaultMaxApplyRetries
	}
	return &Service{
		store:      store,
		opts:       opts,
		maxRetries: maxRetries,
	}
}

// ApplyBillEvent folds one bill event into the record for its target
// year and returns the updated record.
//
// An UPDATE or DELETE for a year with no record is a logged no-op
// returning (nil, nil): the bill's original aggregation context cannot
// be recovered, so there is nothing meaningful to mutate. Malformed
// events and persistence failures are returned as errors.
func (s *Service) ApplyBillEvent(ctx context.Context, ev analytics.BillEvent) (*analytics.AnalyticsRecord, error) {
	if err := ev.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bill event: %w", err)
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		rec, err := s.store.Get(ctx, ev.Year)
		if errors.Is(err, storage.ErrNotFound) {
			if ev.Action != analytics.ActionAdd {
				slog.Warn("[Aggregation] No analytics record for year, dropping event",
					"year", ev.Year,
					"action", ev.Action,
					"bill_type", ev.BillType)
				return nil, nil
			}

			seeded := analytics.Seed(ev)
			if putErr := s.store.Put(ctx, seeded); putErr != nil {
				if errors.Is(putErr, storage.ErrVersionConflict) {
					// Lost the creation race; the year exists now.
					continue
				}
				return nil, fmt.Errorf("failed to seed analytics for year %d: %w", ev.Year, putErr)
			}
			return seeded, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load analytics for year %d: %w", ev.Year, err)
		}

		if err := analytics.Apply(rec, ev, s.opts); err != nil {
			return nil, err
		}

		if err := s.store.Put(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrVersionConflict) {
				slog.Debug("[Aggregation] Lost update race, retrying",
					"year", ev.Year,
					"attempt", attempt+1)
				continue
			}
			return nil, fmt.Errorf("failed to persist analytics for year %d: %w", ev.Year, err)
		}

		return rec, nil
	}

	return nil, fmt.Errorf("analytics apply for year %d exhausted %d attempts: %w",
		ev.Year, s.maxRetries, storage.ErrVersionConflict)
}
