package projection

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
	"github.com/tailorworks-lab/tailorworks/internal/core/storage"
)

// ErrInvalidQuery marks request validation errors that should return HTTP 400.
var ErrInvalidQuery = errors.New("invalid analytics query")

// YearQuery selects one year's analytics, optionally narrowed to a
// single month bucket and a substring-matched subset of day buckets.
// The two filters are independent: the month filter never touches
// dailyData and the day filter never touches monthlyData.
type YearQuery struct {
	Year int

	// Month is matched by 3-letter key ("September" and "Sep" select
	// the same bucket). Empty means all months.
	Month string

	// Day is a substring match against day labels ("9/16" matches
	// "9/16/2024"). Empty means all days.
	Day string
}

// Service is the query side of the analytics subsystem. It only ever
// reads; filters are applied to a copy of the stored record.
type Service struct {
	store storage.AnalyticsStore
}

// NewService creates a projection service over the analytics store.
func NewService(store storage.AnalyticsStore) *Service {
	return &Service{store: store}
}

// FetchYear returns the (possibly filtered) record for one year.
// Returns storage.ErrNotFound when the year has no record.
func (s *Service) FetchYear(ctx context.Context, q YearQuery) (*analytics.AnalyticsRecord, error) {
	if q.Year <= 0 {
		return nil, fmt.Errorf("%w: year is required", ErrInvalidQuery)
	}
	if q.Month != "" && len(strings.TrimSpace(q.Month)) < 3 {
		return nil, fmt.Errorf("%w: month filter must be at least 3 characters", ErrInvalidQuery)
	}

	rec, err := s.store.Get(ctx, q.Year)
	if err != nil {
		return nil, err
	}

	return filterRecord(rec, q), nil
}

// Years lists every year with analytics data, ascending.
func (s *Service) Years(ctx context.Context) ([]int, error) {
	return s.store.ListYears(ctx)
}

// filterRecord narrows the bucket lists without mutating the stored
// record; cumulative totals always reflect the full year.
func filterRecord(rec *analytics.AnalyticsRecord, q YearQuery) *analytics.AnalyticsRecord {
	out := rec.Clone()

	if q.Month != "" {
		key := analytics.MonthKey(q.Month)
		months := make([]analytics.MonthBucket, 0, 1)
		for _, mb := range out.MonthlyData {
			if mb.Month == key {
				months = append(months, mb)
			}
		}
		out.MonthlyData = months
	}

	if q.Day != "" {
		days := make([]analytics.DayBucket, 0, len(out.DailyData))
		for _, db := range out.DailyData {
			if strings.Contains(db.Day, q.Day) {
				days = append(days, db)
			}
		}
		out.DailyData = days
	}

	return out
}
