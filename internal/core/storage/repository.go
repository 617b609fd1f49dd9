package storage

import (
	"context"
	"errors"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
)

// ErrNotFound is returned when no analytics record exists for a year.
var ErrNotFound = errors.New("analytics record not found")

// ErrVersionConflict is returned when a Put loses a compare-and-swap
// race: another writer persisted the year's record since it was read.
var ErrVersionConflict = errors.New("analytics record version conflict")

// AnalyticsStore is durable get/put for yearly analytics documents.
//
// Contract: Put with rec.Version == 0 inserts a new year and fails with
// ErrVersionConflict if the year already exists. Put with a non-zero
// version updates only if the stored version still matches, so two
// concurrent read-modify-write cycles can never silently overwrite each
// other. On success Put bumps rec.Version to the stored value.
type AnalyticsStore interface {
	// Get returns the record for one year, or ErrNotFound.
	Get(ctx context.Context, year int) (*analytics.AnalyticsRecord, error)

	// Put inserts or compare-and-swap-updates a record (see contract above).
	Put(ctx context.Context, rec *analytics.AnalyticsRecord) error

	// ListYears returns every year that has a record, ascending.
	ListYears(ctx context.Context) ([]int, error)
}
