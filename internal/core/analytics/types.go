package analytics

import (
	"errors"
	"fmt"
	"strings"
)

// Bill classification of an event: whether revenue came from a ready-made
// garment sale or from stitching work.
const (
	BillSold     = "SOLD"
	BillStitched = "STITCHED"
)

// Customer classification: first bill ever vs. returning customer.
const (
	CustomerNew = "NEW"
	CustomerOld = "OLD"
)

// Actions a bill event can carry. ADD is emitted on bill creation,
// UPDATE on amount amendment, DELETE on bill removal.
const (
	ActionAdd    = "ADD"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

var (
	ErrUnknownAction       = errors.New("unknown action")
	ErrUnknownBillType     = errors.New("unknown bill type")
	ErrUnknownCustomerType = errors.New("unknown customer type")
)

// Totals is the set of metrics tracked at every granularity.
// Money fields are integer minor units (cents); counts are plain counters.
// Profit is stored, not derived: the aggregator moves income and profit
// together, and salary is written by the payroll side of the system.
type Totals struct {
	Income          int64 `json:"income"`
	Salary          int64 `json:"salary"`
	Profit          int64 `json:"profit"`
	Customers       int64 `json:"customers"`
	NewCustomers    int64 `json:"newCustomers"`
	Sales           int64 `json:"sales"`
	SalesBillCount  int64 `json:"salesBillCount"`
	Stitch          int64 `json:"stitch"`
	StitchBillCount int64 `json:"stitchBillCount"`
}

// MonthBucket scopes Totals to one month of the record's year.
// Month holds the 3-letter key ("Sep"), never the full month name.
type MonthBucket struct {
	Month string `json:"month"`
	Totals
}

// DayBucket scopes Totals to one day label. The label is the bucket key
// verbatim: two different spellings of the same calendar day are two buckets.
type DayBucket struct {
	Day string `json:"day"`
	Totals
}

// AnalyticsRecord is the rollup document for one calendar year.
// Buckets are append-only: an UPDATE or DELETE that drives a bucket to
// zero leaves a zero-valued bucket in place.
type AnalyticsRecord struct {
	Year int `json:"year"`
	Totals
	MonthlyData []MonthBucket `json:"monthlyData"`
	DailyData   []DayBucket   `json:"dailyData"`

	// Version is the storage compare-and-swap token. It is not part of
	// the document itself; adapters manage it out of band.
	Version int64 `json:"-"`
}

// monthBucket returns the bucket with the given 3-letter key, or nil.
func (r *AnalyticsRecord) monthBucket(key string) *MonthBucket {
	for i := range r.MonthlyData {
		if r.MonthlyData[i].Month == key {
			return &r.MonthlyData[i]
		}
	}
	return nil
}

// dayBucket returns the bucket with the given day label, or nil.
func (r *AnalyticsRecord) dayBucket(key string) *DayBucket {
	for i := range r.DailyData {
		if r.DailyData[i].Day == key {
			return &r.DailyData[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the record. Stores hand out clones so
// callers can never mutate persisted state in place.
func (r *AnalyticsRecord) Clone() *AnalyticsRecord {
	if r == nil {
		return nil
	}
	cp := *r
	cp.MonthlyData = append([]MonthBucket(nil), r.MonthlyData...)
	cp.DailyData = append([]DayBucket(nil), r.DailyData...)
	return &cp
}

// BillEvent is the aggregator's input. It is ephemeral: derived by the
// billing call sites from a bill mutation and never persisted.
type BillEvent struct {
	// AmountMinor is the unsigned magnitude to apply, in minor units.
	AmountMinor int64

	BillType     string // SOLD or STITCHED
	CustomerType string // NEW or OLD
	Action       string // ADD, UPDATE or DELETE

	// IsNegative flips the delta direction. Only meaningful for UPDATE.
	IsNegative bool

	// Month is the full month name as produced by BucketKeysFor.
	// The first three characters form the bucket key.
	Month string

	// Day is the day bucket key, used verbatim.
	Day string

	// Year selects the target record. For ADD this is the creation
	// year; for UPDATE and DELETE it is derived from the bill's
	// original creation date, so prior-year amendments land on the
	// prior year's record.
	Year int
}

// Validate rejects events the source implementation would have silently
// coerced into corrupted totals.
func (e BillEvent) Validate() error {
	if e.AmountMinor < 0 {
		return fmt.Errorf("amount must be a non-negative magnitude, got %d", e.AmountMinor)
	}

	switch e.Action {
	case ActionAdd, ActionUpdate, ActionDelete:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, e.Action)
	}

	switch e.BillType {
	case BillSold, BillStitched:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBillType, e.BillType)
	}

	switch e.CustomerType {
	case CustomerNew, CustomerOld:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCustomerType, e.CustomerType)
	}

	if len(strings.TrimSpace(e.Month)) < monthKeyLen {
		return fmt.Errorf("month must be at least %d characters, got %q", monthKeyLen, e.Month)
	}

	if e.Day == "" {
		return fmt.Errorf("day is required")
	}

	if e.Year <= 0 {
		return fmt.Errorf("year is required")
	}

	return nil
}
