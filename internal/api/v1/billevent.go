package v1

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tailorworks-lab/tailorworks/internal/core/analytics"
)

// BillEvent is the wire shape of one aggregation input, as produced by
// the bill mutation call sites (and accepted directly on the ingestion
// endpoint for backfills and out-of-process callers).
type BillEvent struct {
	// Amount is the unsigned currency magnitude to apply. Decimal on
	// the wire; converted to integer minor units at the boundary.
	Amount decimal.Decimal `json:"amount"`

	// BillType is SOLD or STITCHED.
	BillType string `json:"bill_type"`

	// CustomerType is NEW for a customer's first bill, OLD otherwise.
	CustomerType string `json:"customer_type"`

	// Action is ADD, UPDATE or DELETE.
	Action string `json:"action"`

	// IsNegative flips an UPDATE's direction. Ignored for ADD/DELETE.
	IsNegative bool `json:"is_negative,omitempty"`

	// Month is the full month name of the bill's creation date.
	Month string `json:"month"`

	// Day is the bill's creation day label, e.g. "9/16/2024".
	Day string `json:"day"`

	// Year is the bill's creation year. UPDATE and DELETE for a bill
	// created in a previous year must carry that year, not the current
	// one.
	Year int `json:"year"`
}

// ToDomain converts the wire event into the aggregator's input,
// validating it in the process.
func (e *BillEvent) ToDomain() (analytics.BillEvent, error) {
	if e.Amount.IsNegative() {
		return analytics.BillEvent{}, fmt.Errorf("amount must be a non-negative magnitude, got %s", e.Amount)
	}

	ev := analytics.BillEvent{
		AmountMinor:  analytics.MinorUnits(e.Amount),
		BillType:     e.BillType,
		CustomerType: e.CustomerType,
		Action:       e.Action,
		IsNegative:   e.IsNegative,
		Month:        e.Month,
		Day:          e.Day,
		Year:         e.Year,
	}
	if err := ev.Validate(); err != nil {
		return analytics.BillEvent{}, err
	}
	return ev, nil
}
