package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrBillNotFound is returned when a bill id has no ledger row.
var ErrBillNotFound = errors.New("bill not found")

// Bill is one ledger entry. Amendments change AmountMinor only; the
// classification and creation date are fixed at creation time because
// the analytics rollups key off them.
type Bill struct {
	ID           uuid.UUID `json:"id"`
	CustomerName string    `json:"customer_name"`
	BillType     string    `json:"bill_type"`     // SOLD or STITCHED
	CustomerType string    `json:"customer_type"` // NEW or OLD
	AmountMinor  int64     `json:"amount_minor"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the fields fixed at creation time.
func (b *Bill) Validate() error {
	if b.CustomerName == "" {
		return fmt.Errorf("customer_name is required")
	}
	if b.AmountMinor < 0 {
		return fmt.Errorf("amount must not be negative")
	}
	return nil
}

// Store is the bill ledger persistence interface.
type Store interface {
	Insert(ctx context.Context, bill *Bill) error

	// Get returns one bill, or ErrBillNotFound.
	Get(ctx context.Context, id uuid.UUID) (*Bill, error)

	// UpdateAmount sets a bill's amount. Returns ErrBillNotFound when
	// the id has no row.
	UpdateAmount(ctx context.Context, id uuid.UUID, amountMinor int64) error

	// Delete removes a bill. Returns ErrBillNotFound when the id has no row.
	Delete(ctx context.Context, id uuid.UUID) error
}
