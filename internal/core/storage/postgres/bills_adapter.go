package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/tailorworks-lab/tailorworks/internal/billing"
)

// BillAdapter implements billing.Store for PostgreSQL.
// It shares the connection owned by the analytics Adapter.
type BillAdapter struct {
	db *sql.DB
}

// NewBillAdapter creates a bill ledger adapter over an existing connection.
func NewBillAdapter(db *sql.DB) *BillAdapter {
	return &BillAdapter{db: db}
}

func (a *BillAdapter) Insert(ctx context.Context, bill *billing.Bill) error {
	_, err := a.db.ExecContext(ctx, queryInsertBill,
		bill.ID,
		bill.CustomerName,
		bill.BillType,
		bill.CustomerType,
		bill.AmountMinor,
		bill.CreatedAt,
		bill.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill %s: %w", bill.ID, err)
	}

	slog.Debug("[Postgres] Inserted bill", "bill_id", bill.ID, "bill_type", bill.BillType)
	return nil
}

func (a *BillAdapter) Get(ctx context.Context, id uuid.UUID) (*billing.Bill, error) {
	var b billing.Bill
	err := a.db.QueryRowContext(ctx, queryGetBill, id).Scan(
		&b.ID,
		&b.CustomerName,
		&b.BillType,
		&b.CustomerType,
		&b.AmountMinor,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, billing.ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load bill %s: %w", id, err)
	}
	return &b, nil
}

func (a *BillAdapter) UpdateAmount(ctx context.Context, id uuid.UUID, amountMinor int64) error {
	res, err := a.db.ExecContext(ctx, queryUpdateBillAmount, id, amountMinor)
	if err != nil {
		return fmt.Errorf("failed to update bill %s: %w", id, err)
	}
	return requireOneRow(res, id)
}

func (a *BillAdapter) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.ExecContext(ctx, queryDeleteBill, id)
	if err != nil {
		return fmt.Errorf("failed to delete bill %s: %w", id, err)
	}
	return requireOneRow(res, id)
}

func requireOneRow(res sql.Result, id uuid.UUID) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows for bill %s: %w", id, err)
	}
	if n == 0 {
		return billing.ErrBillNotFound
	}
	return nil
}
