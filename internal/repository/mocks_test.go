package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// mockRow implements pgx.Row for testing.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockRows implements pgx.Rows for testing. scanFn receives the zero-based row index.
type mockRows struct {
	count     int
	index     int
	scanFn    func(i int, dest ...any) error
	errOnRows error
	closed    bool
}

func (m *mockRows) Close() { m.closed = true }

func (m *mockRows) Err() error {
	return m.errOnRows
}

func (m *mockRows) Next() bool {
	if m.index < m.count {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(m.index-1, dest...)
	}
	return nil
}

func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockPool implements PoolInterface and database.TxQuerier for testing.
type mockPool struct {
	execFn     func(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (m *mockPool) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	if m.execFn != nil {
		return m.execFn(ctx, sql, arguments...)
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

// fillCoupon writes c into the destinations used by scanCoupon.
func fillCoupon(dest []any, c *model.Coupon) {
	*(dest[0].(*uuid.UUID)) = c.ID
	*(dest[1].(*string)) = c.Code
	*(dest[2].(*string)) = string(c.DiscountType)
	*(dest[3].(*decimal.Decimal)) = c.DiscountValue
	*(dest[4].(*decimal.Decimal)) = c.MinOrderAmount
	*(dest[5].(**time.Time)) = c.StartAt
	*(dest[6].(**time.Time)) = c.ExpiresAt
	*(dest[7].(*int)) = c.UsageLimit
	*(dest[8].(*int)) = c.UsedCount
	*(dest[9].(*[]string)) = c.UsedBy
	*(dest[10].(*[]string)) = c.Category
	*(dest[11].(*[]string)) = c.SubCategory
	*(dest[12].(*[]string)) = c.ProductCategory
	*(dest[13].(*string)) = c.Image
	*(dest[14].(*string)) = c.TermsAndConditions
	*(dest[15].(*string)) = c.Description
	*(dest[16].(*bool)) = c.IsActive
	*(dest[17].(*time.Time)) = c.CreatedAt
	*(dest[18].(*time.Time)) = c.UpdatedAt
}

func sampleCoupon(code string) *model.Coupon {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return &model.Coupon{
		ID:             uuid.New(),
		Code:           code,
		DiscountType:   model.DiscountFixed,
		DiscountValue:  decimal.RequireFromString("12.50"),
		MinOrderAmount: decimal.Zero,
		UsageLimit:     3,
		UsedCount:      1,
		UsedBy:         []string{"u1"},
		Category:       []string{"Books"},
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
