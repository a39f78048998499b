package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn           func(ctx context.Context, coupon *model.Coupon) error
	getByIDFn          func(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	getByIDForUpdateFn func(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error)
	existsByCodeFn     func(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
	updateFn           func(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	deleteFn           func(ctx context.Context, id uuid.UUID) error
	findEligibleFn     func(ctx context.Context, code string, asOf time.Time) (*model.Coupon, error)
	redeemFn           func(ctx context.Context, id uuid.UUID, userID string) (int, error)
	listFn             func(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error)
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error) {
	if m.getByIDForUpdateFn != nil {
		return m.getByIDForUpdateFn(ctx, tx, id)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	if m.existsByCodeFn != nil {
		return m.existsByCodeFn(ctx, code, excludeID)
	}
	return false, nil
}

func (m *mockCouponRepository) Update(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, tx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockCouponRepository) FindEligible(ctx context.Context, code string, asOf time.Time) (*model.Coupon, error) {
	if m.findEligibleFn != nil {
		return m.findEligibleFn(ctx, code, asOf)
	}
	return nil, nil
}

func (m *mockCouponRepository) Redeem(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	if m.redeemFn != nil {
		return m.redeemFn(ctx, id, userID)
	}
	return 1, nil
}

func (m *mockCouponRepository) List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

// mockCategoryRepository is a mock implementation of CategoryRepositoryInterface.
type mockCategoryRepository struct {
	findActiveByNamesFn func(ctx context.Context, names []string) ([]model.Category, error)
}

func (m *mockCategoryRepository) FindActiveByNames(ctx context.Context, names []string) ([]model.Category, error) {
	if m.findActiveByNamesFn != nil {
		return m.findActiveByNamesFn(ctx, names)
	}
	return nil, nil
}

// mockCartRepository is a mock implementation of CartRepositoryInterface.
type mockCartRepository struct {
	applyDiscountFn func(ctx context.Context, d model.CartDiscount) (bool, error)
}

func (m *mockCartRepository) ApplyDiscount(ctx context.Context, d model.CartDiscount) (bool, error) {
	if m.applyDiscountFn != nil {
		return m.applyDiscountFn(ctx, d)
	}
	return true, nil
}

// mockRecorder captures observed outcomes.
type mockRecorder struct {
	mu        sync.Mutex
	outcomes  []string
	discounts []float64
}

func (m *mockRecorder) ObserveValidation(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes = append(m.outcomes, outcome)
}

func (m *mockRecorder) ObserveDiscount(amount float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discounts = append(m.discounts, amount)
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

// memCouponStore is an in-memory coupon store whose Redeem is atomic under a
// mutex, mirroring the conditional UPDATE of the real repository.
type memCouponStore struct {
	mockCouponRepository
	mu      sync.Mutex
	coupons map[string]*model.Coupon
}

func newMemCouponStore(coupons ...*model.Coupon) *memCouponStore {
	s := &memCouponStore{coupons: make(map[string]*model.Coupon)}
	for _, c := range coupons {
		s.coupons[c.Code] = c
	}
	return s
}

func (s *memCouponStore) FindEligible(_ context.Context, code string, asOf time.Time) (*model.Coupon, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.coupons[code]
	if !ok || !c.IsActive || c.UsedCount >= c.UsageLimit {
		return nil, nil
	}
	if c.StartAt != nil && c.StartAt.After(asOf) {
		return nil, nil
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(asOf) {
		return nil, nil
	}
	clone := *c
	clone.UsedBy = append([]string(nil), c.UsedBy...)
	return &clone, nil
}

func (s *memCouponStore) Redeem(_ context.Context, id uuid.UUID, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.coupons {
		if c.ID != id {
			continue
		}
		if !c.IsActive || c.UsedCount >= c.UsageLimit || c.UsedByUser(userID) {
			return 0, ErrNotEligible
		}
		c.UsedBy = append(c.UsedBy, userID)
		c.UsedCount++
		return c.UsedCount, nil
	}
	return 0, ErrNotEligible
}

func (s *memCouponStore) snapshot(code string) model.Coupon {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *s.coupons[code]
	c.UsedBy = append([]string(nil), c.UsedBy...)
	return c
}
