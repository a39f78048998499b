package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// ExecPoolInterface defines the write operations needed by CartRepository.
type ExecPoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// CartRepository writes discount annotations onto user carts.
type CartRepository struct {
	pool ExecPoolInterface
}

// NewCartRepository creates a new CartRepository with the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// NewCartRepositoryWithPool creates a new CartRepository with a custom pool interface.
// This is primarily used for testing.
func NewCartRepositoryWithPool(pool ExecPoolInterface) *CartRepository {
	return &CartRepository{pool: pool}
}

// ApplyDiscount records the redeemed coupon on the user's cart.
// It reports false when the user has no cart yet.
func (r *CartRepository) ApplyDiscount(ctx context.Context, d model.CartDiscount) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE carts
		SET discount = $2, discount_type = $3, discount_value = $4, coupon_code = $5, updated_at = NOW()
		WHERE user_id = $1`,
		d.UserID, d.Discount, string(d.DiscountType), d.DiscountValue, d.CouponCode)
	if err != nil {
		return false, fmt.Errorf("apply cart discount for %s: %w", d.UserID, err)
	}
	return tag.RowsAffected() > 0, nil
}
