package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
	"github.com/fairyhunter13/coupon-validation-engine/internal/service"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/database"
)

// PostgreSQL error codes translated into service errors.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"

	usageConstraint = "coupons_usage_within_limit"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const couponColumns = `id, code, discount_type, discount_value, min_order_amount, start_at, expires_at,
	usage_limit, used_count, used_by, category, sub_category, product_category,
	image, terms_and_conditions, description, is_active, created_at, updated_at`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	var discountType string
	err := row.Scan(
		&c.ID,
		&c.Code,
		&discountType,
		&c.DiscountValue,
		&c.MinOrderAmount,
		&c.StartAt,
		&c.ExpiresAt,
		&c.UsageLimit,
		&c.UsedCount,
		&c.UsedBy,
		&c.Category,
		&c.SubCategory,
		&c.ProductCategory,
		&c.Image,
		&c.TermsAndConditions,
		&c.Description,
		&c.IsActive,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.DiscountType = model.DiscountType(discountType)
	return &c, nil
}

// translateWriteError maps constraint violations to service errors.
func translateWriteError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return service.ErrCouponExists
		case pgCheckViolation:
			if pgErr.ConstraintName == usageConstraint {
				return service.InvalidInput("usage limit cannot be less than current used count")
			}
			return service.InvalidInput("coupon violates constraint %s", pgErr.ConstraintName)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if a coupon with the same code already exists.
func (r *CouponRepository) Insert(ctx context.Context, c *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		c.ID, c.Code, string(c.DiscountType), c.DiscountValue, c.MinOrderAmount, c.StartAt, c.ExpiresAt,
		c.UsageLimit, c.UsedCount, nonNil(c.UsedBy), nonNil(c.Category), nonNil(c.SubCategory), nonNil(c.ProductCategory),
		c.Image, c.TermsAndConditions, c.Description, c.IsActive, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "insert coupon")
	}
	return nil
}

// GetByID retrieves a coupon by its id.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon %s: %w", id, err)
	}
	return coupon, nil
}

// GetByIDForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := scanCoupon(tx.QueryRow(ctx, `SELECT `+couponColumns+` FROM coupons WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", id, err)
	}
	return coupon, nil
}

// ExistsByCode reports whether another coupon already uses code.
// Comparison is case-insensitive; excludeID is ignored when nil.
func (r *CouponRepository) ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM coupons WHERE UPPER(code) = UPPER($1) AND id <> $2)`,
		code, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check coupon code %s: %w", code, err)
	}
	return exists, nil
}

// Update writes every mutable column of c.
// Must be called within a transaction after locking the row.
func (r *CouponRepository) Update(ctx context.Context, tx database.TxQuerier, c *model.Coupon) error {
	tag, err := tx.Exec(ctx,
		`UPDATE coupons SET
			code = $2, discount_type = $3, discount_value = $4, min_order_amount = $5,
			start_at = $6, expires_at = $7, usage_limit = $8, category = $9, sub_category = $10,
			product_category = $11, image = $12, terms_and_conditions = $13, description = $14,
			is_active = $15, updated_at = $16
		WHERE id = $1`,
		c.ID, c.Code, string(c.DiscountType), c.DiscountValue, c.MinOrderAmount,
		c.StartAt, c.ExpiresAt, c.UsageLimit, nonNil(c.Category), nonNil(c.SubCategory),
		nonNil(c.ProductCategory), c.Image, c.TermsAndConditions, c.Description,
		c.IsActive, c.UpdatedAt)
	if err != nil {
		return translateWriteError(err, "update coupon")
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// Delete removes a coupon.
// Returns service.ErrCouponNotFound if no row was deleted.
func (r *CouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM coupons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete coupon %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponNotFound
	}
	return nil
}

// FindEligible returns the coupon with the given code that is active, inside
// its validity window at asOf, and below its usage limit.
// Returns nil, nil when no such coupon exists.
func (r *CouponRepository) FindEligible(ctx context.Context, code string, asOf time.Time) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons
		WHERE UPPER(code) = UPPER($1)
			AND is_active
			AND (start_at IS NULL OR start_at <= $2)
			AND (expires_at IS NULL OR expires_at >= $2)
			AND used_count < usage_limit`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, code, asOf))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find eligible coupon %s: %w", code, err)
	}
	return coupon, nil
}

// Redeem records userID against the coupon and increments used_count in a
// single conditional statement. Returns the post-increment used count, or
// service.ErrNotEligible when the coupon is inactive, exhausted, or already
// redeemed by userID at the moment of the update.
func (r *CouponRepository) Redeem(ctx context.Context, id uuid.UUID, userID string) (int, error) {
	query := `UPDATE coupons
		SET used_by = array_append(used_by, $2),
			used_count = used_count + 1,
			updated_at = NOW()
		WHERE id = $1
			AND is_active
			AND used_count < usage_limit
			AND NOT ($2 = ANY(used_by))
		RETURNING used_count`

	var usedCount int
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(&usedCount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, service.ErrNotEligible
		}
		return 0, fmt.Errorf("redeem coupon %s: %w", id, err)
	}
	return usedCount, nil
}

var sortColumns = map[string]string{
	model.SortByCreatedAt:     "created_at",
	model.SortByDiscountValue: "discount_value",
	model.SortByExpiresAt:     "expires_at",
	model.SortByCode:          "code",
}

// List returns one page of coupons matching filter and the total match count.
// The page and the count are fetched concurrently.
func (r *CouponRepository) List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error) {
	where, args := listConditions(filter)

	column, ok := sortColumns[filter.SortBy]
	if !ok {
		column = sortColumns[model.SortByCreatedAt]
	}
	direction := "ASC"
	if filter.SortDesc {
		direction = "DESC"
	}

	pageQuery := fmt.Sprintf(`SELECT %s FROM coupons%s ORDER BY %s %s, id LIMIT $%d OFFSET $%d`,
		couponColumns, where, column, direction, len(args)+1, len(args)+2)
	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)
	countQuery := `SELECT COUNT(*) FROM coupons` + where

	var coupons []model.Coupon
	var total int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, err := r.pool.Query(gctx, pageQuery, pageArgs...)
		if err != nil {
			return fmt.Errorf("list coupons: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCoupon(rows)
			if err != nil {
				return fmt.Errorf("scan coupon: %w", err)
			}
			coupons = append(coupons, *c)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("iterate coupon rows: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := r.pool.QueryRow(gctx, countQuery, args...).Scan(&total); err != nil {
			return fmt.Errorf("count coupons: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	if coupons == nil {
		coupons = []model.Coupon{}
	}
	return coupons, total, nil
}

func listConditions(f model.CouponFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.IsActive != nil {
		add("is_active = $%d", *f.IsActive)
	}
	if f.DiscountType != "" {
		add("discount_type = $%d", string(f.DiscountType))
	}
	if f.Expired != nil {
		if *f.Expired {
			add("(expires_at IS NOT NULL AND expires_at < $%d)", f.Now)
		} else {
			add("(expires_at IS NULL OR expires_at >= $%d)", f.Now)
		}
	}
	if len(f.Category) > 0 {
		add("category && $%d", f.Category)
	}
	if len(f.SubCategory) > 0 {
		add("sub_category && $%d", f.SubCategory)
	}
	if len(f.ProductCategory) > 0 {
		add("product_category && $%d", f.ProductCategory)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
