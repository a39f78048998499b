package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
	"github.com/fairyhunter13/coupon-validation-engine/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	GetByIDForUpdate(ctx context.Context, tx database.TxQuerier, id uuid.UUID) (*model.Coupon, error)
	ExistsByCode(ctx context.Context, code string, excludeID uuid.UUID) (bool, error)
	Update(ctx context.Context, tx database.TxQuerier, coupon *model.Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindEligible(ctx context.Context, code string, asOf time.Time) (*model.Coupon, error)
	Redeem(ctx context.Context, id uuid.UUID, userID string) (int, error)
	List(ctx context.Context, filter model.CouponFilter) ([]model.Coupon, int, error)
}

// CategoryRepositoryInterface defines read access to the category hierarchy.
type CategoryRepositoryInterface interface {
	FindActiveByNames(ctx context.Context, names []string) ([]model.Category, error)
}

// CartRepositoryInterface defines the cart annotation written after a redemption.
type CartRepositoryInterface interface {
	ApplyDiscount(ctx context.Context, d model.CartDiscount) (bool, error)
}

// MetricsRecorder receives validation outcomes.
type MetricsRecorder interface {
	ObserveValidation(outcome string)
	ObserveDiscount(amount float64)
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// CouponService provides business logic for coupon administration and redemption.
type CouponService struct {
	pool         TxBeginner
	couponRepo   CouponRepositoryInterface
	categoryRepo CategoryRepositoryInterface
	cartRepo     CartRepositoryInterface
	metrics      MetricsRecorder
	now          func() time.Time
}

// NewCouponService creates a new CouponService with the given pool and repositories.
// metrics may be nil.
func NewCouponService(
	pool *pgxpool.Pool,
	couponRepo CouponRepositoryInterface,
	categoryRepo CategoryRepositoryInterface,
	cartRepo CartRepositoryInterface,
	metrics MetricsRecorder,
) *CouponService {
	return NewCouponServiceWithTxBeginner(pool, couponRepo, categoryRepo, cartRepo, metrics)
}

// NewCouponServiceWithTxBeginner creates a CouponService with a custom TxBeginner.
// Primarily used for testing.
func NewCouponServiceWithTxBeginner(
	pool TxBeginner,
	couponRepo CouponRepositoryInterface,
	categoryRepo CategoryRepositoryInterface,
	cartRepo CartRepositoryInterface,
	metrics MetricsRecorder,
) *CouponService {
	return &CouponService{
		pool:         pool,
		couponRepo:   couponRepo,
		categoryRepo: categoryRepo,
		cartRepo:     cartRepo,
		metrics:      metrics,
		now:          time.Now,
	}
}

// Create validates and stores a new coupon.
// Returns ErrCouponExists if the normalized code is already taken.
func (s *CouponService) Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error) {
	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil || req.DiscountValue == nil {
		return nil, InvalidInput("code, discountType, and discountValue are required")
	}

	now := s.now().UTC()
	coupon := &model.Coupon{
		ID:                 uuid.New(),
		Code:               model.NormalizeCode(req.Code),
		DiscountType:       req.DiscountType,
		DiscountValue:      *req.DiscountValue,
		MinOrderAmount:     decimal.Zero,
		StartAt:            req.StartAt,
		ExpiresAt:          req.ExpiresAt,
		UsageLimit:         1,
		UsedBy:             []string{},
		Category:           model.TrimNames(req.Category),
		SubCategory:        model.TrimNames(req.SubCategory),
		ProductCategory:    model.TrimNames(req.ProductCategory),
		Image:              model.SanitizeText(req.Image),
		TermsAndConditions: model.SanitizeText(req.TermsAndConditions),
		Description:        model.SanitizeText(req.Description),
		IsActive:           true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if req.MinOrderAmount != nil {
		coupon.MinOrderAmount = *req.MinOrderAmount
	}
	if req.UsageLimit != nil {
		coupon.UsageLimit = *req.UsageLimit
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := coupon.Validate(); err != nil {
		return nil, InvalidInput("%s", err.Error())
	}

	exists, err := s.couponRepo.ExistsByCode(ctx, coupon.Code, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check coupon code: %w", err)
	}
	if exists {
		return nil, ErrCouponExists
	}

	if err := s.couponRepo.Insert(ctx, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Get retrieves a coupon by id.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	coupon, err := s.couponRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrCouponNotFound
	}
	return coupon, nil
}

// Edit applies a partial update to a coupon.
// The row is locked for the duration of the edit so concurrent redemptions
// cannot push usedCount past a lowered usageLimit.
func (s *CouponService) Edit(ctx context.Context, id uuid.UUID, req *model.EditCouponRequest) (*model.Coupon, error) {
	if req == nil {
		return nil, ErrNoChanges
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }() // Safe: no-op if committed

	coupon, err := s.couponRepo.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update: %w", err)
	}

	originalCode := coupon.Code
	if !applyEdit(coupon, req) {
		return nil, ErrNoChanges
	}
	if err := coupon.Validate(); err != nil {
		return nil, InvalidInput("%s", err.Error())
	}

	if coupon.Code != originalCode {
		exists, err := s.couponRepo.ExistsByCode(ctx, coupon.Code, coupon.ID)
		if err != nil {
			return nil, fmt.Errorf("check coupon code: %w", err)
		}
		if exists {
			return nil, ErrCouponExists
		}
	}

	coupon.UpdatedAt = s.now().UTC()
	if err := s.couponRepo.Update(ctx, tx, coupon); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit edit: %w", err)
	}
	return coupon, nil
}

// applyEdit merges req into c and reports whether any field was present.
func applyEdit(c *model.Coupon, req *model.EditCouponRequest) bool {
	changed := false
	if req.Code != nil {
		c.Code = model.NormalizeCode(*req.Code)
		changed = true
	}
	if req.DiscountType != nil {
		c.DiscountType = *req.DiscountType
		changed = true
	}
	if req.DiscountValue != nil {
		c.DiscountValue = *req.DiscountValue
		changed = true
	}
	if req.MinOrderAmount != nil {
		c.MinOrderAmount = *req.MinOrderAmount
		changed = true
	}
	if req.StartAt.Set {
		c.StartAt = nullableTime(req.StartAt)
		changed = true
	}
	if req.ExpiresAt.Set {
		c.ExpiresAt = nullableTime(req.ExpiresAt)
		changed = true
	}
	if req.UsageLimit != nil {
		c.UsageLimit = *req.UsageLimit
		changed = true
	}
	if req.IsActive != nil {
		c.IsActive = *req.IsActive
		changed = true
	}
	if req.Image.Set {
		c.Image = model.SanitizeText(req.Image.Value)
		changed = true
	}
	if req.TermsAndConditions.Set {
		c.TermsAndConditions = model.SanitizeText(req.TermsAndConditions.Value)
		changed = true
	}
	if req.Description.Set {
		c.Description = model.SanitizeText(req.Description.Value)
		changed = true
	}
	if req.Category != nil {
		c.Category = model.TrimNames(*req.Category)
		changed = true
	}
	if req.SubCategory != nil {
		c.SubCategory = model.TrimNames(*req.SubCategory)
		changed = true
	}
	if req.ProductCategory != nil {
		c.ProductCategory = model.TrimNames(*req.ProductCategory)
		changed = true
	}
	return changed
}

func nullableTime(n model.Nullable[time.Time]) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Value
	return &t
}

// Delete removes a coupon.
// Returns ErrCouponNotFound if the coupon doesn't exist.
func (s *CouponService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.couponRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrCouponNotFound) {
			return ErrCouponNotFound
		}
		return fmt.Errorf("delete coupon: %w", err)
	}
	return nil
}

// List returns one page of coupons matching the query.
func (s *CouponService) List(ctx context.Context, q *model.ListCouponsQuery) (*model.CouponListResponse, error) {
	if q == nil {
		q = &model.ListCouponsQuery{}
	}
	filter, page, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}

	coupons, total, err := s.couponRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list coupons: %w", err)
	}
	if coupons == nil {
		coupons = []model.Coupon{}
	}

	pages := (total + filter.Limit - 1) / filter.Limit
	totalPages := pages
	if totalPages == 0 {
		totalPages = 1
	}
	return &model.CouponListResponse{
		Coupons: coupons,
		Pagination: model.Pagination{
			CurrentPage:     page,
			TotalPages:      totalPages,
			TotalItems:      total,
			Limit:           filter.Limit,
			HasNextPage:     page < pages,
			HasPreviousPage: page > 1,
		},
	}, nil
}

func (s *CouponService) buildFilter(q *model.ListCouponsQuery) (model.CouponFilter, int, error) {
	filter := model.CouponFilter{
		Now:      s.now().UTC(),
		SortBy:   model.SortByCreatedAt,
		SortDesc: q.SortOrder == "" || !strings.EqualFold(q.SortOrder, "asc"),
		Limit:    model.DefaultPageLimit,
	}

	switch q.IsActive {
	case "":
	case "true", "false":
		active := q.IsActive == "true"
		filter.IsActive = &active
	default:
		return filter, 0, InvalidInput("isActive must be 'true' or 'false'")
	}

	if q.DiscountType != "" {
		dt := model.DiscountType(q.DiscountType)
		if !dt.Valid() {
			return filter, 0, InvalidInput("discountType must be 'percentage' or 'fixed'")
		}
		filter.DiscountType = dt
	}

	// Any other value for expired means "don't filter".
	switch q.Expired {
	case "true", "false":
		expired := q.Expired == "true"
		filter.Expired = &expired
	}

	scope := model.ParseCategoryContext(q.Category, q.SubCategory, q.ProductCategory)
	filter.Category = scope.Category
	filter.SubCategory = scope.SubCategory
	filter.ProductCategory = scope.ProductCategory

	page := 1
	if q.Page != nil {
		if *q.Page < 1 {
			return filter, 0, InvalidInput("page number must be a positive integer")
		}
		page = *q.Page
	}
	if q.Limit != nil {
		if *q.Limit < 1 || *q.Limit > model.MaxPageLimit {
			return filter, 0, InvalidInput("limit must be a positive integer not exceeding %d", model.MaxPageLimit)
		}
		filter.Limit = *q.Limit
	}
	filter.Offset = (page - 1) * filter.Limit

	switch q.SortBy {
	case model.SortByCreatedAt, model.SortByDiscountValue, model.SortByExpiresAt, model.SortByCode:
		filter.SortBy = q.SortBy
	}

	return filter, page, nil
}
