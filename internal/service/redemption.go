package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

const outcomeRedeemed = "redeemed"

// Validate checks a coupon against an order and, when eligible, redeems it
// for the user. The redemption is a single conditional update, so racing
// callers can never push usedCount past usageLimit or count one user twice.
func (s *CouponService) Validate(ctx context.Context, req *model.ValidateCouponRequest) (result *model.RedemptionResult, err error) {
	defer func() { s.observe(result, err) }()

	// Defense-in-depth: check for nil pointer even though handler validates
	if req == nil {
		return nil, InvalidInput("coupon code, order total, and userId are required")
	}

	code := model.NormalizeCode(req.Code)
	userID := strings.TrimSpace(req.UserID)
	rawTotal := strings.TrimSpace(req.OrderTotal)
	if code == "" || userID == "" || rawTotal == "" {
		return nil, InvalidInput("coupon code, order total, and userId are required")
	}

	orderTotal, perr := model.ParseMoney(rawTotal)
	if perr != nil || !orderTotal.IsPositive() {
		return nil, InvalidInput("order total must be a positive number with at most 2 decimal places, below %s", model.MaxMoney)
	}

	asOf := s.now().UTC()
	if req.Date != "" {
		asOf, err = ParseAsOfDate(req.Date)
		if err != nil {
			return nil, err
		}
	}

	coupon, err := s.couponRepo.FindEligible(ctx, code, asOf)
	if err != nil {
		return nil, fmt.Errorf("find eligible coupon: %w", err)
	}
	if coupon == nil {
		return nil, ErrNotEligible
	}

	if coupon.UsedByUser(userID) {
		return nil, ErrAlreadyUsed
	}

	if coupon.HasCategoryRestriction() {
		scope := model.ParseCategoryContext(req.Category, req.SubCategory, req.ProductCategory)
		matched, err := s.matchCategories(ctx, coupon, scope)
		if err != nil {
			return nil, err
		}
		if !matched {
			return nil, ErrNotApplicable
		}
	}

	if coupon.MinOrderAmount.IsPositive() && orderTotal.LessThan(coupon.MinOrderAmount) {
		return nil, withMessage(ErrBelowMinimum, "order total must be at least %s", coupon.MinOrderAmount.StringFixed(2))
	}

	discount := ComputeDiscount(coupon.DiscountType, coupon.DiscountValue, orderTotal)

	usedCount, err := s.couponRepo.Redeem(ctx, coupon.ID, userID)
	if err != nil {
		if errors.Is(err, ErrNotEligible) {
			return nil, ErrNotEligible
		}
		return nil, fmt.Errorf("redeem coupon: %w", err)
	}

	s.annotateCart(ctx, model.CartDiscount{
		UserID:        userID,
		Discount:      discount,
		DiscountType:  coupon.DiscountType,
		DiscountValue: coupon.DiscountValue,
		CouponCode:    coupon.Code,
	})

	return &model.RedemptionResult{
		Valid:          true,
		Code:           coupon.Code,
		Discount:       discount.InexactFloat64(),
		DiscountType:   coupon.DiscountType,
		DiscountValue:  coupon.DiscountValue.InexactFloat64(),
		MinOrderAmount: coupon.MinOrderAmount.InexactFloat64(),
		ExpiresAt:      formatExpiry(coupon.ExpiresAt),
		UsageLimit:     coupon.UsageLimit,
		UsedCount:      usedCount,
	}, nil
}

// matchCategories loads the active nodes named by the coupon and matches the
// purchase scope against them. A coupon restricted only below the top level
// names no nodes and therefore matches nothing.
func (s *CouponService) matchCategories(ctx context.Context, coupon *model.Coupon, scope model.CategoryContext) (bool, error) {
	if len(coupon.Category) == 0 {
		return false, nil
	}
	nodes, err := s.categoryRepo.FindActiveByNames(ctx, coupon.Category)
	if err != nil {
		return false, fmt.Errorf("load categories: %w", err)
	}
	return MatchCategoryContext(nodes, scope), nil
}

func (s *CouponService) annotateCart(ctx context.Context, d model.CartDiscount) {
	if s.cartRepo == nil {
		return
	}
	found, err := s.cartRepo.ApplyDiscount(ctx, d)
	if err != nil {
		log.Warn().Err(err).Str("user_id", d.UserID).Str("code", d.CouponCode).Msg("cart discount update failed")
		return
	}
	if !found {
		log.Debug().Str("user_id", d.UserID).Msg("no cart to annotate")
	}
}

func (s *CouponService) observe(result *model.RedemptionResult, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.ObserveValidation(KindOf(err).String())
		return
	}
	s.metrics.ObserveValidation(outcomeRedeemed)
	s.metrics.ObserveDiscount(result.Discount)
}
