package service

import (
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

var hundred = decimal.NewFromInt(100)

// ComputeDiscount returns the discount for orderTotal, never exceeding it,
// rounded half-up to cents.
func ComputeDiscount(discountType model.DiscountType, value, orderTotal decimal.Decimal) decimal.Decimal {
	var discount decimal.Decimal
	switch discountType {
	case model.DiscountPercentage:
		discount = orderTotal.Mul(value).Div(hundred)
	case model.DiscountFixed:
		discount = value
	default:
		return decimal.Zero
	}
	discount = decimal.Min(discount, orderTotal)
	if discount.IsNegative() {
		return decimal.Zero
	}
	return discount.Round(2)
}
