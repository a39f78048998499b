package model

import "github.com/shopspring/decimal"

// CartDiscount is the discount annotation written to a user's cart after a redemption.
type CartDiscount struct {
	UserID        string
	Discount      decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	CouponCode    string
}
