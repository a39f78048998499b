package model

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DiscountType is how a coupon's discount value is interpreted.
type DiscountType string

const (
	// DiscountPercentage takes discountValue percent off the order total.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed takes a fixed amount off, capped at the order total.
	DiscountFixed DiscountType = "fixed"
)

// Valid reports whether t is a known discount type.
func (t DiscountType) Valid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon field limits.
const (
	CodeMinLength               = 3
	CodeMaxLength               = 20
	DescriptionMaxLength        = 500
	TermsAndConditionsMaxLength = 1000
	MaxPercentage               = 100
)

// Coupon represents a coupon in the system
type Coupon struct {
	ID                 uuid.UUID       `json:"id"`
	Code               string          `json:"code"`
	DiscountType       DiscountType    `json:"discountType"`
	DiscountValue      decimal.Decimal `json:"discountValue"`
	MinOrderAmount     decimal.Decimal `json:"minOrderAmount"`
	StartAt            *time.Time      `json:"startAt"`
	ExpiresAt          *time.Time      `json:"expiresAt"`
	UsageLimit         int             `json:"usageLimit"`
	UsedCount          int             `json:"usedCount"`
	UsedBy             []string        `json:"usedBy"`
	Category           []string        `json:"category"`
	SubCategory        []string        `json:"subCategory"`
	ProductCategory    []string        `json:"productCategory"`
	Image              string          `json:"image"`
	TermsAndConditions string          `json:"termsAndConditions"`
	Description        string          `json:"description"`
	IsActive           bool            `json:"isActive"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// NormalizeCode trims and uppercases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// SanitizeText trims s and strips characters that could be interpreted as markup.
func SanitizeText(s string) string {
	return strings.NewReplacer("<", "", ">", "", "&", "", `"`, "").Replace(strings.TrimSpace(s))
}

// HasCategoryRestriction reports whether the coupon is scoped to any category level.
func (c *Coupon) HasCategoryRestriction() bool {
	return len(c.Category) > 0 || len(c.SubCategory) > 0 || len(c.ProductCategory) > 0
}

// UsedByUser reports whether userID already redeemed the coupon.
func (c *Coupon) UsedByUser(userID string) bool {
	return slices.Contains(c.UsedBy, userID)
}

// Validate checks the coupon invariants. It is run on every create and edit.
func (c *Coupon) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Code,
			validation.Required.Error("code is required"),
			validation.RuneLength(CodeMinLength, CodeMaxLength).Error("code must be between 3 and 20 characters"),
		),
		validation.Field(&c.DiscountType,
			validation.Required.Error("discountType is required"),
			validation.In(DiscountPercentage, DiscountFixed).Error("discountType must be 'percentage' or 'fixed'"),
		),
		validation.Field(&c.DiscountValue, validation.By(c.validateDiscountValue)),
		validation.Field(&c.MinOrderAmount, validation.By(func(any) error {
			if c.MinOrderAmount.IsNegative() {
				return errors.New("minimum order amount cannot be negative")
			}
			if err := CheckMoney(c.MinOrderAmount); err != nil {
				return fmt.Errorf("minimum order amount %w", err)
			}
			return nil
		})),
		validation.Field(&c.ExpiresAt, validation.By(func(any) error {
			if c.StartAt != nil && c.ExpiresAt != nil && !c.ExpiresAt.After(*c.StartAt) {
				return errors.New("expiresAt must be after startAt")
			}
			return nil
		})),
		validation.Field(&c.UsageLimit,
			validation.Required.Error("usage limit must be a positive integer"),
			validation.Min(1).Error("usage limit must be a positive integer"),
			validation.By(func(any) error {
				if c.UsageLimit < c.UsedCount {
					return errors.New("usage limit cannot be less than current used count")
				}
				return nil
			}),
		),
		validation.Field(&c.Image, is.URL.Error("image must be a valid URL")),
		validation.Field(&c.TermsAndConditions,
			validation.RuneLength(0, TermsAndConditionsMaxLength).Error("terms and conditions cannot exceed 1000 characters"),
		),
		validation.Field(&c.Description,
			validation.RuneLength(0, DescriptionMaxLength).Error("description cannot exceed 500 characters"),
		),
		validation.Field(&c.Category, validation.Each(validation.Required.Error("each category must be a non-empty string"))),
		validation.Field(&c.SubCategory, validation.Each(validation.Required.Error("each subCategory must be a non-empty string"))),
		validation.Field(&c.ProductCategory, validation.Each(validation.Required.Error("each productCategory must be a non-empty string"))),
	)
}

func (c *Coupon) validateDiscountValue(any) error {
	if !c.DiscountValue.IsPositive() {
		return errors.New("discount value must be a positive number")
	}
	if err := CheckMoney(c.DiscountValue); err != nil {
		return fmt.Errorf("discount value %w", err)
	}
	if c.DiscountType == DiscountPercentage && c.DiscountValue.GreaterThan(decimal.NewFromInt(MaxPercentage)) {
		return errors.New("percentage discount cannot exceed 100")
	}
	return nil
}

// TrimNames trims every entry of names. Blank entries are kept so Validate can reject them.
func TrimNames(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = strings.TrimSpace(n)
	}
	return out
}
