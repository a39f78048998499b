package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCouponRequest is the DTO for creating a coupon
type CreateCouponRequest struct {
	Code               string           `json:"code" validate:"required,notblank"`
	DiscountType       DiscountType     `json:"discountType" validate:"required,oneof=percentage fixed"`
	DiscountValue      *decimal.Decimal `json:"discountValue" validate:"required"`
	MinOrderAmount     *decimal.Decimal `json:"minOrderAmount"`
	StartAt            *time.Time       `json:"startAt"`
	ExpiresAt          *time.Time       `json:"expiresAt"`
	UsageLimit         *int             `json:"usageLimit"`
	Image              string           `json:"image" validate:"max=2048"`
	IsActive           *bool            `json:"isActive"`
	TermsAndConditions string           `json:"termsAndConditions"`
	Description        string           `json:"description"`
	Category           []string         `json:"category"`
	SubCategory        []string         `json:"subCategory"`
	ProductCategory    []string         `json:"productCategory"`
}

// EditCouponRequest is the DTO for a partial coupon update. Absent fields are
// left unchanged; explicit nulls clear the nullable ones.
type EditCouponRequest struct {
	Code               *string             `json:"code" validate:"omitempty,notblank"`
	DiscountType       *DiscountType       `json:"discountType" validate:"omitempty,oneof=percentage fixed"`
	DiscountValue      *decimal.Decimal    `json:"discountValue"`
	MinOrderAmount     *decimal.Decimal    `json:"minOrderAmount"`
	StartAt            Nullable[time.Time] `json:"startAt"`
	ExpiresAt          Nullable[time.Time] `json:"expiresAt"`
	UsageLimit         *int                `json:"usageLimit"`
	Image              Nullable[string]    `json:"image"`
	IsActive           *bool               `json:"isActive"`
	TermsAndConditions Nullable[string]    `json:"termsAndConditions"`
	Description        Nullable[string]    `json:"description"`
	Category           *[]string           `json:"category"`
	SubCategory        *[]string           `json:"subCategory"`
	ProductCategory    *[]string           `json:"productCategory"`
}

// ValidateCouponRequest carries the query parameters of a validation call.
type ValidateCouponRequest struct {
	Code            string `query:"code" validate:"required,notblank"`
	OrderTotal      string `query:"orderTotal" validate:"required,notblank"`
	UserID          string `query:"userId" validate:"required,notblank,max=255"`
	Date            string `query:"date"`
	Category        string `query:"category"`
	SubCategory     string `query:"subCategory"`
	ProductCategory string `query:"productCategory"`
}

// RedemptionResult is the response of a successful validation.
type RedemptionResult struct {
	Valid          bool         `json:"valid"`
	Code           string       `json:"code"`
	Discount       float64      `json:"discount"`
	DiscountType   DiscountType `json:"discountType"`
	DiscountValue  float64      `json:"discountValue"`
	MinOrderAmount float64      `json:"minOrderAmount"`
	ExpiresAt      *string      `json:"expiresAt"`
	UsageLimit     int          `json:"usageLimit"`
	UsedCount      int          `json:"usedCount"`
}

// Coupon listing bounds.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// Sortable coupon fields exposed by the listing API.
const (
	SortByCreatedAt     = "createdAt"
	SortByDiscountValue = "discountValue"
	SortByExpiresAt     = "expiresAt"
	SortByCode          = "code"
)

// ListCouponsQuery carries the query parameters of the listing endpoint.
type ListCouponsQuery struct {
	Page            *int   `query:"page"`
	Limit           *int   `query:"limit"`
	IsActive        string `query:"isActive"`
	DiscountType    string `query:"discountType"`
	Expired         string `query:"expired"`
	Category        string `query:"category"`
	SubCategory     string `query:"subCategory"`
	ProductCategory string `query:"productCategory"`
	SortBy          string `query:"sortBy"`
	SortOrder       string `query:"sortOrder"`
}

// CouponFilter is the storage-level form of a listing query.
type CouponFilter struct {
	IsActive        *bool
	DiscountType    DiscountType
	Expired         *bool
	Now             time.Time
	Category        []string
	SubCategory     []string
	ProductCategory []string
	SortBy          string
	SortDesc        bool
	Offset          int
	Limit           int
}

// Pagination describes a page of a listing.
type Pagination struct {
	CurrentPage     int  `json:"currentPage"`
	TotalPages      int  `json:"totalPages"`
	TotalItems      int  `json:"totalItems"`
	Limit           int  `json:"limit"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// CouponListResponse is the API response DTO for GET /api/coupons
type CouponListResponse struct {
	Coupons    []Coupon   `json:"coupons"`
	Pagination Pagination `json:"pagination"`
}
