package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// ValidationServiceInterface defines the coupon validation engine.
type ValidationServiceInterface interface {
	Validate(ctx context.Context, req *model.ValidateCouponRequest) (*model.RedemptionResult, error)
}

// ValidateHandler handles coupon validation requests.
type ValidateHandler struct {
	service   ValidationServiceInterface
	validator *validator.Validate
}

// NewValidateHandler creates a new ValidateHandler with the given service and validator.
func NewValidateHandler(svc ValidationServiceInterface, v *validator.Validate) *ValidateHandler {
	return &ValidateHandler{service: svc, validator: v}
}

// ValidateCoupon handles GET /api/coupons/validate requests.
// A successful response means the coupon has been redeemed for the user.
func (h *ValidateHandler) ValidateCoupon(c *fiber.Ctx) error {
	var req model.ValidateCouponRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: malformed query parameters"})
	}
	// Older clients send the product category under its capitalised name.
	if req.ProductCategory == "" {
		req.ProductCategory = c.Query("ProductCategory")
	}

	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	result, err := h.service.Validate(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "validate coupon")
	}

	log.Info().
		Str("coupon_code", result.Code).
		Str("user_id", req.UserID).
		Float64("discount", result.Discount).
		Int("used_count", result.UsedCount).
		Msg("coupon redeemed")

	return c.JSON(result)
}
