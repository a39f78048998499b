package handler

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-validation-engine/internal/model"
)

// CouponServiceInterface defines the interface for coupon administration.
type CouponServiceInterface interface {
	Create(ctx context.Context, req *model.CreateCouponRequest) (*model.Coupon, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	Edit(ctx context.Context, id uuid.UUID, req *model.EditCouponRequest) (*model.Coupon, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, q *model.ListCouponsQuery) (*model.CouponListResponse, error)
}

// CouponHandler handles HTTP requests for coupon administration.
type CouponHandler struct {
	service   CouponServiceInterface
	validator *validator.Validate
}

// NewCouponHandler creates a new CouponHandler with the given service and validator.
func NewCouponHandler(svc CouponServiceInterface, v *validator.Validate) *CouponHandler {
	return &CouponHandler{service: svc, validator: v}
}

func parseCouponID(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func invalidID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: invalid coupon id"})
}

// CreateCoupon handles POST /api/coupons requests to create a new coupon.
func (h *CouponHandler) CreateCoupon(c *fiber.Ctx) error {
	var req model.CreateCouponRequest

	// Parse JSON body
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	coupon, err := h.service.Create(c.Context(), &req)
	if err != nil {
		return respondError(c, err, "create coupon")
	}

	log.Info().Str("coupon_id", coupon.ID.String()).Str("coupon_code", coupon.Code).Msg("coupon created")
	return c.Status(fiber.StatusCreated).JSON(coupon)
}

// GetCoupon handles GET /api/coupons/:id requests.
func (h *CouponHandler) GetCoupon(c *fiber.Ctx) error {
	id, err := parseCouponID(c)
	if err != nil {
		return invalidID(c)
	}

	coupon, err := h.service.Get(c.Context(), id)
	if err != nil {
		return respondError(c, err, "get coupon")
	}
	return c.JSON(coupon)
}

// EditCoupon handles PATCH /api/coupons/:id requests. Absent fields are
// left unchanged; explicit nulls clear optional fields.
func (h *CouponHandler) EditCoupon(c *fiber.Ctx) error {
	id, err := parseCouponID(c)
	if err != nil {
		return invalidID(c)
	}

	var req model.EditCouponRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if err := h.validator.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	}

	coupon, err := h.service.Edit(c.Context(), id, &req)
	if err != nil {
		return respondError(c, err, "edit coupon")
	}

	log.Info().Str("coupon_id", coupon.ID.String()).Str("coupon_code", coupon.Code).Msg("coupon updated")
	return c.JSON(coupon)
}

// DeleteCoupon handles DELETE /api/coupons/:id requests.
func (h *CouponHandler) DeleteCoupon(c *fiber.Ctx) error {
	id, err := parseCouponID(c)
	if err != nil {
		return invalidID(c)
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return respondError(c, err, "delete coupon")
	}

	log.Info().Str("coupon_id", id.String()).Msg("coupon deleted")
	return c.SendStatus(fiber.StatusNoContent)
}

// ListCoupons handles GET /api/coupons requests.
func (h *CouponHandler) ListCoupons(c *fiber.Ctx) error {
	var q model.ListCouponsQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request: page and limit must be integers"})
	}

	resp, err := h.service.List(c.Context(), &q)
	if err != nil {
		return respondError(c, err, "list coupons")
	}
	return c.JSON(resp)
}
