package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/coupon-validation-engine/internal/service"
)

// formatValidationError converts validator errors to client-facing messages.
// Only the first failing field is reported.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		field := fe.Field()

		switch fe.Tag() {
		case "required":
			return "invalid request: " + field + " is required"
		case "notblank":
			return "invalid request: " + field + " cannot be whitespace only"
		case "max":
			return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
		case "oneof":
			return "invalid request: " + field + " must be one of: " + fe.Param()
		default:
			return "invalid request: " + field + " is invalid"
		}
	}
	return "invalid request"
}

// statusFor maps a service error kind to an HTTP status.
func statusFor(kind service.ErrorKind) int {
	switch kind {
	case service.KindInvalidInput, service.KindAlreadyUsed, service.KindNotApplicable, service.KindBelowMinimum:
		return fiber.StatusBadRequest
	case service.KindNotEligible, service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError writes err as {"error": msg}. Storage failures are logged
// with detail and answered with a generic message.
func respondError(c *fiber.Ctx, err error, op string) error {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status == fiber.StatusInternalServerError {
		log.Error().Err(err).Str("op", op).Str("request_id", requestID(c)).Msg("request failed")
		return c.Status(status).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func requestID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return ""
}
