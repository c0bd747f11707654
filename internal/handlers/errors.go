package handlers

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"talentbridge/recruiting-api/internal/apperror"
	"talentbridge/recruiting-api/internal/services"
)

// ErrorHandler renders every error returned by a route as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{
			"error": fiberErr.Message,
			"code":  fiberErr.Code,
		})
	}

	if refusal, ok := services.AsRefusal(err); ok {
		status := refusalStatus(refusal.Reason)
		body := fiber.Map{
			"error":  refusal.Message,
			"reason": refusal.Reason,
			"code":   status,
		}
		if refusal.RetryAfter != nil {
			body["retry_after"] = refusal.RetryAfter
		}
		return c.Status(status).JSON(body)
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		status := apperror.HTTPStatus(appErr.Code)
		if status >= fiber.StatusInternalServerError {
			log.Printf("❌ %s %s: %v\n", c.Method(), c.Path(), err)
		}
		body := fiber.Map{
			"error": appErr.Message,
			"code":  status,
		}
		if len(appErr.Fields) > 0 {
			body["fields"] = appErr.Fields
		}
		return c.Status(status).JSON(body)
	}

	log.Printf("❌ %s %s: %v\n", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal server error",
		"code":  fiber.StatusInternalServerError,
	})
}

func refusalStatus(reason services.Reason) int {
	switch reason {
	case services.ReasonWrongRole, services.ReasonNotOwner:
		return fiber.StatusForbidden
	case services.ReasonOfferNotFound:
		return fiber.StatusNotFound
	default:
		return fiber.StatusBadRequest
	}
}

func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("invalid id", map[string]string{"id": "must be a positive integer"})
	}
	return uint(id), nil
}

func invalidPayload() error {
	return apperror.Validation("invalid request payload", nil)
}
