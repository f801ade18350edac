package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/corebank-platform/core/pkg/cerr"
)

// errorResponse is the JSON body every failed request returns.
type errorResponse struct {
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

// writeError maps a cerr.Kind to the matching HTTP status and writes the
// JSON error body, mirroring the teacher's WithError/Error-to-status
// dispatch in common/net/http/error.go.
func writeError(c *fiber.Ctx, err error) error {
	var e *cerr.Error
	if !errors.As(err, &e) {
		return c.Status(fiber.StatusInternalServerError).JSON(errorResponse{
			Title:   "Internal Error",
			Message: "The server encountered an unexpected error.",
		})
	}

	status := statusFor(e.Kind)

	return c.Status(status).JSON(errorResponse{
		Title:      e.Title,
		Message:    e.Message,
		Violations: e.Violations,
	})
}

func statusFor(kind cerr.Kind) int {
	switch kind {
	case cerr.KindValidation:
		return fiber.StatusUnprocessableEntity
	case cerr.KindNotFound:
		return fiber.StatusNotFound
	case cerr.KindInsufficientFunds, cerr.KindWithdrawalLimit, cerr.KindInvalidOperation:
		return fiber.StatusConflict
	case cerr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
