package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/corebank-platform/core/internal/pipeline"
)

// bind decodes the request body into TCmd and runs it through handler,
// writing the typed result as JSON on success or the mapped error body on
// failure.
func bind[TCmd any, TResult any](handler pipeline.Handler[TCmd, TResult]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var cmd TCmd

		if err := c.BodyParser(&cmd); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Title: "Malformed Request", Message: err.Error()})
		}

		result, _, err := handler(c.Context(), cmd)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(result)
	}
}

// bindQuery builds a query value from the request (path params, query
// string) via build, then runs it through handler.
func bindQuery[TCmd any, TResult any](build func(ctx context.Context, c *fiber.Ctx) (TCmd, error), handler pipeline.Handler[TCmd, TResult]) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cmd, err := build(c.Context(), c)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Title: "Malformed Request", Message: err.Error()})
		}

		result, _, err := handler(c.Context(), cmd)
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(result)
	}
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Params(name))
}

// parseDateRange reads ?start=&end= as RFC3339 dates, defaulting end to now
// and start to the zero time (an open lower bound).
func parseDateRange(c *fiber.Ctx) (start, end time.Time) {
	end = time.Now().UTC()

	if v := c.Query("end"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			end = parsed
		}
	}

	if v := c.Query("start"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			start = parsed
		}
	}

	return start, end
}
