package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	domain "github.com/corebank-platform/core/internal/domain/metadata"
)

// metadataRoutes binds the free-form annotation side-store (Customer/Account
// KYC notes, risk flags, integration ids) directly to its repository: this
// is a supplementary surface, not a pipeline command, so it skips the
// Logging/Validation/DomainEvents chain the account/customer/transfer routes
// go through.
func metadataRoutes(app *fiber.App, repo domain.Repository) {
	app.Get("/customers/:id/metadata", getMetadata(repo, "Customer"))
	app.Put("/customers/:id/metadata", putMetadata(repo, "Customer"))
	app.Delete("/customers/:id/metadata", deleteMetadata(repo, "Customer"))

	app.Get("/accounts/:accountNumber/metadata", getMetadata(repo, "Account"))
	app.Put("/accounts/:accountNumber/metadata", putMetadata(repo, "Account"))
	app.Delete("/accounts/:accountNumber/metadata", deleteMetadata(repo, "Account"))
}

func entityIDParam(c *fiber.Ctx) string {
	if id := c.Params("id"); id != "" {
		return id
	}

	return c.Params("accountNumber")
}

func getMetadata(repo domain.Repository, entityName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		md, err := repo.FindByEntity(c.Context(), entityName, entityIDParam(c))
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(md.Data)
	}
}

func putMetadata(repo domain.Repository, entityName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var data domain.JSON
		if err := c.BodyParser(&data); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Title: "Malformed Request", Message: err.Error()})
		}

		entityID := entityIDParam(c)

		if err := repo.Update(c.Context(), entityName, entityID, data); err != nil {
			return writeError(c, err)
		}

		return c.JSON(fiber.Map{"status": "ok"})
	}
}

func deleteMetadata(repo domain.Repository, entityName string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := repo.Delete(c.Context(), entityName, entityIDParam(c)); err != nil && !errors.Is(err, fiber.ErrNotFound) {
			return writeError(c, err)
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
