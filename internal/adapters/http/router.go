// Package http is the thin Fiber binding SPEC_FULL.md's Domain Stack
// section calls for: the scheduler's dashboard read surface, and a minimal
// command/query binding for manually exercising the pipeline — not a full
// REST surface (spec.md's Non-goals keep that out of scope). Grounded on
// the teacher's fiber.New/ErrorHandler setup and WithBody decode-then-
// validate shape (common/net/http/withBody.go), generalized from "decode
// into a use-case input struct" to "decode into a pipeline command".
package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/corebank-platform/core/internal/domain/account"
	"github.com/corebank-platform/core/internal/domain/customer"
	metadatadomain "github.com/corebank-platform/core/internal/domain/metadata"
	"github.com/corebank-platform/core/internal/pipeline"
	"github.com/corebank-platform/core/internal/scheduler"
	"github.com/corebank-platform/core/internal/services/command"
	"github.com/corebank-platform/core/internal/services/query"
	"github.com/corebank-platform/core/platform/mlog"
)

// Handlers bundles every pipeline.Handler the router binds to a route. Built
// once at composition-root time from the middleware chain Logging →
// Validation → DomainEvents (spec.md §4.4).
type Handlers struct {
	CreateCustomer        pipeline.Handler[command.CreateCustomerCommand, command.CreateCustomerResult]
	CreateAccount         pipeline.Handler[command.CreateAccountCommand, command.CreateAccountResult]
	TransferMoney         pipeline.Handler[command.TransferMoneyCommand, command.TransferMoneyResult]
	GetCustomers          pipeline.Handler[query.GetCustomersQuery, []*customer.Customer]
	GetCustomerDetails    pipeline.Handler[query.GetCustomerDetailsQuery, query.CustomerDetails]
	GetAccountDetails     pipeline.Handler[query.GetAccountDetailsQuery, *account.Account]
	GetTransactionHistory pipeline.Handler[query.GetTransactionHistoryQuery, []*account.Transaction]
}

// NewRouter builds the Fiber app and registers every route.
func NewRouter(logger mlog.Logger, handlers *Handlers, sched *scheduler.Scheduler, metadataRepo metadatadomain.Repository) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return writeError(c, err)
		},
	})

	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/dashboard/jobs", func(c *fiber.Ctx) error {
		counts, err := sched.DashboardCounts(c.Context())
		if err != nil {
			return writeError(c, err)
		}

		return c.JSON(counts)
	})

	app.Post("/customers", bind(handlers.CreateCustomer))
	app.Get("/customers", bindQuery(func(ctx context.Context, _ *fiber.Ctx) (query.GetCustomersQuery, error) {
		return query.GetCustomersQuery{}, nil
	}, handlers.GetCustomers))
	app.Get("/customers/:id", bindQuery(func(ctx context.Context, c *fiber.Ctx) (query.GetCustomerDetailsQuery, error) {
		id, err := parseUUIDParam(c, "id")
		return query.GetCustomerDetailsQuery{CustomerID: id}, err
	}, handlers.GetCustomerDetails))

	app.Post("/accounts", bind(handlers.CreateAccount))
	app.Get("/accounts/:accountNumber", bindQuery(func(ctx context.Context, c *fiber.Ctx) (query.GetAccountDetailsQuery, error) {
		return query.GetAccountDetailsQuery{AccountNumber: c.Params("accountNumber")}, nil
	}, handlers.GetAccountDetails))
	app.Get("/accounts/:accountNumber/transactions", bindQuery(func(ctx context.Context, c *fiber.Ctx) (query.GetTransactionHistoryQuery, error) {
		start, end := parseDateRange(c)
		return query.GetTransactionHistoryQuery{AccountNumber: c.Params("accountNumber"), Start: start, End: end}, nil
	}, handlers.GetTransactionHistory))

	app.Post("/transfers", bind(handlers.TransferMoney))

	metadataRoutes(app, metadataRepo)

	return app
}
