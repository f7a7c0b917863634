package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spec-kit/ticket-console/internal/api/http/handlers"
	"github.com/spec-kit/ticket-console/internal/auth"
	"github.com/spec-kit/ticket-console/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Tickets        *handlers.TicketsHandler
	Templates      *handlers.TemplatesHandler
	Sessions       *handlers.SessionsHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes. Fixed ticket paths are registered before
// /:id so they are not captured as ticket ids.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if reg := cfg.Metrics.Registry(); reg != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api", cfg.AuthMiddleware.Handle)

	tickets := api.Group("/tickets")
	tickets.Get("/", cfg.Tickets.ListTickets)
	tickets.Get("/search", cfg.Tickets.SearchTickets)
	tickets.Post("/filter", cfg.Tickets.FilterTickets)
	tickets.Get("/archived", cfg.Tickets.ListArchived)
	tickets.Get("/sla-summary", cfg.Tickets.SLASummary)
	tickets.Get("/sla-alerts", cfg.Tickets.SLAAlerts)
	tickets.Post("/export", cfg.Tickets.Export)
	tickets.Post("/manual", cfg.Tickets.CreateManual)
	tickets.Post("/assign/recommend", cfg.Tickets.Recommend)
	tickets.Post("/batch/assign", cfg.Tickets.BatchAssign)
	tickets.Post("/batch/close", cfg.Tickets.BatchClose)
	tickets.Post("/batch/priority", cfg.Tickets.BatchPriority)
	tickets.Get("/:id", cfg.Tickets.GetTicket)
	tickets.Patch("/:id", cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/assign", cfg.Tickets.AssignTicket)
	tickets.Post("/:id/reopen", cfg.Tickets.ReopenTicket)
	tickets.Post("/:id/archive", cfg.Tickets.ArchiveTicket)
	tickets.Post("/:id/comments", cfg.Tickets.AddComment)
	tickets.Delete("/:id/comments/:comment_id", cfg.Tickets.DeleteComment)

	templates := api.Group("/templates")
	templates.Get("/", cfg.Templates.List)
	templates.Post("/", cfg.Templates.Create)
	templates.Put("/:id", cfg.Templates.Replace)
	templates.Delete("/:id", cfg.Templates.Delete)
	templates.Post("/:id/render", cfg.Templates.Render)

	api.Get("/assist-requests", cfg.Sessions.AssistRequests)
	api.Post("/assist-requests/:id/answer", cfg.Sessions.AnswerAssist)
	api.Get("/transfer-requests/pending", cfg.Sessions.PendingTransfers)
	api.Post("/transfer-requests/:id/respond", cfg.Sessions.RespondTransfer)
	api.Get("/sessions/:name/transfer-history", cfg.Sessions.TransferHistory)
}

// NewApp builds the fiber application with middlewares and routes installed.
func NewApp(name string, logger *zap.Logger, timeout time.Duration, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		// only reached by errors raised outside the middleware chain
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := toDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(failureOf(domainErr))
		},
	})
	RegisterMiddlewares(app, observability.OrNop(logger), routes.Metrics, timeout)
	RegisterRoutes(app, routes)
	return app
}
