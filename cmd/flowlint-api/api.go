// Package main provides the Flowlint API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/flowlint/pkg/cache"
	"github.com/dukex/flowlint/pkg/eventbus"
	"github.com/dukex/flowlint/pkg/persistence"
	"github.com/dukex/flowlint/pkg/registry"
	"github.com/dukex/flowlint/pkg/services"
	"github.com/dukex/flowlint/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	validate    *validator.Validate
	reportCache *cache.ReportCache
	deployGate  *eventbus.DeployGatePublisher
	tracer      trace.Tracer

	validationService *services.Validation
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
) *API {
	return &API{
		persistence: persistence,
		logger:      logger,
		registry:    registry,
		eventBus:    eventBus,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) WithCache(reportCache *cache.ReportCache) *API {
	a.reportCache = reportCache

	return a
}

func (a *API) WithTracer(tracer trace.Tracer) *API {
	a.tracer = tracer

	return a
}

func (a *API) WithDeployGate(deployGate *eventbus.DeployGatePublisher) *API {
	a.deployGate = deployGate

	return a
}

// ValidationService lazily builds the validation service shared by the
// HTTP handlers and the revalidation scheduler.
func (a *API) ValidationService() *services.Validation {
	if a.validationService == nil {
		validation := services.NewValidation(a.logger, a.persistence, a.registry).
			WithEventBus(a.eventBus)

		if a.reportCache != nil {
			validation.WithCache(a.reportCache)
		}

		if a.deployGate != nil {
			validation.WithDeployGate(a.deployGate)
		}

		if a.tracer != nil {
			validation.WithTracer(a.tracer)
		}

		a.validationService = validation
	}

	return a.validationService
}

func (a *API) App() *fiber.App {
	workflowService := services.NewWorkflow(a.logger, a.persistence, a.eventBus)
	validationService := a.ValidationService()

	handlers := web.NewAPIHandlers(workflowService, validationService, a.validate, a.registry)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Flowlint API")
	})

	w := app.Group("/workflows")
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Patch("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/validate", handlers.ValidateWorkflow)
	w.Get("/:id/report", handlers.GetReport)

	app.Post("/validate", handlers.ValidateDocument)
	app.Get("/node-types", handlers.GetNodeTypes)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
