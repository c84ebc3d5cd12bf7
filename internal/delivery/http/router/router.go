package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"red-envelope/internal/config"
	"red-envelope/internal/delivery/http/handler"
	"red-envelope/internal/domain/entity"
	"red-envelope/internal/infrastructure/metrics"
)

type Router struct {
	app             *fiber.App
	config          *config.Config
	metrics         *metrics.Metrics
	envelopeHandler *handler.EnvelopeHandler
	networkHandler  *handler.NetworkHandler
	healthHandler   *handler.HealthHandler
}

func NewRouter(
	cfg *config.Config,
	m *metrics.Metrics,
	envelopeHandler *handler.EnvelopeHandler,
	networkHandler *handler.NetworkHandler,
	healthHandler *handler.HealthHandler,
) *Router {
	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ErrorHandler: customErrorHandler,
	})

	return &Router{
		app:             app,
		config:          cfg,
		metrics:         m,
		envelopeHandler: envelopeHandler,
		networkHandler:  networkHandler,
		healthHandler:   healthHandler,
	}
}

func (r *Router) Setup() *fiber.App {
	// Middleware
	r.app.Use(recover.New())
	r.app.Use(requestid.New())
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	if r.config.IsDevelopment() {
		r.app.Use(logger.New(logger.Config{
			Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
		}))
	}

	r.app.Get("/health", r.healthHandler.Health)

	if r.metrics != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(
			promhttp.HandlerFor(r.metrics.Registry, promhttp.HandlerOpts{}),
		))
	}

	// API v1 routes
	api := r.app.Group("/api/v1")
	{
		envelopes := api.Group("/envelopes")
		{
			envelopes.Get("", r.envelopeHandler.ListEnvelopes)
			// Registered before /:id so "stats" is not parsed as an id.
			envelopes.Get("/stats", r.envelopeHandler.GetStats)
			envelopes.Get("/:id", r.envelopeHandler.GetEnvelope)
			envelopes.Get("/:id/claimers", r.envelopeHandler.GetClaimers)
		}

		api.Get("/network", r.networkHandler.GetNetwork)
		api.Get("/transactions/:hash/events", r.networkHandler.GetTransactionEvents)
	}

	return r.app
}

func (r *Router) GetApp() *fiber.App {
	return r.app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	errCode := entity.CodeInternal

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		switch {
		case code == fiber.StatusNotFound:
			errCode = entity.CodeNotFound
		case code < fiber.StatusInternalServerError:
			errCode = entity.CodeBadRequest
		}
	}

	return c.Status(code).JSON(entity.NewErrorResponse(errCode, err.Error()))
}
