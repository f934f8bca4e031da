package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/samedayramps/ramp-api/internal/config"
	"github.com/samedayramps/ramp-api/internal/database"
	"github.com/samedayramps/ramp-api/internal/http/handler"
	"github.com/samedayramps/ramp-api/internal/http/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/samedayramps/ramp-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg                  *config.Config
	logger               *zap.Logger
	db                   *gorm.DB
	rateLimiter          *middleware.RateLimiter
	rentalRequestHandler *handler.RentalRequestHandler
	customerHandler      *handler.CustomerHandler
	quoteHandler         *handler.QuoteHandler
	jobHandler           *handler.JobHandler
	pricingHandler       *handler.PricingHandler
	activityHandler      *handler.ActivityHandler
	webhookHandler       *handler.WebhookHandler
	signatureHandler     *handler.SignatureHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	rentalRequestHandler *handler.RentalRequestHandler,
	customerHandler *handler.CustomerHandler,
	quoteHandler *handler.QuoteHandler,
	jobHandler *handler.JobHandler,
	pricingHandler *handler.PricingHandler,
	activityHandler *handler.ActivityHandler,
	webhookHandler *handler.WebhookHandler,
	signatureHandler *handler.SignatureHandler,
) *Router {
	return &Router{
		cfg:                  cfg,
		logger:               logger,
		db:                   db,
		rateLimiter:          rateLimiter,
		rentalRequestHandler: rentalRequestHandler,
		customerHandler:      customerHandler,
		quoteHandler:         quoteHandler,
		jobHandler:           jobHandler,
		pricingHandler:       pricingHandler,
		activityHandler:      activityHandler,
		webhookHandler:       webhookHandler,
		signatureHandler:     signatureHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(r.Context(), rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// Manual signing fallback page (customer-facing, served as HTML)
	r.Get("/manual-signature/{quoteId}", rt.signatureHandler.ShowForm)
	r.Post("/manual-signature/{quoteId}", rt.signatureHandler.Submit)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Rental requests (intake is public, the rest is operator-facing)
		r.Route("/rental-requests", func(r chi.Router) {
			r.Post("/", rt.rentalRequestHandler.Create)
			r.Get("/", rt.rentalRequestHandler.List)
			r.Get("/{id}", rt.rentalRequestHandler.GetByID)
			r.Put("/{id}/status", rt.rentalRequestHandler.UpdateStatus)
			r.Post("/{id}/convert", rt.rentalRequestHandler.Convert)
		})

		// Customers
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", rt.customerHandler.List)
			r.Post("/", rt.customerHandler.Create)
			r.Get("/{id}", rt.customerHandler.GetByID)
			r.Put("/{id}", rt.customerHandler.Update)
			r.Delete("/{id}", rt.customerHandler.Delete)
		})

		// Quotes
		r.Route("/quotes", func(r chi.Router) {
			r.Get("/", rt.quoteHandler.List)
			r.Post("/", rt.quoteHandler.Create)
			r.Get("/{id}", rt.quoteHandler.GetByID)
			r.Put("/{id}", rt.quoteHandler.Update)
			r.Delete("/{id}", rt.quoteHandler.Delete)

			// Lifecycle endpoints
			r.Post("/{id}/send", rt.quoteHandler.Send)
			r.Post("/{id}/accept", rt.quoteHandler.Accept)
			r.Post("/{id}/cancel", rt.quoteHandler.Cancel)
			r.Post("/{id}/job", rt.quoteHandler.CreateJob)

			r.Get("/{id}/history", rt.quoteHandler.GetHistory)
		})

		// Jobs
		r.Route("/jobs", func(r chi.Router) {
			r.Get("/", rt.jobHandler.List)
			r.Get("/{id}", rt.jobHandler.GetByID)
			r.Put("/{id}/schedule", rt.jobHandler.Schedule)
			r.Post("/{id}/complete", rt.jobHandler.Complete)
			r.Post("/{id}/cancel", rt.jobHandler.Cancel)
		})

		// Pricing calculator (used by the quote form)
		r.Post("/pricing/calculate", rt.pricingHandler.Calculate)

		// Pricing settings (admin only)
		r.Route("/settings/pricing", func(r chi.Router) {
			r.Use(middleware.APIKey(rt.cfg.ApiKey.Value, rt.logger))
			r.Get("/", rt.pricingHandler.GetVariables)
			r.Put("/", rt.pricingHandler.UpdateVariables)
		})

		// Activities
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", rt.activityHandler.ListRecent)
			r.Post("/", rt.activityHandler.Create)
			r.Get("/{targetType}/{targetId}", rt.activityHandler.ListByTarget)
		})

		// Vendor webhooks
		r.Route("/webhooks", func(r chi.Router) {
			r.Post("/stripe", rt.webhookHandler.Stripe)
			r.Post("/esignature", rt.webhookHandler.Esignature)
		})
	})

	return r
}
