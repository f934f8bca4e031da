package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samedayramps/ramp-api/docs"
	"github.com/samedayramps/ramp-api/internal/config"
	"github.com/samedayramps/ramp-api/internal/database"
	"github.com/samedayramps/ramp-api/internal/esign"
	"github.com/samedayramps/ramp-api/internal/gcal"
	"github.com/samedayramps/ramp-api/internal/http/handler"
	"github.com/samedayramps/ramp-api/internal/http/middleware"
	"github.com/samedayramps/ramp-api/internal/http/router"
	"github.com/samedayramps/ramp-api/internal/jobs"
	"github.com/samedayramps/ramp-api/internal/logger"
	"github.com/samedayramps/ramp-api/internal/maps"
	"github.com/samedayramps/ramp-api/internal/notify"
	"github.com/samedayramps/ramp-api/internal/payments"
	"github.com/samedayramps/ramp-api/internal/repository"
	"github.com/samedayramps/ramp-api/internal/service"
	"github.com/samedayramps/ramp-api/internal/token"
	"go.uber.org/zap"
)

// @title Ramp Rental API
// @version 1.0
// @description Sales pipeline backend for wheelchair ramp rentals: intake, quoting, e-signatures, payments, and installation scheduling.

// @contact.name API Support
// @contact.email support@samedayramps.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description API key for admin operations

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	// Configure Swagger host based on environment
	switch basicCfg.App.Environment {
	case "staging":
		docs.SwaggerInfo.Host = "api-staging.samedayramps.com"
	case "production":
		docs.SwaggerInfo.Host = "api.samedayramps.com"
	default:
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// Load full configuration with secrets
	// In development: uses environment variables
	// In staging/production: fetches from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	// Connect to database
	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Initialize repositories
	rentalRequestRepo := repository.NewRentalRequestRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	historyRepo := repository.NewQuoteStageHistoryRepository(db)
	jobRepo := repository.NewJobRepository(db)
	pricingRepo := repository.NewPricingVariablesRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	// Initialize external providers. Payment, e-signature, email, and
	// distance are required for the pipeline; calendar and push are optional
	// and stay nil when not configured.
	mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey, log)
	if err != nil {
		return fmt.Errorf("failed to initialize maps client: %w", err)
	}

	stripeClient := payments.NewStripeClient(cfg.Stripe.APIKey, log)
	esignClient := esign.NewClient(cfg.Esignature.Token, cfg.Esignature.TemplateID, log)

	emailSender, err := notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     cfg.Email.Port,
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	var pushSender service.PushSender
	if cfg.Push.Enabled() {
		pushSender = notify.NewPushoverSender(cfg.Push.AppToken, cfg.Push.UserKey, log)
		log.Info("Push notifications enabled")
	} else {
		log.Info("Push notifications not configured, skipping")
	}

	var calendarClient service.CalendarProvider
	if cfg.Calendar.Enabled() {
		gc, err := gcal.NewClient(ctx, gcal.Config{
			ClientID:     cfg.Calendar.ClientID,
			ClientSecret: cfg.Calendar.ClientSecret,
			RefreshToken: cfg.Calendar.RefreshToken,
			CalendarID:   cfg.Calendar.CalendarID,
		}, log)
		if err != nil {
			// Calendar sync is optional, keep running without it
			log.Warn("Calendar client initialization failed, continuing without calendar sync",
				zap.Error(err))
		} else {
			calendarClient = gc
			log.Info("Calendar sync enabled", zap.String("calendar_id", cfg.Calendar.CalendarID))
		}
	} else {
		log.Info("Calendar sync not configured, skipping")
	}

	if cfg.Quote.TokenSecret == "" {
		return fmt.Errorf("QUOTE_TOKEN_SECRET is required")
	}
	tokenManager := token.NewManager(cfg.Quote.TokenSecret, cfg.Quote.TokenTTL())

	// Initialize services
	pricingService := service.NewPricingService(pricingRepo, mapsClient, log)
	rentalRequestService := service.NewRentalRequestService(rentalRequestRepo, pushSender, log)
	customerService := service.NewCustomerService(customerRepo, log)
	quoteService := service.NewQuoteService(quoteRepo, customerRepo, historyRepo, pricingService, log)
	lifecycleService := service.NewQuoteLifecycleService(
		quoteRepo,
		historyRepo,
		activityRepo,
		tokenManager,
		stripeClient,
		esignClient,
		emailSender,
		pushSender,
		service.QuoteLinksConfig{
			FrontendURL: cfg.Quote.FrontendURL,
			AppBaseURL:  cfg.Quote.AppBaseURL,
		},
		log,
	)
	jobService := service.NewJobService(jobRepo, quoteRepo, historyRepo, activityRepo, calendarClient, pushSender, log)
	activityService := service.NewActivityService(activityRepo, log)

	// Initialize middleware
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	rentalRequestHandler := handler.NewRentalRequestHandler(rentalRequestService, log)
	customerHandler := handler.NewCustomerHandler(customerService, log)
	quoteHandler := handler.NewQuoteHandler(quoteService, lifecycleService, jobService, log)
	jobHandler := handler.NewJobHandler(jobService, log)
	pricingHandler := handler.NewPricingHandler(pricingService, log)
	activityHandler := handler.NewActivityHandler(activityService, log)
	webhookHandler := handler.NewWebhookHandler(lifecycleService, cfg.Stripe.WebhookSecret, cfg.Esignature.Token, log)
	signatureHandler := handler.NewSignatureHandler(quoteService, lifecycleService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		rateLimiter,
		rentalRequestHandler,
		customerHandler,
		quoteHandler,
		jobHandler,
		pricingHandler,
		activityHandler,
		webhookHandler,
		signatureHandler,
	)

	// Initialize and start scheduler for background jobs
	var scheduler *jobs.Scheduler
	if cfg.Jobs.AgreementSyncEnabled {
		scheduler = jobs.NewScheduler(log)

		if err := jobs.RegisterAgreementSyncJob(
			scheduler,
			lifecycleService,
			log,
			cfg.Jobs.AgreementSyncSchedule,
			jobs.DefaultAgreementSyncTimeout,
		); err != nil {
			log.Error("Failed to register agreement sync job", zap.Error(err))
		} else {
			scheduler.Start()
			log.Info("Scheduler started with agreement sync job",
				zap.String("cron_expr", cfg.Jobs.AgreementSyncSchedule))
		}
	} else {
		log.Info("Agreement sync disabled")
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Stop scheduler if running
		if scheduler != nil {
			ctx := scheduler.Stop()
			<-ctx.Done()
			log.Info("Scheduler stopped")
		}

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
