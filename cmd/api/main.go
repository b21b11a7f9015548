package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "logiscore/docs" // This is for Swagger
	"logiscore/internal/auth"
	"logiscore/internal/config"
	"logiscore/internal/database"
	"logiscore/internal/email"
	"logiscore/internal/handlers"
	"logiscore/internal/logger"
	"logiscore/internal/middleware"
	"logiscore/internal/models"
	"logiscore/internal/repository"
	"logiscore/internal/scheduler"
	"logiscore/internal/scoring"
	"logiscore/internal/service"
	"logiscore/internal/vault"
	"logiscore/migrations"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title LogiScore API
// @version 1.0
// @description Review aggregation backend for freight forwarder ratings
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@logiscore.net

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logger
	logger.Setup(logger.Config{
		Level: cfg.Log.Level,
	})

	slog.Info("Starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.New(ctx, &cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func(db *database.Database) {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}(db)

	slog.Info("Database connection established")

	// Run database migrations
	applied, err := database.NewMigrationExecutor(db.DB).Run(ctx, migrations.FS)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed", "applied", len(applied))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db.DB)
	sessionRepo := repository.NewSessionRepository(db.DB)
	companyRepo := repository.NewCompanyRepository(db.DB)
	questionRepo := repository.NewQuestionRepository(db.DB)
	reviewRepo := repository.NewReviewRepository(db.DB)
	disputeRepo := repository.NewDisputeRepository(db.DB)

	// Anonymous submitters are sealed only when Vault is available
	var sealer service.Sealer
	if cfg.Vault.Enabled {
		vaultClient, err := vault.NewClient(ctx, cfg.Vault)
		if err != nil {
			slog.Error("Failed to initialize Vault client", "error", err)
			os.Exit(1)
		}
		sealer = vaultClient
		slog.Info("Vault is enabled - anonymous submitters will be sealed", "vault_addr", cfg.Vault.Address)
	} else {
		slog.Warn("Vault is disabled - anonymous reviews keep no link to their author")
	}

	// Initialize services
	authService := auth.NewService(&cfg.JWT)
	emailService := email.NewService(&cfg.Email, cfg.App.Name)
	policy := scoring.AnonymityPolicy{
		Anonymous:  cfg.Review.AnonymousWeight,
		Identified: cfg.Review.IdentifiedWeight,
	}

	authSvc := service.NewAuthService(userRepo, sessionRepo, authService, emailService, cfg)
	questionSvc := service.NewQuestionService(questionRepo)
	reviewSvc := service.NewReviewService(reviewRepo, companyRepo, questionSvc, policy, sealer)
	companySvc := service.NewCompanyService(companyRepo, reviewSvc)
	adminSvc := service.NewAdminService(userRepo, companyRepo, reviewRepo, disputeRepo)
	subscriptionSvc, err := service.NewSubscriptionService(userRepo)
	if err != nil {
		slog.Error("Failed to load subscription plans", "error", err)
		os.Exit(1)
	}

	// Initialize scheduler
	schedulerService := scheduler.NewScheduler(sessionRepo, userRepo, &cfg.Scheduler)
	schedulerService.Start()
	defer schedulerService.Stop()

	// Initialize middleware
	authMw := middleware.NewAuthMiddleware(authService, sessionRepo)
	corsMw := middleware.NewCORSMiddleware(&cfg.CORS)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit)
	auditLog := middleware.NewAuditLog(slog.Default())
	go rateLimiter.Cleanup(ctx)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authSvc)
	companyHandler := handlers.NewCompanyHandler(companySvc, reviewSvc)
	searchHandler := handlers.NewSearchHandler(companySvc)
	reviewHandler := handlers.NewReviewHandler(reviewSvc, questionSvc, adminSvc)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionSvc)
	adminHandler := handlers.NewAdminHandler(adminSvc, reviewSvc, companySvc)
	healthHandler := handlers.NewHealthHandler(db.DB, cfg.App)

	authed := func(h http.HandlerFunc) http.Handler {
		return authMw.Authenticate(h)
	}
	admin := func(action string, h http.HandlerFunc) http.Handler {
		var next http.Handler = h
		if action != "" {
			next = auditLog.Log(action)(next)
		}
		return authMw.Authenticate(middleware.RequireRole(models.RoleAdmin)(next))
	}

	// Setup router
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/verify-code", authHandler.VerifyCode)
	mux.HandleFunc("POST /api/v1/auth/resend-code", authHandler.ResendCode)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/password-reset/request", authHandler.RequestPasswordReset)
	mux.HandleFunc("POST /api/v1/auth/password-reset/confirm", authHandler.ConfirmPasswordReset)

	mux.HandleFunc("GET /api/v1/companies", companyHandler.List)
	mux.HandleFunc("GET /api/v1/companies/{id}", companyHandler.Get)
	mux.HandleFunc("GET /api/v1/companies/{id}/branches", companyHandler.Branches)
	mux.HandleFunc("GET /api/v1/companies/{id}/summary", companyHandler.Summary)
	mux.HandleFunc("GET /api/v1/companies/{id}/reviews", companyHandler.Reviews)

	mux.HandleFunc("GET /api/v1/search/companies", searchHandler.Companies)
	mux.HandleFunc("GET /api/v1/search/suggestions", searchHandler.Suggestions)

	mux.HandleFunc("GET /api/v1/reviews/questions", reviewHandler.Questions)
	mux.HandleFunc("GET /api/v1/reviews/{id}", reviewHandler.Get)

	// Submitting works without an account; a token only identifies the author
	mux.Handle("POST /api/v1/reviews", authMw.OptionalAuth(http.HandlerFunc(reviewHandler.Submit)))

	// Protected routes
	mux.Handle("POST /api/v1/auth/logout", authed(authHandler.Logout))
	mux.Handle("GET /api/v1/auth/me", authed(authHandler.Me))
	mux.Handle("POST /api/v1/auth/change-password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/v1/reviews/{id}/disputes", authed(reviewHandler.OpenDispute))
	mux.Handle("GET /api/v1/subscriptions/plans", authed(subscriptionHandler.Plans))
	mux.Handle("GET /api/v1/subscriptions/current", authed(subscriptionHandler.Current))
	mux.Handle("POST /api/v1/subscriptions", authed(subscriptionHandler.Subscribe))

	// Admin routes
	mux.Handle("GET /api/v1/admin/dashboard", admin("", adminHandler.Dashboard))
	mux.Handle("GET /api/v1/admin/reviews", admin("", adminHandler.ListReviews))
	mux.Handle("POST /api/v1/admin/reviews/{id}/deactivate", admin(handlers.AuditActionReviewDeactivate, adminHandler.DeactivateReview))
	mux.Handle("DELETE /api/v1/admin/reviews/{id}", admin(handlers.AuditActionReviewDelete, adminHandler.DeleteReview))
	mux.Handle("GET /api/v1/admin/disputes", admin("", adminHandler.ListDisputes))
	mux.Handle("POST /api/v1/admin/disputes/{id}/resolve", admin(handlers.AuditActionDisputeResolve, adminHandler.ResolveDispute))
	mux.Handle("POST /api/v1/admin/companies", admin(handlers.AuditActionCompanyCreate, adminHandler.CreateCompany))
	mux.Handle("POST /api/v1/admin/companies/{id}/branches", admin(handlers.AuditActionBranchCreate, adminHandler.CreateBranch))

	// Health check endpoint
	mux.HandleFunc("GET /api/v1/health", healthHandler.Health)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Apply global middleware
	handler := middleware.LoggingMiddleware(
		middleware.SecurityHeaders(
			corsMw.Handler(
				rateLimiter.Limit(mux),
			),
		),
	)

	// Create server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.TimeoutRead,
		WriteTimeout: cfg.Server.TimeoutWrite,
		IdleTimeout:  cfg.Server.TimeoutIdle,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	select {
	case <-ctx.Done():
	case err := <-serverErr:
		slog.Error("Server failed to start", "error", err)
		return
	}

	slog.Info("Server shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return
	}

	slog.Info("Server stopped")
}
