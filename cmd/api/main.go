// Package main is the entry point for the recurring engine API server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/finflow/recurring-engine/config"
	"github.com/finflow/recurring-engine/internal/application/adapter"
	"github.com/finflow/recurring-engine/internal/application/usecase/account"
	"github.com/finflow/recurring-engine/internal/application/usecase/recurring"
	"github.com/finflow/recurring-engine/internal/application/usecase/template"
	"github.com/finflow/recurring-engine/internal/application/usecase/transaction"
	"github.com/finflow/recurring-engine/internal/infra/cache"
	"github.com/finflow/recurring-engine/internal/infra/db"
	"github.com/finflow/recurring-engine/internal/infra/server/router"
	"github.com/finflow/recurring-engine/internal/integration/adapters"
	"github.com/finflow/recurring-engine/internal/integration/email"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/controller"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
	"github.com/finflow/recurring-engine/internal/integration/persistence"
	"github.com/finflow/recurring-engine/internal/integration/persistence/model"
	"github.com/finflow/recurring-engine/internal/integration/scheduler"
)

func main() {
	// Load .env file if it exists (development only)
	_ = godotenv.Load()

	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg := config.Load()

	slog.Info("Starting recurring engine API",
		"environment", cfg.Server.Environment,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	// Initialize database connection
	database, err := db.NewPostgresConnection(&cfg.Database)
	if err != nil {
		slog.Error("Database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database connection", "error", err)
		}
	}()

	// Run database migrations
	if err := database.AutoMigrate(
		&model.AccountModel{},
		&model.RecurringTemplateModel{},
		&model.TransactionModel{},
	); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database migrations completed successfully")

	// Initialize redis for run locking. The engine works without it because
	// materialization is idempotent, so a failure only costs duplicate work.
	var locker adapter.RunLocker
	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		slog.Warn("Redis connection failed, running without run locks", "error", err)
	} else {
		locker = adapters.NewRedisRunLocker(redisClient)
		defer func() {
			if err := redisClient.Close(); err != nil {
				slog.Error("Failed to close redis connection", "error", err)
			}
		}()
	}

	// Create repositories
	templateRepo := persistence.NewRecurringTemplateRepository(database.DB())
	transactionRepo := persistence.NewTransactionRepository(database.DB())
	accountRepo := persistence.NewAccountRepository(database.DB())

	// Create adapters/services
	tokenService := adapters.NewTokenService(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)

	var suggester adapter.CategorySuggester
	if cfg.Gemini.APIKey != "" {
		suggester = adapters.NewGeminiService(cfg.Gemini.APIKey)
		slog.Info("Category suggestion enabled")
	}

	var emailSender adapter.EmailSender
	if cfg.Email.ResendAPIKey != "" {
		emailSender = email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	summaryNotifier := email.NewSummaryNotifier(emailSender, cfg.Email.SummaryRecipient)

	// Create use cases
	processUseCase := recurring.NewProcessRecurringUseCase(
		templateRepo,
		transactionRepo,
		accountRepo,
		locker,
		cfg.Scheduler.LockTTL,
	)
	createTemplateUseCase := template.NewCreateTemplateUseCase(templateRepo, accountRepo, suggester)
	listTemplatesUseCase := template.NewListTemplatesUseCase(templateRepo)
	updateTemplateUseCase := template.NewUpdateTemplateUseCase(templateRepo)
	deleteTemplateUseCase := template.NewDeleteTemplateUseCase(templateRepo)
	createAccountUseCase := account.NewCreateAccountUseCase(accountRepo)
	listAccountsUseCase := account.NewListAccountsUseCase(accountRepo)
	getAccountUseCase := account.NewGetAccountUseCase(accountRepo)
	listTransactionsUseCase := transaction.NewListTransactionsUseCase(transactionRepo)

	// Create controllers and middleware
	healthController := controller.NewHealthController(database.HealthCheck)
	recurringController := controller.NewRecurringController(processUseCase)
	templateController := controller.NewTemplateController(
		createTemplateUseCase,
		listTemplatesUseCase,
		updateTemplateUseCase,
		deleteTemplateUseCase,
	)
	accountController := controller.NewAccountController(
		createAccountUseCase,
		listAccountsUseCase,
		getAccountUseCase,
	)
	transactionController := controller.NewTransactionController(listTransactionsUseCase)

	processRateLimiter := middleware.NewRateLimiter()
	authMiddleware := middleware.NewAuthMiddleware(tokenService)

	// Start the scheduler worker
	workerCtx, stopWorker := context.WithCancel(context.Background())
	defer stopWorker()

	if cfg.Scheduler.Enabled {
		worker := scheduler.NewWorker(processUseCase, summaryNotifier, scheduler.WorkerConfig{
			Interval: cfg.Scheduler.Interval,
		})
		go worker.Start(workerCtx)
	} else {
		slog.Info("Scheduler disabled, materialization runs only on demand")
	}

	// Setup router
	r := router.NewRouter(
		healthController,
		recurringController,
		templateController,
		accountController,
		transactionController,
		processRateLimiter,
		authMiddleware,
	)
	engine := r.Setup(cfg.Server.Environment)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	stopWorker()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited properly")
}
