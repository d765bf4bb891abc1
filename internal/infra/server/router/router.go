// Package router sets up the HTTP routing for the application.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/finflow/recurring-engine/internal/integration/entrypoint/controller"
	"github.com/finflow/recurring-engine/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	recurringController   *controller.RecurringController
	templateController    *controller.TemplateController
	accountController     *controller.AccountController
	transactionController *controller.TransactionController
	processRateLimiter    *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	recurringController *controller.RecurringController,
	templateController *controller.TemplateController,
	accountController *controller.AccountController,
	transactionController *controller.TransactionController,
	processRateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
) *Router {
	return &Router{
		healthController:      healthController,
		recurringController:   recurringController,
		templateController:    templateController,
		accountController:     accountController,
		transactionController: transactionController,
		processRateLimiter:    processRateLimiter,
		authMiddleware:        authMiddleware,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		// Materialization run trigger (requires authentication)
		if r.recurringController != nil && r.authMiddleware != nil {
			recurring := v1.Group("/recurring")
			recurring.Use(r.authMiddleware.Authenticate())
			{
				if r.processRateLimiter != nil {
					recurring.POST("/process", r.processRateLimiter.Middleware(), r.recurringController.Process)
				} else {
					recurring.POST("/process", r.recurringController.Process)
				}
			}
		}

		// Recurring template routes (require authentication)
		if r.templateController != nil && r.authMiddleware != nil {
			templates := v1.Group("/recurring-templates")
			templates.Use(r.authMiddleware.Authenticate())
			{
				templates.GET("", r.templateController.List)
				templates.POST("", r.templateController.Create)
				templates.PATCH("/:id", r.templateController.Update)
				templates.DELETE("/:id", r.templateController.Delete)
			}
		}

		// Account routes (require authentication)
		if r.accountController != nil && r.authMiddleware != nil {
			accounts := v1.Group("/accounts")
			accounts.Use(r.authMiddleware.Authenticate())
			{
				accounts.GET("", r.accountController.List)
				accounts.POST("", r.accountController.Create)
				accounts.GET("/:id", r.accountController.Get)
			}
		}

		// Materialized transaction routes (require authentication)
		if r.transactionController != nil && r.authMiddleware != nil {
			transactions := v1.Group("/transactions")
			transactions.Use(r.authMiddleware.Authenticate())
			{
				transactions.GET("", r.transactionController.List)
			}
		}
	}
}
