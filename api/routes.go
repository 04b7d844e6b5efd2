package api

import (
	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/ledgerstack/ledgerstack/api/handlers"
	"github.com/ledgerstack/ledgerstack/api/middleware"
	"github.com/ledgerstack/ledgerstack/internal/repository"
	"github.com/ledgerstack/ledgerstack/internal/tracing"
	"github.com/ledgerstack/ledgerstack/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	// Add recovery middlewares
	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	// setup handlers
	apiHandlers := handlers.InitHandlers(s, repos)

	// Health check endpoint (no auth)
	r.GET("/health", handlers.HealthCheck)

	// Google redirects here; it cannot carry our API key
	r.GET("/oauth/google/callback", apiHandlers.OAuth.Callback())

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-LEDGERSTACK-API-KEY",
		ValidAPIKey: apikey,
	})

	// API group with version
	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	{
		users := api.Group("/users")
		{
			users.POST("", apiHandlers.Users.Register())
			users.GET("/:id", apiHandlers.Users.Get())
			users.PUT("/:id", apiHandlers.Users.Update())

			users.GET("/:id/google/connect", apiHandlers.OAuth.Connect())

			users.POST("/:id/sync", apiHandlers.Sync.Trigger())
			users.DELETE("/:id/sync", apiHandlers.Sync.Reset())

			users.GET("/:id/transactions", apiHandlers.Transactions.List())
			users.POST("/:id/transactions/categorize", apiHandlers.Transactions.Categorize())

			users.GET("/:id/reports", apiHandlers.Transactions.GetReport())
			users.POST("/:id/reports", apiHandlers.Transactions.GenerateReport())
		}
	}
}
