package handler

import (
	"github.com/dafibh/tally/tally-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, categoryHandler *CategoryHandler, chargeHandler *ChargeHandler, statsHandler *StatsHandler) {
	// API version 1
	api := e.Group("/api/v1")

	protected := []echo.MiddlewareFunc{authMiddleware.Authenticate()}
	if rateLimiter != nil {
		protected = append(protected, middleware.RateLimitMiddleware(rateLimiter))
	}

	// Auth routes (protected)
	auth := api.Group("/auth", protected...)
	auth.GET("/me", authHandler.Me)
	auth.POST("/logout", authHandler.Logout)

	// Category routes (protected)
	categories := api.Group("/categories", protected...)
	categories.GET("", categoryHandler.ListCategories)
	categories.POST("", categoryHandler.CreateCategory)
	categories.POST("/order", categoryHandler.ReorderCategories)
	categories.GET("/:id", categoryHandler.GetCategory)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.PUT("/:id/icon", categoryHandler.UploadIcon)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Charge routes (protected)
	charges := api.Group("/charges", protected...)
	charges.POST("", chargeHandler.CreateCharge)
	charges.GET("", chargeHandler.SummarizeCharges)
	charges.GET("/recent", chargeHandler.GetRecentCharges)
	charges.GET("/:id", chargeHandler.GetCharge)
	charges.PUT("/:id", chargeHandler.UpdateCharge)
	charges.DELETE("/:id", chargeHandler.DeleteCharge)

	// Stats routes (protected)
	stats := api.Group("/stats", protected...)
	stats.GET("", statsHandler.GetStats)
}
