// Package router wires HTTP routes to their handlers.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/platewise/mealplan-optimizer/internal/api"
	"github.com/platewise/mealplan-optimizer/internal/middleware"
)

// Setup configures the application routes.
func Setup(handler *api.OptimizeHandler, allowedOrigins []string, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.Recovery(log))
	router.Use(middleware.CORS(allowedOrigins))

	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/optimize", handler.Optimize)
		v1.POST("/optimize/preview", handler.PreviewCatalog)
	}

	return router
}
