// Package api exposes the optimization engine over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/platewise/mealplan-optimizer/internal/optimizer"
	"github.com/platewise/mealplan-optimizer/internal/types"
)

// OptimizeHandler handles meal-plan optimization requests.
type OptimizeHandler struct {
	svc *optimizer.Service
	log *zap.Logger
}

// NewOptimizeHandler creates a new optimization handler.
func NewOptimizeHandler(svc *optimizer.Service, log *zap.Logger) *OptimizeHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &OptimizeHandler{svc: svc, log: log.Named("api")}
}

// Optimize handles POST /api/v1/optimize.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req types.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": types.StatusError, "error": err.Error()})
		return
	}

	resp, err := h.svc.Optimize(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, optimizer.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"status": types.StatusError, "error": err.Error()})
		case errors.Is(err, optimizer.ErrEmptyCandidateSet):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"status": types.StatusError, "error": err.Error()})
		default:
			h.log.Error("optimization failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"status": types.StatusError, "error": "internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// PreviewCatalog handles POST /api/v1/optimize/preview. It resolves the
// candidate catalog for a request without solving, so callers can see which
// recipes survive the hard filters.
func (h *OptimizeHandler) PreviewCatalog(c *gin.Context) {
	var req types.MealPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": types.StatusError, "error": err.Error()})
		return
	}

	catalog, err := h.svc.Preview(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, optimizer.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"status": types.StatusError, "error": err.Error()})
			return
		}
		h.log.Error("catalog preview failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"status": types.StatusError, "error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"metadata": catalog.Metadata,
		"recipes":  catalog.Recipes,
	})
}

// Health handles GET /health.
func (h *OptimizeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
