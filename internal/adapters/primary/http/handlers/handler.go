package handlers

import (
	"net/http"

	"sentiment-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

const readOnlyAllow = "GET, OPTIONS"

type Handler struct {
	predictionSvc *services.PredictionService
	historySvc    *services.ComparisonHistoryService
}

// New builds the HTTP handlers. historySvc is nil when no database is configured,
// in which case the comparison routes are not registered.
func New(predictionSvc *services.PredictionService, historySvc *services.ComparisonHistoryService) *Handler {
	return &Handler{
		predictionSvc: predictionSvc,
		historySvc:    historySvc,
	}
}

// RegisterPredictRoutes mounts the inference endpoint. POST goes through the
// protected routes; every other method is answered with 405 on the engine itself,
// before any authentication runs. Methods without an explicit route (TRACE,
// CONNECT, WebDAV verbs, ...) reach the engine's NoMethod handler.
func (h *Handler) RegisterPredictRoutes(protected gin.IRoutes, engine *gin.Engine) {
	for _, path := range predictPaths {
		protected.POST(path, h.Predict)
		for _, method := range rejectedMethods {
			engine.Handle(method, path, h.MethodNotAllowed)
		}
	}

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(h.NoMethod)
}

// RegisterRoutes mounts the read-only API. Each route also answers OPTIONS with its
// allowed methods; those requests are let through authentication by the preflight
// middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Model catalog
	r.GET("/models", h.ListModels)
	r.OPTIONS("/models", h.Options)

	// Comparison history
	if h.historySvc != nil {
		r.GET("/comparisons", h.ListComparisons)
		r.GET("/comparisons/:id", h.GetComparison)
		r.OPTIONS("/comparisons", h.Options)
		r.OPTIONS("/comparisons/:id", h.Options)
	}
}

// Options reports the methods a read-only route accepts.
func (h *Handler) Options(c *gin.Context) {
	c.Header("Allow", readOnlyAllow)
	c.Status(http.StatusNoContent)
}
