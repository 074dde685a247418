// Package v1 provides the HTTP handlers of the decision timeline API.
package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/engine"
	"github.com/xiaot623/decision-timeline/internal/service"
)

const version = "1.0.0"

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
	decider engine.Decider
}

// NewHandler creates a new handler. A nil decider disables the engine route.
func NewHandler(service *service.Service, decider engine.Decider) *Handler {
	return &Handler{
		service: service,
		decider: decider,
	}
}

// RegisterRoutes registers the API routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")

	// Decisions
	api.POST("/decisions", h.CreateDecision)
	api.GET("/decisions", h.ListDecisions)
	api.GET("/decisions/export/csv", h.ExportCSV)
	api.GET("/decisions/export/json", h.ExportJSON)
	api.GET("/decisions/:decision_id", h.GetDecision)
	api.GET("/decisions/:decision_id/replay", h.ReplayDecision)
	api.DELETE("/decisions/:decision_id", h.DeleteDecision)

	// Traces
	api.GET("/traces/stats", h.TraceStats)
	api.GET("/traces/timeline", h.TraceTimeline)
	api.GET("/traces/search", h.SearchTraces)
	api.GET("/traces/tags", h.ListTags)

	// Stats
	api.GET("/stats/overview", h.StatsOverview)
	api.GET("/stats/timeline", h.StatsTimeline)

	if h.decider != nil {
		api.POST("/engine/decide", h.Decide)
	}

	e.GET("/", h.Root)
	e.GET("/health", h.Health)
}

// Root describes the API.
func (h *Handler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Decision Timeline API",
		"version": version,
		"endpoints": map[string]string{
			"decisions": "/api/decisions",
			"traces":    "/api/traces",
			"stats":     "/api/stats/overview",
		},
	})
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version,
	})
}

// respondError maps service errors onto status codes.
func respondError(c echo.Context, err error) error {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusUnprocessableEntity, map[string]string{
			"error": verr.Message,
			"field": verr.Field,
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}
