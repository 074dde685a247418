package v1

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/decision-timeline/internal/domain"
	"github.com/xiaot623/decision-timeline/internal/service"
)

// CreateDecision records a decision and its trace.
// POST /api/decisions
func (h *Handler) CreateDecision(c echo.Context) error {
	ctx := c.Request().Context()

	var req domain.CreateDecisionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	decision, err := h.service.CreateDecision(ctx, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, decision)
}

// ListDecisions returns one page of decisions matching the query filters.
// GET /api/decisions
func (h *Handler) ListDecisions(c echo.Context) error {
	ctx := c.Request().Context()

	q, err := listQuery(c)
	if err != nil {
		return respondError(c, err)
	}

	page, err := h.service.ListDecisions(ctx, q)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetDecision returns a decision with its full trace.
// GET /api/decisions/:decision_id
func (h *Handler) GetDecision(c echo.Context) error {
	ctx := c.Request().Context()

	decision, err := h.service.GetDecision(ctx, c.Param("decision_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, decision)
}

// ReplayDecision returns a decision prepared for playback.
// GET /api/decisions/:decision_id/replay
func (h *Handler) ReplayDecision(c echo.Context) error {
	ctx := c.Request().Context()

	replay, err := h.service.ReplayDecision(ctx, c.Param("decision_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, replay)
}

// DeleteDecision removes a decision and its steps.
// DELETE /api/decisions/:decision_id
func (h *Handler) DeleteDecision(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.service.DeleteDecision(ctx, c.Param("decision_id")); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportCSV downloads the matching decisions as CSV.
// GET /api/decisions/export/csv
func (h *Handler) ExportCSV(c echo.Context) error {
	return h.export(c, service.FormatCSV)
}

// ExportJSON downloads the matching decisions with their steps as JSON.
// GET /api/decisions/export/json
func (h *Handler) ExportJSON(c echo.Context) error {
	return h.export(c, service.FormatJSON)
}

func (h *Handler) export(c echo.Context, format service.ExportFormat) error {
	ctx := c.Request().Context()

	filter, err := exportFilter(c)
	if err != nil {
		return respondError(c, err)
	}

	export, err := h.service.Export(ctx, filter)
	if err != nil {
		return respondError(c, err)
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, format); err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s", export.Filename(format)))
	return c.Blob(http.StatusOK, format.ContentType(), buf.Bytes())
}
