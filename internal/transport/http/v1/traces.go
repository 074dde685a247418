package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/decision-timeline/internal/domain"
)

// TraceStats summarizes traces over the trailing days.
// GET /api/traces/stats
func (h *Handler) TraceStats(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := queryDays(c, defaultTraceDays)
	if err != nil {
		return respondError(c, err)
	}

	stats, err := h.service.TraceStats(ctx, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// TraceTimeline returns per-day counts for the days that had decisions.
// GET /api/traces/timeline
func (h *Handler) TraceTimeline(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := queryDays(c, defaultTraceDays)
	if err != nil {
		return respondError(c, err)
	}

	timeline, err := h.service.TraceTimeline(ctx, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, timeline)
}

// SearchTraces finds decisions whose reasoning or decision text contains the query.
// GET /api/traces/search
func (h *Handler) SearchTraces(c echo.Context) error {
	ctx := c.Request().Context()

	query := c.QueryParam("query")
	if strings.TrimSpace(query) == "" {
		return respondError(c, domain.Invalid("query", "field required"))
	}
	limit, err := queryInt(c, "limit", domain.DefaultSearchLimit, 1, domain.MaxSearchLimit)
	if err != nil {
		return respondError(c, err)
	}

	results, err := h.service.Search(ctx, query, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, results)
}

// ListTags lists the distinct tags in use.
// GET /api/traces/tags
func (h *Handler) ListTags(c echo.Context) error {
	ctx := c.Request().Context()

	tags, err := h.service.ListTags(ctx)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, tags)
}
