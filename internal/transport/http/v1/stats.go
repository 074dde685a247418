package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StatsOverview returns the dashboard summary.
// GET /api/stats/overview
func (h *Handler) StatsOverview(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := queryDays(c, defaultOverviewDays)
	if err != nil {
		return respondError(c, err)
	}

	overview, err := h.service.StatsOverview(ctx, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, overview)
}

// StatsTimeline returns a zero-filled daily series.
// GET /api/stats/timeline
func (h *Handler) StatsTimeline(c echo.Context) error {
	ctx := c.Request().Context()

	days, err := queryDays(c, defaultOverviewDays)
	if err != nil {
		return respondError(c, err)
	}

	timeline, err := h.service.StatsTimeline(ctx, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, timeline)
}
