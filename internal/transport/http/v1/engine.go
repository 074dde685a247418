package v1

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DecideRequest is the input to the rule engine.
type DecideRequest struct {
	InputData   json.RawMessage `json:"input_data"`
	SystemState json.RawMessage `json:"system_state,omitempty"`
}

// Decide runs the rule engine over the request and records its decision.
// POST /api/engine/decide
func (h *Handler) Decide(c echo.Context) error {
	ctx := c.Request().Context()

	var req DecideRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	create, err := h.decider.Decide(ctx, req.InputData, req.SystemState)
	if err != nil {
		return respondError(c, err)
	}

	decision, err := h.service.CreateDecision(ctx, create)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, decision)
}
