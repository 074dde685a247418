// Package http provides the HTTP server for the decision timeline API.
package http

import (
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/xiaot623/decision-timeline/internal/config"
	"github.com/xiaot623/decision-timeline/internal/engine"
	"github.com/xiaot623/decision-timeline/internal/metrics"
	"github.com/xiaot623/decision-timeline/internal/service"
	v1 "github.com/xiaot623/decision-timeline/internal/transport/http/v1"
)

// NewServer creates and configures the HTTP server. The decider and metrics
// are optional.
func NewServer(cfg *config.Config, svc *service.Service, decider engine.Decider, m *metrics.Metrics) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
	}))
	e.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
		Timeout: cfg.RequestTimeout,
	}))
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}

	// Handlers
	v1Handler := v1.NewHandler(svc, decider)

	// Register Routes
	v1Handler.RegisterRoutes(e)

	return e
}
