package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/logger"
)

type HealthController struct {
	ping func(ctx context.Context) error
	log  *logger.Logger
}

// NewHealthController reports healthy while ping succeeds.
func NewHealthController(ping func(ctx context.Context) error, log *logger.Logger) *HealthController {
	return &HealthController{ping: ping, log: log}
}

func (hc *HealthController) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if hc.ping != nil {
		if err := hc.ping(ctx); err != nil {
			hc.log.Error(err, "Health check failed")
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status":   "unhealthy",
				"database": "disconnected",
			})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}
