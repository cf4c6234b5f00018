package routes

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/controllers"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/websocket"
)

// Options carries the pieces of route setup that live outside the
// controllers.
type Options struct {
	Hub         *websocket.Hub
	AllowOrigin func(origin string) bool
	Ping        func(ctx context.Context) error
}

// SetupRoutes configures all API routes by calling the per-area
// registration functions.
func SetupRoutes(e *echo.Echo, deps *controllers.Deps, opts Options) {
	health := controllers.NewHealthController(opts.Ping, deps.Log)
	e.Match([]string{"GET", "HEAD"}, "/health", health.Health)
	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	authed := middleware.Authenticate(deps.JWT, deps.CheckAccount)

	RegisterAuthRoutes(e, deps, authed)
	RegisterAdminRoutes(e, deps, authed)
	RegisterWorkRoutes(e, deps, authed)
	RegisterDocumentRoutes(e, deps, authed)
	RegisterBillingRoutes(e, deps, authed)
	RegisterCatalogRoutes(e, deps, authed)

	if opts.Hub != nil {
		e.GET("/api/ws", websocket.Handler(opts.Hub, deps.JWT, opts.AllowOrigin))
	}
}
