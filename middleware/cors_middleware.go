package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
)

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowAnyOrigin reflects every origin back. Used in development.
	AllowAnyOrigin   bool
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	AllowCredentials bool
	ExposeHeaders    []string
	MaxAge           int
}

// NewCORSConfig creates a CORS configuration. In development any origin is
// accepted; otherwise only the listed origins are.
func NewCORSConfig(development bool, origins []string) *CORSConfig {
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		if trimmed := strings.TrimRight(strings.TrimSpace(origin), "/"); trimmed != "" {
			allowed = append(allowed, trimmed)
		}
	}

	return &CORSConfig{
		AllowAnyOrigin: development,
		AllowOrigins:   allowed,
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		AllowCredentials: true,
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		MaxAge:           86400, // 24 hours
	}
}

// AllowOrigin reports whether origin may call the API.
func (cfg *CORSConfig) AllowOrigin(origin string) bool {
	if cfg.AllowAnyOrigin {
		return true
	}
	for _, o := range cfg.AllowOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

// CORSWithConfig creates a CORS middleware with custom configuration.
// Preflight requests are answered here.
func CORSWithConfig(cfg *CORSConfig) echo.MiddlewareFunc {
	return echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return cfg.AllowOrigin(origin), nil
		},
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		AllowCredentials: cfg.AllowCredentials,
		ExposeHeaders:    cfg.ExposeHeaders,
		MaxAge:           cfg.MaxAge,
	})
}
