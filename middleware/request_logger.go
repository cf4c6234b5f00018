package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/HSouheill/taxdesk_backend/logger"
	"github.com/HSouheill/taxdesk_backend/metrics"
)

// RequestLogger logs one line per request through the application logger.
func RequestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			status := v.Status
			if v.Error != nil {
				status = StatusOf(v.Error)
			}
			ev := log.Zerolog().Info()
			if status >= 500 {
				ev = log.Zerolog().Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

// Metrics records request count and latency by route template.
func Metrics(m *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				status = StatusOf(err)
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RequestsTotal.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.RequestDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
