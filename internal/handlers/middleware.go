package handlers

import (
	"log/slog"
	"time"

	"marketing-ops/monitoring"

	"github.com/labstack/echo/v5"
)

// RequestLogger logs and counts every request once it has been handled.
func RequestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			latency := time.Since(start)

			status := c.Response().Status
			if err != nil {
				status = statusOf(err)
			}

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			monitoring.TrackHTTPRequest(c.Request().Method, route, status, latency)

			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}
			slog.Log(c.Request().Context(), level, "HTTP request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", status,
				"latency", latency,
				"ip", c.RealIP(),
			)
			return err
		}
	}
}
