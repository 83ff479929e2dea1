package middleware

import (
	"time"

	applogger "FinSignal/pkg/logger"

	"github.com/labstack/echo/v4"
)

// RequestLogging logs one line per request at debug level, 4xx at warn.
func RequestLogging(l *applogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)

			status := c.Response().Status
			fields := []applogger.Field{
				applogger.String("method", req.Method),
				applogger.String("uri", req.RequestURI),
				applogger.String("remote_ip", c.RealIP()),
				applogger.Int("status", status),
				applogger.Duration("latency_ms", time.Since(start)),
			}
			if status >= 400 && status < 500 {
				l.Warn("http request rejected", fields...)
			} else {
				l.Debug("http request", fields...)
			}

			return err
		}
	}
}
