package middleware

import (
	"strconv"
	"time"

	"github.com/LeeJarvis98/moneyx-partner-backend/internal/metrics"
	"github.com/labstack/echo/v4"
)

// Metrics records request counts and latencies per route. The route
// pattern (not the raw URL) is used as the path label to keep
// cardinality bounded.
func Metrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		if path == "" {
			path = "unmatched"
		}
		method := c.Request().Method
		status := c.Response().Status
		if err != nil {
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
		}
		metrics.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		return err
	}
}
