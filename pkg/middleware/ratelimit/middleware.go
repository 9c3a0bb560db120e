package ratelimit

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

type Config struct {
	Limit  int
	Window time.Duration
	Prefix string
}

// Middleware limits requests per client IP and route. When the limiter
// itself fails the request is let through.
func Middleware(l Limiter, cfg Config) echo.MiddlewareFunc {
	if cfg.Prefix == "" {
		cfg.Prefix = "rl:"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l == nil || cfg.Limit <= 0 {
				return next(c)
			}

			key := cfg.Prefix + c.Path() + ":" + c.RealIP()
			res, err := l.Allow(c.Request().Context(), key, cfg.Limit, cfg.Window)
			if err != nil {
				logging.FromContext(c.Request().Context()).Warn("ratelimit_unavailable", "error", err)
				return next(c)
			}

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(res.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(res.ResetAt.Unix(), 10))

			if !res.Allowed {
				retry := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", strconv.Itoa(retry))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}
