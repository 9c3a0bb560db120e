package csrf

import (
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

// SameOrigin guards routes authenticated by cookie alone (refresh, logout).
// A browser request whose Origin, or Referer when Origin is absent, is
// neither this host nor one of allowed is rejected with 403. Requests with
// neither header come from non-browser clients and pass.
func SameOrigin(allowed []string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			origin := req.Header.Get(echo.HeaderOrigin)
			if origin == "" {
				origin = req.Referer()
			}
			if origin == "" {
				return next(c)
			}

			u, err := url.Parse(origin)
			if err == nil && u.Host != "" {
				if slices.Contains(allowed, u.Scheme+"://"+u.Host) || slices.Contains(allowed, "*") {
					return next(c)
				}
				if strings.EqualFold(u.Scheme, schemeOf(req)) && strings.EqualFold(u.Host, req.Host) {
					return next(c)
				}
			}

			logging.FromContext(req.Context()).Warn("csrf_origin_rejected", "status", 403, "origin", origin)
			return echo.NewHTTPError(http.StatusForbidden, "invalid origin")
		}
	}
}

func schemeOf(r *http.Request) string {
	if p := r.Header.Get("X-Forwarded-Proto"); p != "" {
		return p
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
