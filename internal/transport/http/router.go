package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	authmw "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
	loggingmw "github.com/Skotchmaster/storefront/pkg/middleware/logging"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
)

type Deps struct {
	Logger       *slog.Logger
	AccessSecret []byte
	CORSOrigins  []string

	AuthHandler     *handlers.AuthHandler
	CartHandler     *handlers.CartHandler
	WishlistHandler *handlers.WishlistHandler
	ProductHandler  *handlers.ProductHandler

	Metrics     *metrics.Metrics
	Limiter     ratelimit.Limiter
	AuthLimit   ratelimit.Config
	ReadinessFn func(ctx context.Context) error
}

// New builds the echo instance with the full middleware chain and routes.
func New(d *Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handlers.ErrorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), middleware.Secure())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	e.Use(loggingmw.RequestLogger(logger))
	if len(d.CORSOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins:     d.CORSOrigins,
			AllowCredentials: true,
			AllowHeaders:     []string{echo.HeaderAuthorization, echo.HeaderContentType},
		}))
	}

	Register(e, d)
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.ReadinessFn == nil {
			return c.NoContent(http.StatusOK)
		}
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := d.ReadinessFn(ctx); err != nil {
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	api := e.Group("/api")
	requireAuth := authmw.RequireAuth(d.AccessSecret)

	auth := api.Group("/auth")
	limited := ratelimit.Middleware(d.Limiter, d.AuthLimit)
	auth.POST("/register", d.AuthHandler.Register, limited)
	auth.POST("/login", d.AuthHandler.Login, limited)
	sameOrigin := csrf.SameOrigin(d.CORSOrigins)
	auth.POST("/refresh", d.AuthHandler.Refresh, sameOrigin)
	auth.POST("/logout", d.AuthHandler.LogOut, sameOrigin)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	admin := api.Group("/admin", requireAuth, authmw.RequireRole(models.RoleAdmin))
	admin.POST("/product/new", d.ProductHandler.CreateProduct)

	cart := api.Group("/cart", requireAuth)
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.DELETE("", d.CartHandler.ClearCart)
	cart.PUT("/item/:productId", d.CartHandler.UpdateCartItem)
	cart.DELETE("/item/:productId", d.CartHandler.RemoveCartItem)

	wishlist := api.Group("/wishlist", requireAuth)
	wishlist.GET("", d.WishlistHandler.GetWishlist)
	wishlist.POST("", d.WishlistHandler.Toggle)
}
