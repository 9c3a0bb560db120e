package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/handlers"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	httpserver "github.com/Skotchmaster/storefront/internal/transport/http"
	"github.com/Skotchmaster/storefront/pkg/db"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/metrics"
	"github.com/Skotchmaster/storefront/pkg/middleware/ratelimit"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var autoMigrate bool

// storefront serve
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	serveCmd.Flags().BoolVar(&autoMigrate, "migrate", true, "apply schema migrations on start")
}

func serve(ctx context.Context) error {
	cfg, gdb, ctx, err := bootDB(ctx)
	if err != nil {
		return err
	}
	l := logging.FromContext(ctx)

	if autoMigrate {
		if err := models.AutoMigrate(gdb.WithContext(ctx)); err != nil {
			_ = db.Close(gdb)
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var pub events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.KafkaBrokers)
		if err != nil {
			_ = db.Close(gdb)
			return fmt.Errorf("kafka: %w", err)
		}
		pub = kp
	} else {
		l.Warn("kafka_disabled", "reason", "KAFKA_BROKERS is empty")
	}

	var (
		limiter ratelimit.Limiter
		rdb     *redis.Client
	)
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			l.Warn("redis_unreachable", "addr", cfg.RedisAddr, "error", err)
		}
		limiter = ratelimit.NewRedisLimiter(rdb)
	} else {
		l.Warn("rate_limit_disabled", "reason", "REDIS_ADDR is empty")
	}

	issuer, err := tokens.NewIssuer(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTTL, cfg.RefreshTTL)
	if err != nil {
		_ = db.Close(gdb)
		return err
	}

	r := repo.New(gdb)
	m := metrics.New()
	cookiePath := "/api/auth"

	e := httpserver.New(&httpserver.Deps{
		Logger:       l,
		AccessSecret: cfg.JWTSecret,
		CORSOrigins:  cfg.CORSOrigins,
		AuthHandler: &handlers.AuthHandler{
			Svc:     &service.AuthService{Repo: r, Tokens: issuer, Events: pub},
			Cookies: handlers.CookieConfig{Secure: cfg.Production(), Path: cookiePath},
			Metrics: m,
		},
		CartHandler:     &handlers.CartHandler{Svc: &service.CartService{Repo: r, Events: pub}, Metrics: m},
		WishlistHandler: &handlers.WishlistHandler{Svc: &service.WishlistService{Repo: r, Events: pub}, Metrics: m},
		ProductHandler:  &handlers.ProductHandler{Svc: &service.CatalogService{Repo: r, Events: pub}},
		Metrics:         m,
		Limiter:         limiter,
		AuthLimit:       ratelimit.Config{Limit: cfg.AuthRateLimit, Window: cfg.AuthRateWindow, Prefix: "rl:auth:"},
		ReadinessFn:     func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	})

	srv := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("http_listen", "addr", cfg.ServerAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		l.Info("shutting_down")
	case serveErr = <-errCh:
		l.Error("http_server_error", "error", serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("server_shutdown_error", "error", err)
	}
	if err := db.Close(gdb); err != nil {
		l.Error("db_close_error", "error", err)
	}
	if err := pub.Close(); err != nil {
		l.Error("kafka_close_error", "error", err)
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			l.Error("redis_close_error", "error", err)
		}
	}

	l.Info("shutdown_complete")
	return serveErr
}
