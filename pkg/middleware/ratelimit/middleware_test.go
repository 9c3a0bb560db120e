package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// countingLimiter is a fixed-window stand-in for redis.
type countingLimiter struct {
	mu   sync.Mutex
	hits map[string]int
	err  error
}

func (f *countingLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (*Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hits == nil {
		f.hits = map[string]int{}
	}
	f.hits[key]++
	n := f.hits[key]
	remaining := limit - n
	if remaining < 0 {
		remaining = 0
	}
	return &Result{Allowed: n <= limit, Limit: limit, Remaining: remaining, ResetAt: time.Now().Add(window)}, nil
}

func newServer(l Limiter) *echo.Echo {
	e := echo.New()
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		Middleware(l, Config{Limit: 2, Window: time.Minute}))
	return e
}

func hit(e *echo.Echo, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	req.RemoteAddr = ip + ":1234"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMiddleware_BlocksAfterLimit(t *testing.T) {
	e := newServer(&countingLimiter{})

	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	rec := hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = hit(e, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// separate client keeps its own budget
	assert.Equal(t, http.StatusOK, hit(e, "10.0.0.2").Code)
}

func TestMiddleware_FailsOpen(t *testing.T) {
	e := newServer(&countingLimiter{err: errors.New("redis down")})
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	}
}

func TestMiddleware_NilLimiter(t *testing.T) {
	e := newServer(nil)
	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, hit(e, "10.0.0.1").Code)
	}
}
