package authclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	keyUser  = "user"
	keyToken = "accessToken"

	DefaultTamperInterval = 2 * time.Second
)

type State int

const (
	Unauthenticated State = iota
	Authenticated
	Expired
)

func (s State) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Expired:
		return "expired"
	default:
		return "unauthenticated"
	}
}

// Storage is the client-side session store. Entries in it are not trusted.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string) error
}

type MemoryStorage struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{m: map[string]string{}}
}

func (s *MemoryStorage) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

type Remote interface {
	Logout(ctx context.Context) error
}

type Option func(*Guard)

func WithTamperInterval(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.interval = d
		}
	}
}

// WithOnTamper sets the hook run after a forced logout, typically a redirect
// to the login screen.
func WithOnTamper(fn func()) Option {
	return func(g *Guard) { g.onTamper = fn }
}

func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// Guard is the client-side session state machine:
//
//	Unauthenticated --Login--> Authenticated --token exp passes--> Expired
//	Authenticated|Expired --Logout or tamper--> Unauthenticated
//	Expired --Renew--> Authenticated
type Guard struct {
	remote   Remote
	store    Storage
	interval time.Duration
	onTamper func()
	now      func() time.Time

	mu    sync.Mutex
	state State
	user  *User
	token string
}

func NewGuard(remote Remote, store Storage, opts ...Option) *Guard {
	g := &Guard{
		remote:   remote,
		store:    store,
		interval: DefaultTamperInterval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// Load restores the session from storage. Corrupt or expired entries are
// discarded.
func (g *Guard) Load() State {
	g.mu.Lock()
	defer g.mu.Unlock()

	rawUser, okUser := g.store.Get(keyUser)
	token, okToken := g.store.Get(keyToken)
	if !okUser || !okToken || token == "" {
		g.clearStorageLocked()
		g.resetLocked()
		return g.state
	}

	var u User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil || tokenExpired(token, g.now()) {
		g.clearStorageLocked()
		g.resetLocked()
		return g.state
	}

	g.user = &u
	g.token = token
	g.state = Authenticated
	return g.state
}

func (g *Guard) Login(user User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.store.Set(keyUser, string(raw)); err != nil {
		return err
	}
	if err := g.store.Set(keyToken, token); err != nil {
		return err
	}
	g.user = &user
	g.token = token
	g.state = Authenticated
	return nil
}

// Renew installs a freshly refreshed access token.
func (g *Guard) Renew(token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.user == nil {
		return nil
	}
	if err := g.store.Set(keyToken, token); err != nil {
		return err
	}
	g.token = token
	g.state = Authenticated
	return nil
}

// Logout tells the server to drop the refresh cookie, then clears local
// state whatever the outcome of that call.
func (g *Guard) Logout(ctx context.Context) {
	if g.remote != nil {
		if err := g.remote.Logout(ctx); err != nil {
			logging.FromContext(ctx).Warn("logout_remote_failed", "error", err)
		}
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearStorageLocked()
	g.resetLocked()
}

func (g *Guard) IsTokenValid() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token != "" && !tokenExpired(g.token, g.now())
}

func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *Guard) User() *User {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.user == nil {
		return nil
	}
	u := *g.user
	return &u
}

func (g *Guard) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.token
}

// Check runs one integrity pass. It reports whether a forced logout happened.
func (g *Guard) Check(ctx context.Context) bool {
	g.mu.Lock()
	if g.state != Authenticated {
		g.mu.Unlock()
		return false
	}
	stored, _ := g.store.Get(keyToken)
	tampered := stored != g.token
	if !tampered && tokenExpired(g.token, g.now()) {
		g.state = Expired
	}
	g.mu.Unlock()

	if !tampered {
		return false
	}

	logging.FromContext(ctx).Warn("session_tamper_detected")
	g.Logout(ctx)
	if g.onTamper != nil {
		g.onTamper()
	}
	return true
}

// Run polls Check until ctx is done.
func (g *Guard) Run(ctx context.Context) {
	t := time.NewTicker(g.interval)
	defer t.Stop()

	g.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			g.Check(ctx)
		}
	}
}

func (g *Guard) resetLocked() {
	g.user = nil
	g.token = ""
	g.state = Unauthenticated
}

func (g *Guard) clearStorageLocked() {
	_ = g.store.Delete(keyUser)
	_ = g.store.Delete(keyToken)
}

// tokenExpired decodes exp without verifying the signature; the server
// remains the authority on validity.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return !claims.ExpiresAt.After(now)
}
