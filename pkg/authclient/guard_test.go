package authclient

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRemote struct {
	calls int
	err   error
}

func (f *fakeRemote) Logout(context.Context) error {
	f.calls++
	return f.err
}

func tokenExp(t *testing.T, exp time.Time) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("whatever"))
	require.NoError(t, err)
	return s
}

func storedSession(t *testing.T, token string) *MemoryStorage {
	t.Helper()
	s := NewMemoryStorage()
	raw, err := json.Marshal(User{ID: "u1", Name: "Ann", Role: "user"})
	require.NoError(t, err)
	require.NoError(t, s.Set(keyUser, string(raw)))
	require.NoError(t, s.Set(keyToken, token))
	return s
}

func TestGuard_Load(t *testing.T) {
	valid := tokenExp(t, time.Now().Add(time.Hour))
	g := NewGuard(nil, storedSession(t, valid))
	assert.Equal(t, Authenticated, g.Load())
	assert.Equal(t, "Ann", g.User().Name)
	assert.True(t, g.IsTokenValid())

	store := storedSession(t, tokenExp(t, time.Now().Add(-time.Minute)))
	g = NewGuard(nil, store)
	assert.Equal(t, Unauthenticated, g.Load())
	_, ok := store.Get(keyToken)
	assert.False(t, ok, "expired entry is discarded")

	store = NewMemoryStorage()
	require.NoError(t, store.Set(keyUser, "{not json"))
	require.NoError(t, store.Set(keyToken, valid))
	g = NewGuard(nil, store)
	assert.Equal(t, Unauthenticated, g.Load())
	_, ok = store.Get(keyUser)
	assert.False(t, ok)

	store = NewMemoryStorage()
	require.NoError(t, store.Set(keyUser, `{"id":"u1","name":"Ann"}`))
	g = NewGuard(nil, store)
	assert.Equal(t, Unauthenticated, g.Load())
	_, ok = store.Get(keyUser)
	assert.False(t, ok, "orphaned user entry is discarded")

	g = NewGuard(nil, NewMemoryStorage())
	assert.Equal(t, Unauthenticated, g.Load())
	assert.False(t, g.IsTokenValid())
}

func TestGuard_LoginLogout(t *testing.T) {
	remote := &fakeRemote{err: errors.New("network down")}
	store := NewMemoryStorage()
	g := NewGuard(remote, store)

	token := tokenExp(t, time.Now().Add(time.Hour))
	require.NoError(t, g.Login(User{ID: "u1", Name: "Ann"}, token))
	assert.Equal(t, Authenticated, g.State())
	got, _ := store.Get(keyToken)
	assert.Equal(t, token, got)

	g.Logout(context.Background())
	assert.Equal(t, 1, remote.calls)
	assert.Equal(t, Unauthenticated, g.State())
	assert.Nil(t, g.User())
	_, ok := store.Get(keyToken)
	assert.False(t, ok, "storage cleared even when the remote call fails")
}

func TestGuard_TamperForcesLogout(t *testing.T) {
	remote := &fakeRemote{}
	store := NewMemoryStorage()
	tampered := 0
	g := NewGuard(remote, store, WithOnTamper(func() { tampered++ }))

	require.NoError(t, g.Login(User{ID: "u1"}, tokenExp(t, time.Now().Add(time.Hour))))
	assert.False(t, g.Check(context.Background()))

	require.NoError(t, store.Set(keyToken, tokenExp(t, time.Now().Add(24*time.Hour))))
	assert.True(t, g.Check(context.Background()))
	assert.Equal(t, Unauthenticated, g.State())
	assert.Equal(t, 1, tampered)
	assert.Equal(t, 1, remote.calls)

	// nothing to guard once logged out
	assert.False(t, g.Check(context.Background()))
}

func TestGuard_ExpiryAndRenew(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	g := NewGuard(nil, NewMemoryStorage(), WithClock(clock))

	require.NoError(t, g.Login(User{ID: "u1"}, tokenExp(t, now.Add(time.Minute))))
	assert.True(t, g.IsTokenValid())

	now = now.Add(2 * time.Minute)
	assert.False(t, g.IsTokenValid())
	assert.False(t, g.Check(context.Background()))
	assert.Equal(t, Expired, g.State())

	require.NoError(t, g.Renew(tokenExp(t, now.Add(time.Minute))))
	assert.Equal(t, Authenticated, g.State())
	assert.True(t, g.IsTokenValid())
}

func TestGuard_RunDetectsTamper(t *testing.T) {
	store := NewMemoryStorage()
	detected := make(chan struct{}, 1)
	g := NewGuard(nil, store,
		WithTamperInterval(5*time.Millisecond),
		WithOnTamper(func() { detected <- struct{}{} }))
	require.NoError(t, g.Login(User{ID: "u1"}, tokenExp(t, time.Now().Add(time.Hour))))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go g.Run(ctx)

	require.NoError(t, store.Set(keyToken, "edited"))
	select {
	case <-detected:
	case <-time.After(2 * time.Second):
		t.Fatal("tamper not detected")
	}
	assert.Equal(t, Unauthenticated, g.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "expired", Expired.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
