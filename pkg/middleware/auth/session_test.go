package authmw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/pkg/tokens"
)

var secret = []byte("access-secret")

func signed(t *testing.T, sub, role string, exp time.Time) string {
	t.Helper()
	claims := tokens.AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sub,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return s
}

func serve(t *testing.T, authHeader string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	e := echo.New()
	var seen echo.Context
	e.GET("/p", func(c echo.Context) error {
		seen = c
		return c.NoContent(http.StatusOK)
	}, mws...)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec, seen
}

func TestRequireAuth(t *testing.T) {
	uid := uuid.New().String()
	valid := signed(t, uid, "user", time.Now().Add(time.Minute))

	rec, c := serve(t, "Bearer "+valid, RequireAuth(secret))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, c)
	got, err := UserID(c)
	require.NoError(t, err)
	assert.Equal(t, uid, got.String())
	assert.Equal(t, "user", Role(c))

	cases := map[string]string{
		"missing":      "",
		"wrong scheme": "Basic " + valid,
		"empty bearer": "Bearer ",
		"garbage":      "Bearer not-a-jwt",
		"expired":      "Bearer " + signed(t, uid, "user", time.Now().Add(-time.Minute)),
		"other secret": "Bearer " + func() string {
			s, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
				Subject:   uid,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			}).SignedString([]byte("nope"))
			return s
		}(),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			rec, c := serve(t, header, RequireAuth(secret))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, c)
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := signed(t, uuid.New().String(), "admin", time.Now().Add(time.Minute))
	user := signed(t, uuid.New().String(), "user", time.Now().Add(time.Minute))

	rec, _ := serve(t, "Bearer "+admin, RequireAuth(secret), RequireRole("admin"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = serve(t, "Bearer "+user, RequireAuth(secret), RequireRole("admin"))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = serve(t, "", RequireRole("admin"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserID_Missing(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	assert.ErrorIs(t, err, ErrNoIdentity)
}
