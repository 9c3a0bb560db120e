package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
)

func TestRegister_IssuesTokensForPlainUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "  Ann@Example.com ", Password: "secret1"})
	require.NoError(t, err)

	require.NotNil(t, res.User.Email)
	assert.Equal(t, "ann@example.com", *res.User.Email)
	assert.Nil(t, res.User.Phone)
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.NotEqual(t, "secret1", res.User.PasswordHash)

	access, err := f.issuer.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID.String(), access.Subject)
	assert.Equal(t, models.RoleUser, access.Role)

	refresh, err := f.issuer.ParseRefresh(res.RefreshToken)
	require.NoError(t, err)
	usable, err := f.repo.RefreshUsable(ctx, refresh.ID, res.AccessExp)
	require.NoError(t, err)
	assert.True(t, usable)

	assert.Equal(t, []string{events.UserRegistered}, f.recorder.Types())
}

func TestRegister_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, RegisterInput{Name: "Bob", Phone: "+15550001111", Password: "secret1"})
	require.NoError(t, err)

	cases := []struct {
		name string
		in   RegisterInput
		kind error
		msg  string
	}{
		{"no contact", RegisterInput{Name: "Cat", Password: "secret1"}, ErrValidation, "please provide an email or phone number"},
		{"short password", RegisterInput{Name: "Cat", Email: "cat@example.com", Password: "123"}, ErrValidation, "password must be at least 6 characters"},
		{"password over 72 bytes", RegisterInput{Name: "Cat", Email: "cat@example.com", Password: strings.Repeat("é", 40)}, ErrValidation, "password must be at most 72 bytes"},
		{"short name", RegisterInput{Name: "C", Email: "cat@example.com", Password: "secret1"}, ErrValidation, "name must be at least 2 characters"},
		{"bad email", RegisterInput{Name: "Cat", Email: "not-an-email", Password: "secret1"}, ErrValidation, "please enter a valid email"},
		{"bad phone", RegisterInput{Name: "Cat", Phone: "12ab", Password: "secret1"}, ErrValidation, "please enter a valid phone number"},
		{"email taken", RegisterInput{Name: "Cat", Email: "ANN@example.com", Password: "secret1"}, ErrConflict, "email already registered"},
		{"phone taken", RegisterInput{Name: "Cat", Phone: "+15550001111", Password: "secret1"}, ErrConflict, "phone number already registered"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tc.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.kind)
			assert.Equal(t, tc.msg, Message(err))
		})
	}
}

func TestRegister_PublishFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.recorder.Err = errors.New("broker down")

	res, err := f.auth.Register(context.Background(), RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Phone: "+15550001111", Password: "secret1"})
	require.NoError(t, err)

	res, err := f.auth.Login(ctx, LoginInput{Contact: "ANN@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)

	res, err = f.auth.Login(ctx, LoginInput{Phone: "+15550001111", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Ann", res.User.Name)

	_, err = f.auth.Login(ctx, LoginInput{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.auth.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, "invalid credentials", Message(err))

	_, err = f.auth.Login(ctx, LoginInput{Contact: "ann", Password: "secret1"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.auth.Login(ctx, LoginInput{Contact: "ann@example.com"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRefresh_And_LogOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := f.auth.Refresh(ctx, reg.RefreshToken)
	require.NoError(t, err)
	claims, err := f.issuer.ParseAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID.String(), claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	_, err = f.auth.Refresh(ctx, "")
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	// an access token is not a refresh token
	_, err = f.auth.Refresh(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	require.NoError(t, f.auth.LogOut(ctx, reg.RefreshToken))
	_, err = f.auth.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	assert.NoError(t, f.auth.LogOut(ctx, ""))
	assert.NoError(t, f.auth.LogOut(ctx, "garbage"))
}

func TestRefresh_DeletedUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reg, err := f.auth.Register(ctx, RegisterInput{Name: "Ann", Email: "ann@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, f.repo.DB.Delete(&models.User{}, "id = ?", reg.User.ID).Error)

	_, err = f.auth.Refresh(ctx, reg.RefreshToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, "user no longer exists", Message(err))
}
