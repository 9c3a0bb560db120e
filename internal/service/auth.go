package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events events.Publisher
}

// RegisterInput has no role field: every new account is a plain user.
type RegisterInput struct {
	Name     string `json:"name"     validate:"min=2,max=100"`
	Email    string `json:"email"    validate:"omitempty,email,max=254"`
	Phone    string `json:"phone"    validate:"omitempty,phone"`
	Password string `json:"password" validate:"min=6,bcryptmax"`
}

type LoginInput struct {
	Contact  string
	Email    string
	Phone    string
	Password string
}

type AuthResult struct {
	User         *models.User
	AccessToken  string
	AccessExp    time.Time
	RefreshToken string
	RefreshExp   time.Time
}

type RefreshResult struct {
	User        *models.User
	AccessToken string
	AccessExp   time.Time
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Email == "" && in.Phone == "" {
		return nil, newErr(ErrValidation, "please provide an email or phone number")
	}
	if err := validateStruct(in); err != nil {
		l.Warn("register_error", "status", 400, "reason", Message(err))
		return nil, err
	}

	if in.Email != "" {
		taken, err := s.Repo.EmailTaken(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			l.Warn("register_error", "status", 400, "reason", "email already registered")
			return nil, newErr(ErrConflict, "email already registered")
		}
	}
	if in.Phone != "" {
		taken, err := s.Repo.PhoneTaken(ctx, in.Phone)
		if err != nil {
			return nil, fmt.Errorf("check phone: %w", err)
		}
		if taken {
			l.Warn("register_error", "status", 400, "reason", "phone already registered")
			return nil, newErr(ErrConflict, "phone number already registered")
		}
	}

	pwHash, err := hash.HashPassword(in.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Name:         in.Name,
		Email:        optional(in.Email),
		Phone:        optional(in.Phone),
		PasswordHash: pwHash,
		Role:         models.RoleUser,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if isDuplicateErr(err) {
			l.Warn("register_error", "status", 400, "reason", "lost unique race")
			return nil, newErr(ErrConflict, "email or phone number already registered")
		}
		l.Error("register_error", "status", 500, "error", err)
		return nil, err
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUserEvents, events.Event{Type: events.UserRegistered, UserID: user.ID.String()})
	l.Info("register_success", "user_id", user.ID)
	return res, nil
}

// Login accepts either an email or a phone number as the contact. Unknown
// contacts and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	contact := firstNonBlank(in.Contact, in.Email, in.Phone)
	if contact == "" || in.Password == "" {
		return nil, newErr(ErrValidation, "please provide email/phone and password")
	}

	var (
		user *models.User
		err  error
	)
	switch {
	case emailShape.MatchString(contact):
		user, err = s.Repo.UserByEmail(ctx, strings.ToLower(contact))
	case phonePattern.MatchString(contact):
		user, err = s.Repo.UserByPhone(ctx, contact)
	default:
		return nil, newErr(ErrValidation, "please enter a valid email or phone number")
	}
	if err != nil {
		if repo.IsNotFound(err) {
			hash.CompareDummy(in.Password)
			l.Warn("login_failed", "status", 401, "reason", "unknown contact")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, in.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	res, err := s.issue(ctx, user)
	if err != nil {
		l.Error("login_failed", "status", 500, "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	publish(ctx, s.Events, events.TopicUserEvents, events.Event{Type: events.UserLoggedIn, UserID: user.ID.String()})
	l.Info("login_success", "user_id", user.ID)
	return res, nil
}

// Refresh mints a new access token. The refresh token itself is not rotated.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*RefreshResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if refreshToken == "" {
		return nil, newErr(ErrUnauthorized, "no refresh token")
	}

	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "status", 403, "reason", "token rejected", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	usable, err := s.Repo.RefreshUsable(ctx, claims.ID, time.Now())
	if err != nil {
		return nil, fmt.Errorf("lookup refresh token: %w", err)
	}
	if !usable {
		l.Warn("refresh_failed", "status", 403, "reason", "revoked or unknown jti")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("refresh_failed", "status", 401, "reason", "user no longer exists", "user_id", userID)
			return nil, newErr(ErrUnauthorized, "user no longer exists")
		}
		return nil, err
	}

	access, exp, err := s.Tokens.CreateAccessToken(user.ID.String(), user.Role)
	if err != nil {
		return nil, err
	}
	return &RefreshResult{User: user, AccessToken: access, AccessExp: exp}, nil
}

// LogOut revokes the refresh token if it can be identified. A missing or
// unreadable token is not an error.
func (s *AuthService) LogOut(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	claims, err := s.Tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.Repo.RevokeRefresh(ctx, claims.ID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	publish(ctx, s.Events, events.TopicUserEvents, events.Event{Type: events.UserLoggedOut, UserID: claims.Subject})
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*AuthResult, error) {
	access, accessExp, err := s.Tokens.CreateAccessToken(user.ID.String(), user.Role)
	if err != nil {
		return nil, err
	}
	refresh, err := s.Tokens.CreateRefreshToken(user.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.SaveRefreshToken(ctx, &models.RefreshToken{
		JTI:       refresh.JTI,
		UserID:    user.ID,
		ExpiresAt: refresh.ExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("save refresh token: %w", err)
	}

	return &AuthResult{
		User:         user,
		AccessToken:  access,
		AccessExp:    accessExp,
		RefreshToken: refresh.Token,
		RefreshExp:   refresh.ExpiresAt,
	}, nil
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
