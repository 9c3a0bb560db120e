package tokens

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const refreshType = "refresh"

var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"typ"`
	jwt.RegisteredClaims
}
