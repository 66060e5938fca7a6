package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the signed claim set carried by an access token.
// Subject holds the account email; UserID the account id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid,omitempty"`
}

// Identity is the verified caller resolved from a bearer token.
type Identity struct {
	UserID    string
	Email     string
	Token     string
	ExpiresAt time.Time
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LogoutResponse reports the logout outcome; logout has no failure shape.
type LogoutResponse struct {
	Message string `json:"message"`
}
