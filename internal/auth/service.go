package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
)

var (
	ErrBadCredentials = errors.New("incorrect username or password")
	ErrTokenRevoked   = errors.New("token revoked")
)

const (
	msgBadCredentials   = "Incorrect username or password"
	msgLoggedOut        = "User logged out successfully."
	msgAlreadyLoggedOut = "Invalid token or already logged out."
)

// Credentials looks up accounts and checks passwords; *user.UserService satisfies it.
type Credentials interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	VerifyPassword(u *entity.User, pw string) bool
}

// TokenStore tracks issued tokens so they can be revoked.
type TokenStore interface {
	Save(ctx context.Context, token, subject string, expiresAt time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	DeleteByToken(ctx context.Context, token string) (int64, error)
	// PurgeExpired drops tokens past their expiry; used by the maintenance CLI.
	PurgeExpired(ctx context.Context) (int64, error)
}

// AuthService issues, verifies and revokes access tokens.
type AuthService struct {
	creds  Credentials
	tokens TokenStore
	codec  *Codec
	ttl    time.Duration
	logger *zap.SugaredLogger
}

func NewAuthService(creds Credentials, tokens TokenStore, codec *Codec, ttl time.Duration, logger *zap.SugaredLogger) *AuthService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &AuthService{creds: creds, tokens: tokens, codec: codec, ttl: ttl, logger: logger}
}

// Login checks the password of the account whose email equals username and
// issues a token. Unknown accounts and wrong passwords both yield ErrBadCredentials.
// The username is matched as given apart from surrounding whitespace.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	email := strings.TrimSpace(username)
	if email == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.creds.FindByEmail(ctx, email)
	if err != nil {
		// unknown accounts fail exactly like wrong passwords
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if !s.creds.VerifyPassword(u, password) {
		return nil, ErrBadCredentials
	}

	token, exp, err := s.codec.IssueFor(u.Email, u.ID, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	if err := s.tokens.Save(ctx, token, u.Email, exp); err != nil {
		return nil, fmt.Errorf("record token: %w", err)
	}
	s.logger.Debugw("login succeeded", "user_id", u.ID)
	return &LoginResponse{AccessToken: token, ExpiresIn: int64(s.ttl / time.Second)}, nil
}

// Logout revokes the token in the Authorization header value. It never fails;
// only the message differs.
func (s *AuthService) Logout(ctx context.Context, authorization string) LogoutResponse {
	token := StripBearer(authorization)
	if token == "" {
		return LogoutResponse{Message: msgAlreadyLoggedOut}
	}
	n, err := s.tokens.DeleteByToken(ctx, token)
	if err != nil {
		s.logger.Warnw("token revocation failed", "err", err)
		return LogoutResponse{Message: msgAlreadyLoggedOut}
	}
	if n > 0 {
		return LogoutResponse{Message: msgLoggedOut}
	}
	return LogoutResponse{Message: msgAlreadyLoggedOut}
}

// Authenticate verifies a bearer token and that it has not been revoked.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*Identity, error) {
	claims, err := s.codec.Parse(token)
	if err != nil {
		return nil, err
	}
	ok, err := s.tokens.Exists(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if !ok {
		return nil, ErrTokenRevoked
	}
	return &Identity{
		UserID:    claims.UserID,
		Email:     claims.Subject,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// StripBearer removes a leading "Bearer " (any case) from an Authorization value.
func StripBearer(header string) string {
	header = strings.TrimSpace(header)
	if len(header) >= 7 && strings.EqualFold(header[:7], "bearer ") {
		header = header[7:]
	}
	return strings.TrimSpace(header)
}

// IsUnauthorized reports whether err is an authorization failure rather than an operational one.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrBadCredentials) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenRevoked)
}
