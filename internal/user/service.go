package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-refiner-go/pkg/utilities"
)

// Store is the persistence surface UserService needs; *repo.UserRepo satisfies it.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdateProfile(ctx context.Context, id string, fields []entity.ProfileField) error
}

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidRole  = errors.New("invalid role")
	ErrEmptyEmail   = errors.New("email required")
)

const (
	msgUserNotFound    = "User not found."
	msgProfileUpdated  = "Profile updated successfully."
	msgNoValidFields   = "No valid fields provided for update."
	msgUpdateFailedFmt = "Failed to update user profile: %v"
)

// InfoResponse is the public projection of an account. It has no password field.
type InfoResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
	Role      string `json:"role"`
}

// ProfileUpdateResult reports the outcome of a profile update.
type ProfileUpdateResult struct {
	Success       bool     `json:"success"`
	Message       string   `json:"message"`
	UpdatedFields []string `json:"updated_fields"`
}

// UserService reads accounts and applies profile updates.
type UserService struct {
	repo   Store
	hasher PasswordHasher
}

func NewUserService(db *sqlx.DB, r Store, hasher PasswordHasher) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{repo: r, hasher: hasher}
}

// GetInfo returns the public projection of the account with the given id.
func (s *UserService) GetInfo(ctx context.Context, userID string) (*InfoResponse, error) {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &InfoResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: u.UpdatedAt.UTC().Format(time.RFC3339Nano),
		Role:      u.Role.Name(),
	}, nil
}

// UpdateProfile stages every present, non-empty field in the order name, email,
// bio, location and persists them, unmodified, with one update. Failures are reported in
// the result rather than returned.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in entity.ProfileUpdate) ProfileUpdateResult {
	if _, err := s.repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ProfileUpdateResult{Success: false, Message: msgUserNotFound, UpdatedFields: []string{}}
		}
		return failedUpdate(err)
	}

	fields := stageProfile(in)
	if len(fields) == 0 {
		return ProfileUpdateResult{Success: false, Message: msgNoValidFields, UpdatedFields: []string{}}
	}
	if err := s.repo.UpdateProfile(ctx, userID, fields); err != nil {
		return failedUpdate(err)
	}

	updated := make([]string, len(fields))
	for i, f := range fields {
		updated[i] = f.Column
	}
	return ProfileUpdateResult{Success: true, Message: msgProfileUpdated, UpdatedFields: updated}
}

func stageProfile(in entity.ProfileUpdate) []entity.ProfileField {
	var fields []entity.ProfileField
	add := func(column string, v *string) {
		if v != nil && *v != "" {
			fields = append(fields, entity.ProfileField{Column: column, Value: *v})
		}
	}
	add("name", in.Name)
	add("email", in.Email)
	add("bio", in.Bio)
	add("location", in.Location)
	return fields
}

func failedUpdate(err error) ProfileUpdateResult {
	return ProfileUpdateResult{
		Success:       false,
		Message:       fmt.Sprintf(msgUpdateFailedFmt, err),
		UpdatedFields: []string{},
	}
}

// CreateUser provisions an account out of band (used by the maintenance CLI).
func (s *UserService) CreateUser(ctx context.Context, email, password string, role entity.Role) (*entity.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if role == "" {
		role = entity.RoleUser
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		ID:           utilities.NewSnowflakeID(),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// FindByEmail exposes the credential lookup used by login.
func (s *UserService) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

// VerifyPassword checks pw against the stored hash of u.
func (s *UserService) VerifyPassword(u *entity.User, pw string) bool {
	return s.hasher.Verify(u.PasswordHash, pw)
}
