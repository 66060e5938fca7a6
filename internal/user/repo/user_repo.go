package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/ovaphlow/pitchfork/service-refiner-go/internal/user/entity"
)

const userColumns = `id, email, password_hash, role, name, bio, location, created_at, updated_at`

// profileColumns whitelists the columns UpdateProfile may write.
var profileColumns = map[string]bool{"name": true, "email": true, "bio": true, "location": true}

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db *sqlx.DB
}

func NewUserRepo(db *sqlx.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts a new user row. CreatedAt/UpdatedAt are filled from the database.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, password_hash, role, name, bio, location)
		VALUES (:id, :email, :password_hash, :role, :name, :bio, :location)
		RETURNING created_at, updated_at`
	rows, err := r.db.NamedQueryContext(ctx, q, u)
	if err != nil {
		return err
	}
	defer rows.Close()
	if rows.Next() {
		return rows.Scan(&u.CreatedAt, &u.UpdatedAt)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return errors.New("no row returned")
}

// GetByID fetches a full user row or sql.ErrNoRows.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail returns a user matched by email or sql.ErrNoRows.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE email=$1`
	var u entity.User
	if err := r.db.GetContext(ctx, &u, q, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile writes all given fields and bumps updated_at in a single statement.
func (r *UserRepo) UpdateProfile(ctx context.Context, id string, fields []entity.ProfileField) error {
	if len(fields) == 0 {
		return errors.New("no fields to update")
	}
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+1)
	args = append(args, id)
	for _, f := range fields {
		if !profileColumns[f.Column] {
			return fmt.Errorf("column %q is not updatable", f.Column)
		}
		args = append(args, f.Value)
		sets = append(sets, fmt.Sprintf("%s=$%d", f.Column, len(args)))
	}
	sets = append(sets, "updated_at=NOW()")
	q := `UPDATE users SET ` + strings.Join(sets, ", ") + ` WHERE id=$1`
	_, err := r.db.ExecContext(ctx, q, args...)
	return err
}
