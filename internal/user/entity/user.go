package entity

import "time"

// Role is the account's authorization role; stored by name.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Name returns the role's textual name.
func (r Role) Name() string { return string(r) }

// Valid reports whether r is a known role.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAdmin }

// User represents an account row in the `users` table.
// Accounts are created out of band; this service reads them and updates profile fields.
type User struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	Role         Role      `db:"role"`
	Name         *string   `db:"name"`
	Bio          *string   `db:"bio"`
	Location     *string   `db:"location"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// ProfileUpdate carries the candidate profile mutations; nil and empty values are ignored.
type ProfileUpdate struct {
	Name     *string
	Email    *string
	Bio      *string
	Location *string
}

// ProfileField is a single staged column change.
type ProfileField struct {
	Column string
	Value  string
}
