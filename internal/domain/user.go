package domain

import "time"

// UserType classifies a user within its company.
type UserType string

const (
	UserTypeAdmin UserType = "admin"
	UserTypeUser  UserType = "user"
	UserTypeOwner UserType = "owner"
	UserTypeGuest UserType = "guest"
)

// IsAdmin reports whether the user type grants access to admin endpoints.
func (t UserType) IsAdmin() bool {
	return t == UserTypeAdmin || t == UserTypeOwner
}

// User represents a tenant-scoped user. Users are never hard-deleted here;
// deactivation and bans are flags.
type User struct {
	ID        string    `json:"id" db:"id"`
	CompanyID string    `json:"company_id" db:"company_id"`
	Email     string    `json:"email" db:"email"`
	FullName  string    `json:"full_name" db:"full_name"`
	Type      UserType  `json:"type" db:"type"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	IsBanned  bool      `json:"is_banned" db:"is_banned"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
