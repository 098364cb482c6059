package repository

import (
	"context"
	"time"

	"github.com/whitelabel-hq/auth-service/internal/domain"
)

// ListUsersParams controls pagination, sorting and search for user listings.
type ListUsersParams struct {
	Page      int
	PerPage   int
	SortField string
	SortDesc  bool
	Search    string
}

// UserRepository defines tenant-scoped user operations. Every lookup that
// takes a companyID must filter by it; cross-tenant reads are a correctness
// violation.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, companyID, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	SetActive(ctx context.Context, userID, email string, active bool) error
	List(ctx context.Context, companyID string, params ListUsersParams) ([]*domain.User, int, error)
}

// AuthenticationRepository defines operations on credential records.
type AuthenticationRepository interface {
	Create(ctx context.Context, auth *domain.Authentication) error
	GetByUserID(ctx context.Context, userID string) (*domain.Authentication, error)
	GetByEmail(ctx context.Context, companyID, email string) (*domain.Authentication, error)

	// UpdateTokens overwrites the token pair fields and last_login.
	UpdateTokens(ctx context.Context, authID string, pair *domain.TokenPair, lastLogin time.Time) error

	// RotateTokens replaces the stored pair only if oldRefreshToken is still
	// the live refresh token for the user. Returns false when the presented
	// token was already rotated out, making rotation atomic with the
	// now-invalid check.
	RotateTokens(ctx context.Context, userID, oldRefreshToken string, pair *domain.TokenPair) (bool, error)

	// ClearTokens nulls all four token fields. Returns false if the record
	// held no live tokens.
	ClearTokens(ctx context.Context, authID string) (bool, error)

	SetResetToken(ctx context.Context, authID, token string, expiresAt time.Time) error
	GetByResetToken(ctx context.Context, token string) (*domain.Authentication, error)

	// UpdatePassword sets a new password hash and clears the reset token.
	UpdatePassword(ctx context.Context, authID, passwordHash string) error
}

// CompanyRepository defines tenant lookups.
type CompanyRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Company, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Company, error)
	GetByDomain(ctx context.Context, domain string) (*domain.Company, error)
}

// AuditLogRepository appends audit events. Writes are best-effort from the
// caller's point of view; rows are never read back by this service.
type AuditLogRepository interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
}
