package service

import (
	"context"
	"time"

	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
)

// RequestMeta carries per-request telemetry recorded into audit events.
type RequestMeta struct {
	IP        string
	UserAgent string
	Origin    string
}

// LoginResult is the outcome of a successful authentication.
type LoginResult struct {
	User *domain.User
	Auth *domain.Authentication
	Pair *domain.TokenPair
}

// SignupParams are the inputs for explicit email signup.
type SignupParams struct {
	Email    string
	Password string
	FullName string
}

// SessionManager owns the tenant-scoped authentication lifecycle: login,
// signup, token refresh and rotation, logout, password reset, activation.
type SessionManager interface {
	Login(ctx context.Context, email, password, companyID string, meta RequestMeta) (*LoginResult, error)
	LoginWithGoogle(ctx context.Context, code, companyID string, meta RequestMeta) (*LoginResult, error)
	Signup(ctx context.Context, params SignupParams, companyID string, meta RequestMeta) (*domain.User, error)
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
	Logout(ctx context.Context, accessToken string, meta RequestMeta) error
	RequestPasswordReset(ctx context.Context, email, companyID string, meta RequestMeta) (string, error)
	ValidateResetToken(ctx context.Context, token string) error
	ChangePassword(ctx context.Context, token, newPassword string, meta RequestMeta) error
	SendActivation(ctx context.Context, email, companyID string) (string, error)
	Activate(ctx context.Context, activationToken string, meta RequestMeta) error
	ValidateAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error)
}

// TenantResolver derives the active tenant for a request.
type TenantResolver interface {
	// ResolveID resolves a tenant from an explicit Company-Id header value.
	ResolveID(ctx context.Context, companyID string) (*domain.Company, error)

	// ResolveSlugOrDomain resolves a tenant for the public-facing app.
	ResolveSlugOrDomain(ctx context.Context, slug, domain string) (*domain.Company, error)
}

// OAuthExchanger exchanges an authorization code for a provider identity.
type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (*OAuthIdentity, error)
}

// OAuthIdentity is the subset of provider claims the service trusts.
type OAuthIdentity struct {
	Email    string
	FullName string
}

// TokenBlacklist revokes access tokens ahead of their natural expiry.
type TokenBlacklist interface {
	AddToken(ctx context.Context, token string, expiry time.Duration) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)
}

// UserAdminService covers tenant-scoped administrative user management.
type UserAdminService interface {
	List(ctx context.Context, companyID string, params repository.ListUsersParams) ([]*domain.User, int, error)
	Create(ctx context.Context, companyID string, params CreateUserParams) (*domain.User, error)
	Update(ctx context.Context, companyID, userID string, params UpdateUserParams) (*domain.User, error)
}

// CreateUserParams are the admin user-creation inputs.
type CreateUserParams struct {
	Email    string
	Password string
	FullName string
	Type     domain.UserType
}

// UpdateUserParams are the admin user-update inputs. Nil fields are left
// unchanged.
type UpdateUserParams struct {
	FullName *string
	Type     *domain.UserType
	IsActive *bool
	IsBanned *bool
}
