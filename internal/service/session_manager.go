package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/utils"
	"go.uber.org/zap"
)

// sessionManager implements SessionManager.
type sessionManager struct {
	users      repository.UserRepository
	auths      repository.AuthenticationRepository
	auditLogs  repository.AuditLogRepository
	tenants    TenantResolver
	oauth      OAuthExchanger
	jwtManager *utils.JWTManager
	blacklist  TokenBlacklist
	bcryptCost int
	logger     *zap.Logger
}

// NewSessionManager creates a new session manager.
func NewSessionManager(
	repos *repository.Repositories,
	tenants TenantResolver,
	oauth OAuthExchanger,
	jwtManager *utils.JWTManager,
	blacklist TokenBlacklist,
	bcryptCost int,
	logger *zap.Logger,
) SessionManager {
	return &sessionManager{
		users:      repos.User,
		auths:      repos.Authentication,
		auditLogs:  repos.AuditLog,
		tenants:    tenants,
		oauth:      oauth,
		jwtManager: jwtManager,
		blacklist:  blacklist,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Login authenticates an email/password user within a tenant.
func (s *sessionManager) Login(ctx context.Context, email, password, companyID string, meta RequestMeta) (*LoginResult, error) {
	company, err := s.tenants.ResolveID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	email = utils.SanitizeEmail(email)

	// A missing user and a wrong password are indistinguishable to the
	// caller; that blocks account enumeration.
	user, err := s.users.GetByEmail(ctx, company.ID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Status checks precede password comparison.
	if !user.IsActive {
		return nil, domain.ErrAccountInactive
	}
	if user.IsBanned {
		return nil, domain.ErrAccountBanned
	}

	auth, err := s.auths.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get authentication: %w", err)
	}

	if auth.Provider != domain.ProviderEmail {
		return nil, domain.ErrInvalidProvider
	}

	if !utils.CheckPasswordHash(password, auth.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	if !company.IsActive() {
		return nil, domain.ErrCompanyInactive
	}

	pair, err := s.issueAndPersist(ctx, user, auth)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auth.ID, domain.AuditEventLogin, meta, map[string]string{
		"email":      email,
		"company_id": company.ID,
	})

	return &LoginResult{User: user, Auth: auth, Pair: pair}, nil
}

// LoginWithGoogle exchanges an authorization code and signs the user in,
// provisioning the user on first login. Provisioning requires an active
// tenant; an inactive tenant must not gain rows as a side effect.
func (s *sessionManager) LoginWithGoogle(ctx context.Context, code, companyID string, meta RequestMeta) (*LoginResult, error) {
	company, err := s.tenants.ResolveID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if !company.IsActive() {
		return nil, domain.ErrCompanyInactive
	}

	identity, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		if authErr := asAuthError(err); authErr != nil {
			return nil, authErr
		}
		return nil, domain.ErrOAuthExchangeFailed
	}

	email := utils.SanitizeEmail(identity.Email)

	user, err := s.users.GetByEmail(ctx, company.ID, email)
	switch {
	case err == nil:
		if user.IsBanned {
			return nil, domain.ErrAccountBanned
		}
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.provisionGoogleUser(ctx, company.ID, email, identity.FullName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	auth, err := s.auths.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication: %w", err)
	}

	pair, err := s.issueAndPersist(ctx, user, auth)
	if err != nil {
		return nil, err
	}

	s.audit(ctx, auth.ID, domain.AuditEventLogin, meta, map[string]string{
		"email":      email,
		"company_id": company.ID,
		"provider":   string(domain.ProviderGoogle),
	})

	return &LoginResult{User: user, Auth: auth, Pair: pair}, nil
}

func (s *sessionManager) provisionGoogleUser(ctx context.Context, companyID, email, fullName string) (*domain.User, error) {
	user := &domain.User{
		CompanyID: companyID,
		Email:     email,
		FullName:  fullName,
		Type:      domain.UserTypeUser,
		IsActive:  false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision user: %w", err)
	}

	auth := &domain.Authentication{
		UserID:    user.ID,
		CompanyID: companyID,
		Provider:  domain.ProviderGoogle,
		Email:     email,
	}
	if err := s.auths.Create(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to provision authentication: %w", err)
	}

	return user, nil
}

// Signup registers a new email/password user. The user starts inactive and
// must go through activation before logging in.
func (s *sessionManager) Signup(ctx context.Context, params SignupParams, companyID string, meta RequestMeta) (*domain.User, error) {
	company, err := s.tenants.ResolveID(ctx, companyID)
	if err != nil {
		return nil, err
	}

	email := utils.SanitizeEmail(params.Email)
	if !utils.ValidateEmail(email) {
		return nil, domain.ErrInvalidCredentials
	}
	if !utils.ValidatePassword(params.Password) {
		return nil, domain.ErrWeakPassword
	}

	_, err = s.users.GetByEmail(ctx, company.ID, email)
	if err == nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	passwordHash, err := utils.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		CompanyID: company.ID,
		Email:     email,
		FullName:  params.FullName,
		Type:      domain.UserTypeUser,
		IsActive:  false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	auth := &domain.Authentication{
		UserID:       user.ID,
		CompanyID:    company.ID,
		Provider:     domain.ProviderEmail,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.auths.Create(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to create authentication: %w", err)
	}

	s.audit(ctx, auth.ID, domain.AuditEventSignup, meta, map[string]string{
		"email":     email,
		"full_name": params.FullName,
	})

	return user, nil
}

// Refresh rotates a refresh token. The rotation is a single conditional
// update keyed on the presented token, so an already-rotated token cannot
// yield a second live pair.
func (s *sessionManager) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.jwtManager.Verify(refreshToken, utils.RefreshSecret)
	if err != nil {
		return nil, domain.ErrInvalidRefreshToken
	}

	pair, err := s.jwtManager.IssuePair(claims.UserID, claims.Email, claims.CompanyID, claims.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	rotated, err := s.auths.RotateTokens(ctx, claims.UserID, refreshToken, pair)
	if err != nil {
		return nil, fmt.Errorf("failed to rotate tokens: %w", err)
	}
	if !rotated {
		// Presented token is not the live one: either reuse of a
		// rotated-out token or a token we never stored.
		return nil, domain.ErrInvalidRefreshToken
	}

	return pair, nil
}

// Logout clears the stored token pair. The access token's signature is
// verified but expiry is ignored so an expired session can still end itself.
// A second logout finds no live tokens and fails with TokensNotFound.
func (s *sessionManager) Logout(ctx context.Context, accessToken string, meta RequestMeta) error {
	claims, err := s.jwtManager.VerifyIgnoringExpiry(accessToken, utils.AccessSecret)
	if err != nil {
		return domain.ErrMalformedToken
	}
	if claims.Purpose != "" {
		return domain.ErrMalformedToken
	}

	auth, err := s.auths.GetByEmail(ctx, claims.CompanyID, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrTokensNotFound
		}
		return fmt.Errorf("failed to get authentication: %w", err)
	}

	cleared, err := s.auths.ClearTokens(ctx, auth.ID)
	if err != nil {
		return fmt.Errorf("failed to clear tokens: %w", err)
	}
	if !cleared {
		return domain.ErrTokensNotFound
	}

	// Revoke the access token for the remainder of its lifetime.
	if remaining := time.Until(time.Unix(claims.Exp, 0)); remaining > 0 {
		if err := s.blacklist.AddToken(ctx, accessToken, remaining); err != nil {
			s.logger.Warn("failed to blacklist access token", zap.Error(err))
		}
	}

	s.audit(ctx, auth.ID, domain.AuditEventLogout, meta, map[string]string{
		"email":      claims.Email,
		"company_id": claims.CompanyID,
	})

	return nil
}

// RequestPasswordReset issues a short-lived reset token bound to the user's
// email and stores it on the authentication record. The token is returned so
// the delivery channel (email, currently logged) can embed it.
func (s *sessionManager) RequestPasswordReset(ctx context.Context, email, companyID string, meta RequestMeta) (string, error) {
	company, err := s.tenants.ResolveID(ctx, companyID)
	if err != nil {
		return "", err
	}

	email = utils.SanitizeEmail(email)

	user, err := s.users.GetByEmail(ctx, company.ID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	auth, err := s.auths.GetByUserID(ctx, user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to get authentication: %w", err)
	}

	token, expiresAt, err := s.jwtManager.IssueResetToken(user.ID, email)
	if err != nil {
		return "", fmt.Errorf("failed to issue reset token: %w", err)
	}

	if err := s.auths.SetResetToken(ctx, auth.ID, token, expiresAt); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	// Mail delivery is an external concern; log the event instead.
	s.logger.Info("password reset requested",
		zap.String("email", email),
		zap.String("company_id", company.ID),
	)

	s.audit(ctx, auth.ID, domain.AuditEventPasswordResetReq, meta, map[string]string{
		"email": email,
	})

	return token, nil
}

// ValidateResetToken checks a reset token's signature, storage binding and
// expiry without consuming it.
func (s *sessionManager) ValidateResetToken(ctx context.Context, token string) error {
	_, err := s.lookupResetToken(ctx, token)
	return err
}

// ChangePassword consumes a valid reset token and sets a new password hash.
func (s *sessionManager) ChangePassword(ctx context.Context, token, newPassword string, meta RequestMeta) error {
	auth, err := s.lookupResetToken(ctx, token)
	if err != nil {
		return err
	}

	if !utils.ValidatePassword(newPassword) {
		return domain.ErrWeakPassword
	}

	passwordHash, err := utils.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.auths.UpdatePassword(ctx, auth.ID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.audit(ctx, auth.ID, domain.AuditEventPasswordChange, meta, map[string]string{
		"email": auth.Email,
	})

	return nil
}

func (s *sessionManager) lookupResetToken(ctx context.Context, token string) (*domain.Authentication, error) {
	claims, err := s.jwtManager.Verify(token, utils.AccessSecret)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrInvalidResetToken
	}
	if claims.Purpose != utils.PurposePasswordReset {
		return nil, domain.ErrInvalidResetToken
	}

	auth, err := s.auths.GetByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrInvalidResetToken
		}
		return nil, fmt.Errorf("failed to look up reset token: %w", err)
	}

	if auth.ResetTokenExpiresAt == nil || time.Now().After(*auth.ResetTokenExpiresAt) {
		return nil, domain.ErrTokenExpired
	}

	return auth, nil
}

// SendActivation issues an activation token for an inactive user. The token
// is returned so the delivery channel (email, currently logged) can embed it.
func (s *sessionManager) SendActivation(ctx context.Context, email, companyID string) (string, error) {
	company, err := s.tenants.ResolveID(ctx, companyID)
	if err != nil {
		return "", err
	}

	email = utils.SanitizeEmail(email)

	user, err := s.users.GetByEmail(ctx, company.ID, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsActive {
		return "", domain.ErrAlreadyActive
	}

	token, err := s.jwtManager.IssueActivationToken(user.ID, email)
	if err != nil {
		return "", fmt.Errorf("failed to issue activation token: %w", err)
	}

	s.logger.Info("activation requested",
		zap.String("email", email),
		zap.String("company_id", company.ID),
	)

	return token, nil
}

// Activate verifies an activation token and flips the user to active.
func (s *sessionManager) Activate(ctx context.Context, activationToken string, meta RequestMeta) error {
	claims, err := s.jwtManager.Verify(activationToken, utils.AccessSecret)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return domain.ErrTokenExpired
		}
		return domain.ErrMalformedToken
	}

	// Only a token issued for activation may activate. An access or reset
	// token signed with the same secret must not.
	if claims.Purpose != utils.PurposeAccountActivation {
		return domain.ErrMalformedToken
	}

	if err := s.users.SetActive(ctx, claims.UserID, claims.Email, true); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("failed to activate user: %w", err)
	}

	if auth, err := s.auths.GetByUserID(ctx, claims.UserID); err == nil {
		s.audit(ctx, auth.ID, domain.AuditEventAccountActivation, meta, map[string]string{
			"email": claims.Email,
		})
	}

	return nil
}

// ValidateAccessToken verifies a bearer token for request authorization.
func (s *sessionManager) ValidateAccessToken(ctx context.Context, token string) (*domain.TokenClaims, error) {
	blacklisted, err := s.blacklist.IsTokenBlacklisted(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	if blacklisted {
		return nil, domain.ErrMalformedToken
	}

	claims, err := s.jwtManager.Verify(token, utils.AccessSecret)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return nil, domain.ErrTokenExpired
		}
		return nil, domain.ErrMalformedToken
	}

	// Reset and activation tokens share the access secret but carry a
	// purpose claim. They are not bearer credentials.
	if claims.Purpose != "" {
		return nil, domain.ErrMalformedToken
	}

	return claims, nil
}

// issueAndPersist mints a fresh pair and overwrites the stored one.
func (s *sessionManager) issueAndPersist(ctx context.Context, user *domain.User, auth *domain.Authentication) (*domain.TokenPair, error) {
	pair, err := s.jwtManager.IssuePair(user.ID, auth.Email, user.CompanyID, auth.Provider)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token pair: %w", err)
	}

	if err := s.auths.UpdateTokens(ctx, auth.ID, pair, time.Now()); err != nil {
		return nil, fmt.Errorf("failed to persist token pair: %w", err)
	}

	return pair, nil
}

// audit appends an audit event. Failures are logged, never fatal.
func (s *sessionManager) audit(ctx context.Context, authID string, event domain.AuditEvent, meta RequestMeta, metadata map[string]string) {
	entry := &domain.AuditLog{
		AuthID:    authID,
		Event:     event,
		IPAddress: meta.IP,
		UserAgent: meta.UserAgent,
		Origin:    meta.Origin,
		Metadata:  metadata,
	}
	if err := s.auditLogs.Insert(ctx, entry); err != nil {
		s.logger.Warn("failed to write audit log",
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}

func asAuthError(err error) *domain.AuthError {
	var authErr *domain.AuthError
	if errors.As(err, &authErr) {
		return authErr
	}
	return nil
}
