package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	testPassword = "C0rrect-horse-battery-Staple"
	testMeta     = "test"
)

var meta = RequestMeta{IP: "127.0.0.1", UserAgent: testMeta, Origin: testMeta}

type sessionFixture struct {
	users     *fakeUserRepo
	auths     *fakeAuthRepo
	audits    *fakeAuditRepo
	blacklist *fakeBlacklist
	oauth     *fakeOAuth
	jwt       *utils.JWTManager

	company         *domain.Company
	inactiveCompany *domain.Company

	manager SessionManager
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	f := &sessionFixture{
		users:     newFakeUserRepo(),
		auths:     newFakeAuthRepo(),
		audits:    &fakeAuditRepo{},
		blacklist: newFakeBlacklist(),
		oauth:     &fakeOAuth{identity: &OAuthIdentity{Email: "google@example.com", FullName: "Google User"}},
		jwt:       utils.NewJWTManager("access-secret-for-tests-at-least-32-chars!!", "refresh-secret-for-tests-at-least-32-chars!"),
		company: &domain.Company{
			ID:     "company-1",
			Name:   "Acme",
			Slug:   "acme",
			Status: domain.CompanyStatusActive,
		},
		inactiveCompany: &domain.Company{
			ID:     "company-2",
			Name:   "Dormant",
			Slug:   "dormant",
			Status: domain.CompanyStatusSuspended,
		},
	}

	companies := newFakeCompanyRepo(f.company, f.inactiveCompany)
	repos := &repository.Repositories{
		User:           f.users,
		Authentication: f.auths,
		Company:        companies,
		AuditLog:       f.audits,
	}

	f.manager = NewSessionManager(
		repos,
		NewTenantResolver(companies),
		f.oauth,
		f.jwt,
		f.blacklist,
		bcrypt.MinCost,
		zap.NewNop(),
	)
	return f
}

type seedOpts struct {
	companyID string
	inactive  bool
	banned    bool
	provider  domain.Provider
}

func (f *sessionFixture) seedUser(t *testing.T, email string, opts seedOpts) *domain.User {
	t.Helper()

	if opts.companyID == "" {
		opts.companyID = f.company.ID
	}
	if opts.provider == "" {
		opts.provider = domain.ProviderEmail
	}

	user := &domain.User{
		CompanyID: opts.companyID,
		Email:     email,
		FullName:  "Seeded User",
		Type:      domain.UserTypeUser,
		IsActive:  !opts.inactive,
		IsBanned:  opts.banned,
	}
	require.NoError(t, f.users.Create(context.Background(), user))

	hash, err := utils.HashPassword(testPassword, bcrypt.MinCost)
	require.NoError(t, err)

	auth := &domain.Authentication{
		UserID:       user.ID,
		CompanyID:    opts.companyID,
		Provider:     opts.provider,
		Email:        email,
		PasswordHash: hash,
	}
	require.NoError(t, f.auths.Create(context.Background(), auth))

	return user
}

func TestLoginSuccess(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})

	result, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)
	require.NotNil(t, result.Pair)

	claims, err := f.jwt.Verify(result.Pair.AccessToken, utils.AccessSecret)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)
	assert.Equal(t, f.company.ID, claims.CompanyID)
	assert.Equal(t, domain.ProviderEmail, claims.Provider)

	// The pair must be persisted so refresh rotation has a live token to match.
	auth, err := f.auths.GetByUserID(context.Background(), result.User.ID)
	require.NoError(t, err)
	require.NotNil(t, auth.RefreshToken)
	assert.Equal(t, result.Pair.RefreshToken, *auth.RefreshToken)

	assert.Contains(t, f.audits.events(), domain.AuditEventLogin)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})

	_, err := f.manager.Login(context.Background(), "user@example.com", "wrong", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Login(context.Background(), "nobody@example.com", testPassword, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginInactiveUserBeforePasswordCheck(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{inactive: true})

	// Even a wrong password reports the activation problem.
	_, err := f.manager.Login(context.Background(), "user@example.com", "wrong", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestLoginBannedUserBeforePasswordCheck(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{banned: true})

	_, err := f.manager.Login(context.Background(), "user@example.com", "wrong", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrAccountBanned)
}

func TestLoginProviderMismatch(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{provider: domain.ProviderGoogle})

	_, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
}

func TestLoginInactiveCompany(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{companyID: f.inactiveCompany.ID})

	_, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.inactiveCompany.ID, meta)
	assert.ErrorIs(t, err, domain.ErrCompanyInactive)
}

func TestLoginTenantResolution(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Login(context.Background(), "user@example.com", testPassword, "", meta)
	assert.ErrorIs(t, err, domain.ErrTenantRequired)

	_, err = f.manager.Login(context.Background(), "user@example.com", testPassword, "no-such-company", meta)
	assert.ErrorIs(t, err, domain.ErrCompanyNotFound)
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})

	result, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)

	oldRefresh := result.Pair.RefreshToken

	newPair, err := f.manager.Refresh(context.Background(), oldRefresh)
	require.NoError(t, err)
	assert.NotEqual(t, oldRefresh, newPair.RefreshToken)

	// The rotated-out token must not yield another pair.
	_, err = f.manager.Refresh(context.Background(), oldRefresh)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	// The new token still works.
	_, err = f.manager.Refresh(context.Background(), newPair.RefreshToken)
	require.NoError(t, err)
}

func TestRefreshRejectsGarbageToken(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)
}

func TestLogoutClearsTokensAndRevokesAccess(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})

	result, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)

	require.NoError(t, f.manager.Logout(context.Background(), result.Pair.AccessToken, meta))

	// The blacklisted access token no longer authorizes requests.
	_, err = f.manager.ValidateAccessToken(context.Background(), result.Pair.AccessToken)
	assert.Error(t, err)

	// The stored refresh token is gone too.
	_, err = f.manager.Refresh(context.Background(), result.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrInvalidRefreshToken)

	// Second logout has nothing to clear.
	err = f.manager.Logout(context.Background(), result.Pair.AccessToken, meta)
	assert.ErrorIs(t, err, domain.ErrTokensNotFound)
}

func TestLogoutRejectsForgedToken(t *testing.T) {
	f := newSessionFixture(t)

	err := f.manager.Logout(context.Background(), "forged", meta)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestSignupCreatesInactiveUser(t *testing.T) {
	f := newSessionFixture(t)

	user, err := f.manager.Signup(context.Background(), SignupParams{
		Email:    "new@example.com",
		Password: testPassword,
		FullName: "New User",
	}, f.company.ID, meta)
	require.NoError(t, err)
	assert.False(t, user.IsActive)
	assert.Equal(t, domain.UserTypeUser, user.Type)

	// Login is blocked until activation.
	_, err = f.manager.Login(context.Background(), "new@example.com", testPassword, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrAccountInactive)

	assert.Contains(t, f.audits.events(), domain.AuditEventSignup)
}

func TestSignupRejectsWeakPassword(t *testing.T) {
	f := newSessionFixture(t)

	for _, password := range []string{"short1A", "no-digits-Here", "no-upper-1234", "NO-LOWER-1234"} {
		_, err := f.manager.Signup(context.Background(), SignupParams{
			Email:    "new@example.com",
			Password: password,
		}, f.company.ID, meta)
		assert.ErrorIs(t, err, domain.ErrWeakPassword, "password %q", password)
	}

	// Nothing was created for the rejected signups.
	_, err := f.users.GetByEmail(context.Background(), f.company.ID, "new@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "taken@example.com", seedOpts{})

	_, err := f.manager.Signup(context.Background(), SignupParams{
		Email:    "taken@example.com",
		Password: testPassword,
	}, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)
}

func TestSignupSameEmailAcrossTenants(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "shared@example.com", seedOpts{})

	// Tenants are isolated: the same address registers fine elsewhere.
	_, err := f.manager.Signup(context.Background(), SignupParams{
		Email:    "shared@example.com",
		Password: testPassword,
	}, f.inactiveCompany.ID, meta)
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})
	ctx := context.Background()

	token, err := f.manager.RequestPasswordReset(ctx, "user@example.com", f.company.ID, meta)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Validation does not consume the token.
	require.NoError(t, f.manager.ValidateResetToken(ctx, token))
	require.NoError(t, f.manager.ValidateResetToken(ctx, token))

	newPassword := "An-entirely-d1fferent-Passphrase"
	require.NoError(t, f.manager.ChangePassword(ctx, token, newPassword, meta))

	// Changing the password consumes the token.
	err = f.manager.ChangePassword(ctx, token, "Yet-An0ther-one", meta)
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)

	// Old password is dead, new one works.
	_, err = f.manager.Login(ctx, "user@example.com", testPassword, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = f.manager.Login(ctx, "user@example.com", newPassword, f.company.ID, meta)
	require.NoError(t, err)

	assert.Contains(t, f.audits.events(), domain.AuditEventPasswordResetReq)
	assert.Contains(t, f.audits.events(), domain.AuditEventPasswordChange)
}

func TestChangePasswordRejectsWeakPassword(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})
	ctx := context.Background()

	token, err := f.manager.RequestPasswordReset(ctx, "user@example.com", f.company.ID, meta)
	require.NoError(t, err)

	err = f.manager.ChangePassword(ctx, token, "alllowercase", meta)
	assert.ErrorIs(t, err, domain.ErrWeakPassword)

	// The rejected attempt must not consume the token or touch the password.
	require.NoError(t, f.manager.ValidateResetToken(ctx, token))
	_, err = f.manager.Login(ctx, "user@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)
}

func TestResetTokenUnknownToStorage(t *testing.T) {
	f := newSessionFixture(t)

	// Signed correctly but never stored: forged via a parallel issue path.
	token, _, err := f.jwt.IssueResetToken("ghost", "ghost@example.com")
	require.NoError(t, err)

	err = f.manager.ValidateResetToken(context.Background(), token)
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.RequestPasswordReset(context.Background(), "nobody@example.com", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestActivationFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.manager.Signup(ctx, SignupParams{
		Email:    "fresh@example.com",
		Password: testPassword,
	}, f.company.ID, meta)
	require.NoError(t, err)

	token, err := f.manager.SendActivation(ctx, "fresh@example.com", f.company.ID)
	require.NoError(t, err)

	require.NoError(t, f.manager.Activate(ctx, token, meta))

	// Activated user can log in now.
	_, err = f.manager.Login(ctx, "fresh@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)

	// A second activation request reports the account as already active.
	_, err = f.manager.SendActivation(ctx, "fresh@example.com", f.company.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyActive)
}

func TestActivateRejectsForgedToken(t *testing.T) {
	f := newSessionFixture(t)

	err := f.manager.Activate(context.Background(), "forged", meta)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}

func TestResetTokenIsNotABearerOrActivationToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{inactive: true})
	ctx := context.Background()

	token, err := f.manager.RequestPasswordReset(ctx, "user@example.com", f.company.ID, meta)
	require.NoError(t, err)

	// Reset tokens share the access secret but must not authorize requests.
	_, err = f.manager.ValidateAccessToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)

	// Nor may a reset token activate the account it was issued for.
	err = f.manager.Activate(ctx, token, meta)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)

	_, err = f.manager.Login(ctx, "user@example.com", testPassword, f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrAccountInactive)
}

func TestActivationTokenIsNotABearerOrResetToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{inactive: true})
	ctx := context.Background()

	token, err := f.manager.SendActivation(ctx, "user@example.com", f.company.ID)
	require.NoError(t, err)

	_, err = f.manager.ValidateAccessToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)

	err = f.manager.ValidateResetToken(ctx, token)
	assert.ErrorIs(t, err, domain.ErrInvalidResetToken)
}

func TestGoogleLoginProvisionsUser(t *testing.T) {
	f := newSessionFixture(t)

	result, err := f.manager.LoginWithGoogle(context.Background(), "auth-code", f.company.ID, meta)
	require.NoError(t, err)
	assert.Equal(t, "google@example.com", result.User.Email)
	assert.Equal(t, domain.UserTypeUser, result.User.Type)
	assert.False(t, result.User.IsActive)
	assert.Equal(t, domain.ProviderGoogle, result.Auth.Provider)

	// Second login finds the provisioned user instead of creating another.
	again, err := f.manager.LoginWithGoogle(context.Background(), "auth-code", f.company.ID, meta)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, again.User.ID)
}

func TestGoogleLoginBannedUser(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "google@example.com", seedOpts{banned: true, provider: domain.ProviderGoogle})

	_, err := f.manager.LoginWithGoogle(context.Background(), "auth-code", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrAccountBanned)
}

func TestGoogleLoginInactiveCompanySkipsProvisioning(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.manager.LoginWithGoogle(context.Background(), "auth-code", f.inactiveCompany.ID, meta)
	assert.ErrorIs(t, err, domain.ErrCompanyInactive)

	// No user rows may appear for an inactive tenant.
	_, err = f.users.GetByEmail(context.Background(), f.inactiveCompany.ID, "google@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGoogleLoginExchangeFailure(t *testing.T) {
	f := newSessionFixture(t)
	f.oauth.err = errors.New("provider unavailable")

	_, err := f.manager.LoginWithGoogle(context.Background(), "auth-code", f.company.ID, meta)
	assert.ErrorIs(t, err, domain.ErrOAuthExchangeFailed)
}

func TestValidateAccessTokenRejectsRefreshToken(t *testing.T) {
	f := newSessionFixture(t)
	f.seedUser(t, "user@example.com", seedOpts{})

	result, err := f.manager.Login(context.Background(), "user@example.com", testPassword, f.company.ID, meta)
	require.NoError(t, err)

	// A refresh token is signed with the other secret and must not authorize.
	_, err = f.manager.ValidateAccessToken(context.Background(), result.Pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrMalformedToken)
}
