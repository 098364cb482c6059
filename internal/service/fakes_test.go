package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
)

// In-memory repository fakes. They reproduce the contracts the SQL
// implementations give: tenant scoping, conditional rotation, wrapped
// ErrNotFound sentinels.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.CompanyID == user.CompanyID && u.Email == user.Email {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateEmail)
		}
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, companyID, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.CompanyID == companyID && u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, fmt.Errorf("user not found: %w", repository.ErrNotFound)
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) SetActive(_ context.Context, userID, email string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok || u.Email != email {
		return fmt.Errorf("user not found: %w", repository.ErrNotFound)
	}
	u.IsActive = active
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, companyID string, _ repository.ListUsersParams) ([]*domain.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var users []*domain.User
	for _, u := range r.users {
		if u.CompanyID == companyID {
			copied := *u
			users = append(users, &copied)
		}
	}
	return users, len(users), nil
}

type fakeAuthRepo struct {
	mu    sync.Mutex
	auths map[string]*domain.Authentication
}

func newFakeAuthRepo() *fakeAuthRepo {
	return &fakeAuthRepo{auths: make(map[string]*domain.Authentication)}
}

func (r *fakeAuthRepo) Create(_ context.Context, auth *domain.Authentication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auths {
		if a.UserID == auth.UserID {
			return fmt.Errorf("duplicate: %w", repository.ErrDuplicateAuthentication)
		}
	}
	if auth.ID == "" {
		auth.ID = uuid.New().String()
	}
	copied := *auth
	r.auths[auth.ID] = &copied
	return nil
}

func (r *fakeAuthRepo) GetByUserID(_ context.Context, userID string) (*domain.Authentication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auths {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("authentication not found: %w", repository.ErrNotFound)
}

func (r *fakeAuthRepo) GetByEmail(_ context.Context, companyID, email string) (*domain.Authentication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auths {
		if a.CompanyID == companyID && a.Email == email {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("authentication not found: %w", repository.ErrNotFound)
}

func (r *fakeAuthRepo) UpdateTokens(_ context.Context, authID string, pair *domain.TokenPair, lastLogin time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auths[authID]
	if !ok {
		return fmt.Errorf("authentication not found: %w", repository.ErrNotFound)
	}
	a.AccessToken = &pair.AccessToken
	a.AccessTokenExpiresAt = &pair.AccessTokenExpiresAt
	a.RefreshToken = &pair.RefreshToken
	a.RefreshTokenExpiresAt = &pair.RefreshTokenExpiresAt
	a.LastLogin = &lastLogin
	return nil
}

func (r *fakeAuthRepo) RotateTokens(_ context.Context, userID, oldRefreshToken string, pair *domain.TokenPair) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auths {
		if a.UserID != userID {
			continue
		}
		if a.RefreshToken == nil || *a.RefreshToken != oldRefreshToken {
			return false, nil
		}
		a.AccessToken = &pair.AccessToken
		a.AccessTokenExpiresAt = &pair.AccessTokenExpiresAt
		a.RefreshToken = &pair.RefreshToken
		a.RefreshTokenExpiresAt = &pair.RefreshTokenExpiresAt
		return true, nil
	}
	return false, nil
}

func (r *fakeAuthRepo) ClearTokens(_ context.Context, authID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auths[authID]
	if !ok {
		return false, nil
	}
	if a.AccessToken == nil && a.RefreshToken == nil {
		return false, nil
	}
	a.AccessToken = nil
	a.AccessTokenExpiresAt = nil
	a.RefreshToken = nil
	a.RefreshTokenExpiresAt = nil
	return true, nil
}

func (r *fakeAuthRepo) SetResetToken(_ context.Context, authID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auths[authID]
	if !ok {
		return fmt.Errorf("authentication not found: %w", repository.ErrNotFound)
	}
	a.ResetToken = &token
	a.ResetTokenExpiresAt = &expiresAt
	return nil
}

func (r *fakeAuthRepo) GetByResetToken(_ context.Context, token string) (*domain.Authentication, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.auths {
		if a.ResetToken != nil && *a.ResetToken == token {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("reset token not found: %w", repository.ErrNotFound)
}

func (r *fakeAuthRepo) UpdatePassword(_ context.Context, authID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.auths[authID]
	if !ok {
		return fmt.Errorf("authentication not found: %w", repository.ErrNotFound)
	}
	a.PasswordHash = passwordHash
	a.ResetToken = nil
	a.ResetTokenExpiresAt = nil
	return nil
}

type fakeCompanyRepo struct {
	companies map[string]*domain.Company
}

func newFakeCompanyRepo(companies ...*domain.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{companies: make(map[string]*domain.Company)}
	for _, c := range companies {
		r.companies[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) GetByID(_ context.Context, id string) (*domain.Company, error) {
	if c, ok := r.companies[id]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("company not found: %w", repository.ErrNotFound)
}

func (r *fakeCompanyRepo) GetBySlug(_ context.Context, slug string) (*domain.Company, error) {
	for _, c := range r.companies {
		if c.Slug == slug {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company not found: %w", repository.ErrNotFound)
}

func (r *fakeCompanyRepo) GetByDomain(_ context.Context, domain string) (*domain.Company, error) {
	for _, c := range r.companies {
		if c.Domain == domain {
			return c, nil
		}
	}
	return nil, fmt.Errorf("company not found: %w", repository.ErrNotFound)
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func (r *fakeAuditRepo) Insert(_ context.Context, entry *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) events() []domain.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := make([]domain.AuditEvent, 0, len(r.entries))
	for _, e := range r.entries {
		events = append(events, e.Event)
	}
	return events
}

type fakeBlacklist struct {
	mu     sync.Mutex
	tokens map[string]bool
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]bool)}
}

func (b *fakeBlacklist) AddToken(_ context.Context, token string, _ time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = true
	return nil
}

func (b *fakeBlacklist) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tokens[token], nil
}

type fakeOAuth struct {
	identity *OAuthIdentity
	err      error
}

func (o *fakeOAuth) Exchange(_ context.Context, _ string) (*OAuthIdentity, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.identity, nil
}
