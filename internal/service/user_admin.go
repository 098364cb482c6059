package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
	"github.com/whitelabel-hq/auth-service/internal/utils"
)

// userAdminService implements UserAdminService.
type userAdminService struct {
	users      repository.UserRepository
	auths      repository.AuthenticationRepository
	bcryptCost int
}

// NewUserAdminService creates the admin user-management service.
func NewUserAdminService(repos *repository.Repositories, bcryptCost int) UserAdminService {
	return &userAdminService{
		users:      repos.User,
		auths:      repos.Authentication,
		bcryptCost: bcryptCost,
	}
}

// List returns a page of the tenant's users.
func (s *userAdminService) List(ctx context.Context, companyID string, params repository.ListUsersParams) ([]*domain.User, int, error) {
	return s.users.List(ctx, companyID, params)
}

// Create provisions a user directly. Admin-created users start active.
func (s *userAdminService) Create(ctx context.Context, companyID string, params CreateUserParams) (*domain.User, error) {
	email := utils.SanitizeEmail(params.Email)
	if !utils.ValidatePassword(params.Password) {
		return nil, domain.ErrWeakPassword
	}

	_, err := s.users.GetByEmail(ctx, companyID, email)
	if err == nil {
		return nil, domain.ErrUserAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}

	userType := params.Type
	if userType == "" {
		userType = domain.UserTypeUser
	}

	passwordHash, err := utils.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		CompanyID: companyID,
		Email:     email,
		FullName:  params.FullName,
		Type:      userType,
		IsActive:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, domain.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	auth := &domain.Authentication{
		UserID:       user.ID,
		CompanyID:    companyID,
		Provider:     domain.ProviderEmail,
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.auths.Create(ctx, auth); err != nil {
		return nil, fmt.Errorf("failed to create authentication: %w", err)
	}

	return user, nil
}

// Update applies the non-nil fields to a user within the tenant.
func (s *userAdminService) Update(ctx context.Context, companyID, userID string, params UpdateUserParams) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	// Lookups by ID are not tenant-scoped; enforce tenancy here.
	if user.CompanyID != companyID {
		return nil, domain.ErrUserNotFound
	}

	if params.FullName != nil {
		user.FullName = *params.FullName
	}
	if params.Type != nil {
		user.Type = *params.Type
	}
	if params.IsActive != nil {
		user.IsActive = *params.IsActive
	}
	if params.IsBanned != nil {
		user.IsBanned = *params.IsBanned
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}
