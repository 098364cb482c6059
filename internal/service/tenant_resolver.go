package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/internal/repository"
)

// tenantResolver implements TenantResolver over the company repository.
type tenantResolver struct {
	companies repository.CompanyRepository
}

// NewTenantResolver creates a new tenant resolver.
func NewTenantResolver(companies repository.CompanyRepository) TenantResolver {
	return &tenantResolver{companies: companies}
}

// ResolveID resolves a tenant from an explicit Company-Id value.
func (t *tenantResolver) ResolveID(ctx context.Context, companyID string) (*domain.Company, error) {
	if companyID == "" {
		return nil, domain.ErrTenantRequired
	}

	company, err := t.companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	return company, nil
}

// ResolveSlugOrDomain resolves a tenant for the public-facing app. Slug
// takes precedence when both are given.
func (t *tenantResolver) ResolveSlugOrDomain(ctx context.Context, slug, companyDomain string) (*domain.Company, error) {
	if slug == "" && companyDomain == "" {
		return nil, domain.ErrTenantRequired
	}

	var (
		company *domain.Company
		err     error
	)
	if slug != "" {
		company, err = t.companies.GetBySlug(ctx, slug)
	} else {
		company, err = t.companies.GetByDomain(ctx, companyDomain)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, fmt.Errorf("failed to resolve tenant: %w", err)
	}

	return company, nil
}
