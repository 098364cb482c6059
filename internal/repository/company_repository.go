package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/pkg/database"
)

// companyRepository implements CompanyRepository interface
type companyRepository struct {
	db *database.Postgres
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *database.Postgres) CompanyRepository {
	return &companyRepository{db: db}
}

const companyColumns = "id, name, slug, domain, status, created_at"

// GetByID retrieves a company by ID
func (r *companyRepository) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE id = $1`, companyColumns)
	return r.getOne(ctx, query, id)
}

// GetBySlug retrieves a company by slug
func (r *companyRepository) GetBySlug(ctx context.Context, slug string) (*domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE slug = $1`, companyColumns)
	return r.getOne(ctx, query, slug)
}

// GetByDomain retrieves a company by custom domain
func (r *companyRepository) GetByDomain(ctx context.Context, companyDomain string) (*domain.Company, error) {
	query := fmt.Sprintf(`SELECT %s FROM companies WHERE domain = $1`, companyColumns)
	return r.getOne(ctx, query, companyDomain)
}

func (r *companyRepository) getOne(ctx context.Context, query, arg string) (*domain.Company, error) {
	company := &domain.Company{}
	var companyDomain sql.NullString

	err := r.db.DB.QueryRowContext(ctx, query, arg).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&companyDomain,
		&company.Status,
		&company.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("company not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	if companyDomain.Valid {
		company.Domain = companyDomain.String
	}

	return company, nil
}
