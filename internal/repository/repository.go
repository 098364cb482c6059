package repository

import (
	"github.com/whitelabel-hq/auth-service/pkg/database"
)

// Repositories holds all repository interfaces
type Repositories struct {
	User           UserRepository
	Authentication AuthenticationRepository
	Company        CompanyRepository
	AuditLog       AuditLogRepository
}

// NewRepositories creates all repositories
func NewRepositories(db *database.Postgres) *Repositories {
	return &Repositories{
		User:           NewUserRepository(db),
		Authentication: NewAuthenticationRepository(db),
		Company:        NewCompanyRepository(db),
		AuditLog:       NewAuditLogRepository(db),
	}
}
