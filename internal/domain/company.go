package domain

import "time"

// CompanyStatus is the lifecycle state of a tenant.
type CompanyStatus string

const (
	CompanyStatusActive    CompanyStatus = "active"
	CompanyStatusInactive  CompanyStatus = "inactive"
	CompanyStatusSuspended CompanyStatus = "suspended"
	CompanyStatusPending   CompanyStatus = "pending"
)

// Company represents a tenant. Every user and authentication lookup must be
// scoped by its ID; logins additionally require the company to be active.
type Company struct {
	ID        string        `json:"id" db:"id"`
	Name      string        `json:"name" db:"name"`
	Slug      string        `json:"slug" db:"slug"`
	Domain    string        `json:"domain" db:"domain"`
	Status    CompanyStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}

// IsActive reports whether the tenant may authenticate users.
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}
