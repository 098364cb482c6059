package domain

import "time"

// Provider discriminates how an authentication record proves identity.
// New providers are added here, not by scattering string comparisons.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGoogle Provider = "google"
)

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	return p == ProviderEmail || p == ProviderGoogle
}

// Authentication holds the credential material for one user and provider.
// At most one live refresh token exists per record; issuing a new pair
// invalidates the previous refresh token by overwrite.
type Authentication struct {
	ID                    string     `json:"id" db:"id"`
	UserID                string     `json:"user_id" db:"user_id"`
	CompanyID             string     `json:"company_id" db:"company_id"`
	Provider              Provider   `json:"provider" db:"provider"`
	Email                 string     `json:"email" db:"email"`
	PasswordHash          string     `json:"-" db:"password_hash"`
	AccessToken           *string    `json:"-" db:"access_token"`
	AccessTokenExpiresAt  *time.Time `json:"-" db:"access_token_expires_at"`
	RefreshToken          *string    `json:"-" db:"refresh_token"`
	RefreshTokenExpiresAt *time.Time `json:"-" db:"refresh_token_expires_at"`
	ResetToken            *string    `json:"-" db:"reset_token"`
	ResetTokenExpiresAt   *time.Time `json:"-" db:"expires_reset_token_at"`
	LastLogin             *time.Time `json:"last_login" db:"last_login"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
}

// HasLiveTokens reports whether the record currently holds a token pair.
func (a *Authentication) HasLiveTokens() bool {
	return a.AccessToken != nil || a.RefreshToken != nil
}
