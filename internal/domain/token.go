package domain

import "time"

// TokenClaims is the signed claim set carried by the service's tokens.
// Purpose is empty on access and refresh tokens and set on single-use
// tokens (password reset, account activation).
type TokenClaims struct {
	UserID    string   `json:"user_id"`
	Email     string   `json:"email"`
	CompanyID string   `json:"company_id"`
	Provider  Provider `json:"provider"`
	Purpose   string   `json:"purpose,omitempty"`
	Exp       int64    `json:"exp"`
	Iat       int64    `json:"iat"`
}

// IsExpired checks if the token is expired.
func (tc TokenClaims) IsExpired() bool {
	return time.Now().Unix() > tc.Exp
}

// TokenPair represents a freshly issued access and refresh token pair.
type TokenPair struct {
	AccessToken           string    `json:"access_token"`
	AccessTokenExpiresAt  time.Time `json:"-"`
	RefreshToken          string    `json:"refresh_token"`
	RefreshTokenExpiresAt time.Time `json:"-"`
}
