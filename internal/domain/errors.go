package domain

import "net/http"

// AuthError is a terminal authentication failure surfaced to the caller.
// Key is the stable machine-readable identifier clients localize against.
type AuthError struct {
	Key     string
	Message string
	Status  int
}

func (e *AuthError) Error() string {
	return e.Message
}

var (
	ErrTenantRequired = &AuthError{
		Key:     "company_id_header_required",
		Message: "Company-Id header is required",
		Status:  http.StatusBadRequest,
	}
	ErrCompanyNotFound = &AuthError{
		Key:     "company_not_found",
		Message: "Company not found",
		Status:  http.StatusNotFound,
	}
	ErrCompanyInactive = &AuthError{
		Key:     "company_inactive",
		Message: "Company is not active",
		Status:  http.StatusForbidden,
	}
	ErrInvalidCredentials = &AuthError{
		Key:     "invalid_credentials",
		Message: "Invalid email or password",
		Status:  http.StatusUnauthorized,
	}
	ErrAccountInactive = &AuthError{
		Key:     "user_not_active",
		Message: "User is not active",
		Status:  http.StatusForbidden,
	}
	ErrAccountBanned = &AuthError{
		Key:     "user_banned",
		Message: "User is banned",
		Status:  http.StatusForbidden,
	}
	ErrInvalidProvider = &AuthError{
		Key:     "invalid_provider",
		Message: "Invalid authentication provider",
		Status:  http.StatusUnauthorized,
	}
	ErrWeakPassword = &AuthError{
		Key:     "weak_password",
		Message: "Password must be at least 8 characters with an uppercase letter, a lowercase letter and a digit",
		Status:  http.StatusBadRequest,
	}
	ErrUserAlreadyExists = &AuthError{
		Key:     "user_already_exists",
		Message: "User already exists",
		Status:  http.StatusConflict,
	}
	ErrInvalidRefreshToken = &AuthError{
		Key:     "invalid_refresh_token",
		Message: "Invalid refresh token",
		Status:  http.StatusUnauthorized,
	}
	ErrMissingRefreshToken = &AuthError{
		Key:     "missing_refresh_token",
		Message: "Refresh token is required",
		Status:  http.StatusBadRequest,
	}
	ErrTokenExpired = &AuthError{
		Key:     "token_expired",
		Message: "Token has expired",
		Status:  http.StatusUnauthorized,
	}
	ErrMalformedToken = &AuthError{
		Key:     "malformed_token",
		Message: "Token is malformed",
		Status:  http.StatusUnauthorized,
	}
	ErrOAuthExchangeFailed = &AuthError{
		Key:     "oauth_exchange_failed",
		Message: "Failed to exchange authorization code",
		Status:  http.StatusBadRequest,
	}
	ErrTokensNotFound = &AuthError{
		Key:     "tokens_not_found",
		Message: "No matching tokens found",
		Status:  http.StatusNotFound,
	}
	ErrInvalidResetToken = &AuthError{
		Key:     "invalid_reset_token",
		Message: "Invalid or expired reset token",
		Status:  http.StatusUnauthorized,
	}
	ErrAlreadyActive = &AuthError{
		Key:     "account_already_active",
		Message: "Account is already active",
		Status:  http.StatusBadRequest,
	}
	ErrUserNotFound = &AuthError{
		Key:     "user_not_found",
		Message: "User not found",
		Status:  http.StatusNotFound,
	}
	ErrForbidden = &AuthError{
		Key:     "forbidden",
		Message: "Insufficient permissions",
		Status:  http.StatusForbidden,
	}
)
