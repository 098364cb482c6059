package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/pkg/database"
)

// authenticationRepository implements AuthenticationRepository interface
type authenticationRepository struct {
	db *database.Postgres
}

// NewAuthenticationRepository creates a new authentication repository
func NewAuthenticationRepository(db *database.Postgres) AuthenticationRepository {
	return &authenticationRepository{db: db}
}

const authColumns = `id, user_id, company_id, provider, email, password_hash,
	access_token, access_token_expires_at, refresh_token, refresh_token_expires_at,
	reset_token, expires_reset_token_at, last_login, created_at`

// Create creates a new authentication record
func (r *authenticationRepository) Create(ctx context.Context, auth *domain.Authentication) error {
	query := `
		INSERT INTO authentications (id, user_id, company_id, provider, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	if auth.ID == "" {
		auth.ID = uuid.New().String()
	}
	if auth.CreatedAt.IsZero() {
		auth.CreatedAt = time.Now()
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		auth.ID,
		auth.UserID,
		auth.CompanyID,
		auth.Provider,
		auth.Email,
		auth.PasswordHash,
		auth.CreatedAt,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("authentication for user %s provider %s already exists: %w", auth.UserID, auth.Provider, ErrDuplicateAuthentication)
			}
		}
		return fmt.Errorf("failed to create authentication: %w", err)
	}

	return nil
}

// GetByUserID retrieves the authentication record for a user
func (r *authenticationRepository) GetByUserID(ctx context.Context, userID string) (*domain.Authentication, error) {
	query := fmt.Sprintf(`SELECT %s FROM authentications WHERE user_id = $1`, authColumns)

	auth, err := r.scanAuth(r.db.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authentication for user %s not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get authentication by user id: %w", err)
	}

	return auth, nil
}

// GetByEmail retrieves an authentication record by email within a company
func (r *authenticationRepository) GetByEmail(ctx context.Context, companyID, email string) (*domain.Authentication, error) {
	query := fmt.Sprintf(`SELECT %s FROM authentications WHERE company_id = $1 AND email = $2`, authColumns)

	auth, err := r.scanAuth(r.db.DB.QueryRowContext(ctx, query, companyID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("authentication for email %s not found in company %s: %w", email, companyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get authentication by email: %w", err)
	}

	return auth, nil
}

// UpdateTokens overwrites the stored token pair and last_login. The
// overwrite is what invalidates the previous refresh token.
func (r *authenticationRepository) UpdateTokens(ctx context.Context, authID string, pair *domain.TokenPair, lastLogin time.Time) error {
	query := `
		UPDATE authentications
		SET access_token = $2, access_token_expires_at = $3,
		    refresh_token = $4, refresh_token_expires_at = $5,
		    last_login = $6
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		authID,
		pair.AccessToken,
		pair.AccessTokenExpiresAt,
		pair.RefreshToken,
		pair.RefreshTokenExpiresAt,
		lastLogin,
	)
	if err != nil {
		return fmt.Errorf("failed to update tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("authentication with id %s not found: %w", authID, ErrNotFound)
	}

	return nil
}

// RotateTokens replaces the stored pair in a single conditional UPDATE keyed
// on the presented refresh token. Two refreshes racing on the same stale
// token cannot both win: the second sees zero rows affected.
func (r *authenticationRepository) RotateTokens(ctx context.Context, userID, oldRefreshToken string, pair *domain.TokenPair) (bool, error) {
	query := `
		UPDATE authentications
		SET access_token = $3, access_token_expires_at = $4,
		    refresh_token = $5, refresh_token_expires_at = $6
		WHERE user_id = $1 AND refresh_token = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		userID,
		oldRefreshToken,
		pair.AccessToken,
		pair.AccessTokenExpiresAt,
		pair.RefreshToken,
		pair.RefreshTokenExpiresAt,
	)
	if err != nil {
		return false, fmt.Errorf("failed to rotate tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// ClearTokens nulls the token fields. Returns false when the record held no
// live tokens, so a second logout is distinguishable from the first.
func (r *authenticationRepository) ClearTokens(ctx context.Context, authID string) (bool, error) {
	query := `
		UPDATE authentications
		SET access_token = NULL, access_token_expires_at = NULL,
		    refresh_token = NULL, refresh_token_expires_at = NULL
		WHERE id = $1 AND (access_token IS NOT NULL OR refresh_token IS NOT NULL)
	`

	result, err := r.db.DB.ExecContext(ctx, query, authID)
	if err != nil {
		return false, fmt.Errorf("failed to clear tokens: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// SetResetToken stores a password reset token and its expiry
func (r *authenticationRepository) SetResetToken(ctx context.Context, authID, token string, expiresAt time.Time) error {
	query := `
		UPDATE authentications
		SET reset_token = $2, expires_reset_token_at = $3
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, authID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("authentication with id %s not found: %w", authID, ErrNotFound)
	}

	return nil
}

// GetByResetToken retrieves the authentication record holding a reset token
func (r *authenticationRepository) GetByResetToken(ctx context.Context, token string) (*domain.Authentication, error) {
	query := fmt.Sprintf(`SELECT %s FROM authentications WHERE reset_token = $1`, authColumns)

	auth, err := r.scanAuth(r.db.DB.QueryRowContext(ctx, query, token))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reset token not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get authentication by reset token: %w", err)
	}

	return auth, nil
}

// UpdatePassword sets a new password hash and clears the reset token
func (r *authenticationRepository) UpdatePassword(ctx context.Context, authID, passwordHash string) error {
	query := `
		UPDATE authentications
		SET password_hash = $2, reset_token = NULL, expires_reset_token_at = NULL
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, authID, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("authentication with id %s not found: %w", authID, ErrNotFound)
	}

	return nil
}

func (r *authenticationRepository) scanAuth(row *sql.Row) (*domain.Authentication, error) {
	auth := &domain.Authentication{}
	var (
		passwordHash          sql.NullString
		accessToken           sql.NullString
		accessTokenExpiresAt  sql.NullTime
		refreshToken          sql.NullString
		refreshTokenExpiresAt sql.NullTime
		resetToken            sql.NullString
		resetTokenExpiresAt   sql.NullTime
		lastLogin             sql.NullTime
	)

	err := row.Scan(
		&auth.ID,
		&auth.UserID,
		&auth.CompanyID,
		&auth.Provider,
		&auth.Email,
		&passwordHash,
		&accessToken,
		&accessTokenExpiresAt,
		&refreshToken,
		&refreshTokenExpiresAt,
		&resetToken,
		&resetTokenExpiresAt,
		&lastLogin,
		&auth.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if passwordHash.Valid {
		auth.PasswordHash = passwordHash.String
	}
	if accessToken.Valid {
		auth.AccessToken = &accessToken.String
	}
	if accessTokenExpiresAt.Valid {
		auth.AccessTokenExpiresAt = &accessTokenExpiresAt.Time
	}
	if refreshToken.Valid {
		auth.RefreshToken = &refreshToken.String
	}
	if refreshTokenExpiresAt.Valid {
		auth.RefreshTokenExpiresAt = &refreshTokenExpiresAt.Time
	}
	if resetToken.Valid {
		auth.ResetToken = &resetToken.String
	}
	if resetTokenExpiresAt.Valid {
		auth.ResetTokenExpiresAt = &resetTokenExpiresAt.Time
	}
	if lastLogin.Valid {
		auth.LastLogin = &lastLogin.Time
	}

	return auth, nil
}
