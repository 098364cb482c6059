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

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.Postgres
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.Postgres) UserRepository {
	return &userRepository{db: db}
}

const userColumns = "id, company_id, email, full_name, type, is_active, is_banned, created_at, updated_at"

// sortableUserFields whitelists ORDER BY targets for List.
var sortableUserFields = map[string]bool{
	"created_at": true,
	"email":      true,
	"full_name":  true,
	"type":       true,
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, company_id, email, full_name, type, is_active, is_banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}

	_, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.CompanyID,
		user.Email,
		user.FullName,
		user.Type,
		user.IsActive,
		user.IsBanned,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		// Unique constraint covers (company_id, email); the same email in
		// another company is a different user.
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" { // unique_violation
				return fmt.Errorf("user with email %s already exists in company %s: %w", user.Email, user.CompanyID, ErrDuplicateEmail)
			}
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByEmail retrieves a user by email within a company
func (r *userRepository) GetByEmail(ctx context.Context, companyID, email string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE company_id = $1 AND email = $2
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, companyID, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with email %s not found in company %s: %w", email, companyID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = $1
	`, userColumns)

	user, err := r.scanUser(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return user, nil
}

// Update updates an existing user's mutable fields
func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET full_name = $2, type = $3, is_active = $4, is_banned = $5, updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		user.ID,
		user.FullName,
		user.Type,
		user.IsActive,
		user.IsBanned,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", user.ID, ErrNotFound)
	}

	return nil
}

// SetActive flips the activation flag for a user matched by id and email.
// The email match mirrors the activation token binding.
func (r *userRepository) SetActive(ctx context.Context, userID, email string, active bool) error {
	query := `
		UPDATE users
		SET is_active = $3, updated_at = $4
		WHERE id = $1 AND email = $2
	`

	result, err := r.db.DB.ExecContext(ctx, query, userID, email, active, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set user active flag: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with id %s not found: %w", userID, ErrNotFound)
	}

	return nil
}

// List returns a page of users for a company plus the total count.
func (r *userRepository) List(ctx context.Context, companyID string, params ListUsersParams) ([]*domain.User, int, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PerPage < 1 {
		params.PerPage = 10
	}
	if !sortableUserFields[params.SortField] {
		params.SortField = "created_at"
	}

	direction := "ASC"
	if params.SortDesc {
		direction = "DESC"
	}

	countQuery := `SELECT COUNT(*) FROM users WHERE company_id = $1 AND ($2 = '' OR full_name ILIKE '%' || $2 || '%')`

	var total int
	if err := r.db.DB.QueryRowContext(ctx, countQuery, companyID, params.Search).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE company_id = $1 AND ($2 = '' OR full_name ILIKE '%%' || $2 || '%%')
		ORDER BY %s %s
		LIMIT $3 OFFSET $4
	`, userColumns, params.SortField, direction)

	offset := (params.Page - 1) * params.PerPage
	rows, err := r.db.DB.QueryContext(ctx, query, companyID, params.Search, params.PerPage, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.ID,
			&user.CompanyID,
			&user.Email,
			&user.FullName,
			&user.Type,
			&user.IsActive,
			&user.IsBanned,
			&user.CreatedAt,
			&user.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, total, nil
}

func (r *userRepository) scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.CompanyID,
		&user.Email,
		&user.FullName,
		&user.Type,
		&user.IsActive,
		&user.IsBanned,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}
