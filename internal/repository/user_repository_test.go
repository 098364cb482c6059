package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/whitelabel-hq/auth-service/internal/domain"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "company_id", "email", "full_name", "type",
		"is_active", "is_banned", "created_at", "updated_at",
	})
}

func TestCreateUserMapsDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.User{
		CompanyID: "company-1",
		Email:     "taken@example.com",
		Type:      domain.UserTypeUser,
	})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestGetByEmailIsTenantScoped(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("company-1", "user@example.com").
		WillReturnRows(userRows().
			AddRow("user-1", "company-1", "user@example.com", "User One", "user", true, false, now, now))

	user, err := repo.GetByEmail(context.Background(), "company-1", "user@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("Expected user-1, got %s", user.ID)
	}

	// Same email under another tenant matches no row.
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("company-2", "user@example.com").
		WillReturnRows(userRows())

	_, err = repo.GetByEmail(context.Background(), "company-2", "user@example.com")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestSetActiveRequiresMatchingEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users").
		WithArgs("user-1", "other@example.com", true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetActive(context.Background(), "user-1", "other@example.com", true)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestListUsersDefaultsAndPaging(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("company-1", "").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("company-1", "", 10, 0).
		WillReturnRows(userRows().
			AddRow("user-1", "company-1", "a@example.com", "A", "user", true, false, now, now).
			AddRow("user-2", "company-1", "b@example.com", "B", "admin", true, false, now, now))

	// Out-of-range page and a non-whitelisted sort field fall back to defaults.
	users, total, err := repo.List(context.Background(), "company-1", ListUsersParams{
		Page:      0,
		PerPage:   0,
		SortField: "password_hash",
	})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 12 {
		t.Errorf("Expected total 12, got %d", total)
	}
	if len(users) != 2 {
		t.Errorf("Expected 2 users, got %d", len(users))
	}
}
