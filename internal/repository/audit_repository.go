package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/whitelabel-hq/auth-service/internal/domain"
	"github.com/whitelabel-hq/auth-service/pkg/database"
)

// auditLogRepository implements AuditLogRepository interface
type auditLogRepository struct {
	db *database.Postgres
}

// NewAuditLogRepository creates a new audit log repository
func NewAuditLogRepository(db *database.Postgres) AuditLogRepository {
	return &auditLogRepository{db: db}
}

// Insert appends an audit event. Audit rows are append-only.
func (r *auditLogRepository) Insert(ctx context.Context, entry *domain.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, auth_id, event, ip_address, user_agent, origin, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal audit metadata: %w", err)
	}

	_, err = r.db.DB.ExecContext(ctx, query,
		entry.ID,
		entry.AuthID,
		entry.Event,
		entry.IPAddress,
		entry.UserAgent,
		entry.Origin,
		metadata,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}
