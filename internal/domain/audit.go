package domain

import "time"

// AuditEvent names an auditable authentication event.
type AuditEvent string

const (
	AuditEventLogin             AuditEvent = "login"
	AuditEventLogout            AuditEvent = "logout"
	AuditEventSignup            AuditEvent = "signup"
	AuditEventPasswordResetReq  AuditEvent = "password_reset_requested"
	AuditEventAccountActivation AuditEvent = "account_activation"
	AuditEventPasswordChange    AuditEvent = "password_change"
)

// AuditLog is an append-only record of an authentication event. Rows are
// never read back or mutated by this service after creation.
type AuditLog struct {
	ID        string            `json:"id" db:"id"`
	AuthID    string            `json:"auth_id" db:"auth_id"`
	Event     AuditEvent        `json:"event" db:"event"`
	IPAddress string            `json:"ip_address" db:"ip_address"`
	UserAgent string            `json:"user_agent" db:"user_agent"`
	Origin    string            `json:"origin" db:"origin"`
	Metadata  map[string]string `json:"metadata" db:"metadata"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}
