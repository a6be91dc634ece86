package domain

import "time"

// AuditLog represents an audit log entry for tracking important actions
type AuditLog struct {
	ID        int64          `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"user_id"`
	ProjectID *string        `db:"project_id" json:"project_id,omitempty"`
	Action    string         `db:"action" json:"action"`
	Category  string         `db:"category" json:"category"`
	Details   map[string]any `db:"details" json:"details"`
	IP        string         `db:"ip" json:"ip,omitempty"`
	UserAgent string         `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// Audit action categories
const (
	AuditCategoryAuth    = "auth"
	AuditCategoryProject = "project"
	AuditCategoryMember  = "member"
)

// Audit actions
const (
	// Auth actions
	AuditActionRegister      = "register"
	AuditActionLogin         = "login"
	AuditActionLoginFailed   = "login_failed"
	AuditActionAccountDelete = "account_delete"

	// Project actions
	AuditActionProjectCreate = "project_create"
	AuditActionProjectDelete = "project_delete"
	AuditActionOwnerChange   = "owner_change"

	// Member actions
	AuditActionMemberAdd    = "member_add"
	AuditActionMemberRemove = "member_remove"
)
