package models

import "time"

// Audit actions.
const (
	AuditActionSessionGenerated       = "SESSION_GENERATED"
	AuditActionCommentAdded           = "COMMENT_ADDED"
	AuditActionApprovalChanged        = "APPROVAL_CHANGED"
	AuditActionAutismProfileGenerated = "AUTISM_PROFILE_GENERATED"
	AuditActionAutismProfileShared    = "AUTISM_PROFILE_SHARED"
)

// Audit resources.
const (
	AuditResourceSession       = "accommodation_session"
	AuditResourceComment       = "session_comment"
	AuditResourceAutismProfile = "autism_profile"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  *string   `db:"ip_address" json:"ipAddress,omitempty"`
	UserAgent  *string   `db:"user_agent" json:"userAgent,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
