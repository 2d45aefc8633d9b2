package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// GateAuditLog records guard decisions and gate settlements for later
// diagnosis of onboarding loops. Rows are append-only.
type GateAuditLog struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	CorrelationID uuid.UUID      `gorm:"type:uuid;index:idx_gate_audit_correlation" json:"correlation_id"`
	AccountID     *int64         `gorm:"index:idx_gate_audit_account" json:"account_id,omitempty"`
	Action        string         `gorm:"size:64;not null;index:idx_gate_audit_action" json:"action"`
	Stage         string         `gorm:"size:32" json:"stage,omitempty"`
	Roles         pq.StringArray `gorm:"type:text[]" json:"roles,omitempty"`
	Path          *string        `gorm:"size:255" json:"path,omitempty"`
	Detail        *string        `gorm:"size:128" json:"detail,omitempty"`
	TargetPath    *string        `gorm:"size:255" json:"target_path,omitempty"`
	Success       *bool          `gorm:"default:true;index:idx_gate_audit_success" json:"success"`
	ErrorMessage  *string        `gorm:"type:text" json:"error_message,omitempty"`
	CreatedAt     time.Time      `gorm:"default:CURRENT_TIMESTAMP;index:idx_gate_audit_created_at" json:"created_at"`
}

func (GateAuditLog) TableName() string {
	return "gate_audit_log"
}

// Audit action constants
const (
	AuditActionStageResolved   = "stage_resolved"
	AuditActionRedirectIssued  = "redirect_issued"
	AuditActionCacheHealed     = "cache_healed"
	AuditActionGateOpened      = "gate_opened"
	AuditActionGateResolved    = "gate_resolved"
	AuditActionGateSuperseded  = "gate_superseded"
	AuditActionProfileCreated  = "profile_created"
	AuditActionApplySubmitted  = "apply_submitted"
	AuditActionApplyCancelled  = "apply_cancelled"
	AuditActionSessionStarted  = "session_started"
	AuditActionSessionCleared  = "session_cleared"
)

// GateAuditLogFilter represents filter criteria for audit queries.
type GateAuditLogFilter struct {
	AccountID     *int64
	Action        *string
	Success       *bool
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

func (l *GateAuditLog) IsFailed() bool {
	return l.Success != nil && !*l.Success
}
