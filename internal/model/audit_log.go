package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog is the generic trail of state-changing actions.
type AuditLog struct {
	ID         uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey"`
	Timestamp  time.Time         `json:"timestamp" gorm:"not null;index"`
	Action     string            `json:"action" gorm:"type:varchar(64);not null;index"`
	ActorType  string            `json:"actor_type" gorm:"type:varchar(32)"`
	ActorID    string            `json:"actor_id" gorm:"type:varchar(64)"`
	EntityType string            `json:"entity_type" gorm:"type:varchar(64)"`
	EntityID   string            `json:"entity_id" gorm:"type:varchar(64);index"`
	Details    datatypes.JSONMap `json:"details"`
	RequestID  string            `json:"request_id" gorm:"type:varchar(128)"`
	ClientIP   string            `json:"client_ip" gorm:"type:varchar(64)"`
	UserAgent  string            `json:"user_agent" gorm:"type:text"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now().UTC()
	}
	return nil
}

// Audit actions
const (
	ActionApplicationSubmitted = "application_submitted"
	ActionApplicationApproved  = "application_approved"
	ActionApplicationRejected  = "application_rejected"
	ActionMoASubmitted         = "moa_submitted"
	ActionMoAApproved          = "moa_approved"
	ActionMoARevision          = "moa_revision_requested"
	ActionScholarActivated     = "scholar_activated"
	ActionScholarDeactivated   = "scholar_deactivated"
)
