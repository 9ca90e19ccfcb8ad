package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ApprovedApplicant marks an application that was approved and is waiting for
// a signed Memorandum of Agreement. ID has the form APP followed by 8 digits.
type ApprovedApplicant struct {
	ID            string    `gorm:"type:varchar(11);primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	CreatedAt     time.Time `json:"created_at"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

type MoaStatus string

const (
	// MoaPending means a reviewer sent the MoA back for revision.
	MoaPending   MoaStatus = "PENDING"
	MoaSubmitted MoaStatus = "SUBMITTED"
	MoaApproved  MoaStatus = "APPROVED"
)

type MoaSubmission struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ApprovedApplicantID string    `gorm:"type:varchar(11);not null;uniqueIndex" json:"approved_applicant_id"`
	DigitalSignature    string    `gorm:"type:varchar(255);not null" json:"digital_signature"`
	AgreedTerms         bool      `gorm:"not null" json:"agreed_terms"`
	AgreedCommitment    bool      `gorm:"not null" json:"agreed_commitment"`
	AgreedConduct       bool      `gorm:"not null" json:"agreed_conduct"`
	AgreedDataPrivacy   bool      `gorm:"not null" json:"agreed_data_privacy"`
	Status              MoaStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	SubmittedAt         time.Time `gorm:"not null" json:"submitted_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	ApprovedApplicant *ApprovedApplicant `gorm:"foreignKey:ApprovedApplicantID" json:"approved_applicant,omitempty"`
	Reviews           []MoaReview        `gorm:"foreignKey:MoaID" json:"reviews,omitempty"`
}

func (m *MoaSubmission) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.SubmittedAt.IsZero() {
		m.SubmittedAt = time.Now().UTC()
	}
	return nil
}

type MoaReview struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	MoaID        uuid.UUID    `gorm:"type:uuid;not null;index" json:"moa_id"`
	AdminID      uuid.UUID    `gorm:"type:uuid;not null" json:"admin_id"`
	Action       ReviewAction `gorm:"type:varchar(16);not null" json:"action"`
	ActionReason string       `gorm:"type:text" json:"action_reason,omitempty"`
	ReviewedAt   time.Time    `gorm:"not null" json:"reviewed_at"`
}

func (r *MoaReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReviewedAt.IsZero() {
		r.ReviewedAt = time.Now().UTC()
	}
	return nil
}
