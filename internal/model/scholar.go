// internal/model/scholar.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scholar is created when an admin approves the MoA. ID has the form SCH
// followed by 8 digits and never changes once assigned.
type Scholar struct {
	ID            string    `gorm:"type:varchar(11);primaryKey" json:"id"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"application_id"`
	MoaID         uuid.UUID `gorm:"type:uuid;not null" json:"moa_id"`
	PartnerOrgID  uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_org_id"`
	IsActive      bool      `gorm:"not null;index" json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Application *Application `gorm:"foreignKey:ApplicationID" json:"application,omitempty"`
}

// ScholarStatusChange records each activate/deactivate decision.
type ScholarStatusChange struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ScholarID string    `gorm:"type:varchar(11);not null;index" json:"scholar_id"`
	AdminID   uuid.UUID `gorm:"type:uuid;not null" json:"admin_id"`
	IsActive  bool      `gorm:"not null" json:"is_active"`
	Reason    string    `gorm:"type:text" json:"reason,omitempty"`
	ChangedAt time.Time `gorm:"not null" json:"changed_at"`
}

func (c *ScholarStatusChange) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.ChangedAt.IsZero() {
		c.ChangedAt = time.Now().UTC()
	}
	return nil
}

type Certification struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ScholarID           string    `gorm:"type:varchar(11);not null;index" json:"scholar_id"`
	Name                string    `gorm:"type:varchar(255);not null" json:"name"`
	IssuingOrganization string    `gorm:"type:varchar(255);not null" json:"issuing_organization"`
	IssueMonth          int       `gorm:"not null" json:"issue_month"`
	IssueYear           int       `gorm:"not null" json:"issue_year"`
	ExpirationMonth     *int      `json:"expiration_month,omitempty"`
	ExpirationYear      *int      `json:"expiration_year,omitempty"`
	CredentialID        *string   `gorm:"type:varchar(255)" json:"credential_id,omitempty"`
	CredentialURL       *string   `gorm:"type:text" json:"credential_url,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
}

func (c *Certification) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Job is a self-reported employment record.
type Job struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ScholarID   string    `gorm:"type:varchar(11);not null;index" json:"scholar_id"`
	JobTitle    string    `gorm:"type:varchar(255);not null" json:"job_title"`
	Company     string    `gorm:"type:varchar(255);not null" json:"company"`
	Testimonial *string   `gorm:"type:text" json:"testimonial,omitempty"`
	IsPublished bool      `gorm:"not null" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
