// internal/model/organization.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PartnerOrganization runs a scholarship program. Organizations are provisioned
// out of band (see cmd/scholarctl) and are read-only to the workflow.
type PartnerOrganization struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName string    `gorm:"type:varchar(255);not null" json:"display_name"`
	IsActive    bool      `gorm:"not null" json:"is_active"`
	IsAccepting bool      `gorm:"not null" json:"is_accepting"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (o *PartnerOrganization) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
