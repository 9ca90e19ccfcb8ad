package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Admin struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerOrgID uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_org_id"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100)" json:"last_name"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	PartnerOrganization *PartnerOrganization `gorm:"foreignKey:PartnerOrgID" json:"partner_organization,omitempty"`
}

func (a *Admin) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AdminCredential is the password material for the local credential provider.
// PasswordHash is an encoded argon2id hash and never leaves the server.
type AdminCredential struct {
	AdminID      uuid.UUID  `gorm:"type:uuid;primaryKey" json:"-"`
	PasswordHash string     `gorm:"type:text;not null" json:"-"`
	LastUsedAt   *time.Time `json:"-"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}
