// internal/model/application.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

type EducationStatus string

const (
	EducationCurrentlyEnrolled EducationStatus = "CURRENTLY_ENROLLED"
	EducationFreshGraduate     EducationStatus = "FRESH_GRADUATE"
	EducationGraduate          EducationStatus = "GRADUATE"
	EducationGapYear           EducationStatus = "GAP_YEAR"
)

type ExperienceLevel string

const (
	ExperienceNone         ExperienceLevel = "NONE"
	ExperienceBeginner     ExperienceLevel = "BEGINNER"
	ExperienceBasic        ExperienceLevel = "BASIC"
	ExperienceIntermediate ExperienceLevel = "INTERMEDIATE"
	ExperienceAdvanced     ExperienceLevel = "ADVANCED"
)

type Demographic string

const (
	DemographicUnemployed         Demographic = "UNEMPLOYED"
	DemographicUnderemployed      Demographic = "UNDEREMPLOYED"
	DemographicBelowPoverty       Demographic = "BELOW_POVERTY"
	DemographicRefugee            Demographic = "REFUGEE"
	DemographicDisabled           Demographic = "DISABLED"
	DemographicStudent            Demographic = "STUDENT"
	DemographicWorkingStudent     Demographic = "WORKING_STUDENT"
	DemographicNonprofitScientist Demographic = "NONPROFIT_SCIENTIST"
)

type Device string

const (
	DeviceSmartphone Device = "SMARTPHONE"
	DeviceLaptop     Device = "LAPTOP"
	DeviceDesktop    Device = "DESKTOP"
)

type Connectivity string

const (
	ConnectivityMobileData Connectivity = "MOBILE_DATA"
	ConnectivityWifi       Connectivity = "WIFI"
)

// Application is created once per (email, partner organization) by the intake
// workflow and afterwards only changes status.
type Application struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PartnerOrgID uuid.UUID `gorm:"type:uuid;not null;index" json:"partner_org_id"`
	Email        string    `gorm:"type:varchar(255);not null;index" json:"email"`

	FirstName  string `gorm:"type:varchar(100);not null" json:"first_name"`
	MiddleName string `gorm:"type:varchar(100)" json:"middle_name,omitempty"`
	LastName   string `gorm:"type:varchar(100);not null" json:"last_name"`
	Birthdate  string `gorm:"type:varchar(10);not null" json:"birthdate"`
	Gender     Gender `gorm:"type:varchar(16);not null" json:"gender"`

	Country             string `gorm:"type:varchar(100);not null" json:"country"`
	StateRegionProvince string `gorm:"type:varchar(100);not null" json:"state_region_province"`
	City                string `gorm:"type:varchar(100);not null" json:"city"`
	PostalCode          string `gorm:"type:varchar(20);not null" json:"postal_code"`

	EducationStatus    EducationStatus `gorm:"type:varchar(32);not null" json:"education_status"`
	InstitutionCountry string          `gorm:"type:varchar(100);not null" json:"institution_country"`
	InstitutionName    string          `gorm:"type:varchar(255);not null" json:"institution_name"`

	ProgrammingExperience ExperienceLevel `gorm:"type:varchar(16);not null" json:"programming_experience"`
	DataScienceExperience ExperienceLevel `gorm:"type:varchar(16);not null" json:"data_science_experience"`
	WeeklyTimeCommitment  string          `gorm:"type:varchar(8);not null" json:"weekly_time_commitment"`
	ScholarshipReason     string          `gorm:"type:text;not null" json:"scholarship_reason"`
	CareerGoals           string          `gorm:"type:text;not null" json:"career_goals"`

	Status    ApplicationStatus `gorm:"type:varchar(16);not null;index" json:"status"`
	AppliedAt time.Time         `gorm:"not null" json:"applied_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	PartnerOrganization *PartnerOrganization      `gorm:"foreignKey:PartnerOrgID" json:"partner_organization,omitempty"`
	Demographics        []ApplicationDemographic  `gorm:"foreignKey:ApplicationID" json:"demographics,omitempty"`
	Devices             []ApplicationDevice       `gorm:"foreignKey:ApplicationID" json:"devices,omitempty"`
	Connectivity        []ApplicationConnectivity `gorm:"foreignKey:ApplicationID" json:"connectivity,omitempty"`
	Reviews             []ApplicationReview       `gorm:"foreignKey:ApplicationID" json:"reviews,omitempty"`
}

func (a *Application) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.AppliedAt.IsZero() {
		a.AppliedAt = time.Now().UTC()
	}
	return nil
}

// FullName joins the non-empty name parts.
func (a *Application) FullName() string {
	name := a.FirstName
	if a.MiddleName != "" {
		name += " " + a.MiddleName
	}
	if a.LastName != "" {
		name += " " + a.LastName
	}
	return name
}

type ApplicationDemographic struct {
	ID            uint        `gorm:"primaryKey" json:"-"`
	ApplicationID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_application_demographic" json:"-"`
	Demographic   Demographic `gorm:"type:varchar(32);not null;uniqueIndex:idx_application_demographic" json:"demographic"`
}

type ApplicationDevice struct {
	ID            uint      `gorm:"primaryKey" json:"-"`
	ApplicationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_application_device" json:"-"`
	Device        Device    `gorm:"type:varchar(32);not null;uniqueIndex:idx_application_device" json:"device"`
}

// ApplicationConnectivity maps to the application_connectivity table.
type ApplicationConnectivity struct {
	ID            uint         `gorm:"primaryKey" json:"-"`
	ApplicationID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_application_connectivity" json:"-"`
	Connectivity  Connectivity `gorm:"type:varchar(32);not null;uniqueIndex:idx_application_connectivity" json:"connectivity"`
}

func (ApplicationConnectivity) TableName() string {
	return "application_connectivity"
}

type ReviewAction string

const (
	ReviewApproved ReviewAction = "APPROVED"
	ReviewRejected ReviewAction = "REJECTED"
)

// ApplicationReview is an append-only record of an admin decision.
type ApplicationReview struct {
	ID            uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicationID uuid.UUID    `gorm:"type:uuid;not null;index" json:"application_id"`
	AdminID       uuid.UUID    `gorm:"type:uuid;not null" json:"admin_id"`
	Action        ReviewAction `gorm:"type:varchar(16);not null" json:"action"`
	ActionReason  string       `gorm:"type:text" json:"action_reason,omitempty"`
	ReviewedAt    time.Time    `gorm:"not null" json:"reviewed_at"`
}

func (r *ApplicationReview) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ReviewedAt.IsZero() {
		r.ReviewedAt = time.Now().UTC()
	}
	return nil
}
