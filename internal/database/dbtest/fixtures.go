package dbtest

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/datara/scholarhub/internal/model"
)

// Organization inserts an active organization that accepts applications.
func Organization(t testing.TB, db *gorm.DB, mutate ...func(*model.PartnerOrganization)) *model.PartnerOrganization {
	t.Helper()

	org := &model.PartnerOrganization{
		DisplayName: gofakeit.Company(),
		IsActive:    true,
		IsAccepting: true,
	}
	for _, m := range mutate {
		m(org)
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// Admin inserts an active admin of the organization.
func Admin(t testing.TB, db *gorm.DB, orgID uuid.UUID) *model.Admin {
	t.Helper()

	admin := &model.Admin{
		PartnerOrgID: orgID,
		Email:        strings.ToLower(gofakeit.Email()),
		FirstName:    gofakeit.FirstName(),
		LastName:     gofakeit.LastName(),
		IsActive:     true,
	}
	require.NoError(t, db.Create(admin).Error)
	return admin
}

// Application inserts an application with one tag of each kind.
func Application(t testing.TB, db *gorm.DB, orgID uuid.UUID, status model.ApplicationStatus) *model.Application {
	t.Helper()

	born := gofakeit.DateRange(
		time.Date(1975, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 12, 31, 0, 0, 0, 0, time.UTC),
	)

	app := &model.Application{
		PartnerOrgID:          orgID,
		Email:                 strings.ToLower(gofakeit.Email()),
		FirstName:             gofakeit.FirstName(),
		LastName:              gofakeit.LastName(),
		Birthdate:             born.Format(time.DateOnly),
		Gender:                model.GenderFemale,
		Country:               "Philippines",
		StateRegionProvince:   "Cebu",
		City:                  gofakeit.City(),
		PostalCode:            gofakeit.Zip(),
		EducationStatus:       model.EducationGraduate,
		InstitutionCountry:    "Philippines",
		InstitutionName:       gofakeit.Company() + " University",
		ProgrammingExperience: model.ExperienceBasic,
		DataScienceExperience: model.ExperienceBeginner,
		WeeklyTimeCommitment:  "6-10",
		ScholarshipReason:     gofakeit.Sentence(12),
		CareerGoals:           gofakeit.Sentence(10),
		Status:                status,
		Demographics:          []model.ApplicationDemographic{{Demographic: model.DemographicStudent}},
		Devices:               []model.ApplicationDevice{{Device: model.DeviceLaptop}},
		Connectivity:          []model.ApplicationConnectivity{{Connectivity: model.ConnectivityWifi}},
	}
	require.NoError(t, db.Create(app).Error)
	return app
}

// ApprovedApplicant inserts the approved applicant row for app.
func ApprovedApplicant(t testing.TB, db *gorm.DB, app *model.Application) *model.ApprovedApplicant {
	t.Helper()

	approved := &model.ApprovedApplicant{
		ID:            "APP" + gofakeit.Numerify("########"),
		ApplicationID: app.ID,
	}
	require.NoError(t, db.Create(approved).Error)
	return approved
}

// Moa inserts a submission for the approved applicant with the given status.
func Moa(t testing.TB, db *gorm.DB, approved *model.ApprovedApplicant, status model.MoaStatus) *model.MoaSubmission {
	t.Helper()

	moa := &model.MoaSubmission{
		ApprovedApplicantID: approved.ID,
		DigitalSignature:    gofakeit.Name(),
		AgreedTerms:         true,
		AgreedCommitment:    true,
		AgreedConduct:       true,
		AgreedDataPrivacy:   true,
		Status:              status,
	}
	require.NoError(t, db.Create(moa).Error)
	return moa
}

// Scholar inserts a scholar for app.
func Scholar(t testing.TB, db *gorm.DB, app *model.Application, moaID uuid.UUID, active bool) *model.Scholar {
	t.Helper()

	scholar := &model.Scholar{
		ID:            "SCH" + gofakeit.Numerify("########"),
		ApplicationID: app.ID,
		MoaID:         moaID,
		PartnerOrgID:  app.PartnerOrgID,
		IsActive:      active,
	}
	require.NoError(t, db.Create(scholar).Error)
	return scholar
}
