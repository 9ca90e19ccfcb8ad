package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/datara/scholarhub/internal/database/dbtest"
	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/email"
	"github.com/datara/scholarhub/internal/email/mailer"
	"github.com/datara/scholarhub/internal/mocks"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
	"github.com/datara/scholarhub/internal/session"
)

type intakeFixture struct {
	svc      *IntakeService
	db       *gorm.DB
	notifier *mocks.MockNotifier
	org      *model.PartnerOrganization
	clock    time.Time
}

func newIntakeFixture(t *testing.T) *intakeFixture {
	t.Helper()

	db := dbtest.New(t)
	drafts := session.NewMemoryStore(0)
	t.Cleanup(drafts.Close)

	notifier := mocks.NewMockNotifier(gomock.NewController(t))
	f := &intakeFixture{
		db:       db,
		notifier: notifier,
		org:      dbtest.Organization(t, db),
		clock:    time.Now().UTC(),
	}
	f.svc = NewIntakeService(repository.NewStore(db), drafts, notifier, IntakeConfig{
		DraftTTL:       72 * time.Hour,
		OTPTTL:         10 * time.Minute,
		OTPMaxAttempts: 3,
		MinimumAge:     16,
	})
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *intakeFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func validSteps(orgID uuid.UUID, emailAddr string) []StepInput {
	return []StepInput{
		&OrganizationStep{PartnerOrgID: orgID.String(), PrivacyConsent: true, Email: emailAddr},
		&BasicInfoStep{FirstName: "Maria", LastName: "Santos", Gender: "FEMALE", Birthdate: "2000-05-01"},
		&GeographicStep{Country: "Philippines", StateRegionProvince: "Cebu", City: "Cebu City", PostalCode: "6000"},
		&EducationStep{EducationStatus: "CURRENTLY_ENROLLED", InstitutionCountry: "Philippines", InstitutionName: "University of San Carlos"},
		&InterestStep{
			ProgrammingExperience: "BASIC",
			DataScienceExperience: "NONE",
			WeeklyTimeCommitment:  "6-10",
			ScholarshipReason:     "I want to move into data work.",
			CareerGoals:           "Become a data analyst.",
		},
		&DemographicsStep{
			Demographics: []string{"STUDENT", "WORKING_STUDENT", "STUDENT"},
			Devices:      []string{"LAPTOP"},
			Connectivity: []string{"WIFI", "MOBILE_DATA"},
		},
	}
}

// completeDraft walks a new draft up to the review step.
func (f *intakeFixture) completeDraft(t *testing.T, emailAddr string) *Draft {
	t.Helper()
	ctx := context.Background()

	d, err := f.svc.Start(ctx)
	require.NoError(t, err)
	for _, in := range validSteps(f.org.ID, emailAddr) {
		d, err = f.svc.Next(ctx, d.ID, in)
		require.NoError(t, err)
	}
	require.Equal(t, StepReview, d.Step)
	return d
}

// expectOTP captures the code mailed by SubmitForReview.
func (f *intakeFixture) expectOTP(to string, code *string) {
	f.notifier.EXPECT().Send(gomock.Any(), to, email.KindOTPCode, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ email.Kind, args any) bool {
			*code = args.(mailer.OTPCodeData).Code
			return true
		})
}

func TestIntake_FullSubmission(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "  Maria.Santos@Example.org ")
	assert.Equal(t, "review", d.StepName)
	assert.Equal(t, "maria.santos@example.org", d.Organization.Email)
	assert.False(t, d.AwaitingOTP)

	var code string
	f.expectOTP("maria.santos@example.org", &code)
	d, err := f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, d.AwaitingOTP)
	assert.Len(t, code, 6)

	f.notifier.EXPECT().Send(gomock.Any(), "maria.santos@example.org", email.KindApplicationReceived, mailer.ApplicationReceivedData{
		FirstName:        "Maria",
		OrganizationName: f.org.DisplayName,
	}).Return(true)

	app, err := f.svc.VerifyOTP(ctx, d.ID, " "+code+" ")
	require.NoError(t, err)
	assert.Equal(t, model.ApplicationPending, app.Status)
	assert.Equal(t, f.org.ID, app.PartnerOrgID)

	var stored model.Application
	require.NoError(t, f.db.Preload("Demographics").Preload("Devices").Preload("Connectivity").First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, "maria.santos@example.org", stored.Email)
	assert.Equal(t, "2000-05-01", stored.Birthdate)
	assert.Len(t, stored.Demographics, 2)
	assert.Len(t, stored.Devices, 1)
	assert.Len(t, stored.Connectivity, 2)

	var audits int64
	require.NoError(t, f.db.Model(&model.AuditLog{}).Where("action = ? AND entity_id = ?", model.ActionApplicationSubmitted, app.ID.String()).Count(&audits).Error)
	assert.Equal(t, int64(1), audits)

	// A verified draft is gone; the same code cannot create a second application.
	_, err = f.svc.VerifyOTP(ctx, d.ID, code)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	var apps int64
	require.NoError(t, f.db.Model(&model.Application{}).Count(&apps).Error)
	assert.Equal(t, int64(1), apps)

	// A second draft for the same email is refused at the first step.
	next, err := f.svc.Start(ctx)
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, next.ID, validSteps(f.org.ID, "maria.santos@example.org")[0])
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)
}

func TestIntake_OTPAttemptsExhausted(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "applicant@example.org")
	var code string
	f.expectOTP("applicant@example.org", &code)
	_, err := f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}

	_, err = f.svc.VerifyOTP(ctx, d.ID, wrong)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)
	assert.Contains(t, err.Error(), "2 attempt(s) remaining")

	_, err = f.svc.VerifyOTP(ctx, d.ID, wrong)
	assert.ErrorIs(t, err, domain.ErrOTPInvalid)

	_, err = f.svc.VerifyOTP(ctx, d.ID, wrong)
	assert.ErrorIs(t, err, domain.ErrTooManyAttempts)

	// The draft is discarded, so even the right code no longer works.
	_, err = f.svc.VerifyOTP(ctx, d.ID, code)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	var apps int64
	require.NoError(t, f.db.Model(&model.Application{}).Count(&apps).Error)
	assert.Zero(t, apps)
}

func TestIntake_OTPExpiryAndResend(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "late@example.org")

	_, err := f.svc.VerifyOTP(ctx, d.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrOTPNotIssued)

	var first string
	f.expectOTP("late@example.org", &first)
	_, err = f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)

	f.advance(11 * time.Minute)
	_, err = f.svc.VerifyOTP(ctx, d.ID, first)
	assert.ErrorIs(t, err, domain.ErrOTPExpired)

	var second string
	f.expectOTP("late@example.org", &second)
	_, err = f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)

	f.notifier.EXPECT().Send(gomock.Any(), "late@example.org", email.KindApplicationReceived, gomock.Any()).Return(false)

	// A failed confirmation email does not undo the submission.
	app, err := f.svc.VerifyOTP(ctx, d.ID, second)
	require.NoError(t, err)
	assert.Equal(t, "late@example.org", app.Email)
}

func TestIntake_NotificationFailureKeepsNoCode(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "nomail@example.org")
	f.notifier.EXPECT().Send(gomock.Any(), "nomail@example.org", email.KindOTPCode, gomock.Any()).Return(false)

	_, err := f.svc.SubmitForReview(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrNotificationFailed)

	got, err := f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.AwaitingOTP)

	_, err = f.svc.VerifyOTP(ctx, d.ID, "123456")
	assert.ErrorIs(t, err, domain.ErrOTPNotIssued)
}

func TestIntake_DraftExpiry(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d, err := f.svc.Start(ctx)
	require.NoError(t, err)

	f.advance(73 * time.Hour)
	_, err = f.svc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrDraftExpired)

	_, err = f.svc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)

	_, err = f.svc.Get(ctx, "")
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestIntake_OrganizationStepRules(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	closed := dbtest.Organization(t, f.db, func(o *model.PartnerOrganization) { o.IsAccepting = false })

	scholarApp := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, scholarApp)
	moa := dbtest.Moa(t, f.db, approved, model.MoaApproved)
	dbtest.Scholar(t, f.db, scholarApp, moa.ID, true)

	pending := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)
	rejected := dbtest.Application(t, f.db, f.org.ID, model.ApplicationRejected)

	tests := []struct {
		name    string
		input   *OrganizationStep
		wantErr error
	}{
		{"missing consent", &OrganizationStep{PartnerOrgID: f.org.ID.String(), Email: "a@example.org"}, domain.ErrInvalidInput},
		{"malformed email", &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: "not-an-email"}, domain.ErrInvalidInput},
		{"unknown organization", &OrganizationStep{PartnerOrgID: uuid.NewString(), PrivacyConsent: true, Email: "a@example.org"}, domain.ErrOrganizationNotFound},
		{"organization not accepting", &OrganizationStep{PartnerOrgID: closed.ID.String(), PrivacyConsent: true, Email: "a@example.org"}, domain.ErrOrganizationNotAccepting},
		{"active scholar", &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: scholarApp.Email}, domain.ErrAlreadyScholar},
		{"pending application", &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: pending.Email}, domain.ErrDuplicateApplication},
		{"rejected applicant may reapply", &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: rejected.Email}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.svc.Start(ctx)
			require.NoError(t, err)

			got, err := f.svc.Next(ctx, d.ID, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StepBasicInfo, got.Step)
		})
	}
}

func TestIntake_ValidationErrorsNameFields(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d, err := f.svc.Start(ctx)
	require.NoError(t, err)
	d, err = f.svc.Next(ctx, d.ID, validSteps(f.org.ID, "fields@example.org")[0])
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, d.ID, &BasicInfoStep{Gender: "UNKNOWN", Birthdate: "05/01/2000"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "first_name")
	assert.Contains(t, verr.Fields, "last_name")
	assert.Contains(t, verr.Fields, "gender")
	assert.Contains(t, verr.Fields, "birthdate")

	got, err := f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, StepBasicInfo, got.Step)
}

func TestIntake_MinimumAge(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)
	f.clock = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		birthdate string
		wantErr   error
	}{
		{"2010-10-15", nil},
		{"2010-10-16", domain.ErrUnderage},
		{"2015-01-01", domain.ErrUnderage},
		{"2030-01-01", domain.ErrInvalidInput},
		{"1850-01-01", domain.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.birthdate, func(t *testing.T) {
			d, err := f.svc.Start(ctx)
			require.NoError(t, err)
			_, err = f.svc.Next(ctx, d.ID, &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: uuid.NewString() + "@example.org"})
			require.NoError(t, err)

			_, err = f.svc.Next(ctx, d.ID, &BasicInfoStep{FirstName: "A", LastName: "B", Gender: "OTHER", Birthdate: tt.birthdate})
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestIntake_Navigation(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)
	steps := validSteps(f.org.ID, "nav@example.org")

	d, err := f.svc.Start(ctx)
	require.NoError(t, err)

	_, err = f.svc.Next(ctx, d.ID, steps[1])
	assert.ErrorIs(t, err, domain.ErrStepOutOfOrder)

	d, err = f.svc.Next(ctx, d.ID, steps[0])
	require.NoError(t, err)

	// Going back keeps unvalidated partial data and cannot change the email.
	partial := &BasicInfoStep{FirstName: "Half"}
	d, err = f.svc.Previous(ctx, d.ID, partial)
	require.NoError(t, err)
	assert.Equal(t, StepOrganization, d.Step)
	assert.Equal(t, "Half", d.BasicInfo.FirstName)

	d, err = f.svc.Previous(ctx, d.ID, &OrganizationStep{PartnerOrgID: f.org.ID.String(), Email: "other@example.org"})
	require.NoError(t, err)
	assert.Equal(t, StepOrganization, d.Step)
	assert.Equal(t, "nav@example.org", d.Organization.Email)

	_, err = f.svc.Edit(ctx, d.ID, steps[2])
	assert.ErrorIs(t, err, domain.ErrStepOutOfOrder)

	_, err = f.svc.SubmitForReview(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrStepOutOfOrder)

	require.NoError(t, f.svc.Restart(ctx, d.ID))
	_, err = f.svc.Get(ctx, d.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestIntake_EditFromReview(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "edit@example.org")

	var code string
	f.expectOTP("edit@example.org", &code)
	_, err := f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)

	_, err = f.svc.Edit(ctx, d.ID, &OrganizationStep{PartnerOrgID: f.org.ID.String(), PrivacyConsent: true, Email: "changed@example.org"})
	assert.ErrorIs(t, err, domain.ErrEmailLocked)

	d, err = f.svc.Edit(ctx, d.ID, &GeographicStep{Country: "Canada", StateRegionProvince: "Ontario", City: "Toronto", PostalCode: "M5V"})
	require.NoError(t, err)
	assert.Equal(t, "Toronto", d.Geographic.City)
	assert.False(t, d.AwaitingOTP, "editing voids the issued code")

	_, err = f.svc.VerifyOTP(ctx, d.ID, code)
	assert.ErrorIs(t, err, domain.ErrOTPNotIssued)

	_, err = f.svc.Edit(ctx, d.ID, &InterestStep{WeeklyTimeCommitment: "forever"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.svc.Next(ctx, d.ID, &GeographicStep{})
	assert.ErrorIs(t, err, domain.ErrStepOutOfOrder)
}

func TestIntake_EligibilityRecheckedOnVerify(t *testing.T) {
	ctx := context.Background()
	f := newIntakeFixture(t)

	d := f.completeDraft(t, "race@example.org")
	var code string
	f.expectOTP("race@example.org", &code)
	_, err := f.svc.SubmitForReview(ctx, d.ID)
	require.NoError(t, err)

	// Another draft for the same email lands first.
	require.NoError(t, f.db.Create(&model.Application{
		PartnerOrgID:          f.org.ID,
		Email:                 "race@example.org",
		FirstName:             "Other",
		LastName:              "Draft",
		Birthdate:             "1999-01-01",
		Gender:                model.GenderOther,
		Country:               "Philippines",
		StateRegionProvince:   "Cebu",
		City:                  "Cebu City",
		PostalCode:            "6000",
		EducationStatus:       model.EducationGapYear,
		InstitutionCountry:    "Philippines",
		InstitutionName:       "USC",
		ProgrammingExperience: model.ExperienceNone,
		DataScienceExperience: model.ExperienceNone,
		WeeklyTimeCommitment:  "1-2",
		ScholarshipReason:     "reason",
		CareerGoals:           "goals",
		Status:                model.ApplicationPending,
	}).Error)

	_, err = f.svc.VerifyOTP(ctx, d.ID, code)
	assert.ErrorIs(t, err, domain.ErrDuplicateApplication)

	got, err := f.svc.Get(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, got.AwaitingOTP)
}

func TestParseStep(t *testing.T) {
	for i, name := range stepNames {
		byName, err := ParseStep(name)
		require.NoError(t, err)
		assert.Equal(t, Step(i), byName)

		byIndex, err := ParseStep(strconv.Itoa(i))
		require.NoError(t, err)
		assert.Equal(t, Step(i), byIndex)
	}

	_, err := ParseStep("payment")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, "step(9)", Step(9).String())

	_, err = NewStepInput(StepReview)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
