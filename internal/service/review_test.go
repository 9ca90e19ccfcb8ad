package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

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
	"github.com/datara/scholarhub/internal/service"
)

type reviewFixture struct {
	svc      *service.ReviewService
	db       *gorm.DB
	notifier *mocks.MockNotifier
	org      *model.PartnerOrganization
	actor    service.Actor
}

func newReviewFixture(t *testing.T) *reviewFixture {
	t.Helper()

	db, store := newStore(t)
	notifier := mocks.NewMockNotifier(gomock.NewController(t))
	org := dbtest.Organization(t, db)

	return &reviewFixture{
		svc:      service.NewReviewService(store, notifier, "https://scholars.example.org/"),
		db:       db,
		notifier: notifier,
		org:      org,
		actor:    actorFor(org),
	}
}

func validMoA() service.MoAInput {
	return service.MoAInput{
		DigitalSignature:  "Maria Santos",
		AgreedTerms:       true,
		AgreedCommitment:  true,
		AgreedConduct:     true,
		AgreedDataPrivacy: true,
	}
}

func TestApproveApplication(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)

	var sent mailer.ApplicationApprovedData
	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindApplicationApproved, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ email.Kind, args any) bool {
			sent = args.(mailer.ApplicationApprovedData)
			return true
		})

	result, err := f.svc.ApproveApplication(ctx, f.actor, app.ID, "  strong candidate ")
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)
	assert.Empty(t, result.Warnings)
	assert.True(t, service.IsApprovedApplicantID(result.ApprovedApplicant.ID))
	assert.Equal(t, app.ID, result.ApprovedApplicant.ApplicationID)

	assert.Equal(t, result.ApprovedApplicant.ID, sent.ApprovedApplicantID)
	assert.Equal(t, app.Birthdate, sent.Birthdate)
	assert.Equal(t, f.org.DisplayName, sent.OrganizationName)
	assert.Equal(t, "https://scholars.example.org/scholar-login", sent.LoginURL)

	var stored model.Application
	require.NoError(t, f.db.First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, model.ApplicationApproved, stored.Status)

	var review model.ApplicationReview
	require.NoError(t, f.db.First(&review, "application_id = ?", app.ID).Error)
	assert.Equal(t, model.ReviewApproved, review.Action)
	assert.Equal(t, "strong candidate", review.ActionReason)
	assert.Equal(t, f.actor.AdminID, review.AdminID)

	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ? AND entity_id = ?", model.ActionApplicationApproved, app.ID.String()))

	t.Run("approving again is a no-op", func(t *testing.T) {
		again, err := f.svc.ApproveApplication(ctx, f.actor, app.ID, "")
		require.NoError(t, err)
		assert.True(t, again.AlreadyApproved)
		assert.Equal(t, result.ApprovedApplicant.ID, again.ApprovedApplicant.ID)

		assert.Equal(t, int64(1), count(t, f.db, &model.ApprovedApplicant{}, ""))
		assert.Equal(t, int64(1), count(t, f.db, &model.ApplicationReview{}, ""))
	})

	t.Run("approved cannot be rejected", func(t *testing.T) {
		err := f.svc.RejectApplication(ctx, f.actor, app.ID, "changed my mind")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestApproveApplication_RepairsMissingApprovedApplicant(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)

	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindApplicationApproved, gomock.Any()).Return(true)

	result, err := f.svc.ApproveApplication(ctx, f.actor, app.ID, "")
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)
	assert.True(t, service.IsApprovedApplicantID(result.ApprovedApplicant.ID))
}

func TestApproveApplication_NotificationFailureIsAWarning(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)

	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindApplicationApproved, gomock.Any()).Return(false)

	result, err := f.svc.ApproveApplication(ctx, f.actor, app.ID, "")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Warnings)

	var stored model.Application
	require.NoError(t, f.db.First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, model.ApplicationApproved, stored.Status)
}

func TestRejectApplication(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)

	err := f.svc.RejectApplication(ctx, f.actor, app.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	require.NoError(t, f.svc.RejectApplication(ctx, f.actor, app.ID, "incomplete answers"))

	var stored model.Application
	require.NoError(t, f.db.First(&stored, "id = ?", app.ID).Error)
	assert.Equal(t, model.ApplicationRejected, stored.Status)

	var review model.ApplicationReview
	require.NoError(t, f.db.First(&review, "application_id = ?", app.ID).Error)
	assert.Equal(t, model.ReviewRejected, review.Action)
	assert.Equal(t, "incomplete answers", review.ActionReason)
	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionApplicationRejected))

	err = f.svc.RejectApplication(ctx, f.actor, app.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.ApproveApplication(ctx, f.actor, app.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Zero(t, count(t, f.db, &model.ApprovedApplicant{}, ""))
}

func TestReview_OtherOrganizationReadsAsNotFound(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	other := dbtest.Organization(t, f.db)
	foreign := dbtest.Application(t, f.db, other.ID, model.ApplicationPending)
	foreignApproved := dbtest.Application(t, f.db, other.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, foreignApproved)
	moa := dbtest.Moa(t, f.db, approved, model.MoaSubmitted)
	scholarApp := dbtest.Application(t, f.db, other.ID, model.ApplicationApproved)
	scholarApproved := dbtest.ApprovedApplicant(t, f.db, scholarApp)
	scholarMoa := dbtest.Moa(t, f.db, scholarApproved, model.MoaApproved)
	scholar := dbtest.Scholar(t, f.db, scholarApp, scholarMoa.ID, true)

	_, err := f.svc.ApproveApplication(ctx, f.actor, foreign.ID, "")
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	err = f.svc.RejectApplication(ctx, f.actor, foreign.ID, "no")
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	_, err = f.svc.GetApplication(ctx, f.actor, foreign.ID)
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	_, err = f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	assert.ErrorIs(t, err, domain.ErrMoANotFound)

	_, err = f.svc.RequestMoARevision(ctx, f.actor, moa.ID, "fix it")
	assert.ErrorIs(t, err, domain.ErrMoANotFound)

	_, err = f.svc.SetScholarActive(ctx, f.actor, scholar.ID, false, "")
	assert.ErrorIs(t, err, domain.ErrScholarNotFound)

	_, err = f.svc.ApproveApplication(ctx, f.actor, uuid.New(), "")
	assert.ErrorIs(t, err, domain.ErrApplicationNotFound)

	var stored model.Application
	require.NoError(t, f.db.First(&stored, "id = ?", foreign.ID).Error)
	assert.Equal(t, model.ApplicationPending, stored.Status)
}

func TestMoALifecycle(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, app)

	t.Run("input is validated", func(t *testing.T) {
		in := validMoA()
		in.DigitalSignature = "   "
		in.AgreedConduct = false
		_, err := f.svc.SubmitMoA(ctx, approved.ID, in)

		var verr *domain.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "digital_signature")
		assert.Contains(t, verr.Fields, "agreed_conduct")
	})

	t.Run("unknown approved applicant", func(t *testing.T) {
		_, err := f.svc.SubmitMoA(ctx, "APP00000000", validMoA())
		assert.ErrorIs(t, err, domain.ErrApprovedApplicantNotFound)
	})

	moa, err := f.svc.SubmitMoA(ctx, approved.ID, validMoA())
	require.NoError(t, err)
	assert.Equal(t, model.MoaSubmitted, moa.Status)

	_, err = f.svc.SubmitMoA(ctx, approved.ID, validMoA())
	assert.ErrorIs(t, err, domain.ErrMoAAlreadySubmitted)

	// Revision sends it back to the applicant.
	_, err = f.svc.RequestMoARevision(ctx, f.actor, moa.ID, " ")
	assert.ErrorIs(t, err, domain.ErrReasonRequired)

	var revision mailer.MoARevisionRequestedData
	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindMoARevisionRequested, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ email.Kind, args any) bool {
			revision = args.(mailer.MoARevisionRequestedData)
			return true
		})
	rev, err := f.svc.RequestMoARevision(ctx, f.actor, moa.ID, "signature must be your full legal name")
	require.NoError(t, err)
	assert.Equal(t, model.MoaPending, rev.Moa.Status)
	assert.Empty(t, rev.Warnings)
	assert.Equal(t, "signature must be your full legal name", revision.Reason)
	assert.Equal(t, approved.ID, revision.ApprovedApplicantID)

	_, err = f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = f.svc.RequestMoARevision(ctx, f.actor, moa.ID, "again")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	// Resubmission updates the same row.
	in := validMoA()
	in.DigitalSignature = "Maria Clara Santos"
	resubmitted, err := f.svc.SubmitMoA(ctx, approved.ID, in)
	require.NoError(t, err)
	assert.Equal(t, moa.ID, resubmitted.ID)
	assert.Equal(t, int64(1), count(t, f.db, &model.MoaSubmission{}, ""))

	var stored model.MoaSubmission
	require.NoError(t, f.db.First(&stored, "id = ?", moa.ID).Error)
	assert.Equal(t, model.MoaSubmitted, stored.Status)
	assert.Equal(t, "Maria Clara Santos", stored.DigitalSignature)

	// Approval creates the scholar.
	var activated mailer.ScholarActivatedData
	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindScholarActivated, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, _ email.Kind, args any) bool {
			activated = args.(mailer.ScholarActivatedData)
			return true
		})
	result, err := f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)
	assert.True(t, service.IsScholarID(result.Scholar.ID))
	assert.True(t, result.Scholar.IsActive)
	assert.Equal(t, f.org.ID, result.Scholar.PartnerOrgID)
	assert.Equal(t, result.Scholar.ID, activated.ScholarID)

	again, err := f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	require.NoError(t, err)
	assert.True(t, again.AlreadyApproved)
	assert.Equal(t, result.Scholar.ID, again.Scholar.ID)
	assert.Equal(t, int64(1), count(t, f.db, &model.Scholar{}, ""))

	_, err = f.svc.SubmitMoA(ctx, approved.ID, validMoA())
	require.ErrorIs(t, err, domain.ErrAlreadyScholar)

	assert.Equal(t, int64(2), count(t, f.db, &model.MoaReview{}, "moa_id = ?", moa.ID))
	assert.Equal(t, int64(2), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionMoASubmitted))
	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionMoAApproved))
	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionMoARevision))
}

func TestApproveMoA_RepairsMissingScholar(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, app)
	moa := dbtest.Moa(t, f.db, approved, model.MoaApproved)

	f.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindScholarActivated, gomock.Any()).Return(false)

	result, err := f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	require.NoError(t, err)
	assert.False(t, result.AlreadyApproved)
	assert.True(t, result.Scholar.IsActive)
	assert.NotEmpty(t, result.Warnings)
}

func TestApproveMoA_LosingARaceIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, app)
	moa := dbtest.Moa(t, f.db, approved, model.MoaSubmitted)
	winner := &model.Scholar{
		ID:            "SCH00000042",
		ApplicationID: app.ID,
		MoaID:         moa.ID,
		PartnerOrgID:  f.org.ID,
		IsActive:      true,
	}

	// Another reviewer commits the approval between our read and our update.
	raced := false
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:concurrent_moa_approval", func(db *gorm.DB) {
		if raced || db.Statement.Table != "moa_submissions" {
			return
		}
		raced = true
		other := db.Session(&gorm.Session{NewDB: true})
		_ = db.AddError(other.Exec("UPDATE moa_submissions SET status = ? WHERE id = ?", string(model.MoaApproved), moa.ID).Error)
		_ = db.AddError(other.Create(winner).Error)
	}))

	result, err := f.svc.ApproveMoA(ctx, f.actor, moa.ID)
	require.NoError(t, err)
	require.True(t, raced)
	assert.True(t, result.AlreadyApproved)
	assert.Equal(t, winner.ID, result.Scholar.ID)
	assert.Equal(t, int64(1), count(t, f.db, &model.Scholar{}, ""))
	assert.Equal(t, int64(0), count(t, f.db, &model.MoaReview{}, "moa_id = ?", moa.ID))
}

func TestSetScholarActive(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, app)
	moa := dbtest.Moa(t, f.db, approved, model.MoaApproved)
	scholar := dbtest.Scholar(t, f.db, app, moa.ID, true)

	result, err := f.svc.SetScholarActive(ctx, f.actor, scholar.ID, false, "left the program")
	require.NoError(t, err)
	assert.True(t, result.Changed)
	assert.False(t, result.Scholar.IsActive)

	again, err := f.svc.SetScholarActive(ctx, f.actor, scholar.ID, false, "")
	require.NoError(t, err)
	assert.False(t, again.Changed)

	result, err = f.svc.SetScholarActive(ctx, f.actor, scholar.ID, true, "returned")
	require.NoError(t, err)
	assert.True(t, result.Changed)

	var changes []model.ScholarStatusChange
	require.NoError(t, f.db.Order("changed_at ASC").Find(&changes, "scholar_id = ?", scholar.ID).Error)
	require.Len(t, changes, 2)
	assert.False(t, changes[0].IsActive)
	assert.Equal(t, "left the program", changes[0].Reason)
	assert.True(t, changes[1].IsActive)

	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionScholarDeactivated))
	assert.Equal(t, int64(1), count(t, f.db, &model.AuditLog{}, "action = ?", model.ActionScholarActivated))

	_, err = f.svc.SetScholarActive(ctx, f.actor, "SCH00000000", true, "")
	assert.ErrorIs(t, err, domain.ErrScholarNotFound)
}

func TestReview_ReadSide(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)

	pending := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)
	dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)
	dbtest.Application(t, f.db, f.org.ID, model.ApplicationRejected)
	approvedApp := dbtest.Application(t, f.db, f.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, f.db, approvedApp)
	moa := dbtest.Moa(t, f.db, approved, model.MoaApproved)
	dbtest.Scholar(t, f.db, approvedApp, moa.ID, true)

	other := dbtest.Organization(t, f.db)
	dbtest.Application(t, f.db, other.ID, model.ApplicationPending)

	m, err := f.svc.DashboardMetrics(ctx, f.actor)
	require.NoError(t, err)
	assert.Equal(t, &service.DashboardMetrics{
		TotalApplications:    4,
		PendingApplications:  2,
		ApprovedApplications: 1,
		RejectedApplications: 1,
		ActiveScholars:       1,
		MoASubmissions:       1,
	}, m)

	apps, total, err := f.svc.ListApplications(ctx, f.actor, model.ApplicationPending, "", repository.Page{Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, apps, 1)

	apps, total, err = f.svc.ListApplications(ctx, f.actor, "", pending.Email, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, apps, 1)
	assert.Equal(t, pending.ID, apps[0].ID)

	detail, err := f.svc.GetApplication(ctx, f.actor, pending.ID)
	require.NoError(t, err)
	assert.Len(t, detail.Demographics, 1)
	assert.Equal(t, f.org.DisplayName, detail.PartnerOrganization.DisplayName)

	active := true
	scholars, total, err := f.svc.ListScholars(ctx, f.actor, &active, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, scholars, 1)

	moas, total, err := f.svc.ListMoASubmissions(ctx, f.actor, model.MoaApproved, repository.Page{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, moas, 1)
	assert.Equal(t, approved.ID, moas[0].ApprovedApplicantID)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportApplicationsCSV(ctx, f.actor, "", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, "application_id", rows[0][0])
	assert.Equal(t, "status", rows[0][len(rows[0])-2])
	for _, row := range rows[1:] {
		assert.Len(t, row, len(rows[0]))
	}
}

func TestExportApplicationsCSV_QuotesFormulaCells(t *testing.T) {
	ctx := context.Background()
	f := newReviewFixture(t)
	app := dbtest.Application(t, f.db, f.org.ID, model.ApplicationPending)
	require.NoError(t, f.db.Model(app).Updates(map[string]interface{}{
		"first_name": `=HYPERLINK("https://evil.example","click")`,
		"last_name":  "@SUM(A1:A9)",
		"city":       "+63 Manila",
	}).Error)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportApplicationsCSV(ctx, f.actor, "", &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)

	cells := map[string]string{}
	for i, name := range rows[0] {
		cells[name] = rows[1][i]
	}
	assert.Equal(t, `'=HYPERLINK("https://evil.example","click")`, cells["first_name"])
	assert.Equal(t, "'@SUM(A1:A9)", cells["last_name"])
	assert.Equal(t, "'+63 Manila", cells["city"])
	assert.Equal(t, app.Email, cells["email"])
	assert.Equal(t, app.ID.String(), cells["application_id"])
}
