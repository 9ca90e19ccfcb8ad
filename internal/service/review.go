// internal/service/review.go
package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/audit"
	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/email"
	"github.com/datara/scholarhub/internal/email/mailer"
	"github.com/datara/scholarhub/internal/metrics"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
)

// Actor is the admin performing a review. Every operation is limited to the
// admin's organization; records of other organizations read as not found.
type Actor struct {
	AdminID      uuid.UUID
	PartnerOrgID uuid.UUID
}

type ApprovalResult struct {
	ApprovedApplicant *model.ApprovedApplicant `json:"approved_applicant"`
	AlreadyApproved   bool                     `json:"already_approved"`
	Warnings          []string                 `json:"warnings,omitempty"`
}

type MoAApprovalResult struct {
	Scholar         *model.Scholar `json:"scholar"`
	AlreadyApproved bool           `json:"already_approved"`
	Warnings        []string       `json:"warnings,omitempty"`
}

type RevisionResult struct {
	Moa      *model.MoaSubmission `json:"moa"`
	Warnings []string             `json:"warnings,omitempty"`
}

type ScholarStatusResult struct {
	Scholar *model.Scholar `json:"scholar"`
	Changed bool           `json:"changed"`
}

type MoAInput struct {
	DigitalSignature  string `json:"digital_signature" validate:"required,max=255"`
	AgreedTerms       bool   `json:"agreed_terms" validate:"required"`
	AgreedCommitment  bool   `json:"agreed_commitment" validate:"required"`
	AgreedConduct     bool   `json:"agreed_conduct" validate:"required"`
	AgreedDataPrivacy bool   `json:"agreed_data_privacy" validate:"required"`
}

type DashboardMetrics struct {
	TotalApplications    int64 `json:"total_applications"`
	PendingApplications  int64 `json:"pending_applications"`
	ApprovedApplications int64 `json:"approved_applications"`
	RejectedApplications int64 `json:"rejected_applications"`
	ActiveScholars       int64 `json:"active_scholars"`
	MoASubmissions       int64 `json:"moa_submissions"`
}

const (
	warnNotificationFailed = "notification could not be sent"
	transitionApprove      = "application_approve"
	transitionReject       = "application_reject"
	transitionMoASubmit    = "moa_submit"
	transitionMoAApprove   = "moa_approve"
	transitionMoARevision  = "moa_revision"
	transitionScholar      = "scholar_status"
)

type ReviewService struct {
	store    repository.Store
	notifier email.Notifier
	baseURL  string
	validate *validator.Validate
}

func NewReviewService(store repository.Store, notifier email.Notifier, baseURL string) *ReviewService {
	return &ReviewService{
		store:    store,
		notifier: notifier,
		baseURL:  strings.TrimRight(baseURL, "/"),
		validate: newValidator(),
	}
}

func (s *ReviewService) loginURL() string {
	return s.baseURL + "/scholar-login"
}

func adminEntry(actor Actor, action, entityType, entityID string, details map[string]interface{}) audit.Entry {
	return audit.Entry{
		Action:     action,
		ActorType:  audit.ActorAdmin,
		ActorID:    actor.AdminID.String(),
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
}

func findScopedApplication(ctx context.Context, store repository.Store, actor Actor, id uuid.UUID) (*model.Application, error) {
	app, err := store.Applications().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.PartnerOrgID != actor.PartnerOrgID {
		return nil, domain.ErrApplicationNotFound
	}
	return app, nil
}

// ApproveApplication moves a PENDING application to APPROVED and creates its
// approved applicant. Approving an already approved application returns the
// existing approved applicant with AlreadyApproved set.
func (s *ReviewService) ApproveApplication(ctx context.Context, actor Actor, applicationID uuid.UUID, reason string) (*ApprovalResult, error) {
	result := &ApprovalResult{}
	var app *model.Application

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		app, err = findScopedApplication(ctx, tx, actor, applicationID)
		if err != nil {
			return err
		}

		changed, err := tx.Applications().TransitionStatus(ctx, app.ID, model.ApplicationPending, model.ApplicationApproved)
		if err != nil {
			return err
		}
		if !changed {
			current, err := tx.Applications().FindByID(ctx, app.ID)
			if err != nil {
				return err
			}
			if current.Status != model.ApplicationApproved {
				return domain.ErrInvalidTransition
			}

			existing, err := tx.ApprovedApplicants().FindByApplicationID(ctx, app.ID)
			if err == nil {
				result.ApprovedApplicant = existing
				result.AlreadyApproved = true
				return nil
			}
			if !errors.Is(err, domain.ErrApprovedApplicantNotFound) {
				return err
			}
			// Approved without an approved applicant row: fill the gap below.
		}

		approved, err := createApprovedApplicant(ctx, tx, app.ID)
		if err != nil {
			return err
		}
		result.ApprovedApplicant = approved

		if err := tx.Applications().CreateReview(ctx, &model.ApplicationReview{
			ApplicationID: app.ID,
			AdminID:       actor.AdminID,
			Action:        model.ReviewApproved,
			ActionReason:  strings.TrimSpace(reason),
		}); err != nil {
			return err
		}

		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, adminEntry(actor,
			model.ActionApplicationApproved, "application", app.ID.String(),
			map[string]interface{}{"approved_applicant_id": approved.ID}))
	})
	if result.AlreadyApproved {
		metrics.WorkflowTransitions.WithLabelValues(transitionApprove, metrics.ResultNoop).Inc()
	} else {
		metrics.Transition(transitionApprove, err)
	}
	if err != nil {
		return nil, err
	}
	if result.AlreadyApproved {
		return result, nil
	}

	sent := mailer.SendApplicationApproved(ctx, s.notifier, app.Email, mailer.ApplicationApprovedData{
		FirstName:           app.FirstName,
		OrganizationName:    orgName(app),
		ApprovedApplicantID: result.ApprovedApplicant.ID,
		Email:               app.Email,
		Birthdate:           app.Birthdate,
		LoginURL:            s.loginURL(),
	})
	if !sent {
		result.Warnings = append(result.Warnings, warnNotificationFailed)
	}
	return result, nil
}

func createApprovedApplicant(ctx context.Context, tx repository.Store, applicationID uuid.UUID) (*model.ApprovedApplicant, error) {
	approved := &model.ApprovedApplicant{ApplicationID: applicationID}
	_, err := allocateID(ctx, ApprovedApplicantPrefix, tx.ApprovedApplicants().ExistsID, func(id string) error {
		approved.ID = id
		// A savepoint keeps the outer transaction usable after a duplicate key.
		return tx.Transaction(ctx, func(sp repository.Store) error {
			return sp.ApprovedApplicants().Create(ctx, approved)
		})
	})
	if err != nil {
		return nil, err
	}
	return approved, nil
}

// RejectApplication moves a PENDING application to REJECTED. A reason is required.
func (s *ReviewService) RejectApplication(ctx context.Context, actor Actor, applicationID uuid.UUID, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.ErrReasonRequired
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		app, err := findScopedApplication(ctx, tx, actor, applicationID)
		if err != nil {
			return err
		}

		changed, err := tx.Applications().TransitionStatus(ctx, app.ID, model.ApplicationPending, model.ApplicationRejected)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrInvalidTransition
		}

		if err := tx.Applications().CreateReview(ctx, &model.ApplicationReview{
			ApplicationID: app.ID,
			AdminID:       actor.AdminID,
			Action:        model.ReviewRejected,
			ActionReason:  reason,
		}); err != nil {
			return err
		}

		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, adminEntry(actor,
			model.ActionApplicationRejected, "application", app.ID.String(),
			map[string]interface{}{"reason": reason}))
	})
	metrics.Transition(transitionReject, err)
	return err
}

// SubmitMoA records the approved applicant's signed agreement. A submission
// sent back for revision may be submitted again.
func (s *ReviewService) SubmitMoA(ctx context.Context, approvedApplicantID string, input MoAInput) (*model.MoaSubmission, error) {
	input.DigitalSignature = strings.TrimSpace(input.DigitalSignature)
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	moa := &model.MoaSubmission{
		ApprovedApplicantID: approvedApplicantID,
		DigitalSignature:    input.DigitalSignature,
		AgreedTerms:         input.AgreedTerms,
		AgreedCommitment:    input.AgreedCommitment,
		AgreedConduct:       input.AgreedConduct,
		AgreedDataPrivacy:   input.AgreedDataPrivacy,
		Status:              model.MoaSubmitted,
		SubmittedAt:         time.Now().UTC(),
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		approved, err := tx.ApprovedApplicants().FindByID(ctx, approvedApplicantID)
		if err != nil {
			return err
		}

		scholar, err := tx.Scholars().FindByApplicationID(ctx, approved.ApplicationID)
		if err == nil {
			return &domain.AlreadyScholarError{ScholarID: scholar.ID}
		}
		if !errors.Is(err, domain.ErrScholarNotFound) {
			return err
		}

		existing, err := tx.MoaSubmissions().FindByApprovedApplicantID(ctx, approvedApplicantID)
		switch {
		case errors.Is(err, domain.ErrMoANotFound):
			if err := tx.MoaSubmissions().Create(ctx, moa); err != nil {
				return err
			}
		case err != nil:
			return err
		case existing.Status == model.MoaPending:
			moa.ID = existing.ID
			ok, err := tx.MoaSubmissions().Resubmit(ctx, moa)
			if err != nil {
				return err
			}
			if !ok {
				return domain.ErrMoAAlreadySubmitted
			}
		default:
			return domain.ErrMoAAlreadySubmitted
		}

		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, audit.Entry{
			Action:     model.ActionMoASubmitted,
			ActorType:  audit.ActorApplicant,
			ActorID:    approvedApplicantID,
			EntityType: "moa_submission",
			EntityID:   moa.ID.String(),
		})
	})
	metrics.Transition(transitionMoASubmit, err)
	if err != nil {
		return nil, err
	}
	return moa, nil
}

func findScopedMoa(ctx context.Context, store repository.Store, actor Actor, id uuid.UUID) (*model.MoaSubmission, error) {
	moa, err := store.MoaSubmissions().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if moa.ApprovedApplicant == nil || moa.ApprovedApplicant.Application == nil ||
		moa.ApprovedApplicant.Application.PartnerOrgID != actor.PartnerOrgID {
		return nil, domain.ErrMoANotFound
	}
	return moa, nil
}

// ApproveMoA approves a SUBMITTED agreement and activates the scholar,
// creating the scholar record on first approval.
func (s *ReviewService) ApproveMoA(ctx context.Context, actor Actor, moaID uuid.UUID) (*MoAApprovalResult, error) {
	result := &MoAApprovalResult{}
	var app *model.Application

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		moa, err := findScopedMoa(ctx, tx, actor, moaID)
		if err != nil {
			return err
		}
		app = moa.ApprovedApplicant.Application

		changed, err := tx.MoaSubmissions().TransitionStatus(ctx, moa.ID, model.MoaSubmitted, model.MoaApproved)
		if err != nil {
			return err
		}

		existing, err := tx.Scholars().FindByApplicationID(ctx, app.ID)
		if err != nil && !errors.Is(err, domain.ErrScholarNotFound) {
			return err
		}

		if !changed {
			current, err := tx.MoaSubmissions().FindByID(ctx, moa.ID)
			if err != nil {
				return err
			}
			if current.Status != model.MoaApproved {
				return domain.ErrInvalidTransition
			}
			if existing != nil {
				result.Scholar = existing
				result.AlreadyApproved = true
				return nil
			}
			// Approved without a scholar row: create it below.
		}

		if existing != nil {
			if err := tx.Scholars().Activate(ctx, existing.ID, moa.ID); err != nil {
				return err
			}
			existing.IsActive = true
			existing.MoaID = moa.ID
			result.Scholar = existing
		} else {
			scholar, err := createScholar(ctx, tx, app, moa.ID)
			if err != nil {
				return err
			}
			result.Scholar = scholar
		}

		if err := tx.MoaSubmissions().CreateReview(ctx, &model.MoaReview{
			MoaID:   moa.ID,
			AdminID: actor.AdminID,
			Action:  model.ReviewApproved,
		}); err != nil {
			return err
		}

		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, adminEntry(actor,
			model.ActionMoAApproved, "moa_submission", moa.ID.String(),
			map[string]interface{}{"scholar_id": result.Scholar.ID}))
	})
	if result.AlreadyApproved {
		metrics.WorkflowTransitions.WithLabelValues(transitionMoAApprove, metrics.ResultNoop).Inc()
	} else {
		metrics.Transition(transitionMoAApprove, err)
	}
	if err != nil {
		return nil, err
	}
	if result.AlreadyApproved {
		return result, nil
	}

	sent := mailer.SendScholarActivated(ctx, s.notifier, app.Email, mailer.ScholarActivatedData{
		FirstName:        app.FirstName,
		OrganizationName: orgName(app),
		ScholarID:        result.Scholar.ID,
		LoginURL:         s.loginURL(),
	})
	if !sent {
		result.Warnings = append(result.Warnings, warnNotificationFailed)
	}
	return result, nil
}

func createScholar(ctx context.Context, tx repository.Store, app *model.Application, moaID uuid.UUID) (*model.Scholar, error) {
	scholar := &model.Scholar{
		ApplicationID: app.ID,
		MoaID:         moaID,
		PartnerOrgID:  app.PartnerOrgID,
		IsActive:      true,
	}
	_, err := allocateID(ctx, ScholarPrefix, tx.Scholars().ExistsID, func(id string) error {
		scholar.ID = id
		return tx.Transaction(ctx, func(sp repository.Store) error {
			return sp.Scholars().Create(ctx, scholar)
		})
	})
	if err != nil {
		return nil, err
	}
	return scholar, nil
}

// RequestMoARevision sends a SUBMITTED agreement back to the applicant.
func (s *ReviewService) RequestMoARevision(ctx context.Context, actor Actor, moaID uuid.UUID, reason string) (*RevisionResult, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, domain.ErrReasonRequired
	}

	var moa *model.MoaSubmission
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		moa, err = findScopedMoa(ctx, tx, actor, moaID)
		if err != nil {
			return err
		}

		changed, err := tx.MoaSubmissions().TransitionStatus(ctx, moa.ID, model.MoaSubmitted, model.MoaPending)
		if err != nil {
			return err
		}
		if !changed {
			return domain.ErrInvalidTransition
		}
		moa.Status = model.MoaPending

		if err := tx.MoaSubmissions().CreateReview(ctx, &model.MoaReview{
			MoaID:        moa.ID,
			AdminID:      actor.AdminID,
			Action:       model.ReviewRejected,
			ActionReason: reason,
		}); err != nil {
			return err
		}

		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, adminEntry(actor,
			model.ActionMoARevision, "moa_submission", moa.ID.String(),
			map[string]interface{}{"reason": reason}))
	})
	metrics.Transition(transitionMoARevision, err)
	if err != nil {
		return nil, err
	}

	result := &RevisionResult{Moa: moa}
	app := moa.ApprovedApplicant.Application
	sent := mailer.SendMoARevisionRequested(ctx, s.notifier, app.Email, mailer.MoARevisionRequestedData{
		FirstName:           app.FirstName,
		OrganizationName:    orgName(app),
		Reason:              reason,
		ApprovedApplicantID: moa.ApprovedApplicantID,
		LoginURL:            s.loginURL(),
	})
	if !sent {
		result.Warnings = append(result.Warnings, warnNotificationFailed)
	}
	return result, nil
}

// SetScholarActive activates or deactivates a scholar. Setting the current
// value again changes nothing and reports Changed=false.
func (s *ReviewService) SetScholarActive(ctx context.Context, actor Actor, scholarID string, active bool, reason string) (*ScholarStatusResult, error) {
	reason = strings.TrimSpace(reason)
	result := &ScholarStatusResult{}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		scholar, err := tx.Scholars().FindByID(ctx, scholarID)
		if err != nil {
			return err
		}
		if scholar.PartnerOrgID != actor.PartnerOrgID {
			return domain.ErrScholarNotFound
		}
		result.Scholar = scholar

		changed, err := tx.Scholars().SetActive(ctx, scholar.ID, active)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		result.Changed = true
		scholar.IsActive = active

		if err := tx.Scholars().CreateStatusChange(ctx, &model.ScholarStatusChange{
			ScholarID: scholar.ID,
			AdminID:   actor.AdminID,
			IsActive:  active,
			Reason:    reason,
		}); err != nil {
			return err
		}

		action := model.ActionScholarDeactivated
		if active {
			action = model.ActionScholarActivated
		}
		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, adminEntry(actor,
			action, "scholar", scholar.ID, map[string]interface{}{"reason": reason}))
	})
	switch {
	case err == nil && !result.Changed:
		metrics.WorkflowTransitions.WithLabelValues(transitionScholar, metrics.ResultNoop).Inc()
	default:
		metrics.Transition(transitionScholar, err)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Scholar status updated",
		"scholar_id", scholarID, "active", active, "changed", result.Changed)
	return result, nil
}

// ListApplications returns one page of the organization's applications.
func (s *ReviewService) ListApplications(ctx context.Context, actor Actor, status model.ApplicationStatus, search string, page repository.Page) ([]*model.Application, int64, error) {
	return s.store.Applications().List(ctx, repository.ApplicationFilter{
		PartnerOrgID: actor.PartnerOrgID,
		Status:       status,
		Search:       search,
		Page:         page,
	})
}

// GetApplication returns the application with its tags and review history.
func (s *ReviewService) GetApplication(ctx context.Context, actor Actor, id uuid.UUID) (*model.Application, error) {
	app, err := s.store.Applications().FindWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.PartnerOrgID != actor.PartnerOrgID {
		return nil, domain.ErrApplicationNotFound
	}
	return app, nil
}

func (s *ReviewService) ListScholars(ctx context.Context, actor Actor, active *bool, page repository.Page) ([]*model.Scholar, int64, error) {
	return s.store.Scholars().List(ctx, repository.ScholarFilter{
		PartnerOrgID: actor.PartnerOrgID,
		Active:       active,
		Page:         page,
	})
}

func (s *ReviewService) ListMoASubmissions(ctx context.Context, actor Actor, status model.MoaStatus, page repository.Page) ([]*model.MoaSubmission, int64, error) {
	return s.store.MoaSubmissions().List(ctx, repository.MoaFilter{
		PartnerOrgID: actor.PartnerOrgID,
		Status:       status,
		Page:         page,
	})
}

func (s *ReviewService) DashboardMetrics(ctx context.Context, actor Actor) (*DashboardMetrics, error) {
	counts, err := s.store.Applications().CountByStatus(ctx, actor.PartnerOrgID)
	if err != nil {
		return nil, err
	}
	active, err := s.store.Scholars().CountActive(ctx, actor.PartnerOrgID)
	if err != nil {
		return nil, err
	}
	moas, err := s.store.MoaSubmissions().CountByOrg(ctx, actor.PartnerOrgID)
	if err != nil {
		return nil, err
	}

	m := &DashboardMetrics{
		PendingApplications:  counts[model.ApplicationPending],
		ApprovedApplications: counts[model.ApplicationApproved],
		RejectedApplications: counts[model.ApplicationRejected],
		ActiveScholars:       active,
		MoASubmissions:       moas,
	}
	for _, n := range counts {
		m.TotalApplications += n
	}
	return m, nil
}

var csvHeader = []string{
	"application_id", "email", "first_name", "middle_name", "last_name", "birthdate", "gender",
	"country", "state_region_province", "city", "postal_code",
	"education_status", "institution_country", "institution_name",
	"programming_experience", "data_science_experience", "weekly_time_commitment",
	"status", "applied_at",
}

const exportPageSize = 500

// ExportApplicationsCSV streams every matching application of the
// organization to w as CSV.
func (s *ReviewService) ExportApplicationsCSV(ctx context.Context, actor Actor, status model.ApplicationStatus, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for offset := 0; ; offset += exportPageSize {
		apps, total, err := s.ListApplications(ctx, actor, status, "", repository.Page{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		for _, a := range apps {
			record := []string{
				a.ID.String(), a.Email, a.FirstName, a.MiddleName, a.LastName, a.Birthdate, string(a.Gender),
				a.Country, a.StateRegionProvince, a.City, a.PostalCode,
				string(a.EducationStatus), a.InstitutionCountry, a.InstitutionName,
				string(a.ProgrammingExperience), string(a.DataScienceExperience), a.WeeklyTimeCommitment,
				string(a.Status), a.AppliedAt.UTC().Format(time.RFC3339),
			}
			for i := range record {
				record[i] = spreadsheetSafe(record[i])
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("writing csv row: %w", err)
			}
		}
		if len(apps) == 0 || int64(offset+len(apps)) >= total {
			break
		}
	}

	cw.Flush()
	return cw.Error()
}

// spreadsheetSafe quotes cells that spreadsheet programs would evaluate as
// formulas.
func spreadsheetSafe(cell string) string {
	if cell != "" && strings.ContainsRune("=+-@\t\r", rune(cell[0])) {
		return "'" + cell
	}
	return cell
}

func orgName(app *model.Application) string {
	if app.PartnerOrganization != nil {
		return app.PartnerOrganization.DisplayName
	}
	return ""
}
