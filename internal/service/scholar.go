// internal/service/scholar.go
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
)

// MoA status as shown to an approved applicant.
const (
	MoAStatusNotSubmitted = "NOT_SUBMITTED"
	MoAStatusSubmitted    = "SUBMITTED"
	MoAStatusPending      = "PENDING"
	MoAStatusApproved     = "APPROVED"
)

const minCertificationYear = 1950

// PortalDashboard is the home view of the scholar portal. Scholars get
// counts of their records; approved applicants get their MoA status.
type PortalDashboard struct {
	Role               auth.Role          `json:"role"`
	SubjectID          string             `json:"subject_id"`
	OrganizationName   string             `json:"organization_name"`
	Application        *model.Application `json:"application"`
	Scholar            *model.Scholar     `json:"scholar,omitempty"`
	CertificationCount int64              `json:"certification_count"`
	JobCount           int64              `json:"job_count"`
	MoAStatus          string             `json:"moa_status,omitempty"`
	RevisionReason     string             `json:"revision_reason,omitempty"`
}

type ProfileInput struct {
	Country             string `json:"country" validate:"required,max=100"`
	StateRegionProvince string `json:"state_region_province" validate:"required,max=100"`
	City                string `json:"city" validate:"required,max=100"`
	PostalCode          string `json:"postal_code" validate:"required,max=20"`
	EducationStatus     string `json:"education_status" validate:"required,oneof=CURRENTLY_ENROLLED FRESH_GRADUATE GRADUATE GAP_YEAR"`
	InstitutionName     string `json:"institution_name" validate:"required,max=255"`
	InstitutionCountry  string `json:"institution_country" validate:"required,max=100"`
}

type CertificationInput struct {
	Name                string  `json:"name" validate:"required,max=255"`
	IssuingOrganization string  `json:"issuing_organization" validate:"required,max=255"`
	IssueMonth          int     `json:"issue_month" validate:"min=1,max=12"`
	IssueYear           int     `json:"issue_year" validate:"required"`
	ExpirationMonth     *int    `json:"expiration_month" validate:"omitempty,min=1,max=12"`
	ExpirationYear      *int    `json:"expiration_year"`
	CredentialID        *string `json:"credential_id" validate:"omitempty,max=255"`
	CredentialURL       *string `json:"credential_url" validate:"omitempty,url"`
}

type JobInput struct {
	JobTitle    string  `json:"job_title" validate:"required,max=255"`
	Company     string  `json:"company" validate:"required,max=255"`
	Testimonial *string `json:"testimonial" validate:"omitempty,max=2000"`
	IsPublished bool    `json:"is_published"`
}

type PortalService struct {
	store    repository.Store
	validate *validator.Validate
	now      func() time.Time
}

func NewPortalService(store repository.Store) *PortalService {
	return &PortalService{
		store:    store,
		validate: newValidator(),
		now:      time.Now,
	}
}

// Dashboard branches on role.
func (s *PortalService) Dashboard(ctx context.Context, role auth.Role, subjectID string) (*PortalDashboard, error) {
	switch role {
	case auth.RoleScholar:
		return s.scholarDashboard(ctx, subjectID)
	case auth.RoleApprovedApplicant:
		return s.applicantDashboard(ctx, subjectID)
	default:
		return nil, domain.ErrForbidden
	}
}

func (s *PortalService) scholarDashboard(ctx context.Context, scholarID string) (*PortalDashboard, error) {
	scholar, err := s.store.Scholars().FindByID(ctx, scholarID)
	if err != nil {
		return nil, err
	}
	certs, err := s.store.Certifications().CountByScholar(ctx, scholarID)
	if err != nil {
		return nil, err
	}
	jobs, err := s.store.Jobs().CountByScholar(ctx, scholarID)
	if err != nil {
		return nil, err
	}

	return &PortalDashboard{
		Role:               auth.RoleScholar,
		SubjectID:          scholar.ID,
		OrganizationName:   orgName(scholar.Application),
		Application:        scholar.Application,
		Scholar:            scholar,
		CertificationCount: certs,
		JobCount:           jobs,
		MoAStatus:          MoAStatusApproved,
	}, nil
}

func (s *PortalService) applicantDashboard(ctx context.Context, approvedApplicantID string) (*PortalDashboard, error) {
	approved, err := s.store.ApprovedApplicants().FindByID(ctx, approvedApplicantID)
	if err != nil {
		return nil, err
	}

	dash := &PortalDashboard{
		Role:             auth.RoleApprovedApplicant,
		SubjectID:        approved.ID,
		OrganizationName: orgName(approved.Application),
		Application:      approved.Application,
		MoAStatus:        MoAStatusNotSubmitted,
	}

	moa, err := s.store.MoaSubmissions().FindByApprovedApplicantID(ctx, approved.ID)
	if errors.Is(err, domain.ErrMoANotFound) {
		return dash, nil
	}
	if err != nil {
		return nil, err
	}
	dash.MoAStatus = string(moa.Status)

	if moa.Status == model.MoaPending {
		full, err := s.store.MoaSubmissions().FindByID(ctx, moa.ID)
		if err != nil {
			return nil, err
		}
		for i := len(full.Reviews) - 1; i >= 0; i-- {
			if full.Reviews[i].Action == model.ReviewRejected {
				dash.RevisionReason = full.Reviews[i].ActionReason
				break
			}
		}
	}
	return dash, nil
}

// UpdateProfile changes the location and education fields of the scholar's
// application. Identity fields are fixed.
func (s *PortalService) UpdateProfile(ctx context.Context, scholarID string, input ProfileInput) (*model.Application, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}

	scholar, err := s.activeScholar(ctx, scholarID)
	if err != nil {
		return nil, err
	}

	err = s.store.Applications().UpdateProfile(ctx, scholar.ApplicationID, repository.ProfileUpdate{
		Country:             strings.TrimSpace(input.Country),
		StateRegionProvince: strings.TrimSpace(input.StateRegionProvince),
		City:                strings.TrimSpace(input.City),
		PostalCode:          strings.TrimSpace(input.PostalCode),
		EducationStatus:     model.EducationStatus(input.EducationStatus),
		InstitutionName:     strings.TrimSpace(input.InstitutionName),
		InstitutionCountry:  strings.TrimSpace(input.InstitutionCountry),
	})
	if err != nil {
		return nil, err
	}
	return s.store.Applications().FindByID(ctx, scholar.ApplicationID)
}

func (s *PortalService) AddCertification(ctx context.Context, scholarID string, input CertificationInput) (*model.Certification, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}
	if err := s.checkCertificationDates(input); err != nil {
		return nil, err
	}
	if _, err := s.activeScholar(ctx, scholarID); err != nil {
		return nil, err
	}

	cert := &model.Certification{
		ScholarID:           scholarID,
		Name:                strings.TrimSpace(input.Name),
		IssuingOrganization: strings.TrimSpace(input.IssuingOrganization),
		IssueMonth:          input.IssueMonth,
		IssueYear:           input.IssueYear,
		ExpirationMonth:     input.ExpirationMonth,
		ExpirationYear:      input.ExpirationYear,
		CredentialID:        input.CredentialID,
		CredentialURL:       input.CredentialURL,
	}
	if err := s.store.Certifications().Create(ctx, cert); err != nil {
		return nil, err
	}
	return cert, nil
}

func (s *PortalService) checkCertificationDates(input CertificationInput) error {
	maxYear := s.now().Year() + 1
	if input.IssueYear < minCertificationYear || input.IssueYear > maxYear {
		return fieldError("issue_year", "is out of range")
	}

	if (input.ExpirationMonth == nil) != (input.ExpirationYear == nil) {
		return fieldError("expiration_year", "expiration month and year go together")
	}
	if input.ExpirationYear == nil {
		return nil
	}

	issued := input.IssueYear*12 + input.IssueMonth
	expires := *input.ExpirationYear*12 + *input.ExpirationMonth
	if expires <= issued {
		return fieldError("expiration_year", "must be after the issue date")
	}
	return nil
}

func (s *PortalService) ListCertifications(ctx context.Context, scholarID string) ([]*model.Certification, error) {
	return s.store.Certifications().ListByScholar(ctx, scholarID)
}

func (s *PortalService) DeleteCertification(ctx context.Context, scholarID string, id uuid.UUID) error {
	if _, err := s.activeScholar(ctx, scholarID); err != nil {
		return err
	}
	return s.store.Certifications().Delete(ctx, scholarID, id)
}

// activeScholar loads the scholar behind a write. Tokens outlive a
// deactivation, so the flag is checked on every change.
func (s *PortalService) activeScholar(ctx context.Context, scholarID string) (*model.Scholar, error) {
	scholar, err := s.store.Scholars().FindByID(ctx, scholarID)
	if err != nil {
		return nil, err
	}
	if !scholar.IsActive {
		return nil, domain.ErrForbidden
	}
	return scholar, nil
}

func (s *PortalService) ReportJob(ctx context.Context, scholarID string, input JobInput) (*model.Job, error) {
	if err := validateInput(s.validate, input); err != nil {
		return nil, err
	}
	if _, err := s.activeScholar(ctx, scholarID); err != nil {
		return nil, err
	}

	job := &model.Job{
		ScholarID:   scholarID,
		JobTitle:    strings.TrimSpace(input.JobTitle),
		Company:     strings.TrimSpace(input.Company),
		Testimonial: input.Testimonial,
		IsPublished: input.IsPublished,
	}
	if err := s.store.Jobs().Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *PortalService) ListJobs(ctx context.Context, scholarID string) ([]*model.Job, error) {
	return s.store.Jobs().ListByScholar(ctx, scholarID)
}
