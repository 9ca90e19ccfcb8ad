// internal/service/intake.go
package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
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
	"github.com/datara/scholarhub/internal/session"
)

// Step is a position in the application wizard.
type Step int

const (
	StepOrganization Step = iota
	StepBasicInfo
	StepGeographic
	StepEducation
	StepInterest
	StepDemographics
	StepReview
)

var stepNames = [...]string{
	"organization",
	"basic_info",
	"geographic",
	"education",
	"interest",
	"demographics",
	"review",
}

func (s Step) String() string {
	if s < StepOrganization || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep accepts either the step name or its index.
func ParseStep(raw string) (Step, error) {
	for i, name := range stepNames {
		if raw == name || raw == fmt.Sprint(i) {
			return Step(i), nil
		}
	}
	return 0, fieldError("step", "unknown step")
}

const (
	draftKeyPrefix = "draft:"
	// Expired drafts stay readable this long so callers see ErrDraftExpired
	// instead of ErrDraftNotFound.
	draftGrace = 24 * time.Hour
	otpDigits  = 6
)

type OrganizationStep struct {
	PartnerOrgID   string `json:"partner_org_id" validate:"required,uuid"`
	PrivacyConsent bool   `json:"privacy_consent" validate:"required"`
	Email          string `json:"email" validate:"required,email,max=255"`
}

type BasicInfoStep struct {
	FirstName  string `json:"first_name" validate:"required,max=100"`
	MiddleName string `json:"middle_name" validate:"omitempty,max=100"`
	LastName   string `json:"last_name" validate:"required,max=100"`
	Gender     string `json:"gender" validate:"required,oneof=MALE FEMALE OTHER"`
	Birthdate  string `json:"birthdate" validate:"required,datetime=2006-01-02"`
}

type GeographicStep struct {
	Country             string `json:"country" validate:"required,max=100"`
	StateRegionProvince string `json:"state_region_province" validate:"required,max=100"`
	City                string `json:"city" validate:"required,max=100"`
	PostalCode          string `json:"postal_code" validate:"required,max=20"`
}

type EducationStep struct {
	EducationStatus    string `json:"education_status" validate:"required,oneof=CURRENTLY_ENROLLED FRESH_GRADUATE GRADUATE GAP_YEAR"`
	InstitutionCountry string `json:"institution_country" validate:"required,max=100"`
	InstitutionName    string `json:"institution_name" validate:"required,max=255"`
}

type InterestStep struct {
	ProgrammingExperience string `json:"programming_experience" validate:"required,oneof=NONE BEGINNER BASIC INTERMEDIATE ADVANCED"`
	DataScienceExperience string `json:"data_science_experience" validate:"required,oneof=NONE BEGINNER BASIC INTERMEDIATE ADVANCED"`
	WeeklyTimeCommitment  string `json:"weekly_time_commitment" validate:"required,oneof=1-2 3-5 6-10 11-15 16+"`
	ScholarshipReason     string `json:"scholarship_reason" validate:"required,max=1000"`
	CareerGoals           string `json:"career_goals" validate:"required,max=500"`
}

type DemographicsStep struct {
	Demographics []string `json:"demographics" validate:"required,min=1,dive,oneof=UNEMPLOYED UNDEREMPLOYED BELOW_POVERTY REFUGEE DISABLED STUDENT WORKING_STUDENT NONPROFIT_SCIENTIST"`
	Devices      []string `json:"devices" validate:"required,min=1,dive,oneof=SMARTPHONE LAPTOP DESKTOP"`
	Connectivity []string `json:"connectivity" validate:"required,min=1,dive,oneof=MOBILE_DATA WIFI"`
}

// StepInput is the data collected by one wizard step.
type StepInput interface {
	Step() Step
	apply(d *Draft)
}

func (OrganizationStep) Step() Step { return StepOrganization }
func (BasicInfoStep) Step() Step    { return StepBasicInfo }
func (GeographicStep) Step() Step   { return StepGeographic }
func (EducationStep) Step() Step    { return StepEducation }
func (InterestStep) Step() Step     { return StepInterest }
func (DemographicsStep) Step() Step { return StepDemographics }

func (in *OrganizationStep) apply(d *Draft) { d.Organization = *in }
func (in *BasicInfoStep) apply(d *Draft)    { d.BasicInfo = *in }
func (in *GeographicStep) apply(d *Draft)   { d.Geographic = *in }
func (in *EducationStep) apply(d *Draft)    { d.Education = *in }
func (in *InterestStep) apply(d *Draft)     { d.Interest = *in }
func (in *DemographicsStep) apply(d *Draft) { d.Demographics = *in }

// NewStepInput returns an empty input for step, ready to be decoded into.
func NewStepInput(step Step) (StepInput, error) {
	switch step {
	case StepOrganization:
		return &OrganizationStep{}, nil
	case StepBasicInfo:
		return &BasicInfoStep{}, nil
	case StepGeographic:
		return &GeographicStep{}, nil
	case StepEducation:
		return &EducationStep{}, nil
	case StepInterest:
		return &InterestStep{}, nil
	case StepDemographics:
		return &DemographicsStep{}, nil
	default:
		return nil, fieldError("step", "step takes no input")
	}
}

// Draft is an in-progress application. It lives only in the session store.
type Draft struct {
	ID          string    `json:"id"`
	Step        Step      `json:"step"`
	StepName    string    `json:"step_name"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
	AwaitingOTP bool      `json:"awaiting_otp"`

	Organization OrganizationStep `json:"organization"`
	BasicInfo    BasicInfoStep    `json:"basic_info"`
	Geographic   GeographicStep   `json:"geographic"`
	Education    EducationStep    `json:"education"`
	Interest     InterestStep     `json:"interest"`
	Demographics DemographicsStep `json:"demographics"`
}

type otpState struct {
	Code     string    `json:"code"`
	IssuedAt time.Time `json:"issued_at"`
	Attempts int       `json:"attempts"`
}

// storedDraft keeps the one-time code next to the draft without ever
// returning it to callers.
type storedDraft struct {
	Draft
	OTP *otpState `json:"otp,omitempty"`
}

// IntakeConfig holds the wizard's time and attempt limits.
type IntakeConfig struct {
	DraftTTL       time.Duration
	OTPTTL         time.Duration
	OTPMaxAttempts int
	MinimumAge     int
}

type IntakeService struct {
	store    repository.Store
	drafts   session.Store
	notifier email.Notifier
	cfg      IntakeConfig
	validate *validator.Validate
	now      func() time.Time
}

func NewIntakeService(store repository.Store, drafts session.Store, notifier email.Notifier, cfg IntakeConfig) *IntakeService {
	return &IntakeService{
		store:    store,
		drafts:   drafts,
		notifier: notifier,
		cfg:      cfg,
		validate: newValidator(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start opens a new draft at the first step.
func (s *IntakeService) Start(ctx context.Context) (*Draft, error) {
	now := s.now()
	d := &storedDraft{Draft: Draft{
		ID:        uuid.NewString(),
		Step:      StepOrganization,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.DraftTTL),
	}}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d.view(), nil
}

func (s *IntakeService) Get(ctx context.Context, draftID string) (*Draft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return d.view(), nil
}

// Restart discards the draft.
func (s *IntakeService) Restart(ctx context.Context, draftID string) error {
	if err := s.drafts.Delete(ctx, draftKeyPrefix+draftID); err != nil {
		return fmt.Errorf("deleting draft: %w", err)
	}
	return nil
}

// Next validates the current step's input, stores it and advances.
func (s *IntakeService) Next(ctx context.Context, draftID string, input StepInput) (*Draft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step == StepReview || input.Step() != d.Step {
		return nil, domain.ErrStepOutOfOrder
	}

	if err := s.validateStep(ctx, input); err != nil {
		return nil, err
	}

	input.apply(&d.Draft)
	d.Step++
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d.view(), nil
}

// Previous keeps whatever the current step holds, without validation, and
// moves back one step. input may be nil.
func (s *IntakeService) Previous(ctx context.Context, draftID string, input StepInput) (*Draft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	if input != nil {
		if input.Step() != d.Step {
			return nil, domain.ErrStepOutOfOrder
		}
		if org, ok := input.(*OrganizationStep); ok && d.Organization.Email != "" {
			// The email is fixed once the first step passed.
			org.Email = d.Organization.Email
		}
		input.apply(&d.Draft)
	}
	if d.Step > StepOrganization {
		d.Step--
	}
	d.OTP = nil

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d.view(), nil
}

// Edit replaces one earlier step's data from the review step. The email
// entered on the first step cannot be changed here.
func (s *IntakeService) Edit(ctx context.Context, draftID string, input StepInput) (*Draft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != StepReview {
		return nil, domain.ErrStepOutOfOrder
	}

	if org, ok := input.(*OrganizationStep); ok {
		if normalizeEmail(org.Email) != normalizeEmail(d.Organization.Email) {
			return nil, domain.ErrEmailLocked
		}
	}
	if err := s.validateStep(ctx, input); err != nil {
		return nil, err
	}

	input.apply(&d.Draft)
	// Any code issued for the old data is void.
	d.OTP = nil

	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d.view(), nil
}

// SubmitForReview issues a one-time code for the completed draft and mails it
// to the applicant. Submitting again replaces the code and resets attempts.
func (s *IntakeService) SubmitForReview(ctx context.Context, draftID string) (*Draft, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.Step != StepReview {
		return nil, domain.ErrStepOutOfOrder
	}

	for _, input := range d.inputs() {
		if err := s.validateStep(ctx, input); err != nil {
			return nil, err
		}
	}

	code, err := generateOTP()
	if err != nil {
		return nil, err
	}

	sent := mailer.SendOTPCode(ctx, s.notifier, d.Organization.Email, mailer.OTPCodeData{
		Code:             code,
		ExpiresInMinutes: int(s.cfg.OTPTTL / time.Minute),
	})
	if !sent {
		return nil, domain.ErrNotificationFailed
	}

	d.OTP = &otpState{Code: code, IssuedAt: s.now()}
	if err := s.save(ctx, d); err != nil {
		return nil, err
	}
	return d.view(), nil
}

// VerifyOTP checks the code and, on a match, persists the application. It
// succeeds at most once per draft.
func (s *IntakeService) VerifyOTP(ctx context.Context, draftID, code string) (*model.Application, error) {
	d, err := s.load(ctx, draftID)
	if err != nil {
		return nil, err
	}
	if d.OTP == nil {
		return nil, domain.ErrOTPNotIssued
	}
	if s.now().Sub(d.OTP.IssuedAt) > s.cfg.OTPTTL {
		return nil, domain.ErrOTPExpired
	}

	entered := strings.TrimSpace(code)
	if subtle.ConstantTimeCompare([]byte(entered), []byte(strings.TrimSpace(d.OTP.Code))) != 1 {
		d.OTP.Attempts++
		if d.OTP.Attempts >= s.cfg.OTPMaxAttempts {
			if err := s.Restart(ctx, draftID); err != nil {
				return nil, err
			}
			metrics.Transition("application_otp", domain.ErrTooManyAttempts)
			return nil, domain.ErrTooManyAttempts
		}
		if err := s.save(ctx, d); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %d attempt(s) remaining", domain.ErrOTPInvalid, s.cfg.OTPMaxAttempts-d.OTP.Attempts)
	}

	app, err := s.persist(ctx, d)
	metrics.Transition("application_submitted", err)
	if err != nil {
		// The draft and its code stay in place so the applicant can retry.
		return nil, err
	}

	if err := s.Restart(ctx, draftID); err != nil {
		slog.WarnContext(ctx, "Failed to clear verified draft", "draft_id", draftID, "error", err)
	}

	orgName := ""
	if org, err := s.store.Organizations().FindByID(ctx, app.PartnerOrgID); err == nil {
		orgName = org.DisplayName
	}
	mailer.SendApplicationReceived(ctx, s.notifier, app.Email, mailer.ApplicationReceivedData{
		FirstName:        app.FirstName,
		OrganizationName: orgName,
	})

	return app, nil
}

func (s *IntakeService) persist(ctx context.Context, d *storedDraft) (*model.Application, error) {
	app := d.application()

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		if err := checkEligibility(ctx, tx, app.PartnerOrgID, app.Email); err != nil {
			return err
		}
		if err := tx.Applications().Create(ctx, app); err != nil {
			return err
		}
		return audit.NewRepositoryLogger(tx.AuditLogs()).Record(ctx, audit.Entry{
			Action:     model.ActionApplicationSubmitted,
			ActorType:  audit.ActorApplicant,
			ActorID:    app.Email,
			EntityType: "application",
			EntityID:   app.ID.String(),
			Details:    map[string]interface{}{"partner_org_id": app.PartnerOrgID.String()},
		})
	})
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (s *IntakeService) validateStep(ctx context.Context, input StepInput) error {
	if org, ok := input.(*OrganizationStep); ok {
		org.Email = normalizeEmail(org.Email)
	}
	if err := validateInput(s.validate, input); err != nil {
		return err
	}

	switch in := input.(type) {
	case *OrganizationStep:
		return checkEligibility(ctx, s.store, uuid.MustParse(in.PartnerOrgID), in.Email)
	case *BasicInfoStep:
		return s.checkAge(in.Birthdate)
	}
	return nil
}

// checkEligibility applies the first-step rules: the organization takes
// applications and the email has neither an active scholarship nor an open
// application there.
func checkEligibility(ctx context.Context, store repository.Store, orgID uuid.UUID, emailAddr string) error {
	org, err := store.Organizations().FindByID(ctx, orgID)
	if err != nil {
		return err
	}
	if !org.IsActive || !org.IsAccepting {
		return domain.ErrOrganizationNotAccepting
	}

	isScholar, err := store.Scholars().ExistsActiveForEmail(ctx, orgID, emailAddr)
	if err != nil {
		return err
	}
	if isScholar {
		return domain.ErrAlreadyScholar
	}

	open, err := store.Applications().ExistsOpenForEmail(ctx, orgID, emailAddr)
	if err != nil {
		return err
	}
	if open {
		return domain.ErrDuplicateApplication
	}
	return nil
}

func (s *IntakeService) checkAge(birthdate string) error {
	born, err := time.Parse(time.DateOnly, birthdate)
	if err != nil {
		return fieldError("birthdate", "must be a date formatted 2006-01-02")
	}
	now := s.now()
	if born.After(now) || born.Year() < 1900 {
		return fieldError("birthdate", "is out of range")
	}
	if ageOn(born, now) < s.cfg.MinimumAge {
		return domain.ErrUnderage
	}
	return nil
}

func ageOn(born, now time.Time) int {
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	return age
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generating code: %w", err)
	}
	return fmt.Sprintf("%0*d", otpDigits, n.Int64()), nil
}

func (s *IntakeService) load(ctx context.Context, draftID string) (*storedDraft, error) {
	if draftID == "" {
		return nil, domain.ErrDraftNotFound
	}

	var d storedDraft
	if err := s.drafts.Get(ctx, draftKeyPrefix+draftID, &d); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrDraftNotFound
		}
		return nil, fmt.Errorf("loading draft: %w", err)
	}

	if !s.now().Before(d.ExpiresAt) {
		if err := s.Restart(ctx, draftID); err != nil {
			slog.WarnContext(ctx, "Failed to delete expired draft", "draft_id", draftID, "error", err)
		}
		return nil, domain.ErrDraftExpired
	}
	return &d, nil
}

func (s *IntakeService) save(ctx context.Context, d *storedDraft) error {
	ttl := d.ExpiresAt.Sub(s.now()) + draftGrace
	if err := s.drafts.Set(ctx, draftKeyPrefix+d.ID, d, ttl); err != nil {
		return fmt.Errorf("saving draft: %w", err)
	}
	return nil
}

func (d *storedDraft) view() *Draft {
	out := d.Draft
	out.StepName = out.Step.String()
	out.AwaitingOTP = d.OTP != nil
	return &out
}

func (d *storedDraft) inputs() []StepInput {
	return []StepInput{
		&d.Organization,
		&d.BasicInfo,
		&d.Geographic,
		&d.Education,
		&d.Interest,
		&d.Demographics,
	}
}

func (d *storedDraft) application() *model.Application {
	app := &model.Application{
		ID:                    uuid.New(),
		PartnerOrgID:          uuid.MustParse(d.Organization.PartnerOrgID),
		Email:                 normalizeEmail(d.Organization.Email),
		FirstName:             strings.TrimSpace(d.BasicInfo.FirstName),
		MiddleName:            strings.TrimSpace(d.BasicInfo.MiddleName),
		LastName:              strings.TrimSpace(d.BasicInfo.LastName),
		Birthdate:             d.BasicInfo.Birthdate,
		Gender:                model.Gender(d.BasicInfo.Gender),
		Country:               d.Geographic.Country,
		StateRegionProvince:   d.Geographic.StateRegionProvince,
		City:                  d.Geographic.City,
		PostalCode:            d.Geographic.PostalCode,
		EducationStatus:       model.EducationStatus(d.Education.EducationStatus),
		InstitutionCountry:    d.Education.InstitutionCountry,
		InstitutionName:       d.Education.InstitutionName,
		ProgrammingExperience: model.ExperienceLevel(d.Interest.ProgrammingExperience),
		DataScienceExperience: model.ExperienceLevel(d.Interest.DataScienceExperience),
		WeeklyTimeCommitment:  d.Interest.WeeklyTimeCommitment,
		ScholarshipReason:     d.Interest.ScholarshipReason,
		CareerGoals:           d.Interest.CareerGoals,
		Status:                model.ApplicationPending,
	}

	for _, tag := range unique(d.Demographics.Demographics) {
		app.Demographics = append(app.Demographics, model.ApplicationDemographic{Demographic: model.Demographic(tag)})
	}
	for _, tag := range unique(d.Demographics.Devices) {
		app.Devices = append(app.Devices, model.ApplicationDevice{Device: model.Device(tag)})
	}
	for _, tag := range unique(d.Demographics.Connectivity) {
		app.Connectivity = append(app.Connectivity, model.ApplicationConnectivity{Connectivity: model.Connectivity(tag)})
	}
	return app
}

func unique(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
