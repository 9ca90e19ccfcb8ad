// internal/domain/errors.go
package domain

import (
	"errors"
	"fmt"
)

var (
	// General errors
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")

	// Identity errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidIDFormat    = errors.New("invalid id format")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrSessionExpired     = errors.New("session expired")
	ErrAlreadyScholar     = errors.New("already a scholar")

	// Organization errors
	ErrOrganizationNotFound     = errors.New("organization not found")
	ErrOrganizationNotAccepting = errors.New("organization is not accepting applications")

	// Intake errors
	ErrDraftNotFound        = errors.New("application draft not found")
	ErrDraftExpired         = errors.New("application draft expired")
	ErrStepOutOfOrder       = errors.New("step out of order")
	ErrDuplicateApplication = errors.New("an application for this email is already pending or approved")
	ErrUnderage             = errors.New("applicant must be at least 16 years old")
	ErrEmailLocked          = errors.New("email cannot be changed after the first step")
	ErrOTPNotIssued         = errors.New("verification code not issued")
	ErrOTPInvalid           = errors.New("invalid verification code")
	ErrOTPExpired           = errors.New("verification code expired")
	ErrTooManyAttempts      = errors.New("too many failed verification attempts")
	ErrNotificationFailed   = errors.New("notification could not be sent")

	// Review errors
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrReasonRequired      = errors.New("reason is required")
	ErrIDSpaceExhausted    = errors.New("could not allocate a unique id")

	// MoA errors
	ErrApprovedApplicantNotFound = errors.New("approved applicant not found")
	ErrMoANotFound               = errors.New("moa submission not found")
	ErrMoAAlreadySubmitted       = errors.New("moa already submitted")

	// Scholar errors
	ErrScholarNotFound       = errors.New("scholar not found")
	ErrCertificationNotFound = errors.New("certification not found")

	// Admin errors
	ErrAdminNotFound      = errors.New("admin not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
)

// AlreadyScholarError is returned when an approved applicant tries to sign in
// after their scholar record has been created. It carries the scholar id so
// the caller can redirect them to the scholar login.
type AlreadyScholarError struct {
	ScholarID string
}

func (e *AlreadyScholarError) Error() string {
	return fmt.Sprintf("already a scholar: sign in with %s", e.ScholarID)
}

func (e *AlreadyScholarError) Is(target error) bool {
	return target == ErrAlreadyScholar
}

// ValidationError lists the fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %d field(s) failed validation", len(e.Fields))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
