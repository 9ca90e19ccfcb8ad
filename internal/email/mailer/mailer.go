// Package mailer binds each notification kind to its template data.
package mailer

import (
	"context"

	"github.com/datara/scholarhub/internal/email"
)

// OTPCodeData feeds the otp_code template.
type OTPCodeData struct {
	Code             string
	ExpiresInMinutes int
}

type ApplicationReceivedData struct {
	FirstName        string
	OrganizationName string
}

// ApplicationApprovedData carries the knowledge factors the applicant signs
// in with.
type ApplicationApprovedData struct {
	FirstName           string
	OrganizationName    string
	ApprovedApplicantID string
	Email               string
	Birthdate           string
	LoginURL            string
}

type ScholarActivatedData struct {
	FirstName        string
	OrganizationName string
	ScholarID        string
	LoginURL         string
}

type MoARevisionRequestedData struct {
	FirstName           string
	OrganizationName    string
	Reason              string
	ApprovedApplicantID string
	LoginURL            string
}

func SendOTPCode(ctx context.Context, n email.Notifier, to string, data OTPCodeData) bool {
	return n.Send(ctx, to, email.KindOTPCode, data)
}

func SendApplicationReceived(ctx context.Context, n email.Notifier, to string, data ApplicationReceivedData) bool {
	return n.Send(ctx, to, email.KindApplicationReceived, data)
}

func SendApplicationApproved(ctx context.Context, n email.Notifier, to string, data ApplicationApprovedData) bool {
	return n.Send(ctx, to, email.KindApplicationApproved, data)
}

func SendScholarActivated(ctx context.Context, n email.Notifier, to string, data ScholarActivatedData) bool {
	return n.Send(ctx, to, email.KindScholarActivated, data)
}

func SendMoARevisionRequested(ctx context.Context, n email.Notifier, to string, data MoARevisionRequestedData) bool {
	return n.Send(ctx, to, email.KindMoARevisionRequested, data)
}
