package email

import (
	"context"
	"log/slog"

	"github.com/datara/scholarhub/internal/metrics"
)

// Kind names a notification; it doubles as the template group name.
type Kind string

const (
	KindOTPCode              Kind = "otp_code"
	KindApplicationReceived  Kind = "application_received"
	KindApplicationApproved  Kind = "application_approved"
	KindScholarActivated     Kind = "scholar_activated"
	KindMoARevisionRequested Kind = "moa_revision_requested"
)

var subjects = map[Kind]string{
	KindOTPCode:              "Your application verification code",
	KindApplicationReceived:  "We received your scholarship application",
	KindApplicationApproved:  "Your scholarship application was approved",
	KindScholarActivated:     "Your scholarship is now active",
	KindMoARevisionRequested: "Your Memorandum of Agreement needs changes",
}

//go:generate mockgen -typed -source=./notifier.go -destination=../mocks/mock_notifier.go -package=mocks Notifier

// Notifier delivers a templated notification. Send never panics and reports
// only whether delivery succeeded.
type Notifier interface {
	Send(ctx context.Context, to string, kind Kind, args any) bool
}

// Dispatcher is the email-backed Notifier.
type Dispatcher struct {
	service  *Service
	fromName string
}

var _ Notifier = (*Dispatcher)(nil)

func NewDispatcher(service *Service, fromName string) *Dispatcher {
	return &Dispatcher{service: service, fromName: fromName}
}

func (d *Dispatcher) Send(ctx context.Context, to string, kind Kind, args any) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Notification panicked", "kind", kind, "panic", r)
			ok = false
		}
		result := metrics.ResultOK
		if !ok {
			result = metrics.ResultFailure
		}
		metrics.Notifications.WithLabelValues(string(kind), result).Inc()
	}()

	subject, known := subjects[kind]
	if !known {
		slog.ErrorContext(ctx, "Unknown notification kind", "kind", kind)
		return false
	}

	err := d.service.SendEmail(ctx, EmailData{
		To:           to,
		FromName:     d.fromName,
		Subject:      subject,
		TemplateName: string(kind),
		TemplateData: args,
	})
	if err != nil {
		slog.WarnContext(ctx, "Notification failed", "kind", kind, "error", err)
		return false
	}
	return true
}
