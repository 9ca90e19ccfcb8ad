// internal/email/service.go
package email

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	texttemplate "text/template"

	"github.com/datara/scholarhub"
	"github.com/datara/scholarhub/internal/config"
	"github.com/sendgrid/sendgrid-go"
)

var templateFS = scholarhub.EmailFS

// Provider identifies supported email providers
type Provider string

const (
	ProviderSMTP     Provider = "smtp"
	ProviderSendgrid Provider = "sendgrid"
	// ProviderLog renders messages and writes them to the log instead of
	// delivering them. Development only.
	ProviderLog Provider = "log"

	DefaultTemplatePath = "templates/emails"
)

// EmailData contains all necessary information for sending an email
type EmailData struct {
	To           string
	From         string
	FromName     string
	Subject      string
	TemplateName string
	TemplateData interface{}
}

// Service renders template groups and hands them to the configured provider.
type Service struct {
	config         *config.Config
	provider       Provider
	sendgridClient *sendgrid.Client
	Templates      map[string]*Template
}

type Template struct {
	HTML      *htmltemplate.Template
	Plaintext *texttemplate.Template
}

func NewEmailService(cfg *config.Config) (*Service, error) {
	s := &Service{
		config:    cfg,
		provider:  Provider(cfg.Email.Provider),
		Templates: make(map[string]*Template),
	}

	switch s.provider {
	case ProviderSendgrid:
		s.sendgridClient = sendgrid.NewSendClient(cfg.Sendgrid.APIKey)
	case ProviderSMTP, ProviderLog:
	default:
		return nil, fmt.Errorf("unsupported email provider: %s", s.provider)
	}

	if err := s.loadTemplates(); err != nil {
		return nil, fmt.Errorf("loading email templates: %w", err)
	}

	return s, nil
}

// loadTemplates parses every template group under DefaultTemplatePath. Each
// group is a directory holding html.tmpl and plaintext.tmpl.
func (s *Service) loadTemplates() error {
	groups, err := templateFS.ReadDir(DefaultTemplatePath)
	if err != nil {
		return fmt.Errorf("failed to read email templates directory: %w", err)
	}

	for _, group := range groups {
		if !group.IsDir() {
			continue
		}

		groupPath := DefaultTemplatePath + "/" + group.Name()

		html, err := htmltemplate.ParseFS(templateFS, groupPath+"/html.tmpl")
		if err != nil {
			return fmt.Errorf("parsing %s html template: %w", group.Name(), err)
		}
		text, err := texttemplate.ParseFS(templateFS, groupPath+"/plaintext.tmpl")
		if err != nil {
			return fmt.Errorf("parsing %s plaintext template: %w", group.Name(), err)
		}

		s.Templates[group.Name()] = &Template{
			HTML:      html.Option("missingkey=error"),
			Plaintext: text.Option("missingkey=error"),
		}
	}

	if len(s.Templates) == 0 {
		return fmt.Errorf("no email templates found")
	}
	return nil
}

// SendEmail sends an email using the configured provider
func (s *Service) SendEmail(ctx context.Context, data EmailData) error {
	htmlContent, textContent, err := s.renderTemplate(data.TemplateName, data.TemplateData)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", data.TemplateName, err)
	}

	switch s.provider {
	case ProviderSendgrid:
		if data.From == "" {
			data.From = s.config.Sendgrid.From
		}
		return s.sendWithSendgrid(ctx, data, htmlContent, textContent)
	case ProviderSMTP:
		if data.From == "" {
			data.From = s.config.SMTP.From
		}
		return s.sendWithSMTP(data, htmlContent, textContent)
	case ProviderLog:
		slog.InfoContext(ctx, "Email rendered",
			"to", data.To,
			"subject", data.Subject,
			"template", data.TemplateName,
			"body", textContent,
		)
		return nil
	default:
		return fmt.Errorf("unsupported email provider: %s", s.provider)
	}
}

func (s *Service) renderTemplate(name string, data interface{}) (string, string, error) {
	tmpl, exists := s.Templates[name]
	if !exists {
		return "", "", fmt.Errorf("template %s not found", name)
	}

	var htmlbuf bytes.Buffer
	if err := tmpl.HTML.Execute(&htmlbuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute html template: %w", err)
	}

	var textbuf bytes.Buffer
	if err := tmpl.Plaintext.Execute(&textbuf, data); err != nil {
		return "", "", fmt.Errorf("failed to execute plaintext template: %w", err)
	}

	return htmlbuf.String(), textbuf.String(), nil
}
