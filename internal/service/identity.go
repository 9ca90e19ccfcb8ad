// internal/service/identity.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/metrics"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
	"github.com/datara/scholarhub/internal/session"
)

const refreshKeyPrefix = "refresh:"

// Identity is the principal a credential set resolves to.
type Identity struct {
	Role         auth.Role `json:"role"`
	SubjectID    string    `json:"subject_id"`
	PartnerOrgID uuid.UUID `json:"partner_org_id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Permissions  []string  `json:"permissions"`
}

// Session is a resolved identity plus the tokens issued for it.
type Session struct {
	Identity     Identity  `json:"identity"`
	AccessToken  string    `json:"access_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

type refreshRecord struct {
	AdminID uuid.UUID `json:"admin_id"`
	Email   string    `json:"email"`
}

type IdentityService struct {
	store      repository.Store
	provider   auth.CredentialProvider
	tokens     *auth.TokenManager
	sessions   session.Store
	refreshTTL time.Duration
}

func NewIdentityService(
	store repository.Store,
	provider auth.CredentialProvider,
	tokens *auth.TokenManager,
	sessions session.Store,
	refreshTTL time.Duration,
) *IdentityService {
	return &IdentityService{
		store:      store,
		provider:   provider,
		tokens:     tokens,
		sessions:   sessions,
		refreshTTL: refreshTTL,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminLogin authenticates with the credential provider and then requires an
// active admin of an active organization. Every failure is reported as
// domain.ErrInvalidCredentials.
func (s *IdentityService) AdminLogin(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)

	if err := s.provider.Authenticate(ctx, email, password); err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			slog.ErrorContext(ctx, "Credential provider failed", "error", err)
		}
		s.provider.SignOut(ctx, email)
		metrics.Logins.WithLabelValues(string(auth.RoleAdmin), metrics.ResultFailure).Inc()
		return nil, domain.ErrInvalidCredentials
	}

	identity, err := s.resolveAdmin(ctx, email)
	if err != nil {
		s.provider.SignOut(ctx, email)
		metrics.Logins.WithLabelValues(string(auth.RoleAdmin), metrics.ResultFailure).Inc()
		return nil, err
	}

	sess, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	refresh := uuid.NewString()
	record := refreshRecord{AdminID: uuid.MustParse(identity.SubjectID), Email: identity.Email}
	if err := s.sessions.Set(ctx, refreshKeyPrefix+refresh, record, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	sess.RefreshToken = refresh

	metrics.Logins.WithLabelValues(string(auth.RoleAdmin), metrics.ResultOK).Inc()
	return sess, nil
}

func (s *IdentityService) resolveAdmin(ctx context.Context, email string) (*Identity, error) {
	admin, err := s.store.Admins().FindActiveByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrAdminNotFound) {
			slog.ErrorContext(ctx, "Resolving admin failed", "error", err)
		}
		return nil, domain.ErrInvalidCredentials
	}

	return &Identity{
		Role:         auth.RoleAdmin,
		SubjectID:    admin.ID.String(),
		PartnerOrgID: admin.PartnerOrgID,
		Email:        admin.Email,
		DisplayName:  strings.TrimSpace(admin.FirstName + " " + admin.LastName),
		Permissions:  auth.RoleAdmin.Permissions(),
	}, nil
}

// KnowledgeLogin resolves a scholar or approved applicant from their id, the
// email they applied with and their birthdate.
//
// These factors are not secrets and the ids are enumerable, so callers must
// rate limit this path.
func (s *IdentityService) KnowledgeLogin(ctx context.Context, id, email, birthdate string) (*Session, error) {
	id = strings.TrimSpace(id)
	email = normalizeEmail(email)
	birthdate = strings.TrimSpace(birthdate)

	var (
		identity *Identity
		err      error
	)
	switch {
	case IsScholarID(id):
		identity, err = s.resolveScholar(ctx, id, email, birthdate)
	case IsApprovedApplicantID(id):
		identity, err = s.resolveApprovedApplicant(ctx, id, email, birthdate)
	default:
		return nil, domain.ErrInvalidIDFormat
	}

	path := "knowledge"
	if err != nil {
		metrics.Logins.WithLabelValues(path, metrics.ResultFailure).Inc()
		return nil, err
	}

	sess, err := s.issue(identity)
	if err != nil {
		return nil, err
	}
	metrics.Logins.WithLabelValues(path, metrics.ResultOK).Inc()
	return sess, nil
}

func factorsMatch(app *model.Application, email, birthdate string) bool {
	return app != nil && normalizeEmail(app.Email) == email && app.Birthdate == birthdate
}

func (s *IdentityService) resolveScholar(ctx context.Context, id, email, birthdate string) (*Identity, error) {
	scholar, err := s.store.Scholars().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrScholarNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding scholar: %w", err)
	}
	if !scholar.IsActive || !factorsMatch(scholar.Application, email, birthdate) {
		return nil, domain.ErrInvalidCredentials
	}

	return &Identity{
		Role:         auth.RoleScholar,
		SubjectID:    scholar.ID,
		PartnerOrgID: scholar.PartnerOrgID,
		Email:        scholar.Application.Email,
		DisplayName:  scholar.Application.FullName(),
		Permissions:  auth.RoleScholar.Permissions(),
	}, nil
}

// resolveApprovedApplicant checks the factors before looking for a scholar so
// the scholar id is only disclosed to someone who knows them.
func (s *IdentityService) resolveApprovedApplicant(ctx context.Context, id, email, birthdate string) (*Identity, error) {
	approved, err := s.store.ApprovedApplicants().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrApprovedApplicantNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding approved applicant: %w", err)
	}
	if !factorsMatch(approved.Application, email, birthdate) {
		return nil, domain.ErrInvalidCredentials
	}

	scholar, err := s.store.Scholars().FindByApplicationID(ctx, approved.ApplicationID)
	switch {
	case err == nil:
		return nil, &domain.AlreadyScholarError{ScholarID: scholar.ID}
	case !errors.Is(err, domain.ErrScholarNotFound):
		return nil, fmt.Errorf("checking scholar: %w", err)
	}

	return &Identity{
		Role:         auth.RoleApprovedApplicant,
		SubjectID:    approved.ID,
		PartnerOrgID: approved.Application.PartnerOrgID,
		Email:        approved.Application.Email,
		DisplayName:  approved.Application.FullName(),
		Permissions:  auth.RoleApprovedApplicant.Permissions(),
	}, nil
}

// Refresh exchanges an admin refresh token for a new session. The token is
// single use; the admin is resolved again so deactivation takes effect.
func (s *IdentityService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, domain.ErrSessionExpired
	}

	var record refreshRecord
	if err := s.sessions.Get(ctx, refreshKeyPrefix+refreshToken, &record); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionExpired
		}
		return nil, fmt.Errorf("loading refresh token: %w", err)
	}
	if err := s.sessions.Delete(ctx, refreshKeyPrefix+refreshToken); err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}

	identity, err := s.resolveAdmin(ctx, record.Email)
	if err != nil {
		return nil, domain.ErrSessionExpired
	}
	if identity.SubjectID != record.AdminID.String() {
		return nil, domain.ErrSessionExpired
	}

	sess, err := s.issue(identity)
	if err != nil {
		return nil, err
	}

	next := uuid.NewString()
	if err := s.sessions.Set(ctx, refreshKeyPrefix+next, record, s.refreshTTL); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}
	sess.RefreshToken = next
	return sess, nil
}

// Logout revokes the refresh token, if any. Access tokens simply expire.
func (s *IdentityService) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	var record refreshRecord
	if err := s.sessions.Get(ctx, refreshKeyPrefix+refreshToken, &record); err == nil {
		s.provider.SignOut(ctx, record.Email)
	}
	return s.sessions.Delete(ctx, refreshKeyPrefix+refreshToken)
}

func (s *IdentityService) issue(identity *Identity) (*Session, error) {
	token, expiresAt, err := s.tokens.Generate(identity.SubjectID, identity.Role, identity.PartnerOrgID.String(), identity.Email)
	if err != nil {
		return nil, fmt.Errorf("generating token: %w", err)
	}
	return &Session{Identity: *identity, AccessToken: token, ExpiresAt: expiresAt}, nil
}
