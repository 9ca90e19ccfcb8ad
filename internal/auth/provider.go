package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/repository"
)

//go:generate mockgen -typed -source=./provider.go -destination=../mocks/mock_credential_provider.go -package=mocks CredentialProvider

// CredentialProvider authenticates password credentials. It stands in for an
// external identity provider; SignOut discards whatever session the provider
// opened during Authenticate.
type CredentialProvider interface {
	Authenticate(ctx context.Context, email, password string) error
	SignOut(ctx context.Context, email string)
}

// LocalProvider verifies argon2id hashes stored next to the admin rows.
type LocalProvider struct {
	admins repository.AdminRepositoryIface
	hasher *PasswordHasher
}

func NewLocalProvider(admins repository.AdminRepositoryIface, hasher *PasswordHasher) *LocalProvider {
	return &LocalProvider{admins: admins, hasher: hasher}
}

// Authenticate returns domain.ErrInvalidCredentials for every mismatch,
// including unknown emails.
func (p *LocalProvider) Authenticate(ctx context.Context, email, password string) error {
	admin, err := p.admins.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrAdminNotFound) {
			// Burn comparable time so unknown emails are not distinguishable by latency.
			_, _ = p.hasher.Hash(password)
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("finding admin: %w", err)
	}

	cred, err := p.admins.FindCredential(ctx, admin.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrInvalidCredentials
		}
		return fmt.Errorf("finding credential: %w", err)
	}

	ok, err := p.hasher.Verify(password, cred.PasswordHash)
	if err != nil {
		slog.WarnContext(ctx, "Stored admin credential could not be verified", "admin_id", admin.ID, "error", err)
		return domain.ErrInvalidCredentials
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	if err := p.admins.TouchCredential(ctx, admin.ID, time.Now().UTC()); err != nil {
		slog.WarnContext(ctx, "Failed to record credential use", "admin_id", admin.ID, "error", err)
	}
	return nil
}

// SignOut is a no-op: the local provider keeps no session of its own.
func (p *LocalProvider) SignOut(ctx context.Context, email string) {}
