// internal/repository/repository.go
package repository

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository handed to fn runs on the same transaction.
type Store interface {
	Organizations() OrganizationRepositoryIface
	Admins() AdminRepositoryIface
	Applications() ApplicationRepositoryIface
	ApprovedApplicants() ApprovedApplicantRepositoryIface
	MoaSubmissions() MoaRepositoryIface
	Scholars() ScholarRepositoryIface
	Certifications() CertificationRepositoryIface
	Jobs() JobRepositoryIface
	AuditLogs() AuditLogRepositoryIface

	Transaction(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Organizations() OrganizationRepositoryIface {
	return NewOrganizationRepository(s.db)
}

func (s *gormStore) Admins() AdminRepositoryIface {
	return NewAdminRepository(s.db)
}

func (s *gormStore) Applications() ApplicationRepositoryIface {
	return NewApplicationRepository(s.db)
}

func (s *gormStore) ApprovedApplicants() ApprovedApplicantRepositoryIface {
	return NewApprovedApplicantRepository(s.db)
}

func (s *gormStore) MoaSubmissions() MoaRepositoryIface {
	return NewMoaRepository(s.db)
}

func (s *gormStore) Scholars() ScholarRepositoryIface {
	return NewScholarRepository(s.db)
}

func (s *gormStore) Certifications() CertificationRepositoryIface {
	return NewCertificationRepository(s.db)
}

func (s *gormStore) Jobs() JobRepositoryIface {
	return NewJobRepository(s.db)
}

func (s *gormStore) AuditLogs() AuditLogRepositoryIface {
	return NewAuditLogRepository(s.db)
}

// Transaction runs fn in a database transaction. Returning an error from fn
// rolls the transaction back.
func (s *gormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
	if err != nil {
		slog.WarnContext(ctx, "Rolled back transaction", "error", err)
	}
	return err
}

// Page bounds list queries.
type Page struct {
	Limit  int
	Offset int
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 500
)

func paginate(q *gorm.DB, p Page) *gorm.DB {
	limit := p.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	q = q.Limit(limit)
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}
	return q
}
