package repository

import (
	"context"
	"fmt"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CertificationRepositoryIface interface {
	Create(ctx context.Context, cert *model.Certification) error
	ListByScholar(ctx context.Context, scholarID string) ([]*model.Certification, error)
	CountByScholar(ctx context.Context, scholarID string) (int64, error)
	Delete(ctx context.Context, scholarID string, id uuid.UUID) error
}

type CertificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

func (r *CertificationRepository) Create(ctx context.Context, cert *model.Certification) error {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		return fmt.Errorf("failed to create certification: %w", err)
	}
	return nil
}

// ListByScholar returns the newest certifications first.
func (r *CertificationRepository) ListByScholar(ctx context.Context, scholarID string) ([]*model.Certification, error) {
	var certs []*model.Certification
	err := r.db.WithContext(ctx).
		Where("scholar_id = ?", scholarID).
		Order("issue_year DESC").
		Order("issue_month DESC").
		Find(&certs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list certifications: %w", err)
	}
	return certs, nil
}

func (r *CertificationRepository) CountByScholar(ctx context.Context, scholarID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Certification{}).Where("scholar_id = ?", scholarID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count certifications: %w", err)
	}
	return count, nil
}

// Delete removes a certification owned by the scholar.
func (r *CertificationRepository) Delete(ctx context.Context, scholarID string, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND scholar_id = ?", id, scholarID).Delete(&model.Certification{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete certification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrCertificationNotFound
	}
	return nil
}
