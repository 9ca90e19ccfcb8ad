package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ApprovedApplicantRepositoryIface interface {
	Create(ctx context.Context, approved *model.ApprovedApplicant) error
	FindByID(ctx context.Context, id string) (*model.ApprovedApplicant, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.ApprovedApplicant, error)
	ExistsID(ctx context.Context, id string) (bool, error)
}

type ApprovedApplicantRepository struct {
	db *gorm.DB
}

func NewApprovedApplicantRepository(db *gorm.DB) *ApprovedApplicantRepository {
	return &ApprovedApplicantRepository{db: db}
}

func (r *ApprovedApplicantRepository) Create(ctx context.Context, approved *model.ApprovedApplicant) error {
	if err := r.db.WithContext(ctx).Create(approved).Error; err != nil {
		return fmt.Errorf("failed to create approved applicant: %w", err)
	}
	return nil
}

// FindByID loads the approved applicant with its application and organization.
func (r *ApprovedApplicantRepository) FindByID(ctx context.Context, id string) (*model.ApprovedApplicant, error) {
	var approved model.ApprovedApplicant
	err := r.db.WithContext(ctx).
		Preload("Application.PartnerOrganization").
		First(&approved, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApprovedApplicantNotFound
		}
		return nil, fmt.Errorf("failed to find approved applicant: %w", err)
	}
	return &approved, nil
}

func (r *ApprovedApplicantRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.ApprovedApplicant, error) {
	var approved model.ApprovedApplicant
	err := r.db.WithContext(ctx).First(&approved, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApprovedApplicantNotFound
		}
		return nil, fmt.Errorf("failed to find approved applicant: %w", err)
	}
	return &approved, nil
}

func (r *ApprovedApplicantRepository) ExistsID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ApprovedApplicant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check approved applicant id: %w", err)
	}
	return count > 0, nil
}
