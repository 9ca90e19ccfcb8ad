// internal/repository/moa.go
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

type MoaRepositoryIface interface {
	Create(ctx context.Context, moa *model.MoaSubmission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.MoaSubmission, error)
	FindByApprovedApplicantID(ctx context.Context, approvedApplicantID string) (*model.MoaSubmission, error)
	Resubmit(ctx context.Context, moa *model.MoaSubmission) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.MoaStatus) (bool, error)
	List(ctx context.Context, filter MoaFilter) ([]*model.MoaSubmission, int64, error)
	CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error)
	CreateReview(ctx context.Context, review *model.MoaReview) error
}

type MoaFilter struct {
	PartnerOrgID uuid.UUID
	Status       model.MoaStatus
	Page
}

type MoaRepository struct {
	db *gorm.DB
}

func NewMoaRepository(db *gorm.DB) *MoaRepository {
	return &MoaRepository{db: db}
}

func (r *MoaRepository) Create(ctx context.Context, moa *model.MoaSubmission) error {
	if err := r.db.WithContext(ctx).Omit("ApprovedApplicant", "Reviews").Create(moa).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrMoAAlreadySubmitted
		}
		return fmt.Errorf("failed to create moa submission: %w", err)
	}
	return nil
}

// FindByID loads the submission with the approved applicant and application.
func (r *MoaRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.MoaSubmission, error) {
	var moa model.MoaSubmission
	err := r.db.WithContext(ctx).
		Preload("ApprovedApplicant.Application.PartnerOrganization").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviewed_at ASC")
		}).
		First(&moa, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMoANotFound
		}
		return nil, fmt.Errorf("failed to find moa submission: %w", err)
	}
	return &moa, nil
}

func (r *MoaRepository) FindByApprovedApplicantID(ctx context.Context, approvedApplicantID string) (*model.MoaSubmission, error) {
	var moa model.MoaSubmission
	err := r.db.WithContext(ctx).First(&moa, "approved_applicant_id = ?", approvedApplicantID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrMoANotFound
		}
		return nil, fmt.Errorf("failed to find moa submission: %w", err)
	}
	return &moa, nil
}

// Resubmit replaces the signature and agreements of a submission that was sent
// back for revision and marks it SUBMITTED again.
func (r *MoaRepository) Resubmit(ctx context.Context, moa *model.MoaSubmission) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.MoaSubmission{}).
		Where("id = ? AND status = ?", moa.ID, model.MoaPending).
		Updates(map[string]interface{}{
			"digital_signature":   moa.DigitalSignature,
			"agreed_terms":        moa.AgreedTerms,
			"agreed_commitment":   moa.AgreedCommitment,
			"agreed_conduct":      moa.AgreedConduct,
			"agreed_data_privacy": moa.AgreedDataPrivacy,
			"status":              model.MoaSubmitted,
			"submitted_at":        moa.SubmittedAt,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to resubmit moa: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *MoaRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.MoaStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.MoaSubmission{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update moa status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *MoaRepository) orgScope(ctx context.Context, orgID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.MoaSubmission{}).
		Joins("JOIN approved_applicants ON approved_applicants.id = moa_submissions.approved_applicant_id").
		Joins("JOIN applications ON applications.id = approved_applicants.application_id").
		Where("applications.partner_org_id = ?", orgID)
}

func (r *MoaRepository) List(ctx context.Context, filter MoaFilter) ([]*model.MoaSubmission, int64, error) {
	var moas []*model.MoaSubmission
	var count int64

	query := r.orgScope(ctx, filter.PartnerOrgID)
	if filter.Status != "" {
		query = query.Where("moa_submissions.status = ?", filter.Status)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count moa submissions: %w", err)
	}

	err := paginate(query, filter.Page).
		Preload("ApprovedApplicant.Application").
		Order("moa_submissions.submitted_at DESC").
		Find(&moas).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list moa submissions: %w", err)
	}
	return moas, count, nil
}

func (r *MoaRepository) CountByOrg(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	if err := r.orgScope(ctx, orgID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count moa submissions: %w", err)
	}
	return count, nil
}

func (r *MoaRepository) CreateReview(ctx context.Context, review *model.MoaReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create moa review: %w", err)
	}
	return nil
}
