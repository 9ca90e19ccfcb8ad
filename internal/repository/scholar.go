// internal/repository/scholar.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ScholarRepositoryIface interface {
	Create(ctx context.Context, scholar *model.Scholar) error
	FindByID(ctx context.Context, id string) (*model.Scholar, error)
	FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.Scholar, error)
	ExistsID(ctx context.Context, id string) (bool, error)
	ExistsActiveForEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error)
	SetActive(ctx context.Context, id string, active bool) (bool, error)
	Activate(ctx context.Context, id string, moaID uuid.UUID) error
	List(ctx context.Context, filter ScholarFilter) ([]*model.Scholar, int64, error)
	CountActive(ctx context.Context, orgID uuid.UUID) (int64, error)
	CreateStatusChange(ctx context.Context, change *model.ScholarStatusChange) error
	ListStatusChanges(ctx context.Context, scholarID string) ([]*model.ScholarStatusChange, error)
}

// ScholarFilter narrows List. A nil Active matches both states.
type ScholarFilter struct {
	PartnerOrgID uuid.UUID
	Active       *bool
	Page
}

type ScholarRepository struct {
	db *gorm.DB
}

func NewScholarRepository(db *gorm.DB) *ScholarRepository {
	return &ScholarRepository{db: db}
}

func (r *ScholarRepository) Create(ctx context.Context, scholar *model.Scholar) error {
	if err := r.db.WithContext(ctx).Omit("Application").Create(scholar).Error; err != nil {
		return fmt.Errorf("failed to create scholar: %w", err)
	}
	return nil
}

// FindByID loads the scholar with its application and organization.
func (r *ScholarRepository) FindByID(ctx context.Context, id string) (*model.Scholar, error) {
	var scholar model.Scholar
	err := r.db.WithContext(ctx).
		Preload("Application.PartnerOrganization").
		First(&scholar, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScholarNotFound
		}
		return nil, fmt.Errorf("failed to find scholar: %w", err)
	}
	return &scholar, nil
}

func (r *ScholarRepository) FindByApplicationID(ctx context.Context, applicationID uuid.UUID) (*model.Scholar, error) {
	var scholar model.Scholar
	err := r.db.WithContext(ctx).First(&scholar, "application_id = ?", applicationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrScholarNotFound
		}
		return nil, fmt.Errorf("failed to find scholar: %w", err)
	}
	return &scholar, nil
}

func (r *ScholarRepository) ExistsID(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Scholar{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check scholar id: %w", err)
	}
	return count > 0, nil
}

// ExistsActiveForEmail reports whether an active scholar of the organization
// applied with the email.
func (r *ScholarRepository) ExistsActiveForEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Scholar{}).
		Joins("JOIN applications ON applications.id = scholars.application_id").
		Where("scholars.partner_org_id = ? AND scholars.is_active = ?", orgID, true).
		Where("lower(applications.email) = ?", strings.ToLower(strings.TrimSpace(email))).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing scholars: %w", err)
	}
	return count > 0, nil
}

// SetActive updates is_active when it differs from the stored value and
// reports whether anything changed.
func (r *ScholarRepository) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Scholar{}).
		Where("id = ? AND is_active = ?", id, !active).
		Update("is_active", active)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update scholar status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// Activate marks an existing scholar active and links the approved MoA.
func (r *ScholarRepository) Activate(ctx context.Context, id string, moaID uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Scholar{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_active": true, "moa_id": moaID})
	if result.Error != nil {
		return fmt.Errorf("failed to activate scholar: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrScholarNotFound
	}
	return nil
}

func (r *ScholarRepository) List(ctx context.Context, filter ScholarFilter) ([]*model.Scholar, int64, error) {
	var scholars []*model.Scholar
	var count int64

	query := r.db.WithContext(ctx).Model(&model.Scholar{}).Where("partner_org_id = ?", filter.PartnerOrgID)
	if filter.Active != nil {
		query = query.Where("is_active = ?", *filter.Active)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count scholars: %w", err)
	}

	err := paginate(query, filter.Page).
		Preload("Application").
		Order("created_at DESC").
		Find(&scholars).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scholars: %w", err)
	}
	return scholars, count, nil
}

func (r *ScholarRepository) CountActive(ctx context.Context, orgID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Scholar{}).
		Where("partner_org_id = ? AND is_active = ?", orgID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count active scholars: %w", err)
	}
	return count, nil
}

func (r *ScholarRepository) CreateStatusChange(ctx context.Context, change *model.ScholarStatusChange) error {
	if err := r.db.WithContext(ctx).Create(change).Error; err != nil {
		return fmt.Errorf("failed to record scholar status change: %w", err)
	}
	return nil
}

func (r *ScholarRepository) ListStatusChanges(ctx context.Context, scholarID string) ([]*model.ScholarStatusChange, error) {
	var changes []*model.ScholarStatusChange
	err := r.db.WithContext(ctx).
		Where("scholar_id = ?", scholarID).
		Order("changed_at ASC").
		Find(&changes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list scholar status changes: %w", err)
	}
	return changes, nil
}
