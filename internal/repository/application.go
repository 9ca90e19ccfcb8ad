// internal/repository/application.go
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

type ApplicationRepositoryIface interface {
	Create(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	FindWithDetails(ctx context.Context, id uuid.UUID) (*model.Application, error)
	ExistsOpenForEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error)
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) (bool, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error
	List(ctx context.Context, filter ApplicationFilter) ([]*model.Application, int64, error)
	CountByStatus(ctx context.Context, orgID uuid.UUID) (map[model.ApplicationStatus]int64, error)
	CreateReview(ctx context.Context, review *model.ApplicationReview) error
	ListReviews(ctx context.Context, applicationID uuid.UUID) ([]*model.ApplicationReview, error)
}

// ApplicationFilter narrows List. A zero Status matches every status.
type ApplicationFilter struct {
	PartnerOrgID uuid.UUID
	Status       model.ApplicationStatus
	Search       string
	Page
}

// ProfileUpdate holds the application fields a scholar may edit.
type ProfileUpdate struct {
	Country             string
	StateRegionProvince string
	City                string
	PostalCode          string
	EducationStatus     model.EducationStatus
	InstitutionName     string
	InstitutionCountry  string
}

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts the application together with its demographic, device and
// connectivity rows.
func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application) error {
	if err := r.db.WithContext(ctx).Create(app).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	if err := r.db.WithContext(ctx).Preload("PartnerOrganization").First(&app, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

func (r *ApplicationRepository) FindWithDetails(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var app model.Application
	err := r.db.WithContext(ctx).
		Preload("PartnerOrganization").
		Preload("Demographics").
		Preload("Devices").
		Preload("Connectivity").
		Preload("Reviews", func(db *gorm.DB) *gorm.DB {
			return db.Order("reviewed_at ASC")
		}).
		First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to find application: %w", err)
	}
	return &app, nil
}

// ExistsOpenForEmail reports whether the email already has a PENDING or
// APPROVED application with the organization.
func (r *ApplicationRepository) ExistsOpenForEmail(ctx context.Context, orgID uuid.UUID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("partner_org_id = ? AND lower(email) = ?", orgID, strings.ToLower(strings.TrimSpace(email))).
		Where("status IN ?", []model.ApplicationStatus{model.ApplicationPending, model.ApplicationApproved}).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check existing applications: %w", err)
	}
	return count > 0, nil
}

// TransitionStatus moves the application from one status to another only if
// it is still in the expected status. It reports whether a row changed.
func (r *ApplicationRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("failed to update application status: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *ApplicationRepository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error {
	result := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"country":               update.Country,
			"state_region_province": update.StateRegionProvince,
			"city":                  update.City,
			"postal_code":           update.PostalCode,
			"education_status":      update.EducationStatus,
			"institution_name":      update.InstitutionName,
			"institution_country":   update.InstitutionCountry,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update profile: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepository) List(ctx context.Context, filter ApplicationFilter) ([]*model.Application, int64, error) {
	var apps []*model.Application
	var count int64

	query := r.db.WithContext(ctx).Model(&model.Application{}).
		Where("partner_org_id = ?", filter.PartnerOrgID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		query = query.Where("lower(email) LIKE ? OR lower(first_name) LIKE ? OR lower(last_name) LIKE ?", like, like, like)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count applications: %w", err)
	}

	err := paginate(query, filter.Page).
		Preload("Demographics").
		Preload("Devices").
		Preload("Connectivity").
		Order("applied_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, count, nil
}

func (r *ApplicationRepository) CountByStatus(ctx context.Context, orgID uuid.UUID) (map[model.ApplicationStatus]int64, error) {
	var rows []struct {
		Status model.ApplicationStatus
		Total  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Application{}).
		Select("status, count(*) AS total").
		Where("partner_org_id = ?", orgID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count applications: %w", err)
	}

	counts := make(map[model.ApplicationStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Total
	}
	return counts, nil
}

func (r *ApplicationRepository) CreateReview(ctx context.Context, review *model.ApplicationReview) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create application review: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) ListReviews(ctx context.Context, applicationID uuid.UUID) ([]*model.ApplicationReview, error) {
	var reviews []*model.ApplicationReview
	err := r.db.WithContext(ctx).
		Where("application_id = ?", applicationID).
		Order("reviewed_at ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list application reviews: %w", err)
	}
	return reviews, nil
}
