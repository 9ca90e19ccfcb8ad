// internal/repository/organization.go
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

type OrganizationRepositoryIface interface {
	Create(ctx context.Context, org *model.PartnerOrganization) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PartnerOrganization, error)
	List(ctx context.Context) ([]*model.PartnerOrganization, error)
	ListAccepting(ctx context.Context) ([]*model.PartnerOrganization, error)
}

type OrganizationRepository struct {
	db *gorm.DB
}

func NewOrganizationRepository(db *gorm.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) Create(ctx context.Context, org *model.PartnerOrganization) error {
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PartnerOrganization, error) {
	var org model.PartnerOrganization
	if err := r.db.WithContext(ctx).First(&org, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}
	return &org, nil
}

func (r *OrganizationRepository) List(ctx context.Context) ([]*model.PartnerOrganization, error) {
	var orgs []*model.PartnerOrganization
	if err := r.db.WithContext(ctx).Order("display_name").Find(&orgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, nil
}

// ListAccepting returns active organizations that currently take applications.
func (r *OrganizationRepository) ListAccepting(ctx context.Context) ([]*model.PartnerOrganization, error) {
	var orgs []*model.PartnerOrganization
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND is_accepting = ?", true, true).
		Order("display_name").
		Find(&orgs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list accepting organizations: %w", err)
	}
	return orgs, nil
}
