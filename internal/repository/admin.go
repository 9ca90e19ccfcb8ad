// internal/repository/admin.go
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AdminRepositoryIface interface {
	Create(ctx context.Context, admin *model.Admin) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error)
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	FindActiveByEmail(ctx context.Context, email string) (*model.Admin, error)
	SaveCredential(ctx context.Context, cred *model.AdminCredential) error
	FindCredential(ctx context.Context, adminID uuid.UUID) (*model.AdminCredential, error)
	TouchCredential(ctx context.Context, adminID uuid.UUID, at time.Time) error
}

type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	admin.Email = strings.ToLower(strings.TrimSpace(admin.Email))
	if err := r.db.WithContext(ctx).Create(admin).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrEmailAlreadyExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).Preload("PartnerOrganization").First(&admin, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &admin, nil
}

// FindActiveByEmail only matches an active admin whose organization is also active.
func (r *AdminRepository) FindActiveByEmail(ctx context.Context, email string) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.WithContext(ctx).
		Joins("PartnerOrganization").
		Where("admins.email = ? AND admins.is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		Where(`"PartnerOrganization"."is_active" = ?`, true).
		First(&admin).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to find admin: %w", err)
	}
	return &admin, nil
}

// SaveCredential inserts or replaces the admin's password hash.
func (r *AdminRepository) SaveCredential(ctx context.Context, cred *model.AdminCredential) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "admin_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(cred).Error
	if err != nil {
		return fmt.Errorf("failed to save admin credential: %w", err)
	}
	return nil
}

func (r *AdminRepository) FindCredential(ctx context.Context, adminID uuid.UUID) (*model.AdminCredential, error) {
	var cred model.AdminCredential
	if err := r.db.WithContext(ctx).First(&cred, "admin_id = ?", adminID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find admin credential: %w", err)
	}
	return &cred, nil
}

func (r *AdminRepository) TouchCredential(ctx context.Context, adminID uuid.UUID, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.AdminCredential{}).
		Where("admin_id = ?", adminID).
		Update("last_used_at", at).Error
	if err != nil {
		return fmt.Errorf("failed to update admin credential: %w", err)
	}
	return nil
}
