package repository

import (
	"context"
	"fmt"

	"github.com/datara/scholarhub/internal/model"
	"gorm.io/gorm"
)

type JobRepositoryIface interface {
	Create(ctx context.Context, job *model.Job) error
	ListByScholar(ctx context.Context, scholarID string) ([]*model.Job, error)
	CountByScholar(ctx context.Context, scholarID string) (int64, error)
}

type JobRepository struct {
	db *gorm.DB
}

func NewJobRepository(db *gorm.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *model.Job) error {
	if err := r.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

func (r *JobRepository) ListByScholar(ctx context.Context, scholarID string) ([]*model.Job, error) {
	var jobs []*model.Job
	if err := r.db.WithContext(ctx).Where("scholar_id = ?", scholarID).Order("created_at DESC").Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	return jobs, nil
}

func (r *JobRepository) CountByScholar(ctx context.Context, scholarID string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Job{}).Where("scholar_id = ?", scholarID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jobs: %w", err)
	}
	return count, nil
}
