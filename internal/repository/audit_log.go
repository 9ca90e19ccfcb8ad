package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/datara/scholarhub/internal/model"
	"gorm.io/gorm"
)

type AuditLogRepositoryIface interface {
	Create(ctx context.Context, log *model.AuditLog) error
	Query(ctx context.Context, params AuditQuery) ([]model.AuditLog, int64, error)
}

// AuditLogRepository handles database operations for audit logs
type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

func (r *AuditLogRepository) Create(ctx context.Context, log *model.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// AuditQuery holds parameters for querying audit logs
type AuditQuery struct {
	Action     string
	ActorID    string
	EntityType string
	EntityID   string
	StartTime  time.Time
	EndTime    time.Time
	Page
}

func (r *AuditLogRepository) Query(ctx context.Context, params AuditQuery) ([]model.AuditLog, int64, error) {
	var logs []model.AuditLog
	var count int64

	query := r.db.WithContext(ctx).Model(&model.AuditLog{})
	if params.Action != "" {
		query = query.Where("action = ?", params.Action)
	}
	if params.ActorID != "" {
		query = query.Where("actor_id = ?", params.ActorID)
	}
	if params.EntityType != "" {
		query = query.Where("entity_type = ?", params.EntityType)
	}
	if params.EntityID != "" {
		query = query.Where("entity_id = ?", params.EntityID)
	}
	if !params.StartTime.IsZero() {
		query = query.Where("timestamp >= ?", params.StartTime)
	}
	if !params.EndTime.IsZero() {
		query = query.Where("timestamp <= ?", params.EndTime)
	}

	if err := query.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	if err := paginate(query, params.Page).Order("timestamp DESC").Find(&logs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to query audit logs: %w", err)
	}
	return logs, count, nil
}
