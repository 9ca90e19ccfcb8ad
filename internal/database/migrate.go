package database

import (
	"context"
	"fmt"

	"github.com/datara/scholarhub/internal/model"
	"gorm.io/gorm"
)

// indexes holds DDL that gorm tags cannot express. Statements must be valid
// on both postgres and sqlite.
var indexes = []string{
	// At most one open application per email and organization.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_applications_open_email
		ON applications (partner_org_id, lower(email))
		WHERE status IN ('PENDING', 'APPROVED')`,
	`CREATE INDEX IF NOT EXISTS idx_certifications_issued
		ON certifications (scholar_id, issue_year DESC, issue_month DESC)`,
}

// Migrate creates or updates every table and index.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto-migrating models: %w", err)
	}
	return EnsureIndexes(ctx, db)
}

func EnsureIndexes(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range indexes {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("creating index: %w", err)
		}
	}
	return nil
}
