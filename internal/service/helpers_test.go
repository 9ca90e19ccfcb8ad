package service_test

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/datara/scholarhub/internal/database/dbtest"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
	"github.com/datara/scholarhub/internal/service"
)

func newStore(t *testing.T) (*gorm.DB, repository.Store) {
	t.Helper()
	db := dbtest.New(t)
	return db, repository.NewStore(db)
}

func actorFor(org *model.PartnerOrganization) service.Actor {
	return service.Actor{AdminID: uuid.New(), PartnerOrgID: org.ID}
}

func count(t *testing.T, db *gorm.DB, m interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := db.Model(m)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("counting: %v", err)
	}
	return n
}
