// Package audit records state-changing actions to the audit_logs table.
package audit

import (
	"context"

	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
)

// Actor types
const (
	ActorAdmin     = "admin"
	ActorApplicant = "applicant"
	ActorScholar   = "scholar"
	ActorSystem    = "system"
)

// RequestMeta identifies the HTTP request an action came from.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
}

type metaKey struct{}

// WithRequestMeta attaches request metadata for later audit entries.
func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

// MetaFromContext returns the request metadata, or the zero value.
func MetaFromContext(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(RequestMeta)
	return meta
}

// Entry is a single audited action.
type Entry struct {
	Action     string
	ActorType  string
	ActorID    string
	EntityType string
	EntityID   string
	Details    map[string]interface{}
}

// Logger defines the interface for auditing operations
type Logger interface {
	Record(ctx context.Context, entry Entry) error
}

// RepositoryLogger writes entries through an audit log repository. Build one
// over a transaction's repository to keep the entry in that transaction.
type RepositoryLogger struct {
	repo repository.AuditLogRepositoryIface
}

func NewRepositoryLogger(repo repository.AuditLogRepositoryIface) *RepositoryLogger {
	return &RepositoryLogger{repo: repo}
}

func (l *RepositoryLogger) Record(ctx context.Context, entry Entry) error {
	meta := MetaFromContext(ctx)

	return l.repo.Create(ctx, &model.AuditLog{
		Action:     entry.Action,
		ActorType:  entry.ActorType,
		ActorID:    entry.ActorID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Details:    entry.Details,
		RequestID:  meta.RequestID,
		ClientIP:   meta.ClientIP,
		UserAgent:  meta.UserAgent,
	})
}

// NoOpLogger is a logger that does nothing
type NoOpLogger struct{}

func (NoOpLogger) Record(context.Context, Entry) error { return nil }
