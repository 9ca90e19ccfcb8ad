package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/database/dbtest"
	"github.com/datara/scholarhub/internal/handler"
	"github.com/datara/scholarhub/internal/lookup"
	"github.com/datara/scholarhub/internal/middleware"
	"github.com/datara/scholarhub/internal/mocks"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/repository"
	"github.com/datara/scholarhub/internal/service"
	"github.com/datara/scholarhub/internal/session"
)

const testSecret = "handler-test-secret-of-sufficient-length"

type server struct {
	router   http.Handler
	db       *gorm.DB
	tokens   *auth.TokenManager
	notifier *mocks.MockNotifier
	provider *mocks.MockCredentialProvider
	org      *model.PartnerOrganization
}

type serverOption func(*handler.RateLimits)

func withLoginLimit(n int) serverOption {
	return func(l *handler.RateLimits) { l.LoginLimit = n }
}

func newServer(t *testing.T, opts ...serverOption) *server {
	t.Helper()

	db := dbtest.New(t)
	store := repository.NewStore(db)
	ctrl := gomock.NewController(t)
	notifier := mocks.NewMockNotifier(ctrl)
	provider := mocks.NewMockCredentialProvider(ctrl)

	sessions := session.NewMemoryStore(time.Minute)
	t.Cleanup(sessions.Close)

	tokens := auth.NewTokenManager(testSecret, time.Hour)
	identity := service.NewIdentityService(store, provider, tokens, sessions, time.Hour)
	intake := service.NewIntakeService(store, sessions, notifier, service.IntakeConfig{
		DraftTTL:       72 * time.Hour,
		OTPTTL:         10 * time.Minute,
		OTPMaxAttempts: 3,
		MinimumAge:     16,
	})
	review := service.NewReviewService(store, notifier, "https://scholars.example.org")
	portal := service.NewPortalService(store)
	// Nothing listens here; university lookups fall back.
	lookups := lookup.NewService("http://127.0.0.1:1", 200*time.Millisecond, sessions, time.Hour)

	limits := handler.RateLimits{
		Limiter:    middleware.NewMemoryLimiter(),
		LoginLimit: 100,
		OTPLimit:   100,
		Window:     time.Minute,
	}
	for _, opt := range opts {
		opt(&limits)
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Mount("/api", handler.APIRoutes(handler.Handlers{
		Public: handler.NewPublicHandler(store.Organizations(), lookups),
		Apply:  handler.NewApplyHandler(intake),
		Auth:   handler.NewAuthHandler(identity),
		Admin:  handler.NewAdminHandler(review),
		Portal: handler.NewPortalHandler(portal, review),
	}, tokens, limits))

	return &server{
		router:   r,
		db:       db,
		tokens:   tokens,
		notifier: notifier,
		provider: provider,
		org:      dbtest.Organization(t, db),
	}
}

func (s *server) token(t *testing.T, subjectID string, role auth.Role, orgID string) string {
	t.Helper()
	token, _, err := s.tokens.Generate(subjectID, role, orgID, "someone@example.org")
	require.NoError(t, err)
	return token
}

func (s *server) adminToken(t *testing.T) string {
	t.Helper()
	admin := dbtest.Admin(t, s.db, s.org.ID)
	return s.token(t, admin.ID.String(), auth.RoleAdmin, s.org.ID.String())
}

// do sends body as JSON unless it is a string, which is sent verbatim.
func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}

	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}
