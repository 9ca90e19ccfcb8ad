package handler_test

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/datara/scholarhub/internal/database/dbtest"
	"github.com/datara/scholarhub/internal/email"
	"github.com/datara/scholarhub/internal/model"
)

func TestAdminApplicationRoutes(t *testing.T) {
	s := newServer(t)
	token := s.adminToken(t)

	pending := dbtest.Application(t, s.db, s.org.ID, model.ApplicationPending)
	other := dbtest.Application(t, s.db, s.org.ID, model.ApplicationPending)
	foreign := dbtest.Application(t, s.db, dbtest.Organization(t, s.db).ID, model.ApplicationPending)

	t.Run("list filters by status", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/admin/applications?status=pending", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		assert.EqualValues(t, 2, body["total"])
		assert.Len(t, body["items"], 2)

		rec = s.do(t, http.MethodGet, "/api/admin/applications?status=limbo", token, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("detail is scoped to the organization", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/admin/applications/"+pending.ID.String(), token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		app := decode(t, rec)["application"].(map[string]interface{})
		assert.Equal(t, pending.Email, app["email"])

		rec = s.do(t, http.MethodGet, "/api/admin/applications/"+foreign.ID.String(), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/admin/applications/not-a-uuid", token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("approve", func(t *testing.T) {
		s.notifier.EXPECT().Send(gomock.Any(), pending.Email, email.KindApplicationApproved, gomock.Any()).Return(true)

		rec := s.do(t, http.MethodPost, "/api/admin/applications/"+pending.ID.String()+"/approve", token, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		body := decode(t, rec)
		approved := body["approved_applicant"].(map[string]interface{})
		assert.Regexp(t, `^APP\d{8}$`, approved["id"])
		assert.Equal(t, false, body["already_approved"])

		// Rejecting an approved application is not a valid transition.
		rec = s.do(t, http.MethodPost, "/api/admin/applications/"+pending.ID.String()+"/reject", token,
			map[string]string{"reason": "changed my mind"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("reject needs a reason", func(t *testing.T) {
		path := "/api/admin/applications/" + other.ID.String() + "/reject"

		rec := s.do(t, http.MethodPost, path, token, map[string]string{"reason": "   "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPost, path, token, map[string]string{"reason": "incomplete answers"})
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("dashboard", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/admin/dashboard", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		assert.EqualValues(t, 2, body["total_applications"])
		assert.EqualValues(t, 1, body["approved_applications"])
		assert.EqualValues(t, 1, body["rejected_applications"])
	})

	t.Run("export", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/admin/applications/export", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "applications.csv")

		rows, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 3)
	})
}

func TestAdminMoAAndScholarRoutes(t *testing.T) {
	s := newServer(t)
	token := s.adminToken(t)

	app := dbtest.Application(t, s.db, s.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, s.db, app)
	moa := dbtest.Moa(t, s.db, approved, model.MoaSubmitted)

	rec := s.do(t, http.MethodGet, "/api/admin/moa?status=submitted", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = s.do(t, http.MethodPost, "/api/admin/moa/"+moa.ID.String()+"/revision", token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	s.notifier.EXPECT().Send(gomock.Any(), app.Email, email.KindScholarActivated, gomock.Any()).Return(true)
	rec = s.do(t, http.MethodPost, "/api/admin/moa/"+moa.ID.String()+"/approve", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	scholar := decode(t, rec)["scholar"].(map[string]interface{})
	scholarID := scholar["id"].(string)
	assert.Regexp(t, `^SCH\d{8}$`, scholarID)

	rec = s.do(t, http.MethodPost, "/api/admin/scholars/"+scholarID+"/deactivate", token,
		map[string]string{"reason": "left the program"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, true, decode(t, rec)["changed"])

	rec = s.do(t, http.MethodGet, "/api/admin/scholars?active=false", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["total"])

	rec = s.do(t, http.MethodGet, "/api/admin/scholars?active=maybe", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/scholars/SCH99999999/activate", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
