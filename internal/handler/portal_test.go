package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/database/dbtest"
	"github.com/datara/scholarhub/internal/model"
)

func TestPortalRoutes_Scholar(t *testing.T) {
	s := newServer(t)

	app := dbtest.Application(t, s.db, s.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, s.db, app)
	moa := dbtest.Moa(t, s.db, approved, model.MoaApproved)
	scholar := dbtest.Scholar(t, s.db, app, moa.ID, true)
	token := s.token(t, scholar.ID, auth.RoleScholar, s.org.ID.String())

	rec := s.do(t, http.MethodGet, "/api/portal/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	assert.Equal(t, "scholar", body["role"])
	assert.Equal(t, s.org.DisplayName, body["organization_name"])

	rec = s.do(t, http.MethodPost, "/api/portal/certifications", token, map[string]interface{}{
		"name":                 "Data Analytics",
		"issuing_organization": "Example Academy",
		"issue_month":          3,
		"issue_year":           2025,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	certID := decode(t, rec)["certification"].(map[string]interface{})["id"].(string)

	rec = s.do(t, http.MethodPost, "/api/portal/certifications", token, map[string]interface{}{
		"name":                 "Time Traveller",
		"issuing_organization": "Example Academy",
		"issue_month":          1,
		"issue_year":           1900,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/portal/jobs", token, map[string]interface{}{
		"job_title": "Junior Data Analyst",
		"company":   "Example Corp",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/portal/jobs", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Junior Data Analyst")

	rec = s.do(t, http.MethodPut, "/api/portal/profile", token, map[string]string{
		"country":               "Philippines",
		"state_region_province": "Davao",
		"city":                  "Davao City",
		"postal_code":           "8000",
		"education_status":      "CURRENTLY_ENROLLED",
		"institution_name":      "Example State University",
		"institution_country":   "Philippines",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	profile := decode(t, rec)["application"].(map[string]interface{})
	assert.Equal(t, "Davao City", profile["city"])

	rec = s.do(t, http.MethodDelete, "/api/portal/certifications/"+certID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodDelete, "/api/portal/certifications/"+certID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPortalRoutes_ApprovedApplicant(t *testing.T) {
	s := newServer(t)

	app := dbtest.Application(t, s.db, s.org.ID, model.ApplicationApproved)
	approved := dbtest.ApprovedApplicant(t, s.db, app)
	token := s.token(t, approved.ID, auth.RoleApprovedApplicant, s.org.ID.String())

	rec := s.do(t, http.MethodGet, "/api/portal/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "NOT_SUBMITTED", decode(t, rec)["moa_status"])

	rec = s.do(t, http.MethodPost, "/api/portal/moa", token, map[string]interface{}{
		"digital_signature": "Maria Santos",
		"agreed_terms":      true,
		"agreed_commitment": true,
		"agreed_conduct":    true,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "agreed_data_privacy")

	moa := map[string]interface{}{
		"digital_signature":   "Maria Santos",
		"agreed_terms":        true,
		"agreed_commitment":   true,
		"agreed_conduct":      true,
		"agreed_data_privacy": true,
	}
	rec = s.do(t, http.MethodPost, "/api/portal/moa", token, moa)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "SUBMITTED", decode(t, rec)["moa"].(map[string]interface{})["status"])

	rec = s.do(t, http.MethodPost, "/api/portal/moa", token, moa)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/portal/dashboard", token, nil)
	assert.Equal(t, "SUBMITTED", decode(t, rec)["moa_status"])
}
