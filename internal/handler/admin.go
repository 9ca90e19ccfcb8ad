package handler

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/service"
)

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type ApprovalResponse struct {
	BaseResponse
	*service.ApprovalResult
}

type MoAApprovalResponse struct {
	BaseResponse
	*service.MoAApprovalResult
}

type RevisionResponse struct {
	BaseResponse
	*service.RevisionResult
}

type ScholarStatusResponse struct {
	BaseResponse
	*service.ScholarStatusResult
}

type ApplicationResponse struct {
	BaseResponse
	Application *model.Application `json:"application"`
}

// AdminHandler serves the review console. Every route runs behind
// RequireRole(admin); the actor's organization scopes all reads and writes.
type AdminHandler struct {
	review *service.ReviewService
}

func NewAdminHandler(review *service.ReviewService) *AdminHandler {
	return &AdminHandler{review: review}
}

func (h *AdminHandler) actor(w http.ResponseWriter, r *http.Request) (service.Actor, bool) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return service.Actor{}, false
	}
	adminID, err := uuid.Parse(claims.SubjectID)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return service.Actor{}, false
	}
	orgID, err := uuid.Parse(claims.PartnerOrgID)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid token")
		return service.Actor{}, false
	}
	return service.Actor{AdminID: adminID, PartnerOrgID: orgID}, true
}

func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		respondWithError(w, http.StatusNotFound, domain.ErrNotFound.Error())
		return uuid.Nil, false
	}
	return id, true
}

func applicationStatus(w http.ResponseWriter, r *http.Request) (model.ApplicationStatus, bool) {
	raw := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status")))
	switch status := model.ApplicationStatus(raw); status {
	case "", model.ApplicationPending, model.ApplicationApproved, model.ApplicationRejected:
		return status, true
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown status filter")
		return "", false
	}
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	metrics, err := h.review.DashboardMetrics(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, metrics)
}

func (h *AdminHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	status, ok := applicationStatus(w, r)
	if !ok {
		return
	}

	page := pageFrom(r)
	apps, total, err := h.review.ListApplications(r.Context(), actor, status, r.URL.Query().Get("q"), page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{BaseResponse{Ok: true}, apps, total, page.Limit, page.Offset})
}

func (h *AdminHandler) ExportApplications(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	status, ok := applicationStatus(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.review.ExportApplicationsCSV(r.Context(), actor, status, &buf); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="applications.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *AdminHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	app, err := h.review.GetApplication(r.Context(), actor, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ApplicationResponse{BaseResponse{Ok: true}, app})
}

func (h *AdminHandler) ApproveApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	// The approval note is optional.
	var req ReasonRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.review.ApproveApplication(r.Context(), actor, id, req.Reason)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ApprovalResponse{BaseResponse{Ok: true}, result})
}

func (h *AdminHandler) RejectApplication(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.review.RejectApplication(r.Context(), actor, id, req.Reason); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *AdminHandler) ListScholars(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var active *bool
	if raw := r.URL.Query().Get("active"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "active must be true or false")
			return
		}
		active = &v
	}

	page := pageFrom(r)
	scholars, total, err := h.review.ListScholars(r.Context(), actor, active, page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{BaseResponse{Ok: true}, scholars, total, page.Limit, page.Offset})
}

func (h *AdminHandler) ActivateScholar(w http.ResponseWriter, r *http.Request) {
	h.setScholarActive(w, r, true)
}

func (h *AdminHandler) DeactivateScholar(w http.ResponseWriter, r *http.Request) {
	h.setScholarActive(w, r, false)
}

func (h *AdminHandler) setScholarActive(w http.ResponseWriter, r *http.Request, active bool) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	var req ReasonRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.review.SetScholarActive(r.Context(), actor, chi.URLParam(r, "id"), active, req.Reason)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ScholarStatusResponse{BaseResponse{Ok: true}, result})
}

func (h *AdminHandler) ListMoA(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	status := model.MoaStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	switch status {
	case "", model.MoaPending, model.MoaSubmitted, model.MoaApproved:
	default:
		respondWithError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}

	page := pageFrom(r)
	items, total, err := h.review.ListMoASubmissions(r.Context(), actor, status, page)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ListResponse{BaseResponse{Ok: true}, items, total, page.Limit, page.Offset})
}

func (h *AdminHandler) ApproveMoA(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	result, err := h.review.ApproveMoA(r.Context(), actor, id)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, MoAApprovalResponse{BaseResponse{Ok: true}, result})
}

func (h *AdminHandler) RequestMoARevision(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}
	var req ReasonRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.review.RequestMoARevision(r.Context(), actor, id, req.Reason)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RevisionResponse{BaseResponse{Ok: true}, result})
}
