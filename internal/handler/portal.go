package handler

import (
	"net/http"

	"github.com/datara/scholarhub/internal/model"
	"github.com/datara/scholarhub/internal/service"
)

type MoAResponse struct {
	BaseResponse
	Moa *model.MoaSubmission `json:"moa"`
}

type ProfileResponse struct {
	BaseResponse
	Application *model.Application `json:"application"`
}

type CertificationResponse struct {
	BaseResponse
	Certification *model.Certification `json:"certification"`
}

type JobResponse struct {
	BaseResponse
	Job *model.Job `json:"job"`
}

// PortalHandler serves scholars and approved applicants. The subject id in
// the access token is the only identity it trusts.
type PortalHandler struct {
	portal *service.PortalService
	review *service.ReviewService
}

func NewPortalHandler(portal *service.PortalService, review *service.ReviewService) *PortalHandler {
	return &PortalHandler{portal: portal, review: review}
}

func (h *PortalHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	dashboard, err := h.portal.Dashboard(r.Context(), claims.Role, claims.SubjectID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, dashboard)
}

func (h *PortalHandler) SubmitMoA(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	var input service.MoAInput
	if !decodeJSON(w, r, &input) {
		return
	}

	moa, err := h.review.SubmitMoA(r.Context(), claims.SubjectID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, MoAResponse{BaseResponse{Ok: true}, moa})
}

func (h *PortalHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	var input service.ProfileInput
	if !decodeJSON(w, r, &input) {
		return
	}

	app, err := h.portal.UpdateProfile(r.Context(), claims.SubjectID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ProfileResponse{BaseResponse{Ok: true}, app})
}

func (h *PortalHandler) ListCertifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	certs, err := h.portal.ListCertifications(r.Context(), claims.SubjectID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, certs)
}

func (h *PortalHandler) AddCertification(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	var input service.CertificationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	cert, err := h.portal.AddCertification(r.Context(), claims.SubjectID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, CertificationResponse{BaseResponse{Ok: true}, cert})
}

func (h *PortalHandler) DeleteCertification(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.portal.DeleteCertification(r.Context(), claims.SubjectID, id); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *PortalHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}

	jobs, err := h.portal.ListJobs(r.Context(), claims.SubjectID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, jobs)
}

func (h *PortalHandler) ReportJob(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	var input service.JobInput
	if !decodeJSON(w, r, &input) {
		return
	}

	job, err := h.portal.ReportJob(r.Context(), claims.SubjectID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, JobResponse{BaseResponse{Ok: true}, job})
}
