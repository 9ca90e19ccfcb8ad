package handler

import (
	"log/slog"
	"net/http"

	chmw "github.com/go-chi/chi/v5/middleware"

	"github.com/datara/scholarhub/internal/service"
)

type AuthHandler struct {
	identity *service.IdentityService
}

func NewAuthHandler(identity *service.IdentityService) *AuthHandler {
	return &AuthHandler{identity: identity}
}

type AdminLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// KnowledgeLoginRequest signs in a scholar (SCH id) or an approved applicant
// (APP id). None of these fields is secret; the route is rate limited.
type KnowledgeLoginRequest struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Birthdate string `json:"birthdate"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	BaseResponse
	*service.Session
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.identity.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		slog.InfoContext(r.Context(), "Admin login failed", "requestID", chmw.GetReqID(r.Context()))
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LoginResponse{BaseResponse{Ok: true}, sess})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req KnowledgeLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.identity.KnowledgeLogin(r.Context(), req.ID, req.Email, req.Birthdate)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LoginResponse{BaseResponse{Ok: true}, sess})
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.identity.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, LoginResponse{BaseResponse{Ok: true}, sess})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.identity.Logout(r.Context(), req.RefreshToken); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}
