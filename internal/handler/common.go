package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	chmw "github.com/go-chi/chi/v5/middleware"

	"github.com/datara/scholarhub/internal/auth"
	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/middleware"
	"github.com/datara/scholarhub/internal/repository"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

type ErrorResponse struct { // TypeGen: ErrorResponse
	BaseResponse
	Error     string            `json:"error"`
	Fields    map[string]string `json:"fields,omitempty"`
	Code      *string           `json:"error_code,omitempty"`
	ScholarID string            `json:"scholar_id,omitempty"`
}

type BaseResponse struct { // TypeGen: DefaultResponse
	Ok bool `json:"ok"`
}

type ListResponse struct {
	BaseResponse
	Items  interface{} `json:"items"`
	Total  int64       `json:"total"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// respondWithError sends an error response with a message
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithCode(w http.ResponseWriter, status int, code, message string) {
	respondWithJSON(w, status, ErrorResponse{Error: message, Code: &code})
}

// respondWithJSON sends a JSON response
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// respondWithServiceError maps service errors onto status codes. Anything
// unrecognised is logged and reported as a generic 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation *domain.ValidationError
		already    *domain.AlreadyScholarError
	)

	switch {
	case errors.As(err, &validation):
		respondWithJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Fields: validation.Fields})
	case errors.As(err, &already):
		code := "already_scholar"
		respondWithJSON(w, http.StatusConflict, ErrorResponse{
			Error:     "You are already a scholar. Sign in with your scholar id.",
			Code:      &code,
			ScholarID: already.ScholarID,
		})

	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrInvalidIDFormat),
		errors.Is(err, domain.ErrReasonRequired),
		errors.Is(err, domain.ErrUnderage),
		errors.Is(err, domain.ErrEmailLocked),
		errors.Is(err, domain.ErrOTPInvalid),
		errors.Is(err, domain.ErrOTPNotIssued):
		respondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrSessionExpired),
		errors.Is(err, domain.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, domain.ErrForbidden):
		respondWithError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrOrganizationNotFound),
		errors.Is(err, domain.ErrDraftNotFound),
		errors.Is(err, domain.ErrApplicationNotFound),
		errors.Is(err, domain.ErrApprovedApplicantNotFound),
		errors.Is(err, domain.ErrMoANotFound),
		errors.Is(err, domain.ErrScholarNotFound),
		errors.Is(err, domain.ErrCertificationNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, domain.ErrAlreadyScholar):
		respondWithCode(w, http.StatusConflict, "already_scholar", err.Error())
	case errors.Is(err, domain.ErrDuplicateApplication),
		errors.Is(err, domain.ErrOrganizationNotAccepting),
		errors.Is(err, domain.ErrStepOutOfOrder),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrMoAAlreadySubmitted):
		respondWithError(w, http.StatusConflict, err.Error())

	case errors.Is(err, domain.ErrDraftExpired),
		errors.Is(err, domain.ErrOTPExpired):
		respondWithError(w, http.StatusGone, err.Error())

	case errors.Is(err, domain.ErrTooManyAttempts):
		respondWithError(w, http.StatusTooManyRequests, err.Error())

	case errors.Is(err, domain.ErrNotificationFailed):
		respondWithError(w, http.StatusBadGateway, "We could not send the verification email. Please try again.")

	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func claimsFrom(w http.ResponseWriter, r *http.Request) (*auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Not authenticated")
	}
	return claims, ok
}

// pageFrom reads limit and offset query parameters.
func pageFrom(r *http.Request) repository.Page {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}
	return repository.Page{Limit: limit, Offset: offset}
}
