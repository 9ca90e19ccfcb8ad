package handler

import (
	"log/slog"
	"net/http"

	chmw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/lookup"
	"github.com/datara/scholarhub/internal/repository"
)

type OrganizationResponse struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
}

// PublicHandler serves the unauthenticated reference data behind the
// application form.
type PublicHandler struct {
	orgs   repository.OrganizationRepositoryIface
	lookup *lookup.Service
}

func NewPublicHandler(orgs repository.OrganizationRepositoryIface, lookupService *lookup.Service) *PublicHandler {
	return &PublicHandler{orgs: orgs, lookup: lookupService}
}

// Organizations lists the organizations currently accepting applications.
func (h *PublicHandler) Organizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.orgs.ListAccepting(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list organizations", "error", err, "requestID", chmw.GetReqID(r.Context()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list organizations")
		return
	}

	items := make([]OrganizationResponse, 0, len(orgs))
	for _, org := range orgs {
		items = append(items, OrganizationResponse{ID: org.ID, DisplayName: org.DisplayName})
	}
	respondWithJSON(w, http.StatusOK, items)
}

func (h *PublicHandler) Countries(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.lookup.Countries())
}

func (h *PublicHandler) Provinces(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.lookup.Provinces(r.URL.Query().Get("country")))
}

// Universities never fails; an unavailable directory yields a fallback list.
func (h *PublicHandler) Universities(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, h.lookup.Universities(r.Context(), r.URL.Query().Get("country")))
}
