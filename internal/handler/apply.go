package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/datara/scholarhub/internal/domain"
	"github.com/datara/scholarhub/internal/service"
)

// StepRequest carries one wizard step. Step defaults to the draft's current
// step when omitted.
type StepRequest struct {
	Step string          `json:"step,omitempty"`
	Data json.RawMessage `json:"data"`
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type DraftResponse struct {
	BaseResponse
	Draft *service.Draft `json:"draft"`
}

type SubmittedResponse struct {
	BaseResponse
	ApplicationID uuid.UUID `json:"application_id"`
	Status        string    `json:"status"`
	Message       string    `json:"message"`
}

type ApplyHandler struct {
	intake *service.IntakeService
}

func NewApplyHandler(intake *service.IntakeService) *ApplyHandler {
	return &ApplyHandler{intake: intake}
}

func (h *ApplyHandler) Start(w http.ResponseWriter, r *http.Request) {
	draft, err := h.intake.Start(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, DraftResponse{BaseResponse{Ok: true}, draft})
}

func (h *ApplyHandler) Get(w http.ResponseWriter, r *http.Request) {
	draft, err := h.intake.Get(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, DraftResponse{BaseResponse{Ok: true}, draft})
}

func (h *ApplyHandler) Restart(w http.ResponseWriter, r *http.Request) {
	if err := h.intake.Restart(r.Context(), chi.URLParam(r, "draftID")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, BaseResponse{Ok: true})
}

func (h *ApplyHandler) Next(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")

	var req StepRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	input, err := h.stepInput(r, draftID, req, true)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	draft, err := h.intake.Next(r.Context(), draftID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, DraftResponse{BaseResponse{Ok: true}, draft})
}

// Previous accepts an empty body; partial data for the current step is kept
// when sent.
func (h *ApplyHandler) Previous(w http.ResponseWriter, r *http.Request) {
	draftID := chi.URLParam(r, "draftID")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	var input service.StepInput
	if len(bytes.TrimSpace(body)) > 0 {
		var req StepRequest
		if err := json.Unmarshal(body, &req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request payload")
			return
		}
		if input, err = h.stepInput(r, draftID, req, false); err != nil {
			respondWithServiceError(w, r, err)
			return
		}
	}

	draft, err := h.intake.Previous(r.Context(), draftID, input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, DraftResponse{BaseResponse{Ok: true}, draft})
}

// Edit replaces an earlier step's data from the review step.
func (h *ApplyHandler) Edit(w http.ResponseWriter, r *http.Request) {
	step, err := service.ParseStep(chi.URLParam(r, "step"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	input, err := service.NewStepInput(step)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if !decodeJSON(w, r, input) {
		return
	}

	draft, err := h.intake.Edit(r.Context(), chi.URLParam(r, "draftID"), input)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, DraftResponse{BaseResponse{Ok: true}, draft})
}

// Submit sends the verification code for a completed draft.
func (h *ApplyHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, err := h.intake.SubmitForReview(r.Context(), chi.URLParam(r, "draftID"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, DraftResponse{BaseResponse{Ok: true}, draft})
}

func (h *ApplyHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	app, err := h.intake.VerifyOTP(r.Context(), chi.URLParam(r, "draftID"), req.Code)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, SubmittedResponse{
		BaseResponse:  BaseResponse{Ok: true},
		ApplicationID: app.ID,
		Status:        string(app.Status),
		Message:       "Your application has been submitted for review.",
	})
}

// stepInput decodes req.Data into the input type of the requested step.
// strict treats missing data as an empty object so validation reports the
// required fields.
func (h *ApplyHandler) stepInput(r *http.Request, draftID string, req StepRequest, strict bool) (service.StepInput, error) {
	data := bytes.TrimSpace(req.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		if !strict {
			return nil, nil
		}
		data = []byte("{}")
	}

	var step service.Step
	if req.Step == "" {
		draft, err := h.intake.Get(r.Context(), draftID)
		if err != nil {
			return nil, err
		}
		step = draft.Step
	} else {
		parsed, err := service.ParseStep(req.Step)
		if err != nil {
			return nil, err
		}
		step = parsed
	}

	input, err := service.NewStepInput(step)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, input); err != nil {
		return nil, &domain.ValidationError{Fields: map[string]string{"data": "malformed step data"}}
	}
	return input, nil
}
