package handlers

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/dtos"
	"github.com/iyunix/finsarthi/internal/services/advice"
)

// AdviceHandler serves the onboarding wizard, the question tree and the
// stored advice sessions.
type AdviceHandler struct {
	Advice *advice.Service
	Logger *zap.Logger
}

func NewAdviceHandler(svc *advice.Service, logger *zap.Logger) *AdviceHandler {
	return &AdviceHandler{Advice: svc, Logger: logger}
}

func (h *AdviceHandler) Steps(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dtos.StepsResponseDTO{Steps: advice.Steps()})
}

// ValidateStep always answers 200 for a known step; the verdict is in the body.
func (h *AdviceHandler) ValidateStep(w http.ResponseWriter, r *http.Request) {
	var req dtos.ValidateStepRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	value, err := advice.ValidateStep(req.Step, string(req.Value))
	var vErr *advice.ValidationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, dtos.ValidateStepResponseDTO{Valid: true, Value: value})
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusOK, dtos.ValidateStepResponseDTO{Valid: false, Error: vErr.Message})
	default:
		h.fail(w, "validate_step", err)
	}
}

func (h *AdviceHandler) SubmitWizard(w http.ResponseWriter, r *http.Request) {
	var answers advice.Answers
	if !decodeJSON(w, r, &answers) {
		return
	}
	session, err := h.Advice.SubmitWizard(r.Context(), optionalUser(r), answers)
	if err != nil {
		h.fail(w, "submit_wizard", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *AdviceHandler) Tree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Advice.Tree())
}

func (h *AdviceHandler) SubmitTree(w http.ResponseWriter, r *http.Request) {
	var sub advice.TreeSubmission
	if !decodeJSON(w, r, &sub) {
		return
	}
	session, err := h.Advice.SubmitTree(r.Context(), optionalUser(r), sub)
	if err != nil {
		h.fail(w, "submit_tree", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *AdviceHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	sessions, err := h.Advice.ListSessions(r.Context(), userID)
	if err != nil {
		h.fail(w, "list_sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *AdviceHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.Advice.GetSession(r.Context(), mux.Vars(r)["key"], optionalUser(r))
	if err != nil {
		h.fail(w, "get_session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AdviceHandler) ClaimSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	session, err := h.Advice.ClaimSession(r.Context(), mux.Vars(r)["key"], userID)
	if err != nil {
		h.fail(w, "claim_session", err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *AdviceHandler) fail(w http.ResponseWriter, op string, err error) {
	var vErr *advice.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeJSON(w, http.StatusBadRequest, dtos.ErrorResponse{Error: vErr.Message, Details: []string{vErr.Field}})
	case errors.Is(err, advice.ErrUnknownStep), errors.Is(err, advice.ErrUnknownPath):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, advice.ErrSessionNotFound):
		writeError(w, "Advice session not found", http.StatusNotFound)
	case errors.Is(err, advice.ErrSessionClaimed):
		writeError(w, "Advice session already belongs to another user", http.StatusConflict)
	case errors.Is(err, advice.ErrGenerationFailed):
		h.Logger.Warn("advice generation failed", zap.String("op", op), zap.Error(err))
		writeError(w, "Could not generate advice right now, please try again", http.StatusBadGateway)
	default:
		h.Logger.Error("advice request failed", zap.String("op", op), zap.Error(err))
		writeError(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}
