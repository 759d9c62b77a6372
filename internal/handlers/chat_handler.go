// File: internal/handlers/chat_handler.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/dtos"
	"github.com/iyunix/finsarthi/internal/services/matching"
)

// ChatHandler serves coach discovery, chat requests and chat messages.
type ChatHandler struct {
	Matching     *matching.Service
	PollInterval time.Duration
	Logger       *zap.Logger
}

func NewChatHandler(svc *matching.Service, pollInterval time.Duration, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{Matching: svc, PollInterval: pollInterval, Logger: logger}
}

func (h *ChatHandler) ListCoaches(w http.ResponseWriter, r *http.Request) {
	coaches, err := h.Matching.ListAvailableCoaches(r.Context())
	if err != nil {
		h.fail(w, "list coaches", err)
		return
	}
	writeJSON(w, http.StatusOK, coaches)
}

func (h *ChatHandler) SetAvailability(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dtos.AvailabilityRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.IsAvailable == nil {
		writeError(w, "is_available is required", http.StatusBadRequest)
		return
	}
	if err := h.Matching.SetCoachAvailability(r.Context(), userID, *req.IsAvailable); err != nil {
		h.fail(w, "set availability", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_available": *req.IsAvailable})
}

// CreateRequest answers 201 for a new request and 200 when the pair
// already had an active one.
func (h *ChatHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dtos.CreateChatRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CoachID == 0 {
		writeError(w, "coach_id is required", http.StatusBadRequest)
		return
	}

	chatReq, created, err := h.Matching.CreateChatRequest(r.Context(), userID, req.CoachID)
	if err != nil {
		h.fail(w, "create chat request", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, dtos.CreateChatResponseDTO{Request: *chatReq, Created: created})
}

// MyRequests lists the customer's requests with a hint telling the client
// whether to poll again.
func (h *ChatHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	reqs, err := h.Matching.GetChatRequestsForCustomer(r.Context(), userID)
	if err != nil {
		h.fail(w, "list customer requests", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MyRequestsResponseDTO{
		Requests:            reqs,
		Poll:                matching.HasPending(reqs),
		PollIntervalSeconds: int(h.PollInterval / time.Second),
	})
}

func (h *ChatHandler) IncomingRequests(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	reqs, err := h.Matching.GetChatRequestsForCoach(r.Context(), userID)
	if err != nil {
		h.fail(w, "list coach requests", err)
		return
	}
	writeJSON(w, http.StatusOK, reqs)
}

func (h *ChatHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid chat request ID", http.StatusBadRequest)
		return
	}
	var req dtos.UpdateStatusRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.Matching.UpdateChatRequestStatus(r.Context(), userID, requestID, req.Status)
	if err != nil {
		h.fail(w, "update chat request", err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// ActiveSession answers 204 when the user has no accepted chat.
func (h *ChatHandler) ActiveSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	session, err := h.Matching.GetActiveChatSession(r.Context(), userID)
	if err != nil {
		h.fail(w, "active session", err)
		return
	}
	if session == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *ChatHandler) Unread(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	n, err := h.Matching.GetUnreadMessageCountForUser(r.Context(), userID)
	if err != nil {
		h.fail(w, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.UnreadResponseDTO{Unread: n})
}

func (h *ChatHandler) GetMessages(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid chat request ID", http.StatusBadRequest)
		return
	}
	msgs, err := h.Matching.GetMessagesForChat(r.Context(), userID, requestID)
	if err != nil {
		h.fail(w, "get messages", err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid chat request ID", http.StatusBadRequest)
		return
	}
	var req dtos.SendMessageRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	msg, err := h.Matching.SendMessage(r.Context(), userID, requestID, req.Content)
	if err != nil {
		h.fail(w, "send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID, err := pathID(r)
	if err != nil {
		writeError(w, "Invalid chat request ID", http.StatusBadRequest)
		return
	}
	n, err := h.Matching.MarkMessagesAsRead(r.Context(), userID, requestID)
	if err != nil {
		h.fail(w, "mark read", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.MarkReadResponseDTO{Marked: n})
}

// fail maps matching errors to status codes. Unknown errors are logged
// and answered with 500.
func (h *ChatHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, matching.ErrRequestNotFound):
		writeError(w, "Chat request not found", http.StatusNotFound)
	case errors.Is(err, matching.ErrCoachNotFound):
		writeError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, matching.ErrNotParticipant),
		errors.Is(err, matching.ErrForbidden),
		errors.Is(err, matching.ErrNotCustomer),
		errors.Is(err, matching.ErrNotCoach):
		writeError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, matching.ErrInvalidTransition),
		errors.Is(err, matching.ErrCoachUnavailable),
		errors.Is(err, matching.ErrChatNotActive):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, matching.ErrSelfRequest),
		errors.Is(err, matching.ErrEmptyMessage),
		errors.Is(err, matching.ErrMessageTooLong):
		writeError(w, err.Error(), http.StatusBadRequest)
	default:
		h.Logger.Error("chat operation failed", zap.String("op", op), zap.Error(err))
		writeError(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}
