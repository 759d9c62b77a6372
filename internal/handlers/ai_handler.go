package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/dtos"
	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/coaching"
)

// AIHandler exposes the stateless coaching features.
type AIHandler struct {
	Coaching *coaching.Service
	Logger   *zap.Logger
}

func NewAIHandler(svc *coaching.Service, logger *zap.Logger) *AIHandler {
	return &AIHandler{Coaching: svc, Logger: logger}
}

func (h *AIHandler) Coach(w http.ResponseWriter, r *http.Request) {
	var req dtos.CoachRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	reply, err := h.Coaching.Reply(r.Context(), req.Messages, req.Language)
	if err != nil {
		h.fail(w, "coach", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.TextResponseDTO{Text: reply})
}

// News summarizes one article, or a batch when "articles" is set.
func (h *AIHandler) News(w http.ResponseWriter, r *http.Request) {
	var req dtos.NewsRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}

	if len(req.Articles) > 0 {
		summaries, err := h.Coaching.SummarizeBatch(r.Context(), req.Articles, req.Language)
		if err != nil {
			h.fail(w, "news_batch", err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
		return
	}
	if req.Article == nil {
		writeError(w, "article or articles is required", http.StatusBadRequest)
		return
	}

	summary, err := h.Coaching.Summarize(r.Context(), *req.Article, req.Language)
	if err != nil {
		h.fail(w, "news", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.TextResponseDTO{Text: summary})
}

func (h *AIHandler) Translate(w http.ResponseWriter, r *http.Request) {
	var req dtos.TranslateRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	text, err := h.Coaching.Translate(r.Context(), req.Term, req.Language)
	if err != nil {
		h.fail(w, "translate", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.TextResponseDTO{Text: text})
}

func (h *AIHandler) Speech(w http.ResponseWriter, r *http.Request) {
	var req dtos.SpeechRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	audio, err := h.Coaching.Speak(r.Context(), req.Text)
	if err != nil {
		h.fail(w, "speech", err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.SpeechResponseDTO{Audio: audio, Format: "mp3"})
}

func (h *AIHandler) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, coaching.ErrEmptyInput), errors.Is(err, coaching.ErrTooManyArticles):
		writeError(w, err.Error(), http.StatusBadRequest)
	case ai.IsValidation(err):
		var aiErr *ai.AIError
		errors.As(err, &aiErr)
		writeError(w, aiErr.Message, http.StatusBadRequest)
	case errors.Is(err, ai.ErrUnsupported):
		writeError(w, "This feature is not available with the configured AI provider", http.StatusNotImplemented)
	case errors.Is(err, coaching.ErrGenerationFailed):
		h.Logger.Warn("ai request failed", zap.String("op", op), zap.Error(err))
		writeError(w, "The AI service is unavailable, please try again", http.StatusBadGateway)
	default:
		h.Logger.Error("ai request failed", zap.String("op", op), zap.Error(err))
		writeError(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}
