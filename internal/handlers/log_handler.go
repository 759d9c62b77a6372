package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// FrontendLogPayload is a log line reported by the browser.
type FrontendLogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Context any    `json:"context,omitempty"`
}

// LogFrontendEvent writes client logs into the server log at the reported level.
func LogFrontendEvent(logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload FrontendLogPayload
		if !decodeJSON(w, r, &payload) {
			return
		}

		fields := []zap.Field{
			zap.String("source", "client"),
			zap.Any("context", payload.Context),
		}
		switch strings.ToLower(payload.Level) {
		case "error":
			logger.Error(payload.Message, fields...)
		case "warn", "warning":
			logger.Warn(payload.Message, fields...)
		case "debug":
			logger.Debug(payload.Message, fields...)
		default:
			logger.Info(payload.Message, fields...)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}
