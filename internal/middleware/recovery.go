// In: internal/middleware/recovery.go

package middleware

import (
	"net/http"

	"go.uber.org/zap"
)

func RecoverPanic(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic while serving request",
						zap.Any("panic", err),
						zap.String("path", r.URL.Path),
						zap.Stack("stack"))

					w.Header().Set("Connection", "close")
					writeError(w, http.StatusInternalServerError, "Something went wrong on our end.")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
