// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/finsarthi/internal/dtos"
	"github.com/iyunix/finsarthi/internal/middleware"
)

const maxBodyBytes = 1 << 20

var errBadID = errors.New("invalid id")

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, dtos.ErrorResponse{Error: message})
}

// decodeJSON reads a JSON body of at most 1 MiB into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, "Request body is too large", http.StatusRequestEntityTooLarge)
		case errors.Is(err, io.EOF):
			writeError(w, "Request body is required", http.StatusBadRequest)
		default:
			writeError(w, "Invalid request body", http.StatusBadRequest)
		}
		return false
	}
	return true
}

func pathID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, errBadID
	}
	return uint(id), nil
}

// currentUser returns the id set by the JWT middleware. Routes that call it
// are mounted behind the required-auth middleware.
func currentUser(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, "Unauthorized", http.StatusUnauthorized)
	}
	return id, ok
}

// optionalUser returns nil for anonymous callers.
func optionalUser(r *http.Request) *uint {
	if id, ok := middleware.UserIDFromContext(r.Context()); ok {
		return &id
	}
	return nil
}
