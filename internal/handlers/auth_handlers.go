// File: internal/handlers/auth_handlers.go
package handlers

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/dtos"
	"github.com/iyunix/finsarthi/internal/middleware"
	"github.com/iyunix/finsarthi/internal/services/user_services"
)

// AuthHandler holds the dependencies for authentication handlers.
type AuthHandler struct {
	Users        user_services.UserServiceInterface
	SecureCookie bool
	Logger       *zap.Logger
}

func NewAuthHandler(users user_services.UserServiceInterface, secureCookie bool, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: users, SecureCookie: secureCookie, Logger: logger}
}

// Signup creates an account and, when advice_session_key is given, attaches
// that anonymous advice session to it.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var in user_services.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.Users.Signup(r.Context(), in)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, authResponse(res))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in user_services.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}

	res, err := h.Users.Login(r.Context(), in)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	h.setCookie(w, res.Token)
	writeJSON(w, http.StatusOK, authResponse(res))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	u, err := h.Users.Profile(r.Context(), userID)
	if errors.Is(err, user_services.ErrUserNotFound) {
		writeError(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("profile lookup failed", zap.Uint("user_id", userID), zap.Error(err))
		writeError(w, "Could not load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dtos.FromDomain(*u))
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, user_services.ErrInvalidSignup):
		writeError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, user_services.ErrUserExists):
		writeError(w, err.Error(), http.StatusConflict)
	case errors.Is(err, user_services.ErrInvalidCredentials):
		writeError(w, "Invalid email, phone or password", http.StatusUnauthorized)
	default:
		h.Logger.Error("auth request failed", zap.Error(err))
		writeError(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}

func (h *AuthHandler) setCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Expires:  time.Now().Add(24 * time.Hour),
		HttpOnly: true,
		Secure:   h.SecureCookie,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
	})
}

func authResponse(res *user_services.AuthResult) dtos.AuthResponseDTO {
	return dtos.AuthResponseDTO{
		User:                 dtos.FromDomain(*res.User),
		Token:                res.Token,
		ClaimedAdviceSession: res.Claimed,
	}
}
