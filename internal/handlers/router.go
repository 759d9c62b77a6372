package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/middleware"
	"github.com/iyunix/finsarthi/internal/ratelimit"
)

// RouterConfig collects what NewRouter mounts. Nil limiters disable rate
// limiting for their group.
type RouterConfig struct {
	Auth   *AuthHandler
	Chat   *ChatHandler
	AI     *AIHandler
	Advice *AdviceHandler

	JWTSecret      []byte
	AllowedOrigins []string
	AILimiter      *ratelimit.Store
	AuthLimiter    *ratelimit.Store
	Logger         *zap.Logger
}

func NewRouter(cfg RouterConfig) *mux.Router {
	logger := cfg.Logger
	r := mux.NewRouter()
	r.Use(middleware.NewCORS(cfg.AllowedOrigins))
	r.Use(middleware.RecoverPanic(logger))
	r.Use(middleware.LoggingMiddleware(logger))

	requireAuth := middleware.NewJWTMiddleware(cfg.JWTSecret, true, logger)
	optionalAuth := middleware.NewJWTMiddleware(cfg.JWTSecret, false, logger)

	// Preflight requests are answered by CORS before reaching this handler.
	r.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/log", LogFrontendEvent(logger)).Methods(http.MethodPost)

	authRoutes := r.PathPrefix("/api/auth").Subrouter()
	if cfg.AuthLimiter != nil {
		authRoutes.Use(middleware.RateLimitMiddleware(cfg.AuthLimiter, "auth", logger))
	}
	authRoutes.HandleFunc("/signup", cfg.Auth.Signup).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login", cfg.Auth.Login).Methods(http.MethodPost)

	public := r.PathPrefix("/api/advice").Subrouter()
	public.HandleFunc("/steps", cfg.Advice.Steps).Methods(http.MethodGet)
	public.HandleFunc("/steps/validate", cfg.Advice.ValidateStep).Methods(http.MethodPost)
	public.HandleFunc("/tree", cfg.Advice.Tree).Methods(http.MethodGet)

	// --- Optional Auth ---
	optional := r.PathPrefix("/api").Subrouter()
	optional.Use(optionalAuth)
	optional.HandleFunc("/advice", cfg.Advice.SubmitWizard).Methods(http.MethodPost)
	optional.HandleFunc("/advice/tree", cfg.Advice.SubmitTree).Methods(http.MethodPost)
	optional.HandleFunc("/advice/sessions/{key}", cfg.Advice.GetSession).Methods(http.MethodGet)

	aiRoutes := optional.PathPrefix("/ai").Subrouter()
	if cfg.AILimiter != nil {
		aiRoutes.Use(middleware.RateLimitMiddleware(cfg.AILimiter, "ai", logger))
	}
	aiRoutes.HandleFunc("/coach", cfg.AI.Coach).Methods(http.MethodPost)
	aiRoutes.HandleFunc("/news", cfg.AI.News).Methods(http.MethodPost)
	aiRoutes.HandleFunc("/translate", cfg.AI.Translate).Methods(http.MethodPost)
	aiRoutes.HandleFunc("/speech", cfg.AI.Speech).Methods(http.MethodPost)

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(requireAuth)
	api.HandleFunc("/me", cfg.Auth.Me).Methods(http.MethodGet)
	api.HandleFunc("/coaches", cfg.Chat.ListCoaches).Methods(http.MethodGet)
	api.HandleFunc("/chat-requests/{id:[0-9]+}", cfg.Chat.UpdateStatus).Methods(http.MethodPatch)
	api.HandleFunc("/chat-requests/{id:[0-9]+}/messages", cfg.Chat.GetMessages).Methods(http.MethodGet)
	api.HandleFunc("/chat-requests/{id:[0-9]+}/messages", cfg.Chat.SendMessage).Methods(http.MethodPost)
	api.HandleFunc("/chat-requests/{id:[0-9]+}/read", cfg.Chat.MarkRead).Methods(http.MethodPost)
	api.HandleFunc("/chat/active", cfg.Chat.ActiveSession).Methods(http.MethodGet)
	api.HandleFunc("/chat/unread", cfg.Chat.Unread).Methods(http.MethodGet)
	api.HandleFunc("/advice/sessions", cfg.Advice.ListSessions).Methods(http.MethodGet)
	api.HandleFunc("/advice/sessions/{key}/claim", cfg.Advice.ClaimSession).Methods(http.MethodPost)

	customers := api.NewRoute().Subrouter()
	customers.Use(middleware.RequireRole(string(domain.RoleCustomer)))
	customers.HandleFunc("/chat-requests", cfg.Chat.CreateRequest).Methods(http.MethodPost)
	customers.HandleFunc("/chat-requests/mine", cfg.Chat.MyRequests).Methods(http.MethodGet)

	coaches := api.NewRoute().Subrouter()
	coaches.Use(middleware.RequireRole(string(domain.RoleCoach)))
	coaches.HandleFunc("/chat-requests/incoming", cfg.Chat.IncomingRequests).Methods(http.MethodGet)
	coaches.HandleFunc("/me/availability", cfg.Chat.SetAvailability).Methods(http.MethodPut)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Not found", http.StatusNotFound)
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}
