package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iyunix/finsarthi/internal/config"
	"github.com/iyunix/finsarthi/internal/database"
	"github.com/iyunix/finsarthi/internal/handlers"
	"github.com/iyunix/finsarthi/internal/ratelimit"
	adviceRepo "github.com/iyunix/finsarthi/internal/repository/advice"
	"github.com/iyunix/finsarthi/internal/repository/chat"
	"github.com/iyunix/finsarthi/internal/repository/user"
	"github.com/iyunix/finsarthi/internal/services"
	"github.com/iyunix/finsarthi/internal/services/advice"
	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/coaching"
	"github.com/iyunix/finsarthi/internal/services/matching"
	"github.com/iyunix/finsarthi/internal/services/prompts"
	"github.com/iyunix/finsarthi/internal/services/user_services"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := services.NewLogger("finsarthi-api")
	defer func() { _ = logger.Sync() }()
	z := logger.Zap()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()
	if err := database.Migrate(db); err != nil {
		return err
	}

	// --- Repositories ---
	users := user.NewGormUserRepository(db)
	var chats chat.ChatRepository
	if cfg.ChatStore == "database" {
		chats = chat.NewChatRepository(db)
	} else {
		chats = chat.NewMemoryChatRepository()
	}

	// --- Services ---
	gateway, err := newGateway(cmd.Context(), cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize AI gateway: %w", err)
	}
	catalog, err := prompts.Default()
	if err != nil {
		return err
	}
	tree, err := advice.LoadTree()
	if err != nil {
		return err
	}
	adviceService, err := advice.NewService(adviceRepo.NewAdviceRepository(db), gateway, catalog, tree, logger)
	if err != nil {
		return err
	}
	coachingService := coaching.NewService(gateway, catalog, logger)
	matchingService := matching.NewService(chats, users, logger)
	authService := user_services.NewAuthService(users, cfg.SigningKey(), claimAdvice(adviceService), logger)

	aiLimiter := ratelimit.NewStore(ratelimit.DefaultAIConfig(cfg.RateLimitPerMinute))
	defer aiLimiter.Close()
	authLimiter := ratelimit.NewStore(ratelimit.DefaultAuthConfig())
	defer authLimiter.Close()

	// --- Router Setup ---
	router := handlers.NewRouter(handlers.RouterConfig{
		Auth:           handlers.NewAuthHandler(authService, cfg.IsProduction(), z),
		Chat:           handlers.NewChatHandler(matchingService, cfg.PollInterval, z),
		AI:             handlers.NewAIHandler(coachingService, z),
		Advice:         handlers.NewAdviceHandler(adviceService, z),
		JWTSecret:      cfg.SigningKey(),
		AllowedOrigins: cfg.AllowedOrigins,
		AILimiter:      aiLimiter,
		AuthLimiter:    authLimiter,
		Logger:         z,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		z.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("ai_provider", gateway.ProviderName()),
			zap.String("chat_store", cfg.ChatStore))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server startup failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	z.Info("shutting down server gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	z.Info("server stopped")
	return nil
}

func newGateway(ctx context.Context, cfg *config.Config, logger ai.Logger) (*ai.Gateway, error) {
	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.AIAPIKey
	aiCfg.BaseURL = cfg.AIBaseURL
	aiCfg.ChatModel = cfg.AIChatModel
	aiCfg.SpeechModel = cfg.AISpeechModel
	aiCfg.SpeechVoice = cfg.AISpeechVoice
	aiCfg.Temperature = cfg.AITemperature
	aiCfg.Timeout = cfg.AITimeout

	var provider ai.Provider
	switch cfg.AIProvider {
	case "gemini":
		p, err := ai.NewGeminiProvider(ctx, aiCfg)
		if err != nil {
			return nil, err
		}
		provider = p
	default:
		provider = ai.NewOpenAIProvider(aiCfg)
	}
	return ai.NewGateway(provider, aiCfg, logger)
}

// claimAdvice lets signup and login attach an anonymous advice session.
func claimAdvice(svc *advice.Service) user_services.ClaimFunc {
	return func(ctx context.Context, sessionKey string, userID uint) error {
		_, err := svc.ClaimSession(ctx, sessionKey, userID)
		return err
	}
}
