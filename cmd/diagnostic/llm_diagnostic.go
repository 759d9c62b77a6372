// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/iyunix/finsarthi/internal/config"
	"github.com/iyunix/finsarthi/internal/services"
	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/prompts"
)

// Sends one translation prompt through the configured AI gateway and prints
// the answer, to check keys, base URL and model name before deploying.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	aiCfg := ai.DefaultConfig()
	aiCfg.APIKey = cfg.AIAPIKey
	aiCfg.BaseURL = cfg.AIBaseURL
	aiCfg.ChatModel = cfg.AIChatModel
	aiCfg.Timeout = cfg.AITimeout

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var provider ai.Provider
	if cfg.AIProvider == "gemini" {
		provider, err = ai.NewGeminiProvider(ctx, aiCfg)
		if err != nil {
			log.Fatalf("gemini: %v", err)
		}
	} else {
		provider = ai.NewOpenAIProvider(aiCfg)
	}

	gateway, err := ai.NewGateway(provider, aiCfg, services.NewLogger("diagnostic"))
	if err != nil {
		log.Fatalf("gateway: %v", err)
	}

	catalog, err := prompts.Default()
	if err != nil {
		log.Fatalf("prompts: %v", err)
	}
	msgs, err := catalog.Render(prompts.KeyTranslate, map[string]any{
		"Language": prompts.LanguageName("en"),
		"Term":     "compound interest",
	})
	if err != nil {
		log.Fatalf("render: %v", err)
	}

	fmt.Printf("provider=%s model=%s\n", gateway.ProviderName(), aiCfg.ChatModel)
	start := time.Now()
	reply, err := gateway.Complete(ctx, msgs, "en")
	if err != nil {
		fmt.Fprintf(os.Stderr, "completion failed after %s: %v\n", time.Since(start).Round(time.Millisecond), err)
		os.Exit(1)
	}
	fmt.Printf("answered in %s:\n%s\n", time.Since(start).Round(time.Millisecond), reply)
}
