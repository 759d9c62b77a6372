// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

type Config struct {
	APIKey  string
	BaseURL string

	ChatModel   string
	SpeechModel string
	SpeechVoice string

	Timeout     time.Duration
	Temperature float32
	TopP        float32
	MaxTokens   int
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if c.ChatModel == "" {
		return fmt.Errorf("chat model is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		ChatModel:   "gpt-4o-mini",
		SpeechModel: "tts-1",
		SpeechVoice: "alloy",
		Timeout:     60 * time.Second,
		Temperature: 0.7,
		TopP:        1,
		MaxTokens:   1200,
	}
}
