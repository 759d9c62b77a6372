// File: internal/services/ai/gateway.go
package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"time"
)

// Logger defines the logging interface used by the gateway.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

const maxSpeechChars = 4096

var apologies = map[string]string{
	"en": "Sorry, I couldn't come up with an answer right now. Please try again in a moment.",
	"hi": "क्षमा करें, मैं अभी उत्तर नहीं दे पाया। कृपया थोड़ी देर बाद फिर से प्रयास करें।",
	"mr": "क्षमस्व, मला आत्ता उत्तर देता आले नाही. कृपया थोड्या वेळाने पुन्हा प्रयत्न करा.",
	"gu": "માફ કરશો, હું હમણાં જવાબ આપી શક્યો નહીં. કૃપા કરીને થોડી વાર પછી ફરી પ્રયાસ કરો.",
	"ta": "மன்னிக்கவும், இப்போது பதில் அளிக்க முடியவில்லை. சிறிது நேரம் கழித்து மீண்டும் முயற்சிக்கவும்.",
	"te": "క్షమించండి, ప్రస్తుతం సమాధానం ఇవ్వలేకపోయాను. దయచేసి కాసేపటి తర్వాత మళ్లీ ప్రయత్నించండి.",
	"bn": "দুঃখিত, এখন উত্তর দিতে পারলাম না। অনুগ্রহ করে একটু পরে আবার চেষ্টা করুন।",
}

// Apology is the text shown instead of an empty model reply.
func Apology(language string) string {
	if msg, ok := apologies[language]; ok {
		return msg
	}
	return apologies["en"]
}

// Gateway is the single entry point for model calls. It applies the per-call
// timeout and substitutes an apology for empty replies. It does not retry.
type Gateway struct {
	provider Provider
	config   *Config
	logger   Logger
}

func NewGateway(provider Provider, config *Config, logger Logger) (*Gateway, error) {
	if provider == nil {
		return nil, NewConfigError("provider is required")
	}
	if err := config.Validate(); err != nil {
		return nil, NewConfigError(err.Error())
	}
	return &Gateway{provider: provider, config: config, logger: logger}, nil
}

// Complete runs a completion. The returned text is never empty when err is nil.
func (g *Gateway) Complete(ctx context.Context, messages []Message, language string) (string, error) {
	if len(messages) == 0 {
		return "", NewValidationError("completion", "at least one message is required")
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	start := time.Now()
	text, err := g.provider.Complete(ctx, g.config.ChatModel, messages)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = &AIError{Type: ErrTypeTimeout, Operation: "completion", Model: g.config.ChatModel,
				Message: "model did not answer in time", Cause: err}
		}
		g.logger.Error("completion failed",
			"provider", g.provider.Name(),
			"model", g.config.ChatModel,
			"error", err)
		return "", err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		g.logger.Warn("completion returned empty reply",
			"provider", g.provider.Name(),
			"model", g.config.ChatModel)
		return Apology(language), nil
	}

	g.logger.Debug("completion finished",
		"provider", g.provider.Name(),
		"duration_ms", time.Since(start).Milliseconds(),
		"chars", len(text))
	return text, nil
}

// Speak synthesizes text and returns the audio as base64.
func (g *Gateway) Speak(ctx context.Context, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NewValidationError("speech", "text is required")
	}
	if len([]rune(text)) > maxSpeechChars {
		return "", NewValidationError("speech", "text is too long for speech synthesis")
	}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	audio, err := g.provider.Speak(ctx, text)
	if err != nil {
		g.logger.Error("speech synthesis failed", "provider", g.provider.Name(), "error", err)
		return "", err
	}
	return base64.StdEncoding.EncodeToString(audio), nil
}

func (g *Gateway) ProviderName() string { return g.provider.Name() }
