// File: internal/services/ai/interface.go
package ai

import "context"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry of a completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionProvider turns a message list into generated text. An empty
// string with a nil error means the model produced nothing.
type CompletionProvider interface {
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}

// SpeechProvider synthesizes audio for text.
type SpeechProvider interface {
	Speak(ctx context.Context, text string) ([]byte, error)
}

// Provider is a hosted model backend.
type Provider interface {
	CompletionProvider
	SpeechProvider
	Name() string
}
