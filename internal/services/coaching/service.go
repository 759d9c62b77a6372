// Package coaching holds the stateless AI features: the money-coach chat,
// news summaries, term explanations and speech.
package coaching

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/prompts"
)

const (
	maxBatchConcurrency = 4
	maxHistory          = 20
	maxBatchArticles    = 10
)

var (
	// ErrGenerationFailed wraps gateway errors so callers can answer 502.
	ErrGenerationFailed = errors.New("the AI service could not answer")
	ErrEmptyInput       = errors.New("input is required")
	ErrTooManyArticles  = fmt.Errorf("at most %d articles can be summarized at once", maxBatchArticles)
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Gateway is the subset of ai.Gateway used here.
type Gateway interface {
	Complete(ctx context.Context, messages []ai.Message, language string) (string, error)
	Speak(ctx context.Context, text string) (string, error)
}

// Turn is one entry of a coaching conversation supplied by the client.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Article struct {
	Title  string `json:"title"`
	Source string `json:"source,omitempty"`
	Body   string `json:"body"`
}

type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}

type Service struct {
	gateway Gateway
	catalog *prompts.Catalog
	logger  Logger
}

func NewService(gateway Gateway, catalog *prompts.Catalog, logger Logger) *Service {
	return &Service{gateway: gateway, catalog: catalog, logger: logger}
}

// Reply answers the last user turn of history. Gateway failures are logged
// and answered with the apology text so the chat never breaks.
func (s *Service) Reply(ctx context.Context, history []Turn, language string) (string, error) {
	language = normalizeLanguage(language)

	msgs, err := s.catalog.Render(prompts.KeyCoachChat, map[string]any{
		"Language": prompts.LanguageName(language),
	})
	if err != nil {
		return "", err
	}

	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	var lastUser bool
	for _, t := range history {
		content := strings.TrimSpace(t.Content)
		if content == "" {
			continue
		}
		role := ai.RoleUser
		if t.Role == ai.RoleAssistant {
			role = ai.RoleAssistant
		}
		msgs = append(msgs, ai.Message{Role: role, Content: content})
		lastUser = role == ai.RoleUser
	}
	if !lastUser {
		return "", ErrEmptyInput
	}

	reply, err := s.gateway.Complete(ctx, msgs, language)
	if err != nil {
		s.logger.Warn("coach reply failed, sending apology", "language", language, "error", err)
		return ai.Apology(language), nil
	}
	return reply, nil
}

// Summarize condenses one article in the requested language.
func (s *Service) Summarize(ctx context.Context, article Article, language string) (string, error) {
	if strings.TrimSpace(article.Body) == "" {
		return "", ErrEmptyInput
	}
	language = normalizeLanguage(language)

	msgs, err := s.catalog.Render(prompts.KeyNewsSummary, map[string]any{
		"Language": prompts.LanguageName(language),
		"Title":    strings.TrimSpace(article.Title),
		"Source":   strings.TrimSpace(article.Source),
		"Body":     strings.TrimSpace(article.Body),
	})
	if err != nil {
		return "", err
	}
	return s.complete(ctx, msgs, language, "news_summary")
}

// SummarizeBatch summarizes articles concurrently and keeps their order.
// The first failure cancels the rest.
func (s *Service) SummarizeBatch(ctx context.Context, articles []Article, language string) ([]Summary, error) {
	if len(articles) == 0 {
		return nil, ErrEmptyInput
	}
	if len(articles) > maxBatchArticles {
		return nil, ErrTooManyArticles
	}

	out := make([]Summary, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxBatchConcurrency)
	for i, a := range articles {
		g.Go(func() error {
			text, err := s.Summarize(gctx, a, language)
			if err != nil {
				return fmt.Errorf("article %d: %w", i+1, err)
			}
			out[i] = Summary{Title: a.Title, Summary: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Translate explains a financial term in plain words.
func (s *Service) Translate(ctx context.Context, term, language string) (string, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return "", ErrEmptyInput
	}
	language = normalizeLanguage(language)

	msgs, err := s.catalog.Render(prompts.KeyTranslate, map[string]any{
		"Language": prompts.LanguageName(language),
		"Term":     term,
	})
	if err != nil {
		return "", err
	}
	return s.complete(ctx, msgs, language, "translate")
}

// Speak returns base64 audio for text.
func (s *Service) Speak(ctx context.Context, text string) (string, error) {
	audio, err := s.gateway.Speak(ctx, text)
	if err != nil {
		if ai.IsValidation(err) || errors.Is(err, ai.ErrUnsupported) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return audio, nil
}

func (s *Service) complete(ctx context.Context, msgs []ai.Message, language, feature string) (string, error) {
	text, err := s.gateway.Complete(ctx, msgs, language)
	if err != nil {
		s.logger.Error("completion failed", "feature", feature, "error", err)
		return "", fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}
	return text, nil
}

func normalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if !prompts.SupportedLanguage(code) {
		return "en"
	}
	return code
}
