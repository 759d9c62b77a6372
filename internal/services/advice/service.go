// Package advice runs the onboarding wizard and the question tree and turns
// the answers into persisted, model-generated advice.
package advice

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/iyunix/finsarthi/internal/domain"
	adviceRepo "github.com/iyunix/finsarthi/internal/repository/advice"
	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/prompts"
)

var (
	ErrSessionNotFound = adviceRepo.ErrSessionNotFound
	ErrSessionClaimed  = adviceRepo.ErrSessionClaimed
	// ErrGenerationFailed wraps model errors so callers can answer 502.
	ErrGenerationFailed = errors.New("could not generate advice")
)

type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Completer is the part of the AI gateway the wizard needs.
type Completer interface {
	Complete(ctx context.Context, messages []ai.Message, language string) (string, error)
}

// Session is an advice session as returned to clients.
type Session struct {
	domain.AdviceSession
	AdviceHTML string `json:"advice_html"`
}

// TreeSubmission is one completed pass through the question tree.
type TreeSubmission struct {
	Path     []string `json:"path"`
	Answers  Answers  `json:"answers"`
	Language string   `json:"language"`
}

type labeledAnswer struct {
	Label string
	Value string
}

type Service struct {
	repo    adviceRepo.AdviceRepository
	ai      Completer
	catalog *prompts.Catalog
	tree    *Tree
	md      goldmark.Markdown
	logger  Logger
	newKey  func() string
}

func NewService(repo adviceRepo.AdviceRepository, completer Completer, catalog *prompts.Catalog, tree *Tree, logger Logger) (*Service, error) {
	for _, leaf := range tree.Leaves() {
		if !catalog.Has(leaf.PromptKey) {
			return nil, fmt.Errorf("question %q uses unknown prompt %q", leaf.ID, leaf.PromptKey)
		}
	}
	return &Service{
		repo:    repo,
		ai:      completer,
		catalog: catalog,
		tree:    tree,
		md:      goldmark.New(goldmark.WithExtensions(extension.GFM)),
		logger:  logger,
		newKey:  func() string { return uuid.NewString() },
	}, nil
}

func (s *Service) Tree() *Tree { return s.tree }

// SubmitWizard validates the five linear steps and generates advice. The
// stored form data holds only the business answers; language is kept apart.
func (s *Service) SubmitWizard(ctx context.Context, userID *uint, answers map[string]string) (*Session, error) {
	clean := make(map[string]string, len(steps))
	for _, step := range steps {
		v, err := ValidateStep(step.Key, answers[step.Key])
		if err != nil {
			return nil, err
		}
		clean[step.Key] = v
	}
	language := clean[StepLanguage]
	delete(clean, StepLanguage)

	msgs, err := s.catalog.Render(prompts.KeyBasicAdvice, map[string]any{
		"Language": prompts.LanguageName(language),
		"Income":   clean[StepIncome],
		"Expenses": clean[StepExpenses],
		"Goals":    clean[StepGoals],
		"Literacy": clean[StepLiteracy],
	})
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, userID, prompts.KeyBasicAdvice, clean, language, msgs)
}

// SubmitTree validates the answers for the leaf at sub.Path and generates advice.
func (s *Service) SubmitTree(ctx context.Context, userID *uint, sub TreeSubmission) (*Session, error) {
	language, err := ValidateStep(StepLanguage, sub.Language)
	if err != nil {
		return nil, err
	}
	leaf, err := s.tree.Leaf(sub.Path)
	if err != nil {
		return nil, err
	}
	clean, err := leaf.ValidateAnswers(sub.Answers)
	if err != nil {
		return nil, err
	}

	labeled := make([]labeledAnswer, 0, len(leaf.Questions))
	for _, q := range leaf.Questions {
		labeled = append(labeled, labeledAnswer{Label: q.Label, Value: clean[q.ID]})
	}
	msgs, err := s.catalog.Render(leaf.PromptKey, map[string]any{
		"Language": prompts.LanguageName(language),
		"Topic":    leaf.Title,
		"Answers":  labeled,
	})
	if err != nil {
		return nil, err
	}
	return s.generate(ctx, userID, leaf.PromptKey, clean, language, msgs)
}

func (s *Service) generate(ctx context.Context, userID *uint, promptKey string, form map[string]string, language string, msgs []ai.Message) (*Session, error) {
	text, err := s.ai.Complete(ctx, msgs, language)
	if err != nil {
		s.logger.Error("advice generation failed", "prompt_key", promptKey, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	session, err := s.repo.Create(ctx, &domain.AdviceSession{
		SessionKey:      s.newKey(),
		UserID:          userID,
		PromptKey:       promptKey,
		FormData:        domain.FormData(form),
		Language:        language,
		GeneratedAdvice: text,
	})
	if err != nil {
		s.logger.Error("failed to store advice session", "prompt_key", promptKey, "error", err)
		return nil, err
	}

	s.logger.Info("advice session created",
		"session_key", session.SessionKey,
		"prompt_key", promptKey,
		"language", language,
		"anonymous", userID == nil)
	return s.render(session), nil
}

// ClaimSession attaches an anonymous session to userID.
func (s *Service) ClaimSession(ctx context.Context, sessionKey string, userID uint) (*Session, error) {
	session, err := s.repo.Claim(ctx, sessionKey, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("advice session claimed", "session_key", sessionKey, "user_id", userID)
	return s.render(session), nil
}

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID uint) ([]Session, error) {
	sessions, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(sessions))
	for i := range sessions {
		out = append(out, *s.render(&sessions[i]))
	}
	return out, nil
}

// GetSession returns the session behind sessionKey. Once a session is
// claimed, only its owner sees the owner id and the form answers.
func (s *Service) GetSession(ctx context.Context, sessionKey string, viewer *uint) (*Session, error) {
	session, err := s.repo.FindByKey(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if session.UserID != nil && (viewer == nil || *viewer != *session.UserID) {
		session.UserID = nil
		session.FormData = nil
	}
	return s.render(session), nil
}

func (s *Service) render(session *domain.AdviceSession) *Session {
	var buf bytes.Buffer
	if err := s.md.Convert([]byte(session.GeneratedAdvice), &buf); err != nil {
		s.logger.Warn("markdown conversion failed", "session_key", session.SessionKey, "error", err)
		buf.Reset()
	}
	return &Session{AdviceSession: *session, AdviceHTML: buf.String()}
}
