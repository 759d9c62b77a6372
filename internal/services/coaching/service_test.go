package coaching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/iyunix/finsarthi/internal/services/ai"
	"github.com/iyunix/finsarthi/internal/services/prompts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type stubGateway struct {
	mu       sync.Mutex
	complete func(msgs []ai.Message) (string, error)
	calls    [][]ai.Message
	langs    []string

	inFlight    int32
	maxInFlight int32

	audio    string
	speakErr error
}

func (g *stubGateway) Complete(_ context.Context, msgs []ai.Message, language string) (string, error) {
	n := atomic.AddInt32(&g.inFlight, 1)
	defer atomic.AddInt32(&g.inFlight, -1)
	for {
		peak := atomic.LoadInt32(&g.maxInFlight)
		if n <= peak || atomic.CompareAndSwapInt32(&g.maxInFlight, peak, n) {
			break
		}
	}

	g.mu.Lock()
	g.calls = append(g.calls, msgs)
	g.langs = append(g.langs, language)
	g.mu.Unlock()
	return g.complete(msgs)
}

func (g *stubGateway) Speak(context.Context, string) (string, error) {
	return g.audio, g.speakErr
}

func newTestService(t *testing.T, g *stubGateway) *Service {
	t.Helper()
	catalog, err := prompts.Default()
	require.NoError(t, err)
	return NewService(g, catalog, nopLogger{})
}

func TestReplyBuildsConversation(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "Start with a budget.", nil }}
	svc := newTestService(t, g)

	got, err := svc.Reply(context.Background(), []Turn{
		{Role: "user", Content: "I earn 20000 a month"},
		{Role: "assistant", Content: "Great, what do you spend?"},
		{Role: "user", Content: "About 15000"},
	}, "hi")
	require.NoError(t, err)
	assert.Equal(t, "Start with a budget.", got)

	require.Len(t, g.calls, 1)
	msgs := g.calls[0]
	require.Len(t, msgs, 4)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Hindi")
	assert.Equal(t, ai.RoleAssistant, msgs[2].Role)
	assert.Equal(t, "hi", g.langs[0])
}

func TestReplyFallsBackToApologyOnGatewayError(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "", errors.New("rate limited") }}
	svc := newTestService(t, g)

	got, err := svc.Reply(context.Background(), []Turn{{Role: "user", Content: "hello"}}, "bn")
	require.NoError(t, err)
	assert.Equal(t, ai.Apology("bn"), got)
}

func TestReplyNeedsAUserTurnLast(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "x", nil }}
	svc := newTestService(t, g)

	_, err := svc.Reply(context.Background(), nil, "en")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.Reply(context.Background(), []Turn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}}, "en")
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.Empty(t, g.calls)
}

func TestReplyUnknownLanguageUsesEnglish(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "ok", nil }}
	svc := newTestService(t, g)

	_, err := svc.Reply(context.Background(), []Turn{{Role: "user", Content: "hi"}}, "fr")
	require.NoError(t, err)
	assert.Equal(t, "en", g.langs[0])
}

func TestSummarizeWrapsGatewayErrors(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "", errors.New("boom") }}
	svc := newTestService(t, g)

	_, err := svc.Summarize(context.Background(), Article{Title: "RBI holds repo rate", Body: "The RBI kept rates unchanged."}, "en")
	assert.ErrorIs(t, err, ErrGenerationFailed)

	_, err = svc.Summarize(context.Background(), Article{Title: "empty"}, "en")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSummarizeBatchKeepsOrderAndLimitsConcurrency(t *testing.T) {
	g := &stubGateway{complete: func(msgs []ai.Message) (string, error) {
		time.Sleep(10 * time.Millisecond)
		user := msgs[len(msgs)-1].Content
		for i := 0; i < 8; i++ {
			if strings.Contains(user, fmt.Sprintf("Title: headline %d\n", i)) {
				return fmt.Sprintf("summary %d", i), nil
			}
		}
		return "", errors.New("unexpected prompt")
	}}
	svc := newTestService(t, g)

	articles := make([]Article, 8)
	for i := range articles {
		articles[i] = Article{Title: fmt.Sprintf("headline %d", i), Source: "Mint", Body: "body"}
	}

	got, err := svc.SummarizeBatch(context.Background(), articles, "en")
	require.NoError(t, err)
	require.Len(t, got, 8)
	for i, s := range got {
		assert.Equal(t, fmt.Sprintf("headline %d", i), s.Title)
		assert.Equal(t, fmt.Sprintf("summary %d", i), s.Summary)
	}
	assert.LessOrEqual(t, atomic.LoadInt32(&g.maxInFlight), int32(maxBatchConcurrency))
}

func TestSummarizeBatchLimits(t *testing.T) {
	svc := newTestService(t, &stubGateway{complete: func([]ai.Message) (string, error) { return "x", nil }})

	_, err := svc.SummarizeBatch(context.Background(), nil, "en")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = svc.SummarizeBatch(context.Background(), make([]Article, maxBatchArticles+1), "en")
	assert.ErrorIs(t, err, ErrTooManyArticles)
}

func TestTranslate(t *testing.T) {
	g := &stubGateway{complete: func([]ai.Message) (string, error) { return "महंगाई", nil }}
	svc := newTestService(t, g)

	got, err := svc.Translate(context.Background(), " inflation ", "hi")
	require.NoError(t, err)
	assert.Equal(t, "महंगाई", got)
	assert.Contains(t, g.calls[0][1].Content, `"inflation"`)

	_, err = svc.Translate(context.Background(), "", "hi")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestSpeak(t *testing.T) {
	svc := newTestService(t, &stubGateway{audio: "SUQz"})
	got, err := svc.Speak(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "SUQz", got)

	svc = newTestService(t, &stubGateway{speakErr: ai.ErrUnsupported})
	_, err = svc.Speak(context.Background(), "hello")
	assert.ErrorIs(t, err, ai.ErrUnsupported)

	svc = newTestService(t, &stubGateway{speakErr: errors.New("500 from provider")})
	_, err = svc.Speak(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrGenerationFailed)
}
