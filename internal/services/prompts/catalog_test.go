package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/finsarthi/internal/services/ai"
)

func TestDefaultCatalogHasWellKnownKeys(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	for _, key := range []string{KeyCoachChat, KeyNewsSummary, KeyTranslate, KeyBasicAdvice} {
		assert.True(t, c.Has(key), key)
	}
}

func TestRenderBasicAdvice(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	msgs, err := c.Render(KeyBasicAdvice, map[string]any{
		"Language": "Hindi",
		"Income":   "5000",
		"Expenses": "3000",
		"Goals":    "retirement",
		"Literacy": "beginner",
	})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, ai.RoleSystem, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "Reply in Hindi")
	assert.Equal(t, ai.RoleUser, msgs[1].Role)
	assert.Contains(t, msgs[1].Content, "₹5000")
	assert.Contains(t, msgs[1].Content, "retirement")
}

func TestRenderSystemOnlyPrompt(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	msgs, err := c.Render(KeyCoachChat, map[string]any{"Language": "Tamil"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "Tamil")
}

func TestRenderMissingFieldFails(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Render(KeyTranslate, map[string]any{"Language": "English"})
	require.Error(t, err)
}

func TestRenderUnknownKey(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Render("nope", nil)
	assert.ErrorIs(t, err, ErrUnknownPrompt)
}

func TestParseRejectsEntryWithoutSystem(t *testing.T) {
	_, err := Parse([]byte("x:\n  user: hello\n"))
	require.Error(t, err)
}

func TestLanguageName(t *testing.T) {
	assert.Equal(t, "Marathi", LanguageName("mr"))
	assert.Equal(t, "English", LanguageName("zz"))
	assert.True(t, SupportedLanguage("bn"))
	assert.False(t, SupportedLanguage("fr"))
	assert.Len(t, Languages(), 7)
}
