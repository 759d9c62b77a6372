// Package prompts holds the prompt catalog used for every model call.
package prompts

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/iyunix/finsarthi/internal/services/ai"
)

// Well-known catalog keys. Question-tree leaves refer to their own keys.
const (
	KeyCoachChat   = "coach.chat"
	KeyNewsSummary = "news.summary"
	KeyTranslate   = "term.translate"
	KeyBasicAdvice = "advice.basic"
)

//go:embed prompts.yaml
var defaultCatalog []byte

// ErrUnknownPrompt is returned when a key is not in the catalog.
var ErrUnknownPrompt = errors.New("unknown prompt key")

var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
	"gu": "Gujarati",
	"ta": "Tamil",
	"te": "Telugu",
	"bn": "Bengali",
}

// LanguageName maps a language code to the name used inside prompts.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return languageNames["en"]
}

// SupportedLanguage reports whether code is one of the reply languages.
func SupportedLanguage(code string) bool {
	_, ok := languageNames[code]
	return ok
}

// Languages returns the supported language codes in a stable order.
func Languages() []string {
	codes := make([]string, 0, len(languageNames))
	for code := range languageNames {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

type entry struct {
	System string `yaml:"system"`
	User   string `yaml:"user"`
}

type prompt struct {
	system *template.Template
	user   *template.Template
}

// Catalog is an immutable set of parsed prompt templates.
type Catalog struct {
	prompts map[string]prompt
}

// Default parses the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse builds a catalog from YAML. Every entry needs a system template.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]entry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt catalog: %w", err)
	}

	c := &Catalog{prompts: make(map[string]prompt, len(raw))}
	for key, e := range raw {
		if strings.TrimSpace(e.System) == "" {
			return nil, fmt.Errorf("prompt %q: system template is empty", key)
		}
		sys, err := template.New(key + ".system").Option("missingkey=error").Parse(e.System)
		if err != nil {
			return nil, fmt.Errorf("prompt %q: %w", key, err)
		}
		p := prompt{system: sys}
		if strings.TrimSpace(e.User) != "" {
			if p.user, err = template.New(key + ".user").Option("missingkey=error").Parse(e.User); err != nil {
				return nil, fmt.Errorf("prompt %q: %w", key, err)
			}
		}
		c.prompts[key] = p
	}
	return c, nil
}

// Has reports whether key exists.
func (c *Catalog) Has(key string) bool {
	_, ok := c.prompts[key]
	return ok
}

// Keys lists the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.prompts))
	for k := range c.prompts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Render executes the prompt for key. The result starts with the system
// message and, when the entry has one, ends with the user message.
func (c *Catalog) Render(key string, data any) ([]ai.Message, error) {
	p, ok := c.prompts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPrompt, key)
	}

	sys, err := execute(p.system, data)
	if err != nil {
		return nil, err
	}
	msgs := []ai.Message{{Role: ai.RoleSystem, Content: sys}}

	if p.user != nil {
		user, err := execute(p.user, data)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, ai.Message{Role: ai.RoleUser, Content: user})
	}
	return msgs, nil
}

func execute(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return strings.TrimSpace(buf.String()), nil
}
