package advice

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/iyunix/finsarthi/internal/services/prompts"
)

// Answer types shared by the linear wizard and the question tree.
const (
	TypeText   = "text"
	TypeNumber = "number"
	TypeSelect = "select"
)

// Linear wizard step keys, in order.
const (
	StepLanguage = "language"
	StepIncome   = "income"
	StepExpenses = "expenses"
	StepGoals    = "goals"
	StepLiteracy = "literacy"
)

var ErrUnknownStep = errors.New("unknown wizard step")

// ValidationError names the field that failed.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type Step struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Type    string   `json:"type"`
	Options []string `json:"options,omitempty"`
}

var literacyLevels = []string{"beginner", "intermediate", "advanced"}

var steps = []Step{
	{Key: StepLanguage, Title: "Which language should we use?", Type: TypeSelect, Options: prompts.Languages()},
	{Key: StepIncome, Title: "What is your monthly income (₹)?", Type: TypeNumber},
	{Key: StepExpenses, Title: "What are your monthly expenses (₹)?", Type: TypeNumber},
	{Key: StepGoals, Title: "What are your financial goals?", Type: TypeText},
	{Key: StepLiteracy, Title: "How would you rate your financial knowledge?", Type: TypeSelect, Options: literacyLevels},
}

// Steps returns the linear wizard in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// ValidateStep checks one answer and returns it trimmed.
func ValidateStep(step, value string) (string, error) {
	for _, s := range steps {
		if s.Key == step {
			return validateAnswer(s.Key, s.Type, s.Options, value)
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStep, step)
}

func validateAnswer(field, typ string, options []string, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", &ValidationError{Field: field, Message: "is required"}
	}

	switch typ {
	case TypeNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return "", &ValidationError{Field: field, Message: "must be a number"}
		}
		if n < 0 {
			return "", &ValidationError{Field: field, Message: "must not be negative"}
		}
	case TypeSelect:
		for _, opt := range options {
			if value == opt {
				return value, nil
			}
		}
		return "", &ValidationError{Field: field, Message: fmt.Sprintf("must be one of %s", strings.Join(options, ", "))}
	}
	return value, nil
}
