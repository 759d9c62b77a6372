// File: internal/domain/advice_session.go
package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FormData holds the wizard answers. Stored as a JSON text column.
type FormData map[string]string

func (f FormData) Value() (driver.Value, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *FormData) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*f = FormData{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("form data: unsupported column type %T", src)
	}
	out := FormData{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("form data: %w", err)
	}
	*f = out
	return nil
}

// AdviceSession is one completed wizard run and the advice generated for it.
type AdviceSession struct {
	ID              uint      `json:"-" gorm:"primaryKey"`
	SessionKey      string    `json:"session_key" gorm:"size:36;not null;uniqueIndex"`
	UserID          *uint     `json:"user_id,omitempty" gorm:"index"` // nil until claimed
	PromptKey       string    `json:"prompt_key" gorm:"size:64;not null"`
	FormData        FormData  `json:"form_data,omitempty" gorm:"type:text;not null"`
	Language        string    `json:"language" gorm:"size:8;not null"`
	GeneratedAdvice string    `json:"generated_advice" gorm:"type:text;not null"`
	CreatedAt       time.Time `json:"created_at"`
}
