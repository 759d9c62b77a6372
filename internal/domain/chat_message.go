// File: internal/domain/chat_message.go
package domain

import "time"

// ChatMessage is a single message exchanged inside an accepted chat request.
type ChatMessage struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	ChatRequestID uint      `json:"chat_request_id" gorm:"not null;index"`
	SenderID      uint      `json:"sender_id" gorm:"not null;index"`
	Content       string    `json:"content" gorm:"type:text;not null"`
	IsRead        bool      `json:"is_read" gorm:"not null;default:false;index"`
	CreatedAt     time.Time `json:"created_at"`
}
