// File: internal/domain/chat_request.go
package domain

import "time"

type ChatRequestStatus string

const (
	StatusPending  ChatRequestStatus = "pending"
	StatusAccepted ChatRequestStatus = "accepted"
	StatusDeclined ChatRequestStatus = "declined"
	StatusClosed   ChatRequestStatus = "closed"
)

// IsActive reports whether the request still occupies its (customer, coach) slot.
func (s ChatRequestStatus) IsActive() bool {
	return s == StatusPending || s == StatusAccepted
}

func (s ChatRequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusDeclined, StatusClosed:
		return true
	}
	return false
}

// ChatAction is what a participant does to a request.
type ChatAction string

const (
	ActionAccept  ChatAction = "accept"
	ActionDecline ChatAction = "decline"
	ActionClose   ChatAction = "close"
)

var chatTransitions = map[ChatRequestStatus]map[ChatAction]ChatRequestStatus{
	StatusPending: {
		ActionAccept:  StatusAccepted,
		ActionDecline: StatusDeclined,
	},
	StatusAccepted: {
		ActionClose: StatusClosed,
	},
}

// Transition looks up (current, action) in the transition table.
func Transition(current ChatRequestStatus, action ChatAction) (ChatRequestStatus, bool) {
	next, ok := chatTransitions[current][action]
	return next, ok
}

// ActionFor maps a requested target status back to the action producing it.
func ActionFor(target ChatRequestStatus) (ChatAction, bool) {
	switch target {
	case StatusAccepted:
		return ActionAccept, true
	case StatusDeclined:
		return ActionDecline, true
	case StatusClosed:
		return ActionClose, true
	}
	return "", false
}

// ChatRequest is a customer's request to talk to a coach.
type ChatRequest struct {
	ID         uint              `json:"id" gorm:"primaryKey"`
	CustomerID uint              `json:"customer_id" gorm:"not null;index"`
	CoachID    uint              `json:"coach_id" gorm:"not null;index"`
	Status     ChatRequestStatus `json:"status" gorm:"size:16;not null;index"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func (r *ChatRequest) Involves(userID uint) bool {
	return r.CustomerID == userID || r.CoachID == userID
}

// PartnerOf returns the other participant's id.
func (r *ChatRequest) PartnerOf(userID uint) uint {
	if r.CustomerID == userID {
		return r.CoachID
	}
	return r.CustomerID
}
