package matching

import (
	"errors"

	"github.com/iyunix/finsarthi/internal/repository/chat"
)

var (
	ErrRequestNotFound   = chat.ErrRequestNotFound
	ErrCoachNotFound     = errors.New("coach not found")
	ErrCoachUnavailable  = errors.New("coach is not available for new chats")
	ErrSelfRequest       = errors.New("cannot request a chat with yourself")
	ErrInvalidTransition = errors.New("status change not allowed from the current status")
	ErrNotParticipant    = errors.New("user is not a participant of this chat")
	ErrForbidden         = errors.New("only the coach can accept or decline a request")
	ErrNotCustomer       = errors.New("only customers can request a chat")
	ErrNotCoach          = errors.New("only coaches can change availability")
	ErrChatNotActive     = errors.New("chat is not accepted")
	ErrEmptyMessage      = errors.New("message content is required")
	ErrMessageTooLong    = errors.New("message content is too long")
)
