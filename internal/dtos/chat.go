package dtos

import (
	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/services/matching"
)

type CreateChatRequestDTO struct {
	CoachID uint `json:"coach_id"`
}

type CreateChatResponseDTO struct {
	Request domain.ChatRequest `json:"request"`
	Created bool               `json:"created"`
}

type UpdateStatusRequestDTO struct {
	Status domain.ChatRequestStatus `json:"status"`
}

// MyRequestsResponseDTO tells the client whether it should keep polling.
type MyRequestsResponseDTO struct {
	Requests            []matching.OutgoingRequest `json:"requests"`
	Poll                bool                       `json:"poll"`
	PollIntervalSeconds int                        `json:"poll_interval_seconds"`
}

type SendMessageRequestDTO struct {
	Content string `json:"content"`
}

type UnreadResponseDTO struct {
	Unread int64 `json:"unread"`
}

type MarkReadResponseDTO struct {
	Marked int64 `json:"marked"`
}
