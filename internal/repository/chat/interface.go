package chat

import (
	"context"
	"errors"
	"time"

	"github.com/iyunix/finsarthi/internal/domain"
)

var (
	ErrRequestNotFound = errors.New("chat request not found")
	// ErrStatusChanged means a compare-and-set lost against a concurrent update.
	ErrStatusChanged = errors.New("chat request status changed concurrently")
)

// ChatRepository stores chat requests and the messages exchanged in them.
type ChatRepository interface {
	// FindOrCreateActive returns the active request for the pair, or inserts a
	// pending one. Lookup and insert are atomic.
	FindOrCreateActive(ctx context.Context, customerID, coachID uint, now time.Time) (*domain.ChatRequest, bool, error)
	FindByID(ctx context.Context, requestID uint) (*domain.ChatRequest, error)
	FindByCoach(ctx context.Context, coachID uint) ([]domain.ChatRequest, error)
	FindByCustomer(ctx context.Context, customerID uint) ([]domain.ChatRequest, error)
	// UpdateStatus moves a request from one status to another, failing with
	// ErrStatusChanged when the stored status is no longer from.
	UpdateStatus(ctx context.Context, requestID uint, from, to domain.ChatRequestStatus, now time.Time) (*domain.ChatRequest, error)
	// LatestAccepted returns nil, nil when the user has no accepted chat.
	LatestAccepted(ctx context.Context, userID uint) (*domain.ChatRequest, error)

	CreateMessage(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error)
	FindMessages(ctx context.Context, requestID uint) ([]domain.ChatMessage, error)
	MarkRead(ctx context.Context, requestID, readerID uint) (int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
}
