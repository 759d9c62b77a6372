// File: internal/repository/chat/memory_chat_repository.go
package chat

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/iyunix/finsarthi/internal/domain"
)

// memoryChatRepository keeps requests and messages for the lifetime of the
// process. It is not shared between instances.
type memoryChatRepository struct {
	mu            sync.RWMutex
	requests      []*domain.ChatRequest
	messages      []*domain.ChatMessage
	nextRequestID uint
	nextMessageID uint
	now           func() time.Time
}

func NewMemoryChatRepository() ChatRepository {
	return &memoryChatRepository{now: time.Now}
}

func (r *memoryChatRepository) FindOrCreateActive(_ context.Context, customerID, coachID uint, now time.Time) (*domain.ChatRequest, bool, error) {
	if customerID == 0 || coachID == 0 {
		return nil, false, errors.New("invalid customer ID or coach ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.requests) - 1; i >= 0; i-- {
		req := r.requests[i]
		if req.CustomerID == customerID && req.CoachID == coachID && req.Status.IsActive() {
			cp := *req
			return &cp, false, nil
		}
	}

	r.nextRequestID++
	req := &domain.ChatRequest{
		ID:         r.nextRequestID,
		CustomerID: customerID,
		CoachID:    coachID,
		Status:     domain.StatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	r.requests = append(r.requests, req)
	cp := *req
	return &cp, true, nil
}

func (r *memoryChatRepository) FindByID(_ context.Context, requestID uint) (*domain.ChatRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req := r.lookup(requestID)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	cp := *req
	return &cp, nil
}

func (r *memoryChatRepository) FindByCoach(_ context.Context, coachID uint) ([]domain.ChatRequest, error) {
	return r.filter(func(req *domain.ChatRequest) bool { return req.CoachID == coachID }), nil
}

func (r *memoryChatRepository) FindByCustomer(_ context.Context, customerID uint) ([]domain.ChatRequest, error) {
	return r.filter(func(req *domain.ChatRequest) bool { return req.CustomerID == customerID }), nil
}

// filter returns copies, newest first.
func (r *memoryChatRepository) filter(keep func(*domain.ChatRequest) bool) []domain.ChatRequest {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ChatRequest, 0)
	for _, req := range r.requests {
		if keep(req) {
			out = append(out, *req)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (r *memoryChatRepository) UpdateStatus(_ context.Context, requestID uint, from, to domain.ChatRequestStatus, now time.Time) (*domain.ChatRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	req := r.lookup(requestID)
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != from {
		return nil, ErrStatusChanged
	}
	req.Status = to
	req.UpdatedAt = now
	cp := *req
	return &cp, nil
}

func (r *memoryChatRepository) LatestAccepted(_ context.Context, userID uint) (*domain.ChatRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *domain.ChatRequest
	for _, req := range r.requests {
		if req.Status != domain.StatusAccepted || !req.Involves(userID) {
			continue
		}
		if latest == nil || req.UpdatedAt.After(latest.UpdatedAt) ||
			(req.UpdatedAt.Equal(latest.UpdatedAt) && req.ID > latest.ID) {
			latest = req
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (r *memoryChatRepository) CreateMessage(_ context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if msg == nil || msg.ChatRequestID == 0 || msg.SenderID == 0 {
		return nil, errors.New("message requires chat request ID and sender ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextMessageID++
	stored := *msg
	stored.ID = r.nextMessageID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = r.now()
	}
	r.messages = append(r.messages, &stored)
	out := stored
	return &out, nil
}

func (r *memoryChatRepository) FindMessages(_ context.Context, requestID uint) ([]domain.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.ChatMessage, 0)
	for _, msg := range r.messages {
		if msg.ChatRequestID == requestID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (r *memoryChatRepository) MarkRead(_ context.Context, requestID, readerID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, msg := range r.messages {
		if msg.ChatRequestID == requestID && msg.SenderID != readerID && !msg.IsRead {
			msg.IsRead = true
			n++
		}
	}
	return n, nil
}

func (r *memoryChatRepository) CountUnread(_ context.Context, userID uint) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	accepted := make(map[uint]struct{})
	for _, req := range r.requests {
		if req.Status == domain.StatusAccepted && req.Involves(userID) {
			accepted[req.ID] = struct{}{}
		}
	}

	var n int64
	for _, msg := range r.messages {
		if _, ok := accepted[msg.ChatRequestID]; ok && msg.SenderID != userID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

// lookup must be called with r.mu held.
func (r *memoryChatRepository) lookup(requestID uint) *domain.ChatRequest {
	for _, req := range r.requests {
		if req.ID == requestID {
			return req
		}
	}
	return nil
}
