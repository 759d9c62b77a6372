// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iyunix/finsarthi/internal/domain"
	"gorm.io/gorm"
)

var activeStatuses = []domain.ChatRequestStatus{domain.StatusPending, domain.StatusAccepted}

// ActiveRequestIndexSQL enforces at most one active request per (customer, coach).
// Partial indexes are supported by both postgres and sqlite.
const ActiveRequestIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_chat_requests_active_pair
ON chat_requests (customer_id, coach_id) WHERE status IN ('pending', 'accepted')`

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) FindOrCreateActive(ctx context.Context, customerID, coachID uint, now time.Time) (*domain.ChatRequest, bool, error) {
	if customerID == 0 || coachID == 0 {
		return nil, false, errors.New("invalid customer ID or coach ID")
	}

	req, created, err := r.findOrCreateActive(ctx, customerID, coachID, now)
	if err != nil && isUniqueViolation(err) {
		// Lost the insert race to a concurrent request for the same pair; the
		// winner's row is now visible.
		req, created, err = r.findOrCreateActive(ctx, customerID, coachID, now)
	}
	if err != nil {
		return nil, false, fmt.Errorf("database error creating chat request: %w", err)
	}
	return req, created, nil
}

func (r *gormChatRepository) findOrCreateActive(ctx context.Context, customerID, coachID uint, now time.Time) (*domain.ChatRequest, bool, error) {
	var (
		req     *domain.ChatRequest
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.ChatRequest
		err := tx.
			Where("customer_id = ? AND coach_id = ? AND status IN ?", customerID, coachID, activeStatuses).
			Order("id DESC").
			First(&existing).Error
		if err == nil {
			req = &existing
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		req = &domain.ChatRequest{
			CustomerID: customerID,
			CoachID:    coachID,
			Status:     domain.StatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := tx.Create(req).Error; err != nil {
			return err
		}
		created = true
		return nil
	})
	return req, created, err
}

func (r *gormChatRepository) FindByID(ctx context.Context, requestID uint) (*domain.ChatRequest, error) {
	if requestID == 0 {
		return nil, ErrRequestNotFound
	}

	var req domain.ChatRequest
	err := r.db.WithContext(ctx).First(&req, requestID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &req, nil
}

func (r *gormChatRepository) FindByCoach(ctx context.Context, coachID uint) ([]domain.ChatRequest, error) {
	return r.findBy(ctx, "coach_id = ?", coachID)
}

func (r *gormChatRepository) FindByCustomer(ctx context.Context, customerID uint) ([]domain.ChatRequest, error) {
	return r.findBy(ctx, "customer_id = ?", customerID)
}

func (r *gormChatRepository) findBy(ctx context.Context, where string, id uint) ([]domain.ChatRequest, error) {
	var reqs []domain.ChatRequest
	err := r.db.WithContext(ctx).
		Where(where, id).
		Order("created_at DESC, id DESC").
		Find(&reqs).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching chat requests: %w", err)
	}
	return reqs, nil
}

func (r *gormChatRepository) UpdateStatus(ctx context.Context, requestID uint, from, to domain.ChatRequestStatus, now time.Time) (*domain.ChatRequest, error) {
	var updated domain.ChatRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.ChatRequest{}).
			Where("id = ? AND status = ?", requestID, from).
			Updates(map[string]any{"status": to, "updated_at": now})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&domain.ChatRequest{}).Where("id = ?", requestID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrRequestNotFound
			}
			return ErrStatusChanged
		}
		return tx.First(&updated, requestID).Error
	})
	if errors.Is(err, ErrRequestNotFound) || errors.Is(err, ErrStatusChanged) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("database error updating chat request: %w", err)
	}
	return &updated, nil
}

func (r *gormChatRepository) LatestAccepted(ctx context.Context, userID uint) (*domain.ChatRequest, error) {
	var req domain.ChatRequest
	err := r.db.WithContext(ctx).
		Where("status = ? AND (customer_id = ? OR coach_id = ?)", domain.StatusAccepted, userID, userID).
		Order("updated_at DESC, id DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &req, nil
}

func (r *gormChatRepository) CreateMessage(ctx context.Context, msg *domain.ChatMessage) (*domain.ChatMessage, error) {
	if msg == nil || msg.ChatRequestID == 0 || msg.SenderID == 0 {
		return nil, errors.New("message requires chat request ID and sender ID")
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return nil, fmt.Errorf("database error creating message: %w", err)
	}
	return msg, nil
}

func (r *gormChatRepository) FindMessages(ctx context.Context, requestID uint) ([]domain.ChatMessage, error) {
	var msgs []domain.ChatMessage
	err := r.db.WithContext(ctx).
		Where("chat_request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching messages: %w", err)
	}
	return msgs, nil
}

func (r *gormChatRepository) MarkRead(ctx context.Context, requestID, readerID uint) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Where("chat_request_id = ? AND sender_id <> ? AND is_read = ?", requestID, readerID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, fmt.Errorf("database error marking messages read: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *gormChatRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ChatMessage{}).
		Joins("JOIN chat_requests ON chat_requests.id = chat_messages.chat_request_id").
		Where("chat_requests.status = ? AND (chat_requests.customer_id = ? OR chat_requests.coach_id = ?)",
			domain.StatusAccepted, userID, userID).
		Where("chat_messages.sender_id <> ? AND chat_messages.is_read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("database error counting unread messages: %w", err)
	}
	return count, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// glebarez/sqlite does not translate constraint errors.
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}
