// File: internal/repository/advice/advice_repository.go
package advice

import (
	"context"
	"errors"
	"fmt"

	"github.com/iyunix/finsarthi/internal/domain"
	"gorm.io/gorm"
)

type gormAdviceRepository struct {
	db *gorm.DB
}

func NewAdviceRepository(db *gorm.DB) AdviceRepository {
	return &gormAdviceRepository{db: db}
}

func (r *gormAdviceRepository) Create(ctx context.Context, session *domain.AdviceSession) (*domain.AdviceSession, error) {
	if session == nil || session.SessionKey == "" {
		return nil, errors.New("session key is required")
	}
	if session.PromptKey == "" {
		return nil, errors.New("prompt key is required")
	}
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, fmt.Errorf("database error creating advice session: %w", err)
	}
	return session, nil
}

func (r *gormAdviceRepository) FindByKey(ctx context.Context, sessionKey string) (*domain.AdviceSession, error) {
	if sessionKey == "" {
		return nil, ErrSessionNotFound
	}

	var session domain.AdviceSession
	err := r.db.WithContext(ctx).Where("session_key = ?", sessionKey).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("database query failed: %w", err)
	}
	return &session, nil
}

func (r *gormAdviceRepository) FindByUserID(ctx context.Context, userID uint) ([]domain.AdviceSession, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var sessions []domain.AdviceSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("database error fetching advice sessions: %w", err)
	}
	return sessions, nil
}

func (r *gormAdviceRepository) Claim(ctx context.Context, sessionKey string, userID uint) (*domain.AdviceSession, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var claimed domain.AdviceSession
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.AdviceSession{}).
			Where("session_key = ? AND user_id IS NULL", sessionKey).
			Update("user_id", userID)
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("session_key = ?", sessionKey).First(&claimed).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if claimed.UserID == nil || *claimed.UserID != userID {
			return ErrSessionClaimed
		}
		return nil
	})
	if errors.Is(err, ErrSessionNotFound) || errors.Is(err, ErrSessionClaimed) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("database error claiming advice session: %w", err)
	}
	return &claimed, nil
}
