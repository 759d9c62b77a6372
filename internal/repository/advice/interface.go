package advice

import (
	"context"
	"errors"

	"github.com/iyunix/finsarthi/internal/domain"
)

var (
	ErrSessionNotFound = errors.New("advice session not found")
	ErrSessionClaimed  = errors.New("advice session already belongs to another user")
)

// AdviceRepository persists completed wizard runs.
type AdviceRepository interface {
	Create(ctx context.Context, session *domain.AdviceSession) (*domain.AdviceSession, error)
	FindByKey(ctx context.Context, sessionKey string) (*domain.AdviceSession, error)
	FindByUserID(ctx context.Context, userID uint) ([]domain.AdviceSession, error)
	// Claim sets the owner of an anonymous session. Claiming a session the
	// user already owns is a no-op.
	Claim(ctx context.Context, sessionKey string, userID uint) (*domain.AdviceSession, error)
}
