// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"

	"github.com/iyunix/finsarthi/internal/domain"
)

// UserServiceInterface is what the HTTP layer needs from the user services.
type UserServiceInterface interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, userID uint) (*domain.User, error)
}

var _ UserServiceInterface = (*AuthService)(nil)
