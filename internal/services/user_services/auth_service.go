// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/iyunix/finsarthi/internal/auth"
	"github.com/iyunix/finsarthi/internal/domain"
	"github.com/iyunix/finsarthi/internal/repository/user"
)

const minPasswordLength = 8

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// ClaimFunc attaches an anonymous advice session to a user.
type ClaimFunc func(ctx context.Context, sessionKey string, userID uint) error

type SignupInput struct {
	Role             domain.UserRole `json:"role"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Password         string          `json:"password"`
	Age              int             `json:"age"`
	City             string          `json:"city"`
	Country          string          `json:"country"`
	Gender           string          `json:"gender"`
	AdviceSessionKey string          `json:"advice_session_key"`
}

type LoginInput struct {
	// Identifier is an email address or a phone number.
	Identifier       string `json:"identifier"`
	Password         string `json:"password"`
	AdviceSessionKey string `json:"advice_session_key"`
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	User    *domain.User
	Token   string
	Claimed bool
}

type AuthService struct {
	userRepo  user.UserRepository
	jwtSecret []byte
	claim     ClaimFunc
	logger    Logger
}

// NewAuthService returns an auth service. claim may be nil, in which case
// advice session keys are ignored.
func NewAuthService(userRepo user.UserRepository, jwtSecret []byte, claim ClaimFunc, logger Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		claim:     claim,
		logger:    logger,
	}
}

// Signup creates the account, signs a token and claims the advice session
// named in the input, if any. A failed claim does not fail the signup.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	u, err := s.buildUser(in)
	if err != nil {
		s.logger.Warn("signup validation failed", "error", err.Error())
		return nil, err
	}

	email, phone := deref(u.Email), deref(u.Phone)
	exists, err := s.userRepo.ExistsByEmailOrPhone(ctx, email, phone)
	if err != nil {
		s.logger.Error("failed to check for existing user", "error", err)
		return nil, err
	}
	if exists {
		s.logger.Warn("signup rejected, identifier taken", "email", mask(email), "phone", mask(phone))
		return nil, ErrUserExists
	}

	if err := u.HashPassword(in.Password); err != nil {
		s.logger.Error("password hashing failed", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	created, err := s.userRepo.Create(ctx, u)
	if err != nil {
		s.logger.Error("user creation failed", "error", err, "email", mask(email), "phone", mask(phone))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_id", created.ID,
		"role", created.Role,
		"email", mask(email),
		"phone", mask(phone))

	return s.finish(ctx, created, in.AdviceSessionKey)
}

// Login checks the password of the account found by email or phone.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	identifier := strings.TrimSpace(in.Identifier)
	if identifier == "" || in.Password == "" {
		s.logger.Warn("login attempt with empty credentials",
			"has_identifier", identifier != "",
			"has_password", in.Password != "")
		return nil, ErrInvalidCredentials
	}

	var (
		u   *domain.User
		err error
	)
	if strings.Contains(identifier, "@") {
		u, err = s.userRepo.FindByEmail(ctx, identifier)
	} else {
		u, err = s.userRepo.FindByPhone(ctx, identifier)
	}
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) && !errors.Is(err, user.ErrInvalidPhone) {
			s.logger.Error("login lookup failed", "error", err)
			return nil, err
		}
		s.logger.Warn("login failed - user not found", "identifier", mask(identifier))
		return nil, ErrInvalidCredentials
	}

	if err := u.ValidatePassword(in.Password); err != nil {
		s.logger.Warn("login failed - invalid password", "user_id", u.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Info("login successful", "user_id", u.ID, "role", u.Role)
	return s.finish(ctx, u, in.AdviceSessionKey)
}

// Profile returns the signed-in user.
func (s *AuthService) Profile(ctx context.Context, userID uint) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if errors.Is(err, user.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *AuthService) finish(ctx context.Context, u *domain.User, sessionKey string) (*AuthResult, error) {
	token, err := auth.GenerateJWT(u.ID, string(u.Role), s.jwtSecret)
	if err != nil {
		s.logger.Error("JWT token generation failed", "error", err, "user_id", u.ID)
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	result := &AuthResult{User: u, Token: token}
	sessionKey = strings.TrimSpace(sessionKey)
	if sessionKey != "" && s.claim != nil {
		if err := s.claim(ctx, sessionKey, u.ID); err != nil {
			s.logger.Warn("advice session claim failed", "user_id", u.ID, "session_key", sessionKey, "error", err)
		} else {
			result.Claimed = true
		}
	}
	return result, nil
}

func (s *AuthService) buildUser(in SignupInput) (*domain.User, error) {
	invalid := func(msg string) error { return fmt.Errorf("%w: %s", ErrInvalidSignup, msg) }

	role := domain.UserRole(strings.ToLower(strings.TrimSpace(string(in.Role))))
	if role == "" {
		role = domain.RoleCustomer
	}

	u := &domain.User{
		Role:    role,
		Name:    strings.TrimSpace(in.Name),
		Age:     in.Age,
		City:    strings.TrimSpace(in.City),
		Country: strings.TrimSpace(in.Country),
		Gender:  strings.TrimSpace(in.Gender),
	}

	if email := strings.ToLower(strings.TrimSpace(in.Email)); email != "" {
		if !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@") {
			return nil, invalid("email is invalid")
		}
		u.Email = &email
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		if !phoneRegex.MatchString(phone) {
			return nil, invalid("phone must be 10 to 15 digits")
		}
		u.Phone = &phone
	}
	if len(in.Password) < minPasswordLength {
		return nil, invalid(fmt.Sprintf("password must be at least %d characters", minPasswordLength))
	}
	if err := u.IsValid(); err != nil {
		return nil, invalid(err.Error())
	}
	return u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
