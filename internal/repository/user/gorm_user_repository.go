// File: internal/repository/user/gorm_user_repository.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iyunix/finsarthi/internal/domain"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidPhone = errors.New("invalid phone number")
)

type gormUserRepository struct {
	db *gorm.DB
}

func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Create validates and inserts a new user.
func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.validateUserInput(user); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("database error creating user: %w", err)
	}
	return user, nil
}

func (r *gormUserRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	if id == 0 {
		return nil, errors.New("invalid user ID")
	}

	var user domain.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return r.handleFindError(err, &user)
}

// FindByIDs loads several users in one query. Missing ids are simply absent from the map.
func (r *gormUserRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]*domain.User, error) {
	out := make(map[uint]*domain.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var users []domain.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("database error loading users: %w", err)
	}
	for i := range users {
		out[users[i].ID] = &users[i]
	}
	return out, nil
}

func (r *gormUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, errors.New("email is required")
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	return r.handleFindError(err, &user)
}

func (r *gormUserRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	if err := r.validatePhone(phone); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPhone, err)
	}

	var user domain.User
	err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&user).Error
	return r.handleFindError(err, &user)
}

// ExistsByEmailOrPhone checks for either identifier without loading the row.
func (r *gormUserRepository) ExistsByEmailOrPhone(ctx context.Context, email, phone string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" && phone == "" {
		return false, nil
	}

	query := r.db.WithContext(ctx).Model(&domain.User{})
	switch {
	case email != "" && phone != "":
		query = query.Where("email = ? OR phone = ?", email, phone)
	case email != "":
		query = query.Where("email = ?", email)
	default:
		query = query.Where("phone = ?", phone)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("database error checking user existence: %w", err)
	}
	return count > 0, nil
}

// UpdateAvailability flips the availability flag of a coach.
func (r *gormUserRepository) UpdateAvailability(ctx context.Context, userID uint, available bool) error {
	if userID == 0 {
		return errors.New("invalid user ID")
	}

	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ? AND role = ?", userID, domain.RoleCoach).
		Update("is_available", available)
	if result.Error != nil {
		return fmt.Errorf("database error updating availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *gormUserRepository) FindAvailableCoaches(ctx context.Context) ([]domain.User, error) {
	var coaches []domain.User
	err := r.db.WithContext(ctx).
		Where("role = ? AND is_available = ?", domain.RoleCoach, true).
		Order("name ASC, id ASC").
		Find(&coaches).Error
	if err != nil {
		return nil, fmt.Errorf("database error listing coaches: %w", err)
	}
	return coaches, nil
}

// ===== VALIDATION HELPERS =====

func (r *gormUserRepository) validateUserInput(user *domain.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}
	if user.Email != nil {
		email := normalizeEmail(*user.Email)
		if !strings.Contains(email, "@") {
			return errors.New("email is invalid")
		}
		user.Email = &email
	}
	if user.Phone != nil {
		if err := r.validatePhone(*user.Phone); err != nil {
			return fmt.Errorf("phone validation: %w", err)
		}
	}
	return user.IsValid()
}

func (r *gormUserRepository) validatePhone(phone string) error {
	if len(phone) < 10 || len(phone) > 15 {
		return errors.New("phone number must be between 10 and 15 digits")
	}
	for _, char := range phone {
		if char != '+' && (char < '0' || char > '9') {
			return errors.New("phone number contains invalid characters")
		}
	}
	return nil
}

func normalizeEmail(e string) string {
	return strings.ToLower(strings.TrimSpace(e))
}

func (r *gormUserRepository) handleFindError(err error, user *domain.User) (*domain.User, error) {
	if err == nil {
		return user, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return nil, fmt.Errorf("database query failed: %w", err)
}
