// File: internal/domain/user.go
package domain

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// UserRole separates people asking for coaching from the coaches answering.
type UserRole string

const (
	RoleCustomer UserRole = "customer"
	RoleCoach    UserRole = "coach"
)

func (r UserRole) Valid() bool {
	return r == RoleCustomer || r == RoleCoach
}

type User struct {
	ID          uint     `json:"id" gorm:"primaryKey"`
	Role        UserRole `json:"role" gorm:"size:16;not null;index"`
	Name        string   `json:"name" gorm:"size:100;not null"`
	Email       *string  `json:"email,omitempty" gorm:"size:254;uniqueIndex"`
	Phone       *string  `json:"phone,omitempty" gorm:"size:20;uniqueIndex"`
	Password    string   `json:"-" gorm:"not null"`
	Age         int      `json:"age,omitempty"`
	City        string   `json:"city,omitempty" gorm:"size:100"`
	Country     string   `json:"country,omitempty" gorm:"size:100"`
	Gender      string   `json:"gender,omitempty" gorm:"size:20"`
	IsAvailable bool     `json:"is_available" gorm:"not null;default:false;index"` // coaches only

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HashPassword securely hashes the user's password.
func (u *User) HashPassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// ValidatePassword compares a plain-text password with the user's hashed password.
func (u *User) ValidatePassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

func (u *User) IsValid() error {
	if !u.Role.Valid() {
		return errors.New("role must be customer or coach")
	}
	if len(strings.TrimSpace(u.Name)) < 2 {
		return errors.New("name must be at least 2 characters")
	}
	if u.Email == nil && u.Phone == nil {
		return errors.New("email or phone number is required")
	}
	if u.Age < 0 || u.Age > 130 {
		return errors.New("age is out of range")
	}
	return nil
}

func (u *User) IsCoach() bool { return u.Role == RoleCoach }

// Public is the identity shown to the other side of a chat.
type Public struct {
	ID          uint     `json:"id"`
	Role        UserRole `json:"role"`
	Name        string   `json:"name"`
	Email       *string  `json:"email,omitempty"`
	City        string   `json:"city,omitempty"`
	Country     string   `json:"country,omitempty"`
	IsAvailable bool     `json:"is_available"`
}

func (u *User) Public() Public {
	return Public{
		ID:          u.ID,
		Role:        u.Role,
		Name:        u.Name,
		Email:       u.Email,
		City:        u.City,
		Country:     u.Country,
		IsAvailable: u.IsAvailable,
	}
}
