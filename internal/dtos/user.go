// File: internal/dtos/user.go
package dtos

import (
	"time"

	"github.com/iyunix/finsarthi/internal/domain"
)

// UserResponseDTO defines what fields to expose in user API responses.
// The password hash is never included.
type UserResponseDTO struct {
	ID          uint    `json:"id"`
	Role        string  `json:"role"`
	Name        string  `json:"name"`
	Email       *string `json:"email,omitempty"`
	Phone       string  `json:"phone,omitempty"` // Masked for privacy
	Age         int     `json:"age,omitempty"`
	City        string  `json:"city,omitempty"`
	Country     string  `json:"country,omitempty"`
	Gender      string  `json:"gender,omitempty"`
	IsAvailable bool    `json:"is_available"`
	CreatedAt   string  `json:"created_at"`
}

// AuthResponseDTO is returned by signup and login.
type AuthResponseDTO struct {
	User                 UserResponseDTO `json:"user"`
	Token                string          `json:"token"`
	ClaimedAdviceSession bool            `json:"claimed_advice_session"`
}

type AvailabilityRequestDTO struct {
	IsAvailable *bool `json:"is_available"`
}

// FromDomain maps a domain.User to UserResponseDTO for API responses.
func FromDomain(user domain.User) UserResponseDTO {
	dto := UserResponseDTO{
		ID:          user.ID,
		Role:        string(user.Role),
		Name:        user.Name,
		Email:       user.Email,
		Age:         user.Age,
		City:        user.City,
		Country:     user.Country,
		Gender:      user.Gender,
		IsAvailable: user.IsAvailable,
		CreatedAt:   user.CreatedAt.Format(time.RFC3339),
	}
	if user.Phone != nil {
		dto.Phone = maskPhoneNumber(*user.Phone)
	}
	return dto
}

// maskPhoneNumber partially masks phone numbers for privacy in public responses.
func maskPhoneNumber(phone string) string {
	if len(phone) < 7 {
		return phone
	}
	return phone[:3] + "****" + phone[len(phone)-2:]
}

// ErrorResponse represents an error API response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
