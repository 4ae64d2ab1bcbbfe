package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// UserResponse is the outward account view. The password hash is never
// part of any response.
type UserResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Email      string            `json:"email"`
	Role       domain.Role       `json:"role"`
	Department string            `json:"department,omitempty"`
	Phone      string            `json:"phone,omitempty"`
	Status     domain.UserStatus `json:"status"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// UpdateUserRequest payload; absent fields are left unchanged.
type UpdateUserRequest struct {
	Name       *string            `json:"name"`
	Department *string            `json:"department"`
	Phone      *string            `json:"phone"`
	Role       *domain.Role       `json:"role"`
	Status     *domain.UserStatus `json:"status"`
}
