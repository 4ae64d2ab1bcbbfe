package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// UserService exposes the admin user directory. Deleting a user never
// cascades to issues that reference it.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns all accounts, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// Get fetches one account. Non-admins may only read themselves.
func (s *UserService) Get(ctx context.Context, requester *domain.User, id string) (*domain.User, error) {
	if requester.Role != domain.RoleAdmin && requester.ID != id {
		return nil, apperrors.NewForbidden("access denied")
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListByRole returns accounts holding the given role.
func (s *UserService) ListByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": role})
	}
	users, err := s.users.ListByRole(ctx, role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// UserUpdateInput carries optional admin-editable fields.
type UserUpdateInput struct {
	Name       *string
	Department *string
	Phone      *string
	Role       *domain.Role
	Status     *domain.UserStatus
}

// Update applies admin edits to an account.
func (s *UserService) Update(ctx context.Context, id string, input UserUpdateInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" || len(name) > maxNameLen {
			return nil, apperrors.NewValidationError("name is required and cannot exceed 100 characters", nil)
		}
		user.Name = name
	}
	if input.Department != nil {
		department := strings.TrimSpace(*input.Department)
		if len(department) > maxDepartmentLen {
			return nil, apperrors.NewValidationError("department name cannot exceed 100 characters", nil)
		}
		user.Department = department
	}
	if input.Phone != nil {
		phone := strings.TrimSpace(*input.Phone)
		if phone != "" && !phonePattern.MatchString(phone) {
			return nil, apperrors.NewValidationError("phone must be 10 to 15 digits", nil)
		}
		user.Phone = phone
	}
	if input.Role != nil {
		if !domain.ValidRole(*input.Role) {
			return nil, apperrors.NewValidationError("invalid role", map[string]any{"role": *input.Role})
		}
		user.Role = *input.Role
	}
	if input.Status != nil {
		if *input.Status != domain.UserStatusActive && *input.Status != domain.UserStatusInactive {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		user.Status = *input.Status
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Delete removes the account record. Issues reporting or assigned to the
// user keep their references.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": id})
		}
		return apperrors.MapError(err)
	}
	return nil
}
