package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// UsersHandler exposes the admin user directory.
type UsersHandler struct {
	service *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(userService *service.UserService) *UsersHandler {
	return &UsersHandler{service: userService}
}

// List GET /api/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	users, err := h.service.List(c.Context())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// Get GET /api/users/:id.
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := userID(c)
	if err != nil {
		return err
	}
	user, err := h.service.Get(c.Context(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    userResponse(user),
	})
}

// ListByRole GET /api/users/role/:role.
func (h *UsersHandler) ListByRole(c *fiber.Ctx) error {
	users, err := h.service.ListByRole(c.Context(), domain.Role(c.Params("role")))
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// Update PUT /api/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	user, err := h.service.Update(c.Context(), id, service.UserUpdateInput{
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
		Role:       req.Role,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "user updated successfully",
		"data":    userResponse(user),
	})
}

// Delete DELETE /api/users/:id.
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	id, err := userID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Context(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "user deleted successfully",
	})
}

func userID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid id format", map[string]any{"id": id})
	}
	return id, nil
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Department: user.Department,
		Phone:      user.Phone,
		Status:     user.Status,
		CreatedAt:  user.CreatedAt,
		UpdatedAt:  user.UpdatedAt,
	}
}
