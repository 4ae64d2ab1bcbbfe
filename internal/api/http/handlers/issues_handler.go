package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/issue-tracker/internal/api/dto"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/service"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

// IssuesHandler manages issue endpoints.
type IssuesHandler struct {
	service *service.IssueService
}

// NewIssuesHandler constructs handler.
func NewIssuesHandler(issueService *service.IssueService) *IssuesHandler {
	return &IssuesHandler{service: issueService}
}

// Create POST /api/issues.
func (h *IssuesHandler) Create(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	var req dto.CreateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Create(c.Context(), principal.User, service.IssueCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "issue created successfully",
		"data":    issueResponse(issue),
	})
}

// List GET /api/issues.
func (h *IssuesHandler) List(c *fiber.Ctx) error {
	principal := mustPrincipal(c)

	issues, err := h.service.List(c.Context(), principal.User, parseIssueQuery(c))
	if err != nil {
		return err
	}
	items := make([]dto.IssueResponse, 0, len(issues))
	for i := range issues {
		items = append(items, issueResponse(&issues[i]))
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

// Get GET /api/issues/:id.
func (h *IssuesHandler) Get(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}

	issue, err := h.service.GetByID(c.Context(), principal.User, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    issueResponse(issue),
	})
}

// Update PUT /api/issues/:id.
func (h *IssuesHandler) Update(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.Update(c.Context(), principal.User, id, service.IssueUpdateInput{
		Title:           req.Title,
		Description:     req.Description,
		Category:        req.Category,
		Priority:        req.Priority,
		Location:        req.Location,
		Status:          req.Status,
		ResolutionNotes: req.ResolutionNotes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "issue updated successfully",
		"data":    issueResponse(issue),
	})
}

// Delete DELETE /api/issues/:id.
func (h *IssuesHandler) Delete(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Context(), principal.User, id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "issue deleted successfully",
	})
}

// Assign PUT /api/issues/:id/assign.
func (h *IssuesHandler) Assign(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var req dto.AssignIssueRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TechnicianID == "" {
		return apperrors.NewValidationError("technician id is required", nil)
	}

	issue, err := h.service.Assign(c.Context(), principal.User, id, req.TechnicianID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "issue assigned successfully",
		"data":    issueResponse(issue),
	})
}

// UpdateStatus PUT /api/issues/:id/status.
func (h *IssuesHandler) UpdateStatus(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Status == "" {
		return apperrors.NewValidationError("status is required", nil)
	}

	issue, err := h.service.UpdateStatus(c.Context(), principal.User, id, req.Status, req.ResolutionNotes)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "status updated successfully",
		"data":    issueResponse(issue),
	})
}

// AddComment POST /api/issues/:id/comments.
func (h *IssuesHandler) AddComment(c *fiber.Ctx) error {
	principal := mustPrincipal(c)
	id, err := issueID(c)
	if err != nil {
		return err
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	issue, err := h.service.AddComment(c.Context(), principal.User, id, req.Text)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "comment added successfully",
		"data":    issueResponse(issue),
	})
}

// issueID validates the :id path parameter before it reaches storage.
func issueID(c *fiber.Ctx) (string, error) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.NewValidationError("invalid id format", map[string]any{"id": id})
	}
	return id, nil
}

func mustPrincipal(c *fiber.Ctx) *auth.Principal {
	principal, _ := auth.PrincipalFromContext(c)
	return principal
}

func parseIssueQuery(c *fiber.Ctx) service.IssueListFilter {
	filter := service.IssueListFilter{}
	if v := c.Query("status"); v != "" {
		status := domain.IssueStatus(v)
		filter.Status = &status
	}
	if v := c.Query("priority"); v != "" {
		priority := domain.IssuePriority(v)
		filter.Priority = &priority
	}
	if v := c.Query("category"); v != "" {
		category := domain.IssueCategory(v)
		filter.Category = &category
	}
	if v := c.Query("reportedBy"); v != "" {
		filter.ReportedBy = &v
	}
	if v := c.Query("assignedTo"); v != "" {
		filter.AssignedTo = &v
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	return filter
}

func issueResponse(issue *domain.Issue) dto.IssueResponse {
	comments := make([]dto.CommentResponse, 0, len(issue.Comments))
	for _, comment := range issue.Comments {
		comments = append(comments, dto.CommentResponse{
			ID:        comment.ID,
			AuthorID:  comment.AuthorID,
			Text:      comment.Text,
			CreatedAt: comment.CreatedAt,
		})
	}
	return dto.IssueResponse{
		ID:              issue.ID,
		Title:           issue.Title,
		Description:     issue.Description,
		Category:        issue.Category,
		Priority:        issue.Priority,
		Status:          issue.Status,
		ReportedBy:      issue.ReportedBy,
		AssignedTo:      issue.AssignedTo,
		Location:        issue.Location,
		ResolutionNotes: issue.ResolutionNotes,
		Comments:        comments,
		CreatedAt:       issue.CreatedAt,
		UpdatedAt:       issue.UpdatedAt,
	}
}
