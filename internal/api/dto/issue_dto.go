package dto

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// CreateIssueRequest payload.
type CreateIssueRequest struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Category    domain.IssueCategory `json:"category"`
	Priority    domain.IssuePriority `json:"priority"`
	Location    string               `json:"location"`
}

// UpdateIssueRequest payload; absent fields are left unchanged. There is no
// assignedTo field on purpose: assignment goes through its own endpoint.
type UpdateIssueRequest struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	Category        *domain.IssueCategory `json:"category"`
	Priority        *domain.IssuePriority `json:"priority"`
	Location        *string               `json:"location"`
	Status          *domain.IssueStatus   `json:"status"`
	ResolutionNotes *string               `json:"resolutionNotes"`
}

// AssignIssueRequest payload.
type AssignIssueRequest struct {
	TechnicianID string `json:"technicianId"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status          domain.IssueStatus `json:"status"`
	ResolutionNotes *string            `json:"resolutionNotes"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Text string `json:"text"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

// IssueResponse provides full issue info.
type IssueResponse struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Category        domain.IssueCategory `json:"category"`
	Priority        domain.IssuePriority `json:"priority"`
	Status          domain.IssueStatus   `json:"status"`
	ReportedBy      string               `json:"reportedBy"`
	AssignedTo      *string              `json:"assignedTo"`
	Location        string               `json:"location"`
	ResolutionNotes *string              `json:"resolutionNotes"`
	Comments        []CommentResponse    `json:"comments"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}
