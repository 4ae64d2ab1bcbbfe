package events

import (
	"time"

	"github.com/spec-kit/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventIssueCreated       EventType = "issue_created"
	EventIssueAssigned      EventType = "issue_assigned"
	EventIssueStatusChanged EventType = "issue_status_changed"
	EventIssueCommentAdded  EventType = "issue_comment_added"
	EventIssueDeleted       EventType = "issue_deleted"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	IssueID   string      `json:"issue_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// IssueCreatedPayload payload.
type IssueCreatedPayload struct {
	Title    string               `json:"title"`
	Category domain.IssueCategory `json:"category"`
	Priority domain.IssuePriority `json:"priority"`
	Location string               `json:"location"`
}

// IssueAssignedPayload payload.
type IssueAssignedPayload struct {
	TechnicianID string `json:"technician_id"`
}

// IssueStatusChangedPayload payload.
type IssueStatusChangedPayload struct {
	OldStatus       domain.IssueStatus `json:"old_status"`
	NewStatus       domain.IssueStatus `json:"new_status"`
	ResolutionNotes string             `json:"resolution_notes,omitempty"`
}

// IssueCommentAddedPayload payload.
type IssueCommentAddedPayload struct {
	CommentID   string `json:"comment_id"`
	AuthorID    string `json:"author_id"`
	TextPreview string `json:"text_preview"`
}
