package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/issue-tracker/internal/domain"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/repository"
	apperrors "github.com/spec-kit/issue-tracker/pkg/util"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 2000
	maxLocationLen    = 200
	maxNotesLen       = 2000
	maxCommentLen     = 1000
)

// IssueService coordinates the issue lifecycle: creation, role-scoped
// visibility, field-level updates, assignment, status changes and comments.
type IssueService struct {
	issues     repository.IssueRepository
	comments   repository.CommentRepository
	users      repository.UserRepository
	dispatcher events.Dispatcher
}

// IssueDependencies bundles repositories for the issue service.
type IssueDependencies struct {
	IssueRepo   repository.IssueRepository
	CommentRepo repository.CommentRepository
	UserRepo    repository.UserRepository
	Dispatcher  events.Dispatcher
}

// NewIssueService constructs the service.
func NewIssueService(deps IssueDependencies) *IssueService {
	return &IssueService{
		issues:     deps.IssueRepo,
		comments:   deps.CommentRepo,
		users:      deps.UserRepo,
		dispatcher: deps.Dispatcher,
	}
}

// IssueCreateInput describes issue creation payload.
type IssueCreateInput struct {
	Title       string
	Description string
	Category    domain.IssueCategory
	Priority    domain.IssuePriority
	Location    string
}

// IssueUpdateInput carries optional field changes. Nil means unchanged.
type IssueUpdateInput struct {
	Title           *string
	Description     *string
	Category        *domain.IssueCategory
	Priority        *domain.IssuePriority
	Location        *string
	Status          *domain.IssueStatus
	ResolutionNotes *string
}

// IssueListFilter describes optional listing filters applied after the
// visibility rule.
type IssueListFilter struct {
	Status     *domain.IssueStatus
	Priority   *domain.IssuePriority
	Category   *domain.IssueCategory
	ReportedBy *string
	AssignedTo *string
	Search     *string
}

// Create opens a new issue. The reporter is always the caller and the
// status is always Pending, regardless of any client-supplied value.
func (s *IssueService) Create(ctx context.Context, reporter *domain.User, input IssueCreateInput) (*domain.Issue, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)

	if err := requireLength("title", title, maxTitleLen); err != nil {
		return nil, err
	}
	if err := requireLength("description", description, maxDescriptionLen); err != nil {
		return nil, err
	}
	if err := requireLength("location", location, maxLocationLen); err != nil {
		return nil, err
	}
	if !domain.ValidIssueCategory(input.Category) {
		return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": input.Category})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidIssuePriority(priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}

	issue := &domain.Issue{
		Title:       title,
		Description: description,
		Category:    input.Category,
		Priority:    priority,
		Status:      domain.IssueStatusPending,
		ReportedBy:  reporter.ID,
		Location:    location,
	}

	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	issue.Comments = []domain.Comment{}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCreated,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: reporter.ID, Role: reporter.Role},
		Payload: events.IssueCreatedPayload{
			Title:    issue.Title,
			Category: issue.Category,
			Priority: issue.Priority,
			Location: issue.Location,
		},
	})
	return issue, nil
}

// List returns issues visible to the requester, newest first. The
// visibility rule is applied before any client filters: Employees see only
// issues they reported, Technicians only issues assigned to them.
func (s *IssueService) List(ctx context.Context, requester *domain.User, filter IssueListFilter) ([]domain.Issue, error) {
	repoFilter := repository.IssueFilter{
		Status:     filter.Status,
		Priority:   filter.Priority,
		Category:   filter.Category,
		ReportedBy: filter.ReportedBy,
		AssignedTo: filter.AssignedTo,
		SearchTerm: filter.Search,
	}

	switch requester.Role {
	case domain.RoleEmployee:
		repoFilter.ReportedBy = &requester.ID
	case domain.RoleTechnician:
		repoFilter.AssignedTo = &requester.ID
	}

	issues, err := s.issues.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	for i := range issues {
		if err := s.attachComments(ctx, &issues[i]); err != nil {
			return nil, err
		}
	}
	return issues, nil
}

// GetByID fetches a single issue, enforcing the visibility rule.
func (s *IssueService) GetByID(ctx context.Context, requester *domain.User, issueID string) (*domain.Issue, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !canView(requester, issue) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.attachComments(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Update applies field changes. Employees may only touch descriptive fields
// of their own issues; status and resolution notes require Admin here.
// Unauthorized field changes fail the whole request rather than being
// silently dropped.
func (s *IssueService) Update(ctx context.Context, requester *domain.User, issueID string, input IssueUpdateInput) (*domain.Issue, error) {
	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}

	if requester.Role == domain.RoleEmployee {
		if issue.ReportedBy != requester.ID {
			return nil, apperrors.NewForbidden("you can only update your own issues")
		}
		if input.Status != nil || input.ResolutionNotes != nil {
			return nil, apperrors.NewForbidden("not permitted to change status or resolution notes")
		}
	}

	oldStatus := issue.Status

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if err := requireLength("title", title, maxTitleLen); err != nil {
			return nil, err
		}
		issue.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if err := requireLength("description", description, maxDescriptionLen); err != nil {
			return nil, err
		}
		issue.Description = description
	}
	if input.Category != nil {
		if !domain.ValidIssueCategory(*input.Category) {
			return nil, apperrors.NewValidationError("invalid category", map[string]any{"category": *input.Category})
		}
		issue.Category = *input.Category
	}
	if input.Priority != nil {
		if !domain.ValidIssuePriority(*input.Priority) {
			return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": *input.Priority})
		}
		issue.Priority = *input.Priority
	}
	if input.Location != nil {
		location := strings.TrimSpace(*input.Location)
		if err := requireLength("location", location, maxLocationLen); err != nil {
			return nil, err
		}
		issue.Location = location
	}
	if input.Status != nil {
		if !domain.ValidIssueStatus(*input.Status) {
			return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": *input.Status})
		}
		issue.Status = *input.Status
	}
	if input.ResolutionNotes != nil {
		notes := strings.TrimSpace(*input.ResolutionNotes)
		if len(notes) > maxNotesLen {
			return nil, apperrors.NewValidationError("resolution notes too long", map[string]any{"max": maxNotesLen})
		}
		issue.ResolutionNotes = &notes
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	if issue.Status != oldStatus {
		s.publishEvent(ctx, events.Event{
			Type:    events.EventIssueStatusChanged,
			IssueID: issue.ID,
			Actor:   events.Actor{UserID: requester.ID, Role: requester.Role},
			Payload: events.IssueStatusChangedPayload{OldStatus: oldStatus, NewStatus: issue.Status},
		})
	}
	if err := s.attachComments(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Assign binds a technician to the issue and advances status to Assigned in
// a single record update.
func (s *IssueService) Assign(ctx context.Context, actor *domain.User, issueID, technicianID string) (*domain.Issue, error) {
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("invalid technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("invalid technician", map[string]any{"technician_id": technicianID})
	}

	if _, err := s.loadIssue(ctx, issueID); err != nil {
		return nil, err
	}

	if err := s.issues.Assign(ctx, issueID, technician.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueAssigned,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
		Payload: events.IssueAssignedPayload{TechnicianID: technician.ID},
	})
	if err := s.attachComments(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// UpdateStatus overwrites the status, restricted to the current assignee.
// Admins change status through Update instead. Any status may follow any
// other; monotonicity is not enforced.
func (s *IssueService) UpdateStatus(ctx context.Context, requester *domain.User, issueID string, status domain.IssueStatus, resolutionNotes *string) (*domain.Issue, error) {
	if !domain.ValidIssueStatus(status) {
		return nil, apperrors.NewValidationError("invalid status", map[string]any{"status": status})
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if issue.AssignedTo == nil || *issue.AssignedTo != requester.ID {
		return nil, apperrors.NewForbidden("you are not assigned to this issue")
	}

	oldStatus := issue.Status
	issue.Status = status
	notes := ""
	if resolutionNotes != nil {
		notes = strings.TrimSpace(*resolutionNotes)
		if len(notes) > maxNotesLen {
			return nil, apperrors.NewValidationError("resolution notes too long", map[string]any{"max": maxNotesLen})
		}
		if notes != "" {
			issue.ResolutionNotes = &notes
		}
	}

	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueStatusChanged,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: requester.ID, Role: requester.Role},
		Payload: events.IssueStatusChangedPayload{
			OldStatus:       oldStatus,
			NewStatus:       status,
			ResolutionNotes: notes,
		},
	})
	if err := s.attachComments(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// AddComment appends a comment. Commenting is restricted to the reporter,
// the current assignee, and Admins.
func (s *IssueService) AddComment(ctx context.Context, author *domain.User, issueID, text string) (*domain.Issue, error) {
	text = strings.TrimSpace(text)
	if err := requireLength("text", text, maxCommentLen); err != nil {
		return nil, err
	}

	issue, err := s.loadIssue(ctx, issueID)
	if err != nil {
		return nil, err
	}
	if !canView(author, issue) {
		return nil, apperrors.NewForbidden("only participants may comment")
	}

	comment := &domain.Comment{
		IssueID:  issue.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueCommentAdded,
		IssueID: issue.ID,
		Actor:   events.Actor{UserID: author.ID, Role: author.Role},
		Payload: events.IssueCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    author.ID,
			TextPreview: textPreview(text, 120),
		},
	})
	if err := s.attachComments(ctx, issue); err != nil {
		return nil, err
	}
	return issue, nil
}

// Delete hard-deletes an issue; its comments go with it.
func (s *IssueService) Delete(ctx context.Context, actor *domain.User, issueID string) error {
	if err := s.issues.Delete(ctx, issueID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:    events.EventIssueDeleted,
		IssueID: issueID,
		Actor:   events.Actor{UserID: actor.ID, Role: actor.Role},
	})
	return nil
}

func (s *IssueService) loadIssue(ctx context.Context, issueID string) (*domain.Issue, error) {
	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("issue", map[string]any{"issue_id": issueID})
		}
		return nil, apperrors.MapError(err)
	}
	return issue, nil
}

func (s *IssueService) attachComments(ctx context.Context, issue *domain.Issue) error {
	comments, err := s.comments.ListByIssue(ctx, issue.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	issue.Comments = comments
	return nil
}

// canView mirrors the visibility rule: reporter, assignee, or Admin.
func canView(user *domain.User, issue *domain.Issue) bool {
	switch user.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleEmployee:
		return issue.ReportedBy == user.ID
	case domain.RoleTechnician:
		return issue.AssignedTo != nil && *issue.AssignedTo == user.ID
	}
	return false
}

func requireLength(field, value string, max int) error {
	if value == "" {
		return apperrors.NewValidationError(fmt.Sprintf("%s is required", field), nil)
	}
	if len(value) > max {
		return apperrors.NewValidationError(fmt.Sprintf("%s cannot exceed %d characters", field, max),
			map[string]any{"max": max})
	}
	return nil
}

func textPreview(text string, max int) string {
	if len(text) <= max {
		return text
	}
	if max <= 3 {
		return text[:max]
	}
	return text[:max-3] + "..."
}

func (s *IssueService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
