package domain

import "time"

// IssueStatus enumerates lifecycle states for issues.
type IssueStatus string

const (
	IssueStatusPending    IssueStatus = "Pending"
	IssueStatusAssigned   IssueStatus = "Assigned"
	IssueStatusInProgress IssueStatus = "In Progress"
	IssueStatusCompleted  IssueStatus = "Completed"
	IssueStatusRejected   IssueStatus = "Rejected"
)

// ValidIssueStatus reports whether the value is a known status.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusPending, IssueStatusAssigned, IssueStatusInProgress,
		IssueStatusCompleted, IssueStatusRejected:
		return true
	}
	return false
}

// IssueCategory classifies the kind of service request.
type IssueCategory string

const (
	CategoryElectrical IssueCategory = "Electrical"
	CategoryPlumbing   IssueCategory = "Plumbing"
	CategoryHVAC       IssueCategory = "HVAC"
	CategoryIT         IssueCategory = "IT"
	CategoryFurniture  IssueCategory = "Furniture"
	CategoryOther      IssueCategory = "Other"
)

// ValidIssueCategory reports whether the value is a known category.
func ValidIssueCategory(c IssueCategory) bool {
	switch c {
	case CategoryElectrical, CategoryPlumbing, CategoryHVAC,
		CategoryIT, CategoryFurniture, CategoryOther:
		return true
	}
	return false
}

// IssuePriority enumerates urgency levels.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "Low"
	PriorityMedium   IssuePriority = "Medium"
	PriorityHigh     IssuePriority = "High"
	PriorityCritical IssuePriority = "Critical"
)

// ValidIssuePriority reports whether the value is a known priority.
func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// Issue is the aggregate for reported service requests. ReportedBy is set
// once at creation and never changes; AssignedTo only ever references a
// user with the Technician role.
type Issue struct {
	ID              string
	Title           string
	Description     string
	Category        IssueCategory
	Priority        IssuePriority
	Status          IssueStatus
	ReportedBy      string
	AssignedTo      *string
	Location        string
	ResolutionNotes *string
	Comments        []Comment
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
