package domain

import "time"

// Comment is an append-only entry in an issue thread. Comments share the
// lifetime of their issue and are never edited or removed individually.
type Comment struct {
	ID        string
	IssueID   string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}
