// Package service defines the backend-agnostic contracts for task operations.
package service

import "time"

// Status is the completion state of a task.
type Status int

const (
	// StatusPending is an open task.
	StatusPending Status = 0

	// StatusDone is a completed task.
	StatusDone Status = 1
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusDone
}

// String returns "done" or "pending".
func (s Status) String() string {
	if s == StatusDone {
		return "done"
	}
	return "pending"
}

// Task represents a single task item.
// Tasks are values: edits produce a new Task with the same ID.
type Task struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	AIResponse *string   `json:"aiResponse,omitempty"`
}

// WithStatus returns a copy of t with the given status.
func (t Task) WithStatus(s Status) Task {
	t.Status = s
	return t
}

// WithTitle returns a copy of t with the given title.
func (t Task) WithTitle(title string) Task {
	t.Title = title
	return t
}

// Done reports whether the task is completed.
func (t Task) Done() bool {
	return t.Status == StatusDone
}
