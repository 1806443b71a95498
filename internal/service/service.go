// Package service defines the backend-agnostic contracts for task operations.
package service

import "context"

// TaskStore defines the remote task store operations.
// Commands and the board never import a transport directly.
type TaskStore interface {
	// ListTasks returns every task in store order.
	ListTasks(ctx context.Context) ([]Task, error)

	// CreateTask stores a new task and returns the stored value.
	// The store may assign its own ID.
	CreateTask(ctx context.Context, task Task) (Task, error)

	// UpdateTask replaces the task with task.ID and returns the stored value.
	UpdateTask(ctx context.Context, task Task) (Task, error)

	// DeleteTask deletes a task by ID.
	DeleteTask(ctx context.Context, id string) error
}

// Generator sends a single prompt to a text-generation provider.
type Generator interface {
	// Generate returns the first candidate's text.
	// Returns ErrNoSuggestion if the provider produced no candidate.
	// The returned text is untrusted.
	Generate(ctx context.Context, prompt string) (string, error)
}

// Service is everything the CLI needs from its backends.
type Service interface {
	TaskStore
	Generator
}

// Join combines a store and a generator into a Service.
func Join(store TaskStore, gen Generator) Service {
	return joined{TaskStore: store, Generator: gen}
}

type joined struct {
	TaskStore
	Generator
}
