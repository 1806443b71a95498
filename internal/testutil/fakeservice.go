// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"strconv"
	"sync"

	"caretaker/internal/service"
)

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu      sync.RWMutex
	tasks   []service.Task
	nextID  int
	prompts []string

	// Reply is returned by Generate when GenerateErr is nil.
	Reply string

	// Error injection for testing
	ListTasksErr  error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
	GenerateErr   error

	// Gate, when set, blocks every call until it is closed or receives.
	Gate chan struct{}
}

// NewFakeService creates a new FakeService holding tasks.
func NewFakeService(tasks ...service.Task) *FakeService {
	f := &FakeService{nextID: 100}
	f.tasks = append(f.tasks, tasks...)
	return f
}

// AddTask adds a task to the fake store.
func (f *FakeService) AddTask(task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, task)
}

// Tasks returns a copy of the stored tasks.
func (f *FakeService) Tasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Prompts returns every prompt passed to Generate.
func (f *FakeService) Prompts() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, len(f.prompts))
	copy(out, f.prompts)
	return out
}

func (f *FakeService) wait(ctx context.Context) error {
	if f.Gate == nil {
		return nil
	}
	select {
	case <-f.Gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ListTasks implements service.TaskStore.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return nil, err
	}
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.Tasks(), nil
}

// CreateTask implements service.TaskStore.
// A task without an ID gets a generated numeric one.
func (f *FakeService) CreateTask(ctx context.Context, task service.Task) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if task.ID == "" {
		task.ID = strconv.Itoa(f.nextID)
		f.nextID++
	}
	f.tasks = append(f.tasks, task)
	return task, nil
}

// UpdateTask implements service.TaskStore.
func (f *FakeService) UpdateTask(ctx context.Context, task service.Task) (service.Task, error) {
	if err := f.wait(ctx); err != nil {
		return service.Task{}, err
	}
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == task.ID {
			f.tasks[i] = task
			return task, nil
		}
	}
	return service.Task{}, &service.NetworkError{Op: "update task", StatusCode: 404, Err: service.ErrNotFound}
}

// DeleteTask implements service.TaskStore.
func (f *FakeService) DeleteTask(ctx context.Context, id string) error {
	if err := f.wait(ctx); err != nil {
		return err
	}
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return &service.NetworkError{Op: "delete task", StatusCode: 404, Err: service.ErrNotFound}
}

// Generate implements service.Generator.
func (f *FakeService) Generate(ctx context.Context, prompt string) (string, error) {
	if err := f.wait(ctx); err != nil {
		return "", err
	}
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.GenerateErr != nil {
		return "", f.GenerateErr
	}
	return f.Reply, nil
}
