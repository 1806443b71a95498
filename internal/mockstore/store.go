// Package mockstore serves an in-memory task store over the same REST
// contract as the remote store, for local development and tests.
package mockstore

import (
	"strconv"
	"sync"

	"caretaker/internal/service"
)

// Store is a concurrency-safe in-memory task list.
type Store struct {
	mu     sync.RWMutex
	tasks  []service.Task
	nextID int
}

// New creates a store seeded with tasks.
func New(seed ...service.Task) *Store {
	s := &Store{nextID: 1}
	for _, t := range seed {
		s.Create(t)
	}
	return s
}

// List returns all tasks in insertion order.
func (s *Store) List() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]service.Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Create stores a task. Like hosted mock stores, it assigns a sequential
// numeric ID when the task has none or its ID is taken.
func (s *Store) Create(t service.Task) service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" || s.indexOf(t.ID) >= 0 {
		for s.indexOf(strconv.Itoa(s.nextID)) >= 0 {
			s.nextID++
		}
		t.ID = strconv.Itoa(s.nextID)
		s.nextID++
	}
	s.tasks = append(s.tasks, t)
	return t
}

// Update replaces the task with the given ID.
func (s *Store) Update(id string, t service.Task) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, false
	}
	t.ID = id
	s.tasks[i] = t
	return t, true
}

// Delete removes the task with the given ID.
func (s *Store) Delete(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return service.Task{}, false
	}
	t := s.tasks[i]
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return t, true
}

func (s *Store) indexOf(id string) int {
	for i, t := range s.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
