// Package groups implements an insertion-ordered, immutable partition of
// tasks into labelled groups.
//
// Every task ID appears in at most one group, groups keep the order in which
// their labels were first seen, and no group is ever empty. All mutators
// return a new Collection and leave the receiver untouched.
package groups

import (
	"time"

	"caretaker/internal/bucket"
	"caretaker/internal/service"
)

// Collection is an ordered mapping from group label to an ordered task sequence.
// The zero value is an empty collection.
type Collection struct {
	labels []string
	tasks  map[string][]service.Task
}

// GroupBy buckets tasks by label, preserving input order within each group and
// first-seen order across groups. A task whose ID was already placed is skipped.
func GroupBy(tasks []service.Task, label bucket.Func, today time.Time) Collection {
	c := Collection{tasks: make(map[string][]service.Task)}
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true

		l := label(t.CreatedAt, today)
		if _, ok := c.tasks[l]; !ok {
			c.labels = append(c.labels, l)
		}
		c.tasks[l] = append(c.tasks[l], t)
	}
	return c
}

// Labels returns group labels in display order.
func (c Collection) Labels() []string {
	out := make([]string, len(c.labels))
	copy(out, c.labels)
	return out
}

// Tasks returns a copy of the tasks in the group, or nil if there is no such group.
func (c Collection) Tasks(label string) []service.Task {
	ts, ok := c.tasks[label]
	if !ok {
		return nil
	}
	out := make([]service.Task, len(ts))
	copy(out, ts)
	return out
}

// Has reports whether the group exists.
func (c Collection) Has(label string) bool {
	_, ok := c.tasks[label]
	return ok
}

// Len returns the number of groups.
func (c Collection) Len() int {
	return len(c.labels)
}

// TaskCount returns the number of tasks across all groups.
func (c Collection) TaskCount() int {
	n := 0
	for _, ts := range c.tasks {
		n += len(ts)
	}
	return n
}

// IDs returns every task ID in display order.
func (c Collection) IDs() []string {
	ids := make([]string, 0, c.TaskCount())
	for _, l := range c.labels {
		for _, t := range c.tasks[l] {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

// FindGroupOf returns the label of the group holding taskID.
func (c Collection) FindGroupOf(taskID string) (string, bool) {
	for _, l := range c.labels {
		for _, t := range c.tasks[l] {
			if t.ID == taskID {
				return l, true
			}
		}
	}
	return "", false
}

// Find returns the task with the given ID and its group label.
func (c Collection) Find(taskID string) (service.Task, string, bool) {
	for _, l := range c.labels {
		for _, t := range c.tasks[l] {
			if t.ID == taskID {
				return t, l, true
			}
		}
	}
	return service.Task{}, "", false
}

// WithoutTask returns a collection without taskID.
// A group left empty is dropped. Removing an absent ID is a no-op.
func (c Collection) WithoutTask(taskID string) Collection {
	label, ok := c.FindGroupOf(taskID)
	if !ok {
		return c
	}

	next := c.clone()
	src := next.tasks[label]
	kept := make([]service.Task, 0, len(src)-1)
	for _, t := range src {
		if t.ID != taskID {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		next.dropLabel(label)
		return next
	}
	next.tasks[label] = kept
	return next
}

// WithTask returns a collection with task inserted into the group at index at.
// A missing group is created after the existing ones. at is clamped to the
// group bounds and a negative at appends. Inserting an ID that is already
// present anywhere is a no-op.
func (c Collection) WithTask(label string, task service.Task, at int) Collection {
	if _, ok := c.FindGroupOf(task.ID); ok {
		return c
	}

	next := c.clone()
	dst, ok := next.tasks[label]
	if !ok {
		next.labels = append(next.labels, label)
	}
	if at < 0 || at > len(dst) {
		at = len(dst)
	}

	ts := make([]service.Task, 0, len(dst)+1)
	ts = append(ts, dst[:at]...)
	ts = append(ts, task)
	ts = append(ts, dst[at:]...)
	next.tasks[label] = ts
	return next
}

// Replace swaps the stored task having task.ID for task, keeping its position.
// Replacing an absent ID is a no-op.
func (c Collection) Replace(task service.Task) Collection {
	label, ok := c.FindGroupOf(task.ID)
	if !ok {
		return c
	}
	next := c.clone()
	ts := make([]service.Task, len(next.tasks[label]))
	copy(ts, next.tasks[label])
	for i := range ts {
		if ts[i].ID == task.ID {
			ts[i] = task
		}
	}
	next.tasks[label] = ts
	return next
}

// ReplaceGroup returns a collection whose group label holds exactly tasks.
// The caller is responsible for keeping IDs unique; see reorder.WithinGroup.
// An empty tasks slice drops the group.
func (c Collection) ReplaceGroup(label string, tasks []service.Task) Collection {
	next := c.clone()
	if len(tasks) == 0 {
		if _, ok := next.tasks[label]; ok {
			next.dropLabel(label)
		}
		return next
	}
	if _, ok := next.tasks[label]; !ok {
		next.labels = append(next.labels, label)
	}
	ts := make([]service.Task, len(tasks))
	copy(ts, tasks)
	next.tasks[label] = ts
	return next
}

// clone copies the label order and map; task slices are shared and must be
// replaced, never written through.
func (c Collection) clone() Collection {
	next := Collection{
		labels: make([]string, len(c.labels)),
		tasks:  make(map[string][]service.Task, len(c.tasks)),
	}
	copy(next.labels, c.labels)
	for l, ts := range c.tasks {
		next.tasks[l] = ts
	}
	return next
}

func (c *Collection) dropLabel(label string) {
	delete(c.tasks, label)
	for i, l := range c.labels {
		if l == label {
			c.labels = append(c.labels[:i:i], c.labels[i+1:]...)
			return
		}
	}
}
