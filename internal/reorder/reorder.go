// Package reorder applies drag-initiated move intents to a grouped collection.
//
// Every transition is atomic and keeps the set of task IDs unchanged; only
// group membership and position move. A rejected intent leaves the
// collection exactly as it was and reports ErrStaleIntent.
package reorder

import (
	"errors"

	"caretaker/internal/groups"
	"caretaker/internal/service"
)

// ErrStaleIntent indicates an intent that no longer matches the collection,
// typically a drag computed against a list that has since changed.
var ErrStaleIntent = errors.New("reorder: stale intent")

// Intent is a requested move of one or more tasks.
type Intent interface {
	apply(c groups.Collection) (groups.Collection, error)
}

// WithinGroup sets the order of a group's tasks.
// TaskIDs must be a permutation of the group's current IDs.
type WithinGroup struct {
	Group   string
	TaskIDs []string
}

// AcrossGroups moves one task into another group.
// The source group is discovered from the collection.
type AcrossGroups struct {
	TaskID  string
	ToGroup string

	// Before optionally names a task in ToGroup to insert in front of.
	// Empty, or an ID not in ToGroup, appends.
	Before string
}

// Apply runs intent against c. On error the returned collection is c.
func Apply(c groups.Collection, intent Intent) (groups.Collection, error) {
	if intent == nil {
		return c, ErrStaleIntent
	}
	return intent.apply(c)
}

func (w WithinGroup) apply(c groups.Collection) (groups.Collection, error) {
	current := c.Tasks(w.Group)
	if len(current) == 0 || len(current) != len(w.TaskIDs) {
		return c, ErrStaleIntent
	}

	byID := make(map[string]service.Task, len(current))
	for _, t := range current {
		byID[t.ID] = t
	}

	ordered := make([]service.Task, 0, len(current))
	for _, id := range w.TaskIDs {
		t, ok := byID[id]
		if !ok {
			// unknown or repeated id
			return c, ErrStaleIntent
		}
		delete(byID, id)
		ordered = append(ordered, t)
	}

	return c.ReplaceGroup(w.Group, ordered), nil
}

func (a AcrossGroups) apply(c groups.Collection) (groups.Collection, error) {
	task, from, ok := c.Find(a.TaskID)
	if !ok || a.ToGroup == "" {
		return c, ErrStaleIntent
	}
	if from == a.ToGroup {
		return c, nil
	}

	at := -1
	if a.Before != "" {
		for i, t := range c.Tasks(a.ToGroup) {
			if t.ID == a.Before {
				at = i
				break
			}
		}
	}

	return c.WithoutTask(a.TaskID).WithTask(a.ToGroup, task, at), nil
}
