package groups

import "caretaker/internal/service"

// Item is one row of a flattened collection: either a group header or a task.
type Item struct {
	// Header is true for group header rows.
	Header bool

	// Group is the header's label, or the owning group of a task row.
	Group string

	// Task is set for task rows.
	Task service.Task
}

// Flatten returns headers and tasks interleaved in display order.
// Each header is followed by its group's tasks.
func (c Collection) Flatten() []Item {
	items := make([]Item, 0, len(c.labels)+c.TaskCount())
	for _, l := range c.labels {
		items = append(items, Item{Header: true, Group: l})
		for _, t := range c.tasks[l] {
			items = append(items, Item{Group: l, Task: t})
		}
	}
	return items
}
