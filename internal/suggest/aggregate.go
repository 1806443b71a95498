package suggest

import (
	"time"

	"caretaker/internal/bucket"
	"caretaker/internal/groups"
)

// Group is a suggestion's text paired with its date-bucketed tasks.
type Group struct {
	Text  string
	Tasks groups.Collection
}

// Result holds bucketed suggestions in the provider's order.
type Result []Group

// Aggregate buckets each suggestion's tasks by date. The outer order is the
// provider's ranking and is never re-sorted.
func Aggregate(suggestions []Suggestion, today time.Time) Result {
	out := make(Result, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, Group{
			Text:  s.Text,
			Tasks: groups.GroupBy(s.Tasks, bucket.Label, today),
		})
	}
	return out
}

// TaskCount returns the number of tasks across all suggestions.
func (r Result) TaskCount() int {
	n := 0
	for _, g := range r {
		n += g.Tasks.TaskCount()
	}
	return n
}
