package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"caretaker/internal/service"
)

// Suggestion is one decoded unit of a provider reply, before bucketing.
type Suggestion struct {
	Text  string
	Tasks []service.Task
}

// ParseError reports a reply that could not be decoded into either schema.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse suggestions: %s: %v", e.Reason, e.Err)
	}
	return "parse suggestions: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?[ \t]*\r?\n?")
	trailingFence = regexp.MustCompile("\r?\n?```[ \t]*$")
)

// Sanitize strips markdown code fences and any chatter around the JSON array.
// Text whose first JSON value is an object is returned from that object on,
// so an array nested inside it is never mistaken for the payload.
func Sanitize(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)

	start := strings.IndexAny(s, "[{")
	if start < 0 {
		return s
	}
	if s[start] == '{' {
		return s[start:]
	}
	end := strings.LastIndex(s, "]")
	if end < start {
		return s[start:]
	}
	return s[start : end+1]
}

// Parse decodes a raw provider reply. It tries the grouped schema first and
// falls back to the flat schema, which yields a single Suggestion with empty
// text. Unknown fields are ignored. Any failure is a *ParseError.
func Parse(raw string) ([]Suggestion, error) {
	text := Sanitize(raw)
	if text == "" {
		return nil, &ParseError{Reason: "empty reply"}
	}
	if !strings.HasPrefix(text, "[") {
		return nil, &ParseError{Reason: "reply is not a JSON array"}
	}

	grouped, errA := decodeGrouped(text)
	if errA == nil {
		return grouped, nil
	}
	if looksGrouped(text) {
		return nil, &ParseError{Reason: "invalid suggestion list", Err: errA}
	}

	tasks, errB := decodeTasks(text)
	if errB == nil {
		return []Suggestion{{Tasks: tasks}}, nil
	}

	return nil, &ParseError{Reason: "reply matches no known schema", Err: errB}
}

// looksGrouped reports whether text is an array of objects carrying a
// "suggestion" key, so grouped decode errors can be reported as such.
func looksGrouped(text string) bool {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return false
	}
	for _, item := range items {
		if _, ok := item["suggestion"]; ok {
			return true
		}
	}
	return false
}

type suggestionJSON struct {
	Suggestion *string     `json:"suggestion"`
	Tasks      *[]taskJSON `json:"tasks"`
}

// taskJSON uses pointers so missing required fields can be told apart from
// zero values.
type taskJSON struct {
	ID         *string `json:"id"`
	Title      *string `json:"title"`
	Status     *int    `json:"status"`
	CreatedAt  *string `json:"createdAt"`
	AIResponse *string `json:"aiResponse"`
}

func decodeGrouped(text string) ([]Suggestion, error) {
	var raw []suggestionJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}

	out := make([]Suggestion, 0, len(raw))
	for i, s := range raw {
		if s.Suggestion == nil {
			return nil, fmt.Errorf("item %d: missing suggestion", i)
		}
		if s.Tasks == nil {
			return nil, fmt.Errorf("item %d: missing tasks", i)
		}
		tasks, err := convertTasks(*s.Tasks)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, Suggestion{Text: *s.Suggestion, Tasks: tasks})
	}
	return out, nil
}

func decodeTasks(text string) ([]service.Task, error) {
	var raw []taskJSON
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	return convertTasks(raw)
}

func convertTasks(raw []taskJSON) ([]service.Task, error) {
	tasks := make([]service.Task, 0, len(raw))
	for i, r := range raw {
		t, err := r.task()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r taskJSON) task() (service.Task, error) {
	switch {
	case r.ID == nil:
		return service.Task{}, fmt.Errorf("missing id")
	case r.Title == nil:
		return service.Task{}, fmt.Errorf("missing title")
	case r.Status == nil:
		return service.Task{}, fmt.Errorf("missing status")
	case r.CreatedAt == nil:
		return service.Task{}, fmt.Errorf("missing createdAt")
	}

	status := service.Status(*r.Status)
	if !status.Valid() {
		return service.Task{}, fmt.Errorf("invalid status %d", *r.Status)
	}
	created, err := time.Parse(time.RFC3339, *r.CreatedAt)
	if err != nil {
		return service.Task{}, fmt.Errorf("createdAt: %w", err)
	}

	return service.Task{
		ID:         *r.ID,
		Title:      *r.Title,
		Status:     status,
		CreatedAt:  created,
		AIResponse: r.AIResponse,
	}, nil
}
