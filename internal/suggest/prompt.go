// Package suggest turns a user prompt and the current task list into grouped
// task suggestions from a text-generation provider.
package suggest

import (
	"fmt"
	"strings"
	"time"

	"caretaker/internal/service"
)

// Shape selects the reply format the provider is asked for.
type Shape int

const (
	// ShapeGrouped asks for suggestion blocks, each with its own tasks:
	//	[{"suggestion": "...", "tasks": [TaskJson...]}]
	ShapeGrouped Shape = iota

	// ShapeFlat asks for a bare task array: [TaskJson...]
	ShapeFlat
)

// Request is a prompt ready to be sent to a provider.
type Request struct {
	Shape  Shape
	Prompt string
}

// BuildRequest serializes tasks and the user's literal prompt into a provider
// prompt that demands JSON-only output in the given shape.
// The field names in the templates are the parser's contract.
func BuildRequest(tasks []service.Task, userPrompt string, shape Shape) Request {
	var sb strings.Builder
	for i, t := range tasks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(TaskLine(t))
	}

	tmpl := groupedTemplate
	if shape == ShapeFlat {
		tmpl = flatTemplate
	}
	return Request{
		Shape:  shape,
		Prompt: fmt.Sprintf(tmpl, sb.String(), userPrompt),
	}
}

// TaskLine renders one task as it appears in the prompt.
func TaskLine(t service.Task) string {
	return fmt.Sprintf("- id: %s, title: %s, createdAt: %s, status: %s",
		t.ID, oneLine(t.Title), t.CreatedAt.UTC().Format(time.RFC3339), t.Status)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}

const groupedTemplate = `You are a productivity assistant helping users manage their to-do list.

Here is the user's to-do list:
%s

User prompt: "%s"

Your task:
- Suggest what the user should focus on today (or upcoming days).
- Provide a short motivational text.
- Attach relevant task lists.

Output rules:
- Respond only in JSON.
- No explanation outside the JSON.
- Use this structure (array only):
[
  {
    "suggestion": "string",
    "tasks": [
      {
        "id": "string",
        "title": "string",
        "status": 0 or 1,
        "createdAt": "string (ISO-8601 datetime)"
      }
    ]
  }
]
- Answer in the language of the user prompt.`

const flatTemplate = `You are a productivity assistant.

Here is the user's to-do list:
%s

User prompt: "%s"

Please analyze the tasks and suggest what the user should focus on today.

Output rules:
- Respond only in JSON format.
- Do not include any explanation or text outside the JSON.
- Use this exact structure (array only, no wrapping object):
[
  {
    "createdAt": "string (ISO-8601 datetime)",
    "title": "string",
    "status": 0 or 1,
    "id": "string"
  }
]`
