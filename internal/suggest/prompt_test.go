package suggest

import (
	"strings"
	"testing"
	"time"

	"caretaker/internal/service"
)

func TestTaskLine(t *testing.T) {
	task := service.Task{
		ID:        "7",
		Title:     "Call\nmom",
		Status:    service.StatusDone,
		CreatedAt: time.Date(2024, 1, 9, 8, 30, 0, 0, time.FixedZone("X", 3600)),
	}
	want := "- id: 7, title: Call mom, createdAt: 2024-01-09T07:30:00Z, status: done"
	if got := TaskLine(task); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestBuildRequestGrouped(t *testing.T) {
	tasks := []service.Task{
		{ID: "1", Title: "Buy milk", CreatedAt: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)},
		{ID: "2", Title: "Ship release", Status: service.StatusDone, CreatedAt: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)},
	}
	req := BuildRequest(tasks, "what first?", ShapeGrouped)

	if req.Shape != ShapeGrouped {
		t.Errorf("shape = %v", req.Shape)
	}
	for _, want := range []string{
		"- id: 1, title: Buy milk, createdAt: 2024-01-10T00:00:00Z, status: pending\n- id: 2, title: Ship release, createdAt: 2024-01-08T00:00:00Z, status: done",
		`User prompt: "what first?"`,
		`"suggestion": "string"`,
		`"tasks": [`,
		"Respond only in JSON.",
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildRequestFlat(t *testing.T) {
	req := BuildRequest(nil, "plan my day", ShapeFlat)
	if strings.Contains(req.Prompt, `"suggestion"`) {
		t.Error("flat prompt must not ask for suggestion blocks")
	}
	if !strings.Contains(req.Prompt, "array only, no wrapping object") {
		t.Error("flat prompt must ask for a bare array")
	}
	if !strings.Contains(req.Prompt, `User prompt: "plan my day"`) {
		t.Error("prompt must embed the user prompt verbatim")
	}
}
