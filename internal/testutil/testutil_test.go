package testutil

import (
	"context"
	"errors"
	"testing"

	"caretaker/internal/service"
)

func TestFirstDiff(t *testing.T) {
	tests := []struct {
		want, got string
		line      int
	}{
		{"a\nb\n", "a\nc\n", 2},
		{"a\n", "a\nb\n", 2},
		{"x", "y", 1},
	}
	for _, tt := range tests {
		line, _, _ := firstDiff([]byte(tt.want), []byte(tt.got))
		if line != tt.line {
			t.Errorf("firstDiff(%q, %q) line = %d, want %d", tt.want, tt.got, line, tt.line)
		}
	}
}

func TestFakeServiceCRUD(t *testing.T) {
	ctx := context.Background()
	f := NewFakeService(service.Task{ID: "1", Title: "A"})

	created, err := f.CreateTask(ctx, service.Task{Title: "B"})
	if err != nil || created.ID != "100" {
		t.Fatalf("CreateTask = %+v, %v", created, err)
	}
	if _, err := f.UpdateTask(ctx, service.Task{ID: "1", Title: "A2"}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if err := f.DeleteTask(ctx, "100"); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	tasks, _ := f.ListTasks(ctx)
	if len(tasks) != 1 || tasks[0].Title != "A2" {
		t.Errorf("tasks = %+v", tasks)
	}

	if err := f.DeleteTask(ctx, "nope"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("delete missing: %v", err)
	}
}

func TestFakeServiceGateHonorsContext(t *testing.T) {
	f := NewFakeService()
	f.Gate = make(chan struct{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := f.ListTasks(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
