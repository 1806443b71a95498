package groups

import (
	"reflect"
	"testing"
	"time"

	"caretaker/internal/bucket"
	"caretaker/internal/service"
)

var today = time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

func task(id string, daysAgo int) service.Task {
	return service.Task{
		ID:        id,
		Title:     "task " + id,
		CreatedAt: today.AddDate(0, 0, -daysAgo).Add(9 * time.Hour),
	}
}

func sample() Collection {
	return GroupBy([]service.Task{
		task("1", 0),
		task("2", 1),
		task("3", 0),
		task("4", 30),
		task("5", 1),
	}, bucket.Label, today)
}

func groupIDs(c Collection, label string) []string {
	var ids []string
	for _, t := range c.Tasks(label) {
		ids = append(ids, t.ID)
	}
	return ids
}

func TestGroupByScenario(t *testing.T) {
	created, _ := time.Parse(time.RFC3339, "2024-01-10T00:00:00Z")
	c := GroupBy([]service.Task{
		{ID: "1", Title: "Buy milk", Status: service.StatusPending, CreatedAt: created},
	}, bucket.Label, today)

	if got := c.Labels(); !reflect.DeepEqual(got, []string{"Today"}) {
		t.Fatalf("labels = %v", got)
	}
	if got := groupIDs(c, "Today"); !reflect.DeepEqual(got, []string{"1"}) {
		t.Errorf("Today = %v", got)
	}
}

func TestGroupByFirstSeenOrder(t *testing.T) {
	c := sample()

	want := []string{"Today", "Yesterday", "11 December 2023"}
	if got := c.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if got := groupIDs(c, "Today"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("Today = %v", got)
	}
	if got := groupIDs(c, "Yesterday"); !reflect.DeepEqual(got, []string{"2", "5"}) {
		t.Errorf("Yesterday = %v", got)
	}
}

func TestGroupByEmpty(t *testing.T) {
	c := GroupBy(nil, bucket.Label, today)
	if c.Len() != 0 || c.TaskCount() != 0 {
		t.Errorf("expected empty collection, got %d groups", c.Len())
	}
	if len(c.Flatten()) != 0 {
		t.Error("expected no rows")
	}
}

func TestGroupByDropsDuplicateIDs(t *testing.T) {
	c := GroupBy([]service.Task{task("1", 0), task("1", 3)}, bucket.Label, today)
	if c.TaskCount() != 1 {
		t.Errorf("TaskCount = %d, want 1", c.TaskCount())
	}
	if c.Has("3 days ago") {
		t.Error("duplicate must not create a group")
	}
}

func TestFlattenPreservesEveryID(t *testing.T) {
	c := sample()
	items := c.Flatten()

	seen := map[string]int{}
	headers := 0
	var current string
	for _, it := range items {
		if it.Header {
			headers++
			current = it.Group
			continue
		}
		if it.Group != current {
			t.Errorf("task %s listed under %q but owned by %q", it.Task.ID, current, it.Group)
		}
		seen[it.Task.ID]++
	}

	if headers != c.Len() {
		t.Errorf("headers = %d, want %d", headers, c.Len())
	}
	if len(seen) != 5 {
		t.Errorf("saw %d ids, want 5", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("id %s seen %d times", id, n)
		}
	}
	for _, l := range c.Labels() {
		if len(c.Tasks(l)) == 0 {
			t.Errorf("group %q is empty", l)
		}
	}
}

func TestFindGroupOf(t *testing.T) {
	c := sample()
	if g, ok := c.FindGroupOf("5"); !ok || g != "Yesterday" {
		t.Errorf("FindGroupOf(5) = %q, %v", g, ok)
	}
	if _, ok := c.FindGroupOf("nope"); ok {
		t.Error("expected not found")
	}
}

func TestWithoutTask(t *testing.T) {
	c := sample()
	next := c.WithoutTask("1")

	if got := groupIDs(next, "Today"); !reflect.DeepEqual(got, []string{"3"}) {
		t.Errorf("Today = %v", got)
	}
	// receiver untouched
	if got := groupIDs(c, "Today"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("original mutated: %v", got)
	}
}

func TestWithoutTaskDropsEmptyGroup(t *testing.T) {
	next := sample().WithoutTask("4")
	if next.Has("11 December 2023") {
		t.Error("empty group should be dropped")
	}
	if want := []string{"Today", "Yesterday"}; !reflect.DeepEqual(next.Labels(), want) {
		t.Errorf("labels = %v", next.Labels())
	}
}

func TestWithoutTaskAbsentIsNoop(t *testing.T) {
	c := sample()
	next := c.WithoutTask("missing")
	if !reflect.DeepEqual(next.IDs(), c.IDs()) {
		t.Errorf("ids changed: %v", next.IDs())
	}
}

func TestWithTask(t *testing.T) {
	c := sample()

	tests := []struct {
		name  string
		label string
		at    int
		want  []string
	}{
		{"front", "Today", 0, []string{"9", "1", "3"}},
		{"middle", "Today", 1, []string{"1", "9", "3"}},
		{"append", "Today", -1, []string{"1", "3", "9"}},
		{"clamped", "Today", 99, []string{"1", "3", "9"}},
		{"new group", "Tomorrow", 0, []string{"9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := c.WithTask(tt.label, task("9", 0), tt.at)
			if got := groupIDs(next, tt.label); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	next := c.WithTask("Tomorrow", task("9", 0), 0)
	labels := next.Labels()
	if labels[len(labels)-1] != "Tomorrow" {
		t.Errorf("new group should be last, got %v", labels)
	}
}

func TestWithTaskDuplicateIsNoop(t *testing.T) {
	c := sample()
	next := c.WithTask("Yesterday", task("1", 0), 0)
	if next.TaskCount() != c.TaskCount() {
		t.Errorf("TaskCount = %d, want %d", next.TaskCount(), c.TaskCount())
	}
	if g, _ := next.FindGroupOf("1"); g != "Today" {
		t.Errorf("task moved to %q", g)
	}
}

func TestReplace(t *testing.T) {
	c := sample()
	done := c.Tasks("Today")[1].WithStatus(service.StatusDone)
	next := c.Replace(done)

	got := next.Tasks("Today")
	if got[1].ID != "3" || !got[1].Done() {
		t.Errorf("replace failed: %+v", got[1])
	}
	if c.Tasks("Today")[1].Done() {
		t.Error("original mutated")
	}
}

func TestReplaceGroup(t *testing.T) {
	c := sample()
	ts := c.Tasks("Today")
	ts[0], ts[1] = ts[1], ts[0]

	next := c.ReplaceGroup("Today", ts)
	if got := groupIDs(next, "Today"); !reflect.DeepEqual(got, []string{"3", "1"}) {
		t.Errorf("got %v", got)
	}
	if got := groupIDs(c, "Today"); !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Errorf("original mutated: %v", got)
	}

	if next := c.ReplaceGroup("Today", nil); next.Has("Today") {
		t.Error("empty replacement should drop the group")
	}
}
