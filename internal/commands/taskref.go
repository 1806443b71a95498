package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"caretaker/internal/groups"
	"caretaker/internal/output"
	"caretaker/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Letter  rune   // 'a'-'z' for a group reference, 0 otherwise
	TaskNum int    // 1-based task number within the group
	ID      string // literal task id when Letter is 0
}

// HasLetter reports whether the reference names a group and position.
func (r TaskRef) HasLetter() bool {
	return r.Letter != 0
}

func (r TaskRef) String() string {
	if r.HasLetter() {
		return fmt.Sprintf("%c%d", r.Letter, r.TaskNum)
	}
	return r.ID
}

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrRefNotFound indicates a reference that names no task.
	ErrRefNotFound = errors.New("task not found")
)

// ParseTaskRef parses a task reference from the start of args and returns it
// with the number of args consumed.
//
// Parsing rules:
// 1. <letter><digits> (e.g., a1, b12) → group reference
// 2. single letter followed by an all-digit arg (a 1) → group reference
// 3. single letter with no second arg → error: task reference required
// 4. single letter followed by anything else → error: invalid task reference
// 5. anything else → literal task id
func ParseTaskRef(args []string) (TaskRef, int, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, 0, ErrTaskRefRequired
	}

	first := args[0]
	if isLetter(rune(first[0])) {
		letter := rune(first[0])

		if len(first) > 1 && isAllDigits(first[1:]) {
			num, err := strconv.Atoi(first[1:])
			if err != nil {
				return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
			}
			return TaskRef{Letter: letter, TaskNum: num}, 1, nil
		}

		if len(first) == 1 {
			if len(args) < 2 {
				return TaskRef{}, 0, ErrTaskRefRequired
			}
			if !isAllDigits(args[1]) {
				return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s", first)
			}
			num, err := strconv.Atoi(args[1])
			if err != nil {
				return TaskRef{}, 0, fmt.Errorf("invalid task reference: %s %s", first, args[1])
			}
			return TaskRef{Letter: letter, TaskNum: num}, 2, nil
		}
	}

	return TaskRef{ID: first}, 1, nil
}

// ParseGroupLetter parses a bare group letter such as "b".
func ParseGroupLetter(s string) (rune, error) {
	if len(s) != 1 || !isLetter(rune(s[0])) {
		return 0, fmt.Errorf("invalid group letter: %s", s)
	}
	return rune(s[0]), nil
}

// GroupLabel returns the label of the group shown with letter.
func GroupLabel(c groups.Collection, letter rune) (string, error) {
	labels := c.Labels()
	i := int(letter - 'a')
	if _, ok := output.GroupLetter(i); !ok || i >= len(labels) {
		return "", fmt.Errorf("group letter not found: %c", letter)
	}
	return labels[i], nil
}

// Resolve finds the task ref names in c.
func Resolve(c groups.Collection, ref TaskRef) (service.Task, error) {
	if !ref.HasLetter() {
		t, _, ok := c.Find(ref.ID)
		if !ok {
			return service.Task{}, fmt.Errorf("%w: %s", ErrRefNotFound, ref.ID)
		}
		return t, nil
	}

	label, err := GroupLabel(c, ref.Letter)
	if err != nil {
		return service.Task{}, err
	}
	tasks := c.Tasks(label)
	if ref.TaskNum < 1 || ref.TaskNum > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %s", ref)
	}
	return tasks[ref.TaskNum-1], nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isLetter returns true if r is a lowercase letter a-z.
func isLetter(r rune) bool {
	return r >= 'a' && r <= 'z'
}
