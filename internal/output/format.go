// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"caretaker/internal/groups"
	"caretaker/internal/service"
	"caretaker/internal/suggest"
)

const (
	// ListSeparator is the separator line for group sections.
	ListSeparator = "------------"

	// MaxLetters is the number of groups that get a reference letter.
	MaxLetters = 26
)

var (
	headerColor = color.New(color.Bold)
	doneColor   = color.New(color.Faint)
	hintColor   = color.New(color.FgCyan)
)

// GroupLetter returns the reference letter of the group at index i.
// Groups past MaxLetters have none.
func GroupLetter(i int) (rune, bool) {
	if i < 0 || i >= MaxLetters {
		return 0, false
	}
	return rune('a' + i), true
}

// TaskRef formats the reference of task num (1-based) in group i, e.g. "b3".
// Groups without a letter get an empty reference.
func TaskRef(i, num int) string {
	letter, ok := GroupLetter(i)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%c%d", letter, num)
}

// FormatGroupHeader formats a group section header.
func FormatGroupHeader(w io.Writer, i int, label string) {
	title := label
	if letter, ok := GroupLetter(i); ok {
		title = fmt.Sprintf("%c  %s", letter, label)
	}
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, headerColor.Sprint(title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatTask formats a task line.
// Format: "{REF:>5}  [x] {TITLE}\n" (5-wide right-aligned reference, status marker, title)
func FormatTask(w io.Writer, ref string, task service.Task) {
	title := normalizeTitle(task.Title)
	marker := "[ ]"
	if task.Done() {
		marker = "[x]"
		title = doneColor.Sprint(title)
	}
	fmt.Fprintf(w, "%5s  %s %s\n", ref, marker, title)
}

// FormatGroups writes every group with its letter and numbered tasks.
func FormatGroups(w io.Writer, c groups.Collection) {
	for i, label := range c.Labels() {
		FormatGroupHeader(w, i, label)
		for n, t := range c.Tasks(label) {
			FormatTask(w, TaskRef(i, n+1), t)
		}
	}
}

// FormatSuggestions writes suggestions in the provider's order, each followed
// by its tasks bucketed by date.
func FormatSuggestions(w io.Writer, result suggest.Result) {
	for i, s := range result {
		if i > 0 {
			fmt.Fprintln(w)
		}
		heading := fmt.Sprintf("Suggestion %d", i+1)
		if text := strings.TrimSpace(s.Text); text != "" {
			heading += ": " + normalizeTitle(text)
		}
		fmt.Fprintln(w, hintColor.Sprint(heading))

		for _, label := range s.Tasks.Labels() {
			fmt.Fprintf(w, "  %s\n", headerColor.Sprint(label))
			for _, t := range s.Tasks.Tasks(label) {
				FormatTask(w, "", t)
			}
		}
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	// Replace newlines with spaces
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	// Trim and check for empty
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
