// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"tasklist/internal/controller"
	"tasklist/internal/service"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces, checkbox, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, box, normalizeTitle(task.Title))
}

// FormatTasks prints the visible tasks of snap. Numbers are positions in the
// unfiltered collection so they stay valid as task references.
// Returns the number of lines printed.
func FormatTasks(w io.Writer, snap controller.State) int {
	printed := 0
	for i, task := range snap.Tasks {
		if !snap.Filter.Match(task) {
			continue
		}
		FormatTask(w, i+1, task)
		printed++
	}
	return printed
}

// FormatCounts prints the per-filter counts, marking the current filter.
// Format: "*all (3)  active (1)  completed (2)\n"
func FormatCounts(w io.Writer, snap controller.State) {
	parts := make([]string, 0, len(service.Filters))
	for _, f := range service.Filters {
		mark := ""
		if f == snap.Filter {
			mark = "*"
		}
		parts = append(parts, fmt.Sprintf("%s%s (%d)", mark, f, snap.Count(f)))
	}
	fmt.Fprintln(w, strings.Join(parts, "  "))
}

// EmptyMessage returns what to show when nothing matches f.
func EmptyMessage(f service.Filter) string {
	switch f {
	case service.FilterActive:
		return "no pending tasks, good job"
	case service.FilterCompleted:
		return "no completed tasks yet"
	default:
		return "no tasks yet, add one"
	}
}

// FormatError prints an error line.
func FormatError(w io.Writer, msg string) {
	fmt.Fprintf(w, "error: %s\n", msg)
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

// FormatListName prints a task list with its id, for use in google.list.
// Format: "{TITLE}  ({ID})\n", with " *" appended to the default list.
func FormatListName(w io.Writer, list service.TaskList) {
	mark := ""
	if list.IsDefault {
		mark = " *"
	}
	fmt.Fprintf(w, "%s  (%s)%s\n", normalizeTitle(list.Title), list.ID, mark)
}
