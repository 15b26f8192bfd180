// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nibzard/tasklist/internal/todo"
)

const (
	// ListSeparator is the separator line around the search header.
	ListSeparator = "------------"

	// LateMarker is appended to overdue tasks.
	LateMarker = "Late!"

	// DateLayout is the due date format.
	DateLayout = "2006-01-02"
)

// FormatTask formats one task line.
// Format: "{POS:>4}  [x] {NUMBER}  {TITLE} ({DUE}) Late!\n"; the due date and the
// late marker are omitted when absent.
func FormatTask(w io.Writer, pos int, task todo.Task, today time.Time) {
	var b strings.Builder
	fmt.Fprintf(&b, "%4d  %s %s  %s", pos, CheckBox(task.IsChecked), task.Number, NormalizeTitle(task.Title))
	if task.DueDate != "" {
		fmt.Fprintf(&b, " (%s)", task.DueDate)
	}
	if IsOverdue(task.DueDate, today) {
		b.WriteString(" " + LateMarker)
	}
	fmt.Fprintln(w, b.String())
}

// FormatSearchHeader prints the active search term and match count.
func FormatSearchHeader(w io.Writer, term string, shown, total int) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "search %q: %d of %d\n", term, shown, total)
	fmt.Fprintln(w, ListSeparator)
}

// FormatEmpty prints the placeholder for an empty view.
func FormatEmpty(w io.Writer, searching bool) {
	if searching {
		fmt.Fprintln(w, "no matching tasks")
		return
	}
	fmt.Fprintln(w, "no tasks")
}

// CheckBox renders the completion flag.
func CheckBox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

// IsOverdue reports whether due parses as YYYY-MM-DD and falls strictly before
// today's local date. Unparseable or empty dates are never overdue.
func IsOverdue(due string, today time.Time) bool {
	if due == "" {
		return false
	}
	d, err := time.ParseInLocation(DateLayout, due, today.Location())
	if err != nil {
		return false
	}
	y, m, day := today.Date()
	start := time.Date(y, m, day, 0, 0, 0, 0, today.Location())
	return d.Before(start)
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
