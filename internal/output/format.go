// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

// TimeLayout is used for timestamps in detail output.
const TimeLayout = "2006-01-02 15:04"

// FormatTask formats a task line in the list view.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces,
// completion box, title)
func FormatTask(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "%4d  %s %s\n", num, checkbox(t.Completed), normalizeTitle(task.UnescapeHTML(t.Title)))
}

// FormatTaskDetail prints every field of a task.
func FormatTaskDetail(w io.Writer, t task.Task) {
	d := t.Draft()
	status := "active"
	if t.Completed {
		status = "completed"
	}
	fmt.Fprintf(w, "ID:       %s\n", t.ID)
	fmt.Fprintf(w, "Title:    %s\n", normalizeTitle(d.Title))
	fmt.Fprintf(w, "Status:   %s\n", status)
	fmt.Fprintf(w, "Created:  %s\n", formatTime(t.CreatedAt))
	fmt.Fprintf(w, "Updated:  %s\n", formatTime(t.UpdatedAt))
	if d.Description != "" {
		fmt.Fprintln(w)
		for _, line := range strings.Split(normalizeNewlines(d.Description), "\n") {
			fmt.Fprintf(w, "    %s\n", line)
		}
	}
}

// FormatSummary prints the task counts shown under the list view.
func FormatSummary(w io.Writer, tasks []task.Task) {
	done := len(task.FilterStatus(tasks, task.StatusCompleted))
	fmt.Fprintf(w, "%d tasks, %d active, %d completed\n", len(tasks), len(tasks)-done, done)
}

// FormatStorageInfo prints storage usage.
func FormatStorageInfo(w io.Writer, backend string, info storage.Info) {
	fmt.Fprintf(w, "Backend:    %s\n", backend)
	if !info.Available {
		fmt.Fprintln(w, "Available:  no")
		return
	}
	fmt.Fprintln(w, "Available:  yes")
	fmt.Fprintf(w, "Used:       %s\n", formatBytes(info.Used))
	fmt.Fprintf(w, "Total:      %s\n", formatBytes(info.Total))
	fmt.Fprintf(w, "Percentage: %.2f%%\n", info.Percentage)
}

func checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(TimeLayout)
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n < unit:
		return fmt.Sprintf("%d B", n)
	case n < unit*unit:
		return fmt.Sprintf("%.1f KiB", float64(n)/unit)
	default:
		return fmt.Sprintf("%.1f MiB", float64(n)/(unit*unit))
	}
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
