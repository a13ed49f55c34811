package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasktrack/internal/storage"
	"tasktrack/internal/task"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name     string
		num      int
		task     task.Task
		expected string
	}{
		{"active", 1, task.Task{Title: "Buy milk"}, "   1  [ ] Buy milk\n"},
		{"completed", 12, task.Task{Title: "Done", Completed: true}, "  12  [x] Done\n"},
		{"unescaped", 3, task.Task{Title: "Fish &amp; chips"}, "   3  [ ] Fish & chips\n"},
		{"newlines", 4, task.Task{Title: "a\r\nb"}, "   4  [ ] a  b\n"},
		{"untitled", 5, task.Task{Title: "  "}, "   5  [ ] (untitled)\n"},
		{"wide number", 10000, task.Task{Title: "x"}, "10000  [ ] x\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FormatTask(&buf, tt.num, tt.task)
			if buf.String() != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, buf.String())
			}
		})
	}
}

func TestFormatTaskDetail(t *testing.T) {
	var buf bytes.Buffer
	FormatTaskDetail(&buf, task.Task{
		ID:          "task_1",
		Title:       "Write &lt;report&gt;",
		Description: "line one\nline two",
		Completed:   true,
		CreatedAt:   time.Date(2026, 1, 19, 10, 0, 0, 0, time.Local),
		UpdatedAt:   time.Date(2026, 1, 19, 11, 30, 0, 0, time.Local),
	})

	expected := "ID:       task_1\n" +
		"Title:    Write <report>\n" +
		"Status:   completed\n" +
		"Created:  2026-01-19 10:00\n" +
		"Updated:  2026-01-19 11:30\n" +
		"\n" +
		"    line one\n" +
		"    line two\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}

func TestFormatSummary(t *testing.T) {
	var buf bytes.Buffer
	FormatSummary(&buf, []task.Task{{Completed: true}, {}, {}})
	if buf.String() != "3 tasks, 2 active, 1 completed\n" {
		t.Errorf("unexpected summary %q", buf.String())
	}
}

func TestFormatStorageInfo(t *testing.T) {
	var buf bytes.Buffer
	FormatStorageInfo(&buf, "file", storage.Info{Available: true, Used: 2048, Total: 5 * 1024 * 1024, Percentage: 0.0390625})

	out := buf.String()
	for _, want := range []string{"Backend:    file\n", "Available:  yes\n", "Used:       2.0 KiB\n", "Total:      5.0 MiB\n", "Percentage: 0.04%\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestFormatStorageInfo_Unavailable(t *testing.T) {
	var buf bytes.Buffer
	FormatStorageInfo(&buf, "memory", storage.Info{})
	expected := "Backend:    memory\nAvailable:  no\n"
	if buf.String() != expected {
		t.Errorf("expected %q, got %q", expected, buf.String())
	}
}
