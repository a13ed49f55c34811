package commands

import (
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

// numberedTask is a task with its number in the list view.
type numberedTask struct {
	Num  int
	Task task.Task
}

// numberTasks orders tasks as the list view shows them (newest first) and
// numbers them from 1. Filters applied afterwards keep these numbers.
func numberTasks(tasks []task.Task) []numberedTask {
	sorted := task.SortNewestFirst(tasks)
	out := make([]numberedTask, len(sorted))
	for i, t := range sorted {
		out[i] = numberedTask{Num: i + 1, Task: t}
	}
	return out
}

// findTask resolves ref against tasks. An ID matches exactly, or as a unique
// prefix of the ID with or without the task_ prefix.
func findTask(tasks []task.Task, ref TaskRef) (task.Task, error) {
	if ref.ID == "" {
		numbered := numberTasks(tasks)
		if ref.Num < 1 || ref.Num > len(numbered) {
			return task.Task{}, fmt.Errorf("task number out of range: %d", ref.Num)
		}
		return numbered[ref.Num-1].Task, nil
	}

	var matches []task.Task
	for _, t := range tasks {
		if t.ID == ref.ID {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref.ID) || strings.HasPrefix(strings.TrimPrefix(t.ID, task.IDPrefix), ref.ID) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return task.Task{}, fmt.Errorf("task not found: %s", ref.ID)
	case 1:
		return matches[0], nil
	default:
		short := make([]string, len(matches))
		for i, t := range matches {
			short[i] = t.ShortID()
		}
		return task.Task{}, fmt.Errorf("ambiguous task id: %s (matches %s)", ref.ID, strings.Join(short, ", "))
	}
}

// resolveRef parses args and finds the referenced task, printing any error.
// Returns exitcode.Success when the task was found.
func resolveRef(svc service.Service, args []string, errOut io.Writer) (task.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, exitcode.UserError
	}
	t, err := findTask(svc.List(), ref)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return task.Task{}, exitcode.UserError
	}
	return t, exitcode.Success
}
