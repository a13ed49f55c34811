package task

import (
	"fmt"
	"sort"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// Status selects tasks by completion state.
type Status int

const (
	StatusAll Status = iota
	StatusActive
	StatusCompleted
)

// Match reports whether t has the completion state s selects.
func (s Status) Match(t Task) bool {
	switch s {
	case StatusActive:
		return !t.Completed
	case StatusCompleted:
		return t.Completed
	}
	return true
}

// FilterStatus returns the tasks matching status, preserving order.
func FilterStatus(tasks []Task, status Status) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if status.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// SortNewestFirst returns a copy ordered by creation time, newest first.
// Tasks created at the same instant keep their relative order.
func SortNewestFirst(tasks []Task) []Task {
	out := Clone(tasks)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Matcher evaluates a compiled filter expression against tasks.
type Matcher struct {
	expression string
	program    *exprvm.Program
}

// CompileFilter compiles a boolean expression over the task fields id, title,
// description, completed, createdAt and updatedAt, plus age (time since
// creation). Text fields are exposed unescaped.
func CompileFilter(expression string) (*Matcher, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, fmt.Errorf("filter expression must not be empty")
	}
	program, err := exprlang.Compile(expression, exprlang.Env(filterEnv(Task{})), exprlang.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expression, err)
	}
	return &Matcher{expression: expression, program: program}, nil
}

// Match reports whether t satisfies the expression.
func (m *Matcher) Match(t Task) (bool, error) {
	result, err := exprlang.Run(m.program, filterEnv(t))
	if err != nil {
		return false, fmt.Errorf("filter %q: %w", m.expression, err)
	}
	ok, _ := result.(bool)
	return ok, nil
}

// Filter returns the tasks that satisfy the expression.
func (m *Matcher) Filter(tasks []Task) ([]Task, error) {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		ok, err := m.Match(t)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, t)
		}
	}
	return out, nil
}

func filterEnv(t Task) map[string]any {
	return map[string]any{
		"id":          t.ID,
		"title":       UnescapeHTML(t.Title),
		"description": UnescapeHTML(t.Description),
		"completed":   t.Completed,
		"createdAt":   t.CreatedAt,
		"updatedAt":   t.UpdatedAt,
		"age":         time.Since(t.CreatedAt),
	}
}
