package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based number in the list view, 0 if ID is set
	ID  string // full task ID or unique ID prefix
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args → error: task reference required
// 2. All digits → number in the list view (newest first)
// 3. Letters, digits, '_' and '-' → task ID or unique ID prefix
// 4. Anything else → error: invalid task reference: <ref>
// 5. A second positional argument → error: unexpected argument: <arg>
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || args[0] == "" {
		return TaskRef{}, ErrTaskRefRequired
	}
	if len(args) > 1 {
		return TaskRef{}, fmt.Errorf("unexpected argument: %s", args[1])
	}

	ref := args[0]
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}

	for _, r := range ref {
		if !isIDRune(r) {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
	}
	return TaskRef{ID: ref}, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isIDRune(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-')
}
