package task

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"
)

const (
	// MaxTitleLength is the maximum title length in characters.
	MaxTitleLength = 200

	// MaxDescriptionLength is the maximum description length in characters.
	MaxDescriptionLength = 1000
)

// ValidationError lists every rule a draft violated.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Errors) == 0 {
		return "invalid task"
	}
	return "invalid task: " + strings.Join(e.Errors, "; ")
}

// FieldCheck is the result of validating a single field.
type FieldCheck struct {
	Errors    []string
	Remaining int
}

// Valid reports whether the field passed validation.
func (c FieldCheck) Valid() bool {
	return len(c.Errors) == 0
}

// Validate checks a raw (unescaped) draft.
// Returns a *ValidationError, or nil if the draft is valid.
func Validate(d Draft) error {
	var errs []string
	errs = append(errs, ValidateTitle(d.Title).Errors...)
	errs = append(errs, ValidateDescription(d.Description).Errors...)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errors: errs}
}

// ValidateTitle checks a title on its own.
func ValidateTitle(title string) FieldCheck {
	n := utf8.RuneCountInString(title)
	check := FieldCheck{Remaining: MaxTitleLength - n}

	switch {
	case title == "":
		check.Errors = append(check.Errors, "Title is required")
	case strings.TrimSpace(title) == "":
		check.Errors = append(check.Errors, "Title cannot be empty")
	case n > MaxTitleLength:
		check.Errors = append(check.Errors, fmt.Sprintf("Title must not exceed %d characters", MaxTitleLength))
	}
	return check
}

// ValidateDescription checks a description on its own. Empty is allowed.
func ValidateDescription(description string) FieldCheck {
	n := utf8.RuneCountInString(description)
	check := FieldCheck{Remaining: MaxDescriptionLength - n}
	if n > MaxDescriptionLength {
		check.Errors = append(check.Errors, fmt.Sprintf("Description must not exceed %d characters", MaxDescriptionLength))
	}
	return check
}

// Sanitize escapes HTML in the draft's free text.
func Sanitize(d Draft) Draft {
	return Draft{
		Title:       EscapeHTML(d.Title),
		Description: EscapeHTML(d.Description),
	}
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
)

// EscapeHTML escapes &, < and >. Quotes are left as is, matching what a DOM
// text node serializes to.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// UnescapeHTML reverses EscapeHTML.
func UnescapeHTML(s string) string {
	return html.UnescapeString(s)
}
