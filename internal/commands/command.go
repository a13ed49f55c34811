// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the primary command name.
	Name() string

	// Aliases returns alternative names for the command.
	Aliases() []string

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the usage string for help output.
	Usage() string

	// NeedsStore returns true if the command works on the task list.
	// Commands like help, version, login, logout return false.
	NeedsStore() bool

	// RegisterFlags registers command-specific flags.
	RegisterFlags(fs *flag.FlagSet)

	// Run executes the command.
	// cfg is always provided (config dir, paths, logger).
	// svc is nil if NeedsStore() returns false.
	// args contains positional arguments after flag parsing.
	// Returns exit code.
	Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int
}

// MirrorFactory creates the remote mirror used by sync and lists.
type MirrorFactory func(ctx context.Context, cfg *config.Config) (service.Mirror, error)

// NewMirror is set by main to the Google Tasks client. Tests replace it.
var NewMirror MirrorFactory

// finish reports a mutation's outcome: a warning if the change could not be
// persisted, then "ok" unless quiet.
func finish(cfg *config.Config, svc service.Service, out, errOut io.Writer) int {
	if err := svc.StorageErr(); err != nil {
		fmt.Fprintf(errOut, "warning: change kept in memory only: %v\n", err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}

// mutationError prints err from a service mutation and returns the exit code.
func mutationError(err error, errOut io.Writer) int {
	var vErr *task.ValidationError
	if errors.As(err, &vErr) {
		for _, msg := range vErr.Errors {
			fmt.Fprintf(errOut, "error: %s\n", msg)
		}
		return exitcode.UserError
	}
	if errors.Is(err, service.ErrNotFound) {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	fmt.Fprintf(errOut, "error: %v\n", err)
	return exitcode.StorageError
}

// draftError is mutationError for add and edit. After a validation failure it
// also says how far each over-long field in d exceeds its limit.
func draftError(err error, d task.Draft, errOut io.Writer) int {
	code := mutationError(err, errOut)
	var vErr *task.ValidationError
	if !errors.As(err, &vErr) {
		return code
	}
	if check := task.ValidateTitle(d.Title); check.Remaining < 0 {
		fmt.Fprintf(errOut, "hint: title is %d over the %d-character limit\n", -check.Remaining, task.MaxTitleLength)
	}
	if check := task.ValidateDescription(d.Description); check.Remaining < 0 {
		fmt.Fprintf(errOut, "hint: description is %d over the %d-character limit\n", -check.Remaining, task.MaxDescriptionLength)
	}
	return code
}
