// Package exitcode defines exit codes for the CLI.
package exitcode

const (
	// Success indicates successful completion.
	Success = 0

	// UserError indicates a user error (bad args, validation, not found, ambiguous).
	UserError = 1

	// AuthError indicates an auth/config error.
	AuthError = 2

	// BackendError indicates a remote API/network error.
	BackendError = 3

	// StorageError indicates a local storage or file write failure.
	StorageError = 4
)
