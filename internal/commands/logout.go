package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Forget the Google token used by sync" }
func (c *LogoutCmd) Usage() string     { return "tasktrack logout" }
func (c *LogoutCmd) NeedsStore() bool  { return false }

func (c *LogoutCmd) RegisterFlags(*flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// The OAuth client file stays; only the user's token is forgotten.
	err := cfg.RemoveToken()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	case err != nil:
		fmt.Fprintf(errOut, "error: failed to remove %s: %v\n", config.TokenFile, err)
		return exitcode.AuthError
	}

	cfg.Log().Debug("removed token", "path", cfg.TokenPath())
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
