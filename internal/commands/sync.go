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

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command.
type SyncCmd struct {
	listName string
}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return []string{"push"} }
func (c *SyncCmd) Synopsis() string  { return "Mirror tasks to Google Tasks" }
func (c *SyncCmd) Usage() string     { return "tasktrack sync [--list <list-name>]" }
func (c *SyncCmd) NeedsStore() bool  { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	mirror, code := openMirror(ctx, cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	listName := c.listName
	if listName == "" {
		listName = cfg.Sync.List
	}

	res, err := mirror.Mirror(ctx, listName, task.SortNewestFirst(svc.List()))
	if err != nil {
		return remoteError(err, errOut)
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "%s: %d created, %d updated, %d deleted, %d unchanged\n",
			res.ListTitle, res.Created, res.Updated, res.Deleted, res.Unchanged)
	}
	return exitcode.Success
}

// openMirror checks for credentials and builds the mirror, printing any error.
func openMirror(ctx context.Context, cfg *config.Config, errOut io.Writer) (service.Mirror, int) {
	if NewMirror == nil {
		fmt.Fprintln(errOut, "error: sync is not available")
		return nil, exitcode.BackendError
	}
	if !cfg.HasOAuthClient() {
		fmt.Fprintf(errOut, "error: %s not found in %s\n", config.OAuthClientFile, cfg.Dir)
		return nil, exitcode.AuthError
	}
	if !cfg.HasToken() {
		fmt.Fprintln(errOut, "error: not logged in (run: tasktrack login)")
		return nil, exitcode.AuthError
	}

	mirror, err := NewMirror(ctx, cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return nil, exitcode.AuthError
	}
	return mirror, exitcode.Success
}

// remoteError prints a Mirror error and returns the exit code.
func remoteError(err error, errOut io.Writer) int {
	if errors.Is(err, service.ErrUnauthorized) {
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	}
	fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	return exitcode.BackendError
}
