package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "tasktrack rm <ref>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, code := resolveRef(svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := svc.Delete(ctx, t.ID); err != nil {
		return mutationError(err, errOut)
	}
	cfg.Log().Debug("task deleted", "task", t.ID)
	return finish(cfg, svc, out, errOut)
}
