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
	Register(&DoneCmd{})
}

// DoneCmd implements the done command. It toggles, so running it on a
// completed task reopens it.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"toggle"} }
func (c *DoneCmd) Synopsis() string  { return "Toggle a task's completion" }
func (c *DoneCmd) Usage() string     { return "tasktrack done <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, code := resolveRef(svc, args, errOut)
	if code != exitcode.Success {
		return code
	}

	toggled, err := svc.Toggle(ctx, t.ID)
	if err != nil {
		return mutationError(err, errOut)
	}
	cfg.Log().Debug("task toggled", "task", toggled.ID, "completed", toggled.Completed)
	return finish(cfg, svc, out, errOut)
}
