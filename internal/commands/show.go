package commands

import (
	"context"
	"flag"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
)

func init() {
	Register(&ShowCmd{})
}

// ShowCmd implements the show command.
type ShowCmd struct{}

func (c *ShowCmd) Name() string      { return "show" }
func (c *ShowCmd) Aliases() []string { return nil }
func (c *ShowCmd) Synopsis() string  { return "Show a task in full" }
func (c *ShowCmd) Usage() string     { return "tasktrack show <ref>" }
func (c *ShowCmd) NeedsStore() bool  { return true }

func (c *ShowCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	t, code := resolveRef(svc, args, errOut)
	if code != exitcode.Success {
		return code
	}
	output.FormatTaskDetail(out, t)
	return exitcode.Success
}
