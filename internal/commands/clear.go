package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

func init() {
	Register(&ClearCmd{})
}

// ClearCmd implements the clear command.
type ClearCmd struct {
	force bool
}

func (c *ClearCmd) Name() string      { return "clear" }
func (c *ClearCmd) Aliases() []string { return nil }
func (c *ClearCmd) Synopsis() string  { return "Delete all tasks" }
func (c *ClearCmd) Usage() string     { return "tasktrack clear --force" }
func (c *ClearCmd) NeedsStore() bool  { return true }

func (c *ClearCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
	fs.BoolVar(&c.force, "f", false, "")
}

func (c *ClearCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if !c.force {
		n := len(svc.List())
		fmt.Fprintf(errOut, "error: this deletes all %d tasks; run again with --force\n", n)
		return exitcode.UserError
	}

	svc.ClearAll(ctx)
	return finish(cfg, svc, out, errOut)
}
