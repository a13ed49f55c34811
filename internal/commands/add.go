package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	description string
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "tasktrack add [--desc <text>] <title...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.description, "desc", "", "")
	fs.StringVar(&c.description, "d", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	// Join args to form title; validation reports blank titles.
	title := strings.Join(args, " ")

	draft := task.Draft{Title: title, Description: c.description}
	t, err := svc.Add(ctx, draft)
	if err != nil {
		return draftError(err, draft, errOut)
	}
	cfg.Log().Debug("task added", "task", t.ID)
	return finish(cfg, svc, out, errOut)
}
