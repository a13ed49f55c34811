package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `tasktrack` (no args) and `tasktrack list [filters]`.
type ListCmd struct {
	active bool
	done   bool
	where  string
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks, newest first" }
func (c *ListCmd) Usage() string {
	return "tasktrack list [--active | --done] [--where <expr>]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.active, "active", false, "")
	fs.BoolVar(&c.done, "done", false, "")
	fs.StringVar(&c.where, "where", "", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.active && c.done {
		fmt.Fprintln(errOut, "error: cannot use both --active and --done")
		return exitcode.UserError
	}

	var matcher *task.Matcher
	if strings.TrimSpace(c.where) != "" {
		m, err := task.CompileFilter(c.where)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		matcher = m
	}

	status := task.StatusAll
	switch {
	case c.active:
		status = task.StatusActive
	case c.done:
		status = task.StatusCompleted
	}

	shown := 0
	for _, n := range numberTasks(svc.List()) {
		if !status.Match(n.Task) {
			continue
		}
		if matcher != nil {
			ok, err := matcher.Match(n.Task)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				return exitcode.UserError
			}
			if !ok {
				continue
			}
		}
		output.FormatTask(out, n.Num, n.Task)
		shown++
	}

	if shown == 0 && !cfg.Quiet {
		fmt.Fprintln(out, "no tasks found")
	}
	return exitcode.Success
}
