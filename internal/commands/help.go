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
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "tasktrack help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, HelpText(DefaultRegistry))
	return exitcode.Success
}

// HelpText renders usage for every command in r.
func HelpText(r *Registry) string {
	cmds := r.All()
	width := len("tasktrack")
	for _, cmd := range cmds {
		width = max(width, len(cmd.Usage()))
	}

	var b strings.Builder
	b.WriteString("Usage:\n")
	fmt.Fprintf(&b, "  %-*s  %s\n", width, "tasktrack", "List all tasks")
	for _, cmd := range cmds {
		fmt.Fprintf(&b, "  %-*s  %s\n", width, cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(&b, "  %-*s  (alias: %s)\n", width, "", strings.Join(aliases, ", "))
		}
	}
	b.WriteString(commonFlagsText)
	return b.String()
}

const commonFlagsText = `
Task references:
  <n>              Number shown by list (newest first)
  <id>             Task ID or unique ID prefix
  task_<prefix>    ID prefix made only of digits (a bare number is a list number)

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Flags may follow arguments; use -- to end flags.
`
