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
	Register(&ListsCmd{})
}

// ListsCmd implements the lists command: the Google Tasks lists sync can target.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "List Google Tasks lists" }
func (c *ListsCmd) Usage() string     { return "tasktrack lists" }
func (c *ListsCmd) NeedsStore() bool  { return false }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	mirror, code := openMirror(ctx, cfg, errOut)
	if code != exitcode.Success {
		return code
	}

	lists, err := mirror.Lists(ctx)
	if err != nil {
		return remoteError(err, errOut)
	}

	for _, l := range lists {
		title := l.Title
		if strings.TrimSpace(title) == "" {
			title = "(untitled)"
		}
		if l.IsDefault {
			title += " [default]"
		}
		if cfg.Sync.List != "" && strings.EqualFold(strings.TrimSpace(l.Title), strings.TrimSpace(cfg.Sync.List)) {
			title += " [sync]"
		}
		fmt.Fprintln(out, title)
	}
	return exitcode.Success
}
