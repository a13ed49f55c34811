package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/output"
	"tasktrack/internal/service"
)

func init() {
	Register(&InfoCmd{})
}

// InfoCmd implements the info command.
type InfoCmd struct{}

func (c *InfoCmd) Name() string      { return "info" }
func (c *InfoCmd) Aliases() []string { return []string{"stats"} }
func (c *InfoCmd) Synopsis() string  { return "Show task counts and storage usage" }
func (c *InfoCmd) Usage() string     { return "tasktrack info" }
func (c *InfoCmd) NeedsStore() bool  { return true }

func (c *InfoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *InfoCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	output.FormatSummary(out, svc.List())
	output.FormatStorageInfo(out, cfg.Storage.Backend, svc.StorageInfo(ctx))
	if err := svc.StorageErr(); err != nil {
		fmt.Fprintf(out, "Last error: %v\n", err)
	}
	return exitcode.Success
}
