package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/export"
	"tasktrack/internal/service"
	"tasktrack/internal/task"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd implements the export command.
type ExportCmd struct {
	format string
	output string
	where  string
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks as JSON, CSV or PDF" }
func (c *ExportCmd) Usage() string {
	return "tasktrack export [--format json|csv|pdf] [--output <file>] [--where <expr>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", export.FormatJSON, "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
	fs.StringVar(&c.where, "where", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	format := strings.ToLower(strings.TrimSpace(c.format))
	if !slices.Contains(export.Formats, format) {
		fmt.Fprintf(errOut, "error: unknown format: %s (use %s)\n", c.format, strings.Join(export.Formats, ", "))
		return exitcode.UserError
	}

	tasks := task.SortNewestFirst(svc.List())
	if strings.TrimSpace(c.where) != "" {
		m, err := task.CompileFilter(c.where)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
		if tasks, err = m.Filter(tasks); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.UserError
		}
	}

	data, err := export.Export(tasks, format)
	if err != nil {
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.StorageError
	}

	if c.output == "" {
		if _, err := out.Write(data); err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.StorageError
		}
		return exitcode.Success
	}

	if err := os.WriteFile(c.output, data, 0644); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.StorageError
	}
	cfg.Log().Debug("exported tasks", "format", format, "path", c.output, "bytes", len(data))
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
