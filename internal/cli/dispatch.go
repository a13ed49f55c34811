// Package cli turns command-line arguments into a command invocation.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/exitcode"
	"tasktrack/internal/service"
)

// defaultCommand runs when no arguments are given.
const defaultCommand = "list"

// ServiceFactory opens the task service for commands that need the store.
type ServiceFactory func(ctx context.Context, cfg *config.Config) (service.Service, error)

// Dispatcher handles command-line parsing and dispatch.
type Dispatcher struct {
	registry *commands.Registry
	factory  ServiceFactory
}

// NewDispatcher creates a new dispatcher with the given registry and service factory.
func NewDispatcher(registry *commands.Registry, factory ServiceFactory) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		factory:  factory,
	}
}

// commonFlags are accepted by every command.
type commonFlags struct {
	configDir string
	quiet     bool
	debug     bool
}

func (f *commonFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configDir, "config", "", "")
	fs.BoolVar(&f.quiet, "quiet", false, "")
	fs.BoolVar(&f.debug, "debug", false, "")
}

// Run parses arguments and dispatches to the appropriate command.
// Returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	name := defaultCommand
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Flags require a command in front of them.
	if strings.HasPrefix(name, "-") {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return exitcode.UserError
	}

	cmd, ok := d.registry.Find(name)
	if !ok {
		if hint := d.registry.Suggest(name); hint != "" {
			fmt.Fprintf(errOut, "error: unknown command: %s (did you mean %s?)\n", name, hint)
		} else {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		}
		return exitcode.UserError
	}
	return d.dispatch(ctx, cmd, args, out, errOut)
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd commands.Command, args []string, out, errOut io.Writer) int {
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var common commonFlags
	common.register(fs)
	cmd.RegisterFlags(fs)

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", flagErrorMessage(err))
		return exitcode.UserError
	}

	cfg, err := config.New(common.configDir)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.AuthError
	}
	cfg.Quiet = common.quiet
	cfg.Debug = common.debug
	cfg.Logger = config.NewLogger(errOut, common.debug)
	cfg.Logger.Debug("dispatching", "command", cmd.Name(), "config", cfg.Dir, "backend", cfg.Storage.Backend)

	var svc service.Service
	if cmd.NeedsStore() {
		if d.factory == nil {
			fmt.Fprintln(errOut, "error: no task store configured")
			return exitcode.StorageError
		}
		svc, err = d.factory(ctx, cfg)
		if err != nil {
			fmt.Fprintf(errOut, "error: storage error: %s\n", err)
			return exitcode.StorageError
		}
	}

	return cmd.Run(ctx, cfg, svc, positional, out, errOut)
}

// parseInterspersed parses flags wherever they appear among the positional
// arguments. Everything after a "--" terminator is positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// flagErrorMessage rewrites flag package errors into the CLI's wording.
func flagErrorMessage(err error) string {
	if errors.Is(err, flag.ErrHelp) {
		return "unknown flag: -help (use: tasktrack help)"
	}
	msg := err.Error()
	if name, ok := strings.CutPrefix(msg, "flag needs an argument:"); ok {
		return "flag needs an argument: " + strings.TrimSpace(name)
	}
	if name, ok := strings.CutPrefix(msg, "flag provided but not defined:"); ok {
		return "unknown flag: " + strings.TrimSpace(name)
	}
	return msg
}
