// Package main is the entry point for the tasktrack CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tasktrack/internal/backend/googletasks"
	"tasktrack/internal/cli"
	"tasktrack/internal/commands"
	"tasktrack/internal/config"
	"tasktrack/internal/service"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	commands.NewMirror = func(ctx context.Context, cfg *config.Config) (service.Mirror, error) {
		return googletasks.New(ctx, cfg)
	}

	var closers []func() error
	factory := func(ctx context.Context, cfg *config.Config) (service.Service, error) {
		svc, closeFn := cli.OpenService(ctx, cfg)
		closers = append(closers, closeFn)
		return svc, nil
	}

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)
	code := dispatcher.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)

	for _, closeFn := range closers {
		closeFn()
	}
	cancel()
	os.Exit(code)
}
