package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/Roma7-7-7/study-attendance-bot/internal"
	"github.com/Roma7-7-7/study-attendance-bot/internal/cli"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	conf, err := internal.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("get config: %w", err)
	}

	app, err := internal.NewApp(ctx, conf, internal.NewLoggerTo(os.Stderr, conf.Dev))
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}
	defer app.Close() //nolint:errcheck // ignore

	return cli.NewRootCmd(&cli.App{
		Store:    app.Store,
		Reporter: app.Reporter,
		Driver:   conf.LedgerDriver,
		Out:      os.Stdout,
		IsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	}).ExecuteContext(ctx)
}
