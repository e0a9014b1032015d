package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
)

type (
	Reporter interface {
		Build(ctx context.Context) (string, error)
		Run(ctx context.Context) error
	}

	// App holds what the ledgerctl commands operate on.
	App struct {
		Store    ledger.Store
		Reporter Reporter
		Driver   string

		Out io.Writer
		// IsTerminal reports whether Out is attached to a terminal.
		IsTerminal func() bool
	}
)

// NewRootCmd creates the top-level "ledgerctl" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect the study attendance ledger",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(app.Out)

	root.AddCommand(
		newSessionsCmd(app),
		newSummaryCmd(app),
		newMigrateCmd(app),
	)

	return root
}
