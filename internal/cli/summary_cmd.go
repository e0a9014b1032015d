package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSummaryCmd(app *App) *cobra.Command {
	var send bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the weekly summary for the week ending today",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if send {
				if err := app.Reporter.Run(ctx); err != nil {
					return fmt.Errorf("send summary: %w", err)
				}
				fmt.Fprintln(app.Out, "summary sent")
				return nil
			}

			msg, err := app.Reporter.Build(ctx)
			if err != nil {
				return fmt.Errorf("build summary: %w", err)
			}
			fmt.Fprintln(app.Out, msg)
			return nil
		},
	}

	cmd.Flags().BoolVar(&send, "send", false, "Send the summary to the configured chats")

	return cmd
}

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the ledger schema",
		Long:  "Opening a SQL ledger creates its schema; this command does only that and exits.",
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Fprintf(app.Out, "ledger %q is ready\n", app.Driver)
			return nil
		},
	}
}
