package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
)

const (
	formatTable = "table"
	formatYAML  = "yaml"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	openStyle   = cellStyle.Foreground(lipgloss.Color("#fabd2f"))
)

type sessionView struct {
	ID       int64  `yaml:"id"`
	Name     string `yaml:"name"`
	Date     string `yaml:"date"`
	Joined   string `yaml:"joined"`
	Left     string `yaml:"left,omitempty"`
	Duration string `yaml:"duration,omitempty"`
}

func newSessionsCmd(app *App) *cobra.Command {
	var (
		openOnly bool
		format   string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List ledger rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format == "" {
				format = formatYAML
				if app.IsTerminal != nil && app.IsTerminal() {
					format = formatTable
				}
			}

			rows, err := app.Store.Rows(cmd.Context())
			if err != nil {
				return fmt.Errorf("read ledger: %w", err)
			}
			if openOnly {
				rows = filterOpen(rows)
			}

			switch format {
			case formatTable:
				return writeTable(app.Out, rows)
			case formatYAML:
				return writeYAML(app.Out, rows)
			default:
				return fmt.Errorf("unknown format %q, expected %s or %s", format, formatTable, formatYAML)
			}
		},
	}

	cmd.Flags().BoolVar(&openOnly, "open", false, "Only rows without a leave time")
	cmd.Flags().StringVar(&format, "format", "", "Output format: table or yaml (default: table on a terminal, yaml otherwise)")

	return cmd
}

func filterOpen(rows []ledger.Row) []ledger.Row {
	res := make([]ledger.Row, 0, len(rows))
	for _, r := range rows {
		if r.IsOpen() {
			res = append(res, r)
		}
	}
	return res
}

func writeTable(w io.Writer, rows []ledger.Row) error {
	open := make(map[int]bool, len(rows))
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(ledger.Header...)
	for i, r := range rows {
		open[i] = r.IsOpen()
		t.Row(r.Name, r.DateJoined, r.TimeJoined, r.TimeLeft, r.Duration)
	}
	t.StyleFunc(func(row, _ int) lipgloss.Style {
		switch {
		case row == table.HeaderRow:
			return headerStyle
		case open[row]:
			return openStyle
		default:
			return cellStyle
		}
	})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func writeYAML(w io.Writer, rows []ledger.Row) error {
	views := make([]sessionView, 0, len(rows))
	for _, r := range rows {
		views = append(views, sessionView{
			ID:       r.ID,
			Name:     r.Name,
			Date:     r.DateJoined,
			Joined:   r.TimeJoined,
			Left:     r.TimeLeft,
			Duration: r.Duration,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(views); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
