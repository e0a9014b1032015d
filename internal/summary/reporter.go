package summary

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/clock"
)

type (
	Publisher interface {
		Publish(ctx context.Context, msg string) error
	}

	Reporter struct {
		store      ledger.Store
		publishers []Publisher
		clock      clock.Interface
		log        *slog.Logger
	}
)

func NewReporter(store ledger.Store, clock clock.Interface, log *slog.Logger, publishers ...Publisher) *Reporter {
	return &Reporter{
		store:      store,
		publishers: publishers,
		clock:      clock,
		log:        log,
	}
}

// Build renders the summary for the window ending today.
func (r *Reporter) Build(ctx context.Context) (string, error) {
	rows, err := r.store.Rows(ctx)
	if err != nil {
		return "", fmt.Errorf("read ledger: %w", err)
	}

	w := WindowAt(r.clock.Now())
	totals, skipped := Aggregate(rows, w)
	for _, s := range skipped {
		r.log.WarnContext(ctx, "skip unparsable row", "row_id", s.Row.ID, "name", s.Row.Name, "error", s.Err)
	}
	r.log.DebugContext(ctx, "weekly totals", "start", w.Start, "end", w.End, "count", len(totals))

	msg, err := Render(w, totals)
	if err != nil {
		return "", fmt.Errorf("render summary: %w", err)
	}
	return msg, nil
}

// Run builds the summary and sends it to every publisher. A failing publisher
// does not stop the others.
func (r *Reporter) Run(ctx context.Context) error {
	r.log.InfoContext(ctx, "run weekly summary")

	msg, err := r.Build(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, p := range r.publishers {
		if err = p.Publish(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("publish summary: %w", err))
		}
	}
	if err = errors.Join(errs...); err != nil {
		return err
	}

	r.log.InfoContext(ctx, "weekly summary sent", "publishers", len(r.publishers))
	return nil
}
