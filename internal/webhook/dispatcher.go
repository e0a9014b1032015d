package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Roma7-7-7/study-attendance-bot/internal/attendance"
)

var ErrMalformedPayload = errors.New("malformed payload")

type (
	Handler interface {
		Handle(ctx context.Context, ev attendance.Event) (attendance.Outcome, error)
	}

	// Result counts what happened to the events of one batch. It is only
	// logged; callers always acknowledge the batch.
	Result struct {
		Handled int
		Skipped int
		Failed  int
	}

	Dispatcher struct {
		handler Handler
		log     *slog.Logger
	}
)

func NewDispatcher(handler Handler, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		handler: handler,
		log:     log,
	}
}

// Dispatch decodes a webhook body and handles its events one by one. An event
// that fails is logged and does not prevent the rest from being handled.
func (d *Dispatcher) Dispatch(ctx context.Context, body []byte) (Result, error) {
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	var res Result
	for i, ev := range payload.Events {
		if !ev.IsText() {
			d.log.DebugContext(ctx, "skip non-text event", "index", i, "type", ev.Type)
			res.Skipped++
			continue
		}

		outcome, err := d.handle(ctx, attendance.Event{
			UserID:  ev.Source.UserID,
			ReplyTo: ev.Source.ReplyTo(),
			Text:    strings.TrimSpace(ev.Message.Text),
		})
		if err != nil {
			d.log.ErrorContext(ctx, "failed to handle event", "index", i, "user_id", ev.Source.UserID, "error", err)
			res.Failed++
			continue
		}

		d.log.DebugContext(ctx, "event handled", "index", i, "outcome", outcome)
		res.Handled++
	}

	d.log.InfoContext(ctx, "webhook dispatched",
		"events", len(payload.Events),
		"handled", res.Handled,
		"skipped", res.Skipped,
		"failed", res.Failed)
	return res, nil
}

// handle turns a panic while handling one event into that event's error.
func (d *Dispatcher) handle(ctx context.Context, ev attendance.Event) (outcome attendance.Outcome, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()

	return d.handler.Handle(ctx, ev)
}
