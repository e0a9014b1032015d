// Package logctx carries slog attributes in a context so that every record
// logged with that context gets them, e.g. a per-request id.
package logctx

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

// With returns a copy of ctx carrying args in addition to the attributes
// already present.
func With(ctx context.Context, args ...any) context.Context {
	attrs := append(attrsFrom(ctx), argsToAttrs(args)...)
	return context.WithValue(ctx, ctxKey{}, attrs)
}

// Handler adds the context attributes to each record.
type Handler struct {
	slog.Handler
}

func NewHandler(h slog.Handler) *Handler {
	return &Handler{Handler: h}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := attrsFrom(ctx); len(attrs) > 0 {
		r = r.Clone()
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{Handler: h.Handler.WithGroup(name)}
}

func attrsFrom(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(ctxKey{}).([]slog.Attr)
	return attrs[:len(attrs):len(attrs)]
}

func argsToAttrs(args []any) []slog.Attr {
	var r slog.Record
	r.Add(args...)

	attrs := make([]slog.Attr, 0, r.NumAttrs())
	r.Attrs(func(a slog.Attr) bool {
		attrs = append(attrs, a)
		return true
	})
	return attrs
}
