package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"github.com/Roma7-7-7/study-attendance-bot/internal"
	"github.com/Roma7-7-7/study-attendance-bot/internal/webhook"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/clock"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/logctx"
)

type (
	Dispatcher interface {
		Dispatch(ctx context.Context, body []byte) (webhook.Result, error)
	}

	Reporter interface {
		Run(ctx context.Context) error
	}

	Handler struct {
		dispatcher Dispatcher
		reporter   Reporter

		// schedule is the expected EventBridge cron, used for logging only.
		schedule string
		clock    clock.Interface

		log *slog.Logger
	}
)

func NewHandler(dispatcher Dispatcher, reporter Reporter, schedule string, clock clock.Interface, log *slog.Logger) *Handler {
	return &Handler{
		dispatcher: dispatcher,
		reporter:   reporter,
		schedule:   schedule,
		clock:      clock,
		log:        log,
	}
}

// HandleWebhook serves LINE webhooks behind API Gateway.
func (h *Handler) HandleWebhook(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := req.RequestContext.RequestID
	if id == "" {
		id = uuid.NewString()
	}
	ctx = logctx.With(ctx, "request_id", id)

	body := []byte(req.Body)
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			h.log.WarnContext(ctx, "failed to decode webhook body", "error", err)
			return response(http.StatusBadRequest, `{"status":"bad request"}`), nil
		}
		body = decoded
	}

	if _, err := h.dispatcher.Dispatch(ctx, body); err != nil {
		h.log.WarnContext(ctx, "rejected webhook", "error", err)
		if errors.Is(err, webhook.ErrMalformedPayload) {
			return response(http.StatusBadRequest, `{"status":"bad request"}`), nil
		}
		return response(http.StatusInternalServerError, `{"status":"error"}`), nil
	}

	return response(http.StatusOK, `{"status":"ok"}`), nil
}

// HandleSchedule runs the weekly summary on an EventBridge schedule.
func (h *Handler) HandleSchedule(ctx context.Context, ev events.CloudWatchEvent) error {
	ctx = logctx.With(ctx, "event_id", ev.ID)
	h.log.InfoContext(ctx, "scheduled summary triggered", "time", ev.Time)

	if err := h.reporter.Run(ctx); err != nil {
		return err
	}

	next, err := internal.NextRun(h.schedule, h.clock.Now())
	if err != nil {
		h.log.WarnContext(ctx, "failed to compute next summary run", "error", err)
		return nil
	}
	h.log.InfoContext(ctx, "summary sent", "schedule", h.schedule, "next_run", next)
	return nil
}

func response(code int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: code,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}
