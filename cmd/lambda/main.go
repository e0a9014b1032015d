package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Roma7-7-7/study-attendance-bot/internal"
	handlers "github.com/Roma7-7-7/study-attendance-bot/internal/lambda"
)

// LAMBDA_HANDLER selects the entry point of the deployed function:
// "webhook" (API Gateway, default) or "summary" (EventBridge schedule).
func main() {
	ctx := context.Background()

	conf, err := internal.GetConfig(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // logger is not yet initialized
		os.Exit(1)
	}

	log := internal.NewLogger(conf.Dev)

	app, err := internal.NewApp(ctx, conf, log)
	if err != nil {
		log.ErrorContext(ctx, "failed to create app", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHandler(app.Dispatcher, app.Reporter, conf.SummarySchedule, app.Clock, log)

	switch kind := os.Getenv("LAMBDA_HANDLER"); kind {
	case "", "webhook":
		lambda.Start(handler.HandleWebhook)
	case "summary":
		lambda.Start(handler.HandleSchedule)
	default:
		log.ErrorContext(ctx, "unknown LAMBDA_HANDLER", "handler", kind)
		os.Exit(1)
	}
}
