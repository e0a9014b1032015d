package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/Roma7-7-7/study-attendance-bot/internal"
	"github.com/Roma7-7-7/study-attendance-bot/internal/attendance"
	"github.com/Roma7-7-7/study-attendance-bot/internal/telegram"
	"github.com/Roma7-7-7/study-attendance-bot/internal/webhook"
)

var (
	Version   = "dev"     //nolint:gochecknoglobals // version is a global variable
	BuildTime = "unknown" //nolint:gochecknoglobals // build time is a global variable
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	exitCode := run(ctx)
	cancel()
	os.Exit(exitCode)
}

func run(ctx context.Context) int {
	conf, err := internal.GetConfig(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to get config", "error", err) //nolint:sloglint // logger is not yet initialized
		return 1
	}

	log := internal.NewLogger(conf.Dev)
	log.InfoContext(ctx, "study-attendance-bot daemon starting", "version", Version, "build_time", BuildTime)

	var (
		bot  *telegram.Bot
		opts []internal.AppOption
	)
	if conf.TelegramToken != "" {
		if bot, err = telegram.NewBot(conf.TelegramToken, log); err != nil {
			log.ErrorContext(ctx, "failed to create bot", "error", err)
			return 1
		}
		opts = append(opts, internal.WithPublisher(
			internal.NewTargetPublisher(bot, strconv.FormatInt(conf.TelegramChatID, 10))))
	}

	app, err := internal.NewApp(ctx, conf, log, opts...)
	if err != nil {
		log.ErrorContext(ctx, "failed to create app", "error", err)
		return 1
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.ErrorContext(ctx, "failed to close app", "error", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if bot != nil {
		// Telegram senders carry their name, so no profile lookup is needed.
		bot.Handle(attendance.NewService(app.Store, nil, bot, app.Clock, log))

		botErrChan := make(chan error, 1)
		go func() {
			if err := bot.Start(ctx); err != nil {
				botErrChan <- err
			}
		}()

		select {
		case err := <-botErrChan:
			log.ErrorContext(ctx, "bot failed to start", "error", err)
			return 1
		case <-time.After(2 * time.Second): //nolint:mnd // reasonable startup timeout
			log.InfoContext(ctx, "bot started successfully")
		}
	}

	server := &http.Server{
		Addr:              conf.ListenAddr,
		Handler:           webhook.NewRouter(app.Dispatcher, log),
		ReadHeaderTimeout: 5 * time.Second, //nolint:mnd // reasonable timeout
	}
	serverErrChan := make(chan error, 1)
	go func() {
		log.InfoContext(ctx, "starting http server", "addr", conf.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- err
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second) //nolint:mnd // reasonable timeout
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.ErrorContext(ctx, "failed to shutdown http server", "error", err)
		}
	}()

	scheduler, err := gocron.NewScheduler(gocron.WithLocation(conf.Zone))
	if err != nil {
		log.ErrorContext(ctx, "failed to create scheduler", "error", err)
		return 1
	}

	summaryJob, err := scheduler.NewJob(
		gocron.CronJob(conf.SummarySchedule, false),
		gocron.NewTask(func() {
			jobCtx, cancel := context.WithTimeout(ctx, time.Minute)
			defer cancel()
			if err := app.Reporter.Run(jobCtx); err != nil {
				log.ErrorContext(jobCtx, "failed to send weekly summary", "error", err)
			}
		}),
	)
	if err != nil {
		log.ErrorContext(ctx, "failed to create summary job", "error", err, "schedule", conf.SummarySchedule)
		return 1
	}

	scheduler.Start()

	summaryNextRun, err := summaryJob.NextRun()
	if err != nil {
		log.WarnContext(ctx, "failed to get summary next run time", "error", err)
	}

	log.InfoContext(ctx, "starting daemon",
		"ledger", conf.LedgerDriver,
		"summary_schedule", conf.SummarySchedule,
		"summary_next_run", summaryNextRun,
		"timezone", conf.Location)
	defer func() {
		if err := scheduler.Shutdown(); err != nil {
			log.ErrorContext(ctx, "failed to shutdown scheduler", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.InfoContext(ctx, "received shutdown signal", "signal", sig)
		return 0
	case err := <-serverErrChan:
		log.ErrorContext(ctx, "http server failed", "error", err)
		return 1
	case <-ctx.Done():
		log.InfoContext(ctx, "context cancelled")
		return 0
	}
}
