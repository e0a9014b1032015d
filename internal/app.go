package internal

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Roma7-7-7/study-attendance-bot/internal/attendance"
	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
	"github.com/Roma7-7-7/study-attendance-bot/internal/summary"
	"github.com/Roma7-7-7/study-attendance-bot/internal/webhook"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/cache"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/clock"
	"github.com/Roma7-7-7/study-attendance-bot/pkg/line"
)

const httpTimeout = 5 * time.Second

type (
	// App holds the components shared by every entry point.
	App struct {
		Store      ledger.Store
		Clock      *clock.Clock
		LINE       *line.Client
		Service    *attendance.Service
		Reporter   *summary.Reporter
		Dispatcher *webhook.Dispatcher

		closers []func() error
		log     *slog.Logger
	}

	AppOption func(*appOptions)

	appOptions struct {
		httpClient line.HTTPClient
		lineOpts   []line.Option
		publishers []summary.Publisher
	}

	// TargetPublisher sends the summary to one chat through a Sender.
	TargetPublisher struct {
		sender attendance.Sender
		to     string
	}
)

// WithPublisher adds a summary destination besides the LINE group.
func WithPublisher(p summary.Publisher) AppOption {
	return func(o *appOptions) {
		o.publishers = append(o.publishers, p)
	}
}

func WithHTTPClient(c line.HTTPClient, opts ...line.Option) AppOption {
	return func(o *appOptions) {
		o.httpClient = c
		o.lineOpts = opts
	}
}

func NewTargetPublisher(sender attendance.Sender, to string) *TargetPublisher {
	return &TargetPublisher{sender: sender, to: to}
}

func (p *TargetPublisher) Publish(ctx context.Context, msg string) error {
	return p.sender.Push(ctx, p.to, msg)
}

func NewApp(ctx context.Context, conf *Config, log *slog.Logger, opts ...AppOption) (*App, error) {
	o := &appOptions{
		httpClient: &http.Client{Timeout: httpTimeout},
	}
	for _, opt := range opts {
		opt(o)
	}

	store, closer, err := NewLedger(ctx, conf)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	clk := clock.NewZonedClock(conf.Zone)
	lineClient := line.NewClient(conf.ChannelAccessToken, o.httpClient, log, o.lineOpts...)
	service := attendance.NewService(store, NewProfileResolver(lineClient, conf.ProfileCacheTTL, clk), lineClient, clk, log)

	publishers := append([]summary.Publisher{NewTargetPublisher(lineClient, conf.GroupID)}, o.publishers...)

	app := &App{
		Store:      store,
		Clock:      clk,
		LINE:       lineClient,
		Service:    service,
		Reporter:   summary.NewReporter(store, clk, log, publishers...),
		Dispatcher: webhook.NewDispatcher(service, log),
		log:        log,
	}
	if closer != nil {
		app.closers = append(app.closers, closer)
	}

	return app, nil
}

func (a *App) Close() error {
	for _, c := range a.closers {
		if err := c(); err != nil {
			return fmt.Errorf("close: %w", err)
		}
	}
	return nil
}

// NewLedger opens the store selected by LEDGER_DRIVER. The returned closer is
// nil for stores holding no resources.
func NewLedger(ctx context.Context, conf *Config) (ledger.Store, func() error, error) {
	switch conf.LedgerDriver {
	case DriverSheets:
		opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
		if conf.GoogleCredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(conf.GoogleCredentialsJSON)))
		}

		s, err := ledger.NewSheets(ctx, conf.SheetID, conf.SheetName, opts...)
		if err != nil {
			return nil, nil, err
		}
		if err = s.EnsureHeader(ctx); err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case ledger.DriverSQLite, ledger.DriverPostgres:
		s, err := ledger.OpenSQL(ctx, conf.LedgerDriver, conf.LedgerDSN)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case DriverMemory:
		return ledger.NewMemory(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unsupported ledger driver %q", conf.LedgerDriver)
	}
}

// NewProfileResolver caches display names for ttl. A zero ttl disables the
// cache.
func NewProfileResolver(client *line.Client, ttl time.Duration, clk cache.Clock) attendance.ProfileResolver {
	if ttl <= 0 {
		return client
	}

	names := cache.NewTTL[string, string](client.DisplayName, ttl, clk)
	return attendance.ProfileFunc(names.Get)
}
