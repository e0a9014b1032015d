package internal

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/Roma7-7-7/study-attendance-bot/internal/ledger"
	pkgSSM "github.com/Roma7-7-7/study-attendance-bot/pkg/ssm"
)

const (
	DriverSheets = "sheets"
	DriverMemory = "memory"

	ssmPrefix = "/study-attendance-bot/prod/"
)

var drivers = []string{DriverSheets, ledger.DriverSQLite, ledger.DriverPostgres, DriverMemory}

type Config struct {
	Dev bool

	ChannelAccessToken string
	GroupID            string

	LedgerDriver          string
	LedgerDSN             string
	SheetID               string
	SheetName             string
	GoogleCredentialsJSON string

	TelegramToken  string
	TelegramChatID int64

	SummarySchedule string
	Location        string
	Zone            *time.Location

	ListenAddr      string
	ProfileCacheTTL time.Duration
}

func GetConfig(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	res := &Config{
		Dev:                   os.Getenv("ENV") == "dev",
		ChannelAccessToken:    os.Getenv("CHANNEL_ACCESS_TOKEN"),
		GroupID:               os.Getenv("GROUP_ID"),
		LedgerDriver:          envOr("LEDGER_DRIVER", DriverSheets),
		LedgerDSN:             envOr("LEDGER_DSN", "attendance.db"),
		SheetID:               os.Getenv("SHEET_ID"),
		SheetName:             envOr("SHEET_NAME", "シート1"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		TelegramToken:         os.Getenv("TELEGRAM_TOKEN"),
		SummarySchedule:       envOr("SUMMARY_SCHEDULE", "0 0 * * 1"),
		Location:              envOr("LOCATION", "Asia/Tokyo"),
		ListenAddr:            envOr("LISTEN_ADDR", ":8080"),
	}
	telegramChatID := os.Getenv("TELEGRAM_CHAT_ID")
	profileCacheTTL := envOr("PROFILE_CACHE_TTL", "10m")

	// In dev mode or if all required params are set via env vars, skip SSM
	if res.Dev || hasRequiredParams(res) {
		if err := res.validate(telegramChatID, profileCacheTTL); err != nil {
			return nil, err
		}
		return res, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config (set required env vars to skip SSM): %w", err)
	}

	if err = res.fetchMissing(ctx, ssm.NewFromConfig(cfg)); err != nil {
		return nil, fmt.Errorf("fetch SSM parameters (set required env vars to skip SSM): %w", err)
	}

	if err := res.validate(telegramChatID, profileCacheTTL); err != nil {
		return nil, err
	}

	return res, nil
}

// fetchMissing reads from Parameter Store only the values the environment
// left empty.
func (c *Config) fetchMissing(ctx context.Context, client pkgSSM.Client) error {
	params := make(map[string]*string)
	add := func(name string, dst *string) {
		if *dst == "" {
			params[ssmPrefix+name] = dst
		}
	}
	add("channel-access-token", &c.ChannelAccessToken)
	add("group-id", &c.GroupID)
	add("sheet-id", &c.SheetID)
	add("google-credentials", &c.GoogleCredentialsJSON)

	optional := []string{ssmPrefix + "google-credentials"}
	if c.LedgerDriver != DriverSheets {
		optional = append(optional, ssmPrefix+"sheet-id")
	}

	return pkgSSM.FetchParameters(ctx, client, params,
		pkgSSM.WithDecryption(),
		pkgSSM.WithOptional(optional...))
}

// hasRequiredParams checks if all required parameters are already set via environment variables
func hasRequiredParams(conf *Config) bool {
	if conf.ChannelAccessToken == "" || conf.GroupID == "" {
		return false
	}
	return conf.LedgerDriver != DriverSheets || conf.SheetID != ""
}

func (c *Config) validate(telegramChatID, profileCacheTTL string) error {
	var missing []string

	if c.ChannelAccessToken == "" {
		missing = append(missing, "CHANNEL_ACCESS_TOKEN")
	}
	if c.GroupID == "" {
		missing = append(missing, "GROUP_ID")
	}
	if c.LedgerDriver == DriverSheets && c.SheetID == "" {
		missing = append(missing, "SHEET_ID")
	}
	if c.TelegramToken != "" && telegramChatID == "" {
		missing = append(missing, "TELEGRAM_CHAT_ID")
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables not set: %v", missing)
	}

	if !slices.Contains(drivers, c.LedgerDriver) {
		return fmt.Errorf("unsupported LEDGER_DRIVER %q, expected one of %v", c.LedgerDriver, drivers)
	}

	var err error
	if telegramChatID != "" {
		if c.TelegramChatID, err = strconv.ParseInt(telegramChatID, 10, 64); err != nil {
			return fmt.Errorf("parse TELEGRAM_CHAT_ID: %w", err)
		}
	}

	if _, err = cron.ParseStandard(c.SummarySchedule); err != nil {
		return fmt.Errorf("parse SUMMARY_SCHEDULE %q: %w", c.SummarySchedule, err)
	}

	if c.Zone, err = time.LoadLocation(c.Location); err != nil {
		return fmt.Errorf("load LOCATION %q: %w", c.Location, err)
	}

	if c.ProfileCacheTTL, err = time.ParseDuration(profileCacheTTL); err != nil {
		return fmt.Errorf("parse PROFILE_CACHE_TTL: %w", err)
	}

	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
