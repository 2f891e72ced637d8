package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/manthan/quizbot/internal/poll"
)

const (
	RowStoreSheets = "sheets"
	RowStoreSQLite = "sqlite"

	DefaultSheetName    = "ManthanPollQuiz"
	DefaultCoachingName = "🏫 Manthan Competition Classes"
	DefaultTimer        = 30 * time.Second
)

type Config struct {
	TelegramToken     string
	GoogleCredentials []byte

	RowStore      string
	SpreadsheetID string
	SheetName     string
	DBPath        string

	CoachingName string
	DefaultTimer time.Duration
	PollStateTTL time.Duration
	SyncSchedule string

	MetricsAddr string
	SentryDSN   string
}

// Load reads configuration from the environment. Values from a .env file in
// the working directory are used when the variable is not already set.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramToken: token,
		RowStore:      envOr("ROW_STORE", RowStoreSheets),
		SpreadsheetID: os.Getenv("SPREADSHEET_ID"),
		SheetName:     envOr("SHEET_NAME", DefaultSheetName),
		DBPath:        os.Getenv("DB_PATH"),
		CoachingName:  envOr("COACHING_NAME", DefaultCoachingName),
		DefaultTimer:  DefaultTimer,
		SyncSchedule:  os.Getenv("SYNC_IDS_SCHEDULE"),
		MetricsAddr:   os.Getenv("METRICS_ADDR"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
	}

	switch cfg.RowStore {
	case RowStoreSheets:
		creds := os.Getenv("GOOGLE_CREDENTIALS")
		if creds == "" {
			return nil, fmt.Errorf("GOOGLE_CREDENTIALS is required")
		}
		if !json.Valid([]byte(creds)) {
			return nil, fmt.Errorf("GOOGLE_CREDENTIALS must be a service account JSON document")
		}
		cfg.GoogleCredentials = []byte(creds)
	case RowStoreSQLite:
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("DB_PATH is required when ROW_STORE=sqlite")
		}
	default:
		return nil, fmt.Errorf("ROW_STORE must be %q or %q, got %q", RowStoreSheets, RowStoreSQLite, cfg.RowStore)
	}

	if v := os.Getenv("DEFAULT_TIMER_SEC"); v != "" {
		timer, ok := poll.ParseSeconds(v)
		if !ok {
			return nil, fmt.Errorf("DEFAULT_TIMER_SEC must be a non-negative number of seconds: %q", v)
		}
		cfg.DefaultTimer = timer
	}

	if v := os.Getenv("POLL_STATE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("POLL_STATE_TTL must be a duration: %w", err)
		}
		cfg.PollStateTTL = ttl
	}

	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
