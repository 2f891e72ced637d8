package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/manthan/quizbot/internal/bot"
	"github.com/manthan/quizbot/internal/config"
	"github.com/manthan/quizbot/internal/logger"
	"github.com/manthan/quizbot/internal/metrics"
	"github.com/manthan/quizbot/internal/poll"
	"github.com/manthan/quizbot/internal/sheet"
	"github.com/manthan/quizbot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg := logger.NewLogger()
	flush := func() {}
	if cfg.SentryDSN != "" {
		lg, flush, err = logger.NewLoggerWithSentry(cfg.SentryDSN)
		if err != nil {
			log.Fatalf("Failed to init sentry: %v", err)
		}
	}

	err = run(cfg, lg)
	if err != nil {
		lg.Error("bot exited", "error", err)
	}
	flush()
	if err != nil {
		os.Exit(1)
	}
}

// run wires the bot and blocks until SIGINT or SIGTERM. Deferred cleanups
// run on every return path.
func run(cfg *config.Config, lg *slog.Logger) error {
	lg.Info("config loaded",
		"row_store", cfg.RowStore,
		"sheet_name", cfg.SheetName,
		"default_timer", cfg.DefaultTimer,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rows, closeRows, err := openRowStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open row store: %w", err)
	}
	defer closeRows()

	lg.Info("row store ready", "backend", cfg.RowStore)

	tb, err := bot.NewTelebot(cfg.TelegramToken, lg)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	runtime := poll.NewRuntime(cfg.PollStateTTL)
	quizzes := poll.NewService(rows, bot.NewMessenger(tb, tb.Me.Username), runtime, poll.Options{
		Header:       cfg.CoachingName,
		DefaultTimer: cfg.DefaultTimer,
	}, lg)
	dispatcher := poll.NewDispatcher(rows, quizzes, cfg.DefaultTimer, lg)
	defer dispatcher.Shutdown()

	if _, err := quizzes.SyncIDs(ctx); err != nil {
		lg.Error("initial id sync failed", "error", err)
	}

	if cfg.SyncSchedule != "" {
		c := cron.New()
		if _, err := c.AddFunc(cfg.SyncSchedule, func() {
			if _, err := quizzes.SyncIDs(ctx); err != nil {
				lg.Error("scheduled id sync failed", "error", err)
			}
		}); err != nil {
			return fmt.Errorf("invalid SYNC_IDS_SCHEDULE: %w", err)
		}
		c.Start()
		defer c.Stop()
		lg.Info("id sync scheduled", "schedule", cfg.SyncSchedule)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, lg); err != nil {
				lg.Error("metrics server failed", "error", err)
			}
		}()
	}

	b := bot.New(tb, quizzes, dispatcher, lg)
	b.RegisterCommands()
	b.RegisterHandlers()

	go func() {
		<-ctx.Done()
		lg.Info("shutting down")
		b.Stop()
	}()

	b.Start()

	dispatcher.Shutdown()
	b.Wait()
	lg.Info("bot stopped")
	return nil
}

func openRowStore(ctx context.Context, cfg *config.Config) (poll.RowStore, func(), error) {
	switch cfg.RowStore {
	case config.RowStoreSQLite:
		db, err := storage.NewDB(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		return storage.NewQuestionRepository(db), func() { db.Close() }, nil
	default:
		store, err := sheet.Open(ctx, cfg.SpreadsheetID, cfg.SheetName, sheet.CredentialsOptions(cfg.GoogleCredentials)...)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}
