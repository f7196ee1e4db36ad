package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/xomakone3/storebot/core/buildinfo"
	"github.com/xomakone3/storebot/core/catalog"
	coreconfig "github.com/xomakone3/storebot/core/config"
	"github.com/xomakone3/storebot/core/logger"
	coretelegram "github.com/xomakone3/storebot/core/telegram"
	"github.com/xomakone3/storebot/core/telegram/state"
	"github.com/xomakone3/storebot/internal/store"

	tele "gopkg.in/telebot.v4"
	"log/slog"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("storebot: %v", err)
	}
}

func run() error {
	// A missing .env file is fine; real deployments export variables directly.
	_ = godotenv.Load()

	cfg, err := coreconfig.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		return err
	}

	if err := logger.Init(cfg); err != nil {
		return err
	}
	defer func() {
		if err := logger.Shutdown(); err != nil {
			log.Printf("logger shutdown error: %v", err)
		}
	}()

	st := catalog.NewStore(cfg.Catalog.File, cfg.Catalog.ImagesDir)
	if err := st.EnsureDirs(); err != nil {
		return err
	}

	app := store.New(cfg, st, state.NewMemoryManager())

	startedAt := time.Now()
	logger.L.Info("starting",
		slog.String("event", "start"),
		slog.String("version", buildinfo.Version),
		slog.String("commit", buildinfo.Commit),
		slog.String("catalog", cfg.Catalog.File),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := app.RunOptions()
	prevStart := opts.OnStart
	opts.OnStart = func(ctx context.Context, bot *tele.Bot) error {
		if prevStart != nil {
			if err := prevStart(ctx, bot); err != nil {
				return err
			}
		}
		logger.L.Info("app ready",
			slog.String("event", "ready"),
			slog.Duration("startup_duration", logger.RoundMS(time.Since(startedAt))),
		)
		return nil
	}

	return coretelegram.RunBot(ctx, opts)
}
