package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ad/fsub-archive-bot/internal/bot"
	"github.com/ad/fsub-archive-bot/internal/config"
	"github.com/ad/fsub-archive-bot/internal/domain"
	"github.com/ad/fsub-archive-bot/internal/locale"
	"github.com/ad/fsub-archive-bot/internal/logger"
	"github.com/ad/fsub-archive-bot/internal/metrics"
	"github.com/ad/fsub-archive-bot/internal/storage"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	_ "modernc.org/sqlite"
)

func main() {
	// Load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewWithFile(logger.ParseLevel(cfg.LogLevel), cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()
	cfg.LogFile = log.FilePath()
	log.Info("Starting archive bot", "log_level", cfg.LogLevel, "log_file", cfg.LogFile)

	if err := run(cfg, log); err != nil {
		log.Error("Bot stopped with error", "error", err)
		_ = log.Close()
		os.Exit(1)
	}
	log.Info("Bot stopped successfully")
}

func run(cfg *config.Config, log *logger.Logger) error {
	localizer, err := locale.NewLocalizer(cfg.Locale)
	if err != nil {
		return fmt.Errorf("create localizer: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("enable WAL mode: %w", err)
	}
	log.Info("Database opened", "path", cfg.DatabasePath)

	dbQueue := storage.NewDBQueue(db)
	defer dbQueue.Close()

	if err := storage.InitSchema(dbQueue); err != nil {
		return fmt.Errorf("initialize schema: %w", err)
	}
	if err := storage.RunMigrations(dbQueue); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	log.Info("Database migrations completed")

	botID := cfg.BotID()
	store := storage.NewDocumentStore(dbQueue)
	adminRepo := storage.NewAdminRepository(store, botID)
	chatRepo := storage.NewRequiredChatRepository(store, botID)
	userRepo := storage.NewUserRepository(store, botID)
	settingsRepo := storage.NewSettingsRepository(store, botID)
	checkpointRepo := storage.NewCheckpointRepository(store, botID)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Messages are routed by the handler created below
	var handler *bot.BotHandler
	b, err := tgbot.New(cfg.BotToken, tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
		if handler != nil {
			handler.HandleMessage(ctx, b, update)
		}
	}))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	me, err := b.GetMe(ctx)
	if err != nil {
		return fmt.Errorf("get bot info: %w", err)
	}
	log.Info("Bot info retrieved", "username", me.Username, "id", me.ID)

	if err := domain.CheckArchiveWritable(ctx, b, cfg.DatabaseChatID, me.ID); err != nil {
		return err
	}

	settings := domain.NewSettingsService(adminRepo, settingsRepo, cfg.OwnerID, log)
	if err := settings.Init(ctx); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	previous, err := settingsRepo.RecordArchiveChat(ctx, cfg.DatabaseChatID)
	if err != nil {
		log.Error("Failed to record archive chat", "error", err)
	} else if previous != 0 && previous != cfg.DatabaseChatID {
		log.Warn("Archive chat changed, links issued before no longer resolve",
			"previous", previous, "current", cfg.DatabaseChatID)
	}

	registry := domain.NewRequiredChatsRegistry(chatRepo, b, log, m)
	if _, err := registry.Refresh(ctx); err != nil {
		return fmt.Errorf("load required chats: %w", err)
	}
	gate := domain.NewMembershipGate(registry, b, settings, log, m)

	addressing, err := domain.NewArchiveAddressing(cfg.DatabaseChatID)
	if err != nil {
		return err
	}
	links := domain.NewDeepLinkService(me.Username, addressing)

	coordinator := domain.NewBroadcastCoordinator(
		b, userRepo, checkpointRepo, settings, settings,
		bot.NewBroadcastView(localizer), log, m,
		domain.BroadcastConfig{ProgressEvery: cfg.ProgressEvery, RatePerSecond: cfg.BroadcastRate},
	)
	interrupted, err := coordinator.Recover(ctx)
	if err != nil {
		log.Error("Failed to recover broadcast checkpoint", "error", err)
	}

	handler = bot.NewBotHandler(
		b, settings, registry, gate, coordinator, addressing, links,
		userRepo, bot.NewPromptRegistry(), cfg, me, log, m, localizer,
	)
	b.RegisterHandler(tgbot.HandlerTypeCallbackQueryData, "", tgbot.MatchTypePrefix, handler.HandleCallback)

	if err := handler.SetupCommands(ctx); err != nil {
		log.Warn("Failed to set bot commands", "error", err)
	}
	handler.NotifyStartup(ctx, interrupted)

	if cfg.MetricsAddr != "" {
		go func() {
			log.Info("Serving metrics", "addr", cfg.MetricsAddr)
			if err := metrics.Serve(ctx, cfg.MetricsAddr, reg); err != nil {
				log.Error("Metrics server failed", "error", err)
			}
		}()
	}

	log.Info("Bot is running. Press Ctrl+C to stop.")
	b.Start(ctx)

	log.Info("Shutdown signal received, stopping bot...")
	return nil
}
