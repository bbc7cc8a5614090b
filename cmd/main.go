package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"tagger-bot/config"
	telegram "tagger-bot/internal/api"
	"tagger-bot/internal/container"
	"tagger-bot/internal/domain/port"
	"tagger-bot/internal/infrastructure/gradio"
	"tagger-bot/internal/infrastructure/logger"
	"tagger-bot/internal/infrastructure/metrics"
	"tagger-bot/internal/infrastructure/storage"
	"tagger-bot/internal/infrastructure/vision"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics.Register()
	if cfg.MetricsAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, log); err != nil {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
	}

	// История подключается только при включённом флаге
	var history port.HistoryRepository
	if cfg.TaggerHistory {
		store, err := storage.OpenHistory(ctx, cfg.HistoryBackend, cfg.HistoryDSN, log.Named("history"))
		if err != nil {
			return err
		}
		defer func() {
			log.Info("Closing history storage...")
			if err := store.Close(); err != nil {
				log.Error("Failed to close history storage", zap.Error(err))
			}
		}()
		history = store
	}

	// Клиент удалённого тэггера
	client := gradio.NewClient(cfg.TaggerEndpoint, cfg.TaggerHTTPTimeout, log.Named("gradio"))
	decoder := gradio.StreamDecoder{Line: cfg.TaggerEventLine, Prefix: cfg.TaggerEventPrefix}
	inspector := vision.NewImageInspector()
	inspector.MinSide = cfg.TaggerMinImageSide
	tagger := gradio.NewTagger(client, decoder, inspector, log.Named("tagger"))

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, log.Named("bot"))
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	// Собираем сервисы приложения
	appContainer := container.New(container.Options{
		Users:         storage.NewMemoryUserRepository(),
		Tagger:        tagger,
		History:       history,
		Prompter:      bot.Dialogs(),
		Messenger:     bot.Dialogs(),
		Settings:      cfg.Settings(),
		PromptTimeout: cfg.PromptTimeout,
		Log:           log,
	})

	log.Info("Bot is running...",
		zap.String("model", cfg.TaggerModel),
		zap.Bool("history", cfg.TaggerHistory),
		zap.String("history_backend", cfg.HistoryBackend),
	)
	return bot.Run(ctx, appContainer)
}
