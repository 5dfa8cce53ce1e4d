package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"postsmith/internal/config"
	"postsmith/internal/database"
	"postsmith/internal/fetch"
	"postsmith/internal/llm"
	"postsmith/internal/notify"
	"postsmith/internal/pipeline"
	"postsmith/internal/post"
	"postsmith/internal/scheduler"
	"postsmith/internal/search"
	"postsmith/internal/selector"
	"postsmith/internal/server"
	"postsmith/internal/summarize"
)

const serverShutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.ErrorContext(ctx, "Configuration is invalid",
			"error", err)

		return
	}
	log.InfoContext(ctx, "Configuration is loaded",
		"listenAddr", cfg.ListenAddr,
		"dbPath", cfg.DBPath,
		"telegramConfigured", cfg.TelegramToken != "" && cfg.TelegramChatID != 0)

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	completer, err := llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create OpenAI client",
			"error", err)

		return
	}

	searchClient, err := search.NewClient(cfg.SerperAPIKey)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create search client",
			"error", err)

		return
	}

	p := pipeline.New(
		searchClient,
		selector.New(completer, log),
		fetch.NewFetcher(log),
		summarize.New(completer, log),
		post.NewGenerator(completer),
		log,
	)
	log.InfoContext(ctx, "Pipeline is initialized")

	notifier := initNotifier(ctx, cfg, log)

	sched := scheduler.New(ctx, p, db, notifier, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"spec", scheduler.DailyPostSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"spec", scheduler.DailyPostSpec,
		"timezone", scheduler.Timezone)

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: server.New(
			p,
			db,
			notifier,
			time.Duration(cfg.RunTimeoutSeconds)*time.Second,
			log,
		).Router(),
	}

	go func() {
		if serveErr := srv.ListenAndServe(); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			log.ErrorContext(ctx, "Server stopped unexpectedly",
				"error", serveErr,
				"listenAddr", cfg.ListenAddr)
			cancel()
		}
	}()
	log.InfoContext(ctx, "Server is started",
		"listenAddr", cfg.ListenAddr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer shutdownCancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down server",
			"error", err)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initNotifier(ctx context.Context, cfg config.Config, log *slog.Logger) *notify.TelegramNotifier {
	if cfg.TelegramToken == "" || cfg.TelegramChatID == 0 {
		log.InfoContext(ctx, "Telegram delivery is not configured")

		return nil
	}

	notifier, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create Telegram notifier so delivery is disabled",
			"error", err)

		return nil
	}

	log.InfoContext(ctx, "Telegram notifier is initialized",
		"chatID", cfg.TelegramChatID)

	return notifier
}
