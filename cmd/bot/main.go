package main

import (
	"context"
	"log"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/taxsaathi/taxsaathi/internal/advisor"
	"github.com/taxsaathi/taxsaathi/internal/bot"
	"github.com/taxsaathi/taxsaathi/internal/config"
	"github.com/taxsaathi/taxsaathi/internal/dispatcher"
	"github.com/taxsaathi/taxsaathi/internal/document"
	"github.com/taxsaathi/taxsaathi/internal/llm"
	"github.com/taxsaathi/taxsaathi/internal/metrics"
	"github.com/taxsaathi/taxsaathi/internal/ratelimit"
	"github.com/taxsaathi/taxsaathi/internal/server"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	provider, err := llm.NewProvider(&cfg.AI)
	if err != nil {
		log.Fatalf("failed to create AI provider: %v", err)
	}

	m := metrics.New()

	limiter := ratelimit.NewLimiter(ratelimit.Config{
		TextCapacity: cfg.RateLimit.TextCapacity,
		TextWindow:   cfg.RateLimit.TextWindow,
		DocCapacity:  cfg.RateLimit.DocCapacity,
		DocWindow:    cfg.RateLimit.DocWindow,
	})

	extractor := document.NewExtractor(cfg.Document.MaxFileSize, cfg.Document.MaxTextLen)
	adv := advisor.New(provider)
	disp := dispatcher.New(limiter, adv, extractor, m)

	tgBot, err := bot.New(cfg.Telegram, disp, limiter, extractor)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Periodically drop idle quota entries so the map does not grow forever.
	go func() {
		ticker := time.NewTicker(cfg.RateLimit.CleanupEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed := limiter.Cleanup(2 * cfg.RateLimit.DocWindow)
				m.SetTrackedUsers(limiter.TrackedUsers())
				if removed > 0 {
					slog.Info("cleaned up idle quota entries", "removed", removed)
				}
			}
		}
	}()

	ops := server.New(cfg.Ops)
	go func() {
		if err := ops.Run(ctx); err != nil {
			slog.Error("ops server failed", "error", err)
			stop()
		}
	}()

	slog.Info("starting Indian income tax assistant bot",
		"provider", cfg.AI.Provider,
		"model", provider.ModelName(),
	)
	if err := tgBot.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("bot failed: %v", err)
	}

	slog.Info("bot stopped")
}
