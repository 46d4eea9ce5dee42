package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-course-bot/internal/application"
	"telegram-course-bot/internal/config"
	"telegram-course-bot/internal/content"
	pg "telegram-course-bot/internal/infra/db/postgres"
	"telegram-course-bot/internal/infra/i18n"
	"telegram-course-bot/internal/infra/logging"
	"telegram-course-bot/internal/infra/metrics"
	red "telegram-course-bot/internal/infra/redis"
	"telegram-course-bot/internal/infra/sched"
	tele "telegram-course-bot/internal/infra/telegram"
	"telegram-course-bot/internal/infra/web"
	"telegram-course-bot/internal/infra/worker"
	"telegram-course-bot/internal/splitter"
	"telegram-course-bot/internal/usecase"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs, relaxed cookies)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connect failed")
	}
	rateLimiter := red.NewRateLimiter(redisClient)
	var deduper *red.Deduper
	if cfg.Dedupe.Enabled {
		deduper = red.NewDeduper(redisClient, cfg.Dedupe.TTL)
	}

	// ---- Repositories ----
	userRepo := pg.NewPostgresUserRepo(pool)
	progressRepo := pg.NewPostgresProgressRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Content and localization ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, cfg.Content.Locale)
	if err != nil {
		logger.Fatal().Err(err).Str("locale", cfg.Content.Locale).Msg("translator init failed")
	}
	catalog, err := content.NewCatalog(content.LessonsFS, cfg.Content.MaxDay)
	if err != nil {
		logger.Fatal().Err(err).Msg("lesson catalog init failed")
	}

	sender := splitter.NewLongSender(cfg.Content.ChunkLimit, cfg.Content.ChunkDelay, splitter.Labels{
		Part:       func(i, n int) string { return tr.T("part_indicator", i, n) },
		SendFailed: func(i, _ int) string { return tr.T("part_send_failed", i) },
	}, logger)

	// ---- Use cases ----
	userUC := usecase.NewUserUseCase(userRepo, txManager, logger)
	lessonUC := usecase.NewLessonUseCase(userRepo, progressRepo, catalog, sender, tr, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, progressRepo, logger)

	facade := application.NewBotFacade(userUC, lessonUC, tr, cfg.Content.MaxDay)

	// ---- Workers and Telegram ----
	updatePool := worker.NewPool(cfg.Bot.Workers, logger)
	updatePool.Start(ctx)
	defer updatePool.Stop()

	botAdapter, err := tele.NewRealBotAdapter(&cfg.Bot, facade, rateLimiter, deduper, updatePool, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram init failed")
	}

	switch cfg.Bot.Mode {
	case "webhook":
		if err := botAdapter.SetupWebhook(ctx); err != nil {
			logger.Fatal().Err(err).Msg("webhook setup failed")
		}
		logger.Info().Str("url", cfg.Bot.WebhookURL).Msg("webhook mode")
	default:
		go func() {
			if err := botAdapter.StartPolling(ctx); err != nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
		logger.Info().Msg("polling mode")
	}

	// ---- Reminder worker ----
	reminder := sched.NewReminderWorker(cfg.Reminder.Interval, cfg.Reminder.InactiveWindow, userUC, logger)
	go func() { _ = reminder.Run(ctx) }()

	// ---- HTTP server ----
	srv := web.NewServer(cfg, botAdapter, updatePool, userUC, statsUC, logger)
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown requested")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown error")
	}
	botAdapter.StopPolling()
}
