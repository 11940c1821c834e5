package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/phantomorder/soulbingo-bot/internal/config"
	"github.com/phantomorder/soulbingo-bot/internal/delivery/telegram"
	"github.com/phantomorder/soulbingo-bot/internal/httpapi"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres"
	"github.com/phantomorder/soulbingo-bot/internal/infra/postgres/repository"
	redisinfra "github.com/phantomorder/soulbingo-bot/internal/infra/redis"
	"github.com/phantomorder/soulbingo-bot/internal/logger"
	"github.com/phantomorder/soulbingo-bot/internal/service"
	"github.com/phantomorder/soulbingo-bot/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dsn, err := cfg.DB.DSN()
	if err != nil {
		zl.Fatal("database url missing", zap.Error(err))
	}

	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolConfig{
		MaxConns:        int32(cfg.DB.MaxConnections),
		MaxConnLifetime: cfg.DB.MaxConnLifetime,
	})
	if err != nil {
		zl.Fatal("postgres connect failed", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redisinfra.NewClient(ctx, cfg.Redis.URL)
	if err != nil {
		zl.Fatal("redis connect failed", zap.Error(err))
	}
	defer func() { _ = rdb.Close() }()

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		zl.Fatal("telegram auth failed", zap.Error(err))
	}
	zl.Info("telegram authorized", zap.String("account", bot.Self.UserName))

	commands := []tgbotapi.BotCommand{
		{Command: "start", Description: "About the bot"},
		{Command: "balance", Description: "Check your soul balance"},
	}
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		zl.Warn("failed to set bot commands", zap.Error(err))
	}

	// Repositories.
	userRepo := repository.NewUserRepository(pool)
	setRepo := repository.NewSetRepository(pool)
	questionRepo := repository.NewQuestionRepository(pool)
	answerRepo := repository.NewAnswerRepository(pool)
	configRepo := repository.NewConfigRepository(pool)

	sessions := storage.NewSessionStore()

	// Services.
	userService := service.NewUserService(userRepo)
	playService := service.NewPlayService(setRepo, questionRepo, answerRepo, userRepo, sessions, zl)
	leaderboardService := service.NewLeaderboardService(userRepo, cfg.Leaderboard.Schedule, cfg.Leaderboard.Size, zl)

	notifier := telegram.NewNotifier(bot, questionRepo, configRepo, cfg.Telegram, zl)

	graderService := service.NewGraderService(setRepo, questionRepo, answerRepo, userRepo, notifier, zl)
	setService := service.NewSetService(setRepo, questionRepo, graderService, zl)
	setService.AttachNotifiers(notifier, notifier)
	leaderboardService.SetNotifier(notifier)

	handler := telegram.NewHandler(bot, cfg, zl, userService, playService, setService, questionRepo, notifier, notifier)

	// Admin API.
	adminSessions := httpapi.NewSessionStore(rdb, cfg.Admin.SessionTTL)
	apiServer := httpapi.NewServer(cfg, zl, adminSessions, setService, userService, graderService, answerRepo, questionRepo, configRepo, notifier)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: apiServer.Router(),
	}

	go func() {
		zl.Info("admin api listening", zap.Int("port", cfg.HTTP.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("admin api stopped", zap.Error(err))
			stop()
		}
	}()

	go leaderboardService.Start(ctx)

	go func() {
		if err := handler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			zl.Error("telegram handler stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zl.Error("admin api shutdown failed", zap.Error(err))
	}
}
