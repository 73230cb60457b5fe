package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/studio_manager/internal/announce"
	"github.com/Freeeeeet/studio_manager/internal/app"
	"github.com/Freeeeeet/studio_manager/internal/config"
	"github.com/Freeeeeet/studio_manager/internal/controller"
	"github.com/Freeeeeet/studio_manager/internal/events"
	"github.com/Freeeeeet/studio_manager/internal/repository"
	"github.com/Freeeeeet/studio_manager/internal/service"
	"github.com/Freeeeeet/studio_manager/migrations"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Starting studio manager",
		zap.String("environment", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.String("timezone", cfg.StudioTimezone),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := app.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if err := migrator.Close(); err != nil {
		logger.Warn("Failed to close migrator", zap.Error(err))
	}

	profileRepo := repository.NewProfileRepository(pool)
	permissionRepo := repository.NewPermissionRepository(pool)
	memberRepo := repository.NewMemberRepository(pool)
	lessonRepo := repository.NewLessonRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	noticeRepo := repository.NewNoticeRepository(pool)

	// События сессии: redis, если настроен, иначе no-op
	var publisher events.Publisher = events.Nop{}
	var subscriber controller.EventSubscriber
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Fatal("Failed to connect to redis", zap.Error(err))
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("Failed to close redis client", zap.Error(err))
			}
		}()

		bus := events.NewBus(redisClient, logger)
		publisher = bus
		subscriber = bus
		logger.Info("Session events enabled", zap.String("redis_addr", cfg.RedisAddr))
	} else {
		logger.Info("REDIS_ADDR not set, session events disabled")
	}

	var announcer service.NoticeAnnouncer
	if cfg.TelegramEnabled() {
		tg, err := announce.NewTelegramAnnouncer(cfg.TelegramToken, cfg.TelegramNoticeChatID, "", logger)
		if err != nil {
			logger.Fatal("Failed to create telegram announcer", zap.Error(err))
		}
		announcer = tg
		logger.Info("Telegram notice announcer enabled")
	}

	loc := cfg.Location()

	identityService := service.NewIdentityService(profileRepo, logger)
	permissionService := service.NewPermissionService(profileRepo, permissionRepo, memberRepo, publisher, loc, logger)
	sessionService := service.NewSessionService(identityService, permissionService, publisher, logger)
	settlementService := service.NewSettlementService(lessonRepo, loc, logger)
	notificationService := service.NewNotificationService(notificationRepo, profileRepo, publisher, logger)
	noticeService := service.NewNoticeService(noticeRepo, notificationRepo, profileRepo, publisher, announcer, service.NoticeOptions{
		Concurrency:     cfg.FanoutConcurrency,
		RetractOnDelete: cfg.RetractNoticeNotifications,
	}, logger)
	memberService := service.NewMemberService(memberRepo, logger)

	scheduler := app.NewScheduler(notificationService, cfg.NotificationRetentionDays, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := controller.NewServer(controller.Services{
		Sessions:      sessionService,
		Permissions:   permissionService,
		Notices:       noticeService,
		Notifications: notificationService,
		Settlements:   settlementService,
		Members:       memberService,
	}, subscriber, cfg.CORSAllowedOrigins, logger)

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", zap.Error(err))
	}
}
