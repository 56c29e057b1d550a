package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"tg-channel-bot/internal/adapters/bot"
	"tg-channel-bot/internal/adapters/repo"
	"tg-channel-bot/internal/adapters/telegram"
	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/config"
	"tg-channel-bot/internal/infra/db"
	infrahttp "tg-channel-bot/internal/infra/http"
	"tg-channel-bot/internal/infra/jobstore"
	"tg-channel-bot/internal/infra/log"
	"tg-channel-bot/internal/infra/metrics"
	"tg-channel-bot/internal/infra/queue"
	"tg-channel-bot/internal/scheduler"
	"tg-channel-bot/internal/usecase/channels"
	"tg-channel-bot/internal/usecase/delivery"
	"tg-channel-bot/internal/usecase/moderation"
	"tg-channel-bot/internal/usecase/posts"
	"tg-channel-bot/internal/usecase/reports"
)

func main() {
	cfg := config.Load()
	logger := log.NewLogger(cfg.AppEnv)
	metrics.MustRegister(prometheus.DefaultRegisterer)

	loc, err := time.LoadLocation(cfg.TZ)
	if err != nil {
		logger.Fatal().Err(err).Str("tz", cfg.TZ).Msg("неизвестный часовой пояс")
	}

	pool, err := db.Connect(cfg.PGDSN)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось подключиться к БД")
	}
	defer pool.Close()

	if err := db.Migrate(cfg.PGDSN); err != nil {
		logger.Fatal().Err(err).Msg("не удалось применить миграции")
	}

	repoAdapter := repo.NewPostgres(pool)

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось создать бота")
	}
	messenger := telegram.NewMessenger(botAPI, logger)

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	}

	var jobs domain.JobStore
	if redisClient != nil {
		jobs = jobstore.NewRedis(redisClient)
	}

	var deliveryQueue domain.DeliveryQueue
	switch cfg.Queue.Driver {
	case "rabbitmq":
		rabbit, err := queue.NewRabbitDeliveryQueue(cfg.Queue.AMQPURL, cfg.Queue.Key)
		if err != nil {
			logger.Fatal().Err(err).Msg("не удалось подключиться к RabbitMQ")
		}
		defer rabbit.Close()
		deliveryQueue = rabbit
	default:
		if redisClient == nil {
			logger.Fatal().Msg("для очереди redis нужен REDIS_ADDR")
		}
		deliveryQueue = queue.NewRedisDeliveryQueue(redisClient, cfg.Queue.Key)
	}

	sched := scheduler.New(repoAdapter, deliveryQueue, jobs, logger)
	defer sched.Stop()

	channelService := channels.NewService(repoAdapter, repoAdapter)
	postService := posts.NewService(repoAdapter, repoAdapter, repoAdapter, sched, loc)
	deliveryService := delivery.NewService(repoAdapter, repoAdapter, repoAdapter, messenger, logger)
	moderationService := moderation.NewService(repoAdapter, repoAdapter, repoAdapter, repoAdapter,
		repoAdapter, messenger, splitWords(cfg.Moderation.ProfanityWords), logger)
	reportService := reports.NewService(repoAdapter, repoAdapter)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	restoreCtx, restoreCancel := context.WithTimeout(ctx, 30*time.Second)
	restored, err := sched.Restore(restoreCtx)
	restoreCancel()
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось восстановить задания")
	}
	logger.Info().Int("count", restored).Msg("планировщик готов")

	worker := delivery.NewWorker(deliveryQueue, jobs, deliveryService, logger)
	go func() {
		if err := worker.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("воркер доставки остановлен")
		}
	}()

	httpServer := infrahttp.NewServer(logger)
	go func() {
		if err := httpServer.Start(cfg.MetricsAddr); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP сервер остановлен")
		}
	}()

	handler, err := bot.NewHandler(botAPI, logger, bot.NewMemorySessionStore(),
		repoAdapter, channelService, postService, moderationService, reportService,
		deliveryService, messenger, loc)
	if err != nil {
		logger.Fatal().Err(err).Msg("не удалось собрать обработчик")
	}

	updCfg := tgbotapi.NewUpdate(0)
	updCfg.Timeout = 30
	updates := botAPI.GetUpdatesChan(updCfg)

	go func() {
		logger.Info().Str("bot", botAPI.Self.UserName).Msg("бот запущен")
		for upd := range updates {
			handler.HandleUpdate(ctx, upd)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	logger.Info().Msg("остановка бота")

	botAPI.StopReceivingUpdates()
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
}

func splitWords(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}
