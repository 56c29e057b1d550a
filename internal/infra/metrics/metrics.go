package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	PostsScheduled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_scheduled_total",
		Help: "Количество запланированных постов",
	})
	PostsPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_published_total",
		Help: "Количество успешно опубликованных постов",
	})
	PostsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_failed_total",
		Help: "Количество постов, доставка которых завершилась ошибкой",
	})
	PostsPublishedByChannel = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "posts_published_by_channel_total",
		Help: "Количество опубликованных постов по каналам",
	}, []string{"channel_id"})

	ModerationDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moderation_deleted_total",
		Help: "Количество удалённых модерацией сообщений",
	})

	BotSendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: prometheus.DefBuckets,
	}, []string{"component", "operation", "target", "status"})

	NetworkRequestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "network_request_total",
		Help: "Количество сетевых запросов",
	}, []string{"component", "operation", "target", "status"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		PostsScheduled,
		PostsPublished,
		PostsFailed,
		PostsPublishedByChannel,
		ModerationDeleted,
		BotSendErrors,
		NetworkRequestDuration,
		NetworkRequestTotal,
	)
}

// ObserveNetworkRequest записывает длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	if component == "" {
		component = "unknown"
	}
	if operation == "" {
		operation = "unknown"
	}
	if target == "" {
		target = "unknown"
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	duration := time.Since(start).Seconds()
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(duration)
	NetworkRequestTotal.WithLabelValues(component, operation, target, status).Inc()
}

// IncPublishedForChannel увеличивает счётчик публикаций канала.
func IncPublishedForChannel(channelID int64) {
	PostsPublishedByChannel.WithLabelValues(strconv.FormatInt(channelID, 10)).Inc()
}
