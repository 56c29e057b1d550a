package delivery

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
)

// Worker читает задания из очереди и доставляет посты.
type Worker struct {
	queue    domain.DeliveryQueue
	jobs     domain.JobStore
	delivery *Service
	log      zerolog.Logger

	// Пауза после ошибки чтения очереди: недоступный брокер не должен
	// заливать лог плотным циклом ретраев.
	popBackoff time.Duration
}

// NewWorker создаёт воркер доставки. jobs может быть nil.
func NewWorker(queue domain.DeliveryQueue, jobs domain.JobStore, delivery *Service, log zerolog.Logger) *Worker {
	return &Worker{queue: queue, jobs: jobs, delivery: delivery, log: log, popBackoff: time.Second}
}

// Run обрабатывает очередь до завершения контекста.
func (w *Worker) Run(ctx context.Context) error {
	for {
		job, err := w.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			w.log.Error().Err(err).Msg("чтение очереди доставки")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(w.popBackoff):
			}
			continue
		}

		result, err := w.delivery.Deliver(ctx, job.PostID)
		if err != nil {
			w.log.Error().Err(err).Str("job_id", job.ID).Int64("post_id", job.PostID).
				Msg("доставка поста")
			continue
		}
		if w.jobs != nil {
			_ = w.jobs.Remove(ctx, job.PostID)
		}
		w.log.Info().
			Str("job_id", job.ID).
			Int64("post_id", result.PostID).
			Str("status", string(result.Status)).
			Bool("delivered", result.Delivered).
			Str("reason", result.Reason).
			Msg("задание доставки обработано")
	}
}
