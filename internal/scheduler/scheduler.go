package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
)

// Scheduler держит по одному таймеру на ожидающий пост и по срабатыванию
// кладёт задание в очередь доставки. Schedule для уже запланированного поста
// заменяет старое задание, Cancel идемпотентен.
type Scheduler struct {
	posts domain.PostRepo
	queue domain.DeliveryQueue
	jobs  domain.JobStore
	log   zerolog.Logger

	mu     sync.Mutex
	timers map[int64]*time.Timer
}

// New создаёт планировщик. jobs может быть nil, тогда снимок заданий
// не ведётся.
func New(posts domain.PostRepo, queue domain.DeliveryQueue, jobs domain.JobStore, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		posts:  posts,
		queue:  queue,
		jobs:   jobs,
		log:    log,
		timers: make(map[int64]*time.Timer),
	}
}

var _ domain.PostScheduler = (*Scheduler)(nil)

// Schedule ставит задание доставки поста на указанное время. Прошедшее
// время срабатывает сразу.
func (s *Scheduler) Schedule(ctx context.Context, postID int64, fireAt time.Time) error {
	job := domain.DeliveryJob{
		ID:         uuid.NewString(),
		PostID:     postID,
		FireAt:     fireAt,
		EnqueuedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if old, ok := s.timers[postID]; ok {
		old.Stop()
	}
	delay := time.Until(fireAt)
	if delay < 0 {
		delay = 0
	}
	s.timers[postID] = time.AfterFunc(delay, func() { s.fire(job) })
	s.mu.Unlock()

	if s.jobs != nil {
		if err := s.jobs.Put(ctx, job); err != nil {
			s.log.Warn().Err(err).Int64("post_id", postID).Msg("снимок задания не сохранён")
		}
	}
	s.log.Info().
		Str("job_id", job.ID).
		Int64("post_id", postID).
		Time("fire_at", fireAt).
		Msg("пост запланирован")
	return nil
}

// Cancel снимает задание поста. Отсутствие задания ошибкой не считается.
func (s *Scheduler) Cancel(ctx context.Context, postID int64) error {
	s.mu.Lock()
	if timer, ok := s.timers[postID]; ok {
		timer.Stop()
		delete(s.timers, postID)
	}
	s.mu.Unlock()

	if s.jobs != nil {
		if err := s.jobs.Remove(ctx, postID); err != nil {
			s.log.Warn().Err(err).Int64("post_id", postID).Msg("снимок задания не удалён")
		}
	}
	s.log.Info().Int64("post_id", postID).Msg("задание снято")
	return nil
}

// Restore перечитывает ожидающие посты из базы и планирует их заново.
// Просроченные посты срабатывают немедленно. Вызывается на старте процесса.
func (s *Scheduler) Restore(ctx context.Context) (int, error) {
	posts, err := s.posts.ListPostsByStatus(ctx, domain.PostStatusPending)
	if err != nil {
		return 0, fmt.Errorf("чтение ожидающих постов: %w", err)
	}
	for _, post := range posts {
		if err := s.Schedule(ctx, post.ID, post.PublishTime); err != nil {
			return 0, fmt.Errorf("восстановление поста %d: %w", post.ID, err)
		}
	}
	s.log.Info().Int("count", len(posts)).Msg("задания восстановлены")
	return len(posts), nil
}

// Stop останавливает все таймеры. Задания в очереди не трогаются.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// fire отправляет сработавшее задание в очередь доставки.
func (s *Scheduler) fire(job domain.DeliveryJob) {
	s.mu.Lock()
	delete(s.timers, job.PostID)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.log.Error().Err(err).Str("job_id", job.ID).Int64("post_id", job.PostID).
			Msg("задание не попало в очередь доставки")
		return
	}
	s.log.Info().Str("job_id", job.ID).Int64("post_id", job.PostID).Msg("задание отправлено в очередь")
}
