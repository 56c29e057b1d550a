package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

const keyPrefix = "post_"

// RedisJobStore хранит снимок запланированных задач в Redis.
// Это вспомогательный кэш для наблюдаемости: источником истины остаётся база.
type RedisJobStore struct {
	client *redis.Client
}

// NewRedis создаёт хранилище задач.
func NewRedis(client *redis.Client) *RedisJobStore {
	return &RedisJobStore{client: client}
}

// Put сохраняет задачу по ключу поста, затирая предыдущую.
func (s *RedisJobStore) Put(ctx context.Context, job domain.DeliveryJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	start := time.Now()
	err = s.client.Set(ctx, jobKey(job.PostID), payload, 0).Err()
	metrics.ObserveNetworkRequest("redis", "set", "jobstore", start, err)
	if err != nil {
		return fmt.Errorf("сохранение задачи: %w", err)
	}
	return nil
}

// Remove удаляет задачу поста. Отсутствие ключа ошибкой не считается.
func (s *RedisJobStore) Remove(ctx context.Context, postID int64) error {
	start := time.Now()
	err := s.client.Del(ctx, jobKey(postID)).Err()
	metrics.ObserveNetworkRequest("redis", "del", "jobstore", start, err)
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("удаление задачи: %w", err)
	}
	return nil
}

// List возвращает все сохранённые задачи.
func (s *RedisJobStore) List(ctx context.Context) ([]domain.DeliveryJob, error) {
	var jobs []domain.DeliveryJob
	iter := s.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		raw, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			return nil, fmt.Errorf("чтение задачи: %w", err)
		}
		var job domain.DeliveryJob
		if err := json.Unmarshal(raw, &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("обход ключей: %w", err)
	}
	return jobs, nil
}

func jobKey(postID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, postID)
}
