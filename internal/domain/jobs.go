package domain

import (
	"context"
	"time"
)

// DeliveryJob содержит задачу на доставку поста. Задача несёт только
// долговечные идентификаторы: весь остальной контекст перечитывается
// из БД в момент доставки, поэтому задания переживают перезапуск.
type DeliveryJob struct {
	ID         string    `json:"job_id"`
	PostID     int64     `json:"post_id"`
	FireAt     time.Time `json:"fire_at"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// DeliveryQueue описывает очередь задач на доставку постов.
type DeliveryQueue interface {
	Enqueue(ctx context.Context, job DeliveryJob) error
	Pop(ctx context.Context) (DeliveryJob, error)
}

// JobStore — зеркало запланированных заданий, ключ post_<id>.
// Это кэш: источником истины при рестарте остаются pending-посты в БД.
type JobStore interface {
	Put(ctx context.Context, job DeliveryJob) error
	Remove(ctx context.Context, postID int64) error
	List(ctx context.Context) ([]DeliveryJob, error)
}
