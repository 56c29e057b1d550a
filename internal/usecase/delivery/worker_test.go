package delivery

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
)

type failingQueue struct {
	mu   sync.Mutex
	pops int
}

func (q *failingQueue) Enqueue(ctx context.Context, job domain.DeliveryJob) error { return nil }

func (q *failingQueue) Pop(ctx context.Context) (domain.DeliveryJob, error) {
	if err := ctx.Err(); err != nil {
		return domain.DeliveryJob{}, err
	}
	q.mu.Lock()
	q.pops++
	q.mu.Unlock()
	return domain.DeliveryJob{}, errors.New("брокер недоступен")
}

func (q *failingQueue) count() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pops
}

func TestWorkerBacksOffOnQueueErrors(t *testing.T) {
	queue := &failingQueue{}
	w := NewWorker(queue, nil, nil, zerolog.Nop())
	w.popBackoff = 20 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("воркер должен завершаться без ошибки: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("воркер не завершился после отмены контекста")
	}

	// Без паузы за 100 мс цикл накрутил бы тысячи попыток.
	if pops := queue.count(); pops > 10 {
		t.Fatalf("ожидали редкие ретраи при недоступной очереди, получили %d", pops)
	}
}
