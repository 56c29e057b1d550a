package reports

import (
	"context"
	"strings"
	"testing"
	"time"

	"tg-channel-bot/internal/domain"
)

type fakeLogRepo struct {
	entries []domain.LogEntry
}

func (f *fakeLogRepo) AddLog(ctx context.Context, entry domain.LogEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeLogRepo) ListLogs(ctx context.Context, since time.Time) ([]domain.LogEntry, error) {
	var out []domain.LogEntry
	for _, e := range f.entries {
		if !e.Timestamp.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeStatRepo struct {
	stats []domain.Stat
}

func (f *fakeStatRepo) AddStat(ctx context.Context, stat domain.Stat) (domain.Stat, error) {
	f.stats = append(f.stats, stat)
	return stat, nil
}

func (f *fakeStatRepo) IncComments(ctx context.Context, channelID int64) error { return nil }

func (f *fakeStatRepo) ListStats(ctx context.Context, channelID int64) ([]domain.Stat, error) {
	var out []domain.Stat
	for _, st := range f.stats {
		if st.ChannelID == channelID {
			out = append(out, st)
		}
	}
	return out, nil
}

func TestLogsCSV(t *testing.T) {
	channelID := int64(-100)
	logs := &fakeLogRepo{entries: []domain.LogEntry{
		{ID: 1, UserID: 7, Action: "create_post", Details: "пост 1", ChannelID: &channelID, Timestamp: time.Now()},
		{ID: 2, UserID: 7, Action: "ban_user", Timestamp: time.Now().Add(-30 * 24 * time.Hour)},
	}}
	svc := NewService(logs, &fakeStatRepo{})

	payload, err := svc.LogsCSV(context.Background(), time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	text := string(payload)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("ожидали заголовок и одну запись, получили %d строк:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "id,user_id,action") {
		t.Fatalf("нет заголовка CSV:\n%s", text)
	}
	if !strings.Contains(lines[1], "create_post") || !strings.Contains(lines[1], "-100") {
		t.Fatalf("запись журнала не попала в выгрузку:\n%s", text)
	}
	if strings.Contains(text, "ban_user") {
		t.Fatal("старые записи не должны попадать в выгрузку")
	}
}

func TestStatsCSV(t *testing.T) {
	postID := int64(3)
	stats := &fakeStatRepo{stats: []domain.Stat{
		{ID: 1, ChannelID: -100, PostID: &postID, Comments: 4, Timestamp: time.Now()},
		{ID: 2, ChannelID: -200, Comments: 1, Timestamp: time.Now()},
	}}
	svc := NewService(&fakeLogRepo{}, stats)

	payload, err := svc.StatsCSV(context.Background(), -100)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	text := string(payload)

	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 2 {
		t.Fatalf("ожидали заголовок и одну запись, получили %d строк:\n%s", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "id,channel_id,post_id,comments") {
		t.Fatalf("нет заголовка CSV:\n%s", text)
	}
	if !strings.Contains(lines[1], "4") || !strings.Contains(lines[1], "-100") {
		t.Fatalf("счётчик комментариев не попал в выгрузку:\n%s", text)
	}
}
