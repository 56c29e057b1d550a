package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"tg-channel-bot/internal/domain"
)

// Service собирает отчёты по журналу действий и статистике каналов.
type Service struct {
	logs  domain.LogRepo
	stats domain.StatRepo
}

// NewService создаёт сервис отчётов.
func NewService(logs domain.LogRepo, stats domain.StatRepo) *Service {
	return &Service{logs: logs, stats: stats}
}

// RecentLogs возвращает записи журнала с указанного момента.
func (s *Service) RecentLogs(ctx context.Context, since time.Time) ([]domain.LogEntry, error) {
	entries, err := s.logs.ListLogs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	return entries, nil
}

// LogsCSV выгружает журнал действий с указанного момента в CSV.
func (s *Service) LogsCSV(ctx context.Context, since time.Time) ([]byte, error) {
	entries, err := s.logs.ListLogs(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "user_id", "action", "details", "channel_id", "timestamp"}); err != nil {
		return nil, fmt.Errorf("запись заголовка: %w", err)
	}
	for _, e := range entries {
		channelID := ""
		if e.ChannelID != nil {
			channelID = strconv.FormatInt(*e.ChannelID, 10)
		}
		record := []string{
			strconv.FormatInt(e.ID, 10),
			strconv.FormatInt(e.UserID, 10),
			e.Action,
			e.Details,
			channelID,
			e.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("запись строки: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("формирование CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// StatsCSV выгружает статистику канала в CSV.
func (s *Service) StatsCSV(ctx context.Context, channelID int64) ([]byte, error) {
	stats, err := s.stats.ListStats(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("чтение статистики: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"id", "channel_id", "post_id", "comments", "timestamp"}); err != nil {
		return nil, fmt.Errorf("запись заголовка: %w", err)
	}
	for _, st := range stats {
		postID := ""
		if st.PostID != nil {
			postID = strconv.FormatInt(*st.PostID, 10)
		}
		record := []string{
			strconv.FormatInt(st.ID, 10),
			strconv.FormatInt(st.ChannelID, 10),
			postID,
			strconv.Itoa(st.Comments),
			st.Timestamp.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("запись строки: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("формирование CSV: %w", err)
	}
	return buf.Bytes(), nil
}
