package channels

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"tg-channel-bot/internal/domain"
)

var (
	ErrChannelIDInvalid = errors.New("некорректный ID канала")
	ErrNameEmpty        = errors.New("пустое название канала")
)

// Service управляет каналами-назначениями публикаций.
type Service struct {
	repo domain.ChannelRepo
	logs domain.LogRepo
}

// NewService создаёт сервис каналов.
func NewService(repo domain.ChannelRepo, logs domain.LogRepo) *Service {
	return &Service{repo: repo, logs: logs}
}

// ParseChannelID приводит ввод оператора к ID канала. Принимает как -100...
// форму, так и положительное число.
func ParseChannelID(input string) (int64, error) {
	trim := strings.TrimSpace(input)
	id, err := strconv.ParseInt(trim, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrChannelIDInvalid
	}
	return id, nil
}

// AddChannel регистрирует канал. Новый канал сразу активен; модерация и
// чат уведомлений задаются оператором при добавлении.
func (s *Service) AddChannel(ctx context.Context, actorID, channelID int64, name string, notifyChatID *int64, moderation bool) (domain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Channel{}, ErrNameEmpty
	}
	channel, err := s.repo.AddChannel(ctx, domain.Channel{
		ID:                 channelID,
		Name:               name,
		IsActive:           true,
		ModerationEnabled:  moderation,
		NotificationChatID: notifyChatID,
	})
	if err != nil {
		return domain.Channel{}, fmt.Errorf("сохранение канала: %w", err)
	}
	s.logAction(ctx, actorID, "add_channel", fmt.Sprintf("канал %q", name), &channel.ID)
	return channel, nil
}

// GetChannel возвращает канал по ID.
func (s *Service) GetChannel(ctx context.Context, id int64) (domain.Channel, error) {
	return s.repo.GetChannel(ctx, id)
}

// ListChannels возвращает каналы по типу выборки.
func (s *Service) ListChannels(ctx context.Context, kind domain.ChannelListKind) ([]domain.Channel, error) {
	channels, err := s.repo.ListChannels(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("список каналов: %w", err)
	}
	return channels, nil
}

// Rename меняет название канала.
func (s *Service) Rename(ctx context.Context, actorID, channelID int64, name string) (domain.Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Channel{}, ErrNameEmpty
	}
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	channel.Name = name
	updated, err := s.repo.UpdateChannel(ctx, channel)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("переименование канала: %w", err)
	}
	s.logAction(ctx, actorID, "rename_channel", fmt.Sprintf("новое имя %q", name), &channelID)
	return updated, nil
}

// SetActive включает либо выключает канал.
func (s *Service) SetActive(ctx context.Context, actorID, channelID int64, active bool) (domain.Channel, error) {
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	channel.IsActive = active
	updated, err := s.repo.UpdateChannel(ctx, channel)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("смена активности канала: %w", err)
	}
	action := "deactivate_channel"
	if active {
		action = "activate_channel"
	}
	s.logAction(ctx, actorID, action, "", &channelID)
	return updated, nil
}

// SetModeration включает либо выключает модерацию комментариев канала.
func (s *Service) SetModeration(ctx context.Context, actorID, channelID int64, enabled bool) (domain.Channel, error) {
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	channel.ModerationEnabled = enabled
	updated, err := s.repo.UpdateChannel(ctx, channel)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("смена модерации канала: %w", err)
	}
	s.logAction(ctx, actorID, "set_moderation", strconv.FormatBool(enabled), &channelID)
	return updated, nil
}

// SetNotificationChat задаёт чат для служебных уведомлений о публикациях.
// nil снимает привязку.
func (s *Service) SetNotificationChat(ctx context.Context, actorID, channelID int64, chatID *int64) (domain.Channel, error) {
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	channel.NotificationChatID = chatID
	updated, err := s.repo.UpdateChannel(ctx, channel)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("привязка чата уведомлений: %w", err)
	}
	s.logAction(ctx, actorID, "set_notification_chat", "", &channelID)
	return updated, nil
}

// SetCommentChat задаёт чат обсуждений, который модерирует бот.
func (s *Service) SetCommentChat(ctx context.Context, actorID, channelID int64, chatID *int64) (domain.Channel, error) {
	channel, err := s.repo.GetChannel(ctx, channelID)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	channel.CommentChatID = chatID
	updated, err := s.repo.UpdateChannel(ctx, channel)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("привязка чата комментариев: %w", err)
	}
	s.logAction(ctx, actorID, "set_comment_chat", "", &channelID)
	return updated, nil
}

// RemoveChannel удаляет канал вместе с его постами и фильтрами.
func (s *Service) RemoveChannel(ctx context.Context, actorID, channelID int64) error {
	if err := s.repo.DeleteChannel(ctx, channelID); err != nil {
		return fmt.Errorf("удаление канала: %w", err)
	}
	s.logAction(ctx, actorID, "remove_channel", "", &channelID)
	return nil
}

func (s *Service) logAction(ctx context.Context, actorID int64, action, details string, channelID *int64) {
	if s.logs == nil {
		return
	}
	_ = s.logs.AddLog(ctx, domain.LogEntry{
		UserID:    actorID,
		Action:    action,
		Details:   details,
		ChannelID: channelID,
	})
}
