package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

// Service доставляет посты в каналы по сработавшим заданиям.
type Service struct {
	posts     domain.PostRepo
	channels  domain.ChannelRepo
	logs      domain.LogRepo
	messenger domain.Messenger
	log       zerolog.Logger
}

// NewService создаёт сервис доставки.
func NewService(posts domain.PostRepo, channels domain.ChannelRepo, logs domain.LogRepo, messenger domain.Messenger, log zerolog.Logger) *Service {
	return &Service{posts: posts, channels: channels, logs: logs, messenger: messenger, log: log}
}

// Deliver публикует пост. Доставляется только пост в статусе pending:
// повторный вызов для того же поста — no-op, отмена фиксируется в статусе.
// Ошибка транспорта после всех ретраев переводит пост в cancelled, чтобы
// устаревший контент не уехал в канал при следующем рестарте.
func (s *Service) Deliver(ctx context.Context, postID int64) (domain.DeliveryResult, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.DeliveryResult{PostID: postID, Reason: "пост удалён"}, nil
		}
		return domain.DeliveryResult{}, fmt.Errorf("чтение поста: %w", err)
	}
	if post.Status != domain.PostStatusPending {
		return domain.DeliveryResult{
			PostID: postID,
			Status: post.Status,
			Reason: "пост уже обработан",
		}, nil
	}

	channel, err := s.channels.GetChannel(ctx, post.ChannelID)
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("чтение канала: %w", err)
	}
	if !channel.IsActive {
		if err := s.posts.MarkCancelled(ctx, postID); err != nil {
			return domain.DeliveryResult{}, fmt.Errorf("отмена поста неактивного канала: %w", err)
		}
		return domain.DeliveryResult{
			PostID: postID,
			Status: domain.PostStatusCancelled,
			Reason: "канал выключен",
		}, nil
	}

	sent, sendErr := s.send(ctx, channel.ID, post)
	if sendErr != nil {
		metrics.PostsFailed.Inc()
		s.log.Error().Err(sendErr).Int64("post_id", postID).Int64("channel_id", channel.ID).
			Msg("доставка поста провалилась")
		if err := s.posts.MarkCancelled(ctx, postID); err != nil {
			return domain.DeliveryResult{}, fmt.Errorf("отмена недоставленного поста: %w", err)
		}
		s.logAction(ctx, post.CreatedBy, "post_delivery_failed", sendErr.Error(), &channel.ID)
		return domain.DeliveryResult{
			PostID: postID,
			Status: domain.PostStatusCancelled,
			Reason: sendErr.Error(),
		}, nil
	}

	ok, err := s.posts.MarkPublished(ctx, postID, sent.MessageID, time.Now().UTC())
	if err != nil {
		return domain.DeliveryResult{}, fmt.Errorf("отметка публикации: %w", err)
	}
	if !ok {
		// Конкурент успел обработать пост между проверкой и отправкой.
		return domain.DeliveryResult{
			PostID:    postID,
			Status:    domain.PostStatusPublished,
			MessageID: sent.MessageID,
			Reason:    "пост уже был обработан",
		}, nil
	}

	metrics.PostsPublished.Inc()
	metrics.IncPublishedForChannel(channel.ID)
	s.logAction(ctx, post.CreatedBy, "post_published", fmt.Sprintf("пост %d", postID), &channel.ID)
	s.notify(ctx, channel, post)

	return domain.DeliveryResult{
		PostID:    postID,
		Status:    domain.PostStatusPublished,
		MessageID: sent.MessageID,
		Delivered: true,
	}, nil
}

// send выбирает головное сообщение: документ важнее фото, фото важнее
// видео, текст — когда вложений нет. Остальные вложения досылаются
// отдельными сообщениями следом.
func (s *Service) send(ctx context.Context, chatID int64, post domain.Post) (domain.SentMessage, error) {
	caption := composeCaption(post)
	var (
		primary domain.SentMessage
		err     error
	)
	extraPhotos := post.Photos
	extraVideos := post.Videos
	switch {
	case post.Document != "":
		primary, err = s.messenger.SendDocument(ctx, chatID, post.Document, caption)
	case len(post.Photos) > 0:
		primary, err = s.messenger.SendPhoto(ctx, chatID, post.Photos[0], caption)
		extraPhotos = post.Photos[1:]
	case len(post.Videos) > 0:
		primary, err = s.messenger.SendVideo(ctx, chatID, post.Videos[0], caption)
		extraVideos = post.Videos[1:]
	default:
		if caption == "" {
			return domain.SentMessage{}, errors.New("пост без контента")
		}
		return s.messenger.SendText(ctx, chatID, caption)
	}
	if err != nil {
		return domain.SentMessage{}, err
	}
	s.sendExtras(ctx, chatID, post.ID, extraPhotos, extraVideos)
	return primary, nil
}

// sendExtras досылает остальные вложения поста. Головное сообщение уже в
// канале, поэтому сбой досылки публикацию не отменяет.
func (s *Service) sendExtras(ctx context.Context, chatID, postID int64, photos, videos []string) {
	for _, fileID := range photos {
		if _, err := s.messenger.SendPhoto(ctx, chatID, fileID, ""); err != nil {
			s.log.Warn().Err(err).Int64("post_id", postID).Msg("фото поста не досланы")
		}
	}
	for _, fileID := range videos {
		if _, err := s.messenger.SendVideo(ctx, chatID, fileID, ""); err != nil {
			s.log.Warn().Err(err).Int64("post_id", postID).Msg("видео поста не досланы")
		}
	}
}

// notify отправляет уведомление в служебный чат канала. Сбой уведомления
// на исход доставки не влияет.
func (s *Service) notify(ctx context.Context, channel domain.Channel, post domain.Post) {
	if channel.NotificationChatID == nil {
		return
	}
	text := fmt.Sprintf("✅ Пост %d опубликован в канале %q", post.ID, channel.Name)
	if _, err := s.messenger.SendText(ctx, *channel.NotificationChatID, text); err != nil {
		s.log.Warn().Err(err).Int64("chat_id", *channel.NotificationChatID).
			Msg("не удалось отправить уведомление о публикации")
	}
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

// composeCaption собирает текст публикации из заголовка и тела.
func composeCaption(post domain.Post) string {
	title := strings.TrimSpace(post.Title)
	body := strings.TrimSpace(post.Text)
	switch {
	case title == "":
		return body
	case body == "":
		return title
	default:
		return title + "\n\n" + body
	}
}
