package posts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

var (
	ErrTimeInvalid   = errors.New("не удалось разобрать время публикации")
	ErrTimeInPast    = errors.New("время публикации уже прошло")
	ErrPostImmutable = errors.New("пост уже опубликован или отменён")
	ErrTextEmpty     = errors.New("пустой текст поста")
)

// Форматы, которые принимает ввод оператора.
var publishTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006 15:04:05",
}

// Service управляет жизненным циклом постов: создание, правки, отмена.
type Service struct {
	posts    domain.PostRepo
	channels domain.ChannelRepo
	logs     domain.LogRepo
	sched    domain.PostScheduler
	loc      *time.Location
}

// NewService создаёт сервис постов. loc — часовой пояс ввода операторов.
func NewService(posts domain.PostRepo, channels domain.ChannelRepo, logs domain.LogRepo, sched domain.PostScheduler, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{posts: posts, channels: channels, logs: logs, sched: sched, loc: loc}
}

// ParsePublishTime разбирает время в часовом поясе оператора.
func (s *Service) ParsePublishTime(input string) (time.Time, error) {
	trim := strings.TrimSpace(input)
	for _, layout := range publishTimeLayouts {
		if ts, err := time.ParseInLocation(layout, trim, s.loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, ErrTimeInvalid
}

// CreatePost сохраняет пост в статусе pending и ставит задание доставки.
// Время публикации обязано быть в будущем.
func (s *Service) CreatePost(ctx context.Context, actorID int64, post domain.Post) (domain.Post, error) {
	if strings.TrimSpace(post.Text) == "" && !post.HasMedia() {
		return domain.Post{}, ErrTextEmpty
	}
	if !post.PublishTime.After(time.Now()) {
		return domain.Post{}, ErrTimeInPast
	}
	if _, err := s.channels.GetChannel(ctx, post.ChannelID); err != nil {
		return domain.Post{}, fmt.Errorf("проверка канала: %w", err)
	}

	post.Status = domain.PostStatusPending
	post.CreatedBy = actorID
	created, err := s.posts.AddPost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("сохранение поста: %w", err)
	}
	if err := s.sched.Schedule(ctx, created.ID, created.PublishTime); err != nil {
		return domain.Post{}, fmt.Errorf("планирование поста: %w", err)
	}
	metrics.PostsScheduled.Inc()
	s.logAction(ctx, actorID, "create_post", fmt.Sprintf("пост %d на %s", created.ID, created.PublishTime.Format(time.RFC3339)), &created.ChannelID)
	return created, nil
}

// Reschedule переносит публикацию. Старое задание заменяется новым.
func (s *Service) Reschedule(ctx context.Context, actorID, postID int64, fireAt time.Time) (domain.Post, error) {
	if !fireAt.After(time.Now()) {
		return domain.Post{}, ErrTimeInPast
	}
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.PublishTime = fireAt
	updated, err := s.posts.UpdatePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("перенос поста: %w", err)
	}
	if err := s.sched.Schedule(ctx, updated.ID, updated.PublishTime); err != nil {
		return domain.Post{}, fmt.Errorf("перепланирование поста: %w", err)
	}
	s.logAction(ctx, actorID, "reschedule_post", fmt.Sprintf("пост %d на %s", postID, fireAt.Format(time.RFC3339)), &updated.ChannelID)
	return updated, nil
}

// UpdateTitle меняет заголовок поста.
func (s *Service) UpdateTitle(ctx context.Context, actorID, postID int64, title string) (domain.Post, error) {
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.Title = strings.TrimSpace(title)
	updated, err := s.posts.UpdatePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("правка заголовка: %w", err)
	}
	s.logAction(ctx, actorID, "edit_post_title", fmt.Sprintf("пост %d", postID), &updated.ChannelID)
	return updated, nil
}

// UpdateText меняет текст поста.
func (s *Service) UpdateText(ctx context.Context, actorID, postID int64, text string) (domain.Post, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Post{}, ErrTextEmpty
	}
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.Text = text
	updated, err := s.posts.UpdatePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("правка текста: %w", err)
	}
	s.logAction(ctx, actorID, "edit_post_text", fmt.Sprintf("пост %d", postID), &updated.ChannelID)
	return updated, nil
}

// UpdateChannel переносит пост в другой канал.
func (s *Service) UpdateChannel(ctx context.Context, actorID, postID, channelID int64) (domain.Post, error) {
	if _, err := s.channels.GetChannel(ctx, channelID); err != nil {
		return domain.Post{}, fmt.Errorf("проверка канала: %w", err)
	}
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.ChannelID = channelID
	updated, err := s.posts.UpdatePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("смена канала поста: %w", err)
	}
	s.logAction(ctx, actorID, "edit_post_channel", fmt.Sprintf("пост %d", postID), &channelID)
	return updated, nil
}

// SetMedia заменяет вложения поста.
func (s *Service) SetMedia(ctx context.Context, actorID, postID int64, photos, videos []string, document string) (domain.Post, error) {
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return domain.Post{}, err
	}
	post.Photos = photos
	post.Videos = videos
	post.Document = document
	updated, err := s.posts.UpdatePost(ctx, post)
	if err != nil {
		return domain.Post{}, fmt.Errorf("правка вложений: %w", err)
	}
	s.logAction(ctx, actorID, "edit_post_media", fmt.Sprintf("пост %d", postID), &updated.ChannelID)
	return updated, nil
}

// ClearMedia убирает все вложения поста.
func (s *Service) ClearMedia(ctx context.Context, actorID, postID int64) (domain.Post, error) {
	return s.SetMedia(ctx, actorID, postID, nil, nil, "")
}

// GetPost возвращает пост по ID.
func (s *Service) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	return s.posts.GetPost(ctx, id)
}

// ListByStatus возвращает посты в заданном статусе по времени публикации.
func (s *Service) ListByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error) {
	posts, err := s.posts.ListPostsByStatus(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("список постов: %w", err)
	}
	return posts, nil
}

// ListPending возвращает ожидающие публикации посты.
func (s *Service) ListPending(ctx context.Context) ([]domain.Post, error) {
	return s.ListByStatus(ctx, domain.PostStatusPending)
}

// CancelPost отменяет пост и снимает задание доставки.
func (s *Service) CancelPost(ctx context.Context, actorID, postID int64) error {
	post, err := s.mutablePost(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.posts.MarkCancelled(ctx, postID); err != nil {
		return fmt.Errorf("отмена поста: %w", err)
	}
	if err := s.sched.Cancel(ctx, postID); err != nil {
		return fmt.Errorf("снятие задания: %w", err)
	}
	s.logAction(ctx, actorID, "cancel_post", fmt.Sprintf("пост %d", postID), &post.ChannelID)
	return nil
}

// RemovePost удаляет пост из базы и снимает задание, если оно было.
func (s *Service) RemovePost(ctx context.Context, actorID, postID int64) error {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("чтение поста: %w", err)
	}
	if post.Status == domain.PostStatusPending {
		if err := s.sched.Cancel(ctx, postID); err != nil {
			return fmt.Errorf("снятие задания: %w", err)
		}
	}
	if err := s.posts.DeletePost(ctx, postID); err != nil {
		return fmt.Errorf("удаление поста: %w", err)
	}
	s.logAction(ctx, actorID, "remove_post", fmt.Sprintf("пост %d", postID), &post.ChannelID)
	return nil
}

// mutablePost возвращает пост, который ещё можно править.
func (s *Service) mutablePost(ctx context.Context, postID int64) (domain.Post, error) {
	post, err := s.posts.GetPost(ctx, postID)
	if err != nil {
		return domain.Post{}, fmt.Errorf("чтение поста: %w", err)
	}
	if post.Status != domain.PostStatusPending {
		return domain.Post{}, ErrPostImmutable
	}
	return post, nil
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
