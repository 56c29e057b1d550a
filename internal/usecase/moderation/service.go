package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

// Verdict описывает решение модерации по сообщению.
type Verdict struct {
	Delete bool
	Rule   string
}

// Service модерирует чаты обсуждений привязанных каналов.
type Service struct {
	filters   domain.FilterRepo
	channels  domain.ChannelRepo
	users     domain.UserRepo
	stats     domain.StatRepo
	logs      domain.LogRepo
	messenger domain.Messenger
	profanity []string
	log       zerolog.Logger
}

// NewService создаёт сервис модерации. profanity — общий список стоп-слов
// поверх фильтров каналов.
func NewService(filters domain.FilterRepo, channels domain.ChannelRepo, users domain.UserRepo,
	stats domain.StatRepo, logs domain.LogRepo, messenger domain.Messenger,
	profanity []string, log zerolog.Logger) *Service {
	words := make([]string, 0, len(profanity))
	for _, w := range profanity {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return &Service{
		filters:   filters,
		channels:  channels,
		users:     users,
		stats:     stats,
		logs:      logs,
		messenger: messenger,
		profanity: words,
		log:       log,
	}
}

// Check выносит решение по тексту без побочных эффектов.
func (s *Service) Check(ctx context.Context, channelID int64, text string) (Verdict, error) {
	lower := strings.ToLower(text)

	for _, word := range s.profanity {
		if strings.Contains(lower, word) {
			return Verdict{Delete: true, Rule: "стоп-слово: " + word}, nil
		}
	}

	filters, err := s.filters.ListActiveFilters(ctx, channelID)
	if err != nil {
		return Verdict{}, fmt.Errorf("чтение фильтров: %w", err)
	}
	for _, f := range filters {
		if f.Keyword != "" && strings.Contains(lower, strings.ToLower(f.Keyword)) {
			return Verdict{Delete: true, Rule: "ключевое слово: " + f.Keyword}, nil
		}
		if f.Regex == "" {
			continue
		}
		re, err := regexp.Compile(f.Regex)
		if err != nil {
			// Битое выражение не должно ронять модерацию всего чата.
			s.log.Warn().Err(err).Int64("filter_id", f.ID).Msg("некорректное регулярное выражение фильтра")
			continue
		}
		if re.MatchString(text) {
			return Verdict{Delete: true, Rule: "регулярное выражение: " + f.Regex}, nil
		}
	}
	return Verdict{}, nil
}

// ModerateComment проверяет комментарий из чата обсуждений: нарушение
// удаляется и фиксируется в журнале, чистое сообщение учитывается
// в статистике канала.
func (s *Service) ModerateComment(ctx context.Context, chatID int64, messageID int, authorID int64, text string) (Verdict, error) {
	channel, err := s.channels.GetChannelByCommentChat(ctx, chatID)
	if err != nil {
		return Verdict{}, fmt.Errorf("поиск канала по чату: %w", err)
	}
	if !channel.ModerationEnabled {
		return Verdict{}, nil
	}

	if author, err := s.users.GetUser(ctx, authorID); err == nil && author.CanModerate() {
		return Verdict{}, nil
	}

	verdict, err := s.Check(ctx, channel.ID, text)
	if err != nil {
		return Verdict{}, err
	}
	if !verdict.Delete {
		if err := s.stats.IncComments(ctx, channel.ID); err != nil {
			s.log.Warn().Err(err).Int64("channel_id", channel.ID).Msg("учёт комментария")
		}
		return verdict, nil
	}

	if err := s.messenger.DeleteMessage(ctx, chatID, messageID); err != nil {
		return Verdict{}, fmt.Errorf("удаление сообщения: %w", err)
	}
	metrics.ModerationDeleted.Inc()
	s.logAction(ctx, authorID, "moderation_delete", verdict.Rule, &channel.ID)
	s.log.Info().
		Int64("chat_id", chatID).
		Int("message_id", messageID).
		Int64("author_id", authorID).
		Str("rule", verdict.Rule).
		Msg("сообщение удалено модерацией")
	return verdict, nil
}

// BanUser банит пользователя в боте и во всех чатах обсуждений.
func (s *Service) BanUser(ctx context.Context, actorID, userID int64, until time.Time) error {
	if err := s.users.SetBanned(ctx, userID, true); err != nil {
		return fmt.Errorf("бан пользователя: %w", err)
	}
	s.restrictEverywhere(ctx, userID, until, true)
	s.logAction(ctx, actorID, "ban_user", fmt.Sprintf("пользователь %d", userID), nil)
	return nil
}

// UnbanUser снимает бан.
func (s *Service) UnbanUser(ctx context.Context, actorID, userID int64) error {
	if err := s.users.SetBanned(ctx, userID, false); err != nil {
		return fmt.Errorf("разбан пользователя: %w", err)
	}
	s.restrictEverywhere(ctx, userID, time.Time{}, false)
	s.logAction(ctx, actorID, "unban_user", fmt.Sprintf("пользователь %d", userID), nil)
	return nil
}

// AddFilter добавляет правило модерации канала.
func (s *Service) AddFilter(ctx context.Context, actorID int64, filter domain.Filter) (domain.Filter, error) {
	if filter.Regex != "" {
		if _, err := regexp.Compile(filter.Regex); err != nil {
			return domain.Filter{}, fmt.Errorf("некорректное регулярное выражение: %w", err)
		}
	}
	filter.IsActive = true
	created, err := s.filters.AddFilter(ctx, filter)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("сохранение фильтра: %w", err)
	}
	s.logAction(ctx, actorID, "add_filter", fmt.Sprintf("фильтр %d", created.ID), &created.ChannelID)
	return created, nil
}

// Filters возвращает активные правила модерации канала.
func (s *Service) Filters(ctx context.Context, channelID int64) ([]domain.Filter, error) {
	filters, err := s.filters.ListActiveFilters(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("чтение фильтров: %w", err)
	}
	return filters, nil
}

// RemoveFilter удаляет правило модерации.
func (s *Service) RemoveFilter(ctx context.Context, actorID, filterID int64) error {
	if err := s.filters.DeleteFilter(ctx, filterID); err != nil {
		return fmt.Errorf("удаление фильтра: %w", err)
	}
	s.logAction(ctx, actorID, "remove_filter", fmt.Sprintf("фильтр %d", filterID), nil)
	return nil
}

// restrictEverywhere применяет ограничение в чатах обсуждений best-effort:
// недоступный чат не отменяет бан в остальных.
func (s *Service) restrictEverywhere(ctx context.Context, userID int64, until time.Time, ban bool) {
	channels, err := s.channels.ListChannels(ctx, domain.ChannelsAll)
	if err != nil {
		s.log.Warn().Err(err).Msg("список каналов для бана")
		return
	}
	for _, ch := range channels {
		if ch.CommentChatID == nil {
			continue
		}
		if ban {
			err = s.messenger.BanMember(ctx, *ch.CommentChatID, userID, until)
		} else {
			err = s.messenger.UnbanMember(ctx, *ch.CommentChatID, userID)
		}
		if err != nil {
			s.log.Warn().Err(err).Int64("chat_id", *ch.CommentChatID).Int64("user_id", userID).
				Msg("ограничение в чате обсуждений")
		}
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
