package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

const (
	maxSendAttempts = 6
	baseRetryDelay  = 2 * time.Second
	maxRetryDelay   = 60 * time.Second
)

// Messenger оборачивает Bot API: ретраи с экспоненциальной паузой,
// уважение retry-after при флуд-контроле, разбиение длинных текстов.
type Messenger struct {
	bot *tgbotapi.BotAPI
	log zerolog.Logger
}

// NewMessenger создаёт обёртку над клиентом Bot API.
func NewMessenger(bot *tgbotapi.BotAPI, log zerolog.Logger) *Messenger {
	return &Messenger{bot: bot, log: log}
}

// SendText отправляет текст, разбивая его на части по лимиту Telegram.
// Возвращает идентификатор первого отправленного сообщения.
func (m *Messenger) SendText(ctx context.Context, chatID int64, text string) (domain.SentMessage, error) {
	parts := SplitMessage(text)
	if len(parts) == 0 {
		return domain.SentMessage{}, errors.New("пустое сообщение")
	}
	var first domain.SentMessage
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		sent, err := m.sendWithRetry(ctx, chatID, "send_message", msg)
		if err != nil {
			return domain.SentMessage{}, err
		}
		if i == 0 {
			first = sent
		}
	}
	return first, nil
}

// SendPhoto отправляет фото по file_id.
func (m *Messenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	msg := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return m.sendWithRetry(ctx, chatID, "send_photo", msg)
}

// SendVideo отправляет видео по file_id.
func (m *Messenger) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	msg := tgbotapi.NewVideo(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return m.sendWithRetry(ctx, chatID, "send_video", msg)
}

// SendDocument отправляет документ по file_id.
func (m *Messenger) SendDocument(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(fileID))
	msg.Caption = caption
	return m.sendWithRetry(ctx, chatID, "send_document", msg)
}

// SendFile отправляет файл из памяти, например сформированный отчёт.
func (m *Messenger) SendFile(ctx context.Context, chatID int64, name string, payload []byte, caption string) (domain.SentMessage, error) {
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: payload})
	msg.Caption = caption
	return m.sendWithRetry(ctx, chatID, "send_file", msg)
}

// DeleteMessage удаляет сообщение из чата.
func (m *Messenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return m.requestWithRetry(ctx, chatID, "delete_message", tgbotapi.NewDeleteMessage(chatID, messageID))
}

// BanMember ограничивает участника чата до указанного времени.
func (m *Messenger) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	cfg := tgbotapi.BanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
		UntilDate:        until.Unix(),
	}
	return m.requestWithRetry(ctx, chatID, "ban_member", cfg)
}

// UnbanMember снимает ограничение с участника чата.
func (m *Messenger) UnbanMember(ctx context.Context, chatID, userID int64) error {
	cfg := tgbotapi.UnbanChatMemberConfig{
		ChatMemberConfig: tgbotapi.ChatMemberConfig{ChatID: chatID, UserID: userID},
	}
	return m.requestWithRetry(ctx, chatID, "unban_member", cfg)
}

func (m *Messenger) sendWithRetry(ctx context.Context, chatID int64, op string, c tgbotapi.Chattable) (domain.SentMessage, error) {
	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.SentMessage{}, err
		}
		start := time.Now()
		sent, err := m.bot.Send(c)
		metrics.ObserveNetworkRequest("telegram_bot", op, strconv.FormatInt(chatID, 10), start, err)
		if err == nil {
			return domain.SentMessage{MessageID: sent.MessageID}, nil
		}
		lastErr = err
		if !m.waitBeforeRetry(ctx, chatID, op, attempt, err) {
			break
		}
	}
	metrics.BotSendErrors.Inc()
	return domain.SentMessage{}, fmt.Errorf("%s: %w", op, lastErr)
}

func (m *Messenger) requestWithRetry(ctx context.Context, chatID int64, op string, c tgbotapi.Chattable) error {
	var lastErr error
	for attempt := 0; attempt < maxSendAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		_, err := m.bot.Request(c)
		metrics.ObserveNetworkRequest("telegram_bot", op, strconv.FormatInt(chatID, 10), start, err)
		if err == nil {
			return nil
		}
		lastErr = err
		if !m.waitBeforeRetry(ctx, chatID, op, attempt, err) {
			break
		}
	}
	metrics.BotSendErrors.Inc()
	return fmt.Errorf("%s: %w", op, lastErr)
}

// waitBeforeRetry выдерживает паузу перед повтором. Возвращает false,
// когда ошибка неустранима или контекст завершён.
func (m *Messenger) waitBeforeRetry(ctx context.Context, chatID int64, op string, attempt int, err error) bool {
	delay := baseRetryDelay << uint(attempt)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			delay = time.Duration(apiErr.RetryAfter) * time.Second
		} else if apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != 429 {
			// Клиентская ошибка: повтор не поможет.
			return false
		}
	}

	m.log.Warn().
		Err(err).
		Int64("chat_id", chatID).
		Str("operation", op).
		Dur("delay", delay).
		Int("attempt", attempt+1).
		Msg("повтор запроса к Telegram")

	select {
	case <-ctx.Done():
		return false
	case <-time.After(delay):
		return true
	}
}
