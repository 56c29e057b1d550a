package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-channel-bot/internal/domain"
)

// banPeriod — срок ограничения в чатах обсуждений при бане.
const banPeriod = 365 * 24 * time.Hour

// logsWindow — глубина журнала в выгрузке и сводке.
const logsWindow = 7 * 24 * time.Hour

// showLogs выводит сводку журнала за неделю.
func (h *Handler) showLogs(ctx context.Context, s *Session, in Input) {
	s.State = StateIdle
	entries, err := h.reportUC.RecentLogs(ctx, time.Now().Add(-logsWindow))
	if err != nil {
		h.reportError(s, err)
		return
	}
	text := fmt.Sprintf("Журнал действий за 7 дней: %d записей.", len(entries))
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📤 Выгрузить CSV", cbExportLogs),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
		),
	)
	h.editAnchor(s, text, &markup)
}

// exportLogs отправляет журнал файлом.
func (h *Handler) exportLogs(ctx context.Context, s *Session, in Input) {
	payload, err := h.reportUC.LogsCSV(ctx, time.Now().Add(-logsWindow))
	if err != nil {
		h.reportError(s, err)
		return
	}
	name := fmt.Sprintf("logs_%s.csv", time.Now().Format("2006-01-02"))
	if _, err := h.messenger.SendFile(ctx, s.ChatID, name, payload, "Журнал действий"); err != nil {
		h.reportError(s, err)
	}
}

// showStatsChannels предлагает выбрать канал для выгрузки статистики.
func (h *Handler) showStatsChannels(ctx context.Context, s *Session, in Input) {
	s.State = StateIdle
	list, err := h.channelUC.ListChannels(ctx, domain.ChannelsAll)
	if err != nil {
		h.reportError(s, err)
		return
	}
	if len(list) == 0 {
		h.editAnchor(s, "Каналов пока нет.", backToMenuKeyboard())
		return
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list)+1)
	for _, ch := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ch.Name, fmt.Sprintf("%s%d", cbStatsPrefix, ch.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.editAnchor(s, "Статистика какого канала нужна?", &markup)
}

// exportStats отправляет статистику канала файлом.
func (h *Handler) exportStats(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	payload, err := h.reportUC.StatsCSV(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	name := fmt.Sprintf("stats_%d_%s.csv", id, time.Now().Format("2006-01-02"))
	if _, err := h.messenger.SendFile(ctx, s.ChatID, name, payload, "Статистика канала"); err != nil {
		h.reportError(s, err)
	}
}

func (h *Handler) startBanUser(ctx context.Context, s *Session, in Input) {
	s.State = StateBanAwaitUser
	h.editAnchor(s, "Отправьте ID пользователя, которого нужно забанить.", backToMenuKeyboard())
}

func (h *Handler) banInputUser(ctx context.Context, s *Session, in Input) {
	userID, ok := parseID(in.Text)
	if !ok {
		h.reply(s.ChatID, "Некорректный ID пользователя.", nil)
		return
	}
	if err := h.moderationUC.BanUser(ctx, s.UserID, userID, time.Now().Add(banPeriod)); err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	h.editAnchor(s, fmt.Sprintf("Пользователь %d забанен.", userID), backToMenuKeyboard())
}

func (h *Handler) startUnbanUser(ctx context.Context, s *Session, in Input) {
	s.State = StateUnbanAwaitUser
	h.editAnchor(s, "Отправьте ID пользователя, с которого нужно снять бан.", backToMenuKeyboard())
}

func (h *Handler) unbanInputUser(ctx context.Context, s *Session, in Input) {
	userID, ok := parseID(in.Text)
	if !ok {
		h.reply(s.ChatID, "Некорректный ID пользователя.", nil)
		return
	}
	if err := h.moderationUC.UnbanUser(ctx, s.UserID, userID); err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	h.editAnchor(s, fmt.Sprintf("Бан пользователя %d снят.", userID), backToMenuKeyboard())
}
