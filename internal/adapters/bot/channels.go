package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/usecase/channels"
)

// showChannels открывает список каналов с первой страницы.
func (h *Handler) showChannels(ctx context.Context, s *Session, in Input) {
	h.showChannelsFiltered(domain.ChannelsAll)(ctx, s, in)
}

// showChannelsFiltered открывает выборку каналов: все, активные, спящие.
func (h *Handler) showChannelsFiltered(kind domain.ChannelListKind) RouteFunc {
	return func(ctx context.Context, s *Session, in Input) {
		s.State = StateIdle
		s.Page = 0
		s.ListKind = kind
		s.ListView = ListViewChannels
		h.renderChannels(ctx, s)
	}
}

func (h *Handler) renderChannels(ctx context.Context, s *Session) {
	list, err := h.channelUC.ListChannels(ctx, s.ListKind)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.Page = clampPage(s.Page, len(list))
	h.editAnchor(s, channelsListText(s.ListKind, len(list)), channelsListKeyboard(list, s.Page, s.ListKind))
}

// showChannelDetails открывает карточку канала.
func (h *Handler) showChannelDetails(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	channel, err := h.channelUC.GetChannel(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	s.ChannelID = id
	h.editAnchor(s, channelDetailsText(channel), channelDetailsKeyboard(channel))
}

// startAddChannel запускает диалог добавления канала:
// название → ID → чат уведомлений → модерация.
func (h *Handler) startAddChannel(ctx context.Context, s *Session, in Input) {
	s.State = StateChannelAwaitName
	s.ChannelID = 0
	s.ChannelDraft = ChannelDraft{}
	h.editAnchor(s, "Отправьте название канала.", backToMenuKeyboard())
}

// channelInputName ведёт добавление дальше либо завершает переименование.
func (h *Handler) channelInputName(ctx context.Context, s *Session, in Input) {
	name := strings.TrimSpace(in.Text)
	if name == "" {
		h.reply(s.ChatID, "Название не может быть пустым.", nil)
		return
	}

	if s.ChannelID != 0 {
		channel, err := h.channelUC.Rename(ctx, s.UserID, s.ChannelID, name)
		if err != nil {
			h.reportError(s, err)
			return
		}
		s.State = StateIdle
		h.editAnchor(s, channelDetailsText(channel), channelDetailsKeyboard(channel))
		return
	}

	s.ChannelDraft.Name = name
	s.State = StateChannelAwaitID
	h.editAnchor(s, "Отправьте ID канала (например, -1001234567890) либо перешлите любое сообщение из него.\nБот должен быть администратором канала.", backToMenuKeyboard())
}

func (h *Handler) channelInputID(ctx context.Context, s *Session, in Input) {
	id, err := channelIDFromInput(in)
	if err != nil {
		h.reply(s.ChatID, "Некорректный ID канала. Отправьте число или перешлите сообщение из канала.", nil)
		return
	}
	s.ChannelDraft.ID = id
	s.State = StateChannelAwaitNotify
	h.editAnchor(s, "Отправьте ID чата для уведомлений о публикациях либо перешлите сообщение из него.\nОтправьте 0, если уведомления не нужны.", backToMenuKeyboard())
}

func (h *Handler) channelInputNotify(ctx context.Context, s *Session, in Input) {
	if in.ForwardChatID != 0 {
		id := in.ForwardChatID
		s.ChannelDraft.NotifyChatID = &id
	} else if strings.TrimSpace(in.Text) != "0" {
		chatID, ok := parseOptionalChatID(in.Text)
		if !ok {
			h.reply(s.ChatID, "Некорректный ID чата. Отправьте число или 0.", nil)
			return
		}
		s.ChannelDraft.NotifyChatID = chatID
	}
	s.State = StateChannelAwaitModeration
	h.editAnchor(s, "Включить модерацию чата обсуждений канала?", confirmKeyboard())
}

// channelModerationChosen завершает добавление канала с выбранным
// режимом модерации.
func (h *Handler) channelModerationChosen(enabled bool) RouteFunc {
	return func(ctx context.Context, s *Session, in Input) {
		channel, err := h.channelUC.AddChannel(ctx, s.UserID, s.ChannelDraft.ID, s.ChannelDraft.Name,
			s.ChannelDraft.NotifyChatID, enabled)
		if err != nil {
			h.reportError(s, err)
			return
		}
		s.State = StateIdle
		s.ChannelDraft = ChannelDraft{}
		s.ChannelID = channel.ID
		h.editAnchor(s, "Канал добавлен.\n\n"+channelDetailsText(channel), channelDetailsKeyboard(channel))
	}
}

func (h *Handler) startRenameChannel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.ChannelID = id
	s.State = StateChannelAwaitName
	h.editAnchor(s, "Отправьте новое название канала.", backToMenuKeyboard())
}

func (h *Handler) channelToggleActive(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	channel, err := h.channelUC.GetChannel(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	updated, err := h.channelUC.SetActive(ctx, s.UserID, id, !channel.IsActive)
	if err != nil {
		h.reportError(s, err)
		return
	}
	h.editAnchor(s, channelDetailsText(updated), channelDetailsKeyboard(updated))
}

func (h *Handler) channelToggleModeration(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	channel, err := h.channelUC.GetChannel(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	updated, err := h.channelUC.SetModeration(ctx, s.UserID, id, !channel.ModerationEnabled)
	if err != nil {
		h.reportError(s, err)
		return
	}
	h.editAnchor(s, channelDetailsText(updated), channelDetailsKeyboard(updated))
}

func (h *Handler) startNotifyChat(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.ChannelID = id
	s.State = StateChannelAwaitNotifyChat
	h.editAnchor(s, "Отправьте ID чата для уведомлений о публикациях.\nОтправьте «-», чтобы отвязать чат.", backToMenuKeyboard())
}

func (h *Handler) channelInputNotifyChat(ctx context.Context, s *Session, in Input) {
	chatID, ok := anyChatIDFromInput(in)
	if !ok {
		h.reply(s.ChatID, "Некорректный ID чата.", nil)
		return
	}
	channel, err := h.channelUC.SetNotificationChat(ctx, s.UserID, s.ChannelID, chatID)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	h.editAnchor(s, channelDetailsText(channel), channelDetailsKeyboard(channel))
}

func (h *Handler) startCommentChat(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.ChannelID = id
	s.State = StateChannelAwaitCommentChat
	h.editAnchor(s, "Отправьте ID чата обсуждений, который бот будет модерировать.\nОтправьте «-», чтобы отвязать чат.", backToMenuKeyboard())
}

func (h *Handler) channelInputCommentChat(ctx context.Context, s *Session, in Input) {
	chatID, ok := commentChatIDFromInput(in)
	if !ok {
		h.reply(s.ChatID, "Некорректный ID чата. Отправьте число или перешлите сообщение из чата обсуждений.", nil)
		return
	}
	channel, err := h.channelUC.SetCommentChat(ctx, s.UserID, s.ChannelID, chatID)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	h.editAnchor(s, channelDetailsText(channel), channelDetailsKeyboard(channel))
}

func (h *Handler) startDeleteChannel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	channel, err := h.channelUC.GetChannel(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.ChannelID = id
	s.State = StateChannelConfirm
	text := fmt.Sprintf("Удалить канал %q вместе с его постами и фильтрами?", channel.Name)
	h.editAnchor(s, text, confirmKeyboard())
}

func (h *Handler) channelDeleteConfirmed(ctx context.Context, s *Session, in Input) {
	if err := h.channelUC.RemoveChannel(ctx, s.UserID, s.ChannelID); err != nil {
		h.reportError(s, err)
		return
	}
	h.showChannels(ctx, s, in)
}

func (h *Handler) channelDeleteRejected(ctx context.Context, s *Session, in Input) {
	h.showChannelDetails(ctx, s, Input{Payload: fmt.Sprintf("%d", s.ChannelID)})
}

// showFilters выводит фильтры модерации канала.
func (h *Handler) showFilters(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.ChannelID = id
	s.State = StateIdle

	filters, err := h.moderationUC.Filters(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}

	var b strings.Builder
	b.WriteString("Фильтры модерации канала.\n")
	if len(filters) == 0 {
		b.WriteString("\nПравил пока нет.")
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(filters)+2)
	for _, f := range filters {
		label := f.Keyword
		if label == "" {
			label = "re: " + f.Regex
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 "+label, fmt.Sprintf("%s%d", cbDelFilterPrefix, f.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить правило", fmt.Sprintf("%s%d", cbAddFilterPrefix, id)),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К каналу", fmt.Sprintf("%s%d", cbChannelPrefix, id)),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.editAnchor(s, b.String(), &markup)
}

func (h *Handler) startAddFilter(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.ChannelID = id
	s.FilterDraft = FilterDraft{}
	s.State = StateFilterAwaitKeyword
	h.editAnchor(s, "Отправьте ключевое слово для фильтра или пропустите шаг.", skipKeyboard())
}

func (h *Handler) filterInputKeyword(ctx context.Context, s *Session, in Input) {
	s.FilterDraft.Keyword = strings.TrimSpace(in.Text)
	s.State = StateFilterAwaitRegex
	h.editAnchor(s, "Отправьте регулярное выражение или пропустите шаг.", skipKeyboard())
}

func (h *Handler) filterSkipKeyword(ctx context.Context, s *Session, in Input) {
	s.State = StateFilterAwaitRegex
	h.editAnchor(s, "Отправьте регулярное выражение или пропустите шаг.", skipKeyboard())
}

func (h *Handler) filterInputRegex(ctx context.Context, s *Session, in Input) {
	s.FilterDraft.Regex = strings.TrimSpace(in.Text)
	h.finishAddFilter(ctx, s)
}

func (h *Handler) filterSkipRegex(ctx context.Context, s *Session, in Input) {
	h.finishAddFilter(ctx, s)
}

func (h *Handler) finishAddFilter(ctx context.Context, s *Session) {
	if s.FilterDraft.Keyword == "" && s.FilterDraft.Regex == "" {
		s.State = StateIdle
		h.showFilters(ctx, s, Input{Payload: fmt.Sprintf("%d", s.ChannelID)})
		return
	}
	_, err := h.moderationUC.AddFilter(ctx, s.UserID, domain.Filter{
		ChannelID: s.ChannelID,
		Keyword:   s.FilterDraft.Keyword,
		Regex:     s.FilterDraft.Regex,
	})
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.FilterDraft = FilterDraft{}
	s.State = StateIdle
	h.showFilters(ctx, s, Input{Payload: fmt.Sprintf("%d", s.ChannelID)})
}

func (h *Handler) deleteFilter(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	if err := h.moderationUC.RemoveFilter(ctx, s.UserID, id); err != nil {
		h.reportError(s, err)
		return
	}
	h.showFilters(ctx, s, Input{Payload: fmt.Sprintf("%d", s.ChannelID)})
}

// parseOptionalChatID разбирает ID чата; «-» означает отвязку.
func parseOptionalChatID(text string) (*int64, bool) {
	trim := strings.TrimSpace(text)
	if trim == "-" {
		return nil, true
	}
	id, ok := parseID(trim)
	if !ok || id == 0 {
		return nil, false
	}
	return &id, true
}

// channelIDFromInput достаёт ID канала из пересланного сообщения либо из
// набранного числа. Пересылка принимается только из канала.
func channelIDFromInput(in Input) (int64, error) {
	if in.ForwardChatID != 0 {
		if in.ForwardChatType != "channel" {
			return 0, channels.ErrChannelIDInvalid
		}
		return in.ForwardChatID, nil
	}
	return channels.ParseChannelID(in.Text)
}

// anyChatIDFromInput принимает пересылку из любого чата либо набранный ID.
func anyChatIDFromInput(in Input) (*int64, bool) {
	if in.ForwardChatID != 0 {
		id := in.ForwardChatID
		return &id, true
	}
	return parseOptionalChatID(in.Text)
}

// commentChatIDFromInput принимает пересылку из группы обсуждений либо
// набранный ID. Пересылка из канала отвергается: модерируется группа.
func commentChatIDFromInput(in Input) (*int64, bool) {
	if in.ForwardChatID != 0 {
		if in.ForwardChatType != "group" && in.ForwardChatType != "supergroup" {
			return nil, false
		}
		id := in.ForwardChatID
		return &id, true
	}
	return parseOptionalChatID(in.Text)
}
