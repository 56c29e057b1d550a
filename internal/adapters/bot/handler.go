package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"tg-channel-bot/internal/adapters/telegram"
	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
	"tg-channel-bot/internal/usecase/channels"
	"tg-channel-bot/internal/usecase/moderation"
	"tg-channel-bot/internal/usecase/posts"
	"tg-channel-bot/internal/usecase/reports"
)

// Publisher немедленно доставляет пост, минуя планировщик. Отложенное
// задание того же поста позже упрётся в статусную защиту доставки.
type Publisher interface {
	Deliver(ctx context.Context, postID int64) (domain.DeliveryResult, error)
}

// Handler обслуживает апдейты бота: личные диалоги администраторов
// и модерацию чатов обсуждений.
type Handler struct {
	bot          *tgbotapi.BotAPI
	log          zerolog.Logger
	sessions     SessionStore
	router       *Router
	users        domain.UserRepo
	channelUC    *channels.Service
	postUC       *posts.Service
	moderationUC *moderation.Service
	reportUC     *reports.Service
	publisher    Publisher
	messenger    domain.Messenger
	loc          *time.Location
}

// NewHandler создаёт обработчик и собирает таблицу маршрутов диалогов.
func NewHandler(bot *tgbotapi.BotAPI, log zerolog.Logger, sessions SessionStore,
	userRepo domain.UserRepo, channelUC *channels.Service, postUC *posts.Service,
	moderationUC *moderation.Service, reportUC *reports.Service,
	publisher Publisher, messenger domain.Messenger, loc *time.Location) (*Handler, error) {
	if loc == nil {
		loc = time.UTC
	}
	h := &Handler{
		bot:          bot,
		log:          log,
		sessions:     sessions,
		users:        userRepo,
		channelUC:    channelUC,
		postUC:       postUC,
		moderationUC: moderationUC,
		reportUC:     reportUC,
		publisher:    publisher,
		messenger:    messenger,
		loc:          loc,
	}
	h.router = h.buildRouter()
	if err := h.router.Validate(flowStates()...); err != nil {
		return nil, fmt.Errorf("таблица маршрутов: %w", err)
	}
	return h, nil
}

// buildRouter описывает все переходы диалогов. Маршруты с конкретным
// состоянием регистрируются раньше общих, порядок префиксов значим.
func (h *Handler) buildRouter() *Router {
	r := NewRouter()

	// Выбор канала при создании и правке поста перекрывает карточку канала.
	r.HandlePrefix(StatePostAwaitChannel, cbChannelPrefix, h.postPickChannel)
	r.HandlePrefix(StatePostEditAwaitChannel, cbChannelPrefix, h.postEditPickChannel)

	// Навигация.
	r.Handle(StateAny, cbMainMenu, h.showMainMenu)
	r.Handle(StateAny, cbManageChannels, h.showChannels)
	r.Handle(StateAny, cbManagePosts, h.showPosts)
	r.Handle(StateAny, cbBack, h.pageBack)
	r.Handle(StateAny, cbForward, h.pageForward)
	r.Handle(StateAny, cbChannelsAll, h.showChannelsFiltered(domain.ChannelsAll))
	r.Handle(StateAny, cbChannelsActive, h.showChannelsFiltered(domain.ChannelsActive))
	r.Handle(StateAny, cbChannelsInactive, h.showChannelsFiltered(domain.ChannelsInactive))
	r.Handle(StateAny, cbPostsPending, h.showPostsFiltered(domain.PostStatusPending))
	r.Handle(StateAny, cbPostsPublished, h.showPostsFiltered(domain.PostStatusPublished))
	r.Handle(StateAny, cbPostsCancelled, h.showPostsFiltered(domain.PostStatusCancelled))

	// Каналы.
	r.Handle(StateAny, cbAddChannel, h.startAddChannel)
	r.Handle(StateChannelAwaitName, TriggerText, h.channelInputName)
	r.Handle(StateChannelAwaitID, TriggerText, h.channelInputID)
	r.Handle(StateChannelAwaitNotify, TriggerText, h.channelInputNotify)
	r.Handle(StateChannelAwaitModeration, cbYes, h.channelModerationChosen(true))
	r.Handle(StateChannelAwaitModeration, cbNo, h.channelModerationChosen(false))
	r.Handle(StateChannelConfirm, cbYes, h.channelDeleteConfirmed)
	r.Handle(StateChannelConfirm, cbNo, h.channelDeleteRejected)
	r.Handle(StateChannelAwaitNotifyChat, TriggerText, h.channelInputNotifyChat)
	r.Handle(StateChannelAwaitCommentChat, TriggerText, h.channelInputCommentChat)
	r.HandlePrefix(StateAny, cbChannelPrefix, h.showChannelDetails)
	r.HandlePrefix(StateAny, cbToggleActivePrefix, h.channelToggleActive)
	r.HandlePrefix(StateAny, cbToggleModerPrefix, h.channelToggleModeration)
	r.HandlePrefix(StateAny, cbRenameChannelPrefix, h.startRenameChannel)
	r.HandlePrefix(StateAny, cbNotifyChatPrefix, h.startNotifyChat)
	r.HandlePrefix(StateAny, cbCommentChatPrefix, h.startCommentChat)
	r.HandlePrefix(StateAny, cbDeleteChannelPrefix, h.startDeleteChannel)

	// Фильтры модерации.
	r.HandlePrefix(StateAny, cbFiltersPrefix, h.showFilters)
	r.HandlePrefix(StateAny, cbAddFilterPrefix, h.startAddFilter)
	r.HandlePrefix(StateAny, cbDelFilterPrefix, h.deleteFilter)
	r.Handle(StateFilterAwaitKeyword, TriggerText, h.filterInputKeyword)
	r.Handle(StateFilterAwaitKeyword, cbSkip, h.filterSkipKeyword)
	r.Handle(StateFilterAwaitRegex, TriggerText, h.filterInputRegex)
	r.Handle(StateFilterAwaitRegex, cbSkip, h.filterSkipRegex)

	// Посты.
	r.Handle(StateAny, cbAddPost, h.startAddPost)
	r.Handle(StatePostAwaitTitle, TriggerText, h.postInputTitle)
	r.Handle(StatePostAwaitTitle, cbSkip, h.postSkipTitle)
	r.Handle(StatePostAwaitText, TriggerText, h.postInputText)
	r.Handle(StatePostAwaitMedia, TriggerText, h.postInputMedia)
	r.Handle(StatePostAwaitMedia, cbSkip, h.postSkipMedia)
	r.Handle(StatePostAwaitTime, TriggerText, h.postInputTime)
	r.Handle(StatePostConfirm, cbYes, h.postCreateConfirmed)
	r.Handle(StatePostConfirm, cbNo, h.postCreateRejected)
	r.Handle(StatePostEditAwaitValue, TriggerText, h.postEditInput)
	r.Handle(StatePostPublishConfirm, cbYes, h.publishNowConfirmed)
	r.Handle(StatePostPublishConfirm, cbNo, h.publishNowRejected)
	r.Handle(StateAny, cbRemovePostByID, h.startDeletePostByID)
	r.Handle(StatePostAwaitDeleteID, TriggerText, h.postDeleteByID)
	r.HandlePrefix(StateAny, cbPostPrefix, h.showPostDetails)
	r.HandlePrefix(StateAny, cbEditTitlePrefix, h.startEditPost(EditFieldTitle))
	r.HandlePrefix(StateAny, cbEditTextPrefix, h.startEditPost(EditFieldText))
	r.HandlePrefix(StateAny, cbEditTimePrefix, h.startEditPost(EditFieldTime))
	r.HandlePrefix(StateAny, cbEditMediaPrefix, h.startEditPost(EditFieldMedia))
	r.HandlePrefix(StateAny, cbEditChannelPrefix, h.startEditChannel)
	r.HandlePrefix(StateAny, cbPublishNowPrefix, h.startPublishNow)
	r.HandlePrefix(StateAny, cbClearMediaPrefix, h.postClearMedia)
	r.HandlePrefix(StateAny, cbCancelPostPrefix, h.postCancel)
	r.HandlePrefix(StateAny, cbDeletePostPrefix, h.postDelete)

	// Отчёты и пользователи.
	r.Handle(StateAny, cbLogs, h.showLogs)
	r.Handle(StateAny, cbExportLogs, h.exportLogs)
	r.Handle(StateAny, cbStats, h.showStatsChannels)
	r.HandlePrefix(StateAny, cbStatsPrefix, h.exportStats)
	r.Handle(StateAny, cbBanUser, h.startBanUser)
	r.Handle(StateAny, cbUnbanUser, h.startUnbanUser)
	r.Handle(StateBanAwaitUser, TriggerText, h.banInputUser)
	r.Handle(StateUnbanAwaitUser, TriggerText, h.unbanInputUser)

	return r
}

// HandleUpdate обрабатывает входящий апдейт. Паника одного апдейта
// не роняет процесс.
func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	defer func() {
		if rec := recover(); rec != nil {
			h.log.Error().Interface("panic", rec).Int("update_id", upd.UpdateID).
				Msg("паника при обработке апдейта")
		}
	}()

	switch {
	case upd.Message != nil:
		h.handleMessage(ctx, upd.Message)
	case upd.CallbackQuery != nil:
		h.handleCallback(ctx, upd.CallbackQuery)
	}
}

func (h *Handler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Сообщения из групп — это чаты обсуждений привязанных каналов.
	if msg.Chat != nil && (msg.Chat.IsGroup() || msg.Chat.IsSuperGroup()) {
		h.moderateGroupMessage(ctx, msg)
		return
	}

	user, err := h.users.UpsertUser(ctx, msg.From.ID, msg.From.UserName)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", msg.From.ID).Msg("регистрация пользователя")
		return
	}
	if user.IsBanned {
		return
	}

	text := strings.TrimSpace(msg.Text)
	switch {
	case strings.HasPrefix(text, "/start"):
		h.reply(msg.Chat.ID, "Привет! Это бот управления каналами. Администраторам доступно меню: /admin", nil)
		return
	case strings.HasPrefix(text, "/admin"):
		if !user.IsAdmin() {
			h.reply(msg.Chat.ID, "Команда доступна только администраторам.", nil)
			return
		}
		s := h.sessions.Get(user.ID)
		s.ChatID = msg.Chat.ID
		s.ResetFlow()
		h.sessions.Put(s)
		h.showMainMenu(ctx, s, Input{ChatID: msg.Chat.ID, UserID: user.ID})
		return
	case strings.HasPrefix(text, "/role"):
		if !user.IsAdmin() {
			return
		}
		h.handleRoleCommand(ctx, msg.Chat.ID, user.ID, strings.TrimSpace(strings.TrimPrefix(text, "/role")))
		return
	}

	if !user.IsAdmin() {
		return
	}

	s := h.sessions.Get(user.ID)
	s.ChatID = msg.Chat.ID
	fn, ok := h.router.ResolveText(s.State)
	if !ok {
		h.reply(msg.Chat.ID, "Не понимаю. Откройте меню: /admin", nil)
		return
	}
	fn(ctx, s, h.inputFromMessage(msg))
	h.sessions.Put(s)
}

func (h *Handler) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	defer h.answerCallback(cb)

	if cb.From == nil || cb.Message == nil {
		return
	}
	user, err := h.users.GetUser(ctx, cb.From.ID)
	if err != nil || !user.IsAdmin() {
		return
	}

	s := h.sessions.Get(user.ID)
	s.ChatID = cb.Message.Chat.ID
	if s.MenuMessageID == 0 {
		s.MenuMessageID = cb.Message.MessageID
	}

	fn, payload, ok := h.router.ResolveCallback(s.State, cb.Data)
	if !ok {
		h.log.Warn().Str("data", cb.Data).Str("state", string(s.State)).Msg("кнопка без маршрута")
		return
	}
	fn(ctx, s, Input{
		ChatID:    cb.Message.Chat.ID,
		UserID:    user.ID,
		MessageID: cb.Message.MessageID,
		Payload:   payload,
	})
	h.sessions.Put(s)
}

// moderateGroupMessage проверяет сообщение чата обсуждений.
func (h *Handler) moderateGroupMessage(ctx context.Context, msg *tgbotapi.Message) {
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}
	if _, err := h.moderationUC.ModerateComment(ctx, msg.Chat.ID, msg.MessageID, msg.From.ID, text); err != nil {
		// Чат не привязан ни к одному каналу.
		if errors.Is(err, domain.ErrNotFound) {
			return
		}
		h.log.Warn().Err(err).Int64("chat_id", msg.Chat.ID).Msg("модерация сообщения")
	}
}

func (h *Handler) handleRoleCommand(ctx context.Context, chatID, actorID int64, payload string) {
	fields := strings.Fields(payload)
	if len(fields) != 2 {
		h.reply(chatID, "Формат: /role <ID пользователя> <admin|moderator|user>", nil)
		return
	}
	userID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		h.reply(chatID, "Некорректный ID пользователя.", nil)
		return
	}
	role := domain.ParseUserRole(fields[1])
	if err := h.users.SetRole(ctx, userID, role); err != nil {
		h.reply(chatID, fmt.Sprintf("Не удалось сменить роль: %v", err), nil)
		return
	}
	h.reply(chatID, fmt.Sprintf("Роль пользователя %d: %s", userID, role), nil)
	h.log.Info().Int64("actor_id", actorID).Int64("user_id", userID).Str("role", string(role)).
		Msg("роль изменена")
}

// showMainMenu возвращает диалог в главное меню.
func (h *Handler) showMainMenu(ctx context.Context, s *Session, in Input) {
	s.ResetFlow()
	h.editAnchor(s, mainMenuText(), mainMenuKeyboard())
}

func (h *Handler) pageBack(ctx context.Context, s *Session, in Input) {
	if s.Page > 0 {
		s.Page--
	}
	h.refreshList(ctx, s)
}

func (h *Handler) pageForward(ctx context.Context, s *Session, in Input) {
	s.Page++
	h.refreshList(ctx, s)
}

func (h *Handler) refreshList(ctx context.Context, s *Session) {
	switch s.ListView {
	case ListViewChannels:
		h.renderChannels(ctx, s)
	case ListViewPosts:
		h.renderPosts(ctx, s)
	default:
		h.editAnchor(s, mainMenuText(), mainMenuKeyboard())
	}
}

func (h *Handler) inputFromMessage(msg *tgbotapi.Message) Input {
	in := Input{
		ChatID:    msg.Chat.ID,
		UserID:    msg.From.ID,
		MessageID: msg.MessageID,
		Text:      strings.TrimSpace(msg.Text),
	}
	if len(msg.Photo) > 0 {
		in.PhotoID = msg.Photo[len(msg.Photo)-1].FileID
	}
	if msg.Video != nil {
		in.VideoID = msg.Video.FileID
	}
	if msg.Document != nil {
		in.DocumentID = msg.Document.FileID
	}
	if in.Text == "" {
		in.Text = strings.TrimSpace(msg.Caption)
	}
	if msg.ForwardFromChat != nil {
		in.ForwardChatID = msg.ForwardFromChat.ID
		in.ForwardChatType = msg.ForwardFromChat.Type
	}
	return in
}

// editAnchor правит якорное сообщение меню. Если якоря нет либо правка
// не удалась, отправляется новое сообщение и становится якорем.
func (h *Handler) editAnchor(s *Session, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	if s.MenuMessageID != 0 {
		var edit tgbotapi.Chattable
		if keyboard != nil {
			e := tgbotapi.NewEditMessageTextAndMarkup(s.ChatID, s.MenuMessageID, text, *keyboard)
			edit = e
		} else {
			e := tgbotapi.NewEditMessageText(s.ChatID, s.MenuMessageID, text)
			edit = e
		}
		start := time.Now()
		_, err := h.bot.Request(edit)
		metrics.ObserveNetworkRequest("telegram_bot", "edit_message", strconv.FormatInt(s.ChatID, 10), start, err)
		if err == nil {
			return
		}
		h.log.Debug().Err(err).Int("message_id", s.MenuMessageID).Msg("правка якорного сообщения")
	}

	msg := tgbotapi.NewMessage(s.ChatID, text)
	if keyboard != nil {
		msg.ReplyMarkup = keyboard
	}
	start := time.Now()
	sent, err := h.bot.Send(msg)
	metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(s.ChatID, 10), start, err)
	if err != nil {
		h.log.Error().Err(err).Msg("не удалось отправить меню")
		return
	}
	s.MenuMessageID = sent.MessageID
}

// reply отправляет обычное сообщение, разбивая длинный текст.
func (h *Handler) reply(chatID int64, text string, keyboard *tgbotapi.InlineKeyboardMarkup) {
	parts := telegram.SplitMessage(text)
	for i, part := range parts {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == 0 && keyboard != nil {
			msg.ReplyMarkup = keyboard
		}
		start := time.Now()
		_, err := h.bot.Send(msg)
		metrics.ObserveNetworkRequest("telegram_bot", "send_message", strconv.FormatInt(chatID, 10), start, err)
		if err != nil {
			h.log.Error().Err(err).Msg("не удалось отправить сообщение")
			return
		}
	}
}

func (h *Handler) answerCallback(cb *tgbotapi.CallbackQuery) {
	start := time.Now()
	_, err := h.bot.Request(tgbotapi.NewCallback(cb.ID, ""))
	metrics.ObserveNetworkRequest("telegram_bot", "answer_callback", strconv.FormatInt(cb.From.ID, 10), start, err)
	if err != nil {
		h.log.Debug().Err(err).Msg("ответ на callback")
	}
}

func parseID(payload string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(payload), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func (h *Handler) reportError(s *Session, err error) {
	h.reply(s.ChatID, fmt.Sprintf("Ошибка: %v", err), nil)
}
