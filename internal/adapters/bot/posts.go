package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/usecase/posts"
)

// showPosts открывает список ожидающих постов.
func (h *Handler) showPosts(ctx context.Context, s *Session, in Input) {
	h.showPostsFiltered(domain.PostStatusPending)(ctx, s, in)
}

// showPostsFiltered открывает подборку постов в заданном статусе.
func (h *Handler) showPostsFiltered(status domain.PostStatus) RouteFunc {
	return func(ctx context.Context, s *Session, in Input) {
		s.State = StateIdle
		s.Page = 0
		s.PostFilter = status
		s.ListView = ListViewPosts
		h.renderPosts(ctx, s)
	}
}

func (h *Handler) renderPosts(ctx context.Context, s *Session) {
	status := s.PostFilter
	if status == "" {
		status = domain.PostStatusPending
	}
	list, err := h.postUC.ListByStatus(ctx, status)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.Page = clampPage(s.Page, len(list))
	h.editAnchor(s, postsListText(status, len(list)), postsListKeyboard(list, s.Page, status))
}

// showPostDetails открывает карточку поста.
func (h *Handler) showPostDetails(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	post, err := h.postUC.GetPost(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	channelName := fmt.Sprintf("%d", post.ChannelID)
	if channel, err := h.channelUC.GetChannel(ctx, post.ChannelID); err == nil {
		channelName = channel.Name
	}
	s.State = StateIdle
	s.PostID = id
	h.editAnchor(s, postDetailsText(post, channelName, h.loc), postDetailsKeyboard(post))
}

// startAddPost запускает мастер создания поста с выбора канала.
func (h *Handler) startAddPost(ctx context.Context, s *Session, in Input) {
	list, err := h.channelUC.ListChannels(ctx, domain.ChannelsActive)
	if err != nil {
		h.reportError(s, err)
		return
	}
	if len(list) == 0 {
		h.editAnchor(s, "Нет активных каналов. Сначала добавьте канал.", backToMenuKeyboard())
		return
	}
	s.PostDraft = PostDraft{}
	s.State = StatePostAwaitChannel

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list)+1)
	for _, ch := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ch.Name, fmt.Sprintf("%s%d", cbChannelPrefix, ch.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.editAnchor(s, "В какой канал запланировать пост?", &markup)
}

func (h *Handler) postPickChannel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	s.PostDraft.ChannelID = id
	s.State = StatePostAwaitTitle
	h.editAnchor(s, "Отправьте заголовок поста или пропустите шаг.", skipKeyboard())
}

func (h *Handler) postInputTitle(ctx context.Context, s *Session, in Input) {
	s.PostDraft.Title = strings.TrimSpace(in.Text)
	s.State = StatePostAwaitText
	h.editAnchor(s, "Отправьте текст поста.", backToMenuKeyboard())
}

func (h *Handler) postSkipTitle(ctx context.Context, s *Session, in Input) {
	s.State = StatePostAwaitText
	h.editAnchor(s, "Отправьте текст поста.", backToMenuKeyboard())
}

func (h *Handler) postInputText(ctx context.Context, s *Session, in Input) {
	if strings.TrimSpace(in.Text) == "" {
		h.reply(s.ChatID, "Текст не может быть пустым.", nil)
		return
	}
	s.PostDraft.Text = in.Text
	s.State = StatePostAwaitMedia
	h.editAnchor(s, "Прикрепите фото, видео или документ. Можно несколько сообщений подряд.\nКогда закончите — пропустите шаг.", skipKeyboard())
}

// postInputMedia копит вложения, пока оператор не пропустит шаг.
func (h *Handler) postInputMedia(ctx context.Context, s *Session, in Input) {
	added := false
	if in.PhotoID != "" {
		s.PostDraft.Photos = append(s.PostDraft.Photos, in.PhotoID)
		added = true
	}
	if in.VideoID != "" {
		s.PostDraft.Videos = append(s.PostDraft.Videos, in.VideoID)
		added = true
	}
	if in.DocumentID != "" {
		s.PostDraft.Document = in.DocumentID
		added = true
	}
	if !added {
		h.reply(s.ChatID, "Это не вложение. Прикрепите файл или пропустите шаг.", skipKeyboard())
		return
	}
	h.reply(s.ChatID, "Вложение добавлено. Ещё одно или пропустите шаг.", skipKeyboard())
}

func (h *Handler) postSkipMedia(ctx context.Context, s *Session, in Input) {
	s.State = StatePostAwaitTime
	h.editAnchor(s, "Когда опубликовать? Формат: 2006-01-02 15:04 или 02.01.2006 15:04.", backToMenuKeyboard())
}

func (h *Handler) postInputTime(ctx context.Context, s *Session, in Input) {
	ts, err := h.postUC.ParsePublishTime(in.Text)
	if err != nil {
		h.reply(s.ChatID, "Не удалось разобрать время. Формат: 2006-01-02 15:04.", nil)
		return
	}
	s.PostDraft.PublishTime = ts
	s.State = StatePostConfirm

	var b strings.Builder
	b.WriteString("Проверьте пост:\n\n")
	if s.PostDraft.Title != "" {
		fmt.Fprintf(&b, "Заголовок: %s\n", s.PostDraft.Title)
	}
	fmt.Fprintf(&b, "Публикация: %s\n", ts.Format("02.01.2006 15:04"))
	if n := len(s.PostDraft.Photos); n > 0 {
		fmt.Fprintf(&b, "Фото: %d\n", n)
	}
	if n := len(s.PostDraft.Videos); n > 0 {
		fmt.Fprintf(&b, "Видео: %d\n", n)
	}
	if s.PostDraft.Document != "" {
		b.WriteString("Документ: прикреплён\n")
	}
	fmt.Fprintf(&b, "\n%s\n\nЗапланировать?", shorten(s.PostDraft.Text, 500))
	h.editAnchor(s, b.String(), confirmKeyboard())
}

func (h *Handler) postCreateConfirmed(ctx context.Context, s *Session, in Input) {
	created, err := h.postUC.CreatePost(ctx, s.UserID, domain.Post{
		ChannelID:   s.PostDraft.ChannelID,
		Title:       s.PostDraft.Title,
		Text:        s.PostDraft.Text,
		Photos:      s.PostDraft.Photos,
		Videos:      s.PostDraft.Videos,
		Document:    s.PostDraft.Document,
		PublishTime: s.PostDraft.PublishTime,
	})
	if err != nil {
		if errors.Is(err, posts.ErrTimeInPast) {
			s.State = StatePostAwaitTime
			h.editAnchor(s, "Время уже прошло. Отправьте новое время публикации.", backToMenuKeyboard())
			return
		}
		h.reportError(s, err)
		return
	}
	s.PostDraft = PostDraft{}
	s.State = StateIdle
	h.editAnchor(s, fmt.Sprintf("Пост %d запланирован на %s.", created.ID, created.PublishTime.In(h.loc).Format("02.01.2006 15:04")), backToMenuKeyboard())
}

func (h *Handler) postCreateRejected(ctx context.Context, s *Session, in Input) {
	s.PostDraft = PostDraft{}
	h.showMainMenu(ctx, s, in)
}

// startEditPost переводит диалог в ожидание нового значения поля.
func (h *Handler) startEditPost(field EditField) RouteFunc {
	return func(ctx context.Context, s *Session, in Input) {
		id, ok := parseID(in.Payload)
		if !ok {
			return
		}
		s.PostID = id
		s.EditField = field
		s.State = StatePostEditAwaitValue

		var prompt string
		switch field {
		case EditFieldTitle:
			prompt = "Отправьте новый заголовок."
		case EditFieldText:
			prompt = "Отправьте новый текст."
		case EditFieldTime:
			prompt = "Отправьте новое время публикации. Формат: 2006-01-02 15:04."
		case EditFieldMedia:
			prompt = "Прикрепите новое вложение. Старые вложения будут заменены."
		}
		h.editAnchor(s, prompt, backToMenuKeyboard())
	}
}

func (h *Handler) postEditInput(ctx context.Context, s *Session, in Input) {
	var (
		post domain.Post
		err  error
	)
	switch s.EditField {
	case EditFieldTitle:
		post, err = h.postUC.UpdateTitle(ctx, s.UserID, s.PostID, in.Text)
	case EditFieldText:
		post, err = h.postUC.UpdateText(ctx, s.UserID, s.PostID, in.Text)
	case EditFieldTime:
		ts, parseErr := h.postUC.ParsePublishTime(in.Text)
		if parseErr != nil {
			h.reply(s.ChatID, "Не удалось разобрать время. Формат: 2006-01-02 15:04.", nil)
			return
		}
		post, err = h.postUC.Reschedule(ctx, s.UserID, s.PostID, ts)
	case EditFieldMedia:
		var photos, videos []string
		var document string
		if in.PhotoID != "" {
			photos = []string{in.PhotoID}
		}
		if in.VideoID != "" {
			videos = []string{in.VideoID}
		}
		if in.DocumentID != "" {
			document = in.DocumentID
		}
		if len(photos) == 0 && len(videos) == 0 && document == "" {
			h.reply(s.ChatID, "Это не вложение. Прикрепите файл.", nil)
			return
		}
		post, err = h.postUC.SetMedia(ctx, s.UserID, s.PostID, photos, videos, document)
	default:
		h.showMainMenu(ctx, s, in)
		return
	}
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	s.EditField = ""
	h.showPostCard(ctx, s, post)
}

func (h *Handler) postClearMedia(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	post, err := h.postUC.ClearMedia(ctx, s.UserID, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	h.showPostCard(ctx, s, post)
}

func (h *Handler) postCancel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	if err := h.postUC.CancelPost(ctx, s.UserID, id); err != nil {
		h.reportError(s, err)
		return
	}
	h.showPosts(ctx, s, in)
}

func (h *Handler) postDelete(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	h.removePost(ctx, s, in, id)
}

// startDeletePostByID запускает удаление поста по набранному ID.
func (h *Handler) startDeletePostByID(ctx context.Context, s *Session, in Input) {
	s.State = StatePostAwaitDeleteID
	h.editAnchor(s, "Отправьте ID поста, который нужно удалить.", backToMenuKeyboard())
}

func (h *Handler) postDeleteByID(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Text)
	if !ok {
		h.reply(s.ChatID, "Некорректный ID поста. Отправьте число.", nil)
		return
	}
	s.State = StateIdle
	h.removePost(ctx, s, in, id)
}

// removePost удаляет пост и разводит исходы: нет такого поста, ошибка
// базы, успех.
func (h *Handler) removePost(ctx context.Context, s *Session, in Input, id int64) {
	if err := h.postUC.RemovePost(ctx, s.UserID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.reply(s.ChatID, fmt.Sprintf("Пост %d не найден.", id), nil)
			return
		}
		h.reportError(s, err)
		return
	}
	h.reply(s.ChatID, fmt.Sprintf("Пост %d удалён.", id), nil)
	h.showPosts(ctx, s, in)
}

// startPublishNow спрашивает подтверждение немедленной публикации.
func (h *Handler) startPublishNow(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	post, err := h.postUC.GetPost(ctx, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	if post.Status != domain.PostStatusPending {
		h.reply(s.ChatID, "Публиковать можно только ожидающий пост.", nil)
		return
	}
	s.PostID = id
	s.State = StatePostPublishConfirm
	h.editAnchor(s, fmt.Sprintf("Опубликовать пост %d прямо сейчас, не дожидаясь %s?",
		id, post.PublishTime.In(h.loc).Format("02.01.2006 15:04")), confirmKeyboard())
}

func (h *Handler) publishNowConfirmed(ctx context.Context, s *Session, in Input) {
	s.State = StateIdle
	result, err := h.publisher.Deliver(ctx, s.PostID)
	if err != nil {
		h.reportError(s, err)
		return
	}
	if !result.Delivered {
		h.editAnchor(s, fmt.Sprintf("Пост %d не опубликован: %s.", s.PostID, result.Reason), backToMenuKeyboard())
		return
	}
	post, err := h.postUC.GetPost(ctx, s.PostID)
	if err != nil {
		h.editAnchor(s, fmt.Sprintf("Пост %d опубликован.", s.PostID), backToMenuKeyboard())
		return
	}
	h.showPostCard(ctx, s, post)
}

func (h *Handler) publishNowRejected(ctx context.Context, s *Session, in Input) {
	s.State = StateIdle
	h.showPostDetails(ctx, s, Input{Payload: fmt.Sprintf("%d", s.PostID)})
}

// startEditChannel предлагает выбрать новый канал поста из активных.
func (h *Handler) startEditChannel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	list, err := h.channelUC.ListChannels(ctx, domain.ChannelsActive)
	if err != nil {
		h.reportError(s, err)
		return
	}
	if len(list) == 0 {
		h.editAnchor(s, "Нет активных каналов, переносить пост некуда.", backToMenuKeyboard())
		return
	}
	s.PostID = id
	s.State = StatePostEditAwaitChannel

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list)+1)
	for _, ch := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(ch.Name, fmt.Sprintf("%s%d", cbChannelPrefix, ch.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	h.editAnchor(s, "В какой канал перенести пост?", &markup)
}

func (h *Handler) postEditPickChannel(ctx context.Context, s *Session, in Input) {
	id, ok := parseID(in.Payload)
	if !ok {
		return
	}
	post, err := h.postUC.UpdateChannel(ctx, s.UserID, s.PostID, id)
	if err != nil {
		h.reportError(s, err)
		return
	}
	s.State = StateIdle
	h.showPostCard(ctx, s, post)
}

func (h *Handler) showPostCard(ctx context.Context, s *Session, post domain.Post) {
	channelName := fmt.Sprintf("%d", post.ChannelID)
	if channel, err := h.channelUC.GetChannel(ctx, post.ChannelID); err == nil {
		channelName = channel.Name
	}
	s.PostID = post.ID
	h.editAnchor(s, postDetailsText(post, channelName, h.loc), postDetailsKeyboard(post))
}
