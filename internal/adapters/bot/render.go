package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tg-channel-bot/internal/domain"
)

// pageSize — элементов списка на страницу меню.
const pageSize = 5

// clampPage прижимает номер страницы к допустимому диапазону.
func clampPage(page, total int) int {
	if total == 0 {
		return 0
	}
	last := (total - 1) / pageSize
	if page < 0 {
		return 0
	}
	if page > last {
		return last
	}
	return page
}

// pageBounds возвращает границы среза для страницы.
func pageBounds(page, total int) (int, int) {
	start := page * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return start, end
}

func navRow(page, total int) []tgbotapi.InlineKeyboardButton {
	var row []tgbotapi.InlineKeyboardButton
	if page > 0 {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Назад", cbBack))
	}
	if (page+1)*pageSize < total {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("Вперёд ➡️", cbForward))
	}
	return row
}

func mainMenuText() string {
	return "🛠 Панель управления каналами\n\nВыберите раздел:"
}

func mainMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📡 Каналы", cbManageChannels),
			tgbotapi.NewInlineKeyboardButtonData("📝 Посты", cbManagePosts),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", cbStats),
			tgbotapi.NewInlineKeyboardButtonData("📒 Журнал", cbLogs),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Забанить", cbBanUser),
			tgbotapi.NewInlineKeyboardButtonData("✅ Разбанить", cbUnbanUser),
		),
	)
	return &markup
}

func channelsListText(kind domain.ChannelListKind, total int) string {
	var title string
	switch kind {
	case domain.ChannelsActive:
		title = "Активные каналы"
	case domain.ChannelsInactive:
		title = "Выключенные каналы"
	default:
		title = "Все каналы"
	}
	if total == 0 {
		return title + "\n\nСписок пуст. Добавьте канал."
	}
	return fmt.Sprintf("%s (%d)\n\nВыберите канал:", title, total)
}

func channelsListKeyboard(channels []domain.Channel, page int, kind domain.ChannelListKind) *tgbotapi.InlineKeyboardMarkup {
	page = clampPage(page, len(channels))
	start, end := pageBounds(page, len(channels))

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, pageSize+4)
	rows = append(rows, channelKindRow(kind))
	for _, ch := range channels[start:end] {
		label := ch.Name
		if !ch.IsActive {
			label = "💤 " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbChannelPrefix, ch.ID)),
		))
	}
	if nav := navRow(page, len(channels)); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Добавить канал", cbAddChannel),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func channelDetailsText(ch domain.Channel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Канал %q\nID: %d\n", ch.Name, ch.ID)
	if ch.IsActive {
		b.WriteString("Статус: активен\n")
	} else {
		b.WriteString("Статус: выключен\n")
	}
	if ch.ModerationEnabled {
		b.WriteString("Модерация: включена\n")
	} else {
		b.WriteString("Модерация: выключена\n")
	}
	if ch.NotificationChatID != nil {
		fmt.Fprintf(&b, "Чат уведомлений: %d\n", *ch.NotificationChatID)
	}
	if ch.CommentChatID != nil {
		fmt.Fprintf(&b, "Чат обсуждений: %d\n", *ch.CommentChatID)
	}
	return b.String()
}

func channelDetailsKeyboard(ch domain.Channel) *tgbotapi.InlineKeyboardMarkup {
	activeLabel := "💤 Выключить"
	if !ch.IsActive {
		activeLabel = "▶️ Включить"
	}
	moderLabel := "🔇 Выключить модерацию"
	if !ch.ModerationEnabled {
		moderLabel = "🔊 Включить модерацию"
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(activeLabel, fmt.Sprintf("%s%d", cbToggleActivePrefix, ch.ID)),
			tgbotapi.NewInlineKeyboardButtonData(moderLabel, fmt.Sprintf("%s%d", cbToggleModerPrefix, ch.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Переименовать", fmt.Sprintf("%s%d", cbRenameChannelPrefix, ch.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🧹 Фильтры", fmt.Sprintf("%s%d", cbFiltersPrefix, ch.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔔 Чат уведомлений", fmt.Sprintf("%s%d", cbNotifyChatPrefix, ch.ID)),
			tgbotapi.NewInlineKeyboardButtonData("💬 Чат обсуждений", fmt.Sprintf("%s%d", cbCommentChatPrefix, ch.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Статистика", fmt.Sprintf("%s%d", cbStatsPrefix, ch.ID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", cbDeleteChannelPrefix, ch.ID)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ К каналам", cbManageChannels),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
		),
	)
	return &markup
}

// channelKindRow — переключатель выборок списка каналов.
func channelKindRow(kind domain.ChannelListKind) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(markChosen("Все", kind == domain.ChannelsAll), cbChannelsAll),
		tgbotapi.NewInlineKeyboardButtonData(markChosen("Активные", kind == domain.ChannelsActive), cbChannelsActive),
		tgbotapi.NewInlineKeyboardButtonData(markChosen("Спящие", kind == domain.ChannelsInactive), cbChannelsInactive),
	)
}

func postsListText(status domain.PostStatus, total int) string {
	var title string
	switch status {
	case domain.PostStatusPublished:
		title = "Опубликованные посты"
	case domain.PostStatusCancelled:
		title = "Отменённые посты"
	default:
		title = "Ожидающие посты"
	}
	if total == 0 {
		return title + "\n\nСписок пуст."
	}
	return fmt.Sprintf("%s (%d)\n\nВыберите пост:", title, total)
}

// postStatusRow — переключатель подборок списка постов.
func postStatusRow(status domain.PostStatus) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(markChosen("⏳ Ожидают", status == domain.PostStatusPending), cbPostsPending),
		tgbotapi.NewInlineKeyboardButtonData(markChosen("✅ Вышли", status == domain.PostStatusPublished), cbPostsPublished),
		tgbotapi.NewInlineKeyboardButtonData(markChosen("⛔️ Отменены", status == domain.PostStatusCancelled), cbPostsCancelled),
	)
}

func postsListKeyboard(posts []domain.Post, page int, status domain.PostStatus) *tgbotapi.InlineKeyboardMarkup {
	page = clampPage(page, len(posts))
	start, end := pageBounds(page, len(posts))

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, pageSize+4)
	rows = append(rows, postStatusRow(status))
	for _, post := range posts[start:end] {
		label := post.Title
		if label == "" {
			label = shorten(post.Text, 30)
		}
		label = fmt.Sprintf("%s — %s", post.PublishTime.Format("02.01 15:04"), label)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("%s%d", cbPostPrefix, post.ID)),
		))
	}
	if nav := navRow(page, len(posts)); len(nav) > 0 {
		rows = append(rows, nav)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("➕ Новый пост", cbAddPost),
		tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить по ID", cbRemovePostByID),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func postDetailsText(post domain.Post, channelName string, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Пост %d\nКанал: %s\n", post.ID, channelName)
	if post.Title != "" {
		fmt.Fprintf(&b, "Заголовок: %s\n", post.Title)
	}
	fmt.Fprintf(&b, "Публикация: %s\nСтатус: %s\n", post.PublishTime.In(loc).Format("02.01.2006 15:04"), postStatusLabel(post.Status))
	if len(post.Photos) > 0 {
		fmt.Fprintf(&b, "Фото: %d\n", len(post.Photos))
	}
	if len(post.Videos) > 0 {
		fmt.Fprintf(&b, "Видео: %d\n", len(post.Videos))
	}
	if post.Document != "" {
		b.WriteString("Документ: прикреплён\n")
	}
	if post.Text != "" {
		fmt.Fprintf(&b, "\n%s\n", shorten(post.Text, 500))
	}
	return b.String()
}

// postDetailsKeyboard собирает кнопки карточки поста. Опубликованные и
// отменённые посты неизменяемы, им остаётся только удаление.
func postDetailsKeyboard(post domain.Post) *tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	if post.Status == domain.PostStatusPending {
		rows = append(rows,
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✏️ Заголовок", fmt.Sprintf("%s%d", cbEditTitlePrefix, post.ID)),
				tgbotapi.NewInlineKeyboardButtonData("📄 Текст", fmt.Sprintf("%s%d", cbEditTextPrefix, post.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🕒 Время", fmt.Sprintf("%s%d", cbEditTimePrefix, post.ID)),
				tgbotapi.NewInlineKeyboardButtonData("📎 Вложения", fmt.Sprintf("%s%d", cbEditMediaPrefix, post.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📡 Канал", fmt.Sprintf("%s%d", cbEditChannelPrefix, post.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🧽 Убрать вложения", fmt.Sprintf("%s%d", cbClearMediaPrefix, post.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🚀 Опубликовать сейчас", fmt.Sprintf("%s%d", cbPublishNowPrefix, post.ID)),
			),
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("⛔️ Отменить", fmt.Sprintf("%s%d", cbCancelPostPrefix, post.ID)),
				tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", cbDeletePostPrefix, post.ID)),
			),
		)
	} else {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Удалить", fmt.Sprintf("%s%d", cbDeletePostPrefix, post.ID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ К постам", cbManagePosts),
		tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
	))
	markup := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &markup
}

func confirmKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Да", cbYes),
			tgbotapi.NewInlineKeyboardButtonData("❌ Нет", cbNo),
		),
	)
	return &markup
}

func backToMenuKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏠 Главное меню", cbMainMenu),
		),
	)
	return &markup
}

func skipKeyboard() *tgbotapi.InlineKeyboardMarkup {
	markup := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Пропустить", cbSkip),
		),
	)
	return &markup
}

func postStatusLabel(status domain.PostStatus) string {
	switch status {
	case domain.PostStatusPending:
		return "ожидает"
	case domain.PostStatusPublished:
		return "опубликован"
	case domain.PostStatusCancelled:
		return "отменён"
	default:
		return string(status)
	}
}

func markChosen(label string, chosen bool) string {
	if chosen {
		return "• " + label
	}
	return label
}

func shorten(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= limit {
		return string(runes)
	}
	return string(runes[:limit]) + "…"
}
