package bot

// State — шаг диалога администратора. Бот держит по одному состоянию
// на пользователя, переходы описаны в таблице маршрутов.
type State string

const (
	StateIdle State = "idle"

	// Добавление канала: название → ID → чат уведомлений → модерация.
	StateChannelAwaitName       State = "channel_await_name"
	StateChannelAwaitID         State = "channel_await_id"
	StateChannelAwaitNotify     State = "channel_await_notify"
	StateChannelAwaitModeration State = "channel_await_moderation"
	StateChannelConfirm         State = "channel_confirm"

	// Привязка чатов канала.
	StateChannelAwaitNotifyChat  State = "channel_await_notify_chat"
	StateChannelAwaitCommentChat State = "channel_await_comment_chat"

	// Создание поста.
	StatePostAwaitChannel State = "post_await_channel"
	StatePostAwaitTitle   State = "post_await_title"
	StatePostAwaitText    State = "post_await_text"
	StatePostAwaitMedia   State = "post_await_media"
	StatePostAwaitTime    State = "post_await_time"
	StatePostConfirm      State = "post_confirm"

	// Правка существующего поста: поле хранится в сессии.
	StatePostEditAwaitValue   State = "post_edit_await_value"
	StatePostEditAwaitChannel State = "post_edit_await_channel"

	// Немедленная публикация и удаление по ID.
	StatePostPublishConfirm State = "post_publish_confirm"
	StatePostAwaitDeleteID  State = "post_await_delete_id"

	// Фильтры модерации.
	StateFilterAwaitKeyword State = "filter_await_keyword"
	StateFilterAwaitRegex   State = "filter_await_regex"

	// Управление пользователями.
	StateBanAwaitUser   State = "ban_await_user"
	StateUnbanAwaitUser State = "unban_await_user"
)

// StateAny подходит под любое состояние при разрешении маршрута.
const StateAny State = "*"

// flowStates перечисляет шаги диалогов. Каждый шаг обязан иметь хотя бы
// один собственный маршрут, иначе диалог в нём застрянет.
func flowStates() []State {
	return []State{
		StateChannelAwaitName,
		StateChannelAwaitID,
		StateChannelAwaitNotify,
		StateChannelAwaitModeration,
		StateChannelConfirm,
		StateChannelAwaitNotifyChat,
		StateChannelAwaitCommentChat,
		StatePostAwaitChannel,
		StatePostAwaitTitle,
		StatePostAwaitText,
		StatePostAwaitMedia,
		StatePostAwaitTime,
		StatePostConfirm,
		StatePostEditAwaitValue,
		StatePostEditAwaitChannel,
		StatePostPublishConfirm,
		StatePostAwaitDeleteID,
		StateFilterAwaitKeyword,
		StateFilterAwaitRegex,
		StateBanAwaitUser,
		StateUnbanAwaitUser,
	}
}

// Trigger — событие, двигающее диалог: нажатие кнопки либо свободный ввод.
type Trigger string

// TriggerText — свободный текстовый ввод в текущем состоянии.
const TriggerText Trigger = "__text__"

// Кнопки главного меню и навигации.
const (
	cbMainMenu       = "#main_menu#"
	cbBack           = "#back#"
	cbForward        = "#forward#"
	cbManageChannels = "#manage_channels#"
	cbManagePosts    = "#manage_posts#"
	cbAddChannel     = "#add_channel#"
	cbAddPost        = "#add_post#"
	cbLogs           = "#logs#"
	cbStats          = "#stats#"
	cbYes            = "yes"
	cbNo             = "no"
	cbSkip           = "#skip#"

	// Переключатели выборок списков.
	cbChannelsAll      = "#channels_all#"
	cbChannelsActive   = "#channels_active#"
	cbChannelsInactive = "#channels_inactive#"
	cbPostsPending     = "#posts_pending#"
	cbPostsPublished   = "#posts_published#"
	cbPostsCancelled   = "#posts_cancelled#"

	cbRemovePostByID = "#delete_post_by_id#"
)

// Префиксы кнопок с параметром. Идентификатор дописывается после.
const (
	cbChannelPrefix       = "channel_"
	cbPostPrefix          = "post_"
	cbToggleActivePrefix  = "toggle_active_"
	cbToggleModerPrefix   = "toggle_moderation_"
	cbRenameChannelPrefix = "rename_channel_"
	cbNotifyChatPrefix    = "notify_chat_"
	cbCommentChatPrefix   = "comment_chat_"
	cbDeleteChannelPrefix = "delete_channel_"
	cbFiltersPrefix       = "filters_"
	cbAddFilterPrefix     = "add_filter_"
	cbDelFilterPrefix     = "del_filter_"
	cbEditTitlePrefix     = "edit_title_"
	cbEditTextPrefix      = "edit_text_"
	cbEditTimePrefix      = "edit_time_"
	cbEditMediaPrefix     = "edit_media_"
	cbEditChannelPrefix   = "edit_channel_"
	cbPublishNowPrefix    = "publish_now_"
	cbClearMediaPrefix    = "clear_media_"
	cbCancelPostPrefix    = "cancel_post_"
	cbDeletePostPrefix    = "delete_post_"
	cbStatsPrefix         = "stats_"
	cbExportLogs          = "#export_logs#"
	cbBanUser             = "#ban_user#"
	cbUnbanUser           = "#unban_user#"
)
