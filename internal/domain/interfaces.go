package domain

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound возвращается репозиториями, когда запись не существует.
var ErrNotFound = errors.New("запись не найдена")

// ChannelListKind определяет подмножество каналов в выборке.
type ChannelListKind string

const (
	ChannelsAll      ChannelListKind = "all"
	ChannelsActive   ChannelListKind = "active"
	ChannelsInactive ChannelListKind = "inactive"
)

// UserRepo управляет пользователями.
type UserRepo interface {
	UpsertUser(ctx context.Context, id int64, username string) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	SetRole(ctx context.Context, id int64, role UserRole) error
	SetBanned(ctx context.Context, id int64, banned bool) error
}

// ChannelRepo управляет каналами.
type ChannelRepo interface {
	AddChannel(ctx context.Context, channel Channel) (Channel, error)
	GetChannel(ctx context.Context, id int64) (Channel, error)
	GetChannelByCommentChat(ctx context.Context, chatID int64) (Channel, error)
	UpdateChannel(ctx context.Context, channel Channel) (Channel, error)
	DeleteChannel(ctx context.Context, id int64) error
	ListChannels(ctx context.Context, kind ChannelListKind) ([]Channel, error)
}

// PostRepo управляет постами.
type PostRepo interface {
	AddPost(ctx context.Context, post Post) (Post, error)
	GetPost(ctx context.Context, id int64) (Post, error)
	UpdatePost(ctx context.Context, post Post) (Post, error)
	DeletePost(ctx context.Context, id int64) error
	ListPostsByStatus(ctx context.Context, status PostStatus) ([]Post, error)
	// MarkPublished переводит пост pending → published. Возвращает false,
	// если пост уже не был в статусе pending.
	MarkPublished(ctx context.Context, id int64, messageID int, publishedAt time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id int64) error
}

// FilterRepo управляет правилами модерации.
type FilterRepo interface {
	AddFilter(ctx context.Context, filter Filter) (Filter, error)
	DeleteFilter(ctx context.Context, id int64) error
	ListActiveFilters(ctx context.Context, channelID int64) ([]Filter, error)
}

// LogRepo пишет и читает журнал действий.
type LogRepo interface {
	AddLog(ctx context.Context, entry LogEntry) error
	ListLogs(ctx context.Context, since time.Time) ([]LogEntry, error)
}

// StatRepo управляет счётчиками постов.
type StatRepo interface {
	AddStat(ctx context.Context, stat Stat) (Stat, error)
	IncComments(ctx context.Context, channelID int64) error
	ListStats(ctx context.Context, channelID int64) ([]Stat, error)
}

// SentMessage описывает результат отправки в Telegram.
type SentMessage struct {
	MessageID int
}

// Messenger — клиент Telegram Bot API с ретраями на транспортном уровне.
// Наружу отдаются только неустранимые ошибки.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) (SentMessage, error)
	SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (SentMessage, error)
	SendVideo(ctx context.Context, chatID int64, fileID, caption string) (SentMessage, error)
	SendDocument(ctx context.Context, chatID int64, fileID, caption string) (SentMessage, error)
	SendFile(ctx context.Context, chatID int64, name string, payload []byte, caption string) (SentMessage, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	BanMember(ctx context.Context, chatID, userID int64, until time.Time) error
	UnbanMember(ctx context.Context, chatID, userID int64) error
}

// DeliveryResult — типизированный итог доставки поста, по которому
// планировщик и тесты судят об исходе без чтения логов.
type DeliveryResult struct {
	PostID    int64
	Status    PostStatus
	MessageID int
	Delivered bool
	Reason    string
}

// PostScheduler планирует отложенную доставку постов.
// Schedule заменяет уже существующее задание поста (одно живое задание на пост).
type PostScheduler interface {
	Schedule(ctx context.Context, postID int64, fireAt time.Time) error
	Cancel(ctx context.Context, postID int64) error
}
