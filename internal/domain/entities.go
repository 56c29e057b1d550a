package domain

import (
	"strings"
	"time"
)

// UserRole описывает роль пользователя в боте.
type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleModerator UserRole = "moderator"
	UserRoleUser      UserRole = "user"
)

// ParseUserRole приводит строку к известной роли, по умолчанию — user.
func ParseUserRole(raw string) UserRole {
	switch UserRole(strings.ToLower(strings.TrimSpace(raw))) {
	case UserRoleAdmin:
		return UserRoleAdmin
	case UserRoleModerator:
		return UserRoleModerator
	default:
		return UserRoleUser
	}
}

// User описывает пользователя Telegram в системе. ID — внешний Telegram ID.
type User struct {
	ID        int64
	Username  string
	Role      UserRole
	IsBanned  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdmin сообщает, доступна ли пользователю админ-панель.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanModerate сообщает, доступны ли пользователю действия модерации.
func (u User) CanModerate() bool {
	return u.Role == UserRoleAdmin || u.Role == UserRoleModerator
}

// Channel описывает канал-назначение публикаций. ID задаётся оператором
// (внешний Telegram ID канала) и неизменяем после создания.
type Channel struct {
	ID                 int64
	Name               string
	IsActive           bool
	ModerationEnabled  bool
	NotificationChatID *int64
	CommentChatID      *int64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// PostStatus описывает статус поста.
type PostStatus string

const (
	PostStatusPending   PostStatus = "pending"
	PostStatusPublished PostStatus = "published"
	PostStatusCancelled PostStatus = "cancelled"
)

// Post представляет запланированную или доставленную публикацию.
type Post struct {
	ID          int64
	ChannelID   int64
	Title       string
	Text        string
	Photos      []string
	Videos      []string
	Document    string
	PublishTime time.Time
	Published   *time.Time
	MessageID   *int
	Status      PostStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasMedia сообщает, прикреплено ли к посту хоть одно медиа.
func (p Post) HasMedia() bool {
	return p.Document != "" || len(p.Photos) > 0 || len(p.Videos) > 0
}

// Filter описывает правило модерации комментариев канала.
type Filter struct {
	ID        int64
	ChannelID int64
	Keyword   string
	Regex     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LogEntry фиксирует действие администратора или модерации.
type LogEntry struct {
	ID        int64
	UserID    int64
	Action    string
	Details   string
	ChannelID *int64
	Timestamp time.Time
}

// Stat хранит счётчик комментариев по каналу и посту. Просмотры Bot API
// не отдаёт, поэтому их здесь нет.
type Stat struct {
	ID        int64
	ChannelID int64
	PostID    *int64
	Comments  int
	Timestamp time.Time
}
