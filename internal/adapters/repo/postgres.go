package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tg-channel-bot/internal/domain"
	"tg-channel-bot/internal/infra/metrics"
)

// Postgres реализует репозитории на основе pgxpool.
type Postgres struct {
	pool *pgxpool.Pool
}

var (
	_ domain.UserRepo    = (*Postgres)(nil)
	_ domain.ChannelRepo = (*Postgres)(nil)
	_ domain.PostRepo    = (*Postgres)(nil)
	_ domain.FilterRepo  = (*Postgres)(nil)
	_ domain.LogRepo     = (*Postgres)(nil)
	_ domain.StatRepo    = (*Postgres)(nil)
)

// NewPostgres создаёт адаптер БД.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) connCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, 5*time.Second)
}

// UpsertUser реализует domain.UserRepo.
func (p *Postgres) UpsertUser(ctx context.Context, id int64, username string) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	usernameValue := strings.TrimSpace(username)

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO users (id, username)
VALUES ($1, $2)
ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
RETURNING id, username, role, is_banned, created_at, updated_at
`, id, usernameValue)

	user, err := scanUser(row)
	metrics.ObserveNetworkRequest("postgres", "users_upsert", "users", start, err)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert пользователя: %w", err)
	}
	return user, nil
}

// GetUser реализует domain.UserRepo.
func (p *Postgres) GetUser(ctx context.Context, id int64) (domain.User, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT id, username, role, is_banned, created_at, updated_at
FROM users
WHERE id = $1
`, id)

	user, err := scanUser(row)
	metrics.ObserveNetworkRequest("postgres", "users_get", "users", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("чтение пользователя: %w", err)
	}
	return user, nil
}

// SetRole реализует domain.UserRepo.
func (p *Postgres) SetRole(ctx context.Context, id int64, role domain.UserRole) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE users SET role = $2, updated_at = now() WHERE id = $1
`, id, string(role))
	metrics.ObserveNetworkRequest("postgres", "users_set_role", "users", start, err)
	if err != nil {
		return fmt.Errorf("смена роли: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetBanned реализует domain.UserRepo.
func (p *Postgres) SetBanned(ctx context.Context, id int64, banned bool) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE users SET is_banned = $2, updated_at = now() WHERE id = $1
`, id, banned)
	metrics.ObserveNetworkRequest("postgres", "users_set_banned", "users", start, err)
	if err != nil {
		return fmt.Errorf("смена бана: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddChannel реализует domain.ChannelRepo.
func (p *Postgres) AddChannel(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO channels (id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id, created_at, updated_at
`, channel.ID, channel.Name, channel.IsActive, channel.ModerationEnabled,
		nullInt64(channel.NotificationChatID), nullInt64(channel.CommentChatID))

	created, err := scanChannel(row)
	metrics.ObserveNetworkRequest("postgres", "channels_insert", "channels", start, err)
	if err != nil {
		return domain.Channel{}, fmt.Errorf("создание канала: %w", err)
	}
	return created, nil
}

// GetChannel реализует domain.ChannelRepo.
func (p *Postgres) GetChannel(ctx context.Context, id int64) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id, created_at, updated_at
FROM channels
WHERE id = $1
`, id)

	channel, err := scanChannel(row)
	metrics.ObserveNetworkRequest("postgres", "channels_get", "channels", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("чтение канала: %w", err)
	}
	return channel, nil
}

// GetChannelByCommentChat реализует domain.ChannelRepo.
func (p *Postgres) GetChannelByCommentChat(ctx context.Context, chatID int64) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id, created_at, updated_at
FROM channels
WHERE comment_chat_id = $1
`, chatID)

	channel, err := scanChannel(row)
	metrics.ObserveNetworkRequest("postgres", "channels_get_by_comment_chat", "channels", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("поиск канала по чату комментариев: %w", err)
	}
	return channel, nil
}

// UpdateChannel реализует domain.ChannelRepo.
func (p *Postgres) UpdateChannel(ctx context.Context, channel domain.Channel) (domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
UPDATE channels
SET name = $2,
    is_active = $3,
    moderation_enabled = $4,
    notification_chat_id = $5,
    comment_chat_id = $6,
    updated_at = now()
WHERE id = $1
RETURNING id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id, created_at, updated_at
`, channel.ID, channel.Name, channel.IsActive, channel.ModerationEnabled,
		nullInt64(channel.NotificationChatID), nullInt64(channel.CommentChatID))

	updated, err := scanChannel(row)
	metrics.ObserveNetworkRequest("postgres", "channels_update", "channels", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Channel{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Channel{}, fmt.Errorf("обновление канала: %w", err)
	}
	return updated, nil
}

// DeleteChannel реализует domain.ChannelRepo.
func (p *Postgres) DeleteChannel(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM channels WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "channels_delete", "channels", start, err)
	if err != nil {
		return fmt.Errorf("удаление канала: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListChannels реализует domain.ChannelRepo.
func (p *Postgres) ListChannels(ctx context.Context, kind domain.ChannelListKind) ([]domain.Channel, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	query := `
SELECT id, name, is_active, moderation_enabled, notification_chat_id, comment_chat_id, created_at, updated_at
FROM channels
`
	switch kind {
	case domain.ChannelsActive:
		query += "WHERE is_active\n"
	case domain.ChannelsInactive:
		query += "WHERE NOT is_active\n"
	}
	query += "ORDER BY created_at"

	start := time.Now()
	rows, err := p.pool.Query(ctx, query)
	metrics.ObserveNetworkRequest("postgres", "channels_list", "channels", start, err)
	if err != nil {
		return nil, fmt.Errorf("список каналов: %w", err)
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение строки канала: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход каналов: %w", err)
	}
	return channels, nil
}

// AddPost реализует domain.PostRepo.
func (p *Postgres) AddPost(ctx context.Context, post domain.Post) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	status := post.Status
	if status == "" {
		status = domain.PostStatusPending
	}

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO posts (channel_id, title, body, photos, videos, document, publish_time, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, channel_id, title, body, photos, videos, document, publish_time, published_at, message_id, status, created_by, created_at, updated_at
`, post.ChannelID, post.Title, post.Text, notNilStrings(post.Photos), notNilStrings(post.Videos),
		post.Document, post.PublishTime, string(status), post.CreatedBy)

	created, err := scanPost(row)
	metrics.ObserveNetworkRequest("postgres", "posts_insert", "posts", start, err)
	if err != nil {
		return domain.Post{}, fmt.Errorf("создание поста: %w", err)
	}
	return created, nil
}

// GetPost реализует domain.PostRepo.
func (p *Postgres) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
SELECT id, channel_id, title, body, photos, videos, document, publish_time, published_at, message_id, status, created_by, created_at, updated_at
FROM posts
WHERE id = $1
`, id)

	post, err := scanPost(row)
	metrics.ObserveNetworkRequest("postgres", "posts_get", "posts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("чтение поста: %w", err)
	}
	return post, nil
}

// UpdatePost реализует domain.PostRepo.
func (p *Postgres) UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
UPDATE posts
SET channel_id = $2,
    title = $3,
    body = $4,
    photos = $5,
    videos = $6,
    document = $7,
    publish_time = $8,
    status = $9,
    updated_at = now()
WHERE id = $1
RETURNING id, channel_id, title, body, photos, videos, document, publish_time, published_at, message_id, status, created_by, created_at, updated_at
`, post.ID, post.ChannelID, post.Title, post.Text, notNilStrings(post.Photos), notNilStrings(post.Videos),
		post.Document, post.PublishTime, string(post.Status))

	updated, err := scanPost(row)
	metrics.ObserveNetworkRequest("postgres", "posts_update", "posts", start, err)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Post{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Post{}, fmt.Errorf("обновление поста: %w", err)
	}
	return updated, nil
}

// DeletePost реализует domain.PostRepo.
func (p *Postgres) DeletePost(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "posts_delete", "posts", start, err)
	if err != nil {
		return fmt.Errorf("удаление поста: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListPostsByStatus реализует domain.PostRepo.
func (p *Postgres) ListPostsByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel_id, title, body, photos, videos, document, publish_time, published_at, message_id, status, created_by, created_at, updated_at
FROM posts
WHERE status = $1
ORDER BY publish_time
`, string(status))
	metrics.ObserveNetworkRequest("postgres", "posts_list_by_status", "posts", start, err)
	if err != nil {
		return nil, fmt.Errorf("список постов: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение строки поста: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход постов: %w", err)
	}
	return posts, nil
}

// MarkPublished реализует domain.PostRepo. Обновление срабатывает только
// для поста в статусе pending, повторная доставка невозможна.
func (p *Postgres) MarkPublished(ctx context.Context, id int64, messageID int, publishedAt time.Time) (bool, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE posts
SET status = $2, message_id = $3, published_at = $4, updated_at = now()
WHERE id = $1 AND status = $5
`, id, string(domain.PostStatusPublished), messageID, publishedAt, string(domain.PostStatusPending))
	metrics.ObserveNetworkRequest("postgres", "posts_mark_published", "posts", start, err)
	if err != nil {
		return false, fmt.Errorf("отметка публикации: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MarkCancelled реализует domain.PostRepo.
func (p *Postgres) MarkCancelled(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE posts SET status = $2, updated_at = now() WHERE id = $1
`, id, string(domain.PostStatusCancelled))
	metrics.ObserveNetworkRequest("postgres", "posts_mark_cancelled", "posts", start, err)
	if err != nil {
		return fmt.Errorf("отмена поста: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddFilter реализует domain.FilterRepo.
func (p *Postgres) AddFilter(ctx context.Context, filter domain.Filter) (domain.Filter, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO filters (channel_id, keyword, regex, is_active)
VALUES ($1, $2, $3, $4)
RETURNING id, channel_id, keyword, regex, is_active, created_at, updated_at
`, filter.ChannelID, filter.Keyword, filter.Regex, filter.IsActive)

	var created domain.Filter
	err := row.Scan(&created.ID, &created.ChannelID, &created.Keyword, &created.Regex,
		&created.IsActive, &created.CreatedAt, &created.UpdatedAt)
	metrics.ObserveNetworkRequest("postgres", "filters_insert", "filters", start, err)
	if err != nil {
		return domain.Filter{}, fmt.Errorf("создание фильтра: %w", err)
	}
	return created, nil
}

// DeleteFilter реализует domain.FilterRepo.
func (p *Postgres) DeleteFilter(ctx context.Context, id int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `DELETE FROM filters WHERE id = $1`, id)
	metrics.ObserveNetworkRequest("postgres", "filters_delete", "filters", start, err)
	if err != nil {
		return fmt.Errorf("удаление фильтра: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListActiveFilters реализует domain.FilterRepo.
func (p *Postgres) ListActiveFilters(ctx context.Context, channelID int64) ([]domain.Filter, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel_id, keyword, regex, is_active, created_at, updated_at
FROM filters
WHERE channel_id = $1 AND is_active
ORDER BY id
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "filters_list_active", "filters", start, err)
	if err != nil {
		return nil, fmt.Errorf("список фильтров: %w", err)
	}
	defer rows.Close()

	var filters []domain.Filter
	for rows.Next() {
		var f domain.Filter
		if err := rows.Scan(&f.ID, &f.ChannelID, &f.Keyword, &f.Regex, &f.IsActive, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("чтение строки фильтра: %w", err)
		}
		filters = append(filters, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход фильтров: %w", err)
	}
	return filters, nil
}

// AddLog реализует domain.LogRepo.
func (p *Postgres) AddLog(ctx context.Context, entry domain.LogEntry) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	ts := entry.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	start := time.Now()
	_, err := p.pool.Exec(ctx, `
INSERT INTO logs (user_id, action, details, channel_id, ts)
VALUES ($1, $2, $3, $4, $5)
`, entry.UserID, entry.Action, entry.Details, nullInt64(entry.ChannelID), ts)
	metrics.ObserveNetworkRequest("postgres", "logs_insert", "logs", start, err)
	if err != nil {
		return fmt.Errorf("запись в журнал: %w", err)
	}
	return nil
}

// ListLogs реализует domain.LogRepo.
func (p *Postgres) ListLogs(ctx context.Context, since time.Time) ([]domain.LogEntry, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, user_id, action, details, channel_id, ts
FROM logs
WHERE ts >= $1
ORDER BY ts DESC
`, since)
	metrics.ObserveNetworkRequest("postgres", "logs_list", "logs", start, err)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала: %w", err)
	}
	defer rows.Close()

	var entries []domain.LogEntry
	for rows.Next() {
		var e domain.LogEntry
		var channelID sql.NullInt64
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Details, &channelID, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("чтение строки журнала: %w", err)
		}
		if channelID.Valid {
			v := channelID.Int64
			e.ChannelID = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход журнала: %w", err)
	}
	return entries, nil
}

// AddStat реализует domain.StatRepo.
func (p *Postgres) AddStat(ctx context.Context, stat domain.Stat) (domain.Stat, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	ts := stat.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	start := time.Now()
	row := p.pool.QueryRow(ctx, `
INSERT INTO stats (channel_id, post_id, comments, ts)
VALUES ($1, $2, $3, $4)
RETURNING id, channel_id, post_id, comments, ts
`, stat.ChannelID, nullInt64(stat.PostID), stat.Comments, ts)

	created, err := scanStat(row)
	metrics.ObserveNetworkRequest("postgres", "stats_insert", "stats", start, err)
	if err != nil {
		return domain.Stat{}, fmt.Errorf("запись статистики: %w", err)
	}
	return created, nil
}

// IncComments реализует domain.StatRepo: наращивает счётчик комментариев
// последней записи канала либо создаёт новую.
func (p *Postgres) IncComments(ctx context.Context, channelID int64) error {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	tag, err := p.pool.Exec(ctx, `
UPDATE stats SET comments = comments + 1
WHERE id = (SELECT id FROM stats WHERE channel_id = $1 ORDER BY ts DESC LIMIT 1)
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "stats_inc_comments", "stats", start, err)
	if err != nil {
		return fmt.Errorf("учёт комментария: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	start = time.Now()
	_, err = p.pool.Exec(ctx, `
INSERT INTO stats (channel_id, comments) VALUES ($1, 1)
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "stats_insert", "stats", start, err)
	if err != nil {
		return fmt.Errorf("учёт комментария: %w", err)
	}
	return nil
}

// ListStats реализует domain.StatRepo.
func (p *Postgres) ListStats(ctx context.Context, channelID int64) ([]domain.Stat, error) {
	ctx, cancel := p.connCtx(ctx)
	defer cancel()

	start := time.Now()
	rows, err := p.pool.Query(ctx, `
SELECT id, channel_id, post_id, comments, ts
FROM stats
WHERE channel_id = $1
ORDER BY ts DESC
`, channelID)
	metrics.ObserveNetworkRequest("postgres", "stats_list", "stats", start, err)
	if err != nil {
		return nil, fmt.Errorf("чтение статистики: %w", err)
	}
	defer rows.Close()

	var stats []domain.Stat
	for rows.Next() {
		stat, err := scanStat(rows)
		if err != nil {
			return nil, fmt.Errorf("чтение строки статистики: %w", err)
		}
		stats = append(stats, stat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("обход статистики: %w", err)
	}
	return stats, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		user domain.User
		role string
	)
	if err := row.Scan(&user.ID, &user.Username, &role, &user.IsBanned, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return domain.User{}, err
	}
	user.Role = domain.ParseUserRole(role)
	return user, nil
}

func scanChannel(row rowScanner) (domain.Channel, error) {
	var (
		channel          domain.Channel
		notificationChat sql.NullInt64
		commentChat      sql.NullInt64
	)
	if err := row.Scan(&channel.ID, &channel.Name, &channel.IsActive, &channel.ModerationEnabled,
		&notificationChat, &commentChat, &channel.CreatedAt, &channel.UpdatedAt); err != nil {
		return domain.Channel{}, err
	}
	if notificationChat.Valid {
		v := notificationChat.Int64
		channel.NotificationChatID = &v
	}
	if commentChat.Valid {
		v := commentChat.Int64
		channel.CommentChatID = &v
	}
	return channel, nil
}

func scanPost(row rowScanner) (domain.Post, error) {
	var (
		post        domain.Post
		publishedAt sql.NullTime
		messageID   sql.NullInt64
		status      string
	)
	if err := row.Scan(&post.ID, &post.ChannelID, &post.Title, &post.Text, &post.Photos, &post.Videos,
		&post.Document, &post.PublishTime, &publishedAt, &messageID, &status,
		&post.CreatedBy, &post.CreatedAt, &post.UpdatedAt); err != nil {
		return domain.Post{}, err
	}
	if publishedAt.Valid {
		v := publishedAt.Time
		post.Published = &v
	}
	if messageID.Valid {
		v := int(messageID.Int64)
		post.MessageID = &v
	}
	post.Status = domain.PostStatus(status)
	return post, nil
}

func scanStat(row rowScanner) (domain.Stat, error) {
	var (
		stat   domain.Stat
		postID sql.NullInt64
	)
	if err := row.Scan(&stat.ID, &stat.ChannelID, &postID, &stat.Comments, &stat.Timestamp); err != nil {
		return domain.Stat{}, err
	}
	if postID.Valid {
		v := postID.Int64
		stat.PostID = &v
	}
	return stat, nil
}

// notNilStrings страхует NOT NULL колонки-массивы от nil-срезов.
func notNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
