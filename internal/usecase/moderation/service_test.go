package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
)

type fakeFilterRepo struct {
	filters []domain.Filter
}

func (f *fakeFilterRepo) AddFilter(ctx context.Context, filter domain.Filter) (domain.Filter, error) {
	filter.ID = int64(len(f.filters) + 1)
	f.filters = append(f.filters, filter)
	return filter, nil
}

func (f *fakeFilterRepo) DeleteFilter(ctx context.Context, id int64) error {
	for i, filter := range f.filters {
		if filter.ID == id {
			f.filters = append(f.filters[:i], f.filters[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeFilterRepo) ListActiveFilters(ctx context.Context, channelID int64) ([]domain.Filter, error) {
	var out []domain.Filter
	for _, filter := range f.filters {
		if filter.ChannelID == channelID && filter.IsActive {
			out = append(out, filter)
		}
	}
	return out, nil
}

type fakeChannelRepo struct {
	channels map[int64]domain.Channel
}

func (f *fakeChannelRepo) AddChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error) {
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeChannelRepo) GetChannel(ctx context.Context, id int64) (domain.Channel, error) {
	ch, ok := f.channels[id]
	if !ok {
		return domain.Channel{}, domain.ErrNotFound
	}
	return ch, nil
}

func (f *fakeChannelRepo) GetChannelByCommentChat(ctx context.Context, chatID int64) (domain.Channel, error) {
	for _, ch := range f.channels {
		if ch.CommentChatID != nil && *ch.CommentChatID == chatID {
			return ch, nil
		}
	}
	return domain.Channel{}, domain.ErrNotFound
}

func (f *fakeChannelRepo) UpdateChannel(ctx context.Context, ch domain.Channel) (domain.Channel, error) {
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeChannelRepo) DeleteChannel(ctx context.Context, id int64) error {
	delete(f.channels, id)
	return nil
}

func (f *fakeChannelRepo) ListChannels(ctx context.Context, kind domain.ChannelListKind) ([]domain.Channel, error) {
	var out []domain.Channel
	for _, ch := range f.channels {
		out = append(out, ch)
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[int64]domain.User
}

func (f *fakeUserRepo) UpsertUser(ctx context.Context, id int64, username string) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		user = domain.User{ID: id, Username: username, Role: domain.UserRoleUser}
		f.users[id] = user
	}
	return user, nil
}

func (f *fakeUserRepo) GetUser(ctx context.Context, id int64) (domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id int64, role domain.UserRole) error {
	user := f.users[id]
	user.Role = role
	f.users[id] = user
	return nil
}

func (f *fakeUserRepo) SetBanned(ctx context.Context, id int64, banned bool) error {
	user, ok := f.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	user.IsBanned = banned
	f.users[id] = user
	return nil
}

type fakeStatRepo struct {
	comments map[int64]int
}

func (f *fakeStatRepo) AddStat(ctx context.Context, stat domain.Stat) (domain.Stat, error) {
	return stat, nil
}

func (f *fakeStatRepo) IncComments(ctx context.Context, channelID int64) error {
	f.comments[channelID]++
	return nil
}

func (f *fakeStatRepo) ListStats(ctx context.Context, channelID int64) ([]domain.Stat, error) {
	return nil, nil
}

type deletedMessage struct {
	chatID    int64
	messageID int
}

type fakeMessenger struct {
	deleted []deletedMessage
	banned  []int64
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 1}, nil
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 1}, nil
}

func (f *fakeMessenger) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 1}, nil
}

func (f *fakeMessenger) SendDocument(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 1}, nil
}

func (f *fakeMessenger) SendFile(ctx context.Context, chatID int64, name string, payload []byte, caption string) (domain.SentMessage, error) {
	return domain.SentMessage{MessageID: 1}, nil
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	f.deleted = append(f.deleted, deletedMessage{chatID: chatID, messageID: messageID})
	return nil
}

func (f *fakeMessenger) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	f.banned = append(f.banned, userID)
	return nil
}

func (f *fakeMessenger) UnbanMember(ctx context.Context, chatID, userID int64) error {
	return nil
}

func newTestModeration(t *testing.T) (*Service, *fakeFilterRepo, *fakeMessenger, *fakeStatRepo, *fakeUserRepo) {
	t.Helper()
	commentChat := int64(777)
	filters := &fakeFilterRepo{}
	channels := &fakeChannelRepo{channels: map[int64]domain.Channel{
		-100: {ID: -100, Name: "Новости", IsActive: true, ModerationEnabled: true, CommentChatID: &commentChat},
	}}
	users := &fakeUserRepo{users: map[int64]domain.User{
		1: {ID: 1, Role: domain.UserRoleAdmin},
		2: {ID: 2, Role: domain.UserRoleUser},
	}}
	stats := &fakeStatRepo{comments: make(map[int64]int)}
	messenger := &fakeMessenger{}
	svc := NewService(filters, channels, users, stats, nil, messenger, []string{"спам"}, zerolog.Nop())
	return svc, filters, messenger, stats, users
}

func TestCheckMatchesProfanityAndFilters(t *testing.T) {
	svc, filters, _, _, _ := newTestModeration(t)
	ctx := context.Background()

	if _, err := svc.AddFilter(ctx, 1, domain.Filter{ChannelID: -100, Keyword: "казино"}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if _, err := svc.AddFilter(ctx, 1, domain.Filter{ChannelID: -100, Regex: `t\.me/\w+`}); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(filters.filters) != 2 {
		t.Fatalf("ожидали два фильтра, получили %d", len(filters.filters))
	}

	cases := []struct {
		text   string
		delete bool
	}{
		{"обычное сообщение", false},
		{"тут СПАМ капсом", true},
		{"лучшее КАЗИНО города", true},
		{"заходи на t.me/scam", true},
	}
	for _, c := range cases {
		verdict, err := svc.Check(ctx, -100, c.text)
		if err != nil {
			t.Fatalf("не ожидали ошибку для %q: %v", c.text, err)
		}
		if verdict.Delete != c.delete {
			t.Fatalf("для %q ожидали delete=%v, получили %+v", c.text, c.delete, verdict)
		}
	}
}

func TestModerateCommentDeletesViolation(t *testing.T) {
	svc, _, messenger, stats, _ := newTestModeration(t)
	ctx := context.Background()

	verdict, err := svc.ModerateComment(ctx, 777, 10, 2, "это спам")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !verdict.Delete {
		t.Fatal("нарушение должно удаляться")
	}
	if len(messenger.deleted) != 1 || messenger.deleted[0].messageID != 10 {
		t.Fatalf("ожидали удаление сообщения 10, получили %+v", messenger.deleted)
	}
	if stats.comments[-100] != 0 {
		t.Fatal("удалённое сообщение не должно попадать в статистику")
	}
}

func TestModerateCommentCountsCleanMessage(t *testing.T) {
	svc, _, messenger, stats, _ := newTestModeration(t)

	verdict, err := svc.ModerateComment(context.Background(), 777, 11, 2, "хорошая новость")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if verdict.Delete || len(messenger.deleted) != 0 {
		t.Fatal("чистое сообщение не должно удаляться")
	}
	if stats.comments[-100] != 1 {
		t.Fatal("чистое сообщение должно учитываться в статистике")
	}
}

func TestModerateCommentSkipsModerators(t *testing.T) {
	svc, _, messenger, _, _ := newTestModeration(t)

	verdict, err := svc.ModerateComment(context.Background(), 777, 12, 1, "спам от админа")
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if verdict.Delete || len(messenger.deleted) != 0 {
		t.Fatal("сообщения модераторов не проверяются")
	}
}

func TestBanUserRestrictsCommentChats(t *testing.T) {
	svc, _, messenger, _, users := newTestModeration(t)

	if err := svc.BanUser(context.Background(), 1, 2, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if user, _ := users.GetUser(context.Background(), 2); !user.IsBanned {
		t.Fatal("пользователь должен стать забаненным")
	}
	if len(messenger.banned) != 1 || messenger.banned[0] != 2 {
		t.Fatalf("бан должен применяться в чатах обсуждений, получили %+v", messenger.banned)
	}
}

func TestAddFilterRejectsBrokenRegex(t *testing.T) {
	svc, _, _, _, _ := newTestModeration(t)

	if _, err := svc.AddFilter(context.Background(), 1, domain.Filter{ChannelID: -100, Regex: "("}); err == nil {
		t.Fatal("битое регулярное выражение должно отвергаться")
	}
}
