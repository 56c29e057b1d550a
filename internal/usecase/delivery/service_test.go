package delivery

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tg-channel-bot/internal/domain"
)

type fakePostRepo struct {
	posts map[int64]domain.Post
}

func (f *fakePostRepo) AddPost(ctx context.Context, post domain.Post) (domain.Post, error) {
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) GetPost(ctx context.Context, id int64) (domain.Post, error) {
	post, ok := f.posts[id]
	if !ok {
		return domain.Post{}, domain.ErrNotFound
	}
	return post, nil
}

func (f *fakePostRepo) UpdatePost(ctx context.Context, post domain.Post) (domain.Post, error) {
	f.posts[post.ID] = post
	return post, nil
}

func (f *fakePostRepo) DeletePost(ctx context.Context, id int64) error {
	delete(f.posts, id)
	return nil
}

func (f *fakePostRepo) ListPostsByStatus(ctx context.Context, status domain.PostStatus) ([]domain.Post, error) {
	return nil, nil
}

func (f *fakePostRepo) MarkPublished(ctx context.Context, id int64, messageID int, publishedAt time.Time) (bool, error) {
	post, ok := f.posts[id]
	if !ok || post.Status != domain.PostStatusPending {
		return false, nil
	}
	post.Status = domain.PostStatusPublished
	post.MessageID = &messageID
	post.Published = &publishedAt
	f.posts[id] = post
	return true, nil
}

func (f *fakePostRepo) MarkCancelled(ctx context.Context, id int64) error {
	post, ok := f.posts[id]
	if !ok {
		return domain.ErrNotFound
	}
	post.Status = domain.PostStatusCancelled
	f.posts[id] = post
	return nil
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
	return nil, nil
}

type sentCall struct {
	kind   string
	chatID int64
	text   string
}

type fakeMessenger struct {
	calls   []sentCall
	failAll bool
}

func (f *fakeMessenger) record(kind string, chatID int64, text string) (domain.SentMessage, error) {
	if f.failAll {
		return domain.SentMessage{}, errors.New("сеть недоступна")
	}
	f.calls = append(f.calls, sentCall{kind: kind, chatID: chatID, text: text})
	return domain.SentMessage{MessageID: 100 + len(f.calls)}, nil
}

func (f *fakeMessenger) SendText(ctx context.Context, chatID int64, text string) (domain.SentMessage, error) {
	return f.record("text", chatID, text)
}

func (f *fakeMessenger) SendPhoto(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return f.record("photo", chatID, caption)
}

func (f *fakeMessenger) SendVideo(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return f.record("video", chatID, caption)
}

func (f *fakeMessenger) SendDocument(ctx context.Context, chatID int64, fileID, caption string) (domain.SentMessage, error) {
	return f.record("document", chatID, caption)
}

func (f *fakeMessenger) SendFile(ctx context.Context, chatID int64, name string, payload []byte, caption string) (domain.SentMessage, error) {
	return f.record("file", chatID, caption)
}

func (f *fakeMessenger) DeleteMessage(ctx context.Context, chatID int64, messageID int) error {
	return nil
}

func (f *fakeMessenger) BanMember(ctx context.Context, chatID, userID int64, until time.Time) error {
	return nil
}

func (f *fakeMessenger) UnbanMember(ctx context.Context, chatID, userID int64) error {
	return nil
}

func newTestDelivery(post domain.Post, channel domain.Channel) (*Service, *fakePostRepo, *fakeMessenger) {
	posts := &fakePostRepo{posts: map[int64]domain.Post{post.ID: post}}
	channels := &fakeChannelRepo{channels: map[int64]domain.Channel{channel.ID: channel}}
	messenger := &fakeMessenger{}
	svc := NewService(posts, channels, nil, messenger, zerolog.Nop())
	return svc, posts, messenger
}

func pendingPost() domain.Post {
	return domain.Post{
		ID:          1,
		ChannelID:   -100,
		Text:        "текст",
		PublishTime: time.Now(),
		Status:      domain.PostStatusPending,
	}
}

func TestDeliverPublishesPendingPost(t *testing.T) {
	svc, posts, messenger := newTestDelivery(pendingPost(), domain.Channel{ID: -100, Name: "Новости", IsActive: true})

	result, err := svc.Deliver(context.Background(), 1)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !result.Delivered || result.Status != domain.PostStatusPublished {
		t.Fatalf("ожидали публикацию, получили %+v", result)
	}
	if len(messenger.calls) != 1 || messenger.calls[0].kind != "text" {
		t.Fatalf("ожидали одну текстовую отправку, получили %+v", messenger.calls)
	}
	post, _ := posts.GetPost(context.Background(), 1)
	if post.Status != domain.PostStatusPublished || post.MessageID == nil {
		t.Fatal("пост должен стать published с ID сообщения")
	}
}

func TestDeliverSkipsProcessedPost(t *testing.T) {
	post := pendingPost()
	post.Status = domain.PostStatusPublished
	svc, _, messenger := newTestDelivery(post, domain.Channel{ID: -100, IsActive: true})

	result, err := svc.Deliver(context.Background(), 1)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if result.Delivered {
		t.Fatal("обработанный пост не должен доставляться повторно")
	}
	if len(messenger.calls) != 0 {
		t.Fatal("повторная доставка не должна слать сообщения")
	}
}

func TestDeliverPrefersDocumentOverPhoto(t *testing.T) {
	post := pendingPost()
	post.Document = "doc1"
	post.Photos = []string{"photo1"}
	post.Videos = []string{"video1"}
	svc, _, messenger := newTestDelivery(post, domain.Channel{ID: -100, IsActive: true})

	if _, err := svc.Deliver(context.Background(), 1); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if messenger.calls[0].kind != "document" {
		t.Fatalf("документ важнее фото и видео, отправили %s", messenger.calls[0].kind)
	}
}

func TestDeliverSendsAllAttachments(t *testing.T) {
	post := pendingPost()
	post.Photos = []string{"p1", "p2", "p3"}
	post.Videos = []string{"v1"}
	svc, posts, messenger := newTestDelivery(post, domain.Channel{ID: -100, IsActive: true})

	result, err := svc.Deliver(context.Background(), 1)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if !result.Delivered {
		t.Fatalf("ожидали публикацию, получили %+v", result)
	}
	// Головное фото с подписью и три досылки: два фото и видео.
	if len(messenger.calls) != 4 {
		t.Fatalf("ожидали 4 отправки, получили %+v", messenger.calls)
	}
	if messenger.calls[0].kind != "photo" || messenger.calls[0].text == "" {
		t.Fatalf("первым уходит фото с подписью, получили %+v", messenger.calls[0])
	}
	for _, call := range messenger.calls[1:3] {
		if call.kind != "photo" || call.text != "" {
			t.Fatalf("досылки фото идут без подписи, получили %+v", call)
		}
	}
	if messenger.calls[3].kind != "video" {
		t.Fatalf("видео досылается после фото, получили %+v", messenger.calls[3])
	}

	stored, _ := posts.GetPost(context.Background(), 1)
	if stored.MessageID == nil || *stored.MessageID != 101 {
		t.Fatal("ID сообщения публикации берётся из головной отправки")
	}
}

func TestDeliverSendsDocumentThenMediaFollowups(t *testing.T) {
	post := pendingPost()
	post.Document = "doc1"
	post.Photos = []string{"p1"}
	post.Videos = []string{"v1"}
	svc, _, messenger := newTestDelivery(post, domain.Channel{ID: -100, IsActive: true})

	if _, err := svc.Deliver(context.Background(), 1); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	kinds := make([]string, 0, len(messenger.calls))
	for _, call := range messenger.calls {
		kinds = append(kinds, call.kind)
	}
	want := []string{"document", "photo", "video"}
	if len(kinds) != len(want) {
		t.Fatalf("ожидали отправки %v, получили %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("ожидали отправки %v, получили %v", want, kinds)
		}
	}
}

func TestDeliverCancelsOnTransportFailure(t *testing.T) {
	svc, posts, messenger := newTestDelivery(pendingPost(), domain.Channel{ID: -100, IsActive: true})
	messenger.failAll = true

	result, err := svc.Deliver(context.Background(), 1)
	if err != nil {
		t.Fatalf("сбой транспорта не должен быть ошибкой доставки: %v", err)
	}
	if result.Delivered || result.Status != domain.PostStatusCancelled {
		t.Fatalf("ожидали отмену, получили %+v", result)
	}
	post, _ := posts.GetPost(context.Background(), 1)
	if post.Status != domain.PostStatusCancelled {
		t.Fatal("недоставленный пост должен стать cancelled")
	}
}

func TestDeliverCancelsForInactiveChannel(t *testing.T) {
	svc, posts, messenger := newTestDelivery(pendingPost(), domain.Channel{ID: -100, IsActive: false})

	result, err := svc.Deliver(context.Background(), 1)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if result.Status != domain.PostStatusCancelled {
		t.Fatalf("пост выключенного канала должен отменяться, получили %+v", result)
	}
	if len(messenger.calls) != 0 {
		t.Fatal("в выключенный канал ничего не отправляется")
	}
	post, _ := posts.GetPost(context.Background(), 1)
	if post.Status != domain.PostStatusCancelled {
		t.Fatal("статус в базе должен стать cancelled")
	}
}

func TestDeliverNotifiesServiceChat(t *testing.T) {
	notifyChat := int64(555)
	svc, _, messenger := newTestDelivery(pendingPost(), domain.Channel{
		ID:                 -100,
		Name:               "Новости",
		IsActive:           true,
		NotificationChatID: &notifyChat,
	})

	if _, err := svc.Deliver(context.Background(), 1); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(messenger.calls) != 2 {
		t.Fatalf("ожидали публикацию и уведомление, получили %d отправок", len(messenger.calls))
	}
	if messenger.calls[1].chatID != notifyChat {
		t.Fatalf("уведомление должно уходить в служебный чат, ушло в %d", messenger.calls[1].chatID)
	}
}
