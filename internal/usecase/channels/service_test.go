package channels

import (
	"context"
	"errors"
	"testing"

	"tg-channel-bot/internal/domain"
)

type fakeChannelRepo struct {
	channels map[int64]domain.Channel
}

func newFakeChannelRepo() *fakeChannelRepo {
	return &fakeChannelRepo{channels: make(map[int64]domain.Channel)}
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
	if _, ok := f.channels[ch.ID]; !ok {
		return domain.Channel{}, domain.ErrNotFound
	}
	f.channels[ch.ID] = ch
	return ch, nil
}

func (f *fakeChannelRepo) DeleteChannel(ctx context.Context, id int64) error {
	if _, ok := f.channels[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.channels, id)
	return nil
}

func (f *fakeChannelRepo) ListChannels(ctx context.Context, kind domain.ChannelListKind) ([]domain.Channel, error) {
	var out []domain.Channel
	for _, ch := range f.channels {
		switch kind {
		case domain.ChannelsActive:
			if !ch.IsActive {
				continue
			}
		case domain.ChannelsInactive:
			if ch.IsActive {
				continue
			}
		}
		out = append(out, ch)
	}
	return out, nil
}

func TestParseChannelID(t *testing.T) {
	cases := map[string]int64{
		"-1001234567890": -1001234567890,
		" 42 ":           42,
		"abc":            0,
		"0":              0,
		"":               0,
	}
	for input, want := range cases {
		got, err := ParseChannelID(input)
		if want == 0 {
			if !errors.Is(err, ErrChannelIDInvalid) {
				t.Fatalf("для %q ожидали ErrChannelIDInvalid, получили %v", input, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("не ожидали ошибку для %q: %v", input, err)
		}
		if got != want {
			t.Fatalf("для %q ожидали %d, получили %d", input, want, got)
		}
	}
}

func TestAddChannelAppliesOperatorChoices(t *testing.T) {
	svc := NewService(newFakeChannelRepo(), nil)
	ctx := context.Background()

	channel, err := svc.AddChannel(ctx, 1, -100, "  Новости  ", nil, true)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.Name != "Новости" {
		t.Fatalf("название должно обрезаться, получили %q", channel.Name)
	}
	if !channel.IsActive || !channel.ModerationEnabled {
		t.Fatal("канал должен быть активен с выбранной модерацией")
	}
	if channel.NotificationChatID != nil {
		t.Fatal("без выбора чат уведомлений остаётся пустым")
	}

	notify := int64(555)
	channel, err = svc.AddChannel(ctx, 1, -101, "Анонсы", &notify, false)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.ModerationEnabled {
		t.Fatal("выбор «без модерации» должен сохраняться")
	}
	if channel.NotificationChatID == nil || *channel.NotificationChatID != 555 {
		t.Fatal("чат уведомлений должен сохраняться при добавлении")
	}

	if _, err := svc.AddChannel(ctx, 1, -102, "   ", nil, true); !errors.Is(err, ErrNameEmpty) {
		t.Fatalf("пустое имя должно отвергаться, получили %v", err)
	}
}

func TestSetActiveAndModeration(t *testing.T) {
	repo := newFakeChannelRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.AddChannel(ctx, 1, -100, "Новости", nil, true); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	channel, err := svc.SetActive(ctx, 1, -100, false)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.IsActive {
		t.Fatal("канал должен выключаться")
	}

	channel, err = svc.SetModeration(ctx, 1, -100, false)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.ModerationEnabled {
		t.Fatal("модерация должна выключаться")
	}

	list, err := svc.ListChannels(ctx, domain.ChannelsInactive)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ожидали один выключенный канал, получили %d", len(list))
	}
}

func TestSetCommentChatAndClear(t *testing.T) {
	repo := newFakeChannelRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.AddChannel(ctx, 1, -100, "Новости", nil, true); err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}

	chat := int64(777)
	channel, err := svc.SetCommentChat(ctx, 1, -100, &chat)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.CommentChatID == nil || *channel.CommentChatID != 777 {
		t.Fatal("чат обсуждений должен привязываться")
	}

	channel, err = svc.SetCommentChat(ctx, 1, -100, nil)
	if err != nil {
		t.Fatalf("не ожидали ошибку: %v", err)
	}
	if channel.CommentChatID != nil {
		t.Fatal("nil должен отвязывать чат")
	}
}
