package bot

import (
	"strings"
	"testing"
	"time"

	"tg-channel-bot/internal/domain"
)

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, total, want int
	}{
		{0, 0, 0},
		{-1, 12, 0},
		{1, 12, 1},
		{5, 12, 2},
		{2, 11, 2},
		{0, 5, 0},
		{1, 5, 0},
	}
	for _, c := range cases {
		if got := clampPage(c.page, c.total); got != c.want {
			t.Fatalf("clampPage(%d, %d): ожидали %d, получили %d", c.page, c.total, c.want, got)
		}
	}
}

func TestPageBounds(t *testing.T) {
	start, end := pageBounds(1, 12)
	if start != 5 || end != 10 {
		t.Fatalf("ожидали [5,10), получили [%d,%d)", start, end)
	}
	start, end = pageBounds(2, 12)
	if start != 10 || end != 12 {
		t.Fatalf("последняя страница неполная: ожидали [10,12), получили [%d,%d)", start, end)
	}
}

func TestChannelsListKeyboardPagination(t *testing.T) {
	channels := make([]domain.Channel, 12)
	for i := range channels {
		channels[i] = domain.Channel{ID: int64(i + 1), Name: "Канал", IsActive: true}
	}

	first := channelsListKeyboard(channels, 0, domain.ChannelsAll)
	// Переключатель выборки + 5 каналов + навигация + добавить + главное меню.
	if len(first.InlineKeyboard) != 9 {
		t.Fatalf("ожидали 9 рядов на первой странице, получили %d", len(first.InlineKeyboard))
	}

	last := channelsListKeyboard(channels, 2, domain.ChannelsAll)
	// Переключатель + 2 канала + навигация назад + добавить + главное меню.
	if len(last.InlineKeyboard) != 6 {
		t.Fatalf("ожидали 6 рядов на последней странице, получили %d", len(last.InlineKeyboard))
	}
}

func TestChannelsListKeyboardHasKindSwitch(t *testing.T) {
	kb := channelsListKeyboard(nil, 0, domain.ChannelsInactive)
	row := kb.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("ожидали три выборки каналов, получили %d", len(row))
	}
	if *row[2].CallbackData != cbChannelsInactive {
		t.Fatalf("третья кнопка должна открывать спящие каналы, получили %q", *row[2].CallbackData)
	}
	if *row[0].CallbackData != cbChannelsAll || *row[1].CallbackData != cbChannelsActive {
		t.Fatal("переключатель должен вести на все и активные каналы")
	}
}

func TestPostsListKeyboardHasStatusSwitch(t *testing.T) {
	kb := postsListKeyboard(nil, 0, domain.PostStatusPublished)
	row := kb.InlineKeyboard[0]
	if len(row) != 3 {
		t.Fatalf("ожидали три подборки постов, получили %d", len(row))
	}
	if *row[1].CallbackData != cbPostsPublished {
		t.Fatalf("вторая кнопка должна открывать опубликованные, получили %q", *row[1].CallbackData)
	}

	var hasDeleteByID bool
	for _, r := range kb.InlineKeyboard {
		for _, btn := range r {
			if btn.CallbackData != nil && *btn.CallbackData == cbRemovePostByID {
				hasDeleteByID = true
			}
		}
	}
	if !hasDeleteByID {
		t.Fatal("в списке постов должна быть кнопка удаления по ID")
	}
}

func TestPostDetailsKeyboardByStatus(t *testing.T) {
	pending := postDetailsKeyboard(domain.Post{ID: 3, Status: domain.PostStatusPending})
	var hasPublishNow, hasEditChannel bool
	for _, row := range pending.InlineKeyboard {
		for _, btn := range row {
			if btn.CallbackData == nil {
				continue
			}
			switch *btn.CallbackData {
			case "publish_now_3":
				hasPublishNow = true
			case "edit_channel_3":
				hasEditChannel = true
			}
		}
	}
	if !hasPublishNow {
		t.Fatal("у ожидающего поста должна быть кнопка немедленной публикации")
	}
	if !hasEditChannel {
		t.Fatal("у ожидающего поста должна быть кнопка смены канала")
	}

	published := postDetailsKeyboard(domain.Post{ID: 3, Status: domain.PostStatusPublished})
	// Удаление + навигация, правки недоступны.
	if len(published.InlineKeyboard) != 2 {
		t.Fatalf("у опубликованного поста остаётся 2 ряда кнопок, получили %d", len(published.InlineKeyboard))
	}
}

func TestPostDetailsText(t *testing.T) {
	publish := time.Date(2026, 9, 1, 12, 30, 0, 0, time.UTC)
	post := domain.Post{
		ID:          3,
		ChannelID:   -100,
		Title:       "Анонс",
		Text:        "Текст поста",
		Photos:      []string{"file1"},
		PublishTime: publish,
		Status:      domain.PostStatusPending,
	}
	text := postDetailsText(post, "Новости", time.UTC)
	for _, want := range []string{"Анонс", "Новости", "ожидает", "Фото: 1", "01.09.2026 12:30"} {
		if !strings.Contains(text, want) {
			t.Fatalf("в карточке нет %q:\n%s", want, text)
		}
	}
}
