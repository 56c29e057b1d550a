package bot

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestInputFromMessageCarriesForwardSource(t *testing.T) {
	h := &Handler{}
	msg := &tgbotapi.Message{
		MessageID: 5,
		Chat:      &tgbotapi.Chat{ID: 10},
		From:      &tgbotapi.User{ID: 7},
		ForwardFromChat: &tgbotapi.Chat{
			ID:   -1001234567890,
			Type: "channel",
		},
	}

	in := h.inputFromMessage(msg)
	if in.ForwardChatID != -1001234567890 {
		t.Fatalf("ID пересланного чата потерян, получили %d", in.ForwardChatID)
	}
	if in.ForwardChatType != "channel" {
		t.Fatalf("тип пересланного чата потерян, получили %q", in.ForwardChatType)
	}
}

func TestChannelIDFromInput(t *testing.T) {
	id, err := channelIDFromInput(Input{ForwardChatID: -1001, ForwardChatType: "channel"})
	if err != nil || id != -1001 {
		t.Fatalf("пересылка из канала должна давать его ID, получили %d, %v", id, err)
	}

	if _, err := channelIDFromInput(Input{ForwardChatID: -2002, ForwardChatType: "supergroup"}); err == nil {
		t.Fatal("пересылка не из канала должна отвергаться")
	}

	id, err = channelIDFromInput(Input{Text: "-1003"})
	if err != nil || id != -1003 {
		t.Fatalf("набранный ID должен приниматься, получили %d, %v", id, err)
	}

	if _, err := channelIDFromInput(Input{Text: "не число"}); err == nil {
		t.Fatal("мусорный ввод должен отвергаться")
	}
}

func TestCommentChatIDFromInput(t *testing.T) {
	chatID, ok := commentChatIDFromInput(Input{ForwardChatID: -2002, ForwardChatType: "supergroup"})
	if !ok || chatID == nil || *chatID != -2002 {
		t.Fatal("пересылка из группы обсуждений должна приниматься")
	}

	if _, ok := commentChatIDFromInput(Input{ForwardChatID: -1001, ForwardChatType: "channel"}); ok {
		t.Fatal("пересылка из канала не задаёт чат обсуждений")
	}

	chatID, ok = commentChatIDFromInput(Input{Text: "-"})
	if !ok || chatID != nil {
		t.Fatal("«-» должен означать отвязку")
	}
}
