package bot

import (
	"context"
	"testing"
)

func noopRoute(ctx context.Context, s *Session, in Input) {}

func TestRouterResolveCallbackPrecedence(t *testing.T) {
	r := NewRouter()

	var got string
	r.HandlePrefix(StatePostAwaitChannel, cbChannelPrefix, func(ctx context.Context, s *Session, in Input) {
		got = "pick:" + in.Payload
	})
	r.HandlePrefix(StateAny, cbChannelPrefix, func(ctx context.Context, s *Session, in Input) {
		got = "details:" + in.Payload
	})
	r.Handle(StateAny, cbMainMenu, noopRoute)

	fn, payload, ok := r.ResolveCallback(StatePostAwaitChannel, "channel_42")
	if !ok {
		t.Fatal("ожидали маршрут для выбора канала")
	}
	fn(context.Background(), &Session{}, Input{Payload: payload})
	if got != "pick:42" {
		t.Fatalf("в состоянии выбора канала должен выигрывать маршрут состояния, получили %q", got)
	}

	fn, payload, ok = r.ResolveCallback(StateIdle, "channel_42")
	if !ok {
		t.Fatal("ожидали маршрут для карточки канала")
	}
	fn(context.Background(), &Session{}, Input{Payload: payload})
	if got != "details:42" {
		t.Fatalf("вне диалога должен работать общий маршрут, получили %q", got)
	}

	if _, _, ok := r.ResolveCallback(StateIdle, "unknown_button"); ok {
		t.Fatal("неизвестная кнопка не должна находить маршрут")
	}
}

func TestRouterResolveTextFallback(t *testing.T) {
	r := NewRouter()
	r.Handle(StateChannelAwaitID, TriggerText, noopRoute)

	if _, ok := r.ResolveText(StateChannelAwaitID); !ok {
		t.Fatal("ожидали текстовый маршрут состояния")
	}
	if _, ok := r.ResolveText(StateIdle); ok {
		t.Fatal("для idle текстовый маршрут не регистрировался")
	}
}

func TestRouterValidate(t *testing.T) {
	r := NewRouter()
	r.Handle(StateIdle, cbMainMenu, noopRoute)
	r.HandlePrefix(StateAny, cbPostPrefix, noopRoute)
	if err := r.Validate(); err != nil {
		t.Fatalf("корректная таблица не должна падать: %v", err)
	}

	bad := NewRouter()
	bad.Handle(StateIdle, cbMainMenu, nil)
	if err := bad.Validate(); err == nil {
		t.Fatal("nil-обработчик должен быть отвергнут")
	}

	dup := NewRouter()
	dup.HandlePrefix(StateAny, cbPostPrefix, noopRoute)
	dup.HandlePrefix(StateAny, cbPostPrefix, noopRoute)
	if err := dup.Validate(); err == nil {
		t.Fatal("дубль префикса должен быть отвергнут")
	}
}

func TestRouterValidateRejectsOrphanState(t *testing.T) {
	r := NewRouter()
	r.Handle(StateBanAwaitUser, TriggerText, noopRoute)
	r.HandlePrefix(StatePostAwaitChannel, cbChannelPrefix, noopRoute)

	if err := r.Validate(StateBanAwaitUser, StatePostAwaitChannel); err != nil {
		t.Fatalf("состояния с маршрутами не должны отвергаться: %v", err)
	}
	if err := r.Validate(StateBanAwaitUser, StateFilterAwaitRegex); err == nil {
		t.Fatal("состояние без маршрутов должно быть отвергнуто")
	}
}

func TestHandlerRoutingTableIsValid(t *testing.T) {
	h := &Handler{}
	if err := h.buildRouter().Validate(flowStates()...); err != nil {
		t.Fatalf("боевая таблица маршрутов не проходит проверку: %v", err)
	}
}

func TestHandlerRoutingTableCoversPostActions(t *testing.T) {
	h := &Handler{}
	r := h.buildRouter()

	if fn, _, ok := r.ResolveCallback(StateIdle, "publish_now_7"); !ok || fn == nil {
		t.Fatal("кнопка немедленной публикации должна находить маршрут")
	}
	if fn, _, ok := r.ResolveCallback(StatePostPublishConfirm, cbYes); !ok || fn == nil {
		t.Fatal("подтверждение немедленной публикации должно находить маршрут")
	}
	if fn, payload, ok := r.ResolveCallback(StatePostEditAwaitChannel, "channel_5"); !ok || fn == nil || payload != "5" {
		t.Fatal("выбор нового канала поста должен находить маршрут состояния")
	}
	if _, ok := r.ResolveText(StatePostAwaitDeleteID); !ok {
		t.Fatal("ввод ID удаляемого поста должен находить маршрут")
	}
	if fn, _, ok := r.ResolveCallback(StateIdle, cbPostsCancelled); !ok || fn == nil {
		t.Fatal("подборка отменённых постов должна находить маршрут")
	}
}
