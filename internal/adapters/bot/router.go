package bot

import (
	"context"
	"fmt"
	"strings"
)

// Input — разобранный апдейт, переданный обработчику маршрута.
type Input struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
	// Payload — параметр кнопки после префикса, например ID канала.
	Payload string
	// Attachment — file_id вложения из сообщения, если оно было.
	PhotoID    string
	VideoID    string
	DocumentID string
	// Источник пересланного сообщения: шаги, ждущие ID, принимают
	// пересылку вместо набранного числа.
	ForwardChatID   int64
	ForwardChatType string
}

// RouteFunc обрабатывает событие диалога.
type RouteFunc func(ctx context.Context, s *Session, in Input)

type routeKey struct {
	state   State
	trigger Trigger
}

// Router сопоставляет пару (состояние, событие) с обработчиком.
// Кнопки с параметром регистрируются по префиксу.
type Router struct {
	routes   map[routeKey]RouteFunc
	prefixes []prefixRoute
}

type prefixRoute struct {
	state  State
	prefix string
	fn     RouteFunc
}

// NewRouter создаёт пустую таблицу маршрутов.
func NewRouter() *Router {
	return &Router{routes: make(map[routeKey]RouteFunc)}
}

// Handle регистрирует обработчик события в состоянии. StateAny — в любом.
func (r *Router) Handle(state State, trigger Trigger, fn RouteFunc) {
	r.routes[routeKey{state: state, trigger: trigger}] = fn
}

// HandlePrefix регистрирует обработчик кнопок вида "<prefix><payload>".
func (r *Router) HandlePrefix(state State, prefix string, fn RouteFunc) {
	r.prefixes = append(r.prefixes, prefixRoute{state: state, prefix: prefix, fn: fn})
}

// ResolveCallback ищет обработчик нажатой кнопки. Payload префиксных
// кнопок кладётся в Input.
func (r *Router) ResolveCallback(state State, data string) (RouteFunc, string, bool) {
	if fn, ok := r.routes[routeKey{state: state, trigger: Trigger(data)}]; ok {
		return fn, "", true
	}
	if fn, ok := r.routes[routeKey{state: StateAny, trigger: Trigger(data)}]; ok {
		return fn, "", true
	}
	for _, pr := range r.prefixes {
		if pr.state != state && pr.state != StateAny {
			continue
		}
		if strings.HasPrefix(data, pr.prefix) {
			return pr.fn, strings.TrimPrefix(data, pr.prefix), true
		}
	}
	return nil, "", false
}

// ResolveText ищет обработчик свободного ввода в состоянии.
func (r *Router) ResolveText(state State) (RouteFunc, bool) {
	if fn, ok := r.routes[routeKey{state: state, trigger: TriggerText}]; ok {
		return fn, true
	}
	fn, ok := r.routes[routeKey{state: StateAny, trigger: TriggerText}]
	return fn, ok
}

// Validate проверяет таблицу на явные дефекты: nil-обработчики, пустые
// префиксы и состояния без единого маршрута. Вызывается один раз на старте.
func (r *Router) Validate(states ...State) error {
	for key, fn := range r.routes {
		if fn == nil {
			return fmt.Errorf("маршрут (%s, %s) без обработчика", key.state, key.trigger)
		}
		if key.trigger == "" {
			return fmt.Errorf("маршрут состояния %s с пустым событием", key.state)
		}
	}
	seen := make(map[routeKey]bool, len(r.prefixes))
	for _, pr := range r.prefixes {
		if pr.fn == nil {
			return fmt.Errorf("префикс %q без обработчика", pr.prefix)
		}
		if pr.prefix == "" {
			return fmt.Errorf("пустой префикс в состоянии %s", pr.state)
		}
		key := routeKey{state: pr.state, trigger: Trigger(pr.prefix)}
		if seen[key] {
			return fmt.Errorf("префикс %q зарегистрирован дважды в состоянии %s", pr.prefix, pr.state)
		}
		seen[key] = true
	}
	for _, state := range states {
		if !r.ownsState(state) {
			return fmt.Errorf("состояние %s без единого маршрута: диалог в нём застрянет", state)
		}
	}
	return nil
}

func (r *Router) ownsState(state State) bool {
	for key := range r.routes {
		if key.state == state {
			return true
		}
	}
	for _, pr := range r.prefixes {
		if pr.state == state {
			return true
		}
	}
	return false
}
