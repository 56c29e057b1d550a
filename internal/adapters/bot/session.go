package bot

import (
	"sync"
	"time"

	"tg-channel-bot/internal/domain"
)

// ChannelDraft — заготовка канала, собираемая по шагам диалога.
type ChannelDraft struct {
	ID           int64
	Name         string
	NotifyChatID *int64
}

// PostDraft — заготовка поста, собираемая по шагам диалога.
type PostDraft struct {
	ChannelID   int64
	Title       string
	Text        string
	Photos      []string
	Videos      []string
	Document    string
	PublishTime time.Time
}

// FilterDraft — заготовка фильтра модерации.
type FilterDraft struct {
	Keyword string
	Regex   string
}

// EditField — редактируемое поле поста.
type EditField string

const (
	EditFieldTitle EditField = "title"
	EditFieldText  EditField = "text"
	EditFieldTime  EditField = "time"
	EditFieldMedia EditField = "media"
)

// Session — диалоговое состояние одного администратора. Типизированные
// поля вместо открытой карты: компилятор ловит опечатки в ключах.
type Session struct {
	UserID int64
	ChatID int64
	State  State

	// Якорное сообщение меню: бот правит его вместо рассылки новых.
	MenuMessageID int

	// Контекст списков. ListView — какой список сейчас на якоре,
	// от него зависят кнопки перелистывания. PostFilter — статус
	// текущей подборки постов, пустой означает pending.
	Page       int
	ListKind   domain.ChannelListKind
	PostFilter domain.PostStatus
	ListView   ListView

	// Контекст текущего объекта.
	ChannelID int64
	PostID    int64
	EditField EditField

	ChannelDraft ChannelDraft
	PostDraft    PostDraft
	FilterDraft  FilterDraft

	UpdatedAt time.Time
}

// ListView — список, отображаемый якорным сообщением.
type ListView string

const (
	ListViewNone     ListView = ""
	ListViewChannels ListView = "channels"
	ListViewPosts    ListView = "posts"
)

// ResetFlow сбрасывает диалог в главное меню, сохраняя якорное сообщение.
func (s *Session) ResetFlow() {
	s.State = StateIdle
	s.Page = 0
	s.ListKind = domain.ChannelsAll
	s.PostFilter = domain.PostStatusPending
	s.ListView = ListViewNone
	s.ChannelID = 0
	s.PostID = 0
	s.EditField = ""
	s.ChannelDraft = ChannelDraft{}
	s.PostDraft = PostDraft{}
	s.FilterDraft = FilterDraft{}
}

// SessionStore хранит сессии диалогов.
type SessionStore interface {
	Get(userID int64) *Session
	Put(s *Session)
	Delete(userID int64)
}

// MemorySessionStore — потокобезопасное хранилище сессий в памяти.
// Перезапуск процесса обнуляет диалоги, посты при этом не теряются.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

// NewMemorySessionStore создаёт хранилище.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[int64]*Session)}
}

// Get возвращает сессию пользователя, создавая новую при первом обращении.
func (m *MemorySessionStore) Get(userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[userID]; ok {
		return s
	}
	s := &Session{
		UserID:     userID,
		State:      StateIdle,
		ListKind:   domain.ChannelsAll,
		PostFilter: domain.PostStatusPending,
		UpdatedAt:  time.Now(),
	}
	m.sessions[userID] = s
	return s
}

// Put сохраняет сессию.
func (m *MemorySessionStore) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	m.sessions[s.UserID] = s
}

// Delete удаляет сессию пользователя.
func (m *MemorySessionStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
