// Package bot implements the Telegram side of the storefront: the per-chat
// conversational session, the pure state-machine reducer that interprets
// inbound events, and the runner that renders the reducer's effects through
// the Telegram Bot API.
package bot

import (
	"sync"

	"github.com/akbarovs/go-storefront-bot/internal/domain"
)

// State is the bot's position in the onboarding/menu flow for one chat.
type State int

const (
	StateSelectLanguage State = iota
	StateInputName
	StateAwaitContact
	StateMenu
	StateMyData
	StateEditName
	StateEditPhone
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateSelectLanguage:
		return "SELECT_LANGUAGE"
	case StateInputName:
		return "INPUT_NAME"
	case StateAwaitContact:
		return "AWAIT_CONTACT"
	case StateMenu:
		return "MENU"
	case StateMyData:
		return "MY_DATA"
	case StateEditName:
		return "EDIT_NAME"
	case StateEditPhone:
		return "EDIT_PHONE"
	default:
		return "UNKNOWN"
	}
}

// Session is the ephemeral conversational state for one chat, owned by the
// bot process. The durable profile and cart snapshots live in storage; the
// session only carries the working copies.
type Session struct {
	ChatID int64
	Name   string
	Phone  string
	Lang   string
	State  State
	Cart   domain.CartItems
}

// SessionStore keeps sessions in memory, keyed by chat id. Sessions are
// process-local by design: losing one only sends the user back through
// /start, where the durable profile rehydrates it.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]Session
}

// NewSessionStore constructs an empty SessionStore.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]Session)}
}

// Load returns the session for chatID and whether one existed.
func (st *SessionStore) Load(chatID int64) (Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[chatID]
	return s, ok
}

// Save stores the session under its chat id.
func (st *SessionStore) Save(s Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ChatID] = s
}
