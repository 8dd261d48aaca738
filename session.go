package identity

import (
	"fmt"
	"sync"
)

// Severity tags a notification record
type Severity = string

const (
	// SeveritySuccess marks a positive outcome message
	SeveritySuccess Severity = "success"
	// SeverityError marks a failure message
	SeverityError Severity = "error"
)

// Notification is a one-shot, severity-tagged user-facing message. It is
// written by service operations and consumed exactly once by the next read.
type Notification struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Reserved session keys. Hosts sharing the underlying store must keep clear
// of these.
const (
	SessionKeyUsername     = "username"
	SessionKeyEmail        = "email"
	SessionKeyLogged       = "islogged"
	SessionKeyNotification = "notification"
)

// SessionStore is the key-value substrate a Session sits on. Ownership of
// the storage mechanism (cookie-backed, server side, in memory) belongs to
// the host application.
type SessionStore interface {
	Set(key string, value any)
	Get(key string) (any, bool)
	Remove(key string)
	Clear()
}

// Session is a typed facade over a per-request session store. A session is
// owned by a single logical request, the facade adds no locking of its own.
type Session struct {
	store SessionStore
}

// NewSession wraps the given store. A nil store gets an in-memory one, which
// is what tests and single-process hosts want anyway.
func NewSession(store SessionStore) *Session {
	if store == nil {
		store = NewMemorySessionStore()
	}
	return &Session{store: store}
}

func (s *Session) Set(key string, value any) {
	s.store.Set(key, value)
}

func (s *Session) Get(key string) (any, bool) {
	return s.store.Get(key)
}

func (s *Session) Remove(key string) {
	s.store.Remove(key)
}

// Clear unsets every key and invalidates the underlying session.
func (s *Session) Clear() {
	s.store.Clear()
}

// SetNotification stores exactly one notification record, overwriting any
// prior unread one.
func (s *Session) SetNotification(severity Severity, message string) {
	s.store.Set(SessionKeyNotification, Notification{
		Severity: severity,
		Message:  message,
	})
}

// TakeNotification returns the pending notification and removes it. Callers
// rely on messages being shown once, a second call reports absence.
func (s *Session) TakeNotification() (Notification, bool) {
	raw, ok := s.store.Get(SessionKeyNotification)
	if !ok {
		return Notification{}, false
	}

	s.store.Remove(SessionKeyNotification)

	n, ok := raw.(Notification)
	return n, ok
}

// MarkAuthenticated records a successful login. This is the only writer of
// the logged-in flag.
func (s *Session) MarkAuthenticated(username, email string) {
	s.store.Set(SessionKeyUsername, username)
	s.store.Set(SessionKeyEmail, email)
	s.store.Set(SessionKeyLogged, true)
}

// ClearAuthentication unsets the authentication keys without touching the
// rest of the session.
func (s *Session) ClearAuthentication() {
	s.store.Remove(SessionKeyUsername)
	s.store.Remove(SessionKeyEmail)
	s.store.Remove(SessionKeyLogged)
}

// IsLoggedIn reports whether a successful login marked this session.
func (s *Session) IsLoggedIn() bool {
	raw, ok := s.store.Get(SessionKeyLogged)
	if !ok {
		return false
	}

	logged, ok := raw.(bool)
	return ok && logged
}

// Username returns the authenticated username, empty when not logged in.
func (s *Session) Username() string {
	return s.getString(SessionKeyUsername)
}

// Email returns the authenticated email, empty when not logged in.
func (s *Session) Email() string {
	return s.getString(SessionKeyEmail)
}

func (s *Session) getString(key string) string {
	raw, ok := s.store.Get(key)
	if !ok {
		return ""
	}

	v, ok := raw.(string)
	if !ok {
		return ""
	}

	return v
}

func (s Session) String() string {
	return fmt.Sprintf("user=%s email=%s logged=%v", s.Username(), s.Email(), s.IsLoggedIn())
}

// MemorySessionStore is a map-backed SessionStore, safe for concurrent use.
type MemorySessionStore struct {
	mu     sync.RWMutex
	values map[string]any
}

var _ SessionStore = (*MemorySessionStore)(nil)

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		values: make(map[string]any),
	}
}

func (m *MemorySessionStore) Set(key string, value any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemorySessionStore) Get(key string) (any, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemorySessionStore) Remove(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

func (m *MemorySessionStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values = make(map[string]any)
}
