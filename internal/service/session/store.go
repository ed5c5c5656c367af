package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sedanonpc/ddcore/internal/model/chat"
)

var ErrSessionNotFound = errors.New("session not found")

// historyLimit bounds per-session history; the oldest message is evicted
// first when an append would exceed it.
const historyLimit = 10

// Store holds per-session conversation state in memory. Sessions are
// created lazily on first write and live for the process lifetime; the map
// is keyed so a TTL reaper can be bolted on later without changing callers.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
}

// entry carries its own mutex so appends to the same session serialize
// without different sessions contending. The store lock covers only map
// lookup and insert.
type entry struct {
	mu      sync.Mutex
	created time.Time
	updated time.Time
	history []chat.Message
}

// NewStore bootstraps the in-memory session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*entry)}
}

// GetOrCreate returns the session for id, creating it with empty history on
// first call. Idempotent.
func (s *Store) GetOrCreate(id string) chat.Session {
	e := s.lookupOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(id)
}

// Append records a message in the session's history, creating the session
// if absent. History is trimmed to the most recent messages and the
// session's last-activity timestamp advances.
func (s *Store) Append(id string, message chat.Message) {
	e := s.lookupOrCreate(id)

	e.mu.Lock()
	defer e.mu.Unlock()

	if message.ID == "" {
		message.ID = uuid.NewString()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now().UTC()
	}

	e.history = append(e.history, message)
	if len(e.history) > historyLimit {
		e.history = append(e.history[:0], e.history[len(e.history)-historyLimit:]...)
	}
	e.updated = time.Now().UTC()
}

// Get retrieves a session by identifier. Read-only: a miss reports
// ErrSessionNotFound and never creates the session.
func (s *Store) Get(id string) (chat.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot(id), nil
}

func (s *Store) lookupOrCreate(id string) *entry {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if ok {
		return e
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.sessions[id]; ok {
		return e
	}
	now := time.Now().UTC()
	e = &entry{created: now, updated: now, history: make([]chat.Message, 0, historyLimit)}
	s.sessions[id] = e
	return e
}

// snapshot copies the entry so callers never alias the live history slice.
// Caller holds e.mu.
func (e *entry) snapshot(id string) chat.Session {
	history := make([]chat.Message, len(e.history))
	copy(history, e.history)
	return chat.Session{
		ID:           id,
		Messages:     history,
		CreatedAt:    e.created,
		LastActivity: e.updated,
	}
}
