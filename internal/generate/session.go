package generate

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/bookforge/internal/book"
)

// State is the lifecycle state of one generation session.
type State string

const (
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StatePartial   State = "partial"
	StateFailed    State = "failed"
)

// Session is one generation attempt for one book request, from language
// detection through finalization. It owns the book model being built.
type Session struct {
	mu sync.Mutex

	ID      string
	Request book.Request

	state    State
	errMsg   string
	language string
	model    *book.Model
	events   []Event
	fraction float64

	CreatedAt time.Time
	updatedAt time.Time
}

func NewSession(req book.Request) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New().String(),
		Request:   req,
		state:     StateRunning,
		CreatedAt: now,
		updatedAt: now,
	}
}

// Report appends a progress event. Fractions are clamped so the stream
// stays monotonically non-decreasing even if a caller computes one low.
func (s *Session) Report(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Fraction < s.fraction {
		ev.Fraction = s.fraction
	} else {
		s.fraction = ev.Fraction
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now()
	}
	s.events = append(s.events, ev)
	s.updatedAt = time.Now()
}

func (s *Session) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.language = lang
	s.updatedAt = time.Now()
}

func (s *Session) SetModel(m *book.Model) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = m
	s.updatedAt = time.Now()
}

// Model returns the book model owned by this session, nil until planning
// succeeded. The export engine checks finalization itself.
func (s *Session) Model() *book.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *Session) SetState(state State, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.errMsg = errMsg
	s.updatedAt = time.Now()
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot is a read-only, JSON-safe copy of session state.
type Snapshot struct {
	ID        string    `json:"session_id"`
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	Title     string    `json:"title"`
	Language  string    `json:"language,omitempty"`
	Fraction  float64   `json:"fraction"`
	Events    []Event   `json:"events"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	return Snapshot{
		ID:        s.ID,
		State:     s.state,
		Error:     s.errMsg,
		Title:     s.Request.Title,
		Language:  s.language,
		Fraction:  s.fraction,
		Events:    events,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.updatedAt,
	}
}

// SessionStore is a thread-safe in-memory session registry with TTL
// eviction. Running sessions are never evicted.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (s *SessionStore) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// Active returns the currently running session, if any.
func (s *SessionStore) Active() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.State() == StateRunning {
			return sess
		}
	}
	return nil
}

// Cleanup removes expired sessions.
func (s *SessionStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, sess := range s.sessions {
		if sess.State() == StateRunning {
			continue
		}
		sess.mu.Lock()
		updated := sess.updatedAt
		sess.mu.Unlock()
		if now.Sub(updated) > s.ttl {
			delete(s.sessions, id)
		}
	}
}
