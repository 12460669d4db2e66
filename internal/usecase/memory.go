package usecase

import (
	"sync"

	"statute-agent/internal/domain"
)

const defaultMemoryWindow = 2

// Memory is the bounded conversational window for one session: a strict FIFO
// of user/assistant turn pairs, capped at the configured window. It is not
// safe for concurrent use; SessionRegistry serializes access per session.
type Memory struct {
	window int
	turns  []domain.Turn
}

// NewMemory creates a Memory retaining the last window turn pairs.
func NewMemory(window int) *Memory {
	if window <= 0 {
		window = defaultMemoryWindow
	}
	return &Memory{window: window}
}

// Append records one completed exchange. When the pair count exceeds the
// window the oldest pair is evicted.
func (m *Memory) Append(user, assistant domain.Turn) {
	m.turns = append(m.turns, user, assistant)
	if limit := m.window * 2; len(m.turns) > limit {
		m.turns = append(m.turns[:0:0], m.turns[len(m.turns)-limit:]...)
	}
}

// History returns the retained turns in chronological order. The returned
// slice is a copy; mutating it does not affect the memory.
func (m *Memory) History() []domain.Turn {
	out := make([]domain.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// Reset clears all retained turns. Used at session boundaries.
func (m *Memory) Reset() {
	m.turns = nil
}

// Len returns the number of retained turns.
func (m *Memory) Len() int {
	return len(m.turns)
}

// session couples a memory with the mutex that serializes same-session
// requests. Requests for different sessions proceed in parallel.
type session struct {
	mu  sync.Mutex
	mem *Memory
}

// SessionRegistry hands out per-session conversation memories keyed by
// session ID. It owns no cross-session mutable state beyond the map itself.
type SessionRegistry struct {
	mu       sync.Mutex
	window   int
	sessions map[string]*session
}

func NewSessionRegistry(window int) *SessionRegistry {
	if window <= 0 {
		window = defaultMemoryWindow
	}
	return &SessionRegistry{
		window:   window,
		sessions: make(map[string]*session),
	}
}

// WithSession runs fn while holding the named session's lock, creating the
// session on first use. Memory mutation inside fn is therefore single-writer.
func (r *SessionRegistry) WithSession(id string, fn func(mem *Memory)) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if !ok {
		s = &session{mem: NewMemory(r.window)}
		r.sessions[id] = s
	}
	r.mu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.mem)
}

// Drop removes a session and its memory from the registry.
func (r *SessionRegistry) Drop(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}
