// Package conversation keeps in-memory, per-session message transcripts.
package conversation

import (
	"sync"

	"github.com/spigell/interview-insights/internal/ai"
)

// Store maps session identifiers to ordered message sequences. It is safe for
// concurrent use. Nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	// turn serialises whole request/response turns of one session.
	turn     sync.Mutex
	messages []ai.Message
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

func (s *Store) get(id string, create bool) *session {
	if !create {
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.sessions[id]
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]*session)
	}
	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Lock acquires the turn lock of a session and returns its release function.
// Callers hold it across append, completion call and append-or-rollback.
func (s *Store) Lock(id string) func() {
	sess := s.get(id, true)
	sess.turn.Lock()
	return sess.turn.Unlock
}

// Append adds msg to the end of the session, creating the session if needed.
func (s *Store) Append(id string, msg ai.Message) {
	sess := s.get(id, true)

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.messages = append(sess.messages, msg)
}

// Clear resets the session to an empty transcript.
func (s *Store) Clear(id string) {
	sess := s.get(id, false)
	if sess == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.messages = nil
}

// RollbackLast removes and returns the most recently appended message.
func (s *Store) RollbackLast(id string) (ai.Message, bool) {
	sess := s.get(id, false)
	if sess == nil {
		return ai.Message{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(sess.messages)
	if n == 0 {
		return ai.Message{}, false
	}
	last := sess.messages[n-1]
	sess.messages = sess.messages[:n-1]
	return last, true
}

// Messages returns a copy of the session transcript in order.
func (s *Store) Messages(id string) []ai.Message {
	sess := s.get(id, false)
	if sess == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]ai.Message, len(sess.messages))
	copy(out, sess.messages)
	return out
}

// Len returns the number of messages held for the session.
func (s *Store) Len(id string) int {
	sess := s.get(id, false)
	if sess == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(sess.messages)
}

// Sessions returns the number of known session keys.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
