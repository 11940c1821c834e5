package storage

import (
	"errors"
	"sync"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionAnswer is one collected-but-unconfirmed answer.
type SessionAnswer struct {
	QuestionID int64
	Position   int
	Prompt     string
	Value      string
	Reward     int
}

// Session holds in-flight answer collection for one (user, set) pair.
// It is process-local: a restart silently drops unconfirmed progress, while
// already-confirmed answers live in the database and are unaffected.
type Session struct {
	Current         int // 1-based ordinal pointer
	Answers         []SessionAnswer
	AwaitingTextQID int64 // question waiting on a free-text reply, 0 if none
}

func newSession() *Session {
	return &Session{Current: 1}
}

// HasAnswered reports whether the session already holds an answer for the
// given question. Repeated taps on the same button are collapsed through it.
func (s *Session) HasAnswered(questionID int64) bool {
	for _, a := range s.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

func (s *Session) clone() Session {
	c := *s
	c.Answers = make([]SessionAnswer, len(s.Answers))
	copy(c.Answers, s.Answers)
	return c
}

type sessionKey struct {
	UserID int64
	SetID  int64
}

// SessionStore keeps in-flight sessions keyed by (user, set). All writes go
// through Mutate, which holds the store lock for the entire read-modify-write,
// so two concurrent taps on the same card cannot interleave and duplicate or
// drop an answer. Reads return copies.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[sessionKey]*Session),
	}
}

// Start returns a copy of the session for (user, set), creating a fresh one
// if none exists.
func (s *SessionStore) Start(userID, setID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey{UserID: userID, SetID: setID}
	sess, ok := s.sessions[key]
	if !ok {
		sess = newSession()
		s.sessions[key] = sess
	}

	return sess.clone()
}

// Snapshot returns a copy of the session for (user, set), if present.
func (s *SessionStore) Snapshot(userID, setID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey{UserID: userID, SetID: setID}]
	if !ok {
		return Session{}, false
	}

	return sess.clone(), true
}

// Reset replaces any existing session with a fresh one and returns a copy.
func (s *SessionStore) Reset(userID, setID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := newSession()
	s.sessions[sessionKey{UserID: userID, SetID: setID}] = sess

	return sess.clone()
}

// Mutate applies fn to the session under the store lock and returns a copy of
// the result. ErrSessionNotFound is returned when no session exists.
func (s *SessionStore) Mutate(userID, setID int64, fn func(*Session)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionKey{UserID: userID, SetID: setID}]
	if !ok {
		return Session{}, ErrSessionNotFound
	}

	fn(sess)

	return sess.clone(), nil
}

// Delete discards the session for (user, set).
func (s *SessionStore) Delete(userID, setID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey{UserID: userID, SetID: setID})
}

// FindAwaitingText locates the session of a user that is waiting on a
// free-text reply, if any. Used to route plain messages back into the flow.
func (s *SessionStore) FindAwaitingText(userID int64) (setID, questionID int64, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, sess := range s.sessions {
		if key.UserID == userID && sess.AwaitingTextQID != 0 {
			return key.SetID, sess.AwaitingTextQID, true
		}
	}

	return 0, 0, false
}
