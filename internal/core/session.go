package core

// session.go holds the in-memory widget state for each browser session.
//
// A Session owns the uploaded files and their FileState. Nothing is written
// to disk; a session disappears when it has been idle longer than the TTL.
// The janitor loop removes expired sessions in the background.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// ErrTooManySessions is returned when the store is full of live sessions.
var ErrTooManySessions = errors.New("too many active sessions")

// sessionFile is one uploaded file with its widget state.
type sessionFile struct {
	file    UploadedFile
	state   FileState
	history []HistoryEntry

	// version increments on every state change; result is reused while it
	// matches resultVersion.
	version       int
	result        *Result
	resultVersion int
}

// maxHistory bounds the history kept per file.
const maxHistory = 50

func (sf *sessionFile) record(at time.Time, msg string) {
	sf.history = append(sf.history, HistoryEntry{At: at, Message: msg})
	if len(sf.history) > maxHistory {
		sf.history = sf.history[len(sf.history)-maxHistory:]
	}
}

// Session is one user's set of uploaded files.
//
// The mutex serializes interactions so that pipeline runs for one session
// never overlap. lastSeen is kept outside it so the janitor never waits on
// a running pipeline.
type Session struct {
	ID        string
	CreatedAt time.Time

	lastSeen atomic.Int64 // unix nanoseconds

	mu    sync.Mutex
	files []*sessionFile
}

// LastSeen returns the time of the last interaction.
func (s *Session) LastSeen() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

// Len returns the number of files in the session.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

// FileIDs returns the file ids in upload order.
func (s *Session) FileIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, len(s.files))
	for i, sf := range s.files {
		ids[i] = sf.file.ID
	}
	return ids
}

// file looks up a file by id. Callers hold s.mu.
func (s *Session) file(id string) (*sessionFile, error) {
	for _, sf := range s.files {
		if sf.file.ID == id {
			return sf, nil
		}
	}
	return nil, ErrFileNotFound
}

// removeFile drops a file by id. Callers hold s.mu.
func (s *Session) removeFile(id string) error {
	for i, sf := range s.files {
		if sf.file.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return ErrFileNotFound
}

// SessionStore keeps sessions in memory keyed by id.
type SessionStore struct {
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates a store whose sessions expire after ttl of
// inactivity. maxSessions <= 0 means unlimited.
func NewSessionStore(ttl time.Duration, maxSessions int) *SessionStore {
	return &SessionStore{
		ttl:         ttl,
		maxSessions: maxSessions,
		now:         time.Now,
		sessions:    make(map[string]*Session),
	}
}

// Create starts a new empty session. When the store is full, expired
// sessions are swept first; if it is still full, ErrTooManySessions.
func (st *SessionStore) Create() (*Session, error) {
	now := st.now()

	st.mu.Lock()
	defer st.mu.Unlock()

	if st.maxSessions > 0 && len(st.sessions) >= st.maxSessions {
		st.sweepLocked(now)
		if len(st.sessions) >= st.maxSessions {
			return nil, ErrTooManySessions
		}
	}

	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
	}
	sess.touch(now)
	st.sessions[sess.ID] = sess
	return sess, nil
}

// Get returns a live session and marks it as seen. Unknown, malformed and
// expired ids return ErrSessionNotFound.
func (st *SessionStore) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}

	now := st.now()
	if st.expired(sess.LastSeen(), now) {
		return nil, ErrSessionNotFound
	}
	sess.touch(now)
	return sess, nil
}

// Delete removes a session.
func (st *SessionStore) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of sessions held, including expired ones not yet
// swept.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes expired sessions and returns how many were removed.
func (st *SessionStore) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.sweepLocked(now)
}

func (st *SessionStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, sess := range st.sessions {
		if st.expired(sess.LastSeen(), now) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

func (st *SessionStore) expired(lastSeen, now time.Time) bool {
	return st.ttl > 0 && now.Sub(lastSeen) > st.ttl
}

// RunJanitor sweeps expired sessions every interval until ctx is cancelled.
// onSweep, if set, receives the number of sessions left after each sweep.
func (st *SessionStore) RunJanitor(ctx context.Context, interval time.Duration, onSweep func(remaining int)) {
	if interval <= 0 {
		interval = time.Minute
	}
	slog.Info("session janitor started", "interval", interval, "ttl", st.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session janitor stopped")
			return
		case <-ticker.C:
			start := time.Now()
			removed := st.Sweep()
			remaining := st.Len()
			if removed > 0 {
				slog.Info("expired sessions removed",
					"removed", removed,
					"remaining", remaining,
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
			if onSweep != nil {
				onSweep(remaining)
			}
		}
	}
}
