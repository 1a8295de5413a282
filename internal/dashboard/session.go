package dashboard

import (
	"sync"
	"time"

	"github.com/KaramelBytes/habitlens-cli/internal/dataset"
	"github.com/google/uuid"
)

// Session is one browser's dashboard state.
type Session struct {
	ID      string
	Dataset *dataset.Dataset
	// Archive is the display name of the loaded file.
	Archive string
	// Message is the last load error shown to the user.
	Message  string
	lastSeen time.Time
}

// Store keeps sessions in memory and drops those idle longer than TTL.
type Store struct {
	TTL time.Duration
	// Seed is bound to new sessions, e.g. a preloaded remote dataset.
	Seed        *dataset.Dataset
	SeedArchive string

	mu    sync.Mutex
	items map[string]*Session
	now   func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{TTL: ttl, items: make(map[string]*Session), now: time.Now}
}

// Get returns a copy of the session and refreshes its idle timer.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	sess, ok := s.items[id]
	if !ok {
		return Session{}, false
	}
	sess.lastSeen = s.now()
	return *sess, true
}

// Create starts a new session seeded with the preloaded dataset, if any.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	sess := &Session{
		ID:       uuid.NewString(),
		Dataset:  s.Seed,
		Archive:  s.SeedArchive,
		lastSeen: s.now(),
	}
	s.items[sess.ID] = sess
	return *sess
}

// Bind replaces the session dataset and clears any message.
func (s *Store) Bind(id, archive string, ds *dataset.Dataset) {
	s.update(id, func(sess *Session) {
		sess.Dataset = ds
		sess.Archive = archive
		sess.Message = ""
	})
}

// Fail records a load error. The current dataset is discarded.
func (s *Store) Fail(id, msg string) {
	s.update(id, func(sess *Session) {
		sess.Dataset = nil
		sess.Archive = ""
		sess.Message = msg
	})
}

// Len reports live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	return len(s.items)
}

func (s *Store) update(id string, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.items[id]
	if !ok {
		sess = &Session{ID: id}
		s.items[id] = sess
	}
	fn(sess)
	sess.lastSeen = s.now()
}

func (s *Store) purgeLocked() {
	if s.TTL <= 0 {
		return
	}
	cutoff := s.now().Add(-s.TTL)
	for id, sess := range s.items {
		if sess.lastSeen.Before(cutoff) {
			delete(s.items, id)
		}
	}
}
