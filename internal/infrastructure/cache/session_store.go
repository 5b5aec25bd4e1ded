package cache

import (
	"context"
	"time"

	c "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/session"
)

// SessionStore keeps open sessions in memory. A session untouched for the
// idle timeout is evicted and closed, as if its dialog had been dismissed.
type SessionStore struct {
	cache  *c.Cache
	logger *zap.Logger
}

// NewSessionStore creates a store; a non-positive idle timeout keeps sessions forever
func NewSessionStore(idleTimeout, cleanupInterval time.Duration, logger *zap.Logger) *SessionStore {
	if idleTimeout <= 0 {
		idleTimeout = c.NoExpiration
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &SessionStore{
		cache:  c.New(idleTimeout, cleanupInterval),
		logger: logger,
	}
	s.cache.OnEvicted(s.evicted)
	return s
}

// Put stores a session under its id
func (s *SessionStore) Put(sess *session.Session) {
	s.cache.SetDefault(sess.ID(), sess)
}

// Get returns a session and refreshes the idle timer of an open one. The
// refresh never re-adds a session that a concurrent close just deleted.
func (s *SessionStore) Get(id string) (*session.Session, bool) {
	v, found := s.cache.Get(id)
	if !found {
		return nil, false
	}
	sess, ok := v.(*session.Session)
	if !ok {
		return nil, false
	}
	if sess.IsOpen() {
		// Replace fails when the key is gone
		_ = s.cache.Replace(id, sess, c.DefaultExpiration)
	}
	return sess, true
}

// Delete removes a session
func (s *SessionStore) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of stored sessions, including expired ones not yet swept
func (s *SessionStore) Count() int {
	return s.cache.ItemCount()
}

// Sweep evicts expired sessions now
func (s *SessionStore) Sweep() {
	s.cache.DeleteExpired()
}

// Flush closes and removes every session
func (s *SessionStore) Flush() {
	for id := range s.cache.Items() {
		s.cache.Delete(id)
	}
}

func (s *SessionStore) evicted(id string, v interface{}) {
	sess, ok := v.(*session.Session)
	if !ok {
		return
	}
	if sess.IsOpen() {
		s.logger.Debug("Closing evicted session", zap.String("session_id", id))
	}
	sess.Close(context.Background())
}

var _ port.SessionStore = (*SessionStore)(nil)
