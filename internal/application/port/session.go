package port

import "github.com/garyjia/mark-console/internal/application/session"

// SessionStore keeps open workflow sessions by id
type SessionStore interface {
	Put(s *session.Session)
	Get(id string) (*session.Session, bool)
	Delete(id string)
	Count() int
}

// LabelLookup resolves symbolic keys to display text for a language
type LabelLookup interface {
	Lookup(lang string) func(key string) string
}
