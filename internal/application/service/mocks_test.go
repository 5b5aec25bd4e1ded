package service

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/application/session"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/domain/event"
)

type mockMarkRepo struct {
	marks map[string]*entity.Mark
}

func (m *mockMarkRepo) GetByID(ctx context.Context, id string) (*entity.Mark, error) {
	mark, ok := m.marks[id]
	if !ok {
		return nil, fmt.Errorf("mark %s: %w", id, port.ErrNotFound)
	}
	return mark, nil
}

func (m *mockMarkRepo) List(ctx context.Context, status string) ([]*entity.Mark, error) {
	var out []*entity.Mark
	for _, mark := range m.marks {
		if status == "" || mark.Status == status {
			out = append(out, mark)
		}
	}
	return out, nil
}

type mockRecordRepo struct {
	mu      sync.Mutex
	records []*entity.ActionRecord
	err     error
}

func (m *mockRecordRepo) Create(ctx context.Context, record *entity.ActionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	record.ID = int64(len(m.records) + 1)
	m.records = append(m.records, record)
	return nil
}

func (m *mockRecordRepo) GetByEventID(ctx context.Context, eventID string) (*entity.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.records {
		if r.EventID == eventID {
			return r, nil
		}
	}
	return nil, port.ErrNotFound
}

func (m *mockRecordRepo) List(ctx context.Context, filter port.ActionRecordFilter) ([]*entity.ActionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.ActionRecord
	for _, r := range m.records {
		if filter.ActionID == "" || r.ActionID == filter.ActionID {
			out = append(out, r)
		}
	}
	return out, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockStore struct {
	mu       sync.Mutex
	sessions map[string]*session.Session
}

func newMockStore() *mockStore {
	return &mockStore{sessions: map[string]*session.Session{}}
}

func (m *mockStore) Put(s *session.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
}

func (m *mockStore) Get(id string) (*session.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

func (m *mockStore) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

func (m *mockStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

type mockLabels struct{}

// Lookup prefixes keys with the language so tests can see which bundle answered
func (mockLabels) Lookup(lang string) func(string) string {
	return func(key string) string { return lang + ":" + key }
}

type recordingEmitter struct {
	mu     sync.Mutex
	events []*event.Event
}

func (r *recordingEmitter) Publish(ctx context.Context, evt *event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

type mockWriter struct {
	records []*entity.ActionRecord
}

func (m *mockWriter) Write(w io.Writer, records []*entity.ActionRecord, label func(string) string) error {
	m.records = records
	_, err := io.WriteString(w, label("workbook"))
	return err
}

type mockFiles struct {
	saved map[string][]byte
}

func (m *mockFiles) Save(ctx context.Context, name string, content []byte) (string, error) {
	if m.saved == nil {
		m.saved = map[string][]byte{}
	}
	m.saved[name] = content
	return "/exports/" + name, nil
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}
