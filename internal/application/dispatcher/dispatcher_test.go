package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/garyjia/mark-console/internal/domain/event"
)

// mockLogger implements Logger for testing
type mockLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (m *mockLogger) Info(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.infos = append(m.infos, msg)
}

func (m *mockLogger) Error(msg string, keysAndValues ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors = append(m.errors, msg)
}

func (m *mockLogger) ErrorCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.errors)
}

func (m *mockLogger) HasInfo(msg string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, info := range m.infos {
		if info == msg {
			return true
		}
	}
	return false
}

func completed() *event.Event {
	return event.NewActionCompleted("sess", "acceptanceAct", "mark-1", map[string]any{"buyer": "ACME"})
}

func TestNewDispatcher(t *testing.T) {
	t.Run("creates dispatcher without logger", func(t *testing.T) {
		if d := NewDispatcher(); d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})

	t.Run("creates dispatcher with logger", func(t *testing.T) {
		if d := NewDispatcher(WithLogger(&mockLogger{})); d == nil {
			t.Fatal("expected non-nil dispatcher")
		}
	})
}

func TestSubscribe(t *testing.T) {
	t.Run("handlers run in registration order", func(t *testing.T) {
		d := NewDispatcher()
		var order []string

		d.Subscribe(event.TypeActionCompleted, "journal", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "journal")
			return nil
		})
		d.Subscribe(event.TypeActionCompleted, "audit-log", func(ctx context.Context, evt *event.Event) error {
			order = append(order, "audit-log")
			return nil
		})

		d.Publish(context.Background(), completed())
		if fmt.Sprint(order) != "[journal audit-log]" {
			t.Errorf("order = %v", order)
		}
	})

	t.Run("same name replaces handler", func(t *testing.T) {
		d := NewDispatcher()
		calls := 0

		d.Subscribe(event.TypeActionCompleted, "journal", func(ctx context.Context, evt *event.Event) error {
			t.Error("replaced handler should not run")
			return nil
		})
		d.Subscribe(event.TypeActionCompleted, "journal", func(ctx context.Context, evt *event.Event) error {
			calls++
			return nil
		})

		d.Publish(context.Background(), completed())
		if calls != 1 {
			t.Errorf("calls = %d, want 1", calls)
		}
		if n := len(d.ListHandlers(event.TypeActionCompleted)); n != 1 {
			t.Errorf("handler count = %d, want 1", n)
		}
	})

	t.Run("registration is logged", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		d.Subscribe(event.TypeActionCompleted, "journal", func(ctx context.Context, evt *event.Event) error { return nil })

		if !logger.HasInfo("Handler registered") {
			t.Error("expected registration to be logged")
		}
	})
}

func TestPublish(t *testing.T) {
	t.Run("failures are logged and later handlers still run", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		var got *event.Event

		d.Subscribe(event.TypeActionCompleted, "failing", func(ctx context.Context, evt *event.Event) error {
			return errors.New("unavailable")
		})
		d.Subscribe(event.TypeActionCompleted, "recorder", func(ctx context.Context, evt *event.Event) error {
			got = evt
			return nil
		})

		evt := completed()
		d.Publish(context.Background(), evt)

		if got != evt {
			t.Error("later handlers should still receive the event")
		}
		if logger.ErrorCount() != 1 {
			t.Errorf("error count = %d, want 1", logger.ErrorCount())
		}
	})

	t.Run("recovers panics", func(t *testing.T) {
		logger := &mockLogger{}
		d := NewDispatcher(WithLogger(logger))
		ran := false
		d.Subscribe(event.TypeActionCompleted, "bad", func(ctx context.Context, evt *event.Event) error {
			panic("nil map")
		})
		d.Subscribe(event.TypeActionCompleted, "good", func(ctx context.Context, evt *event.Event) error {
			ran = true
			return nil
		})

		d.Publish(context.Background(), completed())
		if !ran {
			t.Error("handler after a panicking one should run")
		}
		if logger.ErrorCount() != 1 {
			t.Errorf("error count = %d, want 1", logger.ErrorCount())
		}
	})

	t.Run("no handlers is fine", func(t *testing.T) {
		logger := &mockLogger{}
		NewDispatcher(WithLogger(logger)).Publish(context.Background(), completed())
		if logger.ErrorCount() != 0 {
			t.Errorf("error count = %d, want 0", logger.ErrorCount())
		}
	})
}

func TestClose(t *testing.T) {
	logger := &mockLogger{}
	d := NewDispatcher(WithLogger(logger))
	called := false
	d.Subscribe(event.TypeActionCompleted, "journal", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})

	if err := d.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := d.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() error = %v, want %v", err, ErrClosed)
	}

	d.Publish(context.Background(), completed())
	if called {
		t.Error("handlers should not run after Close()")
	}
	if logger.ErrorCount() != 1 {
		t.Errorf("error count = %d, want 1", logger.ErrorCount())
	}
}

func TestConcurrency(t *testing.T) {
	d := NewDispatcher()
	var mu sync.Mutex
	count := 0

	d.Subscribe(event.TypeActionCompleted, "counter", func(ctx context.Context, evt *event.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.Publish(context.Background(), completed())
		}()
		go func(i int) {
			defer wg.Done()
			d.ListHandlers(event.TypeActionCompleted)
		}(i)
	}
	wg.Wait()

	if count != 50 {
		t.Errorf("count = %d, want 50", count)
	}
}
