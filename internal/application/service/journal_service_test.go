package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/mark-console/internal/application/dispatcher"
	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/domain/event"
)

func newJournal() (*journalServiceImpl, *mockRecordRepo, *mockTxManager, *mockWriter, *mockFiles) {
	repo := &mockRecordRepo{}
	tx := &mockTxManager{}
	writer := &mockWriter{}
	files := &mockFiles{}
	svc := NewJournalService(repo, tx, writer, files, mockLabels{}, nopLogger{}).(*journalServiceImpl)
	return svc, repo, tx, writer, files
}

func TestJournalService_Record(t *testing.T) {
	svc, repo, tx, _, _ := newJournal()
	ctx := context.Background()

	evt := event.NewActionCompleted("s1", "exportNoticeEAEU", "2", map[string]any{
		"recipientName":      "ТОО Альфа",
		"actualShipmentDate": time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, svc.Record(ctx, evt))
	require.Len(t, repo.records, 1)

	rec := repo.records[0]
	assert.Equal(t, evt.ID, rec.EventID)
	assert.Equal(t, "exportNoticeEAEU", rec.ActionID)
	assert.Equal(t, "2", rec.MarkRef)
	assert.JSONEq(t, `{"recipientName":"ТОО Альфа","actualShipmentDate":"2024-03-15"}`, rec.Data)
	assert.Equal(t, evt.Timestamp, rec.CompletedAt)
	assert.Equal(t, 1, tx.calls)

	// recording the same event again is a no-op
	require.NoError(t, svc.Record(ctx, evt))
	assert.Len(t, repo.records, 1)
}

func TestJournalService_Record_Errors(t *testing.T) {
	svc, repo, _, _, _ := newJournal()
	ctx := context.Background()

	assert.Error(t, svc.Record(ctx, nil))
	assert.Error(t, svc.Record(ctx, &event.Event{Type: "session.opened"}))

	boom := errors.New("disk full")
	repo.err = boom
	assert.ErrorIs(t, svc.Record(ctx, event.NewActionCompleted("s", "other", "", nil)), boom)
}

func TestJournalService_SubscribeRecordsPublishedEvents(t *testing.T) {
	svc, repo, _, _, _ := newJournal()
	d := dispatcher.NewDispatcher()
	svc.Subscribe(d)

	handlers := d.ListHandlers(event.TypeActionCompleted)
	require.Len(t, handlers, 1)
	assert.Equal(t, JournalHandlerName, handlers[0].Name)

	d.Publish(context.Background(), event.NewActionCompleted("s", "other", "1", nil))
	require.Len(t, repo.records, 1)
	assert.Equal(t, "{}", repo.records[0].Data)
}

func TestJournalService_Export(t *testing.T) {
	svc, _, _, writer, files := newJournal()
	ctx := context.Background()
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) }

	require.NoError(t, svc.Record(ctx, event.NewActionCompleted("s1", "other", "", nil)))
	require.NoError(t, svc.Record(ctx, event.NewActionCompleted("s2", "acceptanceAct", "", map[string]any{"buyer": "ACME"})))

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, port.ActionRecordFilter{ActionID: "acceptanceAct"}, "en"))
	assert.Equal(t, "en:workbook", buf.String())
	require.Len(t, writer.records, 1)
	assert.Equal(t, "acceptanceAct", writer.records[0].ActionID)

	path, err := svc.ExportToFile(ctx, port.ActionRecordFilter{}, "ru")
	require.NoError(t, err)
	assert.Equal(t, "/exports/journal-20240315-103000.xlsx", path)
	assert.Equal(t, []byte("ru:workbook"), files.saved["journal-20240315-103000.xlsx"])
	assert.Len(t, writer.records, 2)
}
