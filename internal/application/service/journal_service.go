package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/garyjia/mark-console/internal/application/dispatcher"
	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/domain/event"
)

// JournalHandlerName is the dispatcher subscription name of the journal
const JournalHandlerName = "action-journal"

// JournalWriter renders journal rows into a document
type JournalWriter interface {
	Write(w io.Writer, records []*entity.ActionRecord, label func(key string) string) error
}

// JournalService records completion events and serves them back
type JournalService interface {
	// Subscribe registers the journal on a dispatcher
	Subscribe(d dispatcher.Dispatcher)

	// Record persists one completion event; recording the same event twice is a no-op
	Record(ctx context.Context, evt *event.Event) error

	// List returns journal rows, newest first
	List(ctx context.Context, filter port.ActionRecordFilter) ([]*entity.ActionRecord, error)

	// Export writes the filtered journal as a workbook
	Export(ctx context.Context, w io.Writer, filter port.ActionRecordFilter, lang string) error

	// ExportToFile saves the filtered journal under the export directory and returns its path
	ExportToFile(ctx context.Context, filter port.ActionRecordFilter, lang string) (string, error)
}

type journalServiceImpl struct {
	records   port.ActionRecordRepository
	txManager port.TransactionManager
	writer    JournalWriter
	files     port.FileStorage
	labels    port.LabelLookup
	logger    Logger
	now       func() time.Time
}

// NewJournalService creates a new JournalService
func NewJournalService(
	records port.ActionRecordRepository,
	txManager port.TransactionManager,
	writer JournalWriter,
	files port.FileStorage,
	labels port.LabelLookup,
	logger Logger,
) JournalService {
	return &journalServiceImpl{
		records:   records,
		txManager: txManager,
		writer:    writer,
		files:     files,
		labels:    labels,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *journalServiceImpl) Subscribe(d dispatcher.Dispatcher) {
	d.Subscribe(event.TypeActionCompleted, JournalHandlerName, s.Record)
}

func (s *journalServiceImpl) Record(ctx context.Context, evt *event.Event) error {
	if evt == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if evt.Type != event.TypeActionCompleted {
		return fmt.Errorf("unexpected event type %s", evt.Type)
	}

	data, err := json.Marshal(evt.WireData())
	if err != nil {
		return fmt.Errorf("failed to encode event data: %w", err)
	}

	record := &entity.ActionRecord{
		EventID:     evt.ID,
		SessionID:   evt.SessionID,
		ActionID:    evt.ActionID,
		MarkRef:     evt.MarkRef,
		Data:        string(data),
		CompletedAt: evt.Timestamp,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.records.GetByEventID(txCtx, evt.ID); err == nil {
			return errAlreadyRecorded
		} else if !errors.Is(err, port.ErrNotFound) {
			return err
		}
		return s.records.Create(txCtx, record)
	})
	if errors.Is(err, errAlreadyRecorded) {
		s.logger.Info("Event already recorded", "event_id", evt.ID)
		return nil
	}
	if err != nil {
		s.logger.Error("Failed to record action", "event_id", evt.ID, "action_id", evt.ActionID, "error", err)
		return err
	}

	s.logger.Info("Action recorded", "record_id", record.ID, "event_id", evt.ID, "action_id", evt.ActionID)
	return nil
}

var errAlreadyRecorded = errors.New("already recorded")

func (s *journalServiceImpl) List(ctx context.Context, filter port.ActionRecordFilter) ([]*entity.ActionRecord, error) {
	return s.records.List(ctx, filter)
}

func (s *journalServiceImpl) Export(ctx context.Context, w io.Writer, filter port.ActionRecordFilter, lang string) error {
	records, err := s.records.List(ctx, filter)
	if err != nil {
		return err
	}
	return s.writer.Write(w, records, s.labels.Lookup(lang))
}

func (s *journalServiceImpl) ExportToFile(ctx context.Context, filter port.ActionRecordFilter, lang string) (string, error) {
	var buf bytes.Buffer
	if err := s.Export(ctx, &buf, filter, lang); err != nil {
		return "", err
	}

	name := fmt.Sprintf("journal-%s.xlsx", s.now().UTC().Format("20060102-150405"))
	path, err := s.files.Save(ctx, name, buf.Bytes())
	if err != nil {
		s.logger.Error("Failed to save journal export", "name", name, "error", err)
		return "", err
	}

	s.logger.Info("Journal exported", "path", path, "size", buf.Len())
	return path, nil
}
