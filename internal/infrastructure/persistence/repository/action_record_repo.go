package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/infrastructure/persistence/sqlite"
)

// ActionRecordRepository implements port.ActionRecordRepository
type ActionRecordRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewActionRecordRepository creates a new action journal repository
func NewActionRecordRepository(db *sqlite.DB, logger *zap.Logger) port.ActionRecordRepository {
	return &ActionRecordRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a journal row
func (r *ActionRecordRepository) Create(ctx context.Context, record *entity.ActionRecord) error {
	query := `
		INSERT INTO action_records (
			event_id, session_id, action_id, mark_ref, data, completed_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.Executor(ctx).ExecContext(ctx, query,
		record.EventID,
		record.SessionID,
		record.ActionID,
		record.MarkRef,
		record.Data,
		record.CompletedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to create action record",
			zap.String("event_id", record.EventID),
			zap.Error(err))
		return fmt.Errorf("failed to create action record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	record.ID = id
	return nil
}

const actionRecordColumns = `id, event_id, session_id, action_id, mark_ref, data, completed_at, created_at`

// GetByEventID retrieves the row written for a completion event
func (r *ActionRecordRepository) GetByEventID(ctx context.Context, eventID string) (*entity.ActionRecord, error) {
	query := `SELECT ` + actionRecordColumns + ` FROM action_records WHERE event_id = ?`

	record, err := scanActionRecord(r.db.Executor(ctx).QueryRowContext(ctx, query, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("action record %s: %w", eventID, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get action record", zap.String("event_id", eventID), zap.Error(err))
		return nil, fmt.Errorf("failed to get action record: %w", err)
	}
	return record, nil
}

// List returns journal rows, newest first
func (r *ActionRecordRepository) List(ctx context.Context, filter port.ActionRecordFilter) ([]*entity.ActionRecord, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.ActionID != "" {
		where = append(where, "action_id = ?")
		args = append(args, filter.ActionID)
	}
	if filter.MarkRef != "" {
		where = append(where, "mark_ref = ?")
		args = append(args, filter.MarkRef)
	}
	if !filter.Since.IsZero() {
		where = append(where, "completed_at >= ?")
		args = append(args, filter.Since.UTC())
	}

	query := `SELECT ` + actionRecordColumns + ` FROM action_records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY completed_at DESC, id DESC"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list action records", zap.Error(err))
		return nil, fmt.Errorf("failed to list action records: %w", err)
	}
	defer rows.Close()

	records := []*entity.ActionRecord{}
	for rows.Next() {
		record, err := scanActionRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action record: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanActionRecord(row scanner) (*entity.ActionRecord, error) {
	var rec entity.ActionRecord
	var createdAt sql.NullTime
	err := row.Scan(
		&rec.ID,
		&rec.EventID,
		&rec.SessionID,
		&rec.ActionID,
		&rec.MarkRef,
		&rec.Data,
		&rec.CompletedAt,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		rec.CreatedAt = createdAt.Time
	}
	return &rec, nil
}
