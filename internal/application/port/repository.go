package port

import (
	"context"
	"errors"
	"time"

	"github.com/garyjia/mark-console/internal/domain/entity"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// MarkRepository defines read operations for marks
type MarkRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Mark, error)
	List(ctx context.Context, status string) ([]*entity.Mark, error)
}

// ActionRecordFilter narrows a journal listing; zero fields match everything
type ActionRecordFilter struct {
	ActionID string
	MarkRef  string
	Since    time.Time
	Limit    int
	Offset   int
}

// ActionRecordRepository defines persistence operations for the action journal
type ActionRecordRepository interface {
	Create(ctx context.Context, record *entity.ActionRecord) error
	GetByEventID(ctx context.Context, eventID string) (*entity.ActionRecord, error)
	List(ctx context.Context, filter ActionRecordFilter) ([]*entity.ActionRecord, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
