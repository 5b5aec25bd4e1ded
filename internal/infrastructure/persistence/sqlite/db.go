package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
)

type contextKey string

const txKey contextKey = "tx"

// TxStats counts outcomes of top-level transactions
type TxStats struct {
	Committed  int64 `json:"committed"`
	RolledBack int64 `json:"rolled_back"`
}

// DB runs repository calls against the journal database and implements
// port.TransactionManager
type DB struct {
	*sql.DB
	logger     *zap.Logger
	committed  atomic.Int64
	rolledBack atomic.Int64
}

// NewDB wraps an open connection pool
func NewDB(sqlDB *sql.DB, logger *zap.Logger) *DB {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DB{DB: sqlDB, logger: logger}
}

// WithTransaction runs fn inside a transaction carried by the context.
// Nested calls join the outer transaction and leave commit to it.
func (db *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx := extractTx(ctx); tx != nil {
		return fn(ctx)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		db.logger.Error("Failed to begin transaction", zap.Error(err))
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			db.rolledBack.Add(1)
			db.logger.Error("Transaction panicked, rolled back", zap.Any("panic", p))
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			db.logger.Error("Failed to rollback transaction", zap.Error(rbErr))
		}
		db.rolledBack.Add(1)
		db.logger.Debug("Transaction rolled back", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		db.rolledBack.Add(1)
		db.logger.Error("Failed to commit transaction", zap.Error(err))
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	db.committed.Add(1)
	return nil
}

// Stats returns transaction outcome counters since the wrapper was created
func (db *DB) Stats() TxStats {
	return TxStats{Committed: db.committed.Load(), RolledBack: db.rolledBack.Load()}
}

// Executor returns the transaction carried by ctx, or the pool itself
func (db *DB) Executor(ctx context.Context) Executor {
	if tx := extractTx(ctx); tx != nil {
		return tx
	}
	return db.DB
}

// Executor covers both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func extractTx(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey).(*sql.Tx)
	return tx
}

var _ port.TransactionManager = (*DB)(nil)
