package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/application/port"
	"github.com/garyjia/mark-console/internal/domain/entity"
	"github.com/garyjia/mark-console/internal/infrastructure/persistence/sqlite"
)

// MarkRepository implements port.MarkRepository
type MarkRepository struct {
	db     *sqlite.DB
	logger *zap.Logger
}

// NewMarkRepository creates a new mark repository
func NewMarkRepository(db *sqlite.DB, logger *zap.Logger) port.MarkRepository {
	return &MarkRepository{
		db:     db,
		logger: logger,
	}
}

const markColumns = `
	m.id, m.status, m.quantity, m.created_at,
	p.id, p.name, p.gtin, p.brand, p.category, p.registry
`

// GetByID retrieves a mark with its codes
func (r *MarkRepository) GetByID(ctx context.Context, id string) (*entity.Mark, error) {
	query := `SELECT ` + markColumns + `
		FROM marks m
		JOIN products p ON p.id = m.product_id
		WHERE m.id = ?
	`

	mark, err := scanMark(r.db.Executor(ctx).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark %s: %w", id, port.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("Failed to get mark by ID", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get mark: %w", err)
	}

	codes, err := r.codes(ctx, id)
	if err != nil {
		return nil, err
	}
	mark.Codes = codes
	return mark, nil
}

// List returns marks, optionally restricted to one status. Codes are loaded per mark.
func (r *MarkRepository) List(ctx context.Context, status string) ([]*entity.Mark, error) {
	query := `SELECT ` + markColumns + `
		FROM marks m
		JOIN products p ON p.id = m.product_id
		WHERE (? = '' OR m.status = ?)
		ORDER BY CAST(m.id AS INTEGER), m.id
	`

	rows, err := r.db.Executor(ctx).QueryContext(ctx, query, status, status)
	if err != nil {
		r.logger.Error("Failed to list marks", zap.String("status", status), zap.Error(err))
		return nil, fmt.Errorf("failed to list marks: %w", err)
	}
	defer rows.Close()

	var marks []*entity.Mark
	for rows.Next() {
		mark, err := scanMark(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mark: %w", err)
		}
		marks = append(marks, mark)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, mark := range marks {
		if mark.Codes, err = r.codes(ctx, mark.ID); err != nil {
			return nil, err
		}
	}
	return marks, nil
}

func (r *MarkRepository) codes(ctx context.Context, markID string) ([]entity.MarkCode, error) {
	rows, err := r.db.Executor(ctx).QueryContext(ctx,
		`SELECT code, status FROM mark_codes WHERE mark_id = ? ORDER BY position, code`, markID)
	if err != nil {
		r.logger.Error("Failed to get mark codes", zap.String("mark_id", markID), zap.Error(err))
		return nil, fmt.Errorf("failed to get mark codes: %w", err)
	}
	defer rows.Close()

	codes := []entity.MarkCode{}
	for rows.Next() {
		var c entity.MarkCode
		if err := rows.Scan(&c.Code, &c.Status); err != nil {
			return nil, fmt.Errorf("failed to scan mark code: %w", err)
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanMark(row scanner) (*entity.Mark, error) {
	var m entity.Mark
	var createdAt sql.NullTime
	err := row.Scan(
		&m.ID,
		&m.Status,
		&m.Quantity,
		&createdAt,
		&m.Product.ID,
		&m.Product.Name,
		&m.Product.GTIN,
		&m.Product.Brand,
		&m.Product.Category,
		&m.Product.Registry,
	)
	if err != nil {
		return nil, err
	}
	if createdAt.Valid {
		m.CreatedAt = createdAt.Time
	}
	return &m, nil
}
