package export

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/mark-console/internal/domain/entity"
)

// SheetName is the journal sheet in exported workbooks
const SheetName = "Journal"

// ContentType is the MIME type of exported workbooks
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// JournalExporter writes action journal rows into an xlsx workbook
type JournalExporter struct {
	logger *zap.Logger
}

// NewJournalExporter creates a new exporter
func NewJournalExporter(logger *zap.Logger) *JournalExporter {
	return &JournalExporter{logger: logger}
}

var headerKeys = []string{"completedAt", "action", "mark", "session", "fields"}

// Write renders records as one row each, with action and field names resolved through label
func (e *JournalExporter) Write(w io.Writer, records []*entity.ActionRecord, label func(key string) string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}

	header := make([]interface{}, len(headerKeys))
	for i, k := range headerKeys {
		header[i] = label(k)
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	e.setStyle(f, "A1", "E1", style)

	for i, rec := range records {
		fields, err := formatFields(rec.Data, label)
		if err != nil {
			e.logger.Warn("Unreadable journal data",
				zap.String("event_id", rec.EventID),
				zap.Error(err))
			fields = rec.Data
		}

		row := []interface{}{
			rec.CompletedAt.Format("02.01.2006 15:04:05"),
			label(rec.ActionID),
			rec.MarkRef,
			rec.SessionID,
			fields,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	e.setWidth(f, "A", "A", 20)
	e.setWidth(f, "B", "B", 36)
	e.setWidth(f, "C", "D", 38)
	e.setWidth(f, "E", "E", 80)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("Journal exported", zap.Int("rows", len(records)))
	return nil
}

func (e *JournalExporter) setStyle(f *excelize.File, from, to string, style int) {
	if err := f.SetCellStyle(SheetName, from, to, style); err != nil {
		e.logger.Warn("Failed to set cell style", zap.String("range", from+":"+to), zap.Error(err))
	}
}

func (e *JournalExporter) setWidth(f *excelize.File, from, to string, width float64) {
	if err := f.SetColWidth(SheetName, from, to, width); err != nil {
		e.logger.Warn("Failed to set column width", zap.String("cols", from+":"+to), zap.Error(err))
	}
}

// formatFields turns the stored JSON object into "label: value" lines sorted by field name
func formatFields(data string, label func(key string) string) (string, error) {
	if data == "" {
		return "", nil
	}
	var values map[string]interface{}
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return "", err
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, len(names))
	for i, name := range names {
		lines[i] = fmt.Sprintf("%s: %v", label(name), values[name])
	}
	return strings.Join(lines, "\n"), nil
}
