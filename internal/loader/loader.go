// Package loader turns uploaded files into tables. Dispatch is by file
// extension; a parse failure is terminal for that upload and leaves no
// partial state behind.
package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/dataset"
)

// Supported extensions, lowercased.
const (
	extCSV  = ".csv"
	extXLSX = ".xlsx"
	extXLS  = ".xls"
)

// ErrUnsupportedFormat reports an extension outside csv/xlsx/xls.
type ErrUnsupportedFormat struct {
	Ext string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported file format %q, expected csv, xlsx or xls", e.Ext)
}

// Load parses r into a table based on the extension of filename.
func Load(ctx context.Context, filename string, r io.Reader) (*dataset.Table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case extCSV:
		t, err := dataset.ReadCSV(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filename, err)
		}
		return t, nil
	case extXLSX, extXLS:
		t, err := loadExcel(ctx, r)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", filename, err)
		}
		return t, nil
	default:
		return nil, &ErrUnsupportedFormat{Ext: ext}
	}
}

// loadExcel reads the first sheet: first row as header, the rest as records.
func loadExcel(ctx context.Context, r io.Reader) (*dataset.Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	// excelize drops trailing empty cells; pad records to header width.
	width := len(rows[0])
	for i, rec := range rows {
		if len(rec) < width {
			padded := make([]string, width)
			copy(padded, rec)
			rows[i] = padded
		} else if len(rec) > width {
			rows[i] = rec[:width]
		}
	}

	return dataset.FromRecords(ctx, rows)
}
