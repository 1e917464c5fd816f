package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const maxInferWorkers = 8

// WriteCSV encodes the table as UTF-8 CSV: header row plus one record per
// row, using the in-memory column names.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	record := make([]string, len(t.cols))
	for row := 0; row < t.rows; row++ {
		for ci, c := range t.cols {
			record[ci] = c.Cell(row)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write row %d: %w", row, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a header row plus records and infers a type for each column.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return FromRecords(ctx, records)
}

// FromRecords builds a typed table from a header row plus string records.
// Columns are inferred independently, bounded-parallel across columns.
func FromRecords(ctx context.Context, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row")
	}

	header := records[0]
	if len(header) == 0 {
		return nil, fmt.Errorf("empty header row")
	}
	rows := records[1:]

	for i, rec := range rows {
		if len(rec) != len(header) {
			return nil, fmt.Errorf("row %d has %d fields, want %d", i+1, len(rec), len(header))
		}
	}

	cols := make([]*Column, len(header))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInferWorkers)

	for ci := range header {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			cells := make([]string, len(rows))
			for ri, rec := range rows {
				cells[ri] = strings.TrimSpace(rec[ci])
			}

			name := strings.TrimSpace(header[ci])
			if name == "" {
				name = fmt.Sprintf("column_%d", ci+1)
			}
			cols[ci] = inferColumn(name, cells)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return New(cols...)
}

// inferColumn tries int, then float, then date, and falls back to string.
// Empty cells demote int to float (stored as NaN) and anything else to string.
func inferColumn(name string, cells []string) *Column {
	if len(cells) == 0 {
		return StringColumn(name, cells)
	}

	kind := KindInt
	hasEmpty := false
	for _, cell := range cells {
		if cell == "" {
			hasEmpty = true
			continue
		}
		kind = demote(kind, cell)
		if kind == KindString {
			break
		}
	}

	if hasEmpty && kind == KindInt {
		kind = KindFloat
	}
	if hasEmpty && kind == KindTime {
		kind = KindString
	}

	switch kind {
	case KindInt:
		vals := make([]int64, len(cells))
		for i, cell := range cells {
			vals[i], _ = strconv.ParseInt(cell, 10, 64)
		}
		return IntColumn(name, vals)
	case KindFloat:
		vals := make([]float64, len(cells))
		for i, cell := range cells {
			if cell == "" {
				vals[i] = math.NaN()
				continue
			}
			vals[i], _ = strconv.ParseFloat(cell, 64)
		}
		return FloatColumn(name, vals)
	case KindTime:
		vals := make([]time.Time, len(cells))
		for i, cell := range cells {
			vals[i], _ = parseDate(cell)
		}
		return TimeColumn(name, vals)
	default:
		return StringColumn(name, cells)
	}
}

// demote narrows the candidate kind so it still fits the given cell.
func demote(kind Kind, cell string) Kind {
	if kind == KindInt {
		if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
			return KindInt
		}
		kind = KindFloat
	}
	if kind == KindFloat {
		if _, err := strconv.ParseFloat(cell, 64); err == nil {
			return KindFloat
		}
		kind = KindTime
	}
	if kind == KindTime {
		if _, err := parseDate(cell); err == nil {
			return KindTime
		}
		kind = KindString
	}
	return kind
}

var dateLayouts = []string{
	DateFormat,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
}

func parseDate(cell string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, cell); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", cell)
}
