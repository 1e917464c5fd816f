// Package dataset holds the in-memory table shape shared by the demo
// generators, the upload loader, and the analysis layer: an ordered set of
// named, typed columns of equal length.
package dataset

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

const DateFormat = "2006-01-02"

type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
	KindTime
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindTime:
		return "date"
	default:
		return "unknown"
	}
}

// Column stores one typed value series. Only the slice matching Kind is set.
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Ints    []int64
	Floats  []float64
	Times   []time.Time
}

func StringColumn(name string, values []string) *Column {
	return &Column{Name: name, Kind: KindString, Strings: values}
}

func IntColumn(name string, values []int64) *Column {
	return &Column{Name: name, Kind: KindInt, Ints: values}
}

func FloatColumn(name string, values []float64) *Column {
	return &Column{Name: name, Kind: KindFloat, Floats: values}
}

func TimeColumn(name string, values []time.Time) *Column {
	return &Column{Name: name, Kind: KindTime, Times: values}
}

func (c *Column) Len() int {
	switch c.Kind {
	case KindInt:
		return len(c.Ints)
	case KindFloat:
		return len(c.Floats)
	case KindTime:
		return len(c.Times)
	default:
		return len(c.Strings)
	}
}

func (c *Column) IsNumeric() bool {
	return c.Kind == KindInt || c.Kind == KindFloat
}

// Float returns the numeric value at row i. Int columns are widened; missing
// float cells stay NaN.
func (c *Column) Float(i int) float64 {
	switch c.Kind {
	case KindInt:
		return float64(c.Ints[i])
	case KindFloat:
		return c.Floats[i]
	default:
		return math.NaN()
	}
}

// Cell renders the value at row i the way it appears in CSV output.
func (c *Column) Cell(i int) string {
	switch c.Kind {
	case KindInt:
		return strconv.FormatInt(c.Ints[i], 10)
	case KindFloat:
		if math.IsNaN(c.Floats[i]) {
			return ""
		}
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64)
	case KindTime:
		return c.Times[i].Format(DateFormat)
	default:
		return c.Strings[i]
	}
}

// MissingCount reports how many cells in the column are missing.
func (c *Column) MissingCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.missing(i) {
			n++
		}
	}
	return n
}

func (c *Column) missing(i int) bool {
	switch c.Kind {
	case KindFloat:
		return math.IsNaN(c.Floats[i])
	case KindString:
		return c.Strings[i] == ""
	default:
		return false
	}
}

// Table is an immutable-after-build collection of columns. All columns have
// the same length and unique names; column order is preserved.
type Table struct {
	cols   []*Column
	byName map[string]int
	rows   int
}

func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		if c.Name == "" {
			return nil, fmt.Errorf("column %d has no name", i)
		}
		if _, ok := t.byName[c.Name]; ok {
			return nil, fmt.Errorf("duplicate column %q", c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), t.rows)
		}
		t.byName[c.Name] = i
		t.cols = append(t.cols, c)
	}
	return t, nil
}

func (t *Table) NumRows() int { return t.rows }

func (t *Table) NumCols() int { return len(t.cols) }

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

func (t *Table) columnsOf(match func(*Column) bool) []string {
	var names []string
	for _, c := range t.cols {
		if match(c) {
			names = append(names, c.Name)
		}
	}
	return names
}

// NumericColumns lists int and float columns, in order. The chart and
// analysis pickers dispatch on these groupings.
func (t *Table) NumericColumns() []string {
	return t.columnsOf(func(c *Column) bool { return c.IsNumeric() })
}

func (t *Table) CategoricalColumns() []string {
	return t.columnsOf(func(c *Column) bool { return c.Kind == KindString })
}

func (t *Table) TimeColumns() []string {
	return t.columnsOf(func(c *Column) bool { return c.Kind == KindTime })
}

func (t *Table) Cell(row int, name string) (string, bool) {
	c, ok := t.Column(name)
	if !ok || row < 0 || row >= t.rows {
		return "", false
	}
	return c.Cell(row), true
}

// MissingCells counts empty string cells and NaN float cells.
func (t *Table) MissingCells() int {
	n := 0
	for _, c := range t.cols {
		for i := 0; i < c.Len(); i++ {
			if c.missing(i) {
				n++
			}
		}
	}
	return n
}

// Select returns a new table holding the given rows of t, in order.
func (t *Table) Select(rows []int) (*Table, error) {
	cols := make([]*Column, len(t.cols))
	for ci, c := range t.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind}
		for _, r := range rows {
			if r < 0 || r >= t.rows {
				return nil, fmt.Errorf("row index %d out of range", r)
			}
			switch c.Kind {
			case KindInt:
				nc.Ints = append(nc.Ints, c.Ints[r])
			case KindFloat:
				nc.Floats = append(nc.Floats, c.Floats[r])
			case KindTime:
				nc.Times = append(nc.Times, c.Times[r])
			default:
				nc.Strings = append(nc.Strings, c.Strings[r])
			}
		}
		cols[ci] = nc
	}
	return New(cols...)
}
