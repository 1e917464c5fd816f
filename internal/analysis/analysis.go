// Package analysis recomputes statistics from the full in-memory table on
// every call. Nothing here caches: datasets are small and session-scoped.
package analysis

import (
	"fmt"
	"math"
	"slices"

	"sales-dashboard/internal/dataset"
)

type Stats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Q25    float64 `json:"q25"`
	Q75    float64 `json:"q75"`
}

// BasicStats summarizes one numeric column. NaN cells are skipped.
func BasicStats(t *dataset.Table, column string) (Stats, error) {
	vals, err := numericValues(t, column)
	if err != nil {
		return Stats{}, err
	}
	if len(vals) == 0 {
		return Stats{}, fmt.Errorf("column %q has no values", column)
	}

	sorted := slices.Clone(vals)
	slices.Sort(sorted)

	return Stats{
		Count:  len(vals),
		Mean:   mean(vals),
		Median: quantileSorted(sorted, 0.5),
		Std:    stddev(vals),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Q25:    quantileSorted(sorted, 0.25),
		Q75:    quantileSorted(sorted, 0.75),
	}, nil
}

// Describe builds a summary table with one row per numeric column of t.
func Describe(t *dataset.Table) (*dataset.Table, error) {
	numeric := t.NumericColumns()

	names := make([]string, 0, len(numeric))
	var count []int64
	var means, stds, mins, q25s, medians, q75s, maxs []float64

	for _, name := range numeric {
		st, err := BasicStats(t, name)
		if err != nil {
			// Columns that are entirely missing are left out.
			continue
		}
		names = append(names, name)
		count = append(count, int64(st.Count))
		means = append(means, st.Mean)
		stds = append(stds, st.Std)
		mins = append(mins, st.Min)
		q25s = append(q25s, st.Q25)
		medians = append(medians, st.Median)
		q75s = append(q75s, st.Q75)
		maxs = append(maxs, st.Max)
	}

	return dataset.New(
		dataset.StringColumn("Column", names),
		dataset.IntColumn("Count", count),
		dataset.FloatColumn("Mean", means),
		dataset.FloatColumn("Std", stds),
		dataset.FloatColumn("Min", mins),
		dataset.FloatColumn("Q25", q25s),
		dataset.FloatColumn("Median", medians),
		dataset.FloatColumn("Q75", q75s),
		dataset.FloatColumn("Max", maxs),
	)
}

type CorrelationMatrix struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Correlation computes the Pearson matrix over the given numeric columns,
// or over all numeric columns when none are named. At least two are needed.
func Correlation(t *dataset.Table, columns ...string) (CorrelationMatrix, error) {
	if len(columns) == 0 {
		columns = t.NumericColumns()
	}
	if len(columns) < 2 {
		return CorrelationMatrix{}, fmt.Errorf("correlation needs at least 2 numeric columns, have %d", len(columns))
	}

	series := make([][]float64, len(columns))
	for i, name := range columns {
		c, ok := t.Column(name)
		if !ok {
			return CorrelationMatrix{}, fmt.Errorf("unknown column %q", name)
		}
		if !c.IsNumeric() {
			return CorrelationMatrix{}, fmt.Errorf("column %q is not numeric", name)
		}
		vals := make([]float64, t.NumRows())
		for r := range vals {
			vals[r] = c.Float(r)
		}
		series[i] = vals
	}

	values := make([][]float64, len(columns))
	for i := range values {
		values[i] = make([]float64, len(columns))
		for j := range values[i] {
			values[i][j] = pearson(series[i], series[j])
		}
	}

	return CorrelationMatrix{Columns: columns, Values: values}, nil
}

type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
	AggMin   AggFunc = "min"
	AggMax   AggFunc = "max"
)

func ParseAggFunc(s string) (AggFunc, error) {
	switch AggFunc(s) {
	case AggSum, AggMean, AggCount, AggMin, AggMax:
		return AggFunc(s), nil
	default:
		return "", fmt.Errorf("unknown aggregation %q", s)
	}
}

type GroupRow struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupAggregate groups rows by a categorical column and folds a numeric
// column with fn. Results are sorted descending by value.
func GroupAggregate(t *dataset.Table, groupBy, aggColumn string, fn AggFunc) ([]GroupRow, error) {
	keyCol, ok := t.Column(groupBy)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", groupBy)
	}
	valCol, ok := t.Column(aggColumn)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", aggColumn)
	}
	if !valCol.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", aggColumn)
	}

	type acc struct {
		sum      float64
		count    int
		min, max float64
	}
	groups := make(map[string]*acc)
	var order []string

	for r := 0; r < t.NumRows(); r++ {
		key := keyCol.Cell(r)
		v := valCol.Float(r)
		if math.IsNaN(v) {
			continue
		}
		g := groups[key]
		if g == nil {
			g = &acc{min: v, max: v}
			groups[key] = g
			order = append(order, key)
		}
		g.sum += v
		g.count++
		if v < g.min {
			g.min = v
		}
		if v > g.max {
			g.max = v
		}
	}

	result := make([]GroupRow, 0, len(order))
	for _, key := range order {
		g := groups[key]
		var v float64
		switch fn {
		case AggSum:
			v = g.sum
		case AggMean:
			v = g.sum / float64(g.count)
		case AggCount:
			v = float64(g.count)
		case AggMin:
			v = g.min
		case AggMax:
			v = g.max
		default:
			return nil, fmt.Errorf("unknown aggregation %q", fn)
		}
		result = append(result, GroupRow{Key: key, Value: v})
	}

	slices.SortStableFunc(result, func(a, b GroupRow) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		default:
			return 0
		}
	})
	return result, nil
}

// TopN returns the indices of the n rows with the largest values in the
// given numeric column, largest first.
func TopN(t *dataset.Table, by string, n int) ([]int, error) {
	c, ok := t.Column(by)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", by)
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", by)
	}
	if n < 1 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}

	idx := make([]int, t.NumRows())
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		va, vb := c.Float(a), c.Float(b)
		switch {
		case va > vb:
			return -1
		case va < vb:
			return 1
		default:
			return 0
		}
	})

	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n], nil
}

// Outliers flags rows outside the 1.5*IQR fences of a numeric column.
func Outliers(t *dataset.Table, column string) ([]bool, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}

	vals, err := numericValues(t, column)
	if err != nil {
		return nil, err
	}
	mask := make([]bool, t.NumRows())
	if len(vals) == 0 {
		return mask, nil
	}

	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	q1 := quantileSorted(sorted, 0.25)
	q3 := quantileSorted(sorted, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	for r := range mask {
		v := c.Float(r)
		if !math.IsNaN(v) && (v < lo || v > hi) {
			mask[r] = true
		}
	}
	return mask, nil
}

func numericValues(t *dataset.Table, column string) ([]float64, error) {
	c, ok := t.Column(column)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", column)
	}
	if !c.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", column)
	}
	vals := make([]float64, 0, t.NumRows())
	for r := 0; r < t.NumRows(); r++ {
		v := c.Float(r)
		if math.IsNaN(v) {
			continue
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stddev is the sample standard deviation (n-1 denominator).
func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	ss := 0.0
	for _, v := range vals {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}

// quantileSorted interpolates linearly between order statistics.
func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func pearson(x, y []float64) float64 {
	n := 0
	var sx, sy float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		sx += x[i]
		sy += y[i]
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	mx := sx / float64(n)
	my := sy / float64(n)

	var cov, vx, vy float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - mx
		dy := y[i] - my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(vx*vy)
}
