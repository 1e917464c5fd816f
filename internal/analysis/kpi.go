package analysis

import (
	"fmt"
	"slices"
	"strings"

	"sales-dashboard/internal/dataset"
)

type KPIs struct {
	RevenueColumn string  `json:"revenue_column"`
	TotalRevenue  float64 `json:"total_revenue"`
	AvgOrderValue float64 `json:"avg_order_value"`
	Records       int     `json:"records"`
	GrowthPct     float64 `json:"growth_pct"`
	HasGrowth     bool    `json:"has_growth"`
}

// revenueKeywords drive the advisory column suggestion. The Russian terms
// come from the product's original audience.
var revenueKeywords = []string{"revenue", "sales", "amount", "сумма", "выручка"}

// SuggestRevenueColumn proposes a revenue column by keyword match over the
// numeric column names. Advisory only: ComputeKPIs never guesses on its own.
func SuggestRevenueColumn(t *dataset.Table) (string, bool) {
	for _, name := range t.NumericColumns() {
		lower := strings.ToLower(name)
		for _, kw := range revenueKeywords {
			if strings.Contains(lower, kw) {
				return name, true
			}
		}
	}
	return "", false
}

// SuggestDateColumn proposes the first date-typed column, if any.
func SuggestDateColumn(t *dataset.Table) (string, bool) {
	times := t.TimeColumns()
	if len(times) == 0 {
		return "", false
	}
	return times[0], true
}

// ComputeKPIs totals the designated revenue column and, when a date column
// is designated too, compares the later half of the date-sorted data against
// the earlier half for a growth figure.
func ComputeKPIs(t *dataset.Table, revenueColumn, dateColumn string) (KPIs, error) {
	if revenueColumn == "" {
		return KPIs{}, fmt.Errorf("revenue column must be designated")
	}

	vals, err := numericValues(t, revenueColumn)
	if err != nil {
		return KPIs{}, err
	}

	k := KPIs{
		RevenueColumn: revenueColumn,
		Records:       t.NumRows(),
	}
	for _, v := range vals {
		k.TotalRevenue += v
	}
	if len(vals) > 0 {
		k.AvgOrderValue = k.TotalRevenue / float64(len(vals))
	}

	if dateColumn != "" {
		growth, ok, err := growthPct(t, revenueColumn, dateColumn)
		if err != nil {
			return KPIs{}, err
		}
		k.GrowthPct = growth
		k.HasGrowth = ok
	}
	return k, nil
}

func growthPct(t *dataset.Table, revenueColumn, dateColumn string) (float64, bool, error) {
	dc, ok := t.Column(dateColumn)
	if !ok {
		return 0, false, fmt.Errorf("unknown column %q", dateColumn)
	}
	if dc.Kind != dataset.KindTime {
		return 0, false, fmt.Errorf("column %q is not a date column", dateColumn)
	}
	rc, ok := t.Column(revenueColumn)
	if !ok {
		return 0, false, fmt.Errorf("unknown column %q", revenueColumn)
	}

	n := t.NumRows()
	if n < 2 {
		return 0, false, nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return dc.Times[a].Compare(dc.Times[b])
	})

	mid := n / 2
	var older, recent float64
	for i, r := range idx {
		v := rc.Float(r)
		if v != v { // NaN
			continue
		}
		if i < mid {
			older += v
		} else {
			recent += v
		}
	}

	if older <= 0 {
		return 0, false, nil
	}
	return (recent - older) / older * 100, true, nil
}
