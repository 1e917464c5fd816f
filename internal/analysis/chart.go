package analysis

import (
	"fmt"
	"math"
	"slices"

	"sales-dashboard/internal/dataset"
)

type ChartType string

const (
	ChartLine      ChartType = "line"
	ChartBar       ChartType = "bar"
	ChartPie       ChartType = "pie"
	ChartScatter   ChartType = "scatter"
	ChartBox       ChartType = "box"
	ChartHistogram ChartType = "histogram"
)

func ParseChartType(s string) (ChartType, error) {
	switch ChartType(s) {
	case ChartLine, ChartBar, ChartPie, ChartScatter, ChartBox, ChartHistogram:
		return ChartType(s), nil
	default:
		return "", fmt.Errorf("unknown chart type %q", s)
	}
}

const histogramBins = 20

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Bin struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Count int     `json:"count"`
}

type BoxStats struct {
	Label  string  `json:"label"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

// ChartData is the renderer-agnostic payload handed to the client chart
// script. Which fields are populated depends on Type.
type ChartData struct {
	Type   ChartType  `json:"type"`
	Title  string     `json:"title"`
	XLabel string     `json:"x_label,omitempty"`
	YLabel string     `json:"y_label,omitempty"`
	Labels []string   `json:"labels,omitempty"`
	Values []float64  `json:"values,omitempty"`
	Points []Point    `json:"points,omitempty"`
	Bins   []Bin      `json:"bins,omitempty"`
	Boxes  []BoxStats `json:"boxes,omitempty"`
}

// BuildChart dispatches on chart type and the kinds of the selected columns.
// y must be numeric for every type; what x may be depends on the type.
func BuildChart(t *dataset.Table, typ ChartType, x, y string) (*ChartData, error) {
	yCol, ok := t.Column(y)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", y)
	}
	if !yCol.IsNumeric() {
		return nil, fmt.Errorf("column %q is not numeric", y)
	}

	cd := &ChartData{Type: typ, XLabel: x, YLabel: y}

	switch typ {
	case ChartLine:
		cd.Title = fmt.Sprintf("%s по %s", y, x)
		return buildSeries(t, cd, x, yCol)

	case ChartBar:
		cd.Title = fmt.Sprintf("%s по %s", y, x)
		if isCategorical(t, x) {
			return buildGrouped(t, cd, x, y)
		}
		return buildSeries(t, cd, x, yCol)

	case ChartPie:
		cd.Title = fmt.Sprintf("Распределение %s", y)
		if !isCategorical(t, x) {
			return nil, fmt.Errorf("pie chart needs a categorical x column, %q is not", x)
		}
		return buildGrouped(t, cd, x, y)

	case ChartScatter:
		cd.Title = fmt.Sprintf("%s vs %s", y, x)
		xCol, ok := t.Column(x)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", x)
		}
		if !xCol.IsNumeric() {
			return nil, fmt.Errorf("scatter plot needs a numeric x column, %q is not", x)
		}
		for r := 0; r < t.NumRows(); r++ {
			xv, yv := xCol.Float(r), yCol.Float(r)
			if math.IsNaN(xv) || math.IsNaN(yv) {
				continue
			}
			cd.Points = append(cd.Points, Point{X: xv, Y: yv})
		}
		return cd, nil

	case ChartBox:
		cd.Title = fmt.Sprintf("Распределение %s", y)
		if isCategorical(t, x) {
			cd.Title = fmt.Sprintf("Распределение %s по %s", y, x)
			return buildGroupedBoxes(t, cd, x, y)
		}
		box, err := boxStats(t, y, y)
		if err != nil {
			return nil, err
		}
		cd.Boxes = []BoxStats{box}
		return cd, nil

	case ChartHistogram:
		cd.Title = fmt.Sprintf("Гистограмма %s", y)
		vals, err := numericValues(t, y)
		if err != nil {
			return nil, err
		}
		cd.Bins = histogram(vals, histogramBins)
		return cd, nil

	default:
		return nil, fmt.Errorf("unknown chart type %q", typ)
	}
}

func isCategorical(t *dataset.Table, name string) bool {
	c, ok := t.Column(name)
	if !ok {
		return false
	}
	return c.Kind == dataset.KindString || c.Kind == dataset.KindTime
}

func buildSeries(t *dataset.Table, cd *ChartData, x string, yCol *dataset.Column) (*ChartData, error) {
	xCol, ok := t.Column(x)
	if !ok {
		return nil, fmt.Errorf("unknown column %q", x)
	}
	for r := 0; r < t.NumRows(); r++ {
		cd.Labels = append(cd.Labels, xCol.Cell(r))
		cd.Values = append(cd.Values, yCol.Float(r))
	}
	return cd, nil
}

func buildGrouped(t *dataset.Table, cd *ChartData, x, y string) (*ChartData, error) {
	rows, err := GroupAggregate(t, x, y, AggSum)
	if err != nil {
		return nil, err
	}
	for _, gr := range rows {
		cd.Labels = append(cd.Labels, gr.Key)
		cd.Values = append(cd.Values, gr.Value)
	}
	return cd, nil
}

func buildGroupedBoxes(t *dataset.Table, cd *ChartData, x, y string) (*ChartData, error) {
	xCol, _ := t.Column(x)
	yCol, _ := t.Column(y)

	groups := make(map[string][]float64)
	var order []string
	for r := 0; r < t.NumRows(); r++ {
		v := yCol.Float(r)
		if math.IsNaN(v) {
			continue
		}
		key := xCol.Cell(r)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], v)
	}

	for _, key := range order {
		cd.Boxes = append(cd.Boxes, fiveNumber(key, groups[key]))
	}
	return cd, nil
}

func boxStats(t *dataset.Table, column, label string) (BoxStats, error) {
	vals, err := numericValues(t, column)
	if err != nil {
		return BoxStats{}, err
	}
	if len(vals) == 0 {
		return BoxStats{}, fmt.Errorf("column %q has no values", column)
	}
	return fiveNumber(label, vals), nil
}

func fiveNumber(label string, vals []float64) BoxStats {
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	return BoxStats{
		Label:  label,
		Min:    sorted[0],
		Q25:    quantileSorted(sorted, 0.25),
		Median: quantileSorted(sorted, 0.5),
		Q75:    quantileSorted(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}
}

func histogram(vals []float64, bins int) []Bin {
	if len(vals) == 0 || bins < 1 {
		return nil
	}

	lo := slices.Min(vals)
	hi := slices.Max(vals)
	if lo == hi {
		return []Bin{{Start: lo, End: hi, Count: len(vals)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]Bin, bins)
	for i := range out {
		out[i].Start = lo + float64(i)*width
		out[i].End = lo + float64(i+1)*width
	}
	for _, v := range vals {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		out[idx].Count++
	}
	return out
}
