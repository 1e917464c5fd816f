package analysis

import (
	"testing"

	"sales-dashboard/internal/dataset"
)

func TestParseChartType(t *testing.T) {
	for _, s := range []string{"line", "bar", "pie", "scatter", "box", "histogram"} {
		if _, err := ParseChartType(s); err != nil {
			t.Errorf("ParseChartType(%q) failed: %v", s, err)
		}
	}
	if _, err := ParseChartType("radar"); err == nil {
		t.Error("ParseChartType() should reject unknown types")
	}
}

func TestBuildChart_Line(t *testing.T) {
	tbl := salesTable(t)

	cd, err := BuildChart(tbl, ChartLine, "Date", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}

	if cd.Type != ChartLine {
		t.Errorf("Type = %v, want line", cd.Type)
	}
	if len(cd.Labels) != 6 || len(cd.Values) != 6 {
		t.Fatalf("series length = %d/%d, want 6/6", len(cd.Labels), len(cd.Values))
	}
	if cd.Labels[0] != "2023-01-01" {
		t.Errorf("Labels[0] = %q, want 2023-01-01", cd.Labels[0])
	}
	if !almostEqual(cd.Values[5], 600) {
		t.Errorf("Values[5] = %v, want 600", cd.Values[5])
	}
}

func TestBuildChart_BarGroupsCategorical(t *testing.T) {
	tbl := salesTable(t)

	cd, err := BuildChart(tbl, ChartBar, "Region", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}

	// Grouped sums sorted descending: North 1000, South 700, East 400.
	if len(cd.Labels) != 3 {
		t.Fatalf("Labels = %v, want 3 groups", cd.Labels)
	}
	if cd.Labels[0] != "North" || !almostEqual(cd.Values[0], 1000) {
		t.Errorf("top group = %q/%v, want North/1000", cd.Labels[0], cd.Values[0])
	}
}

func TestBuildChart_Pie(t *testing.T) {
	tbl := salesTable(t)

	cd, err := BuildChart(tbl, ChartPie, "Region", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}
	if len(cd.Labels) != 3 {
		t.Errorf("Labels = %v, want 3 slices", cd.Labels)
	}

	if _, err := BuildChart(tbl, ChartPie, "Quantity", "Revenue"); err == nil {
		t.Error("pie chart should reject numeric x columns")
	}
}

func TestBuildChart_Scatter(t *testing.T) {
	tbl := salesTable(t)

	cd, err := BuildChart(tbl, ChartScatter, "Quantity", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}
	if len(cd.Points) != 6 {
		t.Fatalf("Points = %d, want 6", len(cd.Points))
	}
	if !almostEqual(cd.Points[0].X, 1) || !almostEqual(cd.Points[0].Y, 100) {
		t.Errorf("Points[0] = %v, want {1 100}", cd.Points[0])
	}

	if _, err := BuildChart(tbl, ChartScatter, "Region", "Revenue"); err == nil {
		t.Error("scatter plot should reject categorical x columns")
	}
}

func TestBuildChart_Box(t *testing.T) {
	tbl := salesTable(t)

	grouped, err := BuildChart(tbl, ChartBox, "Region", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}
	if len(grouped.Boxes) != 3 {
		t.Fatalf("grouped Boxes = %d, want 3", len(grouped.Boxes))
	}

	single, err := BuildChart(tbl, ChartBox, "Quantity", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}
	if len(single.Boxes) != 1 {
		t.Fatalf("single Boxes = %d, want 1", len(single.Boxes))
	}
	box := single.Boxes[0]
	if !almostEqual(box.Min, 100) || !almostEqual(box.Max, 600) || !almostEqual(box.Median, 350) {
		t.Errorf("box = %+v, want min 100 median 350 max 600", box)
	}
}

func TestBuildChart_Histogram(t *testing.T) {
	tbl := salesTable(t)

	cd, err := BuildChart(tbl, ChartHistogram, "", "Revenue")
	if err != nil {
		t.Fatalf("BuildChart() failed: %v", err)
	}
	if len(cd.Bins) != histogramBins {
		t.Fatalf("Bins = %d, want %d", len(cd.Bins), histogramBins)
	}

	total := 0
	for _, b := range cd.Bins {
		total += b.Count
	}
	if total != tbl.NumRows() {
		t.Errorf("bin counts sum to %d, want %d", total, tbl.NumRows())
	}
}

func TestBuildChart_ConstantHistogram(t *testing.T) {
	tbl, err := dataset.New(dataset.FloatColumn("v", []float64{5, 5, 5}))
	if err != nil {
		t.Fatal(err)
	}

	cd, err := BuildChart(tbl, ChartHistogram, "", "v")
	if err != nil {
		t.Fatal(err)
	}
	if len(cd.Bins) != 1 || cd.Bins[0].Count != 3 {
		t.Errorf("constant column bins = %+v, want single bin of 3", cd.Bins)
	}
}

func TestBuildChart_RequiresNumericY(t *testing.T) {
	tbl := salesTable(t)

	if _, err := BuildChart(tbl, ChartLine, "Date", "Region"); err == nil {
		t.Error("BuildChart() should reject non-numeric y columns")
	}
	if _, err := BuildChart(tbl, ChartLine, "Date", "missing"); err == nil {
		t.Error("BuildChart() should reject unknown y columns")
	}
}
