// Package demo builds the deterministic synthetic sales datasets offered
// when no file has been uploaded. Every generator seeds its own rand.Rand,
// so equal arguments always produce byte-identical tables and concurrent
// calls never share state.
package demo

import (
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"sales-dashboard/internal/dataset"
)

// The detailed dataset spans one fixed year of order dates.
var epoch = time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	dateWindowDays  = 365
	customerPoolDiv = 3
	salesRepCount   = 20
	quantityLambda  = 2.0
)

type weighted struct {
	value  string
	weight float64
}

var products = []weighted{
	{"Laptop", 0.15},
	{"Phone", 0.20},
	{"Tablet", 0.12},
	{"Headphones", 0.10},
	{"Mouse", 0.08},
	{"Keyboard", 0.07},
	{"Monitor", 0.13},
	{"Webcam", 0.05},
	{"Speaker", 0.06},
	{"Charger", 0.04},
}

// categoryOf is a pure function of product: every product maps to exactly
// one category.
var categoryOf = map[string]string{
	"Laptop":     "Computers",
	"Monitor":    "Computers",
	"Phone":      "Mobile",
	"Tablet":     "Mobile",
	"Headphones": "Accessories",
	"Mouse":      "Accessories",
	"Keyboard":   "Accessories",
	"Webcam":     "Accessories",
	"Speaker":    "Accessories",
	"Charger":    "Accessories",
}

var basePrices = map[string]float64{
	"Laptop":     1200,
	"Phone":      800,
	"Tablet":     500,
	"Headphones": 150,
	"Mouse":      50,
	"Keyboard":   80,
	"Monitor":    350,
	"Webcam":     100,
	"Speaker":    120,
	"Charger":    30,
}

var regions = []weighted{
	{"North", 0.22},
	{"South", 0.18},
	{"East", 0.25},
	{"West", 0.20},
	{"Central", 0.15},
}

var channels = []weighted{
	{"Online", 0.45},
	{"Retail", 0.35},
	{"Partner", 0.20},
}

var segments = []weighted{
	{"Enterprise", 0.25},
	{"SMB", 0.35},
	{"Consumer", 0.40},
}

// monthMultipliers scales quantities by calendar month to simulate seasonal
// demand, indexed by time.Month (1-based).
var monthMultipliers = [13]float64{
	0,
	0.80, // Jan
	0.85, // Feb
	0.90, // Mar
	1.00, // Apr
	1.00, // May
	1.10, // Jun
	1.15, // Jul
	1.10, // Aug
	1.00, // Sep
	1.05, // Oct
	1.30, // Nov
	1.40, // Dec
}

// DetailedColumns is the fixed schema of the detailed dataset, in order.
var DetailedColumns = []string{
	"Order_ID", "Date", "Customer_ID", "Product", "Category",
	"Quantity", "Unit_Price", "Revenue", "Cost", "Profit",
	"Region", "Channel", "Customer_Segment", "Sales_Rep",
}

// GenerateDetailed produces n synthetic transactions. n = 0 yields an empty
// table with the full schema.
func GenerateDetailed(n int, seed int64) (*dataset.Table, error) {
	if n < 0 {
		return nil, fmt.Errorf("record count must be non-negative, got %d", n)
	}

	rng := rand.New(rand.NewSource(seed))

	// Order dates: uniform offsets over the window, sorted so the table
	// reads chronologically.
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = rng.Float64() * dateWindowDays
	}
	slices.Sort(offsets)
	dates := make([]time.Time, n)
	for i, off := range offsets {
		dates[i] = epoch.AddDate(0, 0, int(off))
	}

	productList := drawWeighted(rng, products, n)
	categories := make([]string, n)
	for i, p := range productList {
		categories[i] = categoryOf[p]
	}

	regionList := drawWeighted(rng, regions, n)
	channelList := drawWeighted(rng, channels, n)
	segmentList := drawWeighted(rng, segments, n)

	unitPrices := make([]float64, n)
	for i, p := range productList {
		unitPrices[i] = round2(basePrices[p] * uniform(rng, 0.8, 1.2))
	}

	quantities := make([]int64, n)
	for i, d := range dates {
		base := poisson(rng, quantityLambda) + 1
		q := int64(float64(base) * monthMultipliers[d.Month()])
		if q < 1 {
			q = 1
		}
		quantities[i] = q
	}

	revenues := make([]float64, n)
	for i := range revenues {
		revenues[i] = round2(unitPrices[i] * float64(quantities[i]))
	}

	costs := make([]float64, n)
	for i := range costs {
		costs[i] = round2(unitPrices[i] * uniform(rng, 0.70, 0.85) * float64(quantities[i]))
	}

	profits := make([]float64, n)
	for i := range profits {
		profits[i] = round2(revenues[i] - costs[i])
	}

	pool := n / customerPoolDiv
	if pool < 1 {
		pool = 1
	}
	customerIDs := make([]string, n)
	for i := range customerIDs {
		customerIDs[i] = fmt.Sprintf("CUST%05d", rng.Intn(pool)+1)
	}

	orderIDs := make([]string, n)
	for i := range orderIDs {
		orderIDs[i] = fmt.Sprintf("ORD%06d", i+1)
	}

	reps := make([]string, n)
	for i := range reps {
		reps[i] = fmt.Sprintf("Rep_%02d", rng.Intn(salesRepCount)+1)
	}

	return dataset.New(
		dataset.StringColumn("Order_ID", orderIDs),
		dataset.TimeColumn("Date", dates),
		dataset.StringColumn("Customer_ID", customerIDs),
		dataset.StringColumn("Product", productList),
		dataset.StringColumn("Category", categories),
		dataset.IntColumn("Quantity", quantities),
		dataset.FloatColumn("Unit_Price", unitPrices),
		dataset.FloatColumn("Revenue", revenues),
		dataset.FloatColumn("Cost", costs),
		dataset.FloatColumn("Profit", profits),
		dataset.StringColumn("Region", regionList),
		dataset.StringColumn("Channel", channelList),
		dataset.StringColumn("Customer_Segment", segmentList),
		dataset.StringColumn("Sales_Rep", reps),
	)
}

// GenerateMonthly produces the twelve-month rollup. Fields are sampled
// independently; the only cross-field rule is money rounding.
func GenerateMonthly(seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))

	const months = 12
	monthStarts := make([]time.Time, months)
	for i := range monthStarts {
		monthStarts[i] = time.Date(2023, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}

	revenue := make([]float64, months)
	for i := range revenue {
		revenue[i] = round2(uniform(rng, 150000, 250000))
	}
	orders := make([]int64, months)
	for i := range orders {
		orders[i] = int64(rng.Intn(300) + 400)
	}
	avgOrder := make([]float64, months)
	for i := range avgOrder {
		avgOrder[i] = round2(uniform(rng, 300, 500))
	}
	customers := make([]int64, months)
	for i := range customers {
		customers[i] = int64(rng.Intn(200) + 300)
	}
	newCustomers := make([]int64, months)
	for i := range newCustomers {
		newCustomers[i] = int64(rng.Intn(70) + 50)
	}

	t, _ := dataset.New(
		dataset.TimeColumn("Month", monthStarts),
		dataset.FloatColumn("Total_Revenue", revenue),
		dataset.IntColumn("Total_Orders", orders),
		dataset.FloatColumn("Avg_Order_Value", avgOrder),
		dataset.IntColumn("Customer_Count", customers),
		dataset.IntColumn("New_Customers", newCustomers),
	)
	return t
}

var topProductNames = []string{
	"Laptop Pro", "Smartphone X", "Tablet Mini", "Wireless Headphones",
	"Gaming Mouse", "Mechanical Keyboard", "4K Monitor", "HD Webcam",
	"Bluetooth Speaker", "Fast Charger",
}

// GenerateTopProducts produces the ten-row leaderboard. Descending revenue
// order is part of the contract: callers display it as ranked.
func GenerateTopProducts(seed int64) *dataset.Table {
	rng := rand.New(rand.NewSource(seed))

	n := len(topProductNames)
	type row struct {
		name       string
		unitsSold  int64
		revenue    float64
		avgRating  float64
		returnRate float64
	}

	rows := make([]row, n)
	for i := range rows {
		rows[i].name = topProductNames[i]
	}
	for i := range rows {
		rows[i].unitsSold = int64(rng.Intn(1500) + 500)
	}
	for i := range rows {
		rows[i].revenue = round2(uniform(rng, 50000, 200000))
	}
	for i := range rows {
		rows[i].avgRating = round1(uniform(rng, 3.5, 5.0))
	}
	for i := range rows {
		rows[i].returnRate = round2(uniform(rng, 1, 8))
	}

	slices.SortStableFunc(rows, func(a, b row) int {
		switch {
		case a.revenue > b.revenue:
			return -1
		case a.revenue < b.revenue:
			return 1
		default:
			return 0
		}
	})

	names := make([]string, n)
	units := make([]int64, n)
	revenues := make([]float64, n)
	ratings := make([]float64, n)
	returns := make([]float64, n)
	for i, r := range rows {
		names[i] = r.name
		units[i] = r.unitsSold
		revenues[i] = r.revenue
		ratings[i] = r.avgRating
		returns[i] = r.returnRate
	}

	t, _ := dataset.New(
		dataset.StringColumn("Product", names),
		dataset.IntColumn("Units_Sold", units),
		dataset.FloatColumn("Revenue", revenues),
		dataset.FloatColumn("Avg_Rating", ratings),
		dataset.FloatColumn("Return_Rate", returns),
	)
	return t
}

func drawWeighted(rng *rand.Rand, choices []weighted, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = pickWeighted(rng, choices)
	}
	return out
}

func pickWeighted(rng *rand.Rand, choices []weighted) string {
	r := rng.Float64()
	cum := 0.0
	for _, c := range choices {
		cum += c.weight
		if r < cum {
			return c.value
		}
	}
	// Guard against weights summing to slightly under 1.0.
	return choices[len(choices)-1].value
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// poisson draws by Knuth's product-of-uniforms method; fine for small lambda.
func poisson(rng *rand.Rand, lambda float64) int {
	limit := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}
