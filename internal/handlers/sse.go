package handlers

import (
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/analysis"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/session"
)

const maxPreviewRows = 50

var previewTableTemplate = template.Must(template.New("previewTable").Parse(`
<div id="overview-content">
<p class="dataset-meta">{{.Label}} — {{.Rows}} строк, {{.Cols}} столбцов</p>
<table class="modern-table">
<thead><tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{range .Preview}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}
</tbody>
</table>
</div>`))

type SSEHandlers struct {
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
}

func NewSSEHandlers(store *session.Store, cfg *config.Config, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

type previewData struct {
	Label   string
	Rows    int
	Cols    int
	Columns []string
	Preview [][]string
}

func (h *SSEHandlers) renderPreviewTable(ds *session.Dataset) (string, error) {
	t := ds.Table

	rows := t.NumRows()
	if rows > maxPreviewRows {
		rows = maxPreviewRows
	}
	preview := make([][]string, rows)
	names := t.Columns()
	for r := 0; r < rows; r++ {
		rec := make([]string, len(names))
		for ci, name := range names {
			rec[ci], _ = t.Cell(r, name)
		}
		preview[r] = rec
	}

	data := previewData{
		Label:   ds.Label,
		Rows:    t.NumRows(),
		Cols:    t.NumCols(),
		Columns: names,
		Preview: preview,
	}

	var buf strings.Builder
	err := previewTableTemplate.Execute(&buf, data)
	return buf.String(), err
}

func (h *SSEHandlers) dataset(r *http.Request) (*session.Dataset, bool) {
	sid := session.FromContext(r.Context())
	return h.store.Dataset(sid)
}

func (h *SSEHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ds, ok := h.dataset(r)
	if !ok {
		sse.PatchElements(`<div id="overview-content">Датасет не загружен</div>`)
		flush(w)
		return
	}

	html, err := h.renderPreviewTable(ds)
	if err != nil {
		h.logger.Error("render preview table", "error", err)
		return
	}
	sse.PatchElements(html)

	flush(w)
}

func (h *SSEHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ds, ok := h.dataset(r)
	if !ok {
		sse.PatchElements(`<div id="kpi-content">Датасет не загружен</div>`)
		flush(w)
		return
	}

	kpis, err := h.computeKPIs(ds.Table, r)
	if err != nil {
		h.logger.Warn("kpi computation failed", "error", err)
		sse.PatchElements(`<div id="kpi-content">Не удалось рассчитать KPI для этих данных</div>`)
		flush(w)
		return
	}

	jsonData, err := json.Marshal(map[string]any{"kpiData": kpis})
	if err != nil {
		h.logger.Error("marshal kpi data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="kpi-content">✅ KPI data loaded</div>`)

	flush(w)
}

func (h *SSEHandlers) computeKPIs(t *dataset.Table, r *http.Request) (analysis.KPIs, error) {
	revenueCol := r.URL.Query().Get("revenue")
	if revenueCol == "" {
		revenueCol, _ = analysis.SuggestRevenueColumn(t)
	}
	dateCol := r.URL.Query().Get("date")
	if dateCol == "" {
		dateCol, _ = analysis.SuggestDateColumn(t)
	}
	return analysis.ComputeKPIs(t, revenueCol, dateCol)
}

func (h *SSEHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ds, ok := h.dataset(r)
	if !ok {
		sse.PatchElements(`<div id="chart-content">Датасет не загружен</div>`)
		flush(w)
		return
	}

	q := r.URL.Query()
	typ, err := analysis.ParseChartType(q.Get("type"))
	if err != nil {
		h.logger.Warn("invalid chart type", "error", err)
		sse.PatchElements(`<div id="chart-content">Неизвестный тип графика</div>`)
		flush(w)
		return
	}

	chart, err := analysis.BuildChart(ds.Table, typ, q.Get("x"), q.Get("y"))
	if err != nil {
		h.logger.Warn("chart build failed", "error", err)
		sse.PatchElements(`<div id="chart-content">Не удалось построить график</div>`)
		flush(w)
		return
	}

	jsonData, err := json.Marshal(map[string]any{"chartData": chart})
	if err != nil {
		h.logger.Error("marshal chart data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)
	sse.PatchElements(`<div id="chart-content">✅ Chart data loaded</div>`)

	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	ds, ok := h.dataset(r)
	if !ok {
		sse.PatchElements(`<div id="overview-content">Датасет не загружен</div>`)
		flush(w)
		return
	}

	html, err := h.renderPreviewTable(ds)
	if err != nil {
		h.logger.Error("render preview table", "error", err)
		return
	}
	sse.PatchElements(html)

	signals := map[string]any{}
	if kpis, err := h.computeKPIs(ds.Table, r); err == nil {
		signals["kpiData"] = kpis
	}
	if matrix, err := analysis.Correlation(ds.Table); err == nil {
		signals["correlationData"] = matrix
	}

	if len(signals) > 0 {
		jsonData, err := json.Marshal(signals)
		if err != nil {
			h.logger.Error("marshal refresh signals", "error", err)
			return
		}
		sse.PatchSignals(jsonData)
	}

	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
