package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"sales-dashboard/internal/analysis"
	"sales-dashboard/internal/config"
	"sales-dashboard/internal/dataset"
	"sales-dashboard/internal/demo"
	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/session"
)

const (
	cacheMaxAge = "public, max-age=300"
	previewRows = 20
	maxTopN     = 100
)

type APIHandlers struct {
	store  *session.Store
	cfg    *config.Config
	logger *slog.Logger
}

func NewAPIHandlers(store *session.Store, cfg *config.Config, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// tablePayload is the JSON rendering of a table: column names, kinds, and
// string-formatted rows.
type tablePayload struct {
	Columns []string   `json:"columns"`
	Kinds   []string   `json:"kinds"`
	Rows    [][]string `json:"rows"`
}

func tableToPayload(t *dataset.Table, maxRows int) tablePayload {
	names := t.Columns()
	p := tablePayload{Columns: names, Kinds: make([]string, len(names))}

	for i, name := range names {
		c, _ := t.Column(name)
		p.Kinds[i] = c.Kind.String()
	}

	rows := t.NumRows()
	if maxRows >= 0 && rows > maxRows {
		rows = maxRows
	}
	p.Rows = make([][]string, rows)
	for r := 0; r < rows; r++ {
		rec := make([]string, len(names))
		for ci, name := range names {
			rec[ci], _ = t.Cell(r, name)
		}
		p.Rows[r] = rec
	}
	return p
}

// active resolves the session's dataset or writes the no-dataset error.
func (h *APIHandlers) active(w http.ResponseWriter, r *http.Request) (*session.Dataset, bool) {
	sid := session.FromContext(r.Context())
	ds, ok := h.store.Dataset(sid)
	if !ok {
		requestID := observability.GetRequestID(r.Context())
		errors.WriteError(w, h.logger, errors.NotFound("no dataset loaded"), requestID)
		return nil, false
	}
	return ds, true
}

func (h *APIHandlers) writeErr(w http.ResponseWriter, r *http.Request, err *errors.AppError) {
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	errors.WriteSuccess(w, h.store.Stats())
}

type demoDatasetInfo struct {
	Label       string `json:"label"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Columns     int    `json:"columns"`
}

func (h *APIHandlers) HandleDemoDatasets(w http.ResponseWriter, r *http.Request) {
	entries, err := demo.Datasets(h.cfg.Demo.Records, h.cfg.Demo.Seed)
	if err != nil {
		h.writeErr(w, r, errors.Wrap(err, errors.CodeInternal, "failed to build demo datasets"))
		return
	}

	infos := make([]demoDatasetInfo, len(entries))
	for i, e := range entries {
		infos[i] = demoDatasetInfo{
			Label:       e.Label,
			Description: e.Description,
			Rows:        e.Table.NumRows(),
			Columns:     e.Table.NumCols(),
		}
	}

	errors.WriteSuccessWithHeaders(w, infos, map[string]string{"Cache-Control": cacheMaxAge})
}

type demoLoadRequest struct {
	Label string `json:"label"`
}

func (h *APIHandlers) HandleDemoLoad(w http.ResponseWriter, r *http.Request) {
	var req demoLoadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeErr(w, r, errors.BadRequestWrap(err, "invalid request body"))
		return
	}
	if req.Label == "" {
		h.writeErr(w, r, errors.Validation("label is required"))
		return
	}

	t, ok := demo.Dataset(req.Label, h.cfg.Demo.Records, h.cfg.Demo.Seed)
	if !ok {
		h.writeErr(w, r, errors.NotFound("unknown demo dataset"))
		return
	}

	sid := session.FromContext(r.Context())
	h.store.SetDataset(sid, t, session.SourceDemo, req.Label)

	h.logger.Info("demo dataset loaded",
		"label", req.Label,
		"rows", t.NumRows(),
	)

	errors.WriteSuccess(w, map[string]any{
		"label":   req.Label,
		"rows":    t.NumRows(),
		"columns": t.NumCols(),
	})
}

func (h *APIHandlers) HandleReset(w http.ResponseWriter, r *http.Request) {
	sid := session.FromContext(r.Context())
	h.store.Clear(sid)
	errors.WriteSuccess(w, map[string]string{"status": "cleared"})
}

type columnSchema struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

type overviewPayload struct {
	Source      session.Source `json:"source"`
	Label       string         `json:"label"`
	LoadedAt    time.Time      `json:"loaded_at"`
	Rows        int            `json:"rows"`
	Columns     int            `json:"columns"`
	Missing     int            `json:"missing"`
	Schema      []columnSchema `json:"schema"`
	Numeric     []string       `json:"numeric_columns"`
	Categorical []string       `json:"categorical_columns"`
	Dates       []string       `json:"date_columns"`
	Preview     tablePayload   `json:"preview"`
	Describe    tablePayload   `json:"describe"`
}

func (h *APIHandlers) HandleOverview(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}
	t := ds.Table

	schema := make([]columnSchema, 0, t.NumCols())
	for _, name := range t.Columns() {
		c, _ := t.Column(name)
		schema = append(schema, columnSchema{
			Name:    name,
			Kind:    c.Kind.String(),
			Missing: c.MissingCount(),
		})
	}

	desc, err := analysis.Describe(t)
	if err != nil {
		h.writeErr(w, r, errors.Wrap(err, errors.CodeInternal, "failed to summarize dataset"))
		return
	}

	errors.WriteSuccess(w, overviewPayload{
		Source:      ds.Source,
		Label:       ds.Label,
		LoadedAt:    ds.LoadedAt,
		Rows:        t.NumRows(),
		Columns:     t.NumCols(),
		Missing:     t.MissingCells(),
		Schema:      schema,
		Numeric:     t.NumericColumns(),
		Categorical: t.CategoricalColumns(),
		Dates:       t.TimeColumns(),
		Preview:     tableToPayload(t, previewRows),
		Describe:    tableToPayload(desc, -1),
	})
}

func (h *APIHandlers) HandleKPIs(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}
	t := ds.Table

	revenueCol := r.URL.Query().Get("revenue")
	if revenueCol == "" {
		suggested, found := analysis.SuggestRevenueColumn(t)
		if !found {
			h.writeErr(w, r, errors.Validation("no revenue column designated and none could be suggested"))
			return
		}
		revenueCol = suggested
	}

	dateCol := r.URL.Query().Get("date")
	if dateCol == "" {
		dateCol, _ = analysis.SuggestDateColumn(t)
	}

	kpis, err := analysis.ComputeKPIs(t, revenueCol, dateCol)
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "failed to compute KPIs"))
		return
	}

	errors.WriteSuccess(w, kpis)
}

func (h *APIHandlers) HandleChart(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	typ, err := analysis.ParseChartType(q.Get("type"))
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "invalid chart type"))
		return
	}

	chart, err := analysis.BuildChart(ds.Table, typ, q.Get("x"), q.Get("y"))
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "failed to build chart"))
		return
	}

	errors.WriteSuccess(w, chart)
}

func (h *APIHandlers) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}

	matrix, err := analysis.Correlation(ds.Table)
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "failed to compute correlation"))
		return
	}

	errors.WriteSuccess(w, matrix)
}

func (h *APIHandlers) HandleTop(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	by := q.Get("by")
	if by == "" {
		h.writeErr(w, r, errors.Validation("query parameter 'by' is required"))
		return
	}

	n := 10
	if raw := q.Get("n"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxTopN {
			h.writeErr(w, r, errors.Validation("query parameter 'n' must be an integer between 1 and 100"))
			return
		}
		n = parsed
	}

	idx, err := analysis.TopN(ds.Table, by, n)
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "failed to rank rows"))
		return
	}

	top, err := ds.Table.Select(idx)
	if err != nil {
		h.writeErr(w, r, errors.Wrap(err, errors.CodeInternal, "failed to select rows"))
		return
	}

	errors.WriteSuccess(w, tableToPayload(top, -1))
}

func (h *APIHandlers) HandleGroup(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	fn, err := analysis.ParseAggFunc(q.Get("fn"))
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "invalid aggregation function"))
		return
	}

	rows, err := analysis.GroupAggregate(ds.Table, q.Get("by"), q.Get("column"), fn)
	if err != nil {
		h.writeErr(w, r, errors.ValidationWrap(err, "failed to group data"))
		return
	}

	errors.WriteSuccess(w, map[string]any{
		"group_by":    q.Get("by"),
		"column":      q.Get("column"),
		"aggregation": fn,
		"rows":        rows,
	})
}

func (h *APIHandlers) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ds, ok := h.active(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sales_data.csv"`)

	if err := ds.Table.WriteCSV(w); err != nil {
		h.logger.Error("csv download failed", "error", err)
	}
}
