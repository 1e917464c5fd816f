package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sales-dashboard/internal/config"
	"sales-dashboard/internal/demo"
	"sales-dashboard/internal/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Demo: config.DemoConfig{
			Records:    100,
			MaxRecords: 1000,
			Seed:       42,
		},
		Upload: config.UploadConfig{
			MaxBytes: 1 << 20,
		},
		Session: config.SessionConfig{
			TTL: time.Minute,
		},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestAPI(t *testing.T) (*APIHandlers, *session.Store) {
	t.Helper()
	store := session.NewStore(time.Minute)
	t.Cleanup(func() { store.Shutdown(context.Background()) })
	return NewAPIHandlers(store, testConfig(), testLogger()), store
}

// sessionRequest builds a request carrying a session ID, the way the session
// middleware would.
func sessionRequest(method, target, sid string) *http.Request {
	r := httptest.NewRequest(method, target, nil)
	return r.WithContext(session.NewContext(r.Context(), sid))
}

func loadDemo(t *testing.T, store *session.Store, sid string) {
	t.Helper()
	tbl, err := demo.GenerateDetailed(100, 42)
	if err != nil {
		t.Fatal(err)
	}
	store.SetDataset(sid, tbl, session.SourceDemo, "demo")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.NewDecoder(w.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return env
}

func TestHandleHealth(t *testing.T) {
	h, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	h.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	env := decodeEnvelope(t, w)
	if !env.Success {
		t.Error("health response should be successful")
	}
	if !strings.Contains(string(env.Data), "healthy") {
		t.Errorf("data = %s, want status healthy", env.Data)
	}
}

func TestHandleDemoDatasets(t *testing.T) {
	h, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	h.HandleDemoDatasets(w, httptest.NewRequest(http.MethodGet, "/api/demo-datasets", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if cc := w.Header().Get("Cache-Control"); !strings.Contains(cc, "max-age") {
		t.Errorf("Cache-Control = %q, want cacheable", cc)
	}

	env := decodeEnvelope(t, w)
	var infos []demoDatasetInfo
	if err := json.Unmarshal(env.Data, &infos); err != nil {
		t.Fatal(err)
	}
	if len(infos) != 3 {
		t.Fatalf("datasets = %d, want 3", len(infos))
	}
	if infos[0].Rows != 100 {
		t.Errorf("detailed rows = %d, want 100", infos[0].Rows)
	}
}

func TestHandleDemoLoad(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()

	entries, err := demo.Datasets(100, 42)
	if err != nil {
		t.Fatal(err)
	}

	body := strings.NewReader(`{"label":` + mustJSON(t, entries[0].Label) + `}`)
	r := httptest.NewRequest(http.MethodPost, "/api/demo-datasets/load", body)
	r = r.WithContext(session.NewContext(r.Context(), sid))
	w := httptest.NewRecorder()
	h.HandleDemoLoad(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	ds, ok := store.Dataset(sid)
	if !ok {
		t.Fatal("dataset should be stored in the session")
	}
	if ds.Source != session.SourceDemo || ds.Table.NumRows() != 100 {
		t.Errorf("stored dataset = %v/%d rows, want demo/100", ds.Source, ds.Table.NumRows())
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestHandleDemoLoad_Errors(t *testing.T) {
	h, _ := newTestAPI(t)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"invalid json", "{", http.StatusBadRequest},
		{"missing label", `{}`, http.StatusBadRequest},
		{"unknown label", `{"label":"nope"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodPost, "/api/demo-datasets/load", strings.NewReader(tt.body))
			r = r.WithContext(session.NewContext(r.Context(), session.NewID()))
			w := httptest.NewRecorder()
			h.HandleDemoLoad(w, r)

			if w.Code != tt.code {
				t.Errorf("status = %d, want %d", w.Code, tt.code)
			}
			if env := decodeEnvelope(t, w); env.Success {
				t.Error("error responses should not be successful")
			}
		})
	}
}

func TestHandleOverview(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleOverview(w, sessionRequest(http.MethodGet, "/api/overview", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var overview overviewPayload
	if err := json.Unmarshal(env.Data, &overview); err != nil {
		t.Fatal(err)
	}
	if overview.Rows != 100 || overview.Columns != 14 {
		t.Errorf("shape = %dx%d, want 100x14", overview.Rows, overview.Columns)
	}
	if len(overview.Preview.Rows) != previewRows {
		t.Errorf("preview rows = %d, want %d", len(overview.Preview.Rows), previewRows)
	}
	if len(overview.Schema) != 14 {
		t.Errorf("schema entries = %d, want 14", len(overview.Schema))
	}
	if len(overview.Numeric) == 0 || len(overview.Categorical) == 0 || len(overview.Dates) == 0 {
		t.Error("overview should classify numeric, categorical and date columns")
	}
}

func TestHandleOverview_NoDataset(t *testing.T) {
	h, _ := newTestAPI(t)

	w := httptest.NewRecorder()
	h.HandleOverview(w, sessionRequest(http.MethodGet, "/api/overview", session.NewID()))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	env := decodeEnvelope(t, w)
	if env.Error == nil || env.Error.Code != "NOT_FOUND" {
		t.Errorf("error = %+v, want NOT_FOUND", env.Error)
	}
}

func TestHandleKPIs(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	// The demo dataset has a Revenue column, so suggestion kicks in.
	w := httptest.NewRecorder()
	h.HandleKPIs(w, sessionRequest(http.MethodGet, "/api/kpis", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if !strings.Contains(string(env.Data), `"revenue_column":"Revenue"`) {
		t.Errorf("data = %s, want suggested Revenue column", env.Data)
	}
}

func TestHandleKPIs_ExplicitColumn(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleKPIs(w, sessionRequest(http.MethodGet, "/api/kpis?revenue=Profit&date=Date", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"revenue_column":"Profit"`) {
		t.Error("designated column should win over the suggestion")
	}
}

func TestHandleKPIs_BadColumn(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleKPIs(w, sessionRequest(http.MethodGet, "/api/kpis?revenue=Region", sid))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleChart(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleChart(w, sessionRequest(http.MethodGet, "/api/chart?type=bar&x=Region&y=Revenue", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"type":"bar"`) {
		t.Error("response should carry the chart type")
	}
}

func TestHandleChart_InvalidType(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleChart(w, sessionRequest(http.MethodGet, "/api/chart?type=radar&x=Region&y=Revenue", sid))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleCorrelation(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleCorrelation(w, sessionRequest(http.MethodGet, "/api/correlation", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"columns"`) {
		t.Error("response should carry the correlation matrix")
	}
}

func TestHandleTop(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleTop(w, sessionRequest(http.MethodGet, "/api/top?by=Revenue&n=5", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	env := decodeEnvelope(t, w)
	var payload tablePayload
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Rows) != 5 {
		t.Fatalf("rows = %d, want 5", len(payload.Rows))
	}
}

func TestHandleTop_Validation(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	tests := []struct {
		name  string
		query string
	}{
		{"missing by", "/api/top"},
		{"non-numeric by", "/api/top?by=Region"},
		{"n too large", "/api/top?by=Revenue&n=1000"},
		{"n not a number", "/api/top?by=Revenue&n=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.HandleTop(w, sessionRequest(http.MethodGet, tt.query, sid))
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestHandleGroup(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleGroup(w, sessionRequest(http.MethodGet, "/api/group?by=Region&column=Revenue&fn=sum", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"group_by":"Region"`) {
		t.Error("response should echo the grouping column")
	}

	w = httptest.NewRecorder()
	h.HandleGroup(w, sessionRequest(http.MethodGet, "/api/group?by=Region&column=Revenue&fn=median", sid))
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown fn status = %d, want 400", w.Code)
	}
}

func TestHandleDownload(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleDownload(w, sessionRequest(http.MethodGet, "/api/download", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "sales_data.csv") {
		t.Errorf("Content-Disposition = %q, want attachment filename", cd)
	}

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	if len(lines) != 101 {
		t.Errorf("csv lines = %d, want header plus 100 rows", len(lines))
	}
}

func TestHandleReset(t *testing.T) {
	h, store := newTestAPI(t)
	sid := session.NewID()
	loadDemo(t, store, sid)

	w := httptest.NewRecorder()
	h.HandleReset(w, sessionRequest(http.MethodPost, "/api/reset", sid))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if _, ok := store.Dataset(sid); ok {
		t.Error("dataset should be cleared after reset")
	}
}

func TestHandleStats(t *testing.T) {
	h, store := newTestAPI(t)
	loadDemo(t, store, session.NewID())

	w := httptest.NewRecorder()
	h.HandleStats(w, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"sessions":1`) {
		t.Errorf("body = %s, want one session", w.Body.String())
	}
}
