package session

import (
	"context"
	"testing"
	"time"

	"sales-dashboard/internal/dataset"
)

func testTable(t *testing.T, rows int) *dataset.Table {
	t.Helper()
	vals := make([]float64, rows)
	for i := range vals {
		vals[i] = float64(i)
	}
	tbl, err := dataset.New(dataset.FloatColumn("v", vals))
	if err != nil {
		t.Fatal(err)
	}
	return tbl
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(time.Minute)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func TestNewID_Unique(t *testing.T) {
	a, b := NewID(), NewID()
	if a == "" || a == b {
		t.Errorf("NewID() = %q, %q, want distinct non-empty ids", a, b)
	}
}

func TestStore_SetAndGet(t *testing.T) {
	s := newTestStore(t)
	id := NewID()

	if _, ok := s.Dataset(id); ok {
		t.Error("fresh session should have no dataset")
	}

	s.SetDataset(id, testTable(t, 3), SourceDemo, "demo-1")

	d, ok := s.Dataset(id)
	if !ok {
		t.Fatal("dataset should be present after SetDataset")
	}
	if d.Source != SourceDemo || d.Label != "demo-1" {
		t.Errorf("provenance = %v/%q, want demo/demo-1", d.Source, d.Label)
	}
	if d.Table.NumRows() != 3 {
		t.Errorf("rows = %d, want 3", d.Table.NumRows())
	}
	if d.LoadedAt.IsZero() {
		t.Error("LoadedAt should be set")
	}
}

func TestStore_ReplaceWholesale(t *testing.T) {
	s := newTestStore(t)
	id := NewID()

	s.SetDataset(id, testTable(t, 3), SourceDemo, "demo-1")
	s.SetDataset(id, testTable(t, 7), SourceUpload, "sales.csv")

	d, ok := s.Dataset(id)
	if !ok {
		t.Fatal("dataset should be present")
	}
	if d.Source != SourceUpload || d.Label != "sales.csv" || d.Table.NumRows() != 7 {
		t.Errorf("replacement not applied: %v/%q/%d rows", d.Source, d.Label, d.Table.NumRows())
	}
}

func TestStore_SessionsIsolated(t *testing.T) {
	s := newTestStore(t)
	a, b := NewID(), NewID()

	s.SetDataset(a, testTable(t, 3), SourceDemo, "demo-1")

	if _, ok := s.Dataset(b); ok {
		t.Error("dataset should not leak across sessions")
	}
}

func TestStore_Clear(t *testing.T) {
	s := newTestStore(t)
	id := NewID()

	s.SetDataset(id, testTable(t, 3), SourceDemo, "demo-1")
	s.Clear(id)

	if _, ok := s.Dataset(id); ok {
		t.Error("dataset should be gone after Clear")
	}

	// Clearing an unknown session is a no-op.
	s.Clear("nonexistent")
}

func TestStore_Stats(t *testing.T) {
	s := newTestStore(t)

	s.SetDataset(NewID(), testTable(t, 3), SourceDemo, "demo-1")
	s.SetDataset(NewID(), testTable(t, 5), SourceUpload, "sales.csv")

	stats := s.Stats()
	if stats["sessions"] != 2 {
		t.Errorf("sessions = %v, want 2", stats["sessions"])
	}
	if stats["total_rows"] != 8 {
		t.Errorf("total_rows = %v, want 8", stats["total_rows"])
	}
}

func TestStore_ShutdownIdempotent(t *testing.T) {
	s := NewStore(time.Minute)

	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() failed: %v", err)
	}
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("second Shutdown() failed: %v", err)
	}
}

func TestContext_RoundTrip(t *testing.T) {
	ctx := NewContext(context.Background(), "abc")

	if id := FromContext(ctx); id != "abc" {
		t.Errorf("FromContext() = %q, want abc", id)
	}

	if id := FromContext(context.Background()); id != "" {
		t.Errorf("FromContext() on a bare context = %q, want empty", id)
	}
}
