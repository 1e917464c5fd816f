package demo

import (
	"strings"
	"testing"
)

func TestDatasets(t *testing.T) {
	entries, err := Datasets(100, 42)
	if err != nil {
		t.Fatalf("Datasets() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Datasets() returned %d entries, want 3", len(entries))
	}

	if !strings.Contains(entries[0].Label, "100") {
		t.Errorf("detailed label %q should embed the record count", entries[0].Label)
	}
	if entries[0].Table.NumRows() != 100 {
		t.Errorf("detailed rows = %d, want 100", entries[0].Table.NumRows())
	}
	if entries[1].Table.NumRows() != 12 {
		t.Errorf("monthly rows = %d, want 12", entries[1].Table.NumRows())
	}
	if entries[2].Table.NumRows() != 10 {
		t.Errorf("top products rows = %d, want 10", entries[2].Table.NumRows())
	}

	for i, e := range entries {
		if e.Description == "" {
			t.Errorf("entry %d has no description", i)
		}
	}
}

func TestDescriptions(t *testing.T) {
	descs := Descriptions(100)
	if len(descs) != 3 {
		t.Fatalf("Descriptions() returned %d entries, want 3", len(descs))
	}

	entries, err := Datasets(100, 42)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if descs[e.Label] != e.Description {
			t.Errorf("description mismatch for %q", e.Label)
		}
	}
}

func TestDataset_Lookup(t *testing.T) {
	entries, err := Datasets(100, 42)
	if err != nil {
		t.Fatal(err)
	}

	for _, e := range entries {
		tbl, ok := Dataset(e.Label, 100, 42)
		if !ok {
			t.Errorf("Dataset(%q) not found", e.Label)
			continue
		}
		if tbl.NumRows() != e.Table.NumRows() {
			t.Errorf("Dataset(%q) rows = %d, want %d", e.Label, tbl.NumRows(), e.Table.NumRows())
		}
	}

	if _, ok := Dataset("nonexistent", 100, 42); ok {
		t.Error("Dataset() should miss on unknown labels")
	}

	// The detailed label is parameterized by record count.
	entries50, err := Datasets(50, 42)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := Dataset(entries50[0].Label, 100, 42); ok {
		t.Error("detailed label for a different record count should miss")
	}
}
