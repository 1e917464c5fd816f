package loader

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/dataset"
)

const sampleCSV = "Product,Quantity,Revenue\nLaptop,2,2400.50\nMouse,5,250\n"

func TestLoad_CSV(t *testing.T) {
	tbl, err := Load(context.Background(), "sales.csv", strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if tbl.NumRows() != 2 || tbl.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", tbl.NumRows(), tbl.NumCols())
	}

	qty, ok := tbl.Column("Quantity")
	if !ok || qty.Kind != dataset.KindInt {
		t.Error("Quantity should be inferred as int")
	}
	revenue, ok := tbl.Column("Revenue")
	if !ok || revenue.Kind != dataset.KindFloat {
		t.Error("Revenue should be inferred as float")
	}
}

func TestLoad_CaseInsensitiveExtension(t *testing.T) {
	if _, err := Load(context.Background(), "SALES.CSV", strings.NewReader(sampleCSV)); err != nil {
		t.Errorf("Load() should accept uppercase extensions: %v", err)
	}
}

func TestLoad_XLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Product", "Quantity", "Revenue"},
		{"Laptop", 2, 2400.5},
		{"Mouse", 5, 250},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(context.Background(), "sales.xlsx", &buf)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if tbl.NumRows() != 2 || tbl.NumCols() != 3 {
		t.Fatalf("shape = %dx%d, want 2x3", tbl.NumRows(), tbl.NumCols())
	}
	product, _ := tbl.Column("Product")
	if product.Strings[0] != "Laptop" {
		t.Errorf("Product[0] = %q, want Laptop", product.Strings[0])
	}
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	_, err := Load(context.Background(), "notes.txt", strings.NewReader("hello"))
	if err == nil {
		t.Fatal("Load() should reject unsupported extensions")
	}

	var unsupported *ErrUnsupportedFormat
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v, want *ErrUnsupportedFormat", err)
	}
	if unsupported.Ext != ".txt" {
		t.Errorf("Ext = %q, want .txt", unsupported.Ext)
	}
}

func TestLoad_CorruptInput(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		body     string
	}{
		{"empty csv", "empty.csv", ""},
		{"ragged csv", "bad.csv", "a,b\n1,2,3\n"},
		{"not a workbook", "bad.xlsx", "this is not a zip archive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(context.Background(), tt.filename, strings.NewReader(tt.body)); err == nil {
				t.Error("Load() should fail")
			}
		})
	}
}
