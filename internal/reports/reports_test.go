package reports

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func sampleTable() Table {
	return Table{
		Title:   "Bookings",
		Headers: []string{"ID", "Property", "Status", "Total"},
		Rows: [][]string{
			{"b1", "p1", "confirmed", "250.00"},
			{"b2", "p2", "cancelled", "120.50"},
		},
	}
}

func TestRenderXLSX(t *testing.T) {
	data, err := RenderXLSX(sampleTable())
	if err != nil {
		t.Fatalf("RenderXLSX: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0][1] != "Property" {
		t.Errorf("expected header Property, got %q", rows[0][1])
	}
	if rows[2][2] != "cancelled" {
		t.Errorf("expected cancelled, got %q", rows[2][2])
	}
}

func TestRenderPDF(t *testing.T) {
	long := sampleTable()
	long.Rows = append(long.Rows, []string{"b3", strings.Repeat("very long property name ", 20), "completed"})

	data, err := RenderPDF(long, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("RenderPDF: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output is not a pdf document")
	}
}

func TestRender(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)

	t.Run("xlsx file metadata", func(t *testing.T) {
		file, err := Render(sampleTable(), FormatXLSX, now)
		if err != nil {
			t.Fatalf("Render: %v", err)
		}
		if file.Name != "bookings-20240601-123000.xlsx" {
			t.Errorf("unexpected name %q", file.Name)
		}
		if file.ContentType != xlsxContentType {
			t.Errorf("unexpected content type %q", file.ContentType)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := Render(sampleTable(), Format("csv"), now)
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
		}
	})
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat(" PDF "); err != nil || f != FormatPDF {
		t.Errorf("expected pdf, got %q %v", f, err)
	}
	if f, err := ParseFormat(""); err != nil || f != FormatXLSX {
		t.Errorf("expected xlsx default, got %q %v", f, err)
	}
	if _, err := ParseFormat("docx"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}
