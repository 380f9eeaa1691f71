package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportCutList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutlist.xlsx")

	if err := ExportCutList(path, buildTestLayout()); err != nil {
		t.Fatalf("ExportCutList returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{SheetCutList, SheetSlabs, SheetOffcuts, SheetUnplaced}
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, sheets[i], want[i])
		}
	}

	rows, err := f.GetRows(SheetCutList)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("expected header + 4 placements, got %d rows", len(rows))
	}
	if rows[1][2] != "Kitchen L" || rows[1][3] != "l_shape" {
		t.Errorf("unexpected first row %v", rows[1])
	}
	if rows[3][1] != "v1" || rows[3][9] != "TRUE" {
		t.Errorf("expected locked vanity on row 3, got %v", rows[3])
	}

	slabs, _ := f.GetRows(SheetSlabs)
	if len(slabs) != 3 {
		t.Errorf("expected header + 2 used slabs, got %d rows", len(slabs))
	}

	unplaced, _ := f.GetRows(SheetUnplaced)
	if len(unplaced) != 2 || unplaced[1][0] != "x1" {
		t.Errorf("expected the oversized part as unplaced, got %v", unplaced)
	}
}

func TestExportCutList_EmptyLayoutWritesHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	if err := ExportCutList(path, Layout{}); err != nil {
		t.Fatalf("ExportCutList returned error: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open workbook: %v", err)
	}
	defer f.Close()

	rows, _ := f.GetRows(SheetCutList)
	if len(rows) != 1 || rows[0][0] != "Slab" {
		t.Errorf("expected only the header row, got %v", rows)
	}
}
