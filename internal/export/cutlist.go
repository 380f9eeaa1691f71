package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Worksheet names of the cut list workbook.
const (
	SheetCutList  = "Cut List"
	SheetSlabs    = "Slabs"
	SheetOffcuts  = "Offcuts"
	SheetUnplaced = "Unplaced"
)

var (
	cutListHeader  = []any{"Slab", "Part ID", "Name", "Shape", "Width (mm)", "Height (mm)", "X (mm)", "Y (mm)", "Rotation", "Locked", "Cutouts", "Edges"}
	slabsHeader    = []any{"Slab", "ID", "Name", "Stone", "Width (mm)", "Height (mm)", "Parts", "Used (mm²)", "Total (mm²)", "Waste %"}
	offcutsHeader  = []any{"Slab", "X (mm)", "Y (mm)", "Width (mm)", "Height (mm)", "Area (mm²)"}
	unplacedHeader = []any{"Part ID", "Name", "Shape", "Width (mm)", "Height (mm)"}
)

// ExportCutList writes the layout as an xlsx workbook with one worksheet for
// placements, slab usage, offcuts and unplaced parts.
func ExportCutList(path string, layout Layout) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCutList); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetSlabs, SheetOffcuts, SheetUnplaced} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to add sheet %q: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	var cutRows, slabRows, offcutRows, unplacedRows [][]any
	for _, sheet := range layout.Sheets {
		for _, p := range sheet.Placements {
			part := layout.part(p.PartID)
			var edges []string
			for _, e := range part.EdgeProfiles {
				edges = append(edges, e.Edge+":"+e.Profile)
			}
			cutRows = append(cutRows, []any{
				sheet.Index, part.ID, displayName(part), string(part.ShapeType),
				p.Width, p.Height, p.X, p.Y, int(p.Rotation), part.IsLocked,
				len(part.Cutouts), strings.Join(edges, ", "),
			})
		}
		slabRows = append(slabRows, []any{
			sheet.Index, sheet.Slab.ID, slabName(sheet.Slab), sheet.Slab.StoneName,
			sheet.Slab.Width, sheet.Slab.Height, len(sheet.Placements),
			sheet.Usage.UsedArea, sheet.Usage.TotalArea, sheet.Usage.WastePercentage,
		})
		for _, o := range sheet.Offcuts {
			offcutRows = append(offcutRows, []any{sheet.Index, o.X, o.Y, o.Width, o.Height, o.Area()})
		}
	}
	for _, part := range layout.Unplaced {
		unplacedRows = append(unplacedRows, []any{part.ID, displayName(part), string(part.ShapeType), part.Width, part.Height})
	}

	tables := []struct {
		sheet  string
		header []any
		rows   [][]any
	}{
		{SheetCutList, cutListHeader, cutRows},
		{SheetSlabs, slabsHeader, slabRows},
		{SheetOffcuts, offcutsHeader, offcutRows},
		{SheetUnplaced, unplacedHeader, unplacedRows},
	}
	for _, t := range tables {
		if err := writeTable(f, t.sheet, t.header, t.rows, bold); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save cut list: %w", err)
	}
	return nil
}

// writeTable writes a header row with the given style followed by the data rows.
func writeTable(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", sheet, err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	return f.SetColWidth(sheet, "A", lastCol, 14)
}
