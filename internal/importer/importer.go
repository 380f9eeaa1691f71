// Package importer reads part lists from CSV, Excel and DXF files.
// Tabular imports detect the delimiter and map columns by header names,
// case-insensitively.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/SlabNest/internal/model"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Parts    []model.Part
	Errors   []string
	Warnings []string
}

// ColumnMapping maps column roles to their indices in the data. -1 means absent.
type ColumnMapping struct {
	Name     int
	Width    int
	Height   int
	Quantity int
	Shape    int
	Radius   int
	Rotate   int
}

var headerAliases = map[string][]string{
	"name":     {"name", "label", "part", "part name", "description", "desc", "piece", "item"},
	"width":    {"width", "w", "length", "len", "x"},
	"height":   {"height", "h", "depth", "d", "y"},
	"quantity": {"quantity", "qty", "count", "num", "amount", "pcs", "pieces"},
	"shape":    {"shape", "shape type", "shapetype", "type"},
	"radius":   {"radius", "r"},
	"rotate":   {"rotate", "rotation", "allow rotation", "allowrotation", "can rotate"},
}

// DetectCSVDelimiter returns the most likely delimiter among comma,
// semicolon, tab and pipe: the one giving the most rows with the same
// (more than one) column count as the first row.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0

	for _, delim := range []rune{',', ';', '\t', '|'} {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}

		cols := len(records[0])
		score := 0
		for _, row := range records {
			if len(row) == cols {
				score++
			}
		}
		if weighted := score*10 + cols; weighted > bestScore {
			best, bestScore = delim, weighted
		}
	}
	return best
}

// DetectColumns maps a header row to column roles. Without a recognizable
// header it returns the positional mapping Name, Width, Height, Quantity,
// Shape, Radius, Rotate and false.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{-1, -1, -1, -1, -1, -1, -1}
	slots := map[string]*int{
		"name":     &mapping.Name,
		"width":    &mapping.Width,
		"height":   &mapping.Height,
		"quantity": &mapping.Quantity,
		"shape":    &mapping.Shape,
		"radius":   &mapping.Radius,
		"rotate":   &mapping.Rotate,
	}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				if slot := slots[role]; *slot == -1 {
					*slot = i
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Name: 0, Width: 1, Height: 2, Quantity: 3, Shape: 4, Radius: 5, Rotate: 6}, false
	}
	return mapping, true
}

// parseShape accepts the shape type names plus a few shop-floor spellings.
func parseShape(s string) (model.ShapeType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rectangle", "rect", "r":
		return model.ShapeRectangle, true
	case "circle", "round", "c":
		return model.ShapeCircle, true
	case "arc", "a":
		return model.ShapeArc, true
	case "l_shape", "l-shape", "lshape", "l":
		return model.ShapeLShape, true
	default:
		return model.ShapeRectangle, false
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "1", "x":
		return true, true
	case "", "no", "n", "false", "0", "-":
		return false, true
	}
	return false, false
}

func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts the parts described by one row. A quantity above one
// yields that many parts with numbered names.
func parseRow(row []string, mapping ColumnMapping, rowLabel string, partCount int) ([]model.Part, string, []string) {
	var warnings []string

	name := getCell(row, mapping.Name)
	if name == "" {
		name = fmt.Sprintf("Part %d", partCount+1)
	}

	shapeStr := getCell(row, mapping.Shape)
	shape, ok := parseShape(shapeStr)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown shape '%s', defaulting to rectangle", rowLabel, shapeStr))
	}

	var radius float64
	if shape == model.ShapeCircle || shape == model.ShapeArc {
		radiusStr := getCell(row, mapping.Radius)
		if radiusStr != "" {
			r, err := strconv.ParseFloat(radiusStr, 64)
			if err != nil || r <= 0 {
				return nil, fmt.Sprintf("%s: Invalid radius '%s'", rowLabel, radiusStr), warnings
			}
			radius = r
		}
	}

	width, height := 2*radius, 2*radius
	if radius == 0 {
		var errMsg string
		width, height, errMsg = parseSize(row, mapping, rowLabel)
		if errMsg != "" {
			return nil, errMsg, warnings
		}
	}

	qty := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		n, err := strconv.Atoi(qtyStr)
		if err != nil {
			return nil, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), warnings
		}
		if n <= 0 {
			return nil, fmt.Sprintf("%s: Quantity must be positive", rowLabel), warnings
		}
		qty = n
	}

	rotStr := getCell(row, mapping.Rotate)
	allowRotation, ok := parseBool(rotStr)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown rotate value '%s', defaulting to no", rowLabel, rotStr))
	}

	parts := make([]model.Part, 0, qty)
	for i := 0; i < qty; i++ {
		partName := name
		if qty > 1 {
			partName = fmt.Sprintf("%s #%d", name, i+1)
		}
		p := model.NewPart(partName, width, height)
		p.ShapeType = shape
		p.AllowRotation = allowRotation
		switch {
		case shape == model.ShapeCircle && radius > 0:
			p.ShapeData = &model.CircleData{Radius: radius}
		case shape == model.ShapeArc && radius > 0:
			p.ShapeData = &model.ArcData{Radius: radius, EndAngle: 180}
		}
		parts = append(parts, p)
	}
	return parts, "", warnings
}

func parseSize(row []string, mapping ColumnMapping, rowLabel string) (float64, float64, string) {
	widthStr := getCell(row, mapping.Width)
	if widthStr == "" {
		return 0, 0, fmt.Sprintf("%s: Missing width value", rowLabel)
	}
	width, err := strconv.ParseFloat(widthStr, 64)
	if err != nil {
		return 0, 0, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, widthStr)
	}

	heightStr := getCell(row, mapping.Height)
	if heightStr == "" {
		return 0, 0, fmt.Sprintf("%s: Missing height value", rowLabel)
	}
	height, err := strconv.ParseFloat(heightStr, 64)
	if err != nil {
		return 0, 0, fmt.Sprintf("%s: Invalid height '%s'", rowLabel, heightStr)
	}

	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Sprintf("%s: Width and height must be positive", rowLabel)
	}
	return width, height, ""
}

func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportCSV imports parts from a CSV file with any supported delimiter.
func ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}
	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	records, err := readCSV(bytes.NewReader(data), delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", warnings)
}

// ImportCSVFromReader imports parts from r using a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	records, err := readCSV(r, delimiter)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}
	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return importFromRows(records, "Line", nil)
}

func readCSV(r io.Reader, delimiter rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// ImportExcel imports parts from the first sheet of an .xlsx file.
func ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}
	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// ImportFile picks the importer from the file extension.
func ImportFile(path string) ImportResult {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ImportCSV(path)
	}
}

// importFromRows is the shared import logic for CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "No data rows found")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		var missing []string
		if mapping.Width == -1 && mapping.Radius == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 && mapping.Radius == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	} else if len(rows[0]) >= 3 {
		// An unrecognized header: the width column is not numeric.
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][1]), 64); err != nil {
			startRow = 1
			result.Warnings = append(result.Warnings, "Detected header row, skipping")
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		parts, errMsg, warnings := parseRow(row, mapping, rowLabel, len(result.Parts))
		result.Warnings = append(result.Warnings, warnings...)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Parts = append(result.Parts, parts...)
	}

	if len(result.Parts) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No valid parts found in file")
	}
	return result
}
