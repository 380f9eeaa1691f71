package export

import (
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SlabNest/internal/model"
)

// partColor represents an RGB color for a placed part.
type partColor struct {
	R, G, B int
}

var partColors = []partColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes one page per used slab with the nested layout drawn to
// scale, followed by a summary page.
func ExportPDF(path string, layout Layout) error {
	if len(layout.Sheets) == 0 {
		return fmt.Errorf("no slabs with placed parts to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, sheet := range layout.Sheets {
		pdf.AddPage()
		renderSheetPage(pdf, layout, sheet)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, layout)

	return pdf.OutputFileAndClose(path)
}

// renderSheetPage draws a single slab on the current PDF page.
func renderSheetPage(pdf *fpdf.Fpdf, layout Layout, sheet Sheet) {
	slab := sheet.Slab

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Slab %d: %s (%.0f x %.0f mm)", sheet.Index, slabName(slab), slab.Width, slab.Height)
	if slab.StoneName != "" {
		title += " - " + slab.StoneName
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Parts: %d | Used area: %.0f mm² | Total area: %.0f mm² | Waste: %.1f%%",
		len(sheet.Placements), sheet.Usage.UsedArea, sheet.Usage.TotalArea, sheet.Usage.WastePercentage)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/slab.Width, drawHeight/slab.Height)
	canvasW := slab.Width * scale
	canvasH := slab.Height * scale

	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Stone background
	pdf.SetFillColor(205, 200, 190)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	for _, o := range sheet.Offcuts {
		drawOffcut(pdf, o, scale, offsetX, offsetY)
	}

	for i, p := range sheet.Placements {
		part := layout.part(p.PartID)
		col := partColors[i%len(partColors)]
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale
		pw := p.Width * scale
		ph := p.Height * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		if part.IsLocked {
			pdf.SetDashPattern([]float64{1.5, 1}, 0)
		}
		drawOutline(pdf, part, p, px, py, pw, ph)
		pdf.SetDashPattern([]float64{}, 0)

		drawCutouts(pdf, part, p, px, py, scale)

		if pw > 15 && ph > 8 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := displayName(part)
			dims := fmt.Sprintf("%.0fx%.0f", part.Width, part.Height)
			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			if labelW < pw-2 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
			if ph > 14 && dimsW < pw-2 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, slab, offsetX, offsetY, canvasW, canvasH)
	drawPartsLegend(pdf, layout, sheet, offsetY+canvasH+5)
}

// drawOutline draws the part's true outline inside its placed box.
func drawOutline(pdf *fpdf.Fpdf, part model.Part, p model.PlacedPart, px, py, pw, ph float64) {
	switch d := part.ShapeData.(type) {
	case *model.CircleData:
		r := math.Min(pw, ph) / 2
		pdf.Circle(px+pw/2, py+ph/2, r, "FD")
		return
	case *model.ArcData:
		r := math.Min(pw, ph) / 2
		pdf.Arc(px+pw/2, py+ph/2, r, r, float64(p.Rotation), d.StartAngle, d.EndAngle, "FD")
		return
	case *model.LShapeData:
		pdf.Polygon(lShapeOutline(d, pw, ph, p.Rotation, px, py), "FD")
		return
	}
	pdf.Rect(px, py, pw, ph, "FD")
}

// lShapeOutline returns the page-space vertices of an L-shaped part placed in
// a pw x ph box. The cutout is scaled to the box the same way the main body is.
func lShapeOutline(d *model.LShapeData, pw, ph float64, rot model.Rotation, px, py float64) []fpdf.PointType {
	w, h := pw, ph
	if rot.Swaps() {
		w, h = ph, pw
	}
	cw := d.CutoutWidth / d.MainWidth * w
	ch := d.CutoutHeight / d.MainHeight * h

	var pts []fpdf.PointType
	switch d.CutoutPosition {
	case model.CutoutTopLeft:
		pts = []fpdf.PointType{{X: cw, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}, {X: 0, Y: ch}, {X: cw, Y: ch}}
	case model.CutoutTopRight:
		pts = []fpdf.PointType{{X: 0, Y: 0}, {X: w - cw, Y: 0}, {X: w - cw, Y: ch}, {X: w, Y: ch}, {X: w, Y: h}, {X: 0, Y: h}}
	case model.CutoutBottomLeft:
		pts = []fpdf.PointType{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: cw, Y: h}, {X: cw, Y: h - ch}, {X: 0, Y: h - ch}}
	default:
		pts = []fpdf.PointType{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h - ch}, {X: w - cw, Y: h - ch}, {X: w - cw, Y: h}, {X: 0, Y: h}}
	}

	for i := range pts {
		pts[i] = rotatePoint(pts[i], w, h, rot)
		pts[i].X += px
		pts[i].Y += py
	}
	return pts
}

// rotatePoint turns a point of a w x h box clockwise by rot (y pointing down),
// keeping it inside the rotated box.
func rotatePoint(pt fpdf.PointType, w, h float64, rot model.Rotation) fpdf.PointType {
	for turns := int(rot) / 90; turns > 0; turns-- {
		pt = fpdf.PointType{X: h - pt.Y, Y: pt.X}
		w, h = h, w
	}
	return pt
}

// drawCutouts blanks sink and hob openings inside a placed part.
func drawCutouts(pdf *fpdf.Fpdf, part model.Part, p model.PlacedPart, px, py, scale float64) {
	if len(part.Cutouts) == 0 {
		return
	}
	pdf.SetFillColor(255, 255, 255)
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.2)
	for _, c := range part.Cutouts {
		a := rotatePoint(fpdf.PointType{X: c.X, Y: c.Y}, part.Width, part.Height, p.Rotation)
		b := rotatePoint(fpdf.PointType{X: c.X + c.Width, Y: c.Y + c.Height}, part.Width, part.Height, p.Rotation)
		x := math.Min(a.X, b.X)
		y := math.Min(a.Y, b.Y)
		pdf.Rect(px+x*scale, py+y*scale, math.Abs(b.X-a.X)*scale, math.Abs(b.Y-a.Y)*scale, "FD")
	}
}

// drawOffcut marks a reusable remnant with a hatched outline.
func drawOffcut(pdf *fpdf.Fpdf, o model.Offcut, scale, offsetX, offsetY float64) {
	ox := offsetX + o.X*scale
	oy := offsetY + o.Y*scale
	ow := o.Width * scale
	oh := o.Height * scale

	pdf.SetFillColor(225, 240, 225)
	pdf.SetDrawColor(60, 140, 60)
	pdf.SetLineWidth(0.3)
	pdf.Rect(ox, oy, ow, oh, "FD")
	drawHatchPattern(pdf, ox, oy, ow, oh)

	if ow > 20 && oh > 8 {
		pdf.SetFont("Helvetica", "B", 6)
		pdf.SetTextColor(40, 110, 40)
		label := fmt.Sprintf("OFFCUT %.0fx%.0f", o.Width, o.Height)
		labelW := pdf.GetStringWidth(label)
		if labelW < ow-2 {
			pdf.SetXY(ox+(ow-labelW)/2, oy+oh/2-2)
			pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
		}
	}
	pdf.SetTextColor(0, 0, 0)
}

// drawHatchPattern draws diagonal lines inside a rectangle in the current draw color.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetLineWidth(0.15)

	spacing := 4.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the slab.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, slab model.Slab, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%.0f mm", slab.Width)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%.0f mm", slab.Height)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawPartsLegend renders a compact legend of placed parts under the slab.
func drawPartsLegend(pdf *fpdf.Fpdf, layout Layout, sheet Sheet, startY float64) {
	if len(sheet.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Parts placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for i, p := range sheet.Placements {
		col := partColors[i%len(partColors)]
		label := legendLabel(layout.part(p.PartID), p)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

func legendLabel(part model.Part, p model.PlacedPart) string {
	label := fmt.Sprintf("%s (%.0fx%.0f)", displayName(part), part.Width, part.Height)
	if p.Rotation != model.Rotation0 {
		label += fmt.Sprintf(" R%d", p.Rotation)
	}
	if part.IsLocked {
		label += " [locked]"
	}
	return label
}

// renderSummaryPage draws the final page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, layout Layout) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Slab Nesting Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	offcuts := layout.Offcuts()
	summaryItems := []struct {
		label string
		value string
	}{
		{"Slabs Used", fmt.Sprintf("%d", len(layout.Sheets))},
		{"Overall Efficiency", fmt.Sprintf("%.1f%%", layout.Result.TotalEfficiency())},
		{"Parts Placed", fmt.Sprintf("%d", layout.PlacedCount())},
		{"Unplaced Parts", fmt.Sprintf("%d", len(layout.Unplaced))},
		{"Reusable Offcuts", fmt.Sprintf("%d (%.0f mm²)", len(offcuts), model.TotalOffcutArea(offcuts))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(40, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Slab Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{15, 55, 45, 45, 20, 25, 60}
	headers := []string{"Slab", "Name", "Stone", "Dimensions", "Parts", "Waste", "Used / Total Area"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, sheet := range layout.Sheets {
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", sheet.Index),
			slabName(sheet.Slab),
			sheet.Slab.StoneName,
			fmt.Sprintf("%.0f x %.0f mm", sheet.Slab.Width, sheet.Slab.Height),
			fmt.Sprintf("%d", len(sheet.Placements)),
			fmt.Sprintf("%.1f%%", sheet.Usage.WastePercentage),
			fmt.Sprintf("%.0f / %.0f mm²", sheet.Usage.UsedArea, sheet.Usage.TotalArea),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(layout.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Parts", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, part := range layout.Unplaced {
			pdf.SetXY(marginLeft+5, y)
			if y > pageHeight-marginBottom-25 {
				pdf.CellFormat(200, 5, "...", "", 0, "L", false, 0, "")
				y += 5
				break
			}
			text := fmt.Sprintf("- %s: %.0f x %.0f mm (%s)", displayName(part), part.Width, part.Height, part.ShapeType)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Settings", "", 0, "L", false, 0, "")
	y += 9

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(marginLeft+5, y)
	pdf.CellFormat(50, 5, "Kerf Width:", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 5, fmt.Sprintf("%.1f mm", layout.Settings.KerfWidth), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by SlabNest - Stone Slab Nesting", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
