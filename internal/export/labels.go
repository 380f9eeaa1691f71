package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/SlabNest/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// LabelInfo holds the data encoded into each part label's QR code.
type LabelInfo struct {
	PartID    string          `json:"part_id"`
	PartName  string          `json:"name"`
	Shape     model.ShapeType `json:"shape"`
	Width     float64         `json:"width_mm"`
	Height    float64         `json:"height_mm"`
	SlabIndex int             `json:"slab"`
	SlabName  string          `json:"slab_name"`
	Stone     string          `json:"stone,omitempty"`
	Rotation  model.Rotation  `json:"rotation"`
	X         float64         `json:"x_mm"`
	Y         float64         `json:"y_mm"`
	Locked    bool            `json:"locked,omitempty"`
	Cutouts   int             `json:"cutouts,omitempty"`
	Edges     []string        `json:"edges,omitempty"` // "edge:profile", raw edges left out
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelMarginTop  = 12.7 // mm
	labelMarginLeft = 4.8  // mm
	labelWidth      = 66.7 // mm per label
	labelHeight     = 25.4 // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// ExportLabels generates a PDF of QR-coded labels, one per placed part, laid
// out on Avery 5160 sheets. The QR code carries the LabelInfo as JSON so the
// shop floor can scan a piece back to its slab and position.
func ExportLabels(path string, layout Layout) error {
	if len(layout.Sheets) == 0 {
		return fmt.Errorf("no slabs to generate labels for")
	}

	labels := CollectLabelInfos(layout)
	if len(labels) == 0 {
		return fmt.Errorf("no parts placed to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, i, label); err != nil {
			return fmt.Errorf("failed to render label for %q: %w", label.PartName, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, seq int, info LabelInfo) error {
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	imgName := fmt.Sprintf("qr_%d_%s", seq, info.PartID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, truncate(pdf, info.PartName, textW), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%.0f x %.0f mm %s", info.Width, info.Height, info.Shape)
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	slabInfo := fmt.Sprintf("Slab %d @ (%.0f, %.0f)", info.SlabIndex, info.X, info.Y)
	pdf.CellFormat(textW, 3, slabInfo, "", 1, "L", false, 0, "")

	if extra := labelFlags(info); extra != "" {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, truncate(pdf, extra, textW), "", 0, "L", false, 0, "")
	}

	pdf.SetTextColor(0, 0, 0)

	return nil
}

// labelFlags summarizes rotation, lock and cutouts on one line.
func labelFlags(info LabelInfo) string {
	var s string
	add := func(part string) {
		if s != "" {
			s += ", "
		}
		s += part
	}
	if info.Rotation != model.Rotation0 {
		add(fmt.Sprintf("Rotated %d\xb0", info.Rotation))
	}
	if info.Locked {
		add("Locked")
	}
	if info.Cutouts > 0 {
		add(fmt.Sprintf("%d cutout(s)", info.Cutouts))
	}
	return s
}

func truncate(pdf *fpdf.Fpdf, text string, width float64) string {
	if pdf.GetStringWidth(text) <= width {
		return text
	}
	for len(text) > 0 && pdf.GetStringWidth(text+"...") > width {
		text = text[:len(text)-1]
	}
	return text + "..."
}

// CollectLabelInfos extracts label information for every placed part, slab by
// slab in layout order.
func CollectLabelInfos(layout Layout) []LabelInfo {
	var labels []LabelInfo
	for _, sheet := range layout.Sheets {
		for _, p := range sheet.Placements {
			part := layout.part(p.PartID)
			info := LabelInfo{
				PartID:    part.ID,
				PartName:  displayName(part),
				Shape:     part.ShapeType,
				Width:     part.Width,
				Height:    part.Height,
				SlabIndex: sheet.Index,
				SlabName:  slabName(sheet.Slab),
				Stone:     sheet.Slab.StoneName,
				Rotation:  p.Rotation,
				X:         p.X,
				Y:         p.Y,
				Locked:    part.IsLocked,
				Cutouts:   len(part.Cutouts),
			}
			for _, e := range part.EdgeProfiles {
				if e.Profile == "" || e.Profile == "raw" {
					continue
				}
				info.Edges = append(info.Edges, e.Edge+":"+e.Profile)
			}
			labels = append(labels, info)
		}
	}
	return labels
}
