// Package export renders nesting results to PDF layouts, QR-coded part labels
// and spreadsheet cut lists.
package export

import (
	"github.com/piwi3910/SlabNest/internal/model"
)

// Sheet is one slab together with everything seated on it.
type Sheet struct {
	Index      int // 1-based position among the used slabs
	Slab       model.Slab
	Placements []model.PlacedPart
	Usage      model.SlabUsage
	Offcuts    []model.Offcut
}

// Layout joins a nesting result with the parts and slabs it refers to, which
// is what every exporter needs to print names and outlines.
type Layout struct {
	Parts    map[string]model.Part
	Sheets   []Sheet
	Unplaced []model.Part
	Result   model.NestingResult
	Settings model.NestSettings
}

// NewLayout builds a Layout. Slabs without placements are left out. Unplaced
// ids that do not match any part are kept as bare parts named by their id.
func NewLayout(result model.NestingResult, parts []model.Part, slabs []model.Slab, settings model.NestSettings) Layout {
	l := Layout{
		Parts:    make(map[string]model.Part, len(parts)),
		Result:   result,
		Settings: settings,
	}
	for _, p := range parts {
		l.Parts[p.ID] = p
	}

	usage := make(map[string]model.SlabUsage, len(result.SlabUsage))
	for _, u := range result.SlabUsage {
		usage[u.SlabID] = u
	}

	for _, slab := range slabs {
		placed := result.PlacementsOn(slab.ID)
		if len(placed) == 0 {
			continue
		}
		u, ok := usage[slab.ID]
		if !ok {
			u = model.SlabUsage{SlabID: slab.ID, TotalArea: slab.Area()}
			for _, p := range placed {
				u.UsedArea += p.Area()
			}
			if u.TotalArea > 0 {
				u.WastePercentage = (u.TotalArea - u.UsedArea) / u.TotalArea * 100
			}
		}
		l.Sheets = append(l.Sheets, Sheet{
			Index:      len(l.Sheets) + 1,
			Slab:       slab,
			Placements: placed,
			Usage:      u,
			Offcuts:    model.DetectOffcuts(slab, placed, settings.KerfWidth),
		})
	}

	for _, id := range result.UnplacedParts {
		p, ok := l.Parts[id]
		if !ok {
			p = model.Part{ID: id, Name: id, ShapeType: model.ShapeRectangle}
		}
		l.Unplaced = append(l.Unplaced, p)
	}
	return l
}

// PlacedCount returns the number of parts seated across all sheets.
func (l Layout) PlacedCount() int {
	total := 0
	for _, s := range l.Sheets {
		total += len(s.Placements)
	}
	return total
}

// part returns the part behind a placement, or a bare rectangle named by the
// id when the part list does not contain it.
func (l Layout) part(id string) model.Part {
	if p, ok := l.Parts[id]; ok {
		return p
	}
	return model.Part{ID: id, Name: id, ShapeType: model.ShapeRectangle}
}

func displayName(p model.Part) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func slabName(s model.Slab) string {
	if s.Name != "" {
		return s.Name
	}
	return s.ID
}

// Offcuts returns the reusable remnants of every sheet, sheet by sheet.
func (l Layout) Offcuts() []model.Offcut {
	var all []model.Offcut
	for _, s := range l.Sheets {
		all = append(all, s.Offcuts...)
	}
	return all
}
