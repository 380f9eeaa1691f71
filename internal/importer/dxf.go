package importer

import (
	"fmt"
	"math"
	"sort"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/SlabNest/internal/model"
)

// point is a DXF drawing coordinate (y up).
type point struct {
	X, Y float64
}

type outline []point

func (o outline) boundingBox() (min, max point) {
	min = point{math.Inf(1), math.Inf(1)}
	max = point{math.Inf(-1), math.Inf(-1)}
	for _, p := range o {
		min.X, min.Y = math.Min(min.X, p.X), math.Min(min.Y, p.Y)
		max.X, max.Y = math.Max(max.X, p.X), math.Max(max.Y, p.Y)
	}
	return min, max
}

// segment is a loose LINE or ARC piece waiting to be chained into an outline.
type segment struct {
	start point
	end   point
}

const dxfTolerance = 0.01

// ImportDXF imports parts from a DXF file:
//   - CIRCLE becomes a circle part,
//   - ARC, unless it chains into a closed outline, becomes an arc part,
//   - closed LWPOLYLINEs and chains of LINEs become rectangles or L-shapes.
//
// Other outlines are imported as their bounding rectangle with a warning.
func ImportDXF(path string) ImportResult {
	result := ImportResult{}

	drawing, err := dxf.Open(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open DXF file: %v", err))
		return result
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		result.Errors = append(result.Errors, "DXF file contains no entities")
		return result
	}

	var (
		outlines []outline
		segments []segment
		arcs     []*entity.Arc
	)

	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o, bulged := lwPolylineToOutline(e)
			if len(o) < 3 {
				result.Warnings = append(result.Warnings, "Skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			if bulged {
				result.Warnings = append(result.Warnings, "LWPOLYLINE with curved segments imported as its bounding box")
			}
			outlines = append(outlines, o)

		case *entity.Circle:
			if e.Radius <= 0 {
				continue
			}
			result.Parts = append(result.Parts,
				model.NewCirclePart(fmt.Sprintf("DXF Circle R%.0f", e.Radius), e.Radius))

		case *entity.Arc:
			arcs = append(arcs, e)

		case *entity.Line:
			segments = append(segments, segment{
				start: point{e.Start[0], e.Start[1]},
				end:   point{e.End[0], e.End[1]},
			})
		}
	}

	// Arcs touching line work are part of a drawn outline, not standalone parts.
	for _, a := range arcs {
		pts := arcToPoints(a, 32)
		if touchesAny(pts[0], pts[len(pts)-1], segments) {
			segments = append(segments, pointsToSegments(pts)...)
			continue
		}
		result.Parts = append(result.Parts, arcPart(a))
	}

	outlines = append(outlines, chainSegments(segments, dxfTolerance)...)

	for i, o := range outlines {
		part, warning, ok := outlineToPart(o, fmt.Sprintf("DXF Part %d", i+1))
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if ok {
			result.Parts = append(result.Parts, part)
		}
	}

	if len(result.Parts) == 0 {
		result.Errors = append(result.Errors, "No closed shapes found in DXF file")
	}
	return result
}

func arcPart(a *entity.Arc) model.Part {
	r := a.Circle.Radius
	p := model.NewPart(fmt.Sprintf("DXF Arc R%.0f", r), 2*r, 2*r)
	p.ShapeType = model.ShapeArc
	p.ShapeData = &model.ArcData{Radius: r, StartAngle: a.Angle[0], EndAngle: a.Angle[1]}
	return p
}

// outlineToPart classifies a closed outline. Axis-aligned outlines with four
// corners are rectangles and with six corners L-shapes; anything else falls
// back to its bounding box.
func outlineToPart(o outline, name string) (model.Part, string, bool) {
	min, max := o.boundingBox()
	width, height := max.X-min.X, max.Y-min.Y
	if width < dxfTolerance || height < dxfTolerance {
		return model.Part{}, fmt.Sprintf("Skipped degenerate shape (%.2f x %.2f mm)", width, height), false
	}

	part := model.NewPart(name, width, height)
	corners := simplify(o)
	if !orthogonal(corners) {
		return part, fmt.Sprintf("%s: non-rectangular outline imported as its bounding box", name), true
	}

	switch len(corners) {
	case 4:
		return part, "", true
	case 6:
		if data, ok := lShapeData(corners, min, max); ok {
			part.ShapeType = model.ShapeLShape
			part.ShapeData = data
			return part, "", true
		}
	}
	return part, fmt.Sprintf("%s: %d-corner outline imported as its bounding box", name, len(corners)), true
}

// lShapeData finds the bounding-box corner missing from a six-corner outline
// and the reflex vertex opposite it. Slab coordinates have y pointing down,
// so the drawing's top edge (max.Y) is the part's top.
func lShapeData(corners outline, min, max point) (*model.LShapeData, bool) {
	boxCorners := []struct {
		at  point
		pos model.CutoutPosition
	}{
		{point{min.X, max.Y}, model.CutoutTopLeft},
		{point{max.X, max.Y}, model.CutoutTopRight},
		{point{min.X, min.Y}, model.CutoutBottomLeft},
		{point{max.X, min.Y}, model.CutoutBottomRight},
	}

	var missing []int
	for i, c := range boxCorners {
		if !containsPoint(corners, c.at) {
			missing = append(missing, i)
		}
	}
	if len(missing) != 1 {
		return nil, false
	}

	var inner point
	found := false
	for _, p := range corners {
		if p.X > min.X+dxfTolerance && p.X < max.X-dxfTolerance &&
			p.Y > min.Y+dxfTolerance && p.Y < max.Y-dxfTolerance {
			inner, found = p, true
		}
	}
	if !found {
		return nil, false
	}

	c := boxCorners[missing[0]]
	return &model.LShapeData{
		MainWidth:      max.X - min.X,
		MainHeight:     max.Y - min.Y,
		CutoutWidth:    math.Abs(c.at.X - inner.X),
		CutoutHeight:   math.Abs(c.at.Y - inner.Y),
		CutoutPosition: c.pos,
	}, true
}

func containsPoint(o outline, p point) bool {
	for _, q := range o {
		if pointsClose(p, q, dxfTolerance) {
			return true
		}
	}
	return false
}

// simplify drops repeated vertices and vertices lying on a straight edge.
func simplify(o outline) outline {
	var pts outline
	for _, p := range o {
		if len(pts) > 0 && pointsClose(pts[len(pts)-1], p, dxfTolerance) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) > 1 && pointsClose(pts[0], pts[len(pts)-1], dxfTolerance) {
		pts = pts[:len(pts)-1]
	}

	for changed := true; changed && len(pts) > 3; {
		changed = false
		for i := range pts {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			cross := (pts[i].X-prev.X)*(next.Y-pts[i].Y) - (pts[i].Y-prev.Y)*(next.X-pts[i].X)
			if math.Abs(cross) < dxfTolerance {
				pts = append(pts[:i], pts[i+1:]...)
				changed = true
				break
			}
		}
	}
	return pts
}

func orthogonal(o outline) bool {
	for i := range o {
		a, b := o[i], o[(i+1)%len(o)]
		if math.Abs(a.X-b.X) > dxfTolerance && math.Abs(a.Y-b.Y) > dxfTolerance {
			return false
		}
	}
	return true
}

// lwPolylineToOutline returns the polyline vertices and whether any segment
// carries a bulge (a curved edge).
func lwPolylineToOutline(lw *entity.LwPolyline) (outline, bool) {
	o := make(outline, 0, len(lw.Vertices))
	bulged := false
	for i, v := range lw.Vertices {
		o = append(o, point{v[0], v[1]})
		if i < len(lw.Bulges) && math.Abs(lw.Bulges[i]) > 1e-9 {
			bulged = true
		}
	}
	return o, bulged
}

func arcToPoints(a *entity.Arc, numSegments int) []point {
	cx, cy := a.Circle.Center[0], a.Circle.Center[1]
	r := a.Circle.Radius

	startRad := a.Angle[0] * math.Pi / 180
	endRad := a.Angle[1] * math.Pi / 180
	if endRad <= startRad {
		endRad += 2 * math.Pi
	}

	pts := make([]point, numSegments+1)
	for i := 0; i <= numSegments; i++ {
		angle := startRad + float64(i)/float64(numSegments)*(endRad-startRad)
		pts[i] = point{cx + r*math.Cos(angle), cy + r*math.Sin(angle)}
	}
	return pts
}

func touchesAny(a, b point, segs []segment) bool {
	for _, s := range segs {
		for _, p := range []point{s.start, s.end} {
			if pointsClose(a, p, dxfTolerance) || pointsClose(b, p, dxfTolerance) {
				return true
			}
		}
	}
	return false
}

func pointsToSegments(pts []point) []segment {
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints meet into closed outlines,
// largest first. Open chains are dropped.
func chainSegments(segs []segment, tolerance float64) []outline {
	used := make([]bool, len(segs))
	var outlines []outline

	for start := range segs {
		if used[start] {
			continue
		}
		chain := outline{segs[start].start, segs[start].end}
		used[start] = true

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
			for i, seg := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, seg.start, tolerance):
					chain = append(chain, seg.end)
				case pointsClose(tail, seg.end, tolerance):
					chain = append(chain, seg.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			outlines = append(outlines, chain[:len(chain)-1])
		}
	}

	sort.SliceStable(outlines, func(i, j int) bool {
		return outlineArea(outlines[i]) > outlineArea(outlines[j])
	})
	return outlines
}

func pointsClose(a, b point, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// outlineArea is the shoelace area of a polygon.
func outlineArea(o outline) float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	return math.Abs(area) / 2
}
