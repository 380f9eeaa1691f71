package model

import (
	"encoding/json"
	"fmt"
	"math"
)

// ShapeType identifies the outline family of a part.
type ShapeType string

const (
	ShapeRectangle ShapeType = "rectangle"
	ShapeLShape    ShapeType = "l_shape"
	ShapeCircle    ShapeType = "circle"
	ShapeArc       ShapeType = "arc"
)

// Valid reports whether s is one of the known shape types.
func (s ShapeType) Valid() bool {
	switch s {
	case ShapeRectangle, ShapeLShape, ShapeCircle, ShapeArc:
		return true
	}
	return false
}

// CutoutPosition names the corner removed from an L-shaped part.
type CutoutPosition string

const (
	CutoutTopLeft     CutoutPosition = "top-left"
	CutoutTopRight    CutoutPosition = "top-right"
	CutoutBottomLeft  CutoutPosition = "bottom-left"
	CutoutBottomRight CutoutPosition = "bottom-right"
)

// ShapeData is the shape-specific payload of a part. The concrete type is
// selected by the part's ShapeType: *LShapeData, *CircleData or *ArcData.
type ShapeData interface {
	shapeType() ShapeType
	validate() error
}

// LShapeData describes an L-shaped part as a main rectangle with one corner cut away.
type LShapeData struct {
	MainWidth      float64        `json:"mainWidth"`
	MainHeight     float64        `json:"mainHeight"`
	CutoutWidth    float64        `json:"cutoutWidth"`
	CutoutHeight   float64        `json:"cutoutHeight"`
	CutoutPosition CutoutPosition `json:"cutoutPosition"`
}

func (*LShapeData) shapeType() ShapeType { return ShapeLShape }

func (d *LShapeData) validate() error {
	if !positive(d.MainWidth) || !positive(d.MainHeight) {
		return fmt.Errorf("l_shape main size %gx%g must be positive", d.MainWidth, d.MainHeight)
	}
	if d.CutoutWidth < 0 || d.CutoutHeight < 0 ||
		d.CutoutWidth >= d.MainWidth || d.CutoutHeight >= d.MainHeight {
		return fmt.Errorf("l_shape cutout %gx%g does not fit main %gx%g",
			d.CutoutWidth, d.CutoutHeight, d.MainWidth, d.MainHeight)
	}
	switch d.CutoutPosition {
	case CutoutTopLeft, CutoutTopRight, CutoutBottomLeft, CutoutBottomRight:
		return nil
	}
	return fmt.Errorf("unknown l_shape cutout position %q", d.CutoutPosition)
}

// CircleData describes a round part (e.g. a table top).
type CircleData struct {
	Radius float64 `json:"radius"`
}

func (*CircleData) shapeType() ShapeType { return ShapeCircle }

func (d *CircleData) validate() error {
	if !positive(d.Radius) {
		return fmt.Errorf("circle radius %g must be positive", d.Radius)
	}
	return nil
}

// ArcData describes a curved segment cut from a disc of the given radius.
// Angles are in degrees.
type ArcData struct {
	Radius     float64 `json:"radius"`
	StartAngle float64 `json:"startAngle"`
	EndAngle   float64 `json:"endAngle"`
}

func (*ArcData) shapeType() ShapeType { return ShapeArc }

func (d *ArcData) validate() error {
	if !positive(d.Radius) {
		return fmt.Errorf("arc radius %g must be positive", d.Radius)
	}
	if math.IsNaN(d.StartAngle) || math.IsNaN(d.EndAngle) {
		return fmt.Errorf("arc angles must be numbers")
	}
	return nil
}

// Radius returns the radius of a circle or arc part and true, or 0 and false
// for every other shape or when the shape data is absent.
func (p Part) Radius() (float64, bool) {
	switch d := p.ShapeData.(type) {
	case *CircleData:
		if p.ShapeType == ShapeCircle {
			return d.Radius, true
		}
	case *ArcData:
		if p.ShapeType == ShapeArc {
			return d.Radius, true
		}
	}
	return 0, false
}

// ValidateShape checks that the shape payload matches the shape type and holds
// usable dimensions. Circle and arc parts without a payload are accepted and
// fall back to their nominal width and height.
func (p Part) ValidateShape() error {
	if !p.ShapeType.Valid() {
		return fmt.Errorf("%w: part %q: unknown shape type %q", ErrMalformedShape, p.ID, p.ShapeType)
	}
	if p.ShapeData == nil {
		return nil
	}
	if p.ShapeData.shapeType() != p.ShapeType {
		return fmt.Errorf("%w: part %q: %s data on %s part",
			ErrMalformedShape, p.ID, p.ShapeData.shapeType(), p.ShapeType)
	}
	if err := p.ShapeData.validate(); err != nil {
		return fmt.Errorf("%w: part %q: %v", ErrMalformedShape, p.ID, err)
	}
	return nil
}

// decodeShapeData unmarshals raw into the variant selected by st.
// Rectangles carry no payload; anything sent for them is ignored.
func decodeShapeData(st ShapeType, raw json.RawMessage) (ShapeData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var data ShapeData
	switch st {
	case ShapeLShape:
		data = &LShapeData{}
	case ShapeCircle:
		data = &CircleData{}
	case ShapeArc:
		data = &ArcData{}
	default:
		return nil, nil
	}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("%w: %s shapeData: %v", ErrMalformedShape, st, err)
	}
	return data, nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
