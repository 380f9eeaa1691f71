package model

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Rotation is a part orientation in degrees. Only quarter turns are allowed.
type Rotation int

const (
	Rotation0   Rotation = 0
	Rotation90  Rotation = 90
	Rotation180 Rotation = 180
	Rotation270 Rotation = 270
)

// Valid reports whether r is one of 0, 90, 180 or 270.
func (r Rotation) Valid() bool {
	switch r {
	case Rotation0, Rotation90, Rotation180, Rotation270:
		return true
	}
	return false
}

// Swaps reports whether the rotation exchanges width and height.
// 180 behaves as 0 and 270 as 90 for bounding-box purposes.
func (r Rotation) Swaps() bool {
	return r == Rotation90 || r == Rotation270
}

// LockedPosition is a user-pinned placement of a part.
type LockedPosition struct {
	SlabID   string   `json:"slabId"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Rotation Rotation `json:"rotation"`
}

// Cutout is an interior opening (sink, hob) inside a part. It is carried
// through to exports and does not affect packing.
type Cutout struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Type   string  `json:"type"` // "sink", "hob" or "custom"
}

// EdgeProfile records the finish applied to one edge of a part.
type EdgeProfile struct {
	Edge    string `json:"edge"`    // "top", "right", "bottom", "left"
	Profile string `json:"profile"` // "raw", "polished", "bullnose", ...
}

// Part represents a piece requested for placement.
type Part struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Width          float64         `json:"width"`  // mm, nominal bounding box before rotation
	Height         float64         `json:"height"` // mm, nominal bounding box before rotation
	ShapeType      ShapeType       `json:"shapeType"`
	ShapeData      ShapeData       `json:"shapeData,omitempty"`
	Cutouts        []Cutout        `json:"cutouts,omitempty"`
	EdgeProfiles   []EdgeProfile   `json:"edgeProfiles,omitempty"`
	AllowRotation  bool            `json:"allowRotation"`
	IsLocked       bool            `json:"isLocked"`
	LockedPosition *LockedPosition `json:"lockedPosition,omitempty"`
}

// UnmarshalJSON decodes shapeData into the variant selected by shapeType.
// A missing shapeType defaults to rectangle.
func (p *Part) UnmarshalJSON(data []byte) error {
	type alias Part
	aux := struct {
		*alias
		ShapeData json.RawMessage `json:"shapeData"`
	}{alias: (*alias)(p)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if p.ShapeType == "" {
		p.ShapeType = ShapeRectangle
	}
	sd, err := decodeShapeData(p.ShapeType, aux.ShapeData)
	if err != nil {
		return err
	}
	p.ShapeData = sd
	return nil
}

// HasLock reports whether the part is locked and carries a pinned position.
func (p Part) HasLock() bool {
	return p.IsLocked && p.LockedPosition != nil
}

// NominalArea returns width*height before any shape or rotation adjustment.
func (p Part) NominalArea() float64 {
	return p.Width * p.Height
}

func NewPart(name string, w, h float64) Part {
	return Part{
		ID:        uuid.New().String()[:8],
		Name:      name,
		Width:     w,
		Height:    h,
		ShapeType: ShapeRectangle,
	}
}

// NewCirclePart creates a round part whose bounding box is the diameter.
func NewCirclePart(name string, radius float64) Part {
	p := NewPart(name, 2*radius, 2*radius)
	p.ShapeType = ShapeCircle
	p.ShapeData = &CircleData{Radius: radius}
	return p
}

// Slab represents a rectangular stock sheet of stone.
type Slab struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Width     float64 `json:"width"`  // mm
	Height    float64 `json:"height"` // mm
	StoneType string  `json:"stoneType,omitempty"`
	StoneName string  `json:"stoneName,omitempty"`
}

func NewSlab(name string, w, h float64) Slab {
	return Slab{
		ID:     uuid.New().String()[:8],
		Name:   name,
		Width:  w,
		Height: h,
	}
}

// Area returns the slab area in square mm.
func (s Slab) Area() float64 {
	return s.Width * s.Height
}

// PlacedPart is a part seated on a slab. Width and Height are the effective
// bounding box after rotation.
type PlacedPart struct {
	PartID   string   `json:"partId"`
	SlabID   string   `json:"slabId"`
	X        float64  `json:"x"` // mm from the slab's left edge
	Y        float64  `json:"y"` // mm from the slab's top edge
	Rotation Rotation `json:"rotation"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
}

// Area returns the effective placed area.
func (pp PlacedPart) Area() float64 {
	return pp.Width * pp.Height
}

// PlacementUpdate is a partial change to a placement. Nil fields are left as they are.
type PlacementUpdate struct {
	X        *float64  `json:"x,omitempty"`
	Y        *float64  `json:"y,omitempty"`
	Rotation *Rotation `json:"rotation,omitempty"`
	SlabID   *string   `json:"slabId,omitempty"`
}

// SlabUsage summarizes material use on one slab.
type SlabUsage struct {
	SlabID          string  `json:"slabId"`
	UsedArea        float64 `json:"usedArea"`
	TotalArea       float64 `json:"totalArea"`
	WastePercentage float64 `json:"wastePercentage"`
}

// NestingResult holds the full solution of one optimize run.
type NestingResult struct {
	Placements    []PlacedPart `json:"placements"`
	UnplacedParts []string     `json:"unplacedParts"`
	SlabUsage     []SlabUsage  `json:"slabUsage"`
}

// PlacementsOn returns the placements seated on the given slab, in result order.
func (r NestingResult) PlacementsOn(slabID string) []PlacedPart {
	var out []PlacedPart
	for _, p := range r.Placements {
		if p.SlabID == slabID {
			out = append(out, p)
		}
	}
	return out
}

// TotalEfficiency returns overall material usage percentage across slabs
// that received at least one part.
func (r NestingResult) TotalEfficiency() float64 {
	var usedArea, totalArea float64
	for _, u := range r.SlabUsage {
		if u.UsedArea == 0 {
			continue
		}
		usedArea += u.UsedArea
		totalArea += u.TotalArea
	}
	if totalArea == 0 {
		return 0
	}
	return (usedArea / totalArea) * 100.0
}

// NestingRequest is the input of one optimize run. KerfWidth is a pointer so a
// missing value can be told apart from zero.
type NestingRequest struct {
	Parts     []Part   `json:"parts"`
	Slabs     []Slab   `json:"slabs"`
	KerfWidth *float64 `json:"kerfWidth"`
}

// Project ties everything together for save/load.
type Project struct {
	Name       string         `json:"name"`
	Parts      []Part         `json:"parts"`
	Slabs      []Slab         `json:"slabs"`
	Settings   NestSettings   `json:"settings"`
	Result     *NestingResult `json:"result,omitempty"`
	Placements []PlacedPart   `json:"placements,omitempty"` // current, possibly hand-edited layout
}

func NewProject() Project {
	return Project{
		Name:     "Untitled",
		Parts:    []Part{},
		Slabs:    []Slab{},
		Settings: DefaultSettings(),
	}
}

// PlacementEditRequest asks for one placement to be changed and its slab
// re-flowed.
type PlacementEditRequest struct {
	Placements []PlacedPart    `json:"placements"`
	Parts      []Part          `json:"parts"`
	Slabs      []Slab          `json:"slabs"`
	KerfWidth  *float64        `json:"kerfWidth"`
	PartID     string          `json:"partId"`
	Updates    PlacementUpdate `json:"updates"`
}

// LockRequest toggles the lock of one part.
type LockRequest struct {
	Placements []PlacedPart `json:"placements"`
	Parts      []Part       `json:"parts"`
	Slabs      []Slab       `json:"slabs"`
	PartID     string       `json:"partId"`
	Locked     bool         `json:"locked"`
}
