package model

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// SlabStatus is the stock state of an inventory slab.
type SlabStatus string

const (
	SlabAvailable SlabStatus = "available"
	SlabReserved  SlabStatus = "reserved"
	SlabCut       SlabStatus = "cut"
	SlabSold      SlabStatus = "sold"
	SlabArchived  SlabStatus = "archived"
)

// StockSlab is a slab held in stock. Offcuts returned to stock carry the id of
// the slab they were cut from.
type StockSlab struct {
	ID           string     `json:"id"`
	SlabNumber   string     `json:"slab_number"`
	StoneType    string     `json:"stone_type"`
	StoneName    string     `json:"stone_name"`
	Width        float64    `json:"width"`     // mm
	Height       float64    `json:"height"`    // mm
	Thickness    float64    `json:"thickness"` // mm
	Quantity     int        `json:"quantity"`
	Status       SlabStatus `json:"status"`
	ParentSlabID string     `json:"parent_slab_id,omitempty"`
	Notes        string     `json:"notes,omitempty"`
}

// NewStockSlab creates an available StockSlab with a generated ID.
func NewStockSlab(number, stoneType, stoneName string, width, height, thickness float64, qty int) StockSlab {
	return StockSlab{
		ID:         uuid.New().String()[:8],
		SlabNumber: number,
		StoneType:  stoneType,
		StoneName:  stoneName,
		Width:      width,
		Height:     height,
		Thickness:  thickness,
		Quantity:   qty,
		Status:     SlabAvailable,
	}
}

// Area returns the area of one slab in square mm.
func (s StockSlab) Area() float64 {
	return s.Width * s.Height
}

// ToSlabs expands the stock entry into one nesting slab per unit. Slab ids are
// derived from the stock id so results can be traced back to stock.
func (s StockSlab) ToSlabs() []Slab {
	slabs := make([]Slab, 0, s.Quantity)
	for i := 1; i <= s.Quantity; i++ {
		slab := Slab{
			ID:        s.ID,
			Name:      s.SlabNumber,
			Width:     s.Width,
			Height:    s.Height,
			StoneType: s.StoneType,
			StoneName: s.StoneName,
		}
		if s.Quantity > 1 {
			slab.ID = fmt.Sprintf("%s-%d", s.ID, i)
			slab.Name = fmt.Sprintf("%s #%d", s.SlabNumber, i)
		}
		slabs = append(slabs, slab)
	}
	return slabs
}

// SlabFilter selects stock slabs. Zero values do not filter.
type SlabFilter struct {
	StoneTypes    []string
	MinWidth      float64
	MaxWidth      float64
	MinHeight     float64
	MaxHeight     float64
	AvailableOnly bool
}

// Match reports whether s passes the filter.
func (f SlabFilter) Match(s StockSlab) bool {
	if len(f.StoneTypes) > 0 && !slices.Contains(f.StoneTypes, s.StoneType) {
		return false
	}
	if f.MinWidth > 0 && s.Width < f.MinWidth {
		return false
	}
	if f.MaxWidth > 0 && s.Width > f.MaxWidth {
		return false
	}
	if f.MinHeight > 0 && s.Height < f.MinHeight {
		return false
	}
	if f.MaxHeight > 0 && s.Height > f.MaxHeight {
		return false
	}
	if f.AvailableOnly && (s.Status != SlabAvailable || s.Quantity < 1) {
		return false
	}
	return true
}

// InventoryStats summarizes the stock.
type InventoryStats struct {
	TotalSlabs     int            `json:"total_slabs"`
	AvailableSlabs int            `json:"available_slabs"`
	ReservedSlabs  int            `json:"reserved_slabs"`
	TotalArea      float64        `json:"total_area"`
	AvailableArea  float64        `json:"available_area"`
	ByStoneType    map[string]int `json:"by_stone_type"`
}

// Inventory holds the user's stock slabs.
type Inventory struct {
	Slabs []StockSlab `json:"slabs"`
}

// DefaultInventory returns an inventory populated with common slab formats.
func DefaultInventory() Inventory {
	return Inventory{
		Slabs: []StockSlab{
			NewStockSlab("Q-3200", "quartz", "Calacatta Quartz", 3200, 1600, 20, 2),
			NewStockSlab("Q-3000", "quartz", "Pure White", 3000, 1400, 20, 2),
			NewStockSlab("G-3000", "granite", "Absolute Black", 3000, 1800, 30, 1),
			NewStockSlab("M-2800", "marble", "Carrara", 2800, 1700, 20, 1),
			NewStockSlab("P-3200", "porcelain", "Statuario Porcelain", 3200, 1600, 12, 3),
		},
	}
}

// FindByID returns a pointer to the stock slab with the given ID, or nil.
func (inv *Inventory) FindByID(id string) *StockSlab {
	for i := range inv.Slabs {
		if inv.Slabs[i].ID == id {
			return &inv.Slabs[i]
		}
	}
	return nil
}

// Filter returns the stock slabs matching f, in inventory order.
func (inv Inventory) Filter(f SlabFilter) []StockSlab {
	return lo.Filter(inv.Slabs, func(s StockSlab, _ int) bool {
		return f.Match(s)
	})
}

// SlabsFor expands the available stock slabs matching f into nesting slabs.
func (inv Inventory) SlabsFor(f SlabFilter) []Slab {
	f.AvailableOnly = true
	return lo.FlatMap(inv.Filter(f), func(s StockSlab, _ int) []Slab {
		return s.ToSlabs()
	})
}

// StoneTypes returns the distinct stone types in stock, sorted.
func (inv Inventory) StoneTypes() []string {
	types := lo.Uniq(lo.Map(inv.Slabs, func(s StockSlab, _ int) string { return s.StoneType }))
	slices.Sort(types)
	return types
}

// Stats counts units and area by status and stone type.
func (inv Inventory) Stats() InventoryStats {
	stats := InventoryStats{ByStoneType: map[string]int{}}
	for _, s := range inv.Slabs {
		area := s.Area() * float64(s.Quantity)
		stats.TotalSlabs += s.Quantity
		stats.TotalArea += area
		stats.ByStoneType[s.StoneType] += s.Quantity
		switch s.Status {
		case SlabAvailable:
			stats.AvailableSlabs += s.Quantity
			stats.AvailableArea += area
		case SlabReserved:
			stats.ReservedSlabs += s.Quantity
		}
	}
	return stats
}

// AddOffcuts returns remnants to stock as single available slabs. The stone of
// each remnant is taken from the nesting slab it came from.
func (inv *Inventory) AddOffcuts(offcuts []Offcut, slabs []Slab) []StockSlab {
	bySlab := lo.KeyBy(slabs, func(s Slab) string { return s.ID })
	added := make([]StockSlab, 0, len(offcuts))
	for _, o := range offcuts {
		parent := bySlab[o.SlabID]
		s := NewStockSlab(fmt.Sprintf("%s-R%s", parentNumber(o), o.ID), parent.StoneType, parent.StoneName, o.Width, o.Height, 0, 1)
		s.ParentSlabID = o.SlabID
		if st := inv.FindByID(o.SlabID); st != nil {
			s.Thickness = st.Thickness
		}
		inv.Slabs = append(inv.Slabs, s)
		added = append(added, s)
	}
	return added
}

func parentNumber(o Offcut) string {
	if o.SlabName != "" {
		return o.SlabName
	}
	return o.SlabID
}
