package world

import (
	"fmt"
	"sort"
)

// Map holds the hex grid. It is built once at world generation and only read afterwards,
// so game snapshots share it by reference.
type Map struct {
	Cells  map[HexCoord]*Cell `json:"-"`
	Radius int                `json:"radius"`
}

// NewMap creates an empty map with the given radius.
// A hex grid of radius R contains hexes where max(|q|, |r|, |s|) <= R.
func NewMap(radius int) *Map {
	return &Map{
		Cells:  make(map[HexCoord]*Cell),
		Radius: radius,
	}
}

// Get returns the cell at the given coordinate, or nil if absent.
func (m *Map) Get(coord HexCoord) *Cell {
	if m == nil {
		return nil
	}
	return m.Cells[coord]
}

// Set places a cell at its coordinate.
func (m *Map) Set(c *Cell) {
	m.Cells[c.Coord] = c
}

// InBounds returns true if the coordinate is within the map radius.
func (m *Map) InBounds(coord HexCoord) bool {
	return max(abs(coord.Q), abs(coord.R), abs(coord.S())) <= m.Radius
}

// CellCount returns the total number of cells in the map.
func (m *Map) CellCount() int {
	if m == nil {
		return 0
	}
	return len(m.Cells)
}

// LandCells returns every land coordinate in a stable (q, r) order.
func (m *Map) LandCells() []HexCoord {
	if m == nil {
		return nil
	}
	coords := make([]HexCoord, 0, len(m.Cells))
	for coord, c := range m.Cells {
		if c.Land() {
			coords = append(coords, coord)
		}
	}
	SortCoords(coords)
	return coords
}

// SortCoords orders coordinates by q then r.
func SortCoords(coords []HexCoord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Q != coords[j].Q {
			return coords[i].Q < coords[j].Q
		}
		return coords[i].R < coords[j].R
	})
}

// String returns a summary of the map.
func (m *Map) String() string {
	return fmt.Sprintf("Map(radius=%d, cells=%d)", m.Radius, m.CellCount())
}
