// Package world provides the hex grid, terrain, and enclave layout the engine plays on.
// Uses axial coordinates (q, r) for the hex grid.
package world

import "math"

// HexCoord represents a position on the hex grid using axial coordinates.
// The third cube coordinate s is derived: s = -q - r.
type HexCoord struct {
	Q int `json:"q"`
	R int `json:"r"`
}

// S returns the implicit third cube coordinate.
func (h HexCoord) S() int {
	return -h.Q - h.R
}

// Vec3 is a world-space position. Y is elevation.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Center returns the world-space centre of the hex at ground level.
// Hex axial → cartesian: x = q + r*0.5, z = r * sqrt(3)/2
func (h HexCoord) Center() Vec3 {
	return Vec3{
		X: float64(h.Q) + float64(h.R)*0.5,
		Z: float64(h.R) * math.Sqrt(3.0) / 2.0,
	}
}

// Dist returns the euclidean distance between two positions.
func (v Vec3) Dist(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Terrain types for hex cells.
type Terrain uint8

const (
	TerrainPlains   Terrain = iota // Open ground, best enclave sites
	TerrainForest                  // Slows nothing, scores lower
	TerrainMountain                // Rarely settled
	TerrainCoast                   // Land touching ocean, sea routes start here
	TerrainOcean                   // Never holds an enclave
)

// Cell is a single tile on the world map.
type Cell struct {
	Coord     HexCoord `json:"coord"`
	Terrain   Terrain  `json:"terrain"`
	Elevation float64  `json:"elevation"` // 0.0 (sea level) to 1.0 (peak)
}

// Land reports whether the cell is not ocean.
func (c *Cell) Land() bool {
	return c.Terrain != TerrainOcean
}

// HexNeighborDirections defines the six neighbor offsets in axial coordinates.
var HexNeighborDirections = [6]HexCoord{
	{Q: 1, R: 0},
	{Q: 1, R: -1},
	{Q: 0, R: -1},
	{Q: -1, R: 0},
	{Q: -1, R: 1},
	{Q: 0, R: 1},
}

// Neighbors returns the six adjacent hex coordinates.
func (h HexCoord) Neighbors() [6]HexCoord {
	var result [6]HexCoord
	for i, dir := range HexNeighborDirections {
		result[i] = HexCoord{Q: h.Q + dir.Q, R: h.R + dir.R}
	}
	return result
}

// Distance returns the hex distance between two coordinates.
func Distance(a, b HexCoord) int {
	dq := abs(a.Q - b.Q)
	dr := abs(a.R - b.R)
	ds := abs(a.S() - b.S())
	// Max of the three absolute differences in cube coordinates.
	return max(dq, dr, ds)
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
