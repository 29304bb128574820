// World generation using layered simplex noise.
// Generates an elevation field, then derives land, coast and ocean cells.
package world

import (
	"math"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// GenConfig holds world generation parameters.
type GenConfig struct {
	Radius      int     // Hex grid radius
	Seed        int64   // Random seed (0 = random)
	SeaLevel    float64 // Elevation threshold for ocean (0.0–1.0)
	MountainLvl float64 // Elevation threshold for mountains (0.0–1.0)
	Enclaves    int     // Target number of enclaves
	Domains     int     // Number of domains the enclaves are grouped into
	RouteHops   int     // Max hex distance for a land route
	SeaHops     int     // Max hex distance for a sea route between coastal enclaves
}

// DefaultGenConfig returns a reasonable starting configuration.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Radius:      14,
		Seed:        0,
		SeaLevel:    0.25,
		MountainLvl: 0.72,
		Enclaves:    24,
		Domains:     6,
		RouteHops:   4,
		SeaHops:     8,
	}
}

// SmallTestConfig returns a tiny world for rapid iteration.
func SmallTestConfig() GenConfig {
	return GenConfig{
		Radius:      6,
		Seed:        42,
		SeaLevel:    0.20,
		MountainLvl: 0.80,
		Enclaves:    8,
		Domains:     3,
		RouteHops:   4,
		SeaHops:     6,
	}
}

// Generate creates the hex map with terrain.
func Generate(cfg GenConfig) *Map {
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Int63()
	}

	elevNoise := opensimplex.NewNormalized(seed)
	m := NewMap(cfg.Radius)

	for q := -cfg.Radius; q <= cfg.Radius; q++ {
		for r := -cfg.Radius; r <= cfg.Radius; r++ {
			coord := HexCoord{Q: q, R: r}
			if !m.InBounds(coord) {
				continue
			}

			center := coord.Center()
			elev := octaveNoise(elevNoise, center.X, center.Z, 4, 0.08, 0.5)

			// Continental shaping: reduce elevation near edges to create ocean border.
			distFromCenter := math.Sqrt(center.X*center.X+center.Z*center.Z) / float64(cfg.Radius)
			edgeFalloff := 1.0 - math.Pow(distFromCenter, 3.5)
			if edgeFalloff < 0 {
				edgeFalloff = 0
			}
			elev *= edgeFalloff

			m.Set(&Cell{
				Coord:     coord,
				Terrain:   deriveTerrain(elev, cfg),
				Elevation: elev,
			})
		}
	}

	markCoastalCells(m)
	return m
}

func deriveTerrain(elev float64, cfg GenConfig) Terrain {
	switch {
	case elev < cfg.SeaLevel:
		return TerrainOcean
	case elev > cfg.MountainLvl:
		return TerrainMountain
	case elev > (cfg.SeaLevel+cfg.MountainLvl)/2:
		return TerrainForest
	default:
		return TerrainPlains
	}
}

// markCoastalCells converts low land cells adjacent to ocean into coast.
func markCoastalCells(m *Map) {
	var toMark []HexCoord

	for coord, c := range m.Cells {
		if !c.Land() || c.Terrain == TerrainMountain {
			continue
		}
		for _, neighbor := range coord.Neighbors() {
			nc := m.Get(neighbor)
			if nc == nil || !nc.Land() {
				toMark = append(toMark, coord)
				break
			}
		}
	}

	for _, coord := range toMark {
		m.Get(coord).Terrain = TerrainCoast
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// TerrainCounts returns a summary of terrain type distribution.
func TerrainCounts(m *Map) map[Terrain]int {
	counts := make(map[Terrain]int)
	for _, c := range m.Cells {
		counts[c.Terrain]++
	}
	return counts
}

// TerrainName returns a human-readable name for a terrain type.
func TerrainName(t Terrain) string {
	switch t {
	case TerrainPlains:
		return "Plains"
	case TerrainForest:
		return "Forest"
	case TerrainMountain:
		return "Mountain"
	case TerrainCoast:
		return "Coast"
	case TerrainOcean:
		return "Ocean"
	default:
		return "Unknown"
	}
}
