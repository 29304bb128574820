// Enclave placement: finds suitable sites, groups them into domains and links routes.
package world

import (
	"fmt"
	"math/rand"
	"sort"
)

// RouteKind distinguishes land links from sea lanes.
type RouteKind uint8

const (
	RouteLand RouteKind = iota
	RouteSea
)

// String returns the route kind name.
func (k RouteKind) String() string {
	switch k {
	case RouteLand:
		return "land"
	case RouteSea:
		return "sea"
	default:
		return "unknown"
	}
}

// EnclaveSite holds the parameters for an initial enclave placement.
type EnclaveSite struct {
	ID      string
	Name    string
	Coord   HexCoord
	Domain  string
	Score   float64 // Desirability score
	Capital bool
}

// DomainSite is a named cluster of enclave sites.
type DomainSite struct {
	ID       string
	Name     string
	Capital  HexCoord
	Strength int
}

// Link connects two enclave sites.
type Link struct {
	A, B string
	Kind RouteKind
}

// Layout is the generated board: map, enclave sites, domains and links.
type Layout struct {
	Map      *Map
	Enclaves []EnclaveSite
	Domains  []DomainSite
	Links    []Link
}

// Build generates the map and places enclaves in one step.
func Build(cfg GenConfig) Layout {
	if cfg.Seed == 0 {
		cfg.Seed = rand.Int63()
	}
	return PlaceEnclaves(Generate(cfg), cfg)
}

// PlaceEnclaves finds enclave sites on the map, assigns each to the domain of its
// nearest capital and links neighbours by land and coastal sites by sea.
func PlaceEnclaves(m *Map, cfg GenConfig) Layout {
	rng := rand.New(rand.NewSource(cfg.Seed + 200))

	type scored struct {
		coord HexCoord
		score float64
	}
	var candidates []scored
	for _, coord := range m.LandCells() {
		if s := siteScore(m, coord); s > 0 {
			candidates = append(candidates, scored{coord, s + rng.Float64()*0.1})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	var sites []EnclaveSite
	taken := make(map[HexCoord]bool)
	minCapitalDist := max(2, m.Radius/3)
	minEnclaveDist := 2

	// Capitals first, spread out so domains do not overlap.
	for _, c := range candidates {
		if len(sites) >= cfg.Domains {
			break
		}
		if tooClose(c.coord, sites, minCapitalDist) {
			continue
		}
		taken[c.coord] = true
		sites = append(sites, EnclaveSite{Coord: c.coord, Score: c.score, Capital: true})
	}
	for _, c := range candidates {
		if len(sites) >= cfg.Enclaves {
			break
		}
		if taken[c.coord] || tooClose(c.coord, sites, minEnclaveDist) {
			continue
		}
		taken[c.coord] = true
		sites = append(sites, EnclaveSite{Coord: c.coord, Score: c.score})
	}

	names := generateNames(rng, len(sites)+cfg.Domains)

	var domains []DomainSite
	for i, s := range sites {
		if !s.Capital {
			continue
		}
		domains = append(domains, DomainSite{
			ID:      fmt.Sprintf("d%d", len(domains)+1),
			Name:    names[len(sites)+len(domains)],
			Capital: s.Coord,
		})
		sites[i].Domain = domains[len(domains)-1].ID
	}

	for i := range sites {
		sites[i].ID = fmt.Sprintf("e%02d", i+1)
		sites[i].Name = names[i]
		if sites[i].Capital {
			continue
		}
		best, bestDist := -1, 0
		for di, d := range domains {
			dist := Distance(sites[i].Coord, d.Capital)
			if best < 0 || dist < bestDist {
				best, bestDist = di, dist
			}
		}
		if best >= 0 {
			sites[i].Domain = domains[best].ID
		}
	}
	for di := range domains {
		for _, s := range sites {
			if s.Domain == domains[di].ID {
				domains[di].Strength++
			}
		}
	}

	return Layout{
		Map:      m,
		Enclaves: sites,
		Domains:  domains,
		Links:    linkSites(m, sites, cfg),
	}
}

// linkSites connects each site to its nearest neighbours by land, then pairs coastal
// sites by sea where no land link exists.
func linkSites(m *Map, sites []EnclaveSite, cfg GenConfig) []Link {
	var links []Link
	linked := make(map[[2]string]bool)
	add := func(a, b EnclaveSite, kind RouteKind) {
		key := [2]string{a.ID, b.ID}
		if b.ID < a.ID {
			key = [2]string{b.ID, a.ID}
		}
		if linked[key] {
			return
		}
		linked[key] = true
		links = append(links, Link{A: key[0], B: key[1], Kind: kind})
	}

	for i, a := range sites {
		type near struct {
			idx  int
			dist int
		}
		var nearby []near
		for j, b := range sites {
			if i == j {
				continue
			}
			if d := Distance(a.Coord, b.Coord); d <= cfg.RouteHops {
				nearby = append(nearby, near{j, d})
			}
		}
		sort.SliceStable(nearby, func(x, y int) bool { return nearby[x].dist < nearby[y].dist })
		for k := 0; k < len(nearby) && k < 3; k++ {
			add(a, sites[nearby[k].idx], RouteLand)
		}
	}

	for i, a := range sites {
		if m.Get(a.Coord).Terrain != TerrainCoast {
			continue
		}
		for j := i + 1; j < len(sites); j++ {
			b := sites[j]
			if m.Get(b.Coord).Terrain != TerrainCoast {
				continue
			}
			d := Distance(a.Coord, b.Coord)
			if d > cfg.RouteHops && d <= cfg.SeaHops {
				add(a, b, RouteSea)
				break
			}
		}
	}
	return links
}

// siteScore evaluates how desirable a cell is for an enclave.
func siteScore(m *Map, coord HexCoord) float64 {
	c := m.Get(coord)
	score := 0.0
	switch c.Terrain {
	case TerrainPlains:
		score += 3.0
	case TerrainCoast:
		score += 3.5
	case TerrainForest:
		score += 1.5
	case TerrainMountain:
		score += 0.3
	default:
		return 0
	}

	// Bonus for surrounding land; isolated specks make poor enclaves.
	for _, nc := range coord.Neighbors() {
		if n := m.Get(nc); n != nil && n.Land() {
			score += 0.2
		}
	}
	return score
}

func tooClose(coord HexCoord, existing []EnclaveSite, minDist int) bool {
	for _, s := range existing {
		if Distance(coord, s.Coord) < minDist {
			return true
		}
	}
	return false
}

// generateNames produces procedural names by combining syllables.
func generateNames(rng *rand.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "Dark", "Bright", "High", "Low",
		"Old", "New", "Far", "Deep", "Long", "Broad", "Gold", "Frost",
		"Storm", "Thorn", "Elm", "Oak", "Pine", "Copper", "River",
	}
	suffixes := []string{
		"haven", "ford", "hollow", "wick", "bridge", "gate", "keep",
		"stead", "wood", "field", "dale", "crest", "vale", "port",
		"town", "bury", "marsh", "well", "brook", "cliff", "moor",
		"ridge", "watch", "fall", "rest", "point", "reach", "helm",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}
