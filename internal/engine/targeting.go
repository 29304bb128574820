package engine

import (
	"math/rand"
	"sort"

	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

// site is where a disaster lands.
type site struct {
	cell     world.HexCoord
	position world.Vec3
	enclaves []EnclaveID
	route    string
	radius   profile.Value
}

// selectSite picks a target for the disaster from the current world. It returns false
// when the world no longer offers a valid site.
func selectSite(d *profile.Disaster, st *State, rng *rand.Rand) (site, bool) {
	switch d.Target {
	case profile.TargetAnyCell:
		cells := st.World.LandCells()
		if len(cells) == 0 {
			return site{}, false
		}
		cell := cells[rng.Intn(len(cells))]
		radius := d.Radius.Resolve(rng)
		return site{
			cell:     cell,
			position: cellPosition(st.World, cell),
			enclaves: enclavesNear(st, cell, radius, ""),
			radius:   radius,
		}, true

	case profile.TargetAnyEnclave:
		ids := sortedEnclaveIDs(st, func(*Enclave) bool { return true })
		if len(ids) == 0 {
			return site{}, false
		}
		e := st.Enclaves[ids[rng.Intn(len(ids))]]
		radius := d.Radius.Resolve(rng)
		return site{
			cell:     e.Cell,
			position: e.Center,
			enclaves: enclavesNear(st, e.Cell, radius, ""),
			radius:   radius,
		}, true

	case profile.TargetEnclaveInDomain:
		var domains []DomainID
		for id := range st.Domains {
			if len(sortedEnclaveIDs(st, func(e *Enclave) bool { return e.Domain == id })) > 0 {
				domains = append(domains, id)
			}
		}
		if len(domains) == 0 {
			return site{}, false
		}
		sort.Slice(domains, func(i, j int) bool { return domains[i] < domains[j] })
		domain := domains[rng.Intn(len(domains))]
		ids := sortedEnclaveIDs(st, func(e *Enclave) bool { return e.Domain == domain })
		e := st.Enclaves[ids[rng.Intn(len(ids))]]
		radius := d.Radius.Resolve(rng)
		return site{
			cell:     e.Cell,
			position: e.Center,
			enclaves: enclavesNear(st, e.Cell, radius, domain),
			radius:   radius,
		}, true

	case profile.TargetSeaRoute:
		var routes []*Route
		for _, r := range st.Routes {
			if r.Kind == world.RouteSea && !r.Destroyed {
				routes = append(routes, r)
			}
		}
		if len(routes) == 0 {
			return site{}, false
		}
		sort.Slice(routes, func(i, j int) bool { return routes[i].ID < routes[j].ID })
		r := routes[rng.Intn(len(routes))]
		a, b := st.Enclaves[r.A], st.Enclaves[r.B]
		if a == nil || b == nil {
			return site{}, false
		}
		return site{
			cell: a.Cell,
			position: world.Vec3{
				X: (a.Center.X + b.Center.X) / 2,
				Y: (a.Center.Y + b.Center.Y) / 2,
				Z: (a.Center.Z + b.Center.Z) / 2,
			},
			enclaves: []EnclaveID{r.A, r.B},
			route:    r.ID,
			radius:   d.Radius.Resolve(rng),
		}, true

	default:
		return site{}, false
	}
}

// enclavesNear lists enclaves within radius hexes of cell, optionally restricted to one
// domain. A global radius covers every enclave.
func enclavesNear(st *State, cell world.HexCoord, radius profile.Value, domain DomainID) []EnclaveID {
	return sortedEnclaveIDs(st, func(e *Enclave) bool {
		if domain != "" && e.Domain != domain {
			return false
		}
		if radius.Is(profile.Global) {
			return true
		}
		return world.Distance(e.Cell, cell) <= radius.N
	})
}

func sortedEnclaveIDs(st *State, keep func(*Enclave) bool) []EnclaveID {
	var ids []EnclaveID
	for id, e := range st.Enclaves {
		if keep(e) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func cellPosition(m *world.Map, coord world.HexCoord) world.Vec3 {
	pos := coord.Center()
	if c := m.Get(coord); c != nil {
		pos.Y = c.Elevation
	}
	return pos
}
