package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

func testProfiles(t *testing.T) *profile.Set {
	t.Helper()
	s, err := profile.Default()
	if err != nil {
		t.Fatalf("load default profiles: %v", err)
	}
	return s
}

func testEngine(t *testing.T, profiles *profile.Set) *Engine {
	t.Helper()
	if profiles == nil {
		profiles = testProfiles(t)
	}
	return New(profiles, DefaultRules(), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testState builds a four-enclave board:
//
//	a (p1, 10, d1) -- b (p2, 6, d1)   land r1
//	a -- c (p1, 4, d2)                land r2
//	a -- n (neutral, 3, d3)           land r3
//	b -- c                            sea  r4
func testState() *State {
	m := world.NewMap(3)
	for q := -3; q <= 3; q++ {
		for r := -3; r <= 3; r++ {
			c := world.HexCoord{Q: q, R: r}
			if m.InBounds(c) {
				m.Set(&world.Cell{Coord: c, Terrain: world.TerrainPlains})
			}
		}
	}

	enclave := func(id EnclaveID, owner PlayerID, forces int, cell world.HexCoord, domain DomainID) *Enclave {
		return &Enclave{ID: id, Name: string(id), Owner: owner, Forces: forces, Cell: cell, Center: cell.Center(), Domain: domain}
	}
	st := &State{
		Seed:  7,
		World: m,
		Enclaves: map[EnclaveID]*Enclave{
			"a": enclave("a", "p1", 10, world.HexCoord{Q: 0, R: 0}, "d1"),
			"b": enclave("b", "p2", 6, world.HexCoord{Q: 1, R: 0}, "d1"),
			"c": enclave("c", "p1", 4, world.HexCoord{Q: 0, R: 1}, "d2"),
			"n": enclave("n", Neutral, 3, world.HexCoord{Q: -1, R: 0}, "d3"),
		},
		Domains: map[DomainID]*Domain{
			"d1": {ID: "d1", Name: "Ashford", Strength: 2},
			"d2": {ID: "d2", Name: "Greenhollow", Strength: 1},
			"d3": {ID: "d3", Name: "Stonewick", Strength: 1},
		},
		Routes: []*Route{
			{ID: "r1", A: "a", B: "b", Kind: world.RouteLand},
			{ID: "r2", A: "a", B: "c", Kind: world.RouteLand},
			{ID: "r3", A: "a", B: "n", Kind: world.RouteLand},
			{ID: "r4", A: "b", B: "c", Kind: world.RouteSea},
		},
		Gambits: map[PlayerID]map[string]*Gambit{
			"p1": {
				"overwhelm": {Key: "overwhelm", State: GambitLocked, RemainingUses: 2},
				"bulwark":   {Key: "bulwark", State: GambitAvailable, RemainingUses: 3},
				"levy":      {Key: "levy", State: GambitAvailable, RemainingUses: 1},
			},
			"p2": {
				"bulwark": {Key: "bulwark", State: GambitAvailable, RemainingUses: 3},
			},
		},
	}
	st.DomainOwners = ResolveOwnership(st.Domains, st.Enclaves)
	return st
}

func reduce(t *testing.T, eng *Engine, st *State, cmd Command) *State {
	t.Helper()
	next, err := eng.Reduce(st, cmd)
	if err != nil {
		t.Fatalf("reduce %s: %v", cmd.Name(), err)
	}
	return next
}

func findResolution(t *testing.T, st *State, source EnclaveID) Resolution {
	t.Helper()
	for _, r := range st.LastTurn {
		if r.Source == source {
			return r
		}
	}
	t.Fatalf("no resolution for %s", source)
	return Resolution{}
}
