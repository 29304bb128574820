package engine

import (
	"fmt"
	"sort"

	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

// SetupConfig controls how a generated layout becomes the opening snapshot.
type SetupConfig struct {
	Seed          int64
	StartForces   int // forces in each player's starting enclave
	NeutralForces int // forces in every unclaimed enclave
}

// DefaultSetupConfig returns the standard opening.
func DefaultSetupConfig() SetupConfig {
	return SetupConfig{
		Seed:          1,
		StartForces:   12,
		NeutralForces: 4,
	}
}

// NewGame builds the opening snapshot. Players take domain capitals in order, then any
// remaining enclaves if there are more players than domains. Every player receives an
// instance of each gambit profile.
func NewGame(layout world.Layout, players []PlayerID, profiles *profile.Set, cfg SetupConfig) (*State, error) {
	if profiles == nil {
		return nil, fmt.Errorf("new game: profiles are required")
	}
	if len(players) > len(layout.Enclaves) {
		return nil, fmt.Errorf("%d players but only %d enclaves", len(players), len(layout.Enclaves))
	}

	st := &State{
		Seed:     cfg.Seed,
		World:    layout.Map,
		Enclaves: make(map[EnclaveID]*Enclave, len(layout.Enclaves)),
		Domains:  make(map[DomainID]*Domain, len(layout.Domains)),
		Gambits:  make(map[PlayerID]map[string]*Gambit, len(players)),
	}
	for _, d := range layout.Domains {
		st.Domains[DomainID(d.ID)] = &Domain{ID: DomainID(d.ID), Name: d.Name, Strength: d.Strength}
	}

	// Capitals first so each player opens on a domain seat.
	sites := append([]world.EnclaveSite(nil), layout.Enclaves...)
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].Capital && !sites[j].Capital })

	for i, s := range sites {
		en := &Enclave{
			ID:     EnclaveID(s.ID),
			Name:   s.Name,
			Forces: cfg.NeutralForces,
			Cell:   s.Coord,
			Center: cellPosition(layout.Map, s.Coord),
			Domain: DomainID(s.Domain),
		}
		if i < len(players) {
			en.Owner = players[i]
			en.Forces = cfg.StartForces
		}
		st.Enclaves[en.ID] = en
	}

	for i, l := range layout.Links {
		st.Routes = append(st.Routes, &Route{
			ID:   fmt.Sprintf("r%03d", i+1),
			A:    EnclaveID(l.A),
			B:    EnclaveID(l.B),
			Kind: l.Kind,
		})
	}

	keys := make([]string, 0, len(profiles.Gambits))
	for key := range profiles.Gambits {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, player := range players {
		st.Gambits[player] = make(map[string]*Gambit, len(keys))
		for _, key := range keys {
			g := NewGambit(profiles.Gambits[key])
			st.Gambits[player][key] = &g
		}
	}

	st.DomainOwners = ResolveOwnership(st.Domains, st.Enclaves)
	return st, nil
}
