package engine

import (
	"maps"
	"slices"
)

// Clone copies the enclave. Slices are copied so the clone never aliases its parent.
func (e *Enclave) Clone() *Enclave {
	c := *e
	c.Events = slices.Clone(e.Events)
	c.Triggers = slices.Clone(e.Triggers)
	return &c
}

// Clone copies the route.
func (r *Route) Clone() *Route {
	c := *r
	return &c
}

// Clone copies the event and its affected-enclave list.
func (ev *ActiveEvent) Clone() *ActiveEvent {
	c := *ev
	c.Enclaves = slices.Clone(ev.Enclaves)
	if ev.Rules.SeverRoutes != nil {
		sever := *ev.Rules.SeverRoutes
		c.Rules.SeverRoutes = &sever
	}
	return &c
}

// Clone copies the gambit.
func (g *Gambit) Clone() *Gambit {
	c := *g
	return &c
}

// draft collects copy-on-write edits against a base snapshot. Each accessor clones the
// container and the entity the first time it is touched; everything else stays shared.
type draft struct {
	base *State
	next *State

	enclaves map[EnclaveID]bool
	routes   map[string]bool
	players  map[PlayerID]bool
	gambits  map[PlayerID]map[string]bool
}

func newDraft(base *State) *draft {
	next := *base
	return &draft{base: base, next: &next}
}

// enclave returns a mutable copy of the enclave, or nil when it does not exist.
func (d *draft) enclave(id EnclaveID) *Enclave {
	if d.base.Enclaves[id] == nil {
		return nil
	}
	if d.enclaves == nil {
		d.next.Enclaves = maps.Clone(d.base.Enclaves)
		d.enclaves = make(map[EnclaveID]bool)
	}
	if !d.enclaves[id] {
		d.next.Enclaves[id] = d.base.Enclaves[id].Clone()
		d.enclaves[id] = true
	}
	return d.next.Enclaves[id]
}

// route returns a mutable copy of the route, or nil.
func (d *draft) route(id string) *Route {
	idx := slices.IndexFunc(d.base.Routes, func(r *Route) bool { return r.ID == id })
	if idx < 0 {
		return nil
	}
	if d.routes == nil {
		d.next.Routes = slices.Clone(d.base.Routes)
		d.routes = make(map[string]bool)
	}
	if !d.routes[id] {
		d.next.Routes[idx] = d.base.Routes[idx].Clone()
		d.routes[id] = true
	}
	return d.next.Routes[idx]
}

// gambit returns a mutable copy of a player's gambit, or nil.
func (d *draft) gambit(player PlayerID, key string) *Gambit {
	if d.base.Gambits[player][key] == nil {
		return nil
	}
	if d.players == nil {
		d.next.Gambits = maps.Clone(d.base.Gambits)
		d.players = make(map[PlayerID]bool)
		d.gambits = make(map[PlayerID]map[string]bool)
	}
	if !d.players[player] {
		d.next.Gambits[player] = maps.Clone(d.base.Gambits[player])
		d.players[player] = true
		d.gambits[player] = make(map[string]bool)
	}
	if !d.gambits[player][key] {
		d.next.Gambits[player][key] = d.base.Gambits[player][key].Clone()
		d.gambits[player][key] = true
	}
	return d.next.Gambits[player][key]
}

// enqueue appends effect items to a fresh queue slice.
func (d *draft) enqueue(items ...EffectItem) {
	if len(items) == 0 {
		return
	}
	d.next.Effects = Enqueue(d.next.Effects, items...)
}

func (d *draft) state() *State {
	return d.next
}
