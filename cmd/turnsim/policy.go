package main

import (
	"sort"

	"github.com/talgya/stratagem/internal/engine"
)

// planOrders is the scripted opponent: attack the weakest reachable enclave the column
// can beat, otherwise reinforce a friendly neighbour under threat, otherwise hold.
func planOrders(st *engine.State, player engine.PlayerID, rules engine.Rules) map[engine.EnclaveID]engine.Order {
	var own []*engine.Enclave
	for _, e := range st.Enclaves {
		if e.Owner == player {
			own = append(own, e)
		}
	}
	sort.Slice(own, func(i, j int) bool { return own[i].ID < own[j].ID })

	orders := make(map[engine.EnclaveID]engine.Order)
	for _, src := range own {
		column := src.Forces - rules.Garrison
		if column <= 0 {
			continue
		}

		var prey *engine.Enclave
		var ward *engine.Enclave
		for _, n := range neighbours(st, src.ID) {
			switch {
			case n.Owner != player:
				if column > n.Forces && (prey == nil || n.Forces < prey.Forces) {
					prey = n
				}
			case threat(st, n.ID, player) > n.Forces && (ward == nil || n.Forces < ward.Forces):
				ward = n
			}
		}

		switch {
		case prey != nil:
			orders[src.ID] = engine.Order{Target: prey.ID, Kind: engine.OrderAttack}
		case ward != nil && threat(st, src.ID, player) == 0:
			orders[src.ID] = engine.Order{Target: ward.ID, Kind: engine.OrderAssist}
		}
	}
	return orders
}

// neighbours lists enclaves reachable over usable routes, in id order.
func neighbours(st *engine.State, id engine.EnclaveID) []*engine.Enclave {
	var out []*engine.Enclave
	for _, r := range st.Routes {
		if !r.Enabled() || !r.Touches(id) {
			continue
		}
		other := r.A
		if other == id {
			other = r.B
		}
		if e := st.Enclave(other); e != nil {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// threat is the largest enemy force adjacent to id.
func threat(st *engine.State, id engine.EnclaveID, player engine.PlayerID) int {
	worst := 0
	for _, n := range neighbours(st, id) {
		if n.Owner != player && n.Owner != engine.Neutral {
			worst = max(worst, n.Forces)
		}
	}
	return worst
}

// pickGambit rotates through the player's available gambits by turn.
func pickGambit(st *engine.State, player engine.PlayerID) (string, bool) {
	keys := make([]string, 0, len(st.Gambits[player]))
	for key, g := range st.Gambits[player] {
		if g.State == engine.GambitAvailable {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return "", false
	}
	sort.Strings(keys)
	return keys[st.Turn%len(keys)], true
}

// lockedGambits lists the player's locked gambits in key order.
func lockedGambits(st *engine.State, player engine.PlayerID) []string {
	var keys []string
	for key, g := range st.Gambits[player] {
		if g.State == engine.GambitLocked {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}
