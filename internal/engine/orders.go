package engine

import (
	"math"
	"sort"

	"github.com/talgya/stratagem/internal/profile"
)

// ConquestEvent records an enclave changing hands.
type ConquestEvent struct {
	Enclave   EnclaveID `json:"enclave"`
	Conqueror PlayerID  `json:"conqueror"`
	Previous  PlayerID  `json:"previous"`
}

// Resolution is one enclave's concrete outcome for a turn. ID is stable for the
// (turn, source) pair so effects and logs can be traced back to the order.
type Resolution struct {
	ID     string    `json:"id"`
	Kind   OrderKind `json:"kind"`
	Source EnclaveID `json:"source"`
	Target EnclaveID `json:"target,omitempty"`
	Player PlayerID  `json:"player"`

	Requested OrderKind `json:"requested"`
	Reason    string    `json:"reason,omitempty"` // why a requested order fell back to hold

	Committed    int     `json:"committed,omitempty"` // attacking column size
	AttackerLoss int     `json:"attacker_loss,omitempty"`
	DefenderLoss int     `json:"defender_loss,omitempty"`
	Moved        int     `json:"moved,omitempty"` // occupiers after a conquest, or forces sent by an assist
	Attack       float64 `json:"attack,omitempty"`
	Defense      float64 `json:"defense,omitempty"`

	Conquest *ConquestEvent `json:"conquest,omitempty"`
}

// Downgraded reports whether the requested order fell back to hold.
func (r Resolution) Downgraded() bool {
	return r.Requested != r.Kind
}

// modifiers are the event and gambit bonuses in force while orders resolve.
type modifiers struct {
	defense     map[EnclaveID]float64
	blockAssist map[EnclaveID]bool
	attack      map[PlayerID]float64
	guard       map[PlayerID]float64
	assist      map[PlayerID]float64
}

// collectModifiers gathers the bonuses in force. An active gambit without a profile is
// a fatal configuration error.
func collectModifiers(st *State, profiles *profile.Set) (modifiers, error) {
	m := modifiers{
		defense:     make(map[EnclaveID]float64),
		blockAssist: make(map[EnclaveID]bool),
		attack:      make(map[PlayerID]float64),
		guard:       make(map[PlayerID]float64),
		assist:      make(map[PlayerID]float64),
	}
	for _, ev := range st.Events {
		for _, id := range ev.Enclaves {
			m.defense[id] += ev.Rules.DefenseModifier
			if ev.Rules.BlockAssist {
				m.blockAssist[id] = true
			}
		}
	}
	for player, gambits := range st.Gambits {
		for key, g := range gambits {
			if g.State != GambitActive {
				continue
			}
			p, err := profiles.Gambit(key)
			if err != nil {
				return modifiers{}, err
			}
			m.attack[player] += p.Rules.AttackBonus
			m.guard[player] += p.Rules.DefenseBonus
			m.assist[player] += p.Rules.AssistBonus
		}
	}
	return m, nil
}

// ResolveOrders turns the pending orders into one resolution per owned enclave. It does
// not modify st; resolutions carry the deltas the reducer applies, in order. Orders are
// processed by source id so the outcome is deterministic when several orders touch the
// same enclave.
//
// An enclave counts as holding when it commits no forces: no order, an order that fails
// validation, or one with nothing to send at the start of the turn. Orders that drop to
// hold during resolution count as holding for the orders resolved after them.
func ResolveOrders(st *State, rules Rules, profiles *profile.Set) ([]Resolution, error) {
	ids := make([]EnclaveID, 0, len(st.Enclaves))
	for id, e := range st.Enclaves {
		if e.Owner != Neutral {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	mods, err := collectModifiers(st, profiles)
	if err != nil {
		return nil, err
	}

	// Working view of forces and owners; st stays untouched.
	forces := make(map[EnclaveID]int, len(st.Enclaves))
	owners := make(map[EnclaveID]PlayerID, len(st.Enclaves))
	for id, e := range st.Enclaves {
		forces[id] = e.Forces
		owners[id] = e.Owner
	}

	out := make([]Resolution, 0, len(ids))
	holding := make(map[EnclaveID]bool)
	for _, id := range ids {
		src := st.Enclaves[id]
		order := st.Orders[id]
		res := Resolution{
			ID:        orderEventID(st.Turn, id),
			Kind:      order.Kind,
			Requested: order.Kind,
			Source:    id,
			Target:    order.Target,
			Player:    src.Owner,
		}
		reason := validateOrder(st, src, order, mods)
		if reason == "" {
			reason = commitCheck(src, order.Kind, rules, mods)
		}
		if reason != "" {
			res.Kind = OrderHold
			res.Reason = reason
		}
		if res.Kind == OrderHold {
			res.Target = ""
			holding[id] = true
		}
		out = append(out, res)
	}

	for i := range out {
		res := &out[i]
		// Lost this turn to an earlier attack: the old owner's order no longer stands.
		if res.Kind != OrderHold && owners[res.Source] != res.Player {
			res.Kind, res.Target, res.Reason = OrderHold, "", "source lost"
			continue
		}
		switch res.Kind {
		case OrderHold:
		case OrderAttack:
			resolveAttack(res, rules, mods, holding, forces, owners)
		case OrderAssist:
			resolveAssist(res, rules, mods, forces, owners)
		default:
			res.Kind, res.Target, res.Reason = OrderHold, "", "unknown order"
		}
		if res.Kind == OrderHold {
			holding[res.Source] = true
		}
	}
	return out, nil
}

// commitCheck reports an order that would commit nothing from the source's opening
// forces, or "".
func commitCheck(src *Enclave, kind OrderKind, rules Rules, mods modifiers) string {
	switch kind {
	case OrderAttack:
		if src.Forces-rules.Garrison <= 0 {
			return "no forces to commit"
		}
	case OrderAssist:
		if assistAmount(src.Forces, src.Owner, rules, mods) <= 0 {
			return "no forces to send"
		}
	}
	return ""
}

// assistAmount is how many forces an assist sends from a source holding forces.
func assistAmount(forces int, player PlayerID, rules Rules, mods modifiers) int {
	fraction := profile.Clamp(rules.AssistFraction+mods.assist[player], 0, 1)
	sent := int(math.Floor(float64(forces) * fraction))
	return min(sent, forces-rules.Garrison)
}

// validateOrder returns why an order cannot run, or "" when it can.
func validateOrder(st *State, src *Enclave, order Order, mods modifiers) string {
	if order.Kind == OrderHold {
		return ""
	}
	tgt := st.Enclaves[order.Target]
	if tgt == nil {
		return "unknown target"
	}
	if tgt.ID == src.ID {
		return "self target"
	}
	route := st.RouteBetween(src.ID, tgt.ID)
	if route == nil {
		return "no route"
	}
	if route.Destroyed {
		return "route destroyed"
	}
	if !route.Enabled() {
		return "route disabled"
	}
	switch order.Kind {
	case OrderAttack:
		if tgt.Owner == src.Owner {
			return "friendly target"
		}
	case OrderAssist:
		if tgt.Owner != src.Owner {
			return "foreign target"
		}
		if mods.blockAssist[tgt.ID] {
			return "assist blocked"
		}
	default:
		return "unknown order"
	}
	return ""
}

func resolveAttack(res *Resolution, rules Rules, mods modifiers, holding map[EnclaveID]bool, forces map[EnclaveID]int, owners map[EnclaveID]PlayerID) {
	defender := owners[res.Target]
	if defender == res.Player {
		// An earlier order this turn already took the target.
		res.Kind, res.Target, res.Reason = OrderHold, "", "friendly target"
		return
	}
	column := forces[res.Source] - rules.Garrison
	if column <= 0 {
		res.Kind, res.Target, res.Reason = OrderHold, "", "no forces to commit"
		return
	}

	attackMult := profile.Clamp(1+mods.attack[res.Player], 0, rules.MaxMultiplier)
	defenseMult := 1 + mods.defense[res.Target]
	if defender != Neutral {
		defenseMult += mods.guard[defender]
	}
	if holding[res.Target] {
		defenseMult += rules.HoldDefenseBonus
	}
	defenseMult = profile.Clamp(defenseMult, 0, rules.MaxMultiplier)

	defForces := forces[res.Target]
	res.Committed = column
	res.Attack = float64(column) * attackMult
	res.Defense = float64(defForces) * defenseMult
	res.AttackerLoss = min(column, int(math.Ceil(res.Defense)))
	res.DefenderLoss = min(defForces, int(math.Ceil(res.Attack)))

	forces[res.Source] -= column
	if res.Attack > res.Defense {
		// Conquered: the defender is wiped out and the column's survivors occupy it.
		res.DefenderLoss = defForces
		survivors := column - res.AttackerLoss
		if survivors < 1 {
			survivors = 1
			res.AttackerLoss = column - 1
		}
		res.Moved = survivors
		forces[res.Target] = survivors
		owners[res.Target] = res.Player
		res.Conquest = &ConquestEvent{Enclave: res.Target, Conqueror: res.Player, Previous: defender}
		return
	}
	// Repelled, ties included: the defender holds and the survivors return home.
	forces[res.Source] += column - res.AttackerLoss
	forces[res.Target] = defForces - res.DefenderLoss
}

func resolveAssist(res *Resolution, rules Rules, mods modifiers, forces map[EnclaveID]int, owners map[EnclaveID]PlayerID) {
	if owners[res.Target] != res.Player {
		res.Kind, res.Target, res.Reason = OrderHold, "", "foreign target"
		return
	}
	sent := assistAmount(forces[res.Source], res.Player, rules, mods)
	if sent <= 0 {
		res.Kind, res.Target, res.Reason = OrderHold, "", "no forces to send"
		return
	}
	res.Moved = sent
	forces[res.Source] -= sent
	forces[res.Target] += sent
}
