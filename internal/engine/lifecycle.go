package engine

import (
	"math/rand"
	"sort"

	"github.com/talgya/stratagem/internal/profile"
)

// MutationKind names a map change a disaster asks the reducer to make.
type MutationKind uint8

const (
	MutationAttrition MutationKind = iota
	MutationSeverRoute
	MutationDestroyRoute
	MutationAttach
	MutationDetach
)

// Mutation is a single map change produced by the lifecycle manager.
type Mutation struct {
	Kind    MutationKind
	Enclave EnclaveID
	Route   string
	Event   string
	Amount  int
}

// Transition records an event moving between phases, or expiring when Expired is set.
type Transition struct {
	Event   string
	Profile string
	From    Phase
	To      Phase
	Expired bool
}

// LifecycleOutcome is the result of advancing every active event by one turn.
type LifecycleOutcome struct {
	Events      []*ActiveEvent
	Transitions []Transition
	Mutations   []Mutation
	Effects     []EffectItem
}

// Triggered is the result of a successful disaster trigger.
type Triggered struct {
	Event     *ActiveEvent
	Mutations []Mutation
	Effects   []EffectItem
	Notice    *Notice
}

// AdvanceEvents applies each event's ongoing rules for this turn, then counts its phase
// down: alert -> impact -> aftermath -> removed. Permanent phases never count down.
// Events keep their relative order. A profile that has gone missing is fatal.
func AdvanceEvents(st *State, profiles *profile.Set, rng *rand.Rand, seq *effectSeq) (LifecycleOutcome, error) {
	var out LifecycleOutcome
	for _, ev := range st.Events {
		d, err := profiles.Disaster(ev.Profile)
		if err != nil {
			return LifecycleOutcome{}, err
		}

		if ev.Rules.Attrition > 0 {
			for _, id := range ev.Enclaves {
				out.Mutations = append(out.Mutations, Mutation{Kind: MutationAttrition, Enclave: id, Event: ev.ID, Amount: ev.Rules.Attrition})
			}
		}
		if ev.Permanent {
			out.Events = append(out.Events, ev)
			continue
		}

		c := ev.Clone()
		c.Remaining--
		if c.Remaining > 0 {
			out.Events = append(out.Events, c)
			continue
		}

		to, ok := c.Phase.next()
		if !ok {
			for _, id := range c.Enclaves {
				out.Mutations = append(out.Mutations, Mutation{Kind: MutationDetach, Enclave: id, Event: c.ID})
			}
			out.Transitions = append(out.Transitions, Transition{Event: c.ID, Profile: c.Profile, From: c.Phase, To: c.Phase, Expired: true})
			continue
		}
		def, err := phaseDef(d, to)
		if err != nil {
			return LifecycleOutcome{}, err
		}
		out.Transitions = append(out.Transitions, Transition{Event: c.ID, Profile: c.Profile, From: c.Phase, To: to})
		muts, effects := enterPhase(c, to, def, st, rng, seq)
		out.Mutations = append(out.Mutations, muts...)
		out.Effects = append(out.Effects, effects...)
		out.Events = append(out.Events, c)
	}
	return out, nil
}

// StartDisaster starts a new disaster in its alert phase. It returns false, with no
// error, when the world offers no valid site. Missing or incomplete profiles are fatal.
func StartDisaster(st *State, key string, profiles *profile.Set, rng *rand.Rand, seq *effectSeq) (Triggered, bool, error) {
	d, err := profiles.Disaster(key)
	if err != nil {
		return Triggered{}, false, err
	}
	for _, p := range []Phase{PhaseAlert, PhaseImpact, PhaseAftermath} {
		if _, err := phaseDef(d, p); err != nil {
			return Triggered{}, false, err
		}
	}

	s, ok := selectSite(d, st, rng)
	if !ok {
		return Triggered{}, false, nil
	}

	ev := &ActiveEvent{
		ID:       disasterID(st.Turn, st.Nonce, key),
		Profile:  key,
		Enclaves: s.enclaves,
		Route:    s.route,
		Cell:     s.cell,
		Position: s.position,
		Radius:   s.radius,
		Started:  st.Turn,
	}
	alert, _ := phaseDef(d, PhaseAlert)
	muts, effects := enterPhase(ev, PhaseAlert, alert, st, rng, seq)
	for _, id := range ev.Enclaves {
		muts = append(muts, Mutation{Kind: MutationAttach, Enclave: id, Event: ev.ID})
	}
	return Triggered{
		Event:     ev,
		Mutations: muts,
		Effects:   effects,
		Notice:    disasterNotice(d, ev, st),
	}, true, nil
}

// enterPhase moves ev into phase p, resolving the phase's duration and applying its
// on-entry route rules.
func enterPhase(ev *ActiveEvent, p Phase, def *profile.Phase, st *State, rng *rand.Rand, seq *effectSeq) ([]Mutation, []EffectItem) {
	ev.Phase = p
	ev.Rules = def.Rules
	dur := def.Duration.Resolve(rng)
	if dur.Is(profile.Permanent) {
		ev.Permanent, ev.Remaining, ev.Duration = true, 0, 0
	} else {
		ev.Permanent, ev.Remaining, ev.Duration = false, dur.N, dur.N
	}

	var muts []Mutation
	routes := eventRoutes(ev, st)
	switch {
	case def.Rules.DestroyRoutes:
		for _, r := range routes {
			muts = append(muts, Mutation{Kind: MutationDestroyRoute, Route: r, Event: ev.ID})
		}
	case def.Rules.SeverRoutes != nil:
		turns := def.Rules.SeverRoutes.Resolve(rng)
		for _, r := range routes {
			if turns.Is(profile.Permanent) {
				muts = append(muts, Mutation{Kind: MutationDestroyRoute, Route: r, Event: ev.ID})
				continue
			}
			muts = append(muts, Mutation{Kind: MutationSeverRoute, Route: r, Event: ev.ID, Amount: turns.N})
		}
	}

	var effects []EffectItem
	if item, ok := cueEffect(seq.next(), def.Cue, ev.Position); ok {
		item.Source = ev.ID
		effects = append(effects, item)
	}
	return muts, effects
}

// eventRoutes lists the intact routes an event acts on: its own route when it targets
// one, otherwise every route touching an affected enclave.
func eventRoutes(ev *ActiveEvent, st *State) []string {
	var ids []string
	for _, r := range st.Routes {
		if r.Destroyed {
			continue
		}
		if ev.Route != "" {
			if r.ID == ev.Route {
				ids = append(ids, r.ID)
			}
			continue
		}
		for _, e := range ev.Enclaves {
			if r.Touches(e) {
				ids = append(ids, r.ID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids
}

func phaseDef(d *profile.Disaster, p Phase) (*profile.Phase, error) {
	var def *profile.Phase
	switch p {
	case PhaseAlert:
		def = d.Alert
	case PhaseImpact:
		def = d.Impact
	case PhaseAftermath:
		def = d.Aftermath
	default:
		panic("engine: unknown phase " + p.String())
	}
	if def == nil {
		return nil, &profile.ConfigError{Key: d.Key, Reason: "missing " + p.String() + " phase"}
	}
	return def, nil
}
