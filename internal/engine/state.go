// Package engine resolves turns: it folds player orders, disasters and gambits into the
// next immutable game snapshot plus a queue of effects for an external renderer.
package engine

import (
	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

// PlayerID identifies a player. The empty value means neutral.
type PlayerID string

// EnclaveID identifies an enclave.
type EnclaveID string

// DomainID identifies a domain.
type DomainID string

// Neutral is the owner of unclaimed or abandoned enclaves.
const Neutral PlayerID = ""

// Enclave is a territorial unit holding forces. Enclaves are never removed; an abandoned
// one turns neutral.
type Enclave struct {
	ID       EnclaveID      `json:"id"`
	Name     string         `json:"name"`
	Owner    PlayerID       `json:"owner"`
	Forces   int            `json:"forces"`
	Center   world.Vec3     `json:"center"`
	Cell     world.HexCoord `json:"cell"`
	Domain   DomainID       `json:"domain"`
	Events   []string       `json:"events"`   // ids of active events touching this enclave
	Triggers []Trigger      `json:"triggers"` // cues scheduled this turn, drained into the effect queue
}

// Trigger is a cue scheduled on an enclave by the resolution that caused it.
type Trigger struct {
	Source string      `json:"source"` // resolution id
	Cue    profile.Cue `json:"cue"`
}

// Domain is a named cluster of enclaves. Its owner is derived, never stored here.
type Domain struct {
	ID       DomainID `json:"id"`
	Name     string   `json:"name"`
	Strength int      `json:"strength"`
}

// Route links two enclaves. Routes are undirected.
type Route struct {
	ID            string          `json:"id"`
	A             EnclaveID       `json:"a"`
	B             EnclaveID       `json:"b"`
	Kind          world.RouteKind `json:"kind"`
	DisabledTurns int             `json:"disabled_turns"`
	Destroyed     bool            `json:"destroyed"`
}

// Enabled reports whether orders can travel the route this turn.
func (r *Route) Enabled() bool {
	return !r.Destroyed && r.DisabledTurns <= 0
}

// Touches reports whether the route ends at id.
func (r *Route) Touches(id EnclaveID) bool {
	return r.A == id || r.B == id
}

// Connects reports whether the route joins a and b in either direction.
func (r *Route) Connects(a, b EnclaveID) bool {
	return (r.A == a && r.B == b) || (r.A == b && r.B == a)
}

// OrderKind is what an enclave does this turn.
type OrderKind uint8

const (
	OrderHold OrderKind = iota
	OrderAttack
	OrderAssist
)

func (k OrderKind) String() string {
	switch k {
	case OrderHold:
		return "hold"
	case OrderAttack:
		return "attack"
	case OrderAssist:
		return "assist"
	default:
		return "unknown"
	}
}

// Order is one enclave's intent for the turn being resolved.
type Order struct {
	Target EnclaveID `json:"target"`
	Kind   OrderKind `json:"kind"`
}

// Phase is a disaster's stage.
type Phase uint8

const (
	PhaseAlert Phase = iota
	PhaseImpact
	PhaseAftermath
)

func (p Phase) String() string {
	switch p {
	case PhaseAlert:
		return "alert"
	case PhaseImpact:
		return "impact"
	case PhaseAftermath:
		return "aftermath"
	default:
		return "unknown"
	}
}

// next returns the phase that follows p, or false when p is terminal.
func (p Phase) next() (Phase, bool) {
	switch p {
	case PhaseAlert:
		return PhaseImpact, true
	case PhaseImpact:
		return PhaseAftermath, true
	case PhaseAftermath:
		return p, false
	default:
		panic("engine: unknown phase " + p.String())
	}
}

// ActiveEvent is a disaster in flight.
type ActiveEvent struct {
	ID        string         `json:"id"`
	Profile   string         `json:"profile"`
	Phase     Phase          `json:"phase"`
	Remaining int            `json:"remaining"` // turns left in the current phase
	Duration  int            `json:"duration"`  // length of the current phase
	Permanent bool           `json:"permanent"` // current phase never runs out
	Rules     profile.Rules  `json:"rules"`
	Enclaves  []EnclaveID    `json:"enclaves"`
	Route     string         `json:"route,omitempty"`
	Cell      world.HexCoord `json:"cell"`
	Position  world.Vec3     `json:"position"`
	Radius    profile.Value  `json:"radius"`
	Started   int            `json:"started"`
}

// Affects reports whether the event touches the enclave.
func (ev *ActiveEvent) Affects(id EnclaveID) bool {
	for _, e := range ev.Enclaves {
		if e == id {
			return true
		}
	}
	return false
}

// GambitState is where a gambit is in its lifecycle.
type GambitState uint8

const (
	GambitLocked GambitState = iota
	GambitAvailable
	GambitActive
	GambitDepleted
)

func (s GambitState) String() string {
	switch s {
	case GambitLocked:
		return "locked"
	case GambitAvailable:
		return "available"
	case GambitActive:
		return "active"
	case GambitDepleted:
		return "depleted"
	default:
		return "unknown"
	}
}

// Gambit is one player's instance of a special ability.
type Gambit struct {
	Key           string      `json:"key"`
	State         GambitState `json:"state"`
	RemainingUses int         `json:"remaining_uses"`
	ActiveTurns   int         `json:"active_turns"`
	Permanent     bool        `json:"permanent"` // active window never closes
}

// Visual is a renderer effect at a world position.
type Visual struct {
	Key      string     `json:"key"`
	Position world.Vec3 `json:"position"`
}

// Audio is a sound cue, positional when Position is set.
type Audio struct {
	Key      string      `json:"key"`
	Channel  string      `json:"channel"`
	Position *world.Vec3 `json:"position,omitempty"`
}

// EffectItem is a pending visual/audio trigger. It leaves the queue only when the
// renderer acknowledges it by id.
type EffectItem struct {
	ID      string   `json:"id"`
	Source  string   `json:"source,omitempty"` // resolution or event that emitted it
	Visuals []Visual `json:"visuals,omitempty"`
	Audio   *Audio   `json:"audio,omitempty"`
}

// Notice is the player-facing banner for the latest disaster.
type Notice struct {
	Turn     int         `json:"turn"`
	Profile  string      `json:"profile"`
	Title    string      `json:"title"`
	Body     string      `json:"body"`
	Icon     string      `json:"icon"`
	Enclaves []EnclaveID `json:"enclaves"`
}

// State is an immutable game snapshot. Reduce never edits a State in place; it returns
// a new one that shares every untouched substructure with its parent.
type State struct {
	Turn  int    `json:"turn"`
	Seed  int64  `json:"seed"`
	Nonce uint64 `json:"nonce"` // reductions that drew randomness

	World    *world.Map                      `json:"-"`
	Enclaves map[EnclaveID]*Enclave          `json:"enclaves"`
	Domains  map[DomainID]*Domain            `json:"domains"`
	Routes   []*Route                        `json:"routes"`
	Events   []*ActiveEvent                  `json:"events"`
	Gambits  map[PlayerID]map[string]*Gambit `json:"gambits"`
	Effects  []EffectItem                    `json:"effects"`
	Orders   map[EnclaveID]Order             `json:"orders"`

	Notice       *Notice               `json:"notice,omitempty"`
	LastTurn     []Resolution          `json:"last_turn"`
	DomainOwners map[DomainID]PlayerID `json:"domain_owners"` // derived each turn
}

// Enclave returns the enclave with id, or nil.
func (s *State) Enclave(id EnclaveID) *Enclave {
	return s.Enclaves[id]
}

// RouteBetween returns the first route joining a and b, or nil.
func (s *State) RouteBetween(a, b EnclaveID) *Route {
	for _, r := range s.Routes {
		if r.Connects(a, b) {
			return r
		}
	}
	return nil
}

// Gambit returns a player's gambit instance, or nil.
func (s *State) Gambit(player PlayerID, key string) *Gambit {
	return s.Gambits[player][key]
}

// Event returns the active event with id, or nil.
func (s *State) Event(id string) *ActiveEvent {
	for _, ev := range s.Events {
		if ev.ID == id {
			return ev
		}
	}
	return nil
}
