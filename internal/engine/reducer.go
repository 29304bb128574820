package engine

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sort"

	"github.com/talgya/stratagem/internal/entropy"
	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

// Engine reduces commands against snapshots. Profiles and Rules are read-only.
type Engine struct {
	Profiles *profile.Set
	Rules    Rules
	Logger   *slog.Logger
}

// New creates an engine. A nil logger falls back to slog.Default().
func New(profiles *profile.Set, rules Rules, logger *slog.Logger) *Engine {
	if rules.MaxMultiplier <= 0 {
		rules.MaxMultiplier = DefaultRules().MaxMultiplier
	}
	return &Engine{Profiles: profiles, Rules: rules, Logger: logger}
}

func (e *Engine) log() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}

// Reduce applies one command and returns the next snapshot. st is never modified.
//
// Benign skips return st itself with a nil error. Rejected commands return st with an
// error matching ErrRejected. Fatal configuration errors return a nil state; callers
// must stop and surface them.
func (e *Engine) Reduce(st *State, cmd Command) (*State, error) {
	switch c := cmd.(type) {
	case SubmitOrders:
		return e.submitOrders(st, c)
	case AdvanceTurn:
		return e.advanceTurn(st)
	case TriggerDisaster:
		return e.triggerDisaster(st, c)
	case ActivateGambit:
		return e.activateGambit(st, c)
	case UnlockGambit:
		return e.unlockGambit(st, c)
	case AckEffects:
		return Acknowledge(st, c.IDs), nil
	case ClearNotice:
		return clearNotice(st), nil
	default:
		return st, fmt.Errorf("%T: %w", cmd, ErrUnknownCommand)
	}
}

func (e *Engine) submitOrders(st *State, c SubmitOrders) (*State, error) {
	if len(c.Orders) == 0 {
		return st, nil
	}
	for id, o := range c.Orders {
		src := st.Enclaves[id]
		switch {
		case src == nil:
			return st, fmt.Errorf("order from unknown enclave %s: %w", id, ErrInvalidOrder)
		case src.Owner == Neutral:
			return st, fmt.Errorf("order from neutral enclave %s: %w", id, ErrInvalidOrder)
		case c.Player != Neutral && src.Owner != c.Player:
			return st, fmt.Errorf("order from %s owned by %s, not %s: %w", id, src.Owner, c.Player, ErrInvalidOrder)
		case o.Kind > OrderAssist:
			return st, fmt.Errorf("order from %s has kind %d: %w", id, o.Kind, ErrInvalidOrder)
		}
	}

	next := *st
	next.Orders = make(map[EnclaveID]Order, len(st.Orders)+len(c.Orders))
	maps.Copy(next.Orders, st.Orders)
	maps.Copy(next.Orders, c.Orders)
	return &next, nil
}

// advanceTurn runs the turn pipeline in its fixed order: resolve orders, apply outcomes,
// advance events, tick gambits, recompute domain ownership, merge effects. Every step
// lands in the same snapshot.
func (e *Engine) advanceTurn(st *State) (*State, error) {
	rng := entropy.Stream(st.Seed, st.Turn, st.Nonce)
	seq := &effectSeq{turn: st.Turn, nonce: st.Nonce}
	d := newDraft(st)

	resolutions, err := ResolveOrders(st, e.Rules, e.Profiles)
	if err != nil {
		return nil, fmt.Errorf("advance turn %d: %w", st.Turn, err)
	}
	conquests := 0
	for _, res := range resolutions {
		if e.applyResolution(d, st.Turn, res) {
			conquests++
		}
	}

	d.tickRoutes()
	outcome, err := AdvanceEvents(d.state(), e.Profiles, rng, seq)
	if err != nil {
		return nil, fmt.Errorf("advance turn %d: %w", st.Turn, err)
	}
	d.next.Events = outcome.Events
	for _, m := range outcome.Mutations {
		d.apply(m)
	}
	for _, t := range outcome.Transitions {
		if t.Expired {
			e.log().Info("disaster ended", "turn", st.Turn, "event", t.Event, "profile", t.Profile)
			continue
		}
		e.log().Info("disaster phase", "turn", st.Turn, "event", t.Event, "profile", t.Profile, "from", t.From, "to", t.To)
	}

	for player, gambits := range st.Gambits {
		for key, g := range gambits {
			if g.State != GambitActive {
				continue
			}
			*d.gambit(player, key) = TickGambit(*g)
		}
	}

	d.next.DomainOwners = ResolveOwnership(d.next.Domains, d.next.Enclaves)

	d.enqueue(d.drainTriggers(seq)...)
	d.enqueue(outcome.Effects...)

	next := d.state()
	next.Orders = nil
	next.LastTurn = resolutions
	next.Turn = st.Turn + 1
	next.Nonce = st.Nonce + 1

	e.log().Debug("turn resolved",
		"turn", st.Turn,
		"orders", len(resolutions),
		"conquests", conquests,
		"events", len(next.Events),
		"effects_queued", len(next.Effects),
	)
	return next, nil
}

// applyResolution writes one resolution's deltas into the draft. It reports whether an
// enclave changed hands.
func (e *Engine) applyResolution(d *draft, turn int, res Resolution) bool {
	switch res.Kind {
	case OrderHold:
		return false
	case OrderAttack:
		src, tgt := d.enclave(res.Source), d.enclave(res.Target)
		if res.Conquest != nil {
			src.Forces -= res.Committed
			tgt.Forces = res.Moved
			tgt.Owner = res.Player
			tgt.Triggers = appendTrigger(tgt.Triggers, res.ID, e.Rules.ConquestCue)
			e.log().Info("enclave conquered",
				"turn", turn,
				"resolution", res.ID,
				"enclave", res.Target,
				"conqueror", res.Conquest.Conqueror,
				"previous", res.Conquest.Previous,
				"attack", fmt.Sprintf("%.1f", res.Attack),
				"defense", fmt.Sprintf("%.1f", res.Defense),
			)
			return true
		}
		src.Forces -= res.AttackerLoss
		tgt.Forces -= res.DefenderLoss
		tgt.Triggers = appendTrigger(tgt.Triggers, res.ID, e.Rules.RepelCue)
		return false
	case OrderAssist:
		src, tgt := d.enclave(res.Source), d.enclave(res.Target)
		src.Forces -= res.Moved
		tgt.Forces += res.Moved
		tgt.Triggers = appendTrigger(tgt.Triggers, res.ID, e.Rules.AssistCue)
		return false
	default:
		panic(fmt.Sprintf("engine: unknown order kind %d", res.Kind))
	}
}

func (e *Engine) triggerDisaster(st *State, c TriggerDisaster) (*State, error) {
	rng := entropy.Stream(st.Seed, st.Turn, st.Nonce)
	seq := &effectSeq{turn: st.Turn, nonce: st.Nonce}
	t, ok, err := StartDisaster(st, c.Profile, e.Profiles, rng, seq)
	if err != nil {
		return nil, fmt.Errorf("trigger disaster: %w", err)
	}
	if !ok {
		e.log().Debug("disaster found no site", "turn", st.Turn, "profile", c.Profile)
		return st, nil
	}

	d := newDraft(st)
	d.next.Events = append(slices.Clip(st.Events), t.Event)
	for _, m := range t.Mutations {
		d.apply(m)
	}
	d.enqueue(t.Effects...)

	next := d.state()
	next.Notice = t.Notice
	next.Nonce = st.Nonce + 1

	e.log().Info("disaster triggered",
		"turn", st.Turn,
		"event", t.Event.ID,
		"profile", c.Profile,
		"enclaves", len(t.Event.Enclaves),
		"alert_turns", t.Event.Remaining,
	)
	return next, nil
}

func (e *Engine) activateGambit(st *State, c ActivateGambit) (*State, error) {
	p, err := e.Profiles.Gambit(c.Key)
	if err != nil {
		return nil, fmt.Errorf("activate gambit: %w", err)
	}
	g := st.Gambit(c.Player, c.Key)
	if g == nil {
		return st, fmt.Errorf("activate %q for %s: %w", c.Key, c.Player, ErrUnknownGambit)
	}
	rng := entropy.Stream(st.Seed, st.Turn, st.Nonce)
	updated, err := SpendGambit(*g, p, rng)
	if err != nil {
		return st, err
	}

	d := newDraft(st)
	*d.gambit(c.Player, c.Key) = updated

	var positions []world.Vec3
	for _, id := range sortedEnclaveIDs(st, func(en *Enclave) bool { return en.Owner == c.Player }) {
		en := st.Enclaves[id]
		if p.Rules.Reinforce > 0 {
			en = d.enclave(id)
			en.Forces += p.Rules.Reinforce
		}
		positions = append(positions, en.Center)
	}
	seq := &effectSeq{turn: st.Turn, nonce: st.Nonce}
	if item, ok := cueEffect(seq.next(), p.Cue, positions...); ok {
		d.enqueue(item)
	}

	next := d.state()
	next.Nonce = st.Nonce + 1

	e.log().Info("gambit activated",
		"turn", st.Turn,
		"player", c.Player,
		"gambit", c.Key,
		"state", updated.State,
		"remaining_uses", updated.RemainingUses,
		"active_turns", updated.ActiveTurns,
	)
	return next, nil
}

func (e *Engine) unlockGambit(st *State, c UnlockGambit) (*State, error) {
	if _, err := e.Profiles.Gambit(c.Key); err != nil {
		return nil, fmt.Errorf("unlock gambit: %w", err)
	}
	g := st.Gambit(c.Player, c.Key)
	if g == nil {
		return st, fmt.Errorf("unlock %q for %s: %w", c.Key, c.Player, ErrUnknownGambit)
	}
	updated, err := OpenGambit(*g)
	if err != nil {
		return st, err
	}
	d := newDraft(st)
	*d.gambit(c.Player, c.Key) = updated
	e.log().Info("gambit unlocked", "player", c.Player, "gambit", c.Key)
	return d.state(), nil
}

func clearNotice(st *State) *State {
	if st.Notice == nil {
		return st
	}
	next := *st
	next.Notice = nil
	return &next
}

// apply writes a lifecycle mutation into the draft. Mutations naming entities that no
// longer exist are dropped.
func (d *draft) apply(m Mutation) {
	switch m.Kind {
	case MutationAttrition:
		en := d.enclave(m.Enclave)
		if en == nil {
			return
		}
		en.Forces = max(0, en.Forces-m.Amount)
		if en.Forces == 0 {
			en.Owner = Neutral
		}
	case MutationSeverRoute:
		if r := d.route(m.Route); r != nil {
			r.DisabledTurns = max(r.DisabledTurns, m.Amount)
		}
	case MutationDestroyRoute:
		if r := d.route(m.Route); r != nil {
			r.Destroyed = true
		}
	case MutationAttach:
		if en := d.enclave(m.Enclave); en != nil && !slices.Contains(en.Events, m.Event) {
			en.Events = append(en.Events, m.Event)
		}
	case MutationDetach:
		if en := d.enclave(m.Enclave); en != nil {
			en.Events = slices.DeleteFunc(en.Events, func(id string) bool { return id == m.Event })
		}
	default:
		panic(fmt.Sprintf("engine: unknown mutation kind %d", m.Kind))
	}
}

// tickRoutes counts down disabled routes.
func (d *draft) tickRoutes() {
	for _, r := range d.base.Routes {
		if r.Destroyed || r.DisabledTurns <= 0 {
			continue
		}
		d.route(r.ID).DisabledTurns--
	}
}

// drainTriggers turns every enclave's scheduled cues into effect items, in enclave id
// order, and clears them. Items emitted by a resolution carry its id as their source.
func (d *draft) drainTriggers(seq *effectSeq) []EffectItem {
	var ids []EnclaveID
	for id, en := range d.next.Enclaves {
		if len(en.Triggers) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var items []EffectItem
	emitted := make(map[string]int)
	for _, id := range ids {
		en := d.enclave(id)
		for _, tr := range en.Triggers {
			var itemID string
			if tr.Source != "" {
				emitted[tr.Source]++
				itemID = resolutionEffectID(tr.Source, emitted[tr.Source])
			} else {
				itemID = seq.next()
			}
			if item, ok := cueEffect(itemID, tr.Cue, en.Center); ok {
				item.Source = tr.Source
				items = append(items, item)
			}
		}
		en.Triggers = nil
	}
	return items
}

func appendTrigger(triggers []Trigger, source string, cue profile.Cue) []Trigger {
	if cue.Empty() {
		return triggers
	}
	return append(triggers, Trigger{Source: source, Cue: cue})
}
