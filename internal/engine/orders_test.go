package engine

import (
	"testing"

	"github.com/talgya/stratagem/internal/profile"
)

func resolveOrders(t *testing.T, st *State, rules Rules, profiles *profile.Set) []Resolution {
	t.Helper()
	res, err := ResolveOrders(st, rules, profiles)
	if err != nil {
		t.Fatalf("resolve orders: %v", err)
	}
	return res
}

func TestAttackConquersWeakerEnclave(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st = reduce(t, eng, st, SubmitOrders{Player: "p1", Orders: map[EnclaveID]Order{
		"a": {Target: "b", Kind: OrderAttack},
	}})
	next := reduce(t, eng, st, AdvanceTurn{})

	b := next.Enclave("b")
	if b.Owner != "p1" {
		t.Fatalf("expected b owned by p1, got %q", b.Owner)
	}
	if b.Forces != 3 {
		t.Fatalf("expected 3 occupiers in b, got %d", b.Forces)
	}
	if a := next.Enclave("a"); a.Forces != 1 {
		t.Fatalf("expected garrison of 1 left in a, got %d", a.Forces)
	}

	res := findResolution(t, next, "a")
	if res.Conquest == nil {
		t.Fatal("expected a conquest event")
	}
	if res.Conquest.Enclave != "b" || res.Conquest.Conqueror != "p1" || res.Conquest.Previous != "p2" {
		t.Fatalf("unexpected conquest %+v", *res.Conquest)
	}
	if res.ID != orderEventID(0, "a") {
		t.Fatalf("expected stable resolution id, got %s", res.ID)
	}
	if next.DomainOwners["d1"] != "p1" {
		t.Fatalf("expected d1 to fall to p1, got %q", next.DomainOwners["d1"])
	}
	if len(next.Effects) != 1 || next.Effects[0].Visuals[0].Key != "conquest" {
		t.Fatalf("expected one conquest effect, got %+v", next.Effects)
	}
	if next.Effects[0].Visuals[0].Position != b.Center {
		t.Fatal("expected conquest effect at b")
	}
	if next.Orders != nil {
		t.Fatal("expected orders cleared after the turn")
	}
	if next.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", next.Turn)
	}
}

func TestTieDefenderHolds(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Enclaves["a"].Forces = 7 // column of 6 against 6
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	if b := next.Enclave("b"); b.Owner != "p2" || b.Forces != 0 {
		t.Fatalf("expected p2 to hold b with 0 forces, got %q with %d", b.Owner, b.Forces)
	}
	if a := next.Enclave("a"); a.Forces != 1 {
		t.Fatalf("expected a to keep its garrison, got %d", a.Forces)
	}
	if res := findResolution(t, next, "a"); res.Conquest != nil {
		t.Fatal("expected no conquest on a tie")
	}
}

func TestUnorderedEnclavesHold(t *testing.T) {
	st := testState()
	res := resolveOrders(t, st, DefaultRules(), nil)
	if len(res) != 3 {
		t.Fatalf("expected resolutions for the 3 owned enclaves, got %d", len(res))
	}
	for _, r := range res {
		if r.Kind != OrderHold || r.Downgraded() {
			t.Fatalf("expected plain hold for %s, got %s", r.Source, r.Kind)
		}
		if r.Source == "n" {
			t.Fatal("expected neutral enclave to produce no resolution")
		}
	}
}

func TestOrderDowngrades(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(st *State)
		order  Order
		source EnclaveID
		reason string
	}{
		{
			name:   "disabled route",
			setup:  func(st *State) { st.Routes[0].DisabledTurns = 2 },
			source: "a", order: Order{Target: "b", Kind: OrderAttack},
			reason: "route disabled",
		},
		{
			name:   "destroyed route",
			setup:  func(st *State) { st.Routes[0].Destroyed = true },
			source: "a", order: Order{Target: "b", Kind: OrderAttack},
			reason: "route destroyed",
		},
		{
			name:   "no route",
			source: "c", order: Order{Target: "n", Kind: OrderAttack},
			reason: "no route",
		},
		{
			name:   "attack friendly",
			source: "a", order: Order{Target: "c", Kind: OrderAttack},
			reason: "friendly target",
		},
		{
			name:   "assist foreign",
			source: "a", order: Order{Target: "b", Kind: OrderAssist},
			reason: "foreign target",
		},
		{
			name:   "unknown target",
			source: "a", order: Order{Target: "zz", Kind: OrderAttack},
			reason: "unknown target",
		},
		{
			name: "assist blocked",
			setup: func(st *State) {
				st.Events = []*ActiveEvent{{ID: "ev", Profile: "blight", Phase: PhaseImpact, Remaining: 2, Rules: profile.Rules{BlockAssist: true}, Enclaves: []EnclaveID{"a"}}}
			},
			source: "c", order: Order{Target: "a", Kind: OrderAssist},
			reason: "assist blocked",
		},
		{
			name:   "nothing to commit",
			setup:  func(st *State) { st.Enclaves["a"].Forces = 1 },
			source: "a", order: Order{Target: "b", Kind: OrderAttack},
			reason: "no forces to commit",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := testState()
			if tt.setup != nil {
				tt.setup(st)
			}
			st.Orders = map[EnclaveID]Order{tt.source: tt.order}
			var got Resolution
			for _, r := range resolveOrders(t, st, DefaultRules(), testProfiles(t)) {
				if r.Source == tt.source {
					got = r
				}
			}
			if got.Kind != OrderHold || got.Requested != tt.order.Kind {
				t.Fatalf("expected %s downgraded to hold, got %s", tt.order.Kind, got.Kind)
			}
			if got.Reason != tt.reason {
				t.Fatalf("expected reason %q, got %q", tt.reason, got.Reason)
			}
		})
	}
}

func TestDisabledRouteCountsDown(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Routes[0].DisabledTurns = 2
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	if b := next.Enclave("b"); b.Owner != "p2" || b.Forces != 6 {
		t.Fatal("expected b untouched by a downgraded attack")
	}
	if got := next.RouteBetween("a", "b").DisabledTurns; got != 1 {
		t.Fatalf("expected 1 disabled turn left, got %d", got)
	}
	if st.Routes[0].DisabledTurns != 2 {
		t.Fatal("expected previous snapshot route untouched")
	}
}

func TestAssistTransfersForces(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Orders = map[EnclaveID]Order{"c": {Target: "a", Kind: OrderAssist}}
	next := reduce(t, eng, st, AdvanceTurn{})

	if c := next.Enclave("c"); c.Forces != 2 {
		t.Fatalf("expected c to keep 2, got %d", c.Forces)
	}
	if a := next.Enclave("a"); a.Forces != 12 {
		t.Fatalf("expected a to reach 12, got %d", a.Forces)
	}
	if res := findResolution(t, next, "c"); res.Moved != 2 {
		t.Fatalf("expected 2 moved, got %d", res.Moved)
	}
}

func TestLostSourceOrderFallsBack(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Orders = map[EnclaveID]Order{
		"a": {Target: "b", Kind: OrderAttack},
		"b": {Target: "c", Kind: OrderAttack},
	}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "b")
	if res.Kind != OrderHold || res.Reason != "source lost" {
		t.Fatalf("expected b's attack dropped after its fall, got %s (%s)", res.Kind, res.Reason)
	}
	if c := next.Enclave("c"); c.Owner != "p1" || c.Forces != 4 {
		t.Fatal("expected c untouched")
	}
}

func TestAttackOnNeutral(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Orders = map[EnclaveID]Order{"a": {Target: "n", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "a")
	if res.Conquest == nil || res.Conquest.Previous != Neutral {
		t.Fatalf("expected neutral enclave conquered, got %+v", res)
	}
	if next.DomainOwners["d3"] != "p1" {
		t.Fatalf("expected d3 owned by p1, got %q", next.DomainOwners["d3"])
	}
}

func TestEventDefenseModifier(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Events = []*ActiveEvent{{
		ID: "ev1", Profile: "entropy-wind", Phase: PhaseImpact, Remaining: 2, Duration: 2,
		Rules: profile.Rules{DefenseModifier: 1.0}, Enclaves: []EnclaveID{"b"},
	}}
	st.Enclaves["b"].Events = []string{"ev1"}
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "a")
	if res.Conquest != nil {
		t.Fatal("expected the fortified defender to hold")
	}
	if res.Defense != 12 {
		t.Fatalf("expected defense 12, got %v", res.Defense)
	}
	if b := next.Enclave("b"); b.Owner != "p2" || b.Forces != 0 {
		t.Fatalf("expected p2 holding b with 0, got %q/%d", b.Owner, b.Forces)
	}
	if a := next.Enclave("a"); a.Forces != 1 {
		t.Fatalf("expected a reduced to 1, got %d", a.Forces)
	}
}

func TestActiveGambitBoostsAttack(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Enclaves["a"].Forces = 4
	st.Enclaves["b"].Forces = 4
	st.Gambits["p1"]["overwhelm"] = &Gambit{Key: "overwhelm", State: GambitActive, RemainingUses: 1, ActiveTurns: 2}
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "a")
	if res.Attack != 4.5 {
		t.Fatalf("expected attack 4.5, got %v", res.Attack)
	}
	if res.Conquest == nil {
		t.Fatal("expected the boosted column to take b")
	}
	if g := next.Gambit("p1", "overwhelm"); g.ActiveTurns != 1 || g.State != GambitActive {
		t.Fatalf("expected overwhelm ticked to 1 turn, got %+v", *g)
	}
}

func TestHoldDefenseBonus(t *testing.T) {
	st := testState()
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	rules := DefaultRules()
	rules.HoldDefenseBonus = 0.5
	for _, r := range resolveOrders(t, st, rules, nil) {
		if r.Source != "a" {
			continue
		}
		if r.Defense != 9 {
			t.Fatalf("expected holding defender at 9, got %v", r.Defense)
		}
		if r.Conquest != nil {
			t.Fatal("expected a 9 vs 9 tie to favour the defender")
		}
	}
}

func TestCombatLossesNeverNegative(t *testing.T) {
	eng := testEngine(t, nil)
	for att := 2; att <= 15; att++ {
		for def := 0; def <= 15; def++ {
			st := testState()
			st.Enclaves["a"].Forces = att
			st.Enclaves["b"].Forces = def
			st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
			next := reduce(t, eng, st, AdvanceTurn{})

			a, b := next.Enclave("a"), next.Enclave("b")
			if a.Forces < 0 || b.Forces < 0 {
				t.Fatalf("att=%d def=%d: negative forces a=%d b=%d", att, def, a.Forces, b.Forces)
			}
			res := findResolution(t, next, "a")
			if res.Conquest != nil {
				if def > 0 && res.DefenderLoss != def {
					t.Fatalf("att=%d def=%d: expected defender wiped out", att, def)
				}
				continue
			}
			if a.Forces >= att {
				t.Fatalf("att=%d def=%d: expected repelled attacker to lose forces, has %d", att, def, a.Forces)
			}
		}
	}
}

func TestConquestEffectTracesToOrder(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "a")
	if len(next.Effects) != 1 {
		t.Fatalf("expected one effect, got %d", len(next.Effects))
	}
	item := next.Effects[0]
	if item.Source != res.ID {
		t.Fatalf("expected effect source %s, got %q", res.ID, item.Source)
	}
	if item.ID != resolutionEffectID(res.ID, 1) {
		t.Fatalf("expected effect id derived from the resolution, got %s", item.ID)
	}

	again := reduce(t, eng, st, AdvanceTurn{})
	if again.Effects[0].ID != item.ID {
		t.Fatal("expected the same effect id on replay")
	}
}

func TestRepelAndAssistEffectsCarrySource(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Enclaves["a"].Forces = 7
	st.Orders = map[EnclaveID]Order{
		"a": {Target: "b", Kind: OrderAttack},
		"c": {Target: "a", Kind: OrderAssist},
	}
	next := reduce(t, eng, st, AdvanceTurn{})

	sources := map[string]bool{}
	for _, it := range next.Effects {
		sources[it.Source] = true
	}
	// The assist cue is visual-only and positioned at a; the repel cue lands on b.
	for _, src := range []EnclaveID{"a", "c"} {
		if id := findResolution(t, next, src).ID; !sources[id] {
			t.Fatalf("expected an effect sourced from %s's resolution %s", src, id)
		}
	}
}

func TestDowngradedOrderStillHolds(t *testing.T) {
	rules := DefaultRules()
	rules.HoldDefenseBonus = 1

	defenseOf := func(bOrder *Order) float64 {
		st := testState()
		st.Enclaves["b"].Forces = 1
		st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
		if bOrder != nil {
			st.Orders["b"] = *bOrder
		}
		for _, r := range resolveOrders(t, st, rules, nil) {
			if r.Source == "b" && bOrder != nil && r.Reason != "no forces to commit" {
				t.Fatalf("expected b's attack dropped for lack of forces, got %q", r.Reason)
			}
			if r.Source == "a" {
				return r.Defense
			}
		}
		t.Fatal("no resolution for a")
		return 0
	}

	idle := defenseOf(nil)
	downgraded := defenseOf(&Order{Target: "c", Kind: OrderAttack})
	if idle != 2 || downgraded != 2 {
		t.Fatalf("expected both holding defenders at 2, got idle=%v downgraded=%v", idle, downgraded)
	}
}

func TestTieLeavesEmptyOwnedEnclave(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Enclaves["a"].Forces = 7
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	// Combat never abandons an enclave: only attrition turns an emptied one neutral.
	b := next.Enclave("b")
	if b.Forces != 0 || b.Owner != "p2" {
		t.Fatalf("expected b held by p2 with 0 forces, got %q/%d", b.Owner, b.Forces)
	}
	if _, ok := next.DomainOwners["d1"]; ok {
		t.Fatal("expected d1 to stay contested")
	}

	later := reduce(t, eng, next, AdvanceTurn{})
	if b := later.Enclave("b"); b.Owner != "p2" || b.Forces != 0 {
		t.Fatalf("expected the empty enclave to stay with p2, got %q/%d", b.Owner, b.Forces)
	}

	later = reduce(t, eng, later, SubmitOrders{Player: "p1", Orders: map[EnclaveID]Order{"c": {Target: "b", Kind: OrderAttack}}})
	taken := reduce(t, eng, later, AdvanceTurn{})
	if res := findResolution(t, taken, "c"); res.Conquest == nil || res.Conquest.Previous != "p2" {
		t.Fatalf("expected the empty enclave to fall to any column, got %+v", res)
	}
}
