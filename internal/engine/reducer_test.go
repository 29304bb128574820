package engine

import (
	"errors"
	"testing"

	"github.com/talgya/stratagem/internal/world"
)

type bogusCommand struct{}

func (bogusCommand) Name() string { return "BOGUS" }

func TestAdvanceTurnCopyOnWrite(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	if next == st {
		t.Fatal("expected a new snapshot")
	}
	if next.Enclaves["n"] != st.Enclaves["n"] {
		t.Fatal("expected untouched enclave shared by pointer")
	}
	if next.Enclaves["a"] == st.Enclaves["a"] {
		t.Fatal("expected touched enclave cloned")
	}
	if st.Enclaves["b"].Owner != "p2" || st.Enclaves["a"].Forces != 10 {
		t.Fatal("expected previous snapshot untouched")
	}
	if st.Turn != 0 || st.Orders == nil || len(st.Effects) != 0 {
		t.Fatal("expected previous snapshot fields untouched")
	}
	if next.Routes[0] != st.Routes[0] {
		t.Fatal("expected routes shared when none changed")
	}
}

func TestAdvanceTurnWithoutOrders(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	next := reduce(t, eng, st, AdvanceTurn{})

	if next.Turn != 1 {
		t.Fatalf("expected turn 1, got %d", next.Turn)
	}
	for id, e := range st.Enclaves {
		if next.Enclaves[id] != e {
			t.Fatalf("expected %s shared on a quiet turn", id)
		}
	}
	if len(next.LastTurn) != 3 {
		t.Fatalf("expected 3 hold resolutions, got %d", len(next.LastTurn))
	}
}

func TestSubmitOrders(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()

	next := reduce(t, eng, st, SubmitOrders{Player: "p1", Orders: map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}})
	next = reduce(t, eng, next, SubmitOrders{Player: "p2", Orders: map[EnclaveID]Order{"b": {Target: "c", Kind: OrderAttack}}})
	next = reduce(t, eng, next, SubmitOrders{Player: "p1", Orders: map[EnclaveID]Order{"a": {Target: "n", Kind: OrderAttack}}})

	if len(next.Orders) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(next.Orders))
	}
	if next.Orders["a"].Target != "n" {
		t.Fatal("expected a later order to replace an earlier one")
	}
	if st.Orders != nil {
		t.Fatal("expected previous snapshot without orders")
	}

	if same := reduce(t, eng, st, SubmitOrders{Player: "p1"}); same != st {
		t.Fatal("expected empty submission to be a no-op")
	}
}

func TestSubmitOrdersRejected(t *testing.T) {
	tests := []struct {
		name   string
		player PlayerID
		orders map[EnclaveID]Order
	}{
		{name: "unknown source", player: "p1", orders: map[EnclaveID]Order{"zz": {Target: "a", Kind: OrderAttack}}},
		{name: "neutral source", player: "p1", orders: map[EnclaveID]Order{"n": {Target: "a", Kind: OrderAttack}}},
		{name: "someone else's enclave", player: "p1", orders: map[EnclaveID]Order{"b": {Target: "a", Kind: OrderAttack}}},
		{name: "bad kind", player: "p1", orders: map[EnclaveID]Order{"a": {Target: "b", Kind: OrderKind(9)}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			eng := testEngine(t, nil)
			st := testState()
			next, err := eng.Reduce(st, SubmitOrders{Player: tt.player, Orders: tt.orders})
			if !errors.Is(err, ErrInvalidOrder) {
				t.Fatalf("expected invalid order, got %v", err)
			}
			if next != st || st.Orders != nil {
				t.Fatal("expected the snapshot unchanged")
			}
		})
	}
}

func TestClearNotice(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	if same := reduce(t, eng, st, ClearNotice{}); same != st {
		t.Fatal("expected clearing an empty notice to be a no-op")
	}

	withNotice := reduce(t, eng, st, TriggerDisaster{Profile: "eclipse"})
	cleared := reduce(t, eng, withNotice, ClearNotice{})
	if cleared.Notice != nil {
		t.Fatal("expected notice cleared")
	}
	if withNotice.Notice == nil {
		t.Fatal("expected previous snapshot to keep its notice")
	}
	if len(cleared.Events) != 1 {
		t.Fatal("expected the event to outlive its notice")
	}
}

func TestUnknownCommandRejected(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	next, err := eng.Reduce(st, bogusCommand{})
	if !errors.Is(err, ErrUnknownCommand) || !IsRejected(err) {
		t.Fatalf("expected unknown command rejection, got %v", err)
	}
	if next != st {
		t.Fatal("expected the snapshot unchanged")
	}
}

func TestTurnOrderAppliesEventsAfterCombat(t *testing.T) {
	eng := testEngine(t, nil)
	st := testState()
	// An impact phase with attrition on b. The attack resolves first against 6
	// defenders, then attrition hits the new occupiers.
	st.Events = []*ActiveEvent{{
		ID: "tremor-1", Profile: "tremor", Phase: PhaseImpact, Remaining: 2, Duration: 2,
		Enclaves: []EnclaveID{"b"},
	}}
	st.Events[0].Rules.Attrition = 2
	st.Enclaves["b"].Events = []string{"tremor-1"}
	st.Orders = map[EnclaveID]Order{"a": {Target: "b", Kind: OrderAttack}}
	next := reduce(t, eng, st, AdvanceTurn{})

	res := findResolution(t, next, "a")
	if res.Conquest == nil || res.Moved != 3 {
		t.Fatalf("expected conquest with 3 occupiers, got %+v", res)
	}
	if b := next.Enclave("b"); b.Forces != 1 || b.Owner != "p1" {
		t.Fatalf("expected attrition to leave 1 occupier, got %q/%d", b.Owner, b.Forces)
	}
}

func TestNewGame(t *testing.T) {
	layout := world.Build(world.SmallTestConfig())
	profiles := testProfiles(t)
	players := []PlayerID{"p1", "p2", "p3"}
	st, err := NewGame(layout, players, profiles, DefaultSetupConfig())
	if err != nil {
		t.Fatalf("new game: %v", err)
	}

	if len(st.Enclaves) != len(layout.Enclaves) {
		t.Fatalf("expected %d enclaves, got %d", len(layout.Enclaves), len(st.Enclaves))
	}
	owned := map[PlayerID]int{}
	for _, e := range st.Enclaves {
		if e.Owner != Neutral {
			owned[e.Owner]++
			if e.Forces != DefaultSetupConfig().StartForces {
				t.Fatalf("expected %d starting forces, got %d", DefaultSetupConfig().StartForces, e.Forces)
			}
		}
	}
	for _, p := range players {
		if owned[p] != 1 {
			t.Fatalf("expected %s to start with one enclave, got %d", p, owned[p])
		}
		if len(st.Gambits[p]) != len(profiles.Gambits) {
			t.Fatalf("expected %s to hold every gambit", p)
		}
		if st.Gambit(p, "overwhelm").State != GambitLocked {
			t.Fatal("expected overwhelm to start locked")
		}
	}
	for _, r := range st.Routes {
		if st.Enclave(r.A) == nil || st.Enclave(r.B) == nil {
			t.Fatalf("route %s references a missing enclave", r.ID)
		}
	}

	eng := testEngine(t, profiles)
	for i := 0; i < 5; i++ {
		st = reduce(t, eng, st, AdvanceTurn{})
	}
	if st.Turn != 5 {
		t.Fatalf("expected turn 5, got %d", st.Turn)
	}

	if _, err := NewGame(layout, make([]PlayerID, len(layout.Enclaves)+1), profiles, DefaultSetupConfig()); err == nil {
		t.Fatal("expected an error with more players than enclaves")
	}
}
