package engine

// Command is an inbound request to the reducer.
type Command interface {
	Name() string
}

// SubmitOrders records orders for the coming turn, keyed by source enclave. Orders
// replace earlier ones for the same enclave. When Player is set every source must
// belong to that player.
type SubmitOrders struct {
	Player PlayerID
	Orders map[EnclaveID]Order
}

// AdvanceTurn resolves the pending turn.
type AdvanceTurn struct{}

// TriggerDisaster starts the disaster with the given profile key.
type TriggerDisaster struct {
	Profile string
}

// ActivateGambit spends one use of a player's gambit.
type ActivateGambit struct {
	Player PlayerID
	Key    string
}

// UnlockGambit makes a locked gambit available. Issued by the setup layer.
type UnlockGambit struct {
	Player PlayerID
	Key    string
}

// AckEffects removes effect items the renderer has finished playing.
type AckEffects struct {
	IDs []string
}

// ClearNotice dismisses the latest disaster notice.
type ClearNotice struct{}

func (SubmitOrders) Name() string    { return "SUBMIT_ORDERS" }
func (AdvanceTurn) Name() string     { return "ADVANCE_TURN" }
func (TriggerDisaster) Name() string { return "TRIGGER_DISASTER" }
func (ActivateGambit) Name() string  { return "ACTIVATE_GAMBIT" }
func (UnlockGambit) Name() string    { return "UNLOCK_GAMBIT" }
func (AckEffects) Name() string      { return "ACK_EFFECTS" }
func (ClearNotice) Name() string     { return "CLEAR_NOTICE" }
