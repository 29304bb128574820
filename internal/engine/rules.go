package engine

import "github.com/talgya/stratagem/internal/profile"

// Rules holds the tunable combat and effect parameters.
type Rules struct {
	Garrison         int         // forces an attacker leaves at home
	AssistFraction   float64     // share of source forces an assist sends
	HoldDefenseBonus float64     // added to the defender's multiplier when it holds
	MaxMultiplier    float64     // cap on any strength multiplier
	ConquestCue      profile.Cue // played at a conquered enclave
	RepelCue         profile.Cue // played at an enclave that beat off an attack
	AssistCue        profile.Cue // played at an assisted enclave
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		Garrison:         1,
		AssistFraction:   0.5,
		HoldDefenseBonus: 0,
		MaxMultiplier:    4,
		ConquestCue:      profile.Cue{Visual: "conquest", Audio: "conquest", Channel: "sfx"},
		RepelCue:         profile.Cue{Visual: "clash", Audio: "clash", Channel: "sfx"},
		AssistCue:        profile.Cue{Visual: "reinforce"},
	}
}
