// Package profile holds the static disaster and gambit tables the engine reads by key.
// Tables are loaded once, validated, and never mutated afterwards.
package profile

// TargetRule selects where a disaster lands.
type TargetRule string

const (
	TargetAnyCell         TargetRule = "any-cell"          // a random land cell; hits enclaves within radius
	TargetAnyEnclave      TargetRule = "any-enclave"       // a random enclave
	TargetEnclaveInDomain TargetRule = "enclave-in-domain" // a random domain, then a random enclave in it
	TargetSeaRoute        TargetRule = "sea-route"         // a random intact sea route; hits both ends
)

// Cue names the visual and audio effect a phase or gambit plays.
type Cue struct {
	Visual  string `json:"visual,omitempty"`
	Audio   string `json:"audio,omitempty"`
	Channel string `json:"channel,omitempty"`
}

// Empty reports whether the cue plays nothing.
func (c Cue) Empty() bool { return c.Visual == "" && c.Audio == "" }

// Rules are the game-mechanical modifiers a disaster phase applies to affected enclaves.
type Rules struct {
	DefenseModifier float64 `json:"defense_modifier,omitempty"` // added to the defender's strength multiplier
	Attrition       int     `json:"attrition,omitempty"`        // forces lost per turn while the phase lasts
	SeverRoutes     *Amount `json:"sever_routes,omitempty"`     // turns adjacent routes stay disabled, applied on phase entry
	DestroyRoutes   bool    `json:"destroy_routes,omitempty"`   // destroys adjacent routes on phase entry
	BlockAssist     bool    `json:"block_assist,omitempty"`     // assist orders into affected enclaves fall back to hold
}

// Phase is one stage of a disaster.
type Phase struct {
	Duration Amount `json:"duration"`
	Rules    Rules  `json:"rules"`
	Cue      Cue    `json:"cue"`
}

// Disaster describes an environmental event.
type Disaster struct {
	Key         string     `json:"key"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Icon        string     `json:"icon"`
	Target      TargetRule `json:"target"`
	Radius      Amount     `json:"radius"`
	Alert       *Phase     `json:"alert"`
	Impact      *Phase     `json:"impact"`
	Aftermath   *Phase     `json:"aftermath"`
}

// GambitRules are the modifiers an active gambit grants its owner.
type GambitRules struct {
	AttackBonus  float64 `json:"attack_bonus,omitempty"`
	DefenseBonus float64 `json:"defense_bonus,omitempty"`
	AssistBonus  float64 `json:"assist_bonus,omitempty"`
	Reinforce    int     `json:"reinforce,omitempty"` // forces added to every owned enclave on activation
}

// Gambit describes a player special ability.
type Gambit struct {
	Key            string      `json:"key"`
	Name           string      `json:"name"`
	Description    string      `json:"description"`
	Icon           string      `json:"icon"`
	Uses           int         `json:"uses"`
	ActiveDuration Amount      `json:"active_duration"`
	Unlocked       bool        `json:"unlocked"`
	Rules          GambitRules `json:"rules"`
	Cue            Cue         `json:"cue"`
}

// Set is the read-only profile registry handed to the engine.
type Set struct {
	Disasters map[string]*Disaster
	Gambits   map[string]*Gambit
}

// Disaster returns the profile for key, or a fatal ConfigError when it is missing.
func (s *Set) Disaster(key string) (*Disaster, error) {
	if s != nil {
		if d, ok := s.Disasters[key]; ok {
			return d, nil
		}
	}
	return nil, &ConfigError{Key: key, Reason: "no disaster profile"}
}

// Gambit returns the profile for key, or a fatal ConfigError when it is missing.
func (s *Set) Gambit(key string) (*Gambit, error) {
	if s != nil {
		if g, ok := s.Gambits[key]; ok {
			return g, nil
		}
	}
	return nil, &ConfigError{Key: key, Reason: "no gambit profile"}
}
