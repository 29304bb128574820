package profile

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
)

//go:embed default.json
var defaultProfiles []byte

type fileFormat struct {
	Disasters []*Disaster `json:"disasters"`
	Gambits   []*Gambit   `json:"gambits"`
}

// Load decodes and validates a profile table.
func Load(r io.Reader) (*Set, error) {
	var f fileFormat
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, &ConfigError{Key: "*", Reason: "decode", Err: err}
	}

	s := &Set{
		Disasters: make(map[string]*Disaster, len(f.Disasters)),
		Gambits:   make(map[string]*Gambit, len(f.Gambits)),
	}
	for _, d := range f.Disasters {
		if d == nil {
			continue
		}
		if _, dup := s.Disasters[d.Key]; dup {
			return nil, &ConfigError{Key: d.Key, Reason: "duplicate disaster"}
		}
		s.Disasters[d.Key] = d
	}
	for _, g := range f.Gambits {
		if g == nil {
			continue
		}
		if _, dup := s.Gambits[g.Key]; dup {
			return nil, &ConfigError{Key: g.Key, Reason: "duplicate gambit"}
		}
		s.Gambits[g.Key] = g
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns the built-in profile table.
func Default() (*Set, error) {
	return Load(bytes.NewReader(defaultProfiles))
}

// Validate checks every profile is structurally complete.
func (s *Set) Validate() error {
	for key, d := range s.Disasters {
		if err := validateDisaster(key, d); err != nil {
			return err
		}
	}
	for key, g := range s.Gambits {
		if key == "" || g.Key != key {
			return &ConfigError{Key: key, Reason: "gambit key mismatch"}
		}
		if g.Uses < 1 {
			return &ConfigError{Key: key, Reason: fmt.Sprintf("gambit needs at least one use, got %d", g.Uses)}
		}
		if err := g.ActiveDuration.Validate(); err != nil {
			return &ConfigError{Key: key, Reason: "active duration", Err: err}
		}
		if g.ActiveDuration.Kind == AmountSentinel && g.ActiveDuration.Tag != Permanent {
			return &ConfigError{Key: key, Reason: "active duration only accepts the permanent sentinel"}
		}
	}
	return nil
}

func validateDisaster(key string, d *Disaster) error {
	if key == "" || d.Key != key {
		return &ConfigError{Key: key, Reason: "disaster key mismatch"}
	}
	switch d.Target {
	case TargetAnyCell, TargetAnyEnclave, TargetEnclaveInDomain, TargetSeaRoute:
	default:
		return &ConfigError{Key: key, Reason: fmt.Sprintf("unknown target rule %q", d.Target)}
	}
	if err := d.Radius.Validate(); err != nil {
		return &ConfigError{Key: key, Reason: "radius", Err: err}
	}
	if d.Radius.Kind == AmountSentinel && d.Radius.Tag != Global {
		return &ConfigError{Key: key, Reason: "radius only accepts the global sentinel"}
	}
	phases := []struct {
		name  string
		phase *Phase
	}{
		{"alert", d.Alert},
		{"impact", d.Impact},
		{"aftermath", d.Aftermath},
	}
	for _, p := range phases {
		if p.phase == nil {
			return &ConfigError{Key: key, Reason: "missing " + p.name + " phase"}
		}
		if err := p.phase.Duration.Validate(); err != nil {
			return &ConfigError{Key: key, Reason: p.name + " duration", Err: err}
		}
		dur := p.phase.Duration
		if dur.Kind == AmountSentinel && dur.Tag != Permanent {
			return &ConfigError{Key: key, Reason: p.name + " duration only accepts the permanent sentinel"}
		}
		if (dur.Kind == AmountFixed && dur.N == 0) || (dur.Kind == AmountRange && dur.Lo == 0) {
			return &ConfigError{Key: key, Reason: p.name + " duration must be at least one turn"}
		}
		if sever := p.phase.Rules.SeverRoutes; sever != nil {
			if err := sever.Validate(); err != nil {
				return &ConfigError{Key: key, Reason: p.name + " sever routes", Err: err}
			}
		}
	}
	return nil
}
