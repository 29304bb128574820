package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/rand"

	"golang.org/x/exp/constraints"

	"github.com/talgya/stratagem/internal/entropy"
)

// AmountKind tags which arm of Amount is populated.
type AmountKind uint8

const (
	AmountFixed AmountKind = iota
	AmountRange
	AmountSentinel
)

// Sentinel is a symbolic amount that has no numeric value.
type Sentinel string

const (
	// Permanent marks a duration that never runs out.
	Permanent Sentinel = "permanent"
	// Global marks a radius that covers the whole map.
	Global Sentinel = "global"
)

// Amount is a profile number that is either fixed, an inclusive range, or a sentinel.
// JSON forms: 3, [2, 4], "permanent".
type Amount struct {
	Kind AmountKind
	N    int
	Lo   int
	Hi   int
	Tag  Sentinel
}

// Fixed returns a static amount.
func Fixed(n int) Amount { return Amount{Kind: AmountFixed, N: n} }

// Range returns an amount drawn uniformly from [lo, hi].
func Range(lo, hi int) Amount { return Amount{Kind: AmountRange, Lo: lo, Hi: hi} }

// Symbol returns a sentinel amount.
func Symbol(tag Sentinel) Amount { return Amount{Kind: AmountSentinel, Tag: tag} }

// Value is a resolved Amount. When Tag is set, N is meaningless.
type Value struct {
	N   int      `json:"n"`
	Tag Sentinel `json:"tag,omitempty"`
}

// Is reports whether the value resolved to the given sentinel.
func (v Value) Is(tag Sentinel) bool { return v.Tag == tag }

// Resolve picks the concrete value. Ranges draw from rng inclusive of both bounds.
func (a Amount) Resolve(rng *rand.Rand) Value {
	switch a.Kind {
	case AmountFixed:
		return Value{N: a.N}
	case AmountRange:
		return Value{N: entropy.IntInclusive(rng, a.Lo, a.Hi)}
	case AmountSentinel:
		return Value{Tag: a.Tag}
	default:
		panic(fmt.Sprintf("profile: unknown amount kind %d", a.Kind))
	}
}

// Validate rejects inverted or negative ranges and unknown sentinels.
func (a Amount) Validate() error {
	switch a.Kind {
	case AmountFixed:
		if a.N < 0 {
			return fmt.Errorf("negative amount %d", a.N)
		}
	case AmountRange:
		if a.Lo < 0 || a.Hi < a.Lo {
			return fmt.Errorf("invalid range [%d, %d]", a.Lo, a.Hi)
		}
	case AmountSentinel:
		if a.Tag != Permanent && a.Tag != Global {
			return fmt.Errorf("unknown sentinel %q", a.Tag)
		}
	default:
		return fmt.Errorf("unknown amount kind %d", a.Kind)
	}
	return nil
}

func (a Amount) String() string {
	switch a.Kind {
	case AmountRange:
		return fmt.Sprintf("[%d,%d]", a.Lo, a.Hi)
	case AmountSentinel:
		return string(a.Tag)
	default:
		return fmt.Sprintf("%d", a.N)
	}
}

// UnmarshalJSON accepts a number, a two-element array or a sentinel string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty amount")
	}
	switch data[0] {
	case '[':
		var pair []int
		if err := json.Unmarshal(data, &pair); err != nil {
			return fmt.Errorf("amount range: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("amount range needs 2 bounds, got %d", len(pair))
		}
		*a = Range(pair[0], pair[1])
	case '"':
		var tag string
		if err := json.Unmarshal(data, &tag); err != nil {
			return fmt.Errorf("amount sentinel: %w", err)
		}
		*a = Symbol(Sentinel(tag))
	default:
		var n int
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		*a = Fixed(n)
	}
	return a.Validate()
}

// MarshalJSON writes the same forms UnmarshalJSON reads.
func (a Amount) MarshalJSON() ([]byte, error) {
	switch a.Kind {
	case AmountRange:
		return json.Marshal([2]int{a.Lo, a.Hi})
	case AmountSentinel:
		return json.Marshal(string(a.Tag))
	default:
		return json.Marshal(a.N)
	}
}

// Clamp bounds v to [lo, hi].
func Clamp[T constraints.Integer | constraints.Float](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
