package engine

import (
	"fmt"
	"math/rand"

	"github.com/talgya/stratagem/internal/profile"
)

// NewGambit returns a fresh instance for a player at game setup.
func NewGambit(p *profile.Gambit) Gambit {
	state := GambitLocked
	if p.Unlocked {
		state = GambitAvailable
	}
	return Gambit{Key: p.Key, State: state, RemainingUses: p.Uses}
}

// SpendGambit spends one use. Only an available gambit with uses left can be
// activated; spending the last use depletes it, otherwise it turns active for a freshly
// drawn window.
func SpendGambit(g Gambit, p *profile.Gambit, rng *rand.Rand) (Gambit, error) {
	switch g.State {
	case GambitAvailable:
	case GambitLocked, GambitActive, GambitDepleted:
		return g, fmt.Errorf("activate %q (%s): %w", g.Key, g.State, ErrGambitNotAvailable)
	default:
		return g, fmt.Errorf("activate %q: unknown state %d: %w", g.Key, g.State, ErrGambitNotAvailable)
	}
	if g.RemainingUses <= 0 {
		return g, fmt.Errorf("activate %q: %w", g.Key, ErrGambitExhausted)
	}

	next := g
	next.RemainingUses--
	if next.RemainingUses == 0 {
		next.State = GambitDepleted
		next.ActiveTurns, next.Permanent = 0, false
		return next, nil
	}
	next.State = GambitActive
	window := p.ActiveDuration.Resolve(rng)
	if window.Is(profile.Permanent) {
		next.ActiveTurns, next.Permanent = 0, true
	} else {
		next.ActiveTurns, next.Permanent = window.N, false
	}
	return next, nil
}

// OpenGambit moves a locked gambit to available.
func OpenGambit(g Gambit) (Gambit, error) {
	if g.State != GambitLocked {
		return g, fmt.Errorf("unlock %q (%s): %w", g.Key, g.State, ErrGambitNotLocked)
	}
	next := g
	next.State = GambitAvailable
	return next, nil
}

// TickGambit counts down an active window. When it closes the gambit returns to
// available, or depletes if no uses remain. Other states pass through.
func TickGambit(g Gambit) Gambit {
	switch g.State {
	case GambitActive:
		if g.Permanent {
			return g
		}
		next := g
		next.ActiveTurns--
		if next.ActiveTurns > 0 {
			return next
		}
		next.ActiveTurns = 0
		if next.RemainingUses > 0 {
			next.State = GambitAvailable
		} else {
			next.State = GambitDepleted
		}
		return next
	case GambitLocked, GambitAvailable, GambitDepleted:
		return g
	default:
		panic(fmt.Sprintf("engine: unknown gambit state %d", g.State))
	}
}
