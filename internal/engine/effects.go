package engine

import (
	"slices"

	"github.com/talgya/stratagem/internal/profile"
	"github.com/talgya/stratagem/internal/world"
)

// Enqueue returns a new queue with items appended in order. The input queue is never
// written to, so older snapshots keep their view.
func Enqueue(queue []EffectItem, items ...EffectItem) []EffectItem {
	if len(items) == 0 {
		return queue
	}
	out := make([]EffectItem, 0, len(queue)+len(items))
	out = append(out, queue...)
	return append(out, items...)
}

// Acknowledge removes exactly the identified items. Unknown ids are ignored. When
// nothing matches, st itself is returned so callers can detect "no change" by identity.
func Acknowledge(st *State, ids []string) *State {
	if len(ids) == 0 || len(st.Effects) == 0 {
		return st
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	if !slices.ContainsFunc(st.Effects, func(it EffectItem) bool { return drop[it.ID] }) {
		return st
	}

	kept := make([]EffectItem, 0, len(st.Effects))
	for _, it := range st.Effects {
		if !drop[it.ID] {
			kept = append(kept, it)
		}
	}
	next := *st
	next.Effects = kept
	return &next
}

// cueEffect builds an effect item for a cue played at the given positions. Audio is
// positional only when there is exactly one position.
func cueEffect(id string, cue profile.Cue, positions ...world.Vec3) (EffectItem, bool) {
	if cue.Empty() {
		return EffectItem{}, false
	}
	item := EffectItem{ID: id}
	if cue.Visual != "" {
		for _, p := range positions {
			item.Visuals = append(item.Visuals, Visual{Key: cue.Visual, Position: p})
		}
	}
	if cue.Audio != "" {
		item.Audio = &Audio{Key: cue.Audio, Channel: cue.Channel}
		if len(positions) == 1 {
			p := positions[0]
			item.Audio.Position = &p
		}
	}
	if len(item.Visuals) == 0 && item.Audio == nil {
		return EffectItem{}, false
	}
	return item, true
}

// effectSeq mints effect ids for one reduction.
type effectSeq struct {
	turn  int
	nonce uint64
	n     int
}

func (s *effectSeq) next() string {
	s.n++
	return effectID(s.turn, s.nonce, s.n)
}
