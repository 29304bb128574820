// Package journal keeps an append-only SQLite log of resolved commands for later
// analysis. It records outcomes only; nothing is ever restored from it.
package journal

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/talgya/stratagem/internal/engine"
)

// Entry is one journaled reduction.
type Entry struct {
	ID        ulid.ULID
	Turn      int
	Command   string
	Conquests int
	Effects   int // effect items waiting in the queue afterwards
	Events    int // active events afterwards
	Log       []engine.Resolution
	Recorded  time.Time
}

// FromState summarises the snapshot a command produced. Resolutions are only
// attached for ADVANCE_TURN, where LastTurn belongs to this reduction.
func FromState(cmd engine.Command, st *engine.State) Entry {
	e := Entry{
		ID:      ulid.Make(),
		Turn:    st.Turn,
		Command: cmd.Name(),
		Effects: len(st.Effects),
		Events:  len(st.Events),
	}
	if _, ok := cmd.(engine.AdvanceTurn); ok {
		e.Turn = st.Turn - 1
		e.Log = st.LastTurn
		for _, r := range st.LastTurn {
			if r.Conquest != nil {
				e.Conquests++
			}
		}
	}
	e.Recorded = ulid.Time(e.ID.Time())
	return e
}

// row is the stored form of an Entry.
type row struct {
	ID         string `db:"id"`
	Turn       int    `db:"turn"`
	Command    string `db:"command"`
	Conquests  int    `db:"conquests"`
	Effects    int    `db:"effects"`
	Events     int    `db:"events"`
	LogJSON    string `db:"log_json"`
	RecordedAt int64  `db:"recorded_at"`
}

func toRow(e Entry) (row, error) {
	logJSON := "[]"
	if len(e.Log) > 0 {
		b, err := json.Marshal(e.Log)
		if err != nil {
			return row{}, fmt.Errorf("marshal resolutions: %w", err)
		}
		logJSON = string(b)
	}
	return row{
		ID:         e.ID.String(),
		Turn:       e.Turn,
		Command:    e.Command,
		Conquests:  e.Conquests,
		Effects:    e.Effects,
		Events:     e.Events,
		LogJSON:    logJSON,
		RecordedAt: e.Recorded.UnixMilli(),
	}, nil
}

func (r row) entry() (Entry, error) {
	id, err := ulid.Parse(r.ID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse id %q: %w", r.ID, err)
	}
	e := Entry{
		ID:        id,
		Turn:      r.Turn,
		Command:   r.Command,
		Conquests: r.Conquests,
		Effects:   r.Effects,
		Events:    r.Events,
		Recorded:  time.UnixMilli(r.RecordedAt),
	}
	if err := json.Unmarshal([]byte(r.LogJSON), &e.Log); err != nil {
		return Entry{}, fmt.Errorf("unmarshal resolutions for %s: %w", r.ID, err)
	}
	return e, nil
}
