package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection holding the journal.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a journal database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entries (
		id TEXT PRIMARY KEY,
		turn INTEGER NOT NULL,
		command TEXT NOT NULL,
		conquests INTEGER NOT NULL,
		effects INTEGER NOT NULL,
		events INTEGER NOT NULL,
		log_json TEXT NOT NULL,
		recorded_at INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS game_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_turn ON entries(turn);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Record appends entries in a single transaction.
func (db *DB) Record(ctx context.Context, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range entries {
		r, err := toRow(e)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx, `INSERT INTO entries
			(id, turn, command, conquests, effects, events, log_json, recorded_at)
			VALUES (:id, :turn, :command, :conquests, :effects, :events, :log_json, :recorded_at)`, r)
		if err != nil {
			return fmt.Errorf("insert entry %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Debug("journal recorded", "entries", len(entries), "last_turn", entries[len(entries)-1].Turn)
	return nil
}

// Recent returns the most recent entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var rows []row
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT id, turn, command, conquests, effects, events, log_json, recorded_at FROM entries ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		e, err := r.entry()
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// TurnConquests returns the number of conquests journaled for each turn.
func (db *DB) TurnConquests(ctx context.Context) (map[int]int, error) {
	var rows []struct {
		Turn      int `db:"turn"`
		Conquests int `db:"conquests"`
	}
	err := db.conn.SelectContext(ctx, &rows,
		"SELECT turn, SUM(conquests) AS conquests FROM entries GROUP BY turn")
	if err != nil {
		return nil, err
	}
	out := make(map[int]int, len(rows))
	for _, r := range rows {
		out[r.Turn] = r.Conquests
	}
	return out, nil
}

// SaveMeta stores a key-value pair describing the game being journaled.
func (db *DB) SaveMeta(ctx context.Context, key, value string) error {
	_, err := db.conn.ExecContext(ctx,
		"INSERT OR REPLACE INTO game_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value. A missing key returns "" and no error.
func (db *DB) GetMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.conn.GetContext(ctx, &value, "SELECT value FROM game_meta WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}
