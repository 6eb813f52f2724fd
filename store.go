package main

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"osutimeline/dotosu"
)

const schema = `
CREATE TABLE IF NOT EXISTS beatmaps (
	hash           TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	format_version INTEGER NOT NULL,
	lead_in        INTEGER NOT NULL,
	decoded_at     INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	hash        TEXT NOT NULL REFERENCES beatmaps(hash) ON DELETE CASCADE,
	idx         INTEGER NOT NULL,
	kind        INTEGER NOT NULL,
	start_ms    INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (hash, idx)
);
CREATE TABLE IF NOT EXISTS failures (
	path      TEXT NOT NULL,
	reason    TEXT NOT NULL,
	failed_at INTEGER NOT NULL
);`

// Store caches decoded timelines in sqlite, keyed by the hash of the file
// contents, and keeps a ledger of files that failed to decode.
type Store struct {
	db *sql.DB
}

type Failure struct {
	Path     string
	Reason   string
	FailedAt time.Time
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open cache %s: %w", path, err)
	}
	// sqlite allows one writer; decode workers share this connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init cache %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// ContentKey is the cache key of a beatmap file's bytes.
func ContentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Load returns the cached beatmap for key. ok is false on a miss.
func (s *Store) Load(ctx context.Context, key string) (b *dotosu.Beatmap, ok bool, err error) {
	var formatVersion, leadIn int
	err = s.db.QueryRowContext(ctx,
		`SELECT format_version, lead_in FROM beatmaps WHERE hash = ?`, key,
	).Scan(&formatVersion, &leadIn)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, start_ms, duration_ms FROM events WHERE hash = ? ORDER BY idx`, key)
	if err != nil {
		return nil, false, err
	}
	defer rows.Close()

	var events []dotosu.HitEvent
	for rows.Next() {
		var ev dotosu.HitEvent
		if err := rows.Scan(&ev.Kind, &ev.StartTimeMs, &ev.DurationMs); err != nil {
			return nil, false, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}
	return dotosu.NewBeatmap(formatVersion, leadIn, events), true, nil
}

// Save replaces the cached timeline for key.
func (s *Store) Save(ctx context.Context, key, path string, b *dotosu.Beatmap) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM events WHERE hash = ?`, key); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO beatmaps (hash, path, format_version, lead_in, decoded_at) VALUES (?, ?, ?, ?, ?)`,
		key, path, b.FormatVersion(), b.LeadIn(), time.Now().Unix(),
	); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO events (hash, idx, kind, start_ms, duration_ms) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, ev := range b.Events() {
		if _, err := stmt.ExecContext(ctx, key, i, int(ev.Kind), ev.StartTimeMs, ev.DurationMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) RecordFailure(ctx context.Context, path, reason string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO failures (path, reason, failed_at) VALUES (?, ?, ?)`,
		path, reason, time.Now().Unix())
	return err
}

func (s *Store) Failures(ctx context.Context) ([]Failure, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path, reason, failed_at FROM failures ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Failure
	for rows.Next() {
		var f Failure
		var at int64
		if err := rows.Scan(&f.Path, &f.Reason, &at); err != nil {
			return nil, err
		}
		f.FailedAt = time.Unix(at, 0)
		out = append(out, f)
	}
	return out, rows.Err()
}
