package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"kanban-cli/internal/model"

	_ "modernc.org/sqlite"
)

// SQLite keeps the board and its history in a local SQLite database.
type SQLite struct {
	db *sql.DB
}

func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL lets the TUI and a CLI invocation read while the other writes;
	// busy_timeout avoids "database is locked" on overlapping saves.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	s := &SQLite{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS board (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS history (
			seq INTEGER PRIMARY KEY,
			change TEXT NOT NULL,
			details TEXT NOT NULL,
			snapshot_json TEXT NOT NULL
		);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) LoadBoard(ctx context.Context) (model.Board, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT json FROM board WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, false, nil
	}
	if err != nil {
		return model.Board{}, false, err
	}
	b, err := decodeBoard([]byte(raw))
	if err != nil {
		return model.Board{}, false, err
	}
	return b, true, nil
}

func (s *SQLite) SaveBoard(ctx context.Context, b model.Board) error {
	raw, err := encodeBoard(b, false)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO board(id, json, updated_at_unixms) VALUES(1, ?, ?)`,
		string(raw), time.Now().UnixMilli(),
	)
	return err
}

func (s *SQLite) LoadHistory(ctx context.Context) ([]model.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT change, details, snapshot_json FROM history ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.HistoryEntry{}
	for rows.Next() {
		var change, details, snap string
		if err := rows.Scan(&change, &details, &snap); err != nil {
			return nil, err
		}
		kind, err := model.ParseChangeKind(change)
		if err != nil {
			return nil, err
		}
		b, err := decodeBoard([]byte(snap))
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", len(out), err)
		}
		out = append(out, model.HistoryEntry{Change: kind, Snapshot: b, Details: details})
	}
	return out, rows.Err()
}

// SaveHistory replaces the stored history with entries.
func (s *SQLite) SaveHistory(ctx context.Context, entries []model.HistoryEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO history(seq, change, details, snapshot_json) VALUES(?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range entries {
		snap, err := encodeBoard(e.Snapshot, false)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, e.Change.String(), e.Details, string(snap)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
