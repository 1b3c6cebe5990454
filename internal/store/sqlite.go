// internal/store/sqlite.go
//
// SQLite implementation of game.Recorder.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying the embedded migrations (idempotent, recorded in _migrations).
//   - Inserting finished rounds and listing the most recent ones.
//
// Only finished rounds are archived; the live session is never restored
// from here.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"

	"github.com/firebolt55439/airplay-hangman/assets"
	"github.com/firebolt55439/airplay-hangman/internal/game"
)

// timeLayout has fixed width so finished_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLite archives rounds in a SQLite database.
type SQLite struct{ db *sql.DB }

var _ game.Recorder = (*SQLite)(nil)

// OpenSQLite opens (creating if missing) the database at path and applies
// the embedded migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	migrations, err := assets.Migrations()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// openDB ensures the parent directory exists for relative paths such as
// ./data/hangman.db, then opens with busy timeout and WAL journaling.
func openDB(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	return db, nil
}

// migrate applies every *.sql file in dir in lexical order, each inside its
// own transaction, skipping files already listed in _migrations.
func migrate(db *sql.DB, dir fs.FS) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(dir, "*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := fs.ReadFile(dir, f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// RecordRound inserts r. A record whose ID already exists is ignored.
func (s *SQLite) RecordRound(ctx context.Context, r game.RoundRecord) error {
	var level sql.NullInt64
	if r.Level != nil {
		level = sql.NullInt64{Int64: int64(*r.Level), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT OR IGNORE INTO rounds
            (id, game_index, mode, word, result, level, score_delta, level_delta, guesses, incorrect, finished_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.GameIndex, r.Mode.String(), r.Word, r.Result.String(), level,
		r.ScoreDelta, r.LevelDelta, r.Guesses, r.Incorrect,
		r.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert round %s: %w", r.ID, err)
	}
	return nil
}

// RecentRounds returns up to limit rounds, newest first. Default limit is 20.
func (s *SQLite) RecentRounds(ctx context.Context, limit int) ([]game.RoundRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, game_index, mode, word, result, level, score_delta, level_delta, guesses, incorrect, finished_at
        FROM rounds
        ORDER BY finished_at DESC, game_index DESC
        LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]game.RoundRecord, 0, limit)
	for rows.Next() {
		var (
			r            game.RoundRecord
			mode, result string
			level        sql.NullInt64
			finishedAt   string
		)
		if err := rows.Scan(&r.ID, &r.GameIndex, &mode, &r.Word, &result, &level,
			&r.ScoreDelta, &r.LevelDelta, &r.Guesses, &r.Incorrect, &finishedAt); err != nil {
			return nil, err
		}
		if r.Mode, err = game.ParseMode(mode); err != nil {
			return nil, err
		}
		r.Result = parseResult(result)
		if level.Valid {
			lvl := int(level.Int64)
			r.Level = &lvl
		}
		if r.FinishedAt, err = time.Parse(timeLayout, finishedAt); err != nil {
			return nil, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func parseResult(s string) game.Result {
	switch strings.ToLower(s) {
	case "won":
		return game.ResultWon
	case "lost":
		return game.ResultLost
	default:
		return game.ResultOngoing
	}
}
