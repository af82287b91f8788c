// Package store persists editing sessions, with their operation and version
// logs, in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mcncl/jsonsync/internal/errors"
	"github.com/mcncl/jsonsync/internal/models"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// Snapshot is everything stored for one named session.
type Snapshot struct {
	Name      string
	JSONText  string
	History   []models.HistoryEntry
	Versions  []models.Version
	UpdatedAt time.Time
}

// Store wraps the SQL database connection.
type Store struct {
	db     *sql.DB
	logger zerolog.Logger
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string, logger zerolog.Logger) (*Store, error) {
	logger = logger.With().Str("component", "SessionStore").Logger()
	logger.Debug().Str("db_path", path).Msg("Opening session database")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Error().Err(err).Str("directory", dir).Msg("Failed to create database directory")
		return nil, errors.NewStorageError(fmt.Sprintf("failed to create database directory %s", dir), err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logger.Error().Err(err).Str("db_path", path).Msg("Failed to open database")
		return nil, errors.NewStorageError(fmt.Sprintf("failed to open database %s", path), err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.InitSchema(context.Background()); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// InitSchema creates the tables if they do not exist yet.
func (s *Store) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		name TEXT PRIMARY KEY,
		json_text TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS history_entries (
		session TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		action TEXT NOT NULL,
		snapshot TEXT NOT NULL,
		preview TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session, position)
	);
	CREATE TABLE IF NOT EXISTS versions (
		session TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (session, position)
	);
	`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		s.logger.Error().Err(err).Msg("Failed to initialize schema")
		return errors.NewStorageError("failed to initialize schema", err)
	}
	return nil
}

// Save replaces the stored state of snap.Name with snap.
func (s *Store) Save(ctx context.Context, snap Snapshot) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteSession(ctx, tx, snap.Name); err != nil {
		return err
	}

	updatedAt := snap.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}
	if _, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (name, json_text, updated_at) VALUES (?, ?, ?)`,
		snap.Name, snap.JSONText, updatedAt.UnixNano()); err != nil {
		return errors.NewStorageError("failed to save session "+snap.Name, err)
	}

	for i, entry := range snap.History {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO history_entries (session, position, id, action, snapshot, preview, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			snap.Name, i, entry.ID, entry.Action, entry.Snapshot, entry.Preview, entry.Timestamp.UnixNano()); err != nil {
			return errors.NewStorageError("failed to save history entry "+entry.ID, err)
		}
	}

	for i, version := range snap.Versions {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO versions (session, position, id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			snap.Name, i, version.ID, version.Content, version.Timestamp.UnixNano()); err != nil {
			return errors.NewStorageError("failed to save version "+version.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.NewStorageError("failed to commit session "+snap.Name, err)
	}

	s.logger.Debug().
		Str("session", snap.Name).
		Int("history", len(snap.History)).
		Int("versions", len(snap.Versions)).
		Msg("Saved session")
	return nil
}

// Load returns the stored state of the named session. found is false when
// nothing was saved under that name.
func (s *Store) Load(ctx context.Context, name string) (snap Snapshot, found bool, err error) {
	var updatedAt int64
	err = s.db.QueryRowContext(ctx,
		`SELECT json_text, updated_at FROM sessions WHERE name = ?`, name).
		Scan(&snap.JSONText, &updatedAt)
	if err == sql.ErrNoRows {
		return Snapshot{Name: name}, false, nil
	}
	if err != nil {
		s.logger.Error().Err(err).Str("session", name).Msg("Failed to load session")
		return Snapshot{}, false, errors.NewStorageError("failed to load session "+name, err)
	}
	snap.Name = name
	snap.UpdatedAt = time.Unix(0, updatedAt)

	if snap.History, err = s.loadHistory(ctx, name); err != nil {
		return Snapshot{}, false, err
	}
	if snap.Versions, err = s.loadVersions(ctx, name); err != nil {
		return Snapshot{}, false, err
	}
	return snap, true, nil
}

// List returns the names of all stored sessions, most recently saved first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM sessions ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, errors.NewStorageError("failed to list sessions", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewStorageError("failed to read session name", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to list sessions", err)
	}
	return names, nil
}

// Delete removes the named session. Deleting an unknown session is not an error.
func (s *Store) Delete(ctx context.Context, name string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewStorageError("failed to begin transaction", err)
	}
	if err = deleteSession(ctx, tx, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return errors.NewStorageError("failed to delete session "+name, err)
	}
	s.logger.Debug().Str("session", name).Msg("Deleted session")
	return nil
}

func (s *Store) loadHistory(ctx context.Context, name string) ([]models.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, snapshot, preview, created_at FROM history_entries WHERE session = ? ORDER BY position`, name)
	if err != nil {
		return nil, errors.NewStorageError("failed to load history of "+name, err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.Snapshot, &entry.Preview, &createdAt); err != nil {
			return nil, errors.NewStorageError("failed to read history entry", err)
		}
		entry.Timestamp = time.Unix(0, createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to load history of "+name, err)
	}
	return entries, nil
}

func (s *Store) loadVersions(ctx context.Context, name string) ([]models.Version, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, created_at FROM versions WHERE session = ? ORDER BY position`, name)
	if err != nil {
		return nil, errors.NewStorageError("failed to load versions of "+name, err)
	}
	defer rows.Close()

	var list []models.Version
	for rows.Next() {
		var version models.Version
		var createdAt int64
		if err := rows.Scan(&version.ID, &version.Content, &createdAt); err != nil {
			return nil, errors.NewStorageError("failed to read version", err)
		}
		version.Timestamp = time.Unix(0, createdAt)
		list = append(list, version)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewStorageError("failed to load versions of "+name, err)
	}
	return list, nil
}

func deleteSession(ctx context.Context, tx *sql.Tx, name string) error {
	for _, query := range []string{
		`DELETE FROM history_entries WHERE session = ?`,
		`DELETE FROM versions WHERE session = ?`,
		`DELETE FROM sessions WHERE name = ?`,
	} {
		if _, err := tx.ExecContext(ctx, query, name); err != nil {
			return errors.NewStorageError("failed to clear session "+name, err)
		}
	}
	return nil
}
