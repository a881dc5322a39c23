// Package storage archives conversation transcripts in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TranscriptStore keeps a durable record of every turn: which sessions
// existed, what was said, and what attributes each session surrendered.
// Archival is best-effort from the caller's perspective; a failed write
// must never fail the turn that produced it.
type TranscriptStore struct {
	db *sql.DB
}

// NewTranscriptStore opens or creates the archive database at dbPath and
// initializes the schema. Parent directories are created if they do not exist.
func NewTranscriptStore(dbPath string) (*TranscriptStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return &TranscriptStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		name TEXT,
		email TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id);
	CREATE INDEX IF NOT EXISTS idx_messages_session_created ON messages(session_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordTurn archives one exchange: the user message, the reply, and the
// session's current attributes. The session row is upserted so attributes
// extracted on a later turn still land in the archive.
func (s *TranscriptStore) RecordTurn(ctx context.Context, sessionID, name, email, userText, replyText string) error {
	now := time.Now()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO sessions (id, name, email, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = CASE WHEN excluded.name != '' THEN excluded.name ELSE sessions.name END,
			email = CASE WHEN excluded.email != '' THEN excluded.email ELSE sessions.email END,
			updated_at = excluded.updated_at`,
		sessionID, name, email, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, "user", userText, now,
	)
	if err != nil {
		return fmt.Errorf("insert user message: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, text, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, "assistant", replyText, now,
	)
	if err != nil {
		return fmt.Errorf("insert reply: %w", err)
	}

	return tx.Commit()
}

// Counts returns the number of archived sessions and messages.
func (s *TranscriptStore) Counts(ctx context.Context) (sessions, messages int, err error) {
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&sessions); err != nil {
		return 0, 0, fmt.Errorf("count sessions: %w", err)
	}
	if err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&messages); err != nil {
		return 0, 0, fmt.Errorf("count messages: %w", err)
	}
	return sessions, messages, nil
}

// SessionAttributes returns the archived name and email for a session.
func (s *TranscriptStore) SessionAttributes(ctx context.Context, sessionID string) (name, email string, err error) {
	err = s.db.QueryRowContext(ctx,
		`SELECT COALESCE(name, ''), COALESCE(email, '') FROM sessions WHERE id = ?`, sessionID,
	).Scan(&name, &email)
	if err == sql.ErrNoRows {
		return "", "", fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

// Close closes the database.
func (s *TranscriptStore) Close() error {
	return s.db.Close()
}
