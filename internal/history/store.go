// Package history persists conversation transcripts in a local SQLite
// database so sessions survive process restarts.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/parley-llm/parley/internal/domain"
)

// Store is a SQLite-backed transcript store.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			reasoning TEXT,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session, created_at)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	return nil
}

// Append records one message under the given session.
func (s *Store) Append(ctx context.Context, session string, msg domain.Message) error {
	var reasoning sql.NullString
	if len(msg.ReasoningBlocks) > 0 {
		data, err := json.Marshal(msg.ReasoningBlocks)
		if err != nil {
			return fmt.Errorf("failed to marshal reasoning: %w", err)
		}
		reasoning = sql.NullString{String: string(data), Valid: true}
	}

	createdAt := msg.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, session, role, content, reasoning, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ID, session, string(msg.Role), msg.Content, reasoning, createdAt)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

// Recent returns up to limit messages for the session in chronological
// order. A limit of 0 returns the whole transcript.
func (s *Store) Recent(ctx context.Context, session string, limit int) ([]domain.Message, error) {
	query := `SELECT id, role, content, reasoning, created_at FROM messages
		WHERE session = ? ORDER BY created_at DESC`
	args := []any{session}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var msg domain.Message
		var role string
		var reasoning sql.NullString
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &reasoning, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = domain.Role(role)
		if reasoning.Valid {
			if err := json.Unmarshal([]byte(reasoning.String), &msg.ReasoningBlocks); err != nil {
				return nil, fmt.Errorf("failed to unmarshal reasoning: %w", err)
			}
		}
		msgs = append(msgs, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate messages: %w", err)
	}

	// Query ran newest-first to apply the limit; flip back.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Clear deletes the session's transcript.
func (s *Store) Clear(ctx context.Context, session string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session = ?`, session); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
