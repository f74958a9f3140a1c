package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quotebot/internal/domain"
	"quotebot/internal/shared"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite creates a new SQLite-backed session repository.
func NewSQLite(dbPath string) (Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// Open database with WAL mode for better concurrency.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS sessions (
		conversation_id TEXT PRIMARY KEY,
		step TEXT NOT NULL,
		data_json TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetSession retrieves the session record for a conversation.
func (s *SQLiteStore) GetSession(ctx context.Context, conversationID string) (*domain.Session, error) {
	query := `
		SELECT conversation_id, step, data_json, created_at, updated_at
		FROM sessions WHERE conversation_id = ?`

	row := s.db.QueryRowContext(ctx, query, conversationID)

	var (
		session              domain.Session
		rawStep, dataJSON    string
		createdAt, updatedAt int64
	)

	err := row.Scan(&session.ConversationID, &rawStep, &dataJSON, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan session row: %w", err)
	}

	step, err := domain.ParseStep(rawStep)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptStep, err)
	}
	session.Step = step

	if err := json.Unmarshal([]byte(dataJSON), &session.Data); err != nil {
		return nil, fmt.Errorf("decode session data: %w", err)
	}

	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// SaveSession creates or updates a session record. Writes are retried on
// SQLITE_BUSY since concurrent conversations share one database file.
func (s *SQLiteStore) SaveSession(ctx context.Context, session *domain.Session) error {
	dataJSON, err := json.Marshal(session.Data)
	if err != nil {
		return fmt.Errorf("encode session data: %w", err)
	}

	query := `
	INSERT INTO sessions (conversation_id, step, data_json, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(conversation_id) DO UPDATE SET
		step = excluded.step,
		data_json = excluded.data_json,
		updated_at = excluded.updated_at`

	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	for i := 0; i < maxRetries; i++ {
		_, err = s.db.ExecContext(ctx, query,
			session.ConversationID, string(session.Step), string(dataJSON),
			session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
		)
		if err == nil {
			return nil
		}
		if shared.IsSQLiteConflictError(err) && i < maxRetries-1 {
			time.Sleep(baseDelay * time.Duration(1<<i))
			continue
		}
		break
	}
	return fmt.Errorf("upsert session: %w", err)
}

// DeleteStaleSessions removes records not updated within ttl.
func (s *SQLiteStore) DeleteStaleSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE updated_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale sessions: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return rows, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
