package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/drcloud/assistant/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	// Per-session append locks. Cross-session operations share nothing here.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{
		db:    db,
		locks: make(map[string]*sync.Mutex),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			user_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			last_active_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			metadata TEXT,
			PRIMARY KEY (user_id, session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS turns (
			turn_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			handler TEXT,
			content TEXT NOT NULL,
			payload TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (user_id, session_id, seq),
			FOREIGN KEY (user_id, session_id) REFERENCES sessions(user_id, session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_turns_session ON turns(user_id, session_id, seq)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// sessionLock returns the append lock for one (user_id, session_id) key.
func (s *SQLiteStore) sessionLock(userID, sessionID string) *sync.Mutex {
	key := userID + "/" + sessionID
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.locks[key]; ok {
		return l
	}
	l := &sync.Mutex{}
	s.locks[key] = l
	return l
}

// CreateSession creates a new session, generating ids when blank.
func (s *SQLiteStore) CreateSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	if userID == "" {
		userID = "user_" + uuid.New().String()[:8]
	}
	if sessionID == "" {
		sessionID = "session_" + uuid.New().String()[:8]
	}

	now := time.Now().UTC()
	session := &domain.Session{
		SessionID:    sessionID,
		UserID:       userID,
		CreatedAt:    now,
		LastActiveAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (user_id, session_id, created_at, last_active_at) VALUES (?, ?, ?, ?)`,
		userID, sessionID, now, now)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return nil, domain.ErrSessionExists
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// GetSession retrieves a session by its composite key.
func (s *SQLiteStore) GetSession(ctx context.Context, userID, sessionID string) (*domain.Session, error) {
	var session domain.Session
	var metadata sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, session_id, created_at, last_active_at, metadata FROM sessions WHERE user_id = ? AND session_id = ?`,
		userID, sessionID).Scan(&session.UserID, &session.SessionID, &session.CreatedAt, &session.LastActiveAt, &metadata)
	if err == sql.ErrNoRows {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if metadata.Valid {
		session.Metadata = []byte(metadata.String)
	}
	return &session, nil
}

// AppendTurn appends one turn under the session's append lock. The next seq
// is computed and inserted in a single transaction so readers never see a
// gap or a partial append.
func (s *SQLiteStore) AppendTurn(ctx context.Context, userID, sessionID string, turn *domain.Turn) error {
	lock := s.sessionLock(userID, sessionID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM sessions WHERE user_id = ? AND session_id = ?`,
		userID, sessionID).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if exists == 0 {
		return domain.ErrSessionNotFound
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(seq), 0) + 1 FROM turns WHERE user_id = ? AND session_id = ?`,
		userID, sessionID).Scan(&seq); err != nil {
		return fmt.Errorf("failed to compute seq: %w", err)
	}

	if turn.TurnID == "" {
		turn.TurnID = "turn_" + uuid.New().String()[:8]
	}
	if turn.CreatedAt.IsZero() {
		turn.CreatedAt = time.Now().UTC()
	}
	turn.UserID = userID
	turn.SessionID = sessionID
	turn.Seq = seq

	var payload any
	if len(turn.Payload) > 0 {
		payload = string(turn.Payload)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (turn_id, user_id, session_id, seq, role, handler, content, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		turn.TurnID, userID, sessionID, seq, string(turn.Role), turn.Handler, turn.Content, payload, turn.CreatedAt); err != nil {
		return fmt.Errorf("failed to insert turn: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sessions SET last_active_at = ? WHERE user_id = ? AND session_id = ?`,
		turn.CreatedAt, userID, sessionID); err != nil {
		return fmt.Errorf("failed to touch session: %w", err)
	}

	return tx.Commit()
}

// GetHistory returns the session's turns in insertion order.
func (s *SQLiteStore) GetHistory(ctx context.Context, userID, sessionID string) ([]domain.Turn, error) {
	if _, err := s.GetSession(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT turn_id, user_id, session_id, seq, role, handler, content, payload, created_at
		 FROM turns WHERE user_id = ? AND session_id = ? ORDER BY seq ASC`,
		userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	turns := []domain.Turn{}
	for rows.Next() {
		var t domain.Turn
		var role string
		var handler, payload sql.NullString
		if err := rows.Scan(&t.TurnID, &t.UserID, &t.SessionID, &t.Seq, &role, &handler, &t.Content, &payload, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		t.Role = domain.Role(role)
		if handler.Valid {
			t.Handler = handler.String
		}
		if payload.Valid {
			t.Payload = []byte(payload.String)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// DeleteSession removes a session and its turns. Idempotent unless strict.
func (s *SQLiteStore) DeleteSession(ctx context.Context, userID, sessionID string, strict bool) error {
	// Turns first: they reference the session row.
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM turns WHERE user_id = ? AND session_id = ?`,
		userID, sessionID); err != nil {
		return fmt.Errorf("failed to delete turns: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ? AND session_id = ?`,
		userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if strict {
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read delete result: %w", err)
		}
		if affected == 0 {
			return domain.ErrSessionNotFound
		}
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
