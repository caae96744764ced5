package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/drcloud/assistant/internal/domain"
)

// SQLiteDocStore implements DocStore using SQLite. Document bodies are
// stored as JSON; the row is immutable after insert.
type SQLiteDocStore struct {
	db *sql.DB
}

// NewSQLiteDocStore creates a new SQLite-backed document store.
func NewSQLiteDocStore(dsn string) (*SQLiteDocStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open document database: %w", err)
	}
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteDocStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate document database: %w", err)
	}
	return store, nil
}

func (s *SQLiteDocStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		document_id TEXT PRIMARY KEY,
		collection TEXT NOT NULL,
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		body TEXT NOT NULL
	)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_documents_session ON documents(collection, user_id, session_id, created_at)`)
	return err
}

// Put persists one document and returns its id.
func (s *SQLiteDocStore) Put(ctx context.Context, collection string, doc *domain.ClinicalDocument) (string, error) {
	if doc.DocumentID == "" {
		doc.DocumentID = "doc_" + uuid.New().String()[:8]
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("%w: marshal: %v", domain.ErrWriteFailed, err)
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (document_id, collection, user_id, session_id, created_at, body) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.DocumentID, collection, doc.UserID, doc.SessionID, doc.CreatedAt, string(body)); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrWriteFailed, err)
	}
	return doc.DocumentID, nil
}

// Get retrieves one document by id.
func (s *SQLiteDocStore) Get(ctx context.Context, collection, documentID string) (*domain.ClinicalDocument, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND document_id = ?`,
		collection, documentID).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	var doc domain.ClinicalDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// ListBySession returns the session's documents in creation order.
func (s *SQLiteDocStore) ListBySession(ctx context.Context, collection, userID, sessionID string) ([]domain.ClinicalDocument, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT body FROM documents WHERE collection = ? AND user_id = ? AND session_id = ? ORDER BY created_at ASC`,
		collection, userID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := []domain.ClinicalDocument{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		var doc domain.ClinicalDocument
		if err := json.Unmarshal([]byte(body), &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteDocStore) Close() error {
	return s.db.Close()
}
