package docstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drcloud/assistant/internal/domain"
)

// MemDocStore is an in-memory DocStore for tests. FailWrites makes every
// Put return domain.ErrWriteFailed, to exercise pipeline degradation.
type MemDocStore struct {
	mu         sync.Mutex
	docs       map[string]domain.ClinicalDocument
	FailWrites bool
}

// NewMemDocStore creates an empty in-memory document store.
func NewMemDocStore() *MemDocStore {
	return &MemDocStore{docs: make(map[string]domain.ClinicalDocument)}
}

// Put stores a copy of the document.
func (s *MemDocStore) Put(ctx context.Context, collection string, doc *domain.ClinicalDocument) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites {
		return "", domain.ErrWriteFailed
	}
	if doc.DocumentID == "" {
		doc.DocumentID = "doc_" + uuid.New().String()[:8]
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	s.docs[collection+"/"+doc.DocumentID] = *doc
	return doc.DocumentID, nil
}

// Get retrieves one document by id.
func (s *MemDocStore) Get(ctx context.Context, collection, documentID string) (*domain.ClinicalDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[collection+"/"+documentID]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	return &doc, nil
}

// ListBySession returns the session's documents in creation order.
func (s *MemDocStore) ListBySession(ctx context.Context, collection, userID, sessionID string) ([]domain.ClinicalDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := []domain.ClinicalDocument{}
	for _, doc := range s.docs {
		if doc.UserID == userID && doc.SessionID == sessionID {
			docs = append(docs, doc)
		}
	}
	for i := 0; i < len(docs); i++ {
		for j := i + 1; j < len(docs); j++ {
			if docs[j].CreatedAt.Before(docs[i].CreatedAt) {
				docs[i], docs[j] = docs[j], docs[i]
			}
		}
	}
	return docs, nil
}

// Close is a no-op.
func (s *MemDocStore) Close() error { return nil }
