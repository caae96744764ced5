// Package docstore provides the document store boundary for persisted
// clinical documents.
package docstore

import (
	"context"

	"github.com/drcloud/assistant/internal/domain"
)

// CollectionClinicalDocuments is the collection persisted documents go to.
const CollectionClinicalDocuments = "clinical_documents"

// DocStore is the external document store contract: put/get only. Write
// failures surface as domain.ErrWriteFailed and are localized to the
// documentation pipeline, never fatal to a chat turn.
type DocStore interface {
	Put(ctx context.Context, collection string, doc *domain.ClinicalDocument) (string, error)
	Get(ctx context.Context, collection, documentID string) (*domain.ClinicalDocument, error)
	ListBySession(ctx context.Context, collection, userID, sessionID string) ([]domain.ClinicalDocument, error)
	Close() error
}
