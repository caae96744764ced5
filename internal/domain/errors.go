package domain

import "errors"

// Kind is the stable error kind exposed on the wire.
type Kind string

const (
	KindNotFound    Kind = "not_found"
	KindRouting     Kind = "routing_error"
	KindHandler     Kind = "handler_failure"
	KindPersistence Kind = "persistence_error"
	KindValidation  Kind = "validation_error"
	KindInternal    Kind = "internal_error"
)

var (
	// ErrSessionNotFound is returned when a (user_id, session_id) pair does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists is returned when creating a session that already exists.
	ErrSessionExists = errors.New("session already exists")
	// ErrUnknownHandler is returned when a delegation hint names an unregistered handler.
	ErrUnknownHandler = errors.New("unknown handler")
	// ErrClassificationFailed means the root handler could not produce a decision.
	ErrClassificationFailed = errors.New("classification failed")
	// ErrInvalidRequest means the request body is malformed or incomplete.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrGeneratorUnavailable means the text-generation capability could not be reached.
	ErrGeneratorUnavailable = errors.New("generator unavailable")
	// ErrGeneratorRateLimited means the text-generation capability rejected the call.
	ErrGeneratorRateLimited = errors.New("generator rate limited")
	// ErrDocumentNotFound is returned when a clinical document id does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrWriteFailed means the document store rejected a write.
	ErrWriteFailed = errors.New("document write failed")
)

// KindOf maps an error to its wire kind.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrDocumentNotFound):
		return KindNotFound
	case errors.Is(err, ErrUnknownHandler), errors.Is(err, ErrClassificationFailed):
		return KindRouting
	case errors.Is(err, ErrGeneratorUnavailable), errors.Is(err, ErrGeneratorRateLimited):
		return KindHandler
	case errors.Is(err, ErrWriteFailed):
		return KindPersistence
	case errors.Is(err, ErrSessionExists), errors.Is(err, ErrInvalidRequest):
		return KindValidation
	default:
		return KindInternal
	}
}
