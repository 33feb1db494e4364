package domain

import "errors"

var (
	// ErrToolNotFound signals a call to a tool name that was never registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrAlreadyRegistered signals a duplicate tool registration.
	ErrAlreadyRegistered = errors.New("tool already registered")
	// ErrValidation signals tool arguments that violate the declared schema.
	ErrValidation = errors.New("validation failed")

	// ErrEmbedding signals an embedding failure while inserting into the index.
	// The index is left unchanged.
	ErrEmbedding = errors.New("embedding failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")

	// ErrPersistence signals a missing, corrupt or mismatched index snapshot.
	ErrPersistence = errors.New("index persistence failed")

	// ErrQuoteFetch signals a live quote transport or parse failure.
	// It never leaves the quote adapters: callers see an absent quote instead.
	ErrQuoteFetch = errors.New("quote fetch failed")

	// ErrGeneration signals a text-generation provider failure.
	ErrGeneration = errors.New("generation failed")
)
