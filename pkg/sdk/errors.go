package quoterag

import "github.com/kailas-cloud/quoterag/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrToolNotFound      = domain.ErrToolNotFound
	ErrAlreadyRegistered = domain.ErrAlreadyRegistered
	ErrValidation        = domain.ErrValidation
	ErrEmbedding         = domain.ErrEmbedding
	ErrPersistence       = domain.ErrPersistence
	ErrGeneration        = domain.ErrGeneration
)
