package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors; adapters wrap
// transport failures with the matching sentinel so callers can use errors.Is.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDirectoryNotFound indicates the documents directory does not exist.
	// Ingestion is aborted and no state is changed.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrEmptyInput indicates there were no documents or chunks to ingest.
	// This is reported as a no-op, not a failure.
	ErrEmptyInput = errors.New("no documents found")

	// ErrEmbeddingUnavailable indicates the embedding service is unreachable or erroring.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the generation service is unreachable or erroring.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrEmptyStore indicates the vector store holds no chunks.
	// This is reported as an informational message, not a crash.
	ErrEmptyStore = errors.New("vector store is empty")

	// ErrDimensionMismatch indicates an embedding's size differs from the
	// dimension recorded for the collection. The store must be cleared
	// before a model with a different dimension can be used.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreClosed indicates the vector store handle has been released.
	ErrStoreClosed = errors.New("vector store closed")

	// ErrUnsupportedType indicates an unknown provider or processor type.
	ErrUnsupportedType = errors.New("unsupported type")
)
