// Package domain defines the core business entities for ragent.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RawDocument: Opaque bytes read from the documents directory
//   - Document: One ingested text file
//   - Chunk: A bounded span of a document, the unit stored and retrieved
//   - ScoredChunk: A chunk returned by similarity search
//   - Answer: The result of a retrieval-augmented question
//   - Settings: Process-wide configuration, built once at startup
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
