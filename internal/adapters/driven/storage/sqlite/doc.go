// Package sqlite provides a SQLite-backed implementation of driven.VectorStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunks are stored with their embeddings
// as little-endian float32 BLOBs; similarity search scores every chunk of the
// collection with cosine similarity.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database lives at <data-dir>/vectors.db. It is created by the first insert;
// counting or searching a missing data directory reports an empty store and
// creates nothing. Clearing the last collection removes the data directory.
//
// # Thread Safety
//
// A Store is safe for concurrent use within one process. Access from several
// processes relies on SQLite's own locking (WAL mode, busy timeout).
package sqlite
