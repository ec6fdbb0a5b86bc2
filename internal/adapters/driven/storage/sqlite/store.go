package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/ragent/internal/adapters/driven/storage/vector"
	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "vectors.db"

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Config holds configuration for the SQLite vector store.
type Config struct {
	// Dir is the data directory holding the database file.
	Dir string

	// Collection names the set of chunks this handle reads and writes.
	Collection string
}

// Store is a SQLite-backed vector store.
type Store struct {
	mu       sync.Mutex
	cfg      Config
	path     string
	embedder driven.EmbeddingService
	db       *sql.DB
	closed   bool
}

// Open returns a handle on the collection. An existing database is opened and
// migrated immediately; a missing one is created by the first Insert.
func Open(cfg Config, embedder driven.EmbeddingService) (*Store, error) {
	if strings.TrimSpace(cfg.Dir) == "" {
		return nil, fmt.Errorf("%w: data directory is empty", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(cfg.Collection) == "" {
		return nil, fmt.Errorf("%w: collection name is empty", domain.ErrInvalidInput)
	}

	s := &Store{
		cfg:      cfg,
		path:     filepath.Join(cfg.Dir, DatabaseFile),
		embedder: embedder,
	}

	if _, err := s.conn(false); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Insert embeds every chunk and then writes all of them in one transaction.
// An embedding failure writes nothing; a write failure rolls back.
func (s *Store) Insert(ctx context.Context, chunks []domain.Chunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}
	if s.embedder == nil {
		return 0, fmt.Errorf("%w: no embedding service", domain.ErrEmbeddingUnavailable)
	}

	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}
	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks",
			domain.ErrEmbeddingUnavailable, len(embeddings), len(chunks))
	}
	dims := len(embeddings[0])
	for _, emb := range embeddings {
		if len(emb) == 0 || len(emb) != dims {
			return 0, fmt.Errorf("%w: inconsistent embedding sizes in batch", domain.ErrDimensionMismatch)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn(true)
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.ensureCollection(ctx, tx, dims); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, collection, document_id, source, position, content, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx,
			c.ID, s.cfg.Collection, c.DocumentID, c.Source, c.Position, c.Content,
			vector.Encode(embeddings[i]),
		); err != nil {
			return 0, fmt.Errorf("inserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing chunks: %w", err)
	}

	logger.Debug("Inserted %d chunks into %s (%d dimensions)", len(chunks), s.cfg.Collection, dims)
	return len(chunks), nil
}

// ensureCollection records the collection's dimension on first use and
// rejects embeddings of any other size afterwards.
func (s *Store) ensureCollection(ctx context.Context, tx *sql.Tx, dims int) error {
	var stored int
	err := tx.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", s.cfg.Collection,
	).Scan(&stored)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		model := ""
		if s.embedder != nil {
			model = s.embedder.ModelName()
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO collections (name, dimensions, embedding_model) VALUES (?, ?, ?)",
			s.cfg.Collection, dims, model,
		); err != nil {
			return fmt.Errorf("creating collection: %w", err)
		}
		return nil
	case err != nil:
		return fmt.Errorf("reading collection: %w", err)
	case stored != dims:
		return fmt.Errorf("%w: collection %q stores %d dimensions, embedding has %d; run 'ragent clear' and re-ingest",
			domain.ErrDimensionMismatch, s.cfg.Collection, stored, dims)
	}
	return nil
}

// Search embeds query and returns up to k chunks by descending cosine similarity.
// An empty or missing collection returns no results without calling the embedder.
func (s *Store) Search(ctx context.Context, query string, k int) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		return []domain.ScoredChunk{}, nil
	}

	n, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []domain.ScoredChunk{}, nil
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service", domain.ErrEmbeddingUnavailable)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn(false)
	if err != nil {
		return nil, err
	}
	if db == nil {
		return []domain.ScoredChunk{}, nil
	}

	var dims int
	err = db.QueryRowContext(ctx,
		"SELECT dimensions FROM collections WHERE name = ?", s.cfg.Collection,
	).Scan(&dims)
	if errors.Is(err, sql.ErrNoRows) {
		return []domain.ScoredChunk{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading collection: %w", err)
	}
	if dims != len(queryVec) {
		return nil, fmt.Errorf("%w: collection %q stores %d dimensions, query has %d; run 'ragent clear' and re-ingest",
			domain.ErrDimensionMismatch, s.cfg.Collection, dims, len(queryVec))
	}

	candidates, err := s.loadCandidates(ctx, db)
	if err != nil {
		return nil, err
	}
	return vector.TopK(queryVec, candidates, k)
}

// loadCandidates reads every chunk of the collection in insertion order.
func (s *Store) loadCandidates(ctx context.Context, db *sql.DB) ([]vector.Candidate, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, document_id, source, position, content, embedding
		FROM chunks
		WHERE collection = ?
		ORDER BY seq
	`, s.cfg.Collection)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var candidates []vector.Candidate
	for rows.Next() {
		var (
			c    domain.Chunk
			blob []byte
		)
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Source, &c.Position, &c.Content, &blob); err != nil {
			return nil, fmt.Errorf("scanning chunk: %w", err)
		}
		emb, err := vector.Decode(blob)
		if err != nil {
			return nil, fmt.Errorf("decoding chunk %s: %w", c.ID, err)
		}
		candidates = append(candidates, vector.Candidate{Chunk: c, Embedding: emb})
	}
	return candidates, rows.Err()
}

// Count returns the number of chunks in the collection.
// A missing database counts as empty.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn(false)
	if err != nil {
		return 0, err
	}
	if db == nil {
		return 0, nil
	}
	return s.count(ctx, db)
}

func (s *Store) count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chunks WHERE collection = ?", s.cfg.Collection,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting chunks: %w", err)
	}
	return n, nil
}

// Clear deletes the collection. When no other collection remains, the
// database files are removed, and the data directory too if nothing else is in it.
// Returns true only if the collection held at least one chunk.
func (s *Store) Clear(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	db, err := s.conn(false)
	if err != nil {
		return false, err
	}
	if db == nil {
		return false, nil
	}

	n, err := s.count(ctx, db)
	if err != nil {
		return false, err
	}

	if _, err := db.ExecContext(ctx, "DELETE FROM chunks WHERE collection = ?", s.cfg.Collection); err != nil {
		return false, fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM collections WHERE name = ?", s.cfg.Collection); err != nil {
		return false, fmt.Errorf("deleting collection: %w", err)
	}

	var remaining int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM collections").Scan(&remaining); err != nil {
		return false, fmt.Errorf("counting collections: %w", err)
	}

	if remaining == 0 {
		if err := db.Close(); err != nil {
			return false, fmt.Errorf("closing database: %w", err)
		}
		s.db = nil
		if err := s.removeFiles(); err != nil {
			return false, err
		}
	}

	return n > 0, nil
}

// removeFiles deletes the database and its WAL files, then the data
// directory when it is left empty. Other files are never touched.
func (s *Store) removeFiles() error {
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing database: %w", err)
		}
	}
	logger.Debug("Removed %s", s.path)

	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading data directory: %w", err)
	}
	if len(entries) == 0 {
		if err := os.Remove(s.cfg.Dir); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("removing data directory: %w", err)
		}
		logger.Debug("Removed empty data directory %s", s.cfg.Dir)
	}
	return nil
}

// conn returns the open database, opening it if the file exists.
// With create set, a missing database is created. Without it, a missing
// database yields (nil, nil). Caller must hold s.mu, except from Open.
func (s *Store) conn(create bool) (*sql.DB, error) {
	if s.closed {
		return nil, domain.ErrStoreClosed
	}
	if s.db != nil {
		return s.db, nil
	}

	if _, err := os.Stat(s.path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("checking database: %w", err)
		}
		if !create {
			return nil, nil
		}
		if err := os.MkdirAll(s.cfg.Dir, 0700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite",
		s.path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := migrate(db, migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	s.db = db
	return db, nil
}

// migrate runs all pending migrations, recording each applied version.
func migrate(db *sql.DB, fsys fs.FS) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %s: %w", name, err)
		}
	}

	return nil
}
