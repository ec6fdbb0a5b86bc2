package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// mockEmbedder maps known words to fixed axes so rankings are predictable.
type mockEmbedder struct {
	dims  int
	err   error
	calls int
}

var axes = map[string]int{"cat": 0, "dog": 1, "rocket": 2, "tea": 3}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	vec := make([]float32, m.dims)
	vec[m.dims-1] = 0.01
	for _, w := range strings.Fields(strings.ToLower(text)) {
		if i, ok := axes[strings.Trim(w, ".,?!s")]; ok && i < m.dims {
			vec[i]++
		}
	}
	return vec, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return "axes" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// setupTestStore opens a store in a fresh data directory that does not exist yet.
func setupTestStore(t *testing.T, emb *mockEmbedder) (*Store, string) {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "vector_store")
	store, err := Open(Config{Dir: dir, Collection: "agent_docs"}, emb)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, dir
}

func testChunks() []domain.Chunk {
	return []domain.Chunk{
		{ID: "c1", DocumentID: "d1", Source: "pets.txt", Content: "the cat sleeps", Position: 0},
		{ID: "c2", DocumentID: "d1", Source: "pets.txt", Content: "the dog barks", Position: 1},
		{ID: "c3", DocumentID: "d2", Source: "space.txt", Content: "a rocket launches", Position: 0},
	}
}

func TestOpen_Validation(t *testing.T) {
	_, err := Open(Config{Dir: "", Collection: "c"}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	_, err = Open(Config{Dir: t.TempDir(), Collection: " "}, nil)
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestOpen_DoesNotCreateDirectory(t *testing.T) {
	store, dir := setupTestStore(t, &mockEmbedder{dims: 4})

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)

	results, err := store.Search(context.Background(), "cat", 4)
	require.NoError(t, err)
	assert.Empty(t, results)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "count and search must not create the data directory")
}

func TestStore_InsertCreatesDatabase(t *testing.T) {
	store, dir := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	n, err := store.Insert(ctx, testChunks())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = os.Stat(filepath.Join(dir, DatabaseFile))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_InsertEmpty(t *testing.T) {
	emb := &mockEmbedder{dims: 4}
	store, dir := setupTestStore(t, emb)

	n, err := store.Insert(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, emb.calls)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_InsertEmbeddingFailureWritesNothing(t *testing.T) {
	emb := &mockEmbedder{dims: 4, err: domain.ErrEmbeddingUnavailable}
	store, dir := setupTestStore(t, emb)

	_, err := store.Insert(context.Background(), testChunks())
	assert.True(t, errors.Is(err, domain.ErrEmbeddingUnavailable))

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestStore_InsertDuplicateIDRollsBack(t *testing.T) {
	store, _ := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks()[:1])
	require.NoError(t, err)

	batch := []domain.Chunk{
		{ID: "new", DocumentID: "d9", Source: "x.txt", Content: "tea time"},
		{ID: "c1", DocumentID: "d9", Source: "x.txt", Content: "dup"},
	}
	_, err = store.Insert(ctx, batch)
	require.Error(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count, "failed batch must not leave partial rows")
}

func TestStore_Search(t *testing.T) {
	store, _ := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks())
	require.NoError(t, err)

	results, err := store.Search(ctx, "where is the dog?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "c2", results[0].Chunk.ID)
	assert.Equal(t, "pets.txt", results[0].Chunk.Source)
	assert.Equal(t, "the dog barks", results[0].Chunk.Content)
	assert.Equal(t, 1, results[0].Chunk.Position)
	assert.GreaterOrEqual(t, results[0].Similarity, results[1].Similarity)
}

func TestStore_SearchTiesKeepInsertionOrder(t *testing.T) {
	store, _ := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, []domain.Chunk{
		{ID: "first", Source: "a.txt", Content: "cat"},
		{ID: "second", Source: "b.txt", Content: "cat"},
		{ID: "third", Source: "c.txt", Content: "cat"},
	})
	require.NoError(t, err)

	results, err := store.Search(ctx, "cat", 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Chunk.ID)
	assert.Equal(t, "second", results[1].Chunk.ID)
	assert.Equal(t, "third", results[2].Chunk.ID)
}

func TestStore_SearchNeverExceedsK(t *testing.T) {
	store, _ := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks()[:2])
	require.NoError(t, err)

	results, err := store.Search(ctx, "cat", 4)
	require.NoError(t, err)
	assert.Len(t, results, 2)

	results, err = store.Search(ctx, "cat", 1)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = store.Search(ctx, "cat", 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStore_DimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{dims: 4}
	store, _ := setupTestStore(t, emb)
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks())
	require.NoError(t, err)

	emb.dims = 3
	_, err = store.Insert(ctx, []domain.Chunk{{ID: "c9", Source: "x.txt", Content: "cat"}})
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	_, err = store.Search(ctx, "cat", 2)
	assert.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestStore_PersistsAcrossHandles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	cfg := Config{Dir: dir, Collection: "agent_docs"}
	ctx := context.Background()

	first, err := Open(cfg, &mockEmbedder{dims: 4})
	require.NoError(t, err)
	_, err = first.Insert(ctx, testChunks())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(cfg, &mockEmbedder{dims: 4})
	require.NoError(t, err)
	defer second.Close()

	count, err := second.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	results, err := second.Search(ctx, "rocket", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c3", results[0].Chunk.ID)
}

func TestStore_CollectionsAreIsolated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "store")
	ctx := context.Background()

	docs, err := Open(Config{Dir: dir, Collection: "docs"}, &mockEmbedder{dims: 4})
	require.NoError(t, err)
	defer docs.Close()
	notes, err := Open(Config{Dir: dir, Collection: "notes"}, &mockEmbedder{dims: 4})
	require.NoError(t, err)
	defer notes.Close()

	_, err = docs.Insert(ctx, testChunks())
	require.NoError(t, err)
	_, err = notes.Insert(ctx, []domain.Chunk{{ID: "n1", Source: "n.txt", Content: "tea"}})
	require.NoError(t, err)

	cleared, err := notes.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)

	count, err := docs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count, "clearing one collection keeps the others")

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}

func TestStore_Clear(t *testing.T) {
	store, dir := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	cleared, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.False(t, cleared, "clearing a missing store removes nothing")

	_, err = store.Insert(ctx, testChunks())
	require.NoError(t, err)

	cleared, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)

	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err), "data directory should be removed")

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	cleared, err = store.Clear(ctx)
	require.NoError(t, err)
	assert.False(t, cleared)

	// The handle stays usable after a clear.
	n, err := store.Insert(ctx, testChunks()[:1])
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStore_Clear_KeepsForeignFiles(t *testing.T) {
	store, dir := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks())
	require.NoError(t, err)
	notes := filepath.Join(dir, "my-notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("keep me"), 0o600))

	cleared, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.True(t, cleared)

	data, err := os.ReadFile(notes)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))

	for _, name := range []string{DatabaseFile, DatabaseFile + "-wal", DatabaseFile + "-shm"} {
		_, err = os.Stat(filepath.Join(dir, name))
		assert.True(t, os.IsNotExist(err), name)
	}

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStore_Closed(t *testing.T) {
	store, _ := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()
	require.NoError(t, store.Close())

	_, err := store.Count(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, err = store.Insert(ctx, testChunks())
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
	_, err = store.Clear(ctx)
	assert.ErrorIs(t, err, domain.ErrStoreClosed)
}

func TestStore_RecordsMigrationsAndModel(t *testing.T) {
	store, dir := setupTestStore(t, &mockEmbedder{dims: 4})
	ctx := context.Background()

	_, err := store.Insert(ctx, testChunks())
	require.NoError(t, err)

	db, err := sql.Open("sqlite", filepath.Join(dir, DatabaseFile))
	require.NoError(t, err)
	defer db.Close()

	var version int
	require.NoError(t, db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var dims int
	var model string
	require.NoError(t, db.QueryRow(
		"SELECT dimensions, embedding_model FROM collections WHERE name = ?", "agent_docs",
	).Scan(&dims, &model))
	assert.Equal(t, 4, dims)
	assert.Equal(t, "axes", model)
}
