package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/normalisers/plaintext"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func newLoader() *Loader {
	return New(plaintext.New())
}

func TestLoad_ReadsTextFilesInLexicalOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.txt", "bravo")
	writeFile(t, dir, "a.txt", "alpha")
	writeFile(t, dir, "C.TXT", "charlie")

	docs, err := newLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	assert.Equal(t, "C.TXT", docs[0].Source)
	assert.Equal(t, "a.txt", docs[1].Source)
	assert.Equal(t, "b.txt", docs[2].Source)
	assert.Equal(t, "alpha", docs[1].Content)
	assert.Equal(t, filepath.Join(dir, "a.txt"), docs[1].Path)
	assert.NotEmpty(t, docs[0].ID)
}

func TestLoad_SkipsUnsupportedHiddenAndNested(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "keep.txt", "kept")
	writeFile(t, dir, "notes.md", "# markdown")
	writeFile(t, dir, "README", "no extension")
	writeFile(t, dir, ".secret.txt", "hidden")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o700))
	writeFile(t, sub, "deep.txt", "not loaded")

	docs, err := newLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "keep.txt", docs[0].Source)
}

func TestLoad_FollowsSymlinksToFiles(t *testing.T) {
	dir := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "shared.txt", "shared notes")
	require.NoError(t, os.Mkdir(filepath.Join(outside, "folder.txt"), 0o700))

	require.NoError(t, os.Symlink(filepath.Join(outside, "shared.txt"), filepath.Join(dir, "link.txt")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "folder.txt"), filepath.Join(dir, "dir.txt")))
	require.NoError(t, os.Symlink(filepath.Join(outside, "gone.txt"), filepath.Join(dir, "broken.txt")))

	docs, err := newLoader().Load(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "link.txt", docs[0].Source)
	assert.Equal(t, "shared notes", docs[0].Content)
}

func TestLoad_EmptyDirectory(t *testing.T) {
	docs, err := newLoader().Load(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoad_DirectoryNotFound(t *testing.T) {
	_, err := newLoader().Load(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestLoad_PathIsFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.txt", "x")

	_, err := newLoader().Load(context.Background(), filepath.Join(dir, "file.txt"))
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestLoad_InvalidUTF8(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.txt"), []byte{0xff, 0xfe, 0xfd}, 0o600))

	_, err := newLoader().Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Contains(t, err.Error(), "bad.txt")
}

func TestLoad_NoNormalisers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	docs, err := New().Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoad_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "alpha")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newLoader().Load(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"doc.txt", "text/plain"},
		{"DOC.TXT", "text/plain"},
		{"Mixed.Txt", "text/plain"},
		{"noext", octetStream},
		{"file.zzzzunknown", octetStream},
		{"data.json", "application/json"},
		{"page.html", "text/html"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectMIMEType(tt.name))
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden(".env"))
	assert.True(t, isHidden(".notes.txt"))
	assert.False(t, isHidden("notes.txt"))
	assert.False(t, isHidden("."))
	assert.False(t, isHidden(".."))
	assert.False(t, isHidden(""))
}
