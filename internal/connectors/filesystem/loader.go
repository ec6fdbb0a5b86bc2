// Package filesystem loads the text documents of a local directory.
package filesystem

import (
	"context"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/ragent/internal/core/domain"
	"github.com/custodia-labs/ragent/internal/core/ports/driven"
	"github.com/custodia-labs/ragent/internal/logger"
)

// Ensure Loader implements the interface.
var _ driven.DocumentLoader = (*Loader)(nil)

const octetStream = "application/octet-stream"

// Loader reads the files directly inside a directory and hands each one
// to the normaliser registered for its MIME type.
type Loader struct {
	normalisers map[string]driven.Normaliser
}

// New creates a loader using the given normalisers.
// Files whose MIME type has no normaliser are skipped.
func New(normalisers ...driven.Normaliser) *Loader {
	l := &Loader{normalisers: make(map[string]driven.Normaliser)}
	for _, n := range normalisers {
		for _, mimeType := range n.SupportedMIMETypes() {
			l.normalisers[mimeType] = n
		}
	}
	return l
}

// Load returns one Document per supported file directly inside dir,
// in lexical file name order. Subdirectories and hidden files are ignored;
// symlinks are followed when they point at a regular file.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Document, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", domain.ErrDirectoryNotFound, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := entry.Name()
		path := filepath.Join(dir, name)
		if isHidden(name) || !isRegularFile(path, entry) {
			continue
		}

		mimeType := detectMIMEType(name)
		normaliser, ok := l.normalisers[mimeType]
		if !ok {
			logger.Debug("skipping %s: unsupported type %s", name, mimeType)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		result, err := normaliser.Normalise(ctx, &domain.RawDocument{
			URI:      path,
			Name:     name,
			MIMEType: mimeType,
			Content:  content,
		})
		if err != nil {
			return nil, err
		}

		logger.Debug("loaded %s (%d bytes)", name, len(content))
		docs = append(docs, result.Document)
	}

	return docs, nil
}

// detectMIMEType returns the MIME type for a file name, without parameters.
// Only the .txt extension maps to text/plain; other text formats keep
// their own types so they are not mistaken for plain text.
func detectMIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case "":
		return octetStream
	case ".txt":
		return "text/plain"
	}

	mimeType := mime.TypeByExtension(ext)
	if mimeType == "" {
		return octetStream
	}
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if mimeType == "text/plain" {
		// e.g. ".text" or ".conf" registered as text/plain on some systems
		return "text/x-" + strings.TrimPrefix(ext, ".")
	}
	return mimeType
}

// isRegularFile reports whether entry is a regular file or a symlink to one.
// Broken links are skipped.
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	if err != nil {
		logger.Debug("skipping %s: %v", path, err)
		return false
	}
	return info.Mode().IsRegular()
}

// isHidden reports whether a file name starts with a dot.
func isHidden(name string) bool {
	return name != "." && name != ".." && strings.HasPrefix(name, ".")
}
