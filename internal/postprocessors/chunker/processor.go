// Package chunker provides a recursive separator-based text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/ragent/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order: paragraph, line, sentence, word, character.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Processor splits document content into overlapping chunks, preferring
// natural boundaries. Lengths are measured in characters (runes).
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators []string
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators sets the boundary separators in priority order.
// The empty separator (hard character cut) is always tried last.
func WithSeparators(separators ...string) Option {
	return func(p *Processor) {
		if len(separators) == 0 {
			return
		}
		seps := make([]string, 0, len(separators)+1)
		for _, s := range separators {
			if s != "" {
				seps = append(seps, s)
			}
		}
		p.separators = append(seps, "")
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: DefaultSeparators,
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// ChunkSize returns the configured chunk size.
func (p *Processor) ChunkSize() int {
	return p.chunkSize
}

// Overlap returns the configured overlap.
func (p *Processor) Overlap() int {
	return p.overlap
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	texts := p.Split(doc.Content)
	if len(texts) == 0 {
		// Empty content produces no chunks
		return nil, nil
	}

	chunks := make([]domain.Chunk, 0, len(texts))
	for _, text := range texts {
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Source:     doc.Source,
			Content:    text,
			Position:   len(chunks),
		})
	}

	return chunks, nil
}

// Split returns the chunk texts of content in order.
// Chunks are exact substrings of content; whitespace-only chunks are dropped.
func (p *Processor) Split(content string) []string {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	spans := p.spans(content, 0, p.separators)
	texts := make([]string, 0, len(spans))
	for _, sp := range spans {
		text := content[sp.start:sp.end]
		if strings.TrimSpace(text) == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// span is a byte range of the content with its length in runes.
type span struct {
	start, end int
	runes      int
}

// spans splits text (located at byte offset base of the content) into
// spans of at most chunkSize runes.
func (p *Processor) spans(text string, base int, separators []string) []span {
	sep, rest := pickSeparator(text, separators)
	pieces := splitAfter(text, base, sep)

	var out, fitting []span
	for _, piece := range pieces {
		if piece.runes <= p.chunkSize {
			fitting = append(fitting, piece)
			continue
		}
		if len(fitting) > 0 {
			out = append(out, p.merge(fitting)...)
			fitting = nil
		}
		if len(rest) == 0 {
			rest = []string{""}
		}
		out = append(out, p.spans(text[piece.start-base:piece.end-base], piece.start, rest)...)
	}
	if len(fitting) > 0 {
		out = append(out, p.merge(fitting)...)
	}
	return out
}

// merge packs consecutive pieces into chunks of at most chunkSize runes.
// Each new chunk starts with the trailing pieces of the previous one,
// up to overlap runes.
func (p *Processor) merge(pieces []span) []span {
	var (
		chunks  []span
		current []span
		total   int
	)

	for _, piece := range pieces {
		if total+piece.runes > p.chunkSize && len(current) > 0 {
			chunks = append(chunks, join(current, total))
			for total > p.overlap || (total+piece.runes > p.chunkSize && total > 0) {
				total -= current[0].runes
				current = current[1:]
			}
		}
		current = append(current, piece)
		total += piece.runes
	}
	if len(current) > 0 {
		chunks = append(chunks, join(current, total))
	}
	return chunks
}

func join(pieces []span, runes int) span {
	return span{start: pieces[0].start, end: pieces[len(pieces)-1].end, runes: runes}
}

// pickSeparator returns the first separator present in text and the
// lower-priority separators after it.
func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" || strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// splitAfter splits text after each occurrence of sep, keeping the separator
// attached to the preceding piece. An empty sep splits into single characters.
func splitAfter(text string, base int, sep string) []span {
	var pieces []span
	offset := base
	for _, part := range strings.SplitAfter(text, sep) {
		if part == "" {
			continue
		}
		pieces = append(pieces, span{
			start: offset,
			end:   offset + len(part),
			runes: utf8.RuneCountInString(part),
		})
		offset += len(part)
	}
	return pieces
}
