package domain

// Document represents one ingested text file.
// Documents are ephemeral: they exist only during an ingestion pass
// and only their chunks are persisted.
type Document struct {
	// ID is the unique identifier for the document within one ingestion pass.
	ID string

	// Source is the source identifier recorded on every chunk (the file name).
	Source string

	// Path is the location the document was read from.
	Path string

	// Content is the full text content after normalisation.
	Content string
}

// Chunk represents a bounded span of a document's text.
// Chunks are immutable once created; the vector store owns the persisted copy.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Source is the originating file name.
	Source string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int
}

// ScoredChunk is a chunk returned by similarity search.
type ScoredChunk struct {
	Chunk Chunk

	// Similarity is the cosine similarity between the query and the chunk.
	Similarity float64
}

// Chunks extracts the chunks from scored results, preserving rank order.
func Chunks(results []ScoredChunk) []Chunk {
	out := make([]Chunk, len(results))
	for i := range results {
		out[i] = results[i].Chunk
	}
	return out
}

// Answer is the result of a retrieval-augmented question.
type Answer struct {
	// Text is the generation service output, verbatim.
	Text string

	// Sources are the retrieved chunks in ranked order.
	Sources []ScoredChunk

	// Context is the context block that was sent to the generation service.
	Context string

	// Model is the generation model that produced the answer.
	Model string
}

// IngestResult summarises an ingestion pass.
type IngestResult struct {
	// Directory is the documents directory that was scanned.
	Directory string

	// Documents is the number of text files read.
	Documents int

	// Chunks is the number of chunks produced by splitting.
	Chunks int

	// Inserted is the number of chunks persisted.
	Inserted int
}

// IsEmpty reports whether the pass found nothing to ingest.
func (r IngestResult) IsEmpty() bool {
	return r.Documents == 0 || r.Chunks == 0
}
