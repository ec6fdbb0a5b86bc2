package domain

// RawDocument represents opaque bytes read by the document loader.
// It is the loader's output before normalisation.
type RawDocument struct {
	// URI is the original location (file path).
	URI string

	// Name is the file name, used as the source identifier.
	Name string

	// MIMEType is the content type (e.g., "text/plain").
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}
