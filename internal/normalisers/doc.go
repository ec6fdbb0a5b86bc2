// Package normalisers converts raw file bytes into domain Documents.
// Each normaliser handles a set of MIME types; the document loader
// selects one by the MIME type it assigns to a file.
package normalisers
