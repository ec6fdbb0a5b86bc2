// Package connectors reads documents from the places they live.
// The filesystem connector is the only source: a flat directory of text files.
package connectors
