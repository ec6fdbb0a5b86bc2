// Package vector holds the embedding arithmetic shared by the vector stores:
// BLOB encoding, cosine similarity and top-k ranking.
package vector
