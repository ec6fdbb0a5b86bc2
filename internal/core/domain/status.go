package domain

// Status is a snapshot of the configuration and the vector store.
type Status struct {
	// Settings are the effective settings of this invocation.
	Settings Settings

	// Chunks is the number of persisted chunks.
	Chunks int

	// ConfigPath is the configuration file location.
	ConfigPath string
}
