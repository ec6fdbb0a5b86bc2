// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - DocumentLoader: Reads text files from the documents directory
//   - Normaliser: Transforms raw file bytes into a Document
//   - PostProcessorPipeline: Splits documents into chunks
//   - EmbeddingService: Generates vector embeddings (Ollama, OpenAI-compatible)
//   - VectorStore: Chunk persistence and similarity search (SQLite)
//   - LLMService: Text generation (Ollama, OpenAI-compatible)
//   - ConfigStore: Application configuration (TOML)
//
// # Optional Interfaces
//
// These can be nil - the application falls back to built-in defaults:
//
//   - PromptStore: User-editable prompt templates
//   - AIConfigValidator: Connectivity checks for the status command
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
