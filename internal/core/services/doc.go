// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// IngestService runs load, split, embed and store. RAGService retrieves
// context and asks the generation service. StoreService and
// SettingsService back the status, clear and config commands.
package services
