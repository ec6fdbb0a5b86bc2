// Package file provides file-based implementations of driven port interfaces.
//
// Adapters:
//   - ConfigStore: TOML configuration file (config.toml)
//   - PromptStore: user-editable prompt templates (prompts/*.txt)
package file
