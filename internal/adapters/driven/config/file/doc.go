// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage (~/.nearby/config.toml)
//   - Watcher: fsnotify-based change notifications for the config file
package file
