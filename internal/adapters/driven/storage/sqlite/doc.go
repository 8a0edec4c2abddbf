// Package sqlite provides a SQLite-based implementation of driven.RunStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Only run metadata is stored; result sets are never
// written to disk.
//
// # Data Location
//
// By default, the database is stored at ~/.nearby/data/history.db
//
// # Thread Safety
//
// All operations are thread-safe. The store relies on SQLite's WAL mode and a
// busy timeout for concurrent access.
package sqlite
