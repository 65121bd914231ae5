// Package store keeps a SQLite-backed history of configure passes.
//
// Each pass records the configuration sources it read, the build identity
// and executable of every configuration, and the outcome for every
// generated file (rewritten or left unchanged). The history answers "which
// pass last touched this header" without re-running the generators.
//
// # Ordering
//
// Passes are ordered by seq, a per-database counter assigned at insert
// time, never by wall-clock timestamps. Files within a pass are ordered by
// path COLLATE BINARY, builds by their position in the pass.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
