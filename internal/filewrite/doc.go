// Package filewrite collects generated file contributions and writes them
// to disk with as little churn as possible.
//
// A generation pass runs in three steps:
//
//  1. Begin clears the contribution buffer.
//  2. WriteFiles, once per configuration, runs every generator and records
//     (path, lines) parts. Parts are only ever added.
//  3. Finish groups parts by destination, prepends the banner for the file
//     type and calls WriteIfDifferent for each destination.
//
// Scope wraps the three steps: the buffer is flushed only when the wrapped
// function returns nil.
//
// Files whose on-disk lines equal the new lines, ignoring leading and
// trailing whitespace, are left untouched so their modification times do
// not trigger rebuilds. Writes go through a temporary file and a rename.
//
// A FileWriter is not safe for concurrent use, and two passes that target
// overlapping destinations must be serialized by the caller.
package filewrite
