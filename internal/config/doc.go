// Package config holds the parsed simulator configuration consumed by the
// generators, and the build identity derived from it.
//
// A Configuration is produced once per configuration source (LoadFile,
// Merge, Parse) and is treated as a read-only value afterwards. All other
// internal packages import config; config imports nothing internal.
//
// Key constraints:
//   - BuildID depends only on the canonical serialization of a Configuration,
//     never on map iteration order, memory addresses or wall-clock time
//   - Missing required fields surface as *Error, never as zero defaults
package config
