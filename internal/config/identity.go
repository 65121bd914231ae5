package config

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// buildIDBytes is the number of SHAKE-128 output bytes kept; the identity is
// their hex encoding.
const buildIDBytes = 4

// BuildID computes the build identity of a configuration: the hex-encoded
// first four bytes of SHAKE-128 over its canonical JSON.
//
// The identity namespaces the object directory, so it must be stable across
// processes and machines: it depends on nothing but the configuration's
// content.
func BuildID(cfg *Configuration) (string, error) {
	canonical, err := MarshalCanonical(cfg.canonicalValue())
	if err != nil {
		return "", fmt.Errorf("BuildID: failed to marshal: %w", err)
	}

	sum := make([]byte, buildIDBytes)
	sha3.ShakeSum128(sum, canonical)
	return hex.EncodeToString(sum), nil
}

// MustBuildID is like BuildID but panics on error.
// Use only in tests or when the configuration is known to be valid.
func MustBuildID(cfg *Configuration) string {
	id, err := BuildID(cfg)
	if err != nil {
		panic(err)
	}
	return id
}
