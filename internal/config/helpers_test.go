package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// moduleTree creates a simulator checkout with the given modules and
// returns its root.
func moduleTree(t *testing.T, modules map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, names := range modules {
		for _, name := range names {
			require.NoError(t, os.MkdirAll(filepath.Join(root, dir, name), 0o755))
		}
	}
	return root
}

func defaultModuleTree(t *testing.T) string {
	t.Helper()
	return moduleTree(t, map[string][]string{
		"branch":      {"bimodal", "gshare"},
		"btb":         {"basic_btb"},
		"prefetcher":  {"no", "ip_stride"},
		"replacement": {"lru", "srrip"},
	})
}
