package store

import (
	"path/filepath"
	"testing"
	"time"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestPass creates a pass with one build and the given files.
func createTestPass(buildID string, files ...File) Pass {
	return Pass{
		Root:       "/sim",
		Sources:    []string{"/sim/champsim_config.json"},
		RecordedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Builds: []Build{{
			BuildID:    buildID,
			Executable: "/sim/bin/champsim",
			ObjDir:     "/sim/.csconfig/" + buildID,
		}},
		Files: files,
	}
}
