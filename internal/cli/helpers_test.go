package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// simRoot creates a simulator checkout with the default modules.
func simRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, dir := range []string{
		"src",
		"inc",
		"branch/bimodal",
		"branch/gshare",
		"btb/basic_btb",
		"prefetcher/no",
		"prefetcher/ip_stride",
		"replacement/lru",
	} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, dir), 0o755))
	}
	return root
}

// writeConfig writes content to name under dir and returns the path.
func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// clearBuildFlags keeps the caller's environment out of generated flags.
func clearBuildFlags(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CPPFLAGS", "CXXFLAGS", "LDFLAGS", "LDLIBS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
