package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simconfig/internal/store"
)

func TestHistoryMissingDatabaseFlag(t *testing.T) {
	_, _, err := execute(t, "history")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db")
}

func TestHistoryNonExistentDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")

	out, _, err := execute(t, "history", "--db", path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
	assert.NoFileExists(t, path)
}

func TestHistoryEmptyDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passes.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "history", "--db", path)
	require.NoError(t, err)
	assert.Contains(t, out, "No passes recorded")
}

func TestHistoryAfterConfigure(t *testing.T) {
	clearBuildFlags(t)
	root := simRoot(t)
	cfg := writeConfig(t, root, "config.json", `{"executable_name": "champsim"}`)
	db := filepath.Join(t.TempDir(), "passes.db")

	for range 2 {
		_, _, err := execute(t, "configure", "--root", root, "--db", db, cfg)
		require.NoError(t, err)
	}

	out, _, err := execute(t, "--format", "json", "history", "--db", db)
	require.NoError(t, err)

	var resp struct {
		Status string       `json:"status"`
		Data   []store.Pass `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(2), resp.Data[0].Seq, "newest first")
	assert.Equal(t, filepath.Join(root, "bin", "champsim"), resp.Data[0].Builds[0].Executable)

	// the second pass rewrote nothing
	out, _, err = execute(t, "history", "--db", db, "--pass", resp.Data[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "pass "+resp.Data[0].ID)
	assert.Contains(t, out, "unchanged "+filepath.Join(root, "_configuration.mk"))
	assert.NotContains(t, out, "written ")
}

func TestHistoryUnknownPass(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passes.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, _, err := execute(t, "history", "--db", path, "--pass", "nope")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "pass not found")
}

func TestHistoryLastWrite(t *testing.T) {
	clearBuildFlags(t)
	root := simRoot(t)
	cfg := writeConfig(t, root, "config.json", `{"executable_name": "champsim"}`)
	db := filepath.Join(t.TempDir(), "passes.db")
	makefile := filepath.Join(root, "_configuration.mk")

	first, _, err := execute(t, "--format", "json", "configure", "--root", root, "--db", db, cfg)
	require.NoError(t, err)
	firstPass := decodeConfigureResult(t, first).PassID
	_, _, err = execute(t, "configure", "--root", root, "--db", db, cfg)
	require.NoError(t, err)

	out, _, err := execute(t, "--format", "json", "history", "--db", db, "--file", makefile)
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   LastWriteResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, firstPass, resp.Data.PassID, "the unchanged second pass does not count")
	assert.Equal(t, int64(1), resp.Data.Seq)
	assert.Equal(t, makefile, resp.Data.Path)

	out, _, err = execute(t, "history", "--db", db, "--file", filepath.Join(root, "never.h"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E002]")
	assert.Contains(t, out, "never.h")
}

func TestHistoryPassAndFileConflict(t *testing.T) {
	path := filepath.Join(t.TempDir(), "passes.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	_, _, err = execute(t, "history", "--db", path, "--pass", "x", "--file", "y")
	require.Error(t, err)
}
