package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "simconfig", cmd.Use)
	assert.Contains(t, cmd.Long, "build artifacts")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"configure", "build-id", "history"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)
}

func TestConfigureCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	configureCmd, _, err := cmd.Find([]string{"configure"})
	require.NoError(t, err)

	for _, name := range []string{"root", "bindir", "objdir", "module-dir", "overlay", "env-file", "source-dir", "db"} {
		assert.NotNil(t, configureCmd.Flags().Lookup(name), "flag --%s", name)
	}
	assert.Equal(t, ".", configureCmd.Flags().Lookup("root").DefValue)
	assert.Equal(t, "", configureCmd.Flags().Lookup("db").DefValue)
}

func TestBuildIDCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	buildIDCmd, _, err := cmd.Find([]string{"build-id"})
	require.NoError(t, err)

	assert.NotNil(t, buildIDCmd.Flags().Lookup("module-dir"))
	assert.Nil(t, buildIDCmd.Flags().Lookup("db"), "build-id never writes")
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)

	dbFlag := historyCmd.Flags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "invalid", "build-id", "config.json"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}
