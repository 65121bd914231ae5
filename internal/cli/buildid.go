package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/simconfig/internal/config"
)

// BuildIDOptions holds flags for the build-id command.
type BuildIDOptions struct {
	*RootOptions
	SourceOptions
}

// BuildIDEntry is one configuration's identity.
type BuildIDEntry struct {
	Config     string `json:"config"`
	BuildID    string `json:"build_id"`
	Executable string `json:"executable"`
}

// NewBuildIDCommand creates the build-id command.
func NewBuildIDCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &BuildIDOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "build-id <config>...",
		Short: "Print the build identity of configurations",
		Long: `Print the build identity of each configuration without writing anything.

The identity names the object directory configure would use. Two
configurations share an identity exactly when their parsed contents match.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuildID(opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	return cmd
}

func runBuildID(opts *BuildIDOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	root, err := opts.rootDir()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("resolving root: %v", err), err)
	}
	parseOpts, err := opts.parseOptions(root)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err.Error(), err)
	}

	entries := make([]BuildIDEntry, 0, len(paths))
	for _, path := range paths {
		cfg, err := opts.loadConfiguration(path, parseOpts)
		if err != nil {
			return formatter.Fail(ExitCommandError, errorCode(err), err.Error(), err)
		}
		id, err := config.BuildID(cfg)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
		}
		entries = append(entries, BuildIDEntry{Config: path, BuildID: id, Executable: cfg.Executable})
	}

	if formatter.Format == "json" {
		return formatter.Success(entries)
	}
	for _, e := range entries {
		fmt.Fprintf(formatter.Writer, "%s  %s\n", e.BuildID, e.Config)
	}
	return nil
}
