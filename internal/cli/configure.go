package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/simconfig/internal/config"
	"github.com/roach88/simconfig/internal/filewrite"
	"github.com/roach88/simconfig/internal/store"
)

// ConfigureOptions holds flags for the configure command.
type ConfigureOptions struct {
	*RootOptions
	SourceOptions

	BinDir     string
	ObjDir     string
	SourceDirs []string
	Database   string
}

// ConfigureResult is the configure command's output.
type ConfigureResult struct {
	PassID    string                `json:"pass_id,omitempty"`
	Builds    []filewrite.BuildInfo `json:"builds"`
	Written   []string              `json:"written"`
	Unchanged []string              `json:"unchanged"`
}

// NewConfigureCommand creates the configure command.
func NewConfigureCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConfigureOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "configure <config>...",
		Short: "Generate build artifacts for one or more configurations",
		Long: `Generate the build artifacts of every given configuration in one pass.

Each configuration is read (JSON, JSONC, YAML or CUE), merged with any
--overlay files, and expanded with defaults. Its artifacts land in
<objdir>/<build id>/inc; all executables share <root>/_configuration.mk.
Files whose contents did not change are left untouched.

Example:
  simconfig configure champsim_config.json
  simconfig configure --root ../champsim --db passes.db small.yaml big.cue`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure(opts, args, cmd)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVar(&opts.BinDir, "bindir", "", "directory for executables (default <root>/bin)")
	cmd.Flags().StringVar(&opts.ObjDir, "objdir", "", "base object directory (default <root>/.csconfig)")
	cmd.Flags().StringArrayVar(&opts.SourceDirs, "source-dir", nil, "extra source directory compiled into every executable")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the pass in this SQLite database")

	return cmd
}

func runConfigure(opts *ConfigureOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	logger := formatter.Logger()

	root, err := opts.rootDir()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("resolving root: %v", err), err)
	}
	parseOpts, err := opts.parseOptions(root)
	if err != nil {
		return formatter.Fail(ExitCommandError, errorCode(err), err.Error(), err)
	}

	// Every configuration is parsed before anything is generated.
	configs := make([]*config.Configuration, 0, len(paths))
	for _, path := range paths {
		cfg, err := opts.loadConfiguration(path, parseOpts)
		if err != nil {
			return formatter.Fail(ExitCommandError, errorCode(err), err.Error(), err)
		}
		formatter.VerboseLog("Loaded %s (%s)", path, cfg.Executable)
		configs = append(configs, cfg)
	}

	writer := filewrite.New(filewrite.Options{
		Root:       root,
		BinDir:     firstNonEmpty(opts.BinDir, filepath.Join(root, "bin")),
		ObjDir:     firstNonEmpty(opts.ObjDir, filepath.Join(root, ".csconfig")),
		SourceDirs: opts.SourceDirs,
		Logger:     logger,
	})

	var builds []filewrite.BuildInfo
	report, err := writer.Scope(func(w *filewrite.FileWriter) error {
		for i, cfg := range configs {
			info, err := w.WriteFiles(cfg, filewrite.PassOptions{})
			if err != nil {
				return fmt.Errorf("%s: %w", paths[i], err)
			}
			builds = append(builds, *info)
		}
		return nil
	})
	if err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), err)
		}
		return formatter.Fail(ExitFailure, ErrCodeWriteFailed, err.Error(), err)
	}

	result := ConfigureResult{
		Builds:    builds,
		Written:   nonNil(report.Written()),
		Unchanged: nonNil(report.Unchanged()),
	}

	if opts.Database != "" {
		pass, err := recordPass(cmd, opts, root, paths, builds, report)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		result.PassID = pass.ID
		logger.Debug("pass recorded", "id", pass.ID, "seq", pass.Seq)
	}

	return outputConfigureSuccess(formatter, result)
}

func recordPass(cmd *cobra.Command, opts *ConfigureOptions, root string, paths []string, builds []filewrite.BuildInfo, report filewrite.Report) (store.Pass, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return store.Pass{}, err
	}
	defer st.Close()

	pass := store.Pass{
		Root:    root,
		Sources: append(append([]string{}, paths...), opts.Overlays...),
	}
	for _, b := range builds {
		pass.Builds = append(pass.Builds, store.Build{BuildID: b.BuildID, Executable: b.Executable, ObjDir: b.ObjDir})
	}
	for _, f := range report.Files {
		pass.Files = append(pass.Files, store.File{Path: f.Path, Written: f.Written})
	}
	return st.RecordPass(cmd.Context(), pass)
}

func outputConfigureSuccess(formatter *OutputFormatter, result ConfigureResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, b := range result.Builds {
		fmt.Fprintf(w, "%s  %s\n", b.BuildID, b.Executable)
	}
	for _, path := range result.Written {
		formatter.VerboseLog("wrote %s", path)
	}
	fmt.Fprintf(w, "✓ %d file(s) written, %d unchanged\n", len(result.Written), len(result.Unchanged))
	if result.PassID != "" {
		fmt.Fprintf(w, "pass %s\n", result.PassID)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
