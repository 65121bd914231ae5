package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/simconfig/internal/store"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
	Limit    int
	Pass     string
	File     string
}

// LastWriteResult reports the most recent pass that rewrote a file.
type LastWriteResult struct {
	Path   string `json:"path"`
	PassID string `json:"pass_id"`
	Seq    int64  `json:"seq"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded configure passes",
		Long: `List configure passes recorded with configure --db, newest first.

With --pass, show one pass and the outcome for each generated file.
With --file, show the most recent pass that rewrote that file.

Example:
  simconfig history --db passes.db
  simconfig history --db passes.db --pass 0193...
  simconfig history --db passes.db --file _configuration.mk`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum passes to list (0 for all)")
	cmd.Flags().StringVar(&opts.Pass, "pass", "", "show the files of one pass")
	cmd.Flags().StringVar(&opts.File, "file", "", "show the last pass that rewrote this file")
	_ = cmd.MarkFlagRequired("db")
	cmd.MarkFlagsMutuallyExclusive("pass", "file")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	// Opening would create an empty database.
	if _, err := os.Stat(opts.Database); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("database not found: %s", opts.Database), err)
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeStore, err.Error(), err)
	}
	defer st.Close()

	if opts.Pass != "" {
		pass, err := st.ReadPass(cmd.Context(), opts.Pass)
		if errors.Is(err, store.ErrPassNotFound) {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, err.Error(), err)
		}
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		return outputPass(formatter, pass)
	}

	if opts.File != "" {
		path, err := filepath.Abs(opts.File)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeFlag, err.Error(), err)
		}
		id, seq, ok, err := st.LastWrite(cmd.Context(), path)
		if err != nil {
			return formatter.Fail(ExitFailure, ErrCodeStore, err.Error(), err)
		}
		if !ok {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no recorded pass wrote %s", path), nil)
		}
		return outputLastWrite(formatter, LastWriteResult{Path: path, PassID: id, Seq: seq})
	}

	passes, err := st.ListPasses(cmd.Context(), opts.Limit)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeStore, err.Error(), err)
	}
	return outputPasses(formatter, passes)
}

func outputPasses(formatter *OutputFormatter, passes []store.Pass) error {
	if formatter.Format == "json" {
		return formatter.Success(passes)
	}

	w := formatter.Writer
	if len(passes) == 0 {
		fmt.Fprintln(w, "No passes recorded")
		return nil
	}
	for _, p := range passes {
		fmt.Fprintf(w, "%4d  %s  %s\n", p.Seq, p.ID, p.RecordedAt.Local().Format(time.DateTime))
		for _, b := range p.Builds {
			fmt.Fprintf(w, "      %s  %s\n", b.BuildID, b.Executable)
		}
	}
	return nil
}

func outputPass(formatter *OutputFormatter, pass store.Pass) error {
	if formatter.Format == "json" {
		return formatter.Success(pass)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "pass %s (seq %d)\n", pass.ID, pass.Seq)
	fmt.Fprintf(w, "root %s\n", pass.Root)
	for _, src := range pass.Sources {
		fmt.Fprintf(w, "source %s\n", src)
	}
	for _, b := range pass.Builds {
		fmt.Fprintf(w, "build %s  %s\n", b.BuildID, b.Executable)
	}
	for _, f := range pass.Files {
		status := "unchanged"
		if f.Written {
			status = "written"
		}
		fmt.Fprintf(w, "%-9s %s\n", status, f.Path)
	}
	return nil
}

func outputLastWrite(formatter *OutputFormatter, result LastWriteResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "%4d  %s  %s\n", result.Seq, result.PassID, result.Path)
	return nil
}
