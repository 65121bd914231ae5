package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/roach88/simconfig/internal/config"
)

// SourceOptions holds the flags shared by every command that reads
// configurations.
type SourceOptions struct {
	Root       string
	ModuleDirs []string // kind=dir
	Overlays   []string
	EnvFiles   []string

	// LookupEnv reads the process environment. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

func (o *SourceOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Root, "root", ".", "simulator checkout containing src/, inc/ and the module directories")
	cmd.Flags().StringArrayVar(&o.ModuleDirs, "module-dir", nil, "extra module directory as kind=dir (kind: branch, btb, prefetcher, replacement)")
	cmd.Flags().StringArrayVar(&o.Overlays, "overlay", nil, "configuration merged on top of every positional configuration")
	cmd.Flags().StringArrayVar(&o.EnvFiles, "env-file", nil, "dotenv file with CPPFLAGS, CXXFLAGS, LDFLAGS or LDLIBS (default <root>/.env if present)")
}

// kindNames maps accepted --module-dir kinds to module kinds.
var kindNames = map[string]config.ModuleKind{
	"branch":      config.KindBranch,
	"btb":         config.KindBTB,
	"pref":        config.KindPrefetcher,
	"prefetcher":  config.KindPrefetcher,
	"repl":        config.KindReplacement,
	"replacement": config.KindReplacement,
}

// flagError marks a malformed flag value.
type flagError struct {
	flag    string
	message string
}

func (e *flagError) Error() string {
	return fmt.Sprintf("--%s: %s", e.flag, e.message)
}

// rootDir returns the absolute simulator root.
func (o *SourceOptions) rootDir() (string, error) {
	root := o.Root
	if root == "" {
		root = "."
	}
	return filepath.Abs(root)
}

// parseOptions resolves module directories and build-flag overrides.
// Process environment values win over env files, as with godotenv.Load.
func (o *SourceOptions) parseOptions(root string) (config.ParseOptions, error) {
	moduleDirs := config.DefaultModuleDirs(root)
	for _, arg := range o.ModuleDirs {
		name, dir, ok := strings.Cut(arg, "=")
		if !ok || dir == "" {
			return config.ParseOptions{}, &flagError{flag: "module-dir", message: fmt.Sprintf("expected kind=dir, got %q", arg)}
		}
		kind, ok := kindNames[name]
		if !ok {
			return config.ParseOptions{}, &flagError{flag: "module-dir", message: fmt.Sprintf("unknown module kind %q", name)}
		}
		moduleDirs[kind] = append(moduleDirs[kind], dir)
	}

	envFiles := o.EnvFiles
	if len(envFiles) == 0 {
		defaultEnv := filepath.Join(root, ".env")
		if _, err := os.Stat(defaultEnv); err == nil {
			envFiles = []string{defaultEnv}
		}
	}

	environ := map[string]string{}
	if len(envFiles) > 0 {
		fileEnv, err := godotenv.Read(envFiles...)
		if err != nil {
			return config.ParseOptions{}, fmt.Errorf("read env files: %w", err)
		}
		for _, key := range config.BuildFlagKeys {
			if v, ok := fileEnv[key]; ok {
				environ[key] = v
			}
		}
	}

	lookup := o.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range config.BuildFlagKeys {
		if v, ok := lookup(key); ok {
			environ[key] = v
		}
	}

	return config.ParseOptions{ModuleDirs: moduleDirs, Environ: environ}, nil
}

// loadConfiguration reads path and the overlays, merges them in order and
// parses the result.
func (o *SourceOptions) loadConfiguration(path string, parseOpts config.ParseOptions) (*config.Configuration, error) {
	var docs []map[string]any
	for _, source := range append([]string{path}, o.Overlays...) {
		doc, err := config.LoadFile(source)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return config.Parse(config.Merge(docs...), parseOpts)
}

// errorCode maps a loading or parsing error to an error code.
func errorCode(err error) string {
	var cfgErr *config.Error
	var flagErr *flagError
	switch {
	case errors.As(err, &flagErr):
		return ErrCodeFlag
	case errors.As(err, &cfgErr):
		return ErrCodeConfig
	case errors.Is(err, fs.ErrNotExist):
		return ErrCodeNotFound
	default:
		return ErrCodeGeneric
	}
}
