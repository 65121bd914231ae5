package filewrite

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/roach88/simconfig/internal/config"
	"github.com/roach88/simconfig/internal/generate"
)

// MakefileName is the makefile fragment written at the simulator root.
const MakefileName = "_configuration.mk"

// Options configures a FileWriter.
type Options struct {
	// Root is the simulator checkout. Its src/ directory is always compiled,
	// inc/ and vcpkg_installed/ feed the build flags, and the makefile
	// fragment is written there.
	Root string

	// BinDir receives the executables.
	BinDir string

	// ObjDir is the base object directory; each build identity gets its own
	// subdirectory.
	ObjDir string

	// SourceDirs are compiled before Root/src.
	SourceDirs []string

	// Logger receives per-file decisions at debug level. Defaults to a
	// discarding logger.
	Logger *slog.Logger
}

// PassOptions overrides Options for one WriteFiles call. Empty fields fall
// back to the FileWriter's Options.
type PassOptions struct {
	BinDir     string
	ObjDir     string
	SourceDirs []string
}

// BuildInfo describes where one configuration's artifacts go.
type BuildInfo struct {
	BuildID    string `json:"build_id"`
	Executable string `json:"executable"`
	ObjDir     string `json:"objdir"`
	IncDir     string `json:"incdir"`
}

// FileStatus is the outcome for one destination.
type FileStatus struct {
	Path    string `json:"path"`
	Written bool   `json:"written"`
}

// Report lists every destination flushed by Finish, in flush order.
type Report struct {
	Files []FileStatus `json:"files"`
}

// Written returns the destinations that were rewritten.
func (r Report) Written() []string {
	var paths []string
	for _, f := range r.Files {
		if f.Written {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// Unchanged returns the destinations left as they were.
func (r Report) Unchanged() []string {
	var paths []string
	for _, f := range r.Files {
		if !f.Written {
			paths = append(paths, f.Path)
		}
	}
	return paths
}

// FileWriter accumulates the artifacts of one or more configurations and
// flushes them together.
type FileWriter struct {
	opts   Options
	parts  Buffer
	logger *slog.Logger
}

// New creates a FileWriter.
func New(opts Options) *FileWriter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &FileWriter{opts: opts, logger: logger}
}

// Begin starts a pass by dropping any parts left from a previous one.
func (w *FileWriter) Begin() {
	w.parts.Reset()
}

// Pending returns the destinations recorded so far, sorted.
func (w *FileWriter) Pending() []string {
	return w.parts.Paths()
}

// WriteFiles runs every generator over cfg and records their output. If a
// generator fails, nothing from cfg is recorded.
func (w *FileWriter) WriteFiles(cfg *config.Configuration, pass PassOptions) (*BuildInfo, error) {
	buildID, err := config.BuildID(cfg)
	if err != nil {
		return nil, err
	}

	binDir := firstNonEmpty(pass.BinDir, w.opts.BinDir)
	objBase := firstNonEmpty(pass.ObjDir, w.opts.ObjDir)
	srcDirs := pass.SourceDirs
	if len(srcDirs) == 0 {
		srcDirs = w.opts.SourceDirs
	}
	srcDirs = append(slices.Clone(srcDirs), filepath.Join(w.opts.Root, "src"))

	objDir, err := filepath.Abs(filepath.Join(objBase, buildID))
	if err != nil {
		return nil, fmt.Errorf("resolving object directory: %w", err)
	}
	incDir := filepath.Join(objDir, "inc")
	info := &BuildInfo{
		BuildID:    buildID,
		Executable: generate.ExecutablePath(binDir, cfg.Executable),
		ObjDir:     objDir,
		IncDir:     incDir,
	}

	var parts []Part

	// Instantiation file
	inst, err := generate.InstantiationLines(cfg.Elements)
	if err != nil {
		return nil, err
	}
	parts = append(parts, NewPart(filepath.Join(incDir, "core_inst.inc"), inst))

	// Constants header
	constants, err := generate.ConstantsLines(cfg.ConfigFile, cfg.Elements.PMem)
	if err != nil {
		return nil, err
	}
	parts = append(parts, NewPart(filepath.Join(incDir, "champsim_constants.h"), constants))

	// Module name mangling
	moduleParts, err := moduleInformation(incDir, cfg)
	if err != nil {
		return nil, err
	}
	parts = append(parts, moduleParts...)

	// Build-level compile flags
	flags, err := generate.BuildFlagLines(incDir, w.opts.Root, cfg.Env)
	if err != nil {
		return nil, err
	}
	parts = append(parts, NewPart(filepath.Join(incDir, "config.options"), flags))

	// Makefile generation
	var selected []config.Module
	for _, kind := range config.ModuleKinds {
		selected = append(selected, cfg.SelectedModules(kind)...)
	}
	makefile := generate.MakefileLines(objDir, buildID, info.Executable, srcDirs, selected)
	parts = append(parts, NewPart(w.MakefilePath(), makefile))

	w.parts.Add(parts...)
	w.logger.Debug("configuration collected",
		"build_id", buildID,
		"executable", info.Executable,
		"parts", len(parts),
	)
	return info, nil
}

// MakefilePath is the makefile fragment destination.
func (w *FileWriter) MakefilePath() string {
	path, err := filepath.Abs(filepath.Join(w.opts.Root, MakefileName))
	if err != nil {
		return filepath.Join(w.opts.Root, MakefileName)
	}
	return path
}

func moduleInformation(incDir string, cfg *config.Configuration) ([]Part, error) {
	coreDecl, coreDef, err := generate.CoreModuleLines(
		cfg.SelectedModules(config.KindBranch),
		cfg.SelectedModules(config.KindBTB),
	)
	if err != nil {
		return nil, err
	}
	cacheDecl, cacheDef, err := generate.CacheModuleLines(
		cfg.SelectedModules(config.KindPrefetcher),
		cfg.SelectedModules(config.KindReplacement),
	)
	if err != nil {
		return nil, err
	}

	parts := []Part{
		NewPart(filepath.Join(incDir, "ooo_cpu_module_decl.inc"), coreDecl),
		NewPart(filepath.Join(incDir, "ooo_cpu_module_def.inc"), coreDef),
		NewPart(filepath.Join(incDir, "cache_module_decl.inc"), cacheDecl),
		NewPart(filepath.Join(incDir, "cache_module_def.inc"), cacheDef),
	}
	for _, kind := range config.ModuleKinds {
		for _, m := range cfg.SelectedModules(kind) {
			parts = append(parts, Part{
				Path:  generate.ModuleOptsPath(incDir, m),
				Lines: generate.ModuleOptsLines(m),
			})
		}
	}
	return parts, nil
}

// Finish writes every recorded destination and clears the buffer. Files
// written before a failing destination stay written.
func (w *FileWriter) Finish() (Report, error) {
	defer w.parts.Reset()

	var report Report
	for _, path := range w.parts.Paths() {
		lines := append(slices.Clone(BannerFor(path)), w.parts.Merged(path)...)
		written, err := WriteIfDifferent(path, strings.Join(lines, "\n"))
		if err != nil {
			return report, err
		}
		report.Files = append(report.Files, FileStatus{Path: path, Written: written})
		w.logger.Debug("generated file", "path", path, "written", written)
	}

	w.logger.Info("generated files flushed",
		"written", len(report.Written()),
		"unchanged", len(report.Unchanged()),
	)
	return report, nil
}

// Scope runs fn inside a pass: the buffer is cleared first and flushed only
// if fn returns nil. On error nothing from the pass is written.
func (w *FileWriter) Scope(fn func(*FileWriter) error) (Report, error) {
	w.Begin()
	if err := fn(w); err != nil {
		w.parts.Reset()
		return Report{}, err
	}
	return w.Finish()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
