package filewrite

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// FilesAreDifferent reports whether two files differ once leading and
// trailing whitespace is stripped from every line.
func FilesAreDifferent(oldLines, newLines []string) bool {
	if len(oldLines) != len(newLines) {
		return true
	}
	for i := range oldLines {
		if strings.TrimSpace(oldLines[i]) != strings.TrimSpace(newLines[i]) {
			return true
		}
	}
	return false
}

// WriteIfDifferent writes content to path unless a file already there holds
// the same lines modulo per-line whitespace. It reports whether it wrote.
//
// Parent directories are created as needed. The write replaces the whole
// file through a temporary sibling and a rename, so readers never see a
// partially written destination. A replaced file keeps its permissions; a
// new one gets 0644 less the umask.
func WriteIfDifferent(path, content string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create directory for %s: %w", path, err)
	}

	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		if !FilesAreDifferent(splitLines(string(existing)), splitLines(content)) {
			return false, nil
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return false, fmt.Errorf("read %s: %w", path, err)
	}

	if err := renameio.WriteFile(path, []byte(content), 0o644, renameio.WithExistingPermissions()); err != nil {
		return false, fmt.Errorf("write %s: %w", path, err)
	}
	return true, nil
}

// splitLines splits on newlines without producing a trailing empty line for
// a final newline.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
