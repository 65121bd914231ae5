package generate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/roach88/simconfig/internal/config"
)

// BuildFlagLines renders the build-level config.options: include paths for
// the generated headers, the simulator's own headers and the first vcpkg
// triplet found under root, followed by the configured flag values in
// config.BuildFlagKeys order.
func BuildFlagLines(incDir, root string, env map[string]string) ([]string, error) {
	lines := []string{
		"-I" + incDir,
		"-I" + filepath.Join(root, "inc"),
	}

	vcpkgDir := filepath.Join(root, "vcpkg_installed")
	entries, err := os.ReadDir(vcpkgDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("listing vcpkg triplets: %w", err)
	default:
		var triplets []string
		for _, e := range entries {
			if e.IsDir() && e.Name() != "vcpkg" {
				triplets = append(triplets, e.Name())
			}
		}
		slices.Sort(triplets)
		if len(triplets) > 0 {
			lines = append(lines, "-isystem "+filepath.Join(vcpkgDir, triplets[0], "include"))
		}
	}

	for _, key := range config.BuildFlagKeys {
		if v, ok := env[key]; ok {
			lines = append(lines, v)
		}
	}
	return lines, nil
}
