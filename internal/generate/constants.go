package generate

import (
	"errors"
	"fmt"

	"github.com/roach88/simconfig/internal/config"
)

// constant is one compile-time constant taken from a configuration field.
type constant struct {
	ctype string
	name  string
	key   string
}

var coreConstants = []constant{
	{"unsigned", "BLOCK_SIZE", "block_size"},
	{"unsigned", "PAGE_SIZE", "page_size"},
	{"uint64_t", "STAT_PRINTING_PERIOD", "heartbeat_frequency"},
	{"std::size_t", "NUM_CPUS", "num_cores"},
}

var dramConstants = []constant{
	{"uint64_t", "DRAM_IO_FREQ", "io_freq"},
	{"std::size_t", "DRAM_CHANNELS", "channels"},
	{"std::size_t", "DRAM_RANKS", "ranks"},
	{"std::size_t", "DRAM_BANKS", "banks"},
	{"std::size_t", "DRAM_ROWS", "rows"},
	{"std::size_t", "DRAM_COLUMNS", "columns"},
	{"std::size_t", "DRAM_CHANNEL_WIDTH", "channel_width"},
	{"std::size_t", "DRAM_WQ_SIZE", "wq_size"},
	{"std::size_t", "DRAM_RQ_SIZE", "rq_size"},
}

// ConstantsLines renders champsim_constants.h from the top-level
// parameters and the physical memory slice.
func ConstantsLines(core, pmem config.Slice) ([]string, error) {
	lines := []string{
		"#ifndef CHAMPSIM_CONSTANTS_H",
		"#define CHAMPSIM_CONSTANTS_H",
		"#include <cstdlib>",
		`#include "util/bits.h"`,
	}

	coreLines, err := constantLines(core, "config", coreConstants)
	if err != nil {
		return nil, err
	}
	lines = append(lines, coreLines...)
	lines = append(lines,
		"constexpr auto LOG2_BLOCK_SIZE = champsim::lg2(BLOCK_SIZE);",
		"constexpr auto LOG2_PAGE_SIZE = champsim::lg2(PAGE_SIZE);",
	)

	dramLines, err := constantLines(pmem, "physical_memory", dramConstants)
	if err != nil {
		return nil, err
	}
	lines = append(lines, dramLines...)

	return append(lines, "#endif"), nil
}

func constantLines(s config.Slice, sliceName string, constants []constant) ([]string, error) {
	lines := make([]string, 0, len(constants))
	for _, c := range constants {
		v, err := s.Uint(c.key)
		if err != nil {
			return nil, nameSlice(err, sliceName)
		}
		lines = append(lines, fmt.Sprintf("constexpr %s %s = %d;", c.ctype, c.name, v))
	}
	return lines, nil
}

// nameSlice fills in the slice name of an unnamed *config.Error.
func nameSlice(err error, sliceName string) error {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) && cfgErr.Slice == "" {
		cfgErr.Slice = sliceName
	}
	return err
}
