package generate

import (
	"fmt"
	"iter"
	"regexp"
	"strings"

	"github.com/roach88/simconfig/internal/config"
)

// hook is one member function a module implements.
type hook struct {
	name   string
	ret    string
	params string
	args   string
}

// kindInfo describes how one module kind is mangled into its owning class.
type kindInfo struct {
	class    string // owning C++ class
	prefix   string // mangled function prefix
	bit      string // prefix of the per-module selector constant
	selector string // member holding the selected-module mask
	hooks    []hook
}

var kinds = map[config.ModuleKind]kindInfo{
	config.KindBranch: {
		class:    "O3_CPU",
		prefix:   "bpred",
		bit:      "b",
		selector: "bpred_type",
		hooks: []hook{
			{"initialize_branch_predictor", "void", "", ""},
			{"last_branch_result", "void", "uint64_t ip, uint64_t branch_target, uint8_t taken, uint8_t branch_type", "ip, branch_target, taken, branch_type"},
			{"predict_branch", "uint8_t", "uint64_t ip", "ip"},
		},
	},
	config.KindBTB: {
		class:    "O3_CPU",
		prefix:   "btb",
		bit:      "t",
		selector: "btb_type",
		hooks: []hook{
			{"initialize_btb", "void", "", ""},
			{"update_btb", "void", "uint64_t ip, uint64_t branch_target, uint8_t taken, uint8_t branch_type", "ip, branch_target, taken, branch_type"},
			{"btb_prediction", "std::pair<uint64_t, uint8_t>", "uint64_t ip", "ip"},
		},
	},
	config.KindPrefetcher: {
		class:    "CACHE",
		prefix:   "pref",
		bit:      "p",
		selector: "pref_type",
		hooks: []hook{
			{"prefetcher_initialize", "void", "", ""},
			{"prefetcher_cache_operate", "uint32_t", "uint64_t addr, uint64_t ip, uint8_t cache_hit, bool useful_prefetch, uint8_t type, uint32_t metadata_in", "addr, ip, cache_hit, useful_prefetch, type, metadata_in"},
			{"prefetcher_cache_fill", "uint32_t", "uint64_t addr, uint32_t set, uint32_t way, uint8_t prefetch, uint64_t evicted_addr, uint32_t metadata_in", "addr, set, way, prefetch, evicted_addr, metadata_in"},
			{"prefetcher_cycle_operate", "void", "", ""},
			{"prefetcher_final_stats", "void", "", ""},
		},
	},
	config.KindReplacement: {
		class:    "CACHE",
		prefix:   "repl",
		bit:      "r",
		selector: "repl_type",
		hooks: []hook{
			{"initialize_replacement", "void", "", ""},
			{"find_victim", "uint32_t", "uint32_t triggering_cpu, uint64_t instr_id, uint32_t set, const BLOCK* current_set, uint64_t ip, uint64_t full_addr, uint32_t type", "triggering_cpu, instr_id, set, current_set, ip, full_addr, type"},
			{"update_replacement_state", "void", "uint32_t triggering_cpu, uint32_t set, uint32_t way, uint64_t full_addr, uint64_t ip, uint64_t victim_addr, uint32_t type, uint8_t hit", "triggering_cpu, set, way, full_addr, ip, victim_addr, type, hit"},
			{"replacement_final_stats", "void", "", ""},
		},
	},
}

// maxModulesPerKind is the width of the selector mask.
const maxModulesPerKind = 64

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// CoreModuleLines renders the O3_CPU module declarations and definitions
// for the given branch predictors and BTBs.
func CoreModuleLines(branch, btb []config.Module) (decl, def []string, err error) {
	return moduleLines(map[config.ModuleKind][]config.Module{
		config.KindBranch: branch,
		config.KindBTB:    btb,
	}, config.KindBranch, config.KindBTB)
}

// CacheModuleLines renders the CACHE module declarations and definitions
// for the given prefetchers and replacement policies.
func CacheModuleLines(pref, repl []config.Module) (decl, def []string, err error) {
	return moduleLines(map[config.ModuleKind][]config.Module{
		config.KindPrefetcher:  pref,
		config.KindReplacement: repl,
	}, config.KindPrefetcher, config.KindReplacement)
}

func moduleLines(mods map[config.ModuleKind][]config.Module, order ...config.ModuleKind) (decl, def []string, err error) {
	for _, kind := range order {
		info := kinds[kind]
		if len(mods[kind]) > maxModulesPerKind {
			return nil, nil, &config.Error{Slice: string(kind), Message: fmt.Sprintf("at most %d modules per kind, got %d", maxModulesPerKind, len(mods[kind]))}
		}

		for i, m := range mods[kind] {
			if !identifierPattern.MatchString(m.Name) {
				return nil, nil, &config.Error{Slice: string(kind), Key: m.Name, Message: "module name is not a valid C++ identifier"}
			}
			decl = append(decl, fmt.Sprintf("constexpr static unsigned long long %s%s = 1ull << %d;", info.bit, m.Name, i))
			for _, h := range info.hooks {
				decl = append(decl, fmt.Sprintf("%s %s(%s);", h.ret, mangle(info, m, h), h.params))
			}
		}

		for _, h := range info.hooks {
			decl = append(decl, fmt.Sprintf("%s impl_%s(%s);", h.ret, h.name, h.params))
			def = append(def, dispatchLines(info, mods[kind], h)...)
		}
	}
	return decl, def, nil
}

// dispatchLines defines impl_<hook>, which calls the hook of every module
// selected in the owner's mask. For hooks with a result the last selected
// module wins.
func dispatchLines(info kindInfo, mods []config.Module, h hook) []string {
	lines := []string{
		fmt.Sprintf("%s %s::impl_%s(%s)", h.ret, info.class, h.name, h.params),
		"{",
	}
	returns := h.ret != "void"
	if returns {
		lines = append(lines, fmt.Sprintf("  %s result{};", h.ret))
	}
	for _, m := range mods {
		call := fmt.Sprintf("%s(%s);", mangle(info, m, h), h.args)
		if returns {
			call = "result = " + call
		}
		lines = append(lines,
			fmt.Sprintf("  if (%s & %s%s)", info.selector, info.bit, m.Name),
			"    "+call,
		)
	}
	if returns {
		lines = append(lines, "  return result;")
	}
	return append(lines, "}", "")
}

// ModuleOptsLines renders the preprocessor flags that rename a module's
// hooks to their mangled names when its sources are compiled.
func ModuleOptsLines(m config.Module) iter.Seq[string] {
	return func(yield func(string) bool) {
		info, ok := kinds[m.Kind]
		if !ok {
			return
		}
		for _, h := range info.hooks {
			if !yield(fmt.Sprintf("-D%s=%s", h.name, mangle(info, m, h))) {
				return
			}
		}
	}
}

func mangle(info kindInfo, m config.Module, h hook) string {
	return strings.Join([]string{info.prefix, m.Name, h.name}, "_")
}
