package config

import (
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
)

// BuildFlagKeys are the environment variables forwarded to the build-flag
// file, in output order.
var BuildFlagKeys = []string{"CPPFLAGS", "CXXFLAGS", "LDFLAGS", "LDLIBS"}

// coreCacheNames are the caches every core owns, in instantiation order.
var coreCacheNames = []string{"L1I", "L1D", "L2C", "ITLB", "DTLB", "STLB"}

// ParseOptions controls module discovery and environment overrides.
type ParseOptions struct {
	// ModuleDirs lists, per kind, the directories whose subdirectories are
	// modules of that kind.
	ModuleDirs map[ModuleKind][]string

	// Environ overrides build-flag values found in the configuration.
	Environ map[string]string
}

// DefaultModuleDirs returns the module roots of a simulator checkout.
func DefaultModuleDirs(root string) map[ModuleKind][]string {
	return map[ModuleKind][]string{
		KindBranch:      {filepath.Join(root, "branch")},
		KindBTB:         {filepath.Join(root, "btb")},
		KindPrefetcher:  {filepath.Join(root, "prefetcher")},
		KindReplacement: {filepath.Join(root, "replacement")},
	}
}

// Parse turns a raw configuration document into a Configuration, filling
// defaults, expanding per-core elements and resolving module selections.
// raw is not modified.
func Parse(raw map[string]any, opts ParseOptions) (*Configuration, error) {
	raw = Merge(raw)
	if err := checkFinite("", "", raw); err != nil {
		return nil, err
	}

	configFile := Slice{
		"executable_name":     "champsim",
		"block_size":          64,
		"page_size":           4096,
		"heartbeat_frequency": 10000000,
	}
	for k, v := range raw {
		if isScalar(v) {
			configFile[k] = v
		}
	}

	executable, err := configFile.String("executable_name")
	if err != nil {
		return nil, err
	}

	cpus, err := objectList(raw, "ooo_cpu")
	if err != nil {
		return nil, err
	}

	numCores := uint64(max(len(cpus), 1))
	if configFile.Has("num_cores") {
		if numCores, err = configFile.Uint("num_cores"); err != nil {
			return nil, err
		}
		if numCores == 0 {
			return nil, &Error{Key: "num_cores", Message: "must be at least 1"}
		}
	}
	configFile["num_cores"] = numCores

	// Later cores repeat the last described one.
	if len(cpus) == 0 {
		cpus = []map[string]any{{}}
	}
	for uint64(len(cpus)) < numCores {
		cpus = append(cpus, Merge(cpus[len(cpus)-1]))
	}
	cpus = cpus[:numCores]

	var elements Elements
	for i, cpu := range cpus {
		prefix := fmt.Sprintf("cpu%d", i)

		core := coreDefaults()
		for k, v := range cpu {
			if isScalar(v) {
				core[k] = v
			}
		}
		core["name"] = prefix
		core["index"] = i
		for _, cacheName := range []string{"L1I", "L1D", "ITLB", "DTLB"} {
			core[cacheName] = prefix + "_" + cacheName
		}
		elements.Cores = append(elements.Cores, core)

		for _, cacheName := range coreCacheNames {
			cache := cacheDefaults(cacheName)
			overlay(cache, raw[cacheName])
			overlay(cache, cpu[cacheName])
			cache["name"] = prefix + "_" + cacheName
			cache["lower_level"] = coreLowerLevel(prefix, cacheName)
			elements.Caches = append(elements.Caches, cache)
		}

		ptw := ptwDefaults()
		overlay(ptw, raw["ptw"])
		overlay(ptw, cpu["PTW"])
		ptw["name"] = prefix + "_PTW"
		ptw["cpu"] = i
		ptw["lower_level"] = prefix + "_L1D"
		elements.PTWs = append(elements.PTWs, ptw)
	}

	llc := cacheDefaults("LLC")
	overlay(llc, raw["LLC"])
	llc["name"] = "LLC"
	llc["lower_level"] = "DRAM"
	elements.Caches = append(elements.Caches, llc)

	extra, err := objectList(raw, "caches")
	if err != nil {
		return nil, err
	}
	for _, c := range extra {
		name, ok := c["name"].(string)
		if !ok || name == "" {
			return nil, &Error{Slice: "caches", Key: "name", Message: "every cache needs a name"}
		}
		idx := slices.IndexFunc(elements.Caches, func(s Slice) bool { return s.Name() == name })
		if idx < 0 {
			cache := cacheDefaults("")
			overlay(cache, c)
			elements.Caches = append(elements.Caches, cache)
			continue
		}
		overlay(elements.Caches[idx], c)
	}

	elements.PMem = pmemDefaults()
	overlay(elements.PMem, raw["physical_memory"])
	elements.PMem["name"] = "DRAM"

	elements.VMem = vmemDefaults()
	overlay(elements.VMem, raw["virtual_memory"])
	elements.VMem["name"] = "vmem"

	moduleInfo, err := DiscoverModules(opts.ModuleDirs)
	if err != nil {
		return nil, err
	}

	selected, err := selectModules(elements, moduleInfo)
	if err != nil {
		return nil, err
	}

	env := map[string]string{}
	for _, key := range BuildFlagKeys {
		if v, ok := raw[key].(string); ok && v != "" {
			env[key] = v
		}
		if v, ok := opts.Environ[key]; ok && v != "" {
			env[key] = v
		}
	}

	return &Configuration{
		Executable:       executable,
		Elements:         elements,
		ModulesToCompile: selected,
		ModuleInfo:       moduleInfo,
		ConfigFile:       configFile,
		Env:              env,
	}, nil
}

// DiscoverModules lists the modules under each kind's directories. Every
// subdirectory is a module named by its base name; roots that do not exist
// are skipped.
func DiscoverModules(dirs map[ModuleKind][]string) (map[ModuleKind]map[string]Module, error) {
	info := make(map[ModuleKind]map[string]Module, len(ModuleKinds))
	for _, kind := range ModuleKinds {
		info[kind] = map[string]Module{}
		for _, root := range dirs[kind] {
			entries, err := os.ReadDir(root)
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("scanning %s modules in %s: %w", kind, root, err)
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					continue
				}
				path, err := filepath.Abs(filepath.Join(root, entry.Name()))
				if err != nil {
					return nil, fmt.Errorf("resolving module %s: %w", entry.Name(), err)
				}
				info[kind][entry.Name()] = Module{Name: entry.Name(), Kind: kind, Path: path}
			}
		}
	}
	return info, nil
}

// selectModules returns the sorted names of every module a core or cache
// refers to, failing on names with no discovered module of the right kind.
func selectModules(elements Elements, info map[ModuleKind]map[string]Module) ([]string, error) {
	type ref struct {
		key  string
		kind ModuleKind
	}
	coreRefs := []ref{{"branch_predictor", KindBranch}, {"btb", KindBTB}}
	cacheRefs := []ref{{"prefetcher", KindPrefetcher}, {"replacement", KindReplacement}}

	var selected []string
	resolve := func(s Slice, refs []ref) error {
		for _, r := range refs {
			name, err := s.String(r.key)
			if err != nil {
				return err
			}
			if _, ok := info[r.kind][name]; !ok {
				return &Error{Slice: s.Name(), Key: r.key, Message: fmt.Sprintf("unknown %s module %q", r.kind, name)}
			}
			if !slices.Contains(selected, name) {
				selected = append(selected, name)
			}
		}
		return nil
	}

	for _, core := range elements.Cores {
		if err := resolve(core, coreRefs); err != nil {
			return nil, err
		}
	}
	for _, cache := range elements.Caches {
		if err := resolve(cache, cacheRefs); err != nil {
			return nil, err
		}
	}

	slices.Sort(selected)
	return selected, nil
}

func coreLowerLevel(prefix, cacheName string) string {
	switch cacheName {
	case "L1I", "L1D":
		return prefix + "_L2C"
	case "L2C":
		return "LLC"
	case "ITLB", "DTLB":
		return prefix + "_STLB"
	default: // STLB
		return prefix + "_PTW"
	}
}

// objectList reads key as a list of objects; absent yields nil.
func objectList(raw map[string]any, key string) ([]map[string]any, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, &Error{Key: key, Message: fmt.Sprintf("expected a list, got %T", v)}
	}
	out := make([]map[string]any, 0, len(list))
	for i, elem := range list {
		obj, ok := elem.(map[string]any)
		if !ok {
			return nil, &Error{Key: fmt.Sprintf("%s[%d]", key, i), Message: fmt.Sprintf("expected an object, got %T", elem)}
		}
		out = append(out, obj)
	}
	return out, nil
}

// overlay copies the scalar fields of v, when v is an object, into s.
func overlay(s Slice, v any) {
	obj, ok := v.(map[string]any)
	if !ok {
		return
	}
	for k, val := range obj {
		if isScalar(val) {
			s[k] = val
		}
	}
}

// checkFinite rejects NaN and infinities anywhere in v. They have no
// canonical JSON form, so a configuration holding one has no build identity.
// Top-level objects name the slice; nested keys are joined with dots.
func checkFinite(slice, key string, v any) error {
	switch v := v.(type) {
	case map[string]any:
		for _, k := range slices.Sorted(maps.Keys(v)) {
			s, kk := slice, joinKey(key, k)
			if slice == "" && !isScalar(v[k]) {
				s, kk = k, ""
			}
			if err := checkFinite(s, kk, v[k]); err != nil {
				return err
			}
		}
	case []any:
		for i, elem := range v {
			if err := checkFinite(slice, fmt.Sprintf("%s[%d]", key, i), elem); err != nil {
				return err
			}
		}
	case float32:
		return checkFinite(slice, key, float64(v))
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &Error{Slice: slice, Key: key, Message: fmt.Sprintf("must be a finite number, got %v", v)}
		}
	}
	return nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

func isScalar(v any) bool {
	switch v.(type) {
	case map[string]any, []any, nil:
		return false
	default:
		return true
	}
}
