package config

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
)

// ModuleKind tags a family of pluggable simulator modules.
type ModuleKind string

const (
	KindBranch      ModuleKind = "branch"
	KindBTB         ModuleKind = "btb"
	KindPrefetcher  ModuleKind = "pref"
	KindReplacement ModuleKind = "repl"
)

// ModuleKinds lists every kind in generation order.
var ModuleKinds = []ModuleKind{KindBranch, KindBTB, KindPrefetcher, KindReplacement}

// Module is one discovered module implementation.
type Module struct {
	Name string     `json:"name"`
	Kind ModuleKind `json:"kind"`
	Path string     `json:"path"` // directory holding the module sources
}

// Slice is one named section of the configuration (a core, a cache, the
// physical memory, ...). Values are whatever the source decoder produced;
// use the typed accessors rather than asserting directly.
type Slice map[string]any

// Elements groups the instantiable pieces of the simulated system.
type Elements struct {
	Cores  []Slice
	Caches []Slice
	PTWs   []Slice
	PMem   Slice
	VMem   Slice
}

// Configuration is the fully parsed description of one simulator build.
type Configuration struct {
	// Executable is the binary name, relative to the bin directory.
	Executable string

	Elements Elements

	// ModulesToCompile is the sorted set of module names referenced by
	// cores and caches.
	ModulesToCompile []string

	// ModuleInfo maps each kind to every discovered module of that kind.
	ModuleInfo map[ModuleKind]map[string]Module

	// ConfigFile holds the top-level scalar parameters (block_size,
	// page_size, heartbeat_frequency, num_cores, ...).
	ConfigFile Slice

	// Env holds raw build-flag values keyed by variable name.
	Env map[string]string
}

// Modules returns the modules of one kind, sorted by name.
func (c *Configuration) Modules(kind ModuleKind) []Module {
	byName := c.ModuleInfo[kind]
	mods := make([]Module, 0, len(byName))
	for _, m := range byName {
		mods = append(mods, m)
	}
	slices.SortFunc(mods, func(a, b Module) int { return compareKeysRFC8785(a.Name, b.Name) })
	return mods
}

// SelectedModules returns the modules of one kind that are listed in
// ModulesToCompile, sorted by name.
func (c *Configuration) SelectedModules(kind ModuleKind) []Module {
	var mods []Module
	for _, m := range c.Modules(kind) {
		if slices.Contains(c.ModulesToCompile, m.Name) {
			mods = append(mods, m)
		}
	}
	return mods
}

// canonicalValue flattens the configuration into plain maps and slices for
// MarshalCanonical.
func (c *Configuration) canonicalValue() map[string]any {
	moduleInfo := make(map[string]any, len(c.ModuleInfo))
	for kind, byName := range c.ModuleInfo {
		mods := make(map[string]any, len(byName))
		for name, m := range byName {
			mods[name] = map[string]any{
				"name": m.Name,
				"kind": string(m.Kind),
				"path": m.Path,
			}
		}
		moduleInfo[string(kind)] = mods
	}

	env := make(map[string]any, len(c.Env))
	for k, v := range c.Env {
		env[k] = v
	}

	selected := make([]any, len(c.ModulesToCompile))
	for i, name := range c.ModulesToCompile {
		selected[i] = name
	}

	return map[string]any{
		"executable": c.Executable,
		"elements": map[string]any{
			"cores":  slicesValue(c.Elements.Cores),
			"caches": slicesValue(c.Elements.Caches),
			"ptws":   slicesValue(c.Elements.PTWs),
			"pmem":   map[string]any(c.Elements.PMem),
			"vmem":   map[string]any(c.Elements.VMem),
		},
		"modules_to_compile": selected,
		"module_info":        moduleInfo,
		"config_file":        map[string]any(c.ConfigFile),
		"env":                env,
	}
}

func slicesValue(ss []Slice) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = map[string]any(s)
	}
	return out
}

// Has reports whether key is present.
func (s Slice) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// Name returns the slice's "name" field, or "" when absent.
func (s Slice) Name() string {
	name, _ := s["name"].(string)
	return name
}

// Uint returns key as a non-negative integer. A missing key or a value that
// is not an integral number yields *Error.
func (s Slice) Uint(key string) (uint64, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return 0, missingField(s.Name(), key)
	}
	n, ok := toUint(v)
	if !ok {
		return 0, &Error{Slice: s.Name(), Key: key, Message: fmt.Sprintf("expected a non-negative integer, got %v", v)}
	}
	return n, nil
}

// String returns key as a string. A missing key or a non-string value yields
// *Error.
func (s Slice) String(key string) (string, error) {
	v, ok := s[key]
	if !ok || v == nil {
		return "", missingField(s.Name(), key)
	}
	str, ok := v.(string)
	if !ok {
		return "", &Error{Slice: s.Name(), Key: key, Message: fmt.Sprintf("expected a string, got %T", v)}
	}
	return str, nil
}

func toUint(v any) (uint64, bool) {
	switch n := v.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(n.String(), 10, 64); err == nil {
			return u, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToUint(f)
	case string, bool:
		return 0, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if rv.Int() < 0 {
			return 0, false
		}
		return uint64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), true
	case reflect.Float32, reflect.Float64:
		return floatToUint(rv.Float())
	default:
		return 0, false
	}
}

func floatToUint(f float64) (uint64, bool) {
	if f < 0 || f != math.Trunc(f) || f >= (1 << 64) {
		return 0, false
	}
	return uint64(f), true
}
