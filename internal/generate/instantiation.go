package generate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/simconfig/internal/config"
)

// elementRefKeys hold the name of another element; they render as a
// pointer to that element.
var elementRefKeys = map[string]bool{
	"lower_level": true,
	"L1I":         true,
	"L1D":         true,
	"ITLB":        true,
	"DTLB":        true,
}

// moduleRefKeys hold a module name; they render as that module's selector
// constant.
var moduleRefKeys = map[string]config.ModuleKind{
	"branch_predictor": config.KindBranch,
	"btb":              config.KindBTB,
	"prefetcher":       config.KindPrefetcher,
	"replacement":      config.KindReplacement,
}

// InstantiationLines renders core_inst.inc: one builder-initialized global
// per element, declared so that every lower level precedes its users.
func InstantiationLines(el config.Elements) ([]string, error) {
	lines := []string{
		`#include "cache.h"`,
		`#include "champsim_constants.h"`,
		`#include "dram_controller.h"`,
		`#include "ooo_cpu.h"`,
		`#include "ptw.h"`,
		`#include "vmem.h"`,
		"",
		"namespace champsim::configured",
		"{",
	}

	dram, err := builderLine("MEMORY_CONTROLLER", el.PMem)
	if err != nil {
		return nil, err
	}
	vmem, err := builderLine("VirtualMemory", el.VMem, fmt.Sprintf(".dram(&%s)", el.PMem.Name()))
	if err != nil {
		return nil, err
	}
	lines = append(lines, dram, vmem)

	ordered, err := orderByLowerLevel(el.PMem.Name(), el.Caches, el.PTWs)
	if err != nil {
		return nil, err
	}

	var cacheNames, ptwNames, coreNames []string
	for _, e := range ordered {
		var line string
		if e.ptw {
			line, err = builderLine("PageTableWalker", e.slice, fmt.Sprintf(".virtual_memory(&%s)", el.VMem.Name()))
			ptwNames = append(ptwNames, e.slice.Name())
		} else {
			line, err = builderLine("CACHE", e.slice)
			cacheNames = append(cacheNames, e.slice.Name())
		}
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	for _, core := range el.Cores {
		line, err := builderLine("O3_CPU", core)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
		coreNames = append(coreNames, core.Name())
	}

	lines = append(lines,
		"",
		fmt.Sprintf("std::vector<std::reference_wrapper<O3_CPU>> ooo_cpu{%s};", strings.Join(coreNames, ", ")),
		fmt.Sprintf("std::vector<std::reference_wrapper<CACHE>> caches{%s};", strings.Join(cacheNames, ", ")),
		fmt.Sprintf("std::vector<std::reference_wrapper<PageTableWalker>> ptws{%s};", strings.Join(ptwNames, ", ")),
		fmt.Sprintf("std::vector<std::reference_wrapper<MEMORY_CONTROLLER>> dram_controllers{%s};", el.PMem.Name()),
		"} // namespace champsim::configured",
	)
	return lines, nil
}

type orderedElement struct {
	slice config.Slice
	ptw   bool
}

// orderByLowerLevel sorts caches and page table walkers so each element
// comes after the element named by its lower_level. Elements keep their
// given order where dependencies allow.
func orderByLowerLevel(root string, caches, ptws []config.Slice) ([]orderedElement, error) {
	var all []orderedElement
	byName := map[string]int{}
	for _, c := range caches {
		byName[c.Name()] = len(all)
		all = append(all, orderedElement{slice: c})
	}
	for _, p := range ptws {
		byName[p.Name()] = len(all)
		all = append(all, orderedElement{slice: p, ptw: true})
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(all))
	var ordered []orderedElement

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return &config.Error{Slice: all[i].slice.Name(), Key: "lower_level", Message: "lower levels form a cycle"}
		}
		state[i] = visiting

		lower, err := all[i].slice.String("lower_level")
		if err != nil {
			return err
		}
		if lower != root {
			j, ok := byName[lower]
			if !ok {
				return &config.Error{Slice: all[i].slice.Name(), Key: "lower_level", Message: fmt.Sprintf("unknown element %q", lower)}
			}
			if err := visit(j); err != nil {
				return err
			}
		}

		state[i] = done
		ordered = append(ordered, all[i])
		return nil
	}

	for i := range all {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// builderLine renders `TYPE name{TYPE::Builder{}.name("name").key(value)...};`
// with keys in sorted order.
func builderLine(typ string, s config.Slice, extra ...string) (string, error) {
	name, err := s.String("name")
	if err != nil {
		return "", err
	}
	if !identifierPattern.MatchString(name) {
		return "", &config.Error{Slice: name, Key: "name", Message: "not a valid C++ identifier"}
	}

	keys := make([]string, 0, len(s))
	for k := range s {
		if k != "name" {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s{%s::Builder{}.name(%q)", typ, name, typ, name)
	for _, k := range keys {
		if !identifierPattern.MatchString(k) {
			return "", &config.Error{Slice: name, Key: k, Message: "parameter name is not a valid C++ identifier"}
		}
		arg, err := builderArg(name, k, s[k])
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, ".%s(%s)", k, arg)
	}
	for _, call := range extra {
		b.WriteString(call)
	}
	b.WriteString("};")
	return b.String(), nil
}

func builderArg(slice, key string, v any) (string, error) {
	if elementRefKeys[key] {
		ref, ok := v.(string)
		if !ok || !identifierPattern.MatchString(ref) {
			return "", &config.Error{Slice: slice, Key: key, Message: fmt.Sprintf("expected an element name, got %v", v)}
		}
		return "&" + ref, nil
	}

	if kind, ok := moduleRefKeys[key]; ok {
		mod, ok := v.(string)
		if !ok || !identifierPattern.MatchString(mod) {
			return "", &config.Error{Slice: slice, Key: key, Message: fmt.Sprintf("expected a module name, got %v", v)}
		}
		info := kinds[kind]
		return fmt.Sprintf("%s::%s%s", info.class, info.bit, mod), nil
	}

	arg, err := config.MarshalCanonical(v)
	if err != nil {
		return "", &config.Error{Slice: slice, Key: key, Message: err.Error()}
	}
	return string(arg), nil
}
