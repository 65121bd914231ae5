package generate

import (
	"fmt"
	"path/filepath"

	"github.com/roach88/simconfig/internal/config"
)

// MakefileLines renders the makefile fragment for one executable: object
// lists for the core sources and each selected module, pattern rules that
// apply the generated config.options files, and the link rule.
//
// Variables are prefixed with the build identity so fragments of several
// executables can share one makefile.
func MakefileLines(objDir, buildID, executable string, srcDirs []string, modules []config.Module) []string {
	incDir := filepath.Join(objDir, "inc")
	buildOpts := filepath.Join(incDir, "config.options")
	objVar := buildID + "_obj"
	moduleObjVar := buildID + "_module_obj"
	dirsVar := buildID + "_dirs"

	lines := []string{
		fmt.Sprintf("# %s: %s", buildID, executable),
		fmt.Sprintf("%s_objdir = %s", buildID, objDir),
	}

	var rules []string
	for i, src := range srcDirs {
		dest := filepath.Join(objDir, "obj", fmt.Sprint(i))
		lines = append(lines,
			fmt.Sprintf("%s += $(patsubst %s/%%.cc,%s/%%.o,$(wildcard %s/*.cc))", objVar, src, dest, src),
			fmt.Sprintf("%s += %s", dirsVar, dest),
		)
		rules = append(rules,
			fmt.Sprintf("%s/%%.o: %s/%%.cc | %s", dest, src, dest),
			fmt.Sprintf("\t$(CXX) $(CPPFLAGS) $(CXXFLAGS) $(shell cat %s) -c -o $@ $<", buildOpts),
		)
	}

	for _, m := range modules {
		dest := filepath.Join(objDir, "modules", m.Name)
		moduleOpts := ModuleOptsPath(incDir, m)
		lines = append(lines,
			fmt.Sprintf("%s += $(patsubst %s/%%.cc,%s/%%.o,$(wildcard %s/*.cc))", moduleObjVar, m.Path, dest, m.Path),
			fmt.Sprintf("%s += %s", dirsVar, dest),
		)
		rules = append(rules,
			fmt.Sprintf("%s/%%.o: %s/%%.cc | %s", dest, m.Path, dest),
			fmt.Sprintf("\t$(CXX) $(CPPFLAGS) $(CXXFLAGS) $(shell cat %s) $(shell cat %s) -c -o $@ $<", buildOpts, moduleOpts),
		)
	}

	lines = append(lines, rules...)
	lines = append(lines,
		fmt.Sprintf("$(%s):", dirsVar),
		"\tmkdir -p $@",
		fmt.Sprintf("%s: $(%s) $(%s)", executable, objVar, moduleObjVar),
		"\tmkdir -p $(dir $@)",
		"\t$(CXX) $(LDFLAGS) -o $@ $^ $(LDLIBS)",
		fmt.Sprintf("executable_name += %s", executable),
		fmt.Sprintf("build_dirs += $(%s)", dirsVar),
		"",
	)
	return lines
}

// ModuleOptsPath is where a module's config.options lands in an include
// directory.
func ModuleOptsPath(incDir string, m config.Module) string {
	return filepath.Join(incDir, m.Name, "config.options")
}

// ExecutablePath is the makefile target of an executable.
func ExecutablePath(binDir, executable string) string {
	return filepath.Join(binDir, executable)
}
