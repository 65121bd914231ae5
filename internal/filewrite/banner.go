package filewrite

import "path/filepath"

var cxxGeneratedWarning = []string{
	"/***",
	" * THIS FILE IS AUTOMATICALLY GENERATED",
	" * Do not edit this file. It will be overwritten when the configure script is run.",
	" ***/",
	"",
}

var makeGeneratedWarning = []string{
	"###",
	"# THIS FILE IS AUTOMATICALLY GENERATED",
	"# Do not edit this file. It will be overwritten when the configure script is run.",
	"###",
	"",
}

// BannerFor returns the "generated, do not edit" lines for a destination:
// a C++ comment for .cc, .h and .inc files, a make comment for .mk files,
// and nothing otherwise.
func BannerFor(path string) []string {
	switch filepath.Ext(path) {
	case ".cc", ".h", ".inc":
		return cxxGeneratedWarning
	case ".mk":
		return makeGeneratedWarning
	default:
		return nil
	}
}
