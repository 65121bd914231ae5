package store

import "time"

// Pass is one configure run: the sources it read, one Build per
// configuration and the outcome for every generated file.
type Pass struct {
	ID         string    `json:"id"`
	Seq        int64     `json:"seq"`
	Root       string    `json:"root"`
	Sources    []string  `json:"sources"`
	RecordedAt time.Time `json:"recorded_at"`
	Builds     []Build   `json:"builds"`
	Files      []File    `json:"files,omitempty"`
}

// Build is one configuration's build identity and executable.
type Build struct {
	BuildID    string `json:"build_id"`
	Executable string `json:"executable"`
	ObjDir     string `json:"objdir"`
}

// File is one generated destination and whether the pass rewrote it.
type File struct {
	Path    string `json:"path"`
	Written bool   `json:"written"`
}

// Written counts the files the pass rewrote.
func (p Pass) Written() int {
	n := 0
	for _, f := range p.Files {
		if f.Written {
			n++
		}
	}
	return n
}
