package filewrite

import (
	"iter"
	"slices"
)

// Part is one contribution to a generated file. Several parts may target
// the same Path; their lines are concatenated in the order recorded.
//
// Lines is consumed exactly once, when the buffer is flushed.
type Part struct {
	Path  string
	Lines iter.Seq[string]
}

// NewPart builds a Part from already materialized lines.
func NewPart(path string, lines []string) Part {
	return Part{Path: path, Lines: slices.Values(lines)}
}

// Buffer accumulates parts in an ordered map keyed by destination path.
// Parts for one path keep their relative order; paths are reported sorted.
//
// The zero value is ready to use.
type Buffer struct {
	index  map[string]int
	groups [][]Part
	paths  []string
}

// Add records parts. Nothing is ever replaced or removed except by Reset.
func (b *Buffer) Add(parts ...Part) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	for _, p := range parts {
		i, ok := b.index[p.Path]
		if !ok {
			i = len(b.groups)
			b.index[p.Path] = i
			b.groups = append(b.groups, nil)
			b.paths = append(b.paths, p.Path)
		}
		b.groups[i] = append(b.groups[i], p)
	}
}

// Len returns the number of recorded parts.
func (b *Buffer) Len() int {
	n := 0
	for _, g := range b.groups {
		n += len(g)
	}
	return n
}

// Paths returns every destination path, sorted.
func (b *Buffer) Paths() []string {
	paths := slices.Clone(b.paths)
	slices.Sort(paths)
	return paths
}

// Parts returns the parts recorded for path, in record order.
func (b *Buffer) Parts(path string) []Part {
	i, ok := b.index[path]
	if !ok {
		return nil
	}
	return slices.Clone(b.groups[i])
}

// Merged concatenates the lines of every part recorded for path. It drains
// the parts' line sequences, so call it once per path.
func (b *Buffer) Merged(path string) []string {
	var lines []string
	for _, p := range b.Parts(path) {
		if p.Lines == nil {
			continue
		}
		for line := range p.Lines {
			lines = append(lines, line)
		}
	}
	return lines
}

// Reset drops every recorded part.
func (b *Buffer) Reset() {
	b.index = nil
	b.groups = nil
	b.paths = nil
}
