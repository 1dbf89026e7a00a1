package as3

import "strings"

// Path is the ordered location of a node within the schema tree. It is
// treated as immutable: Child always allocates a fresh slice.
type Path []string

// DefaultRootPath is used when New is called without WithPath.
var DefaultRootPath = Path{"data"}

// Child returns a new Path with seg appended.
func (p Path) Child(seg string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = seg
	return out
}

// Last returns the final segment, or "" for an empty path.
func (p Path) Last() string {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1]
}

// String renders the path for diagnostics, segments joined with "/".
func (p Path) String() string { return strings.Join(p, "/") }
