// Package selector defines the record-addressing path built by the formula
// grammar. A Path is an ordered list of segments, each one step of field or
// element access into a JSON-like record. Resolving a path against a record
// is the job of the record access layer, not of this package.
package selector

import (
	"fmt"
	"strconv"
	"strings"
)

// Root is the marker that starts a selector in formula text.
const Root = "d"

// Segment is one step of a selector path. It is either an identifier
// (object field) or an index (array element). Segments are comparable
// with ==.
type Segment struct {
	name    string
	index   uint64
	isIndex bool
}

// Identifier returns a field access segment.
func Identifier(name string) Segment {
	return Segment{name: name}
}

// Index returns an array element segment.
func Index(i uint64) Segment {
	return Segment{index: i, isIndex: true}
}

// IsIndex reports whether the segment addresses an array element.
func (s Segment) IsIndex() bool { return s.isIndex }

// Name returns the field name of an identifier segment.
func (s Segment) Name() string { return s.name }

// Position returns the element index of an index segment.
func (s Segment) Position() uint64 { return s.index }

// String renders the segment the way it appears after the root marker.
func (s Segment) String() string {
	if s.isIndex {
		return "[" + strconv.FormatUint(s.index, 10) + "]"
	}
	return "." + s.name
}

// Compare orders segments: identifiers before indexes, identifiers by name,
// indexes by position.
func Compare(a, b Segment) int {
	switch {
	case a.isIndex != b.isIndex:
		if a.isIndex {
			return 1
		}
		return -1
	case a.isIndex:
		switch {
		case a.index < b.index:
			return -1
		case a.index > b.index:
			return 1
		}
		return 0
	default:
		return strings.Compare(a.name, b.name)
	}
}

// Path is an ordered, non-empty sequence of segments.
type Path []Segment

// New builds a path from segments. It fails on an empty segment list or an
// empty identifier.
func New(segments ...Segment) (Path, error) {
	if len(segments) == 0 {
		return nil, fmt.Errorf("selector path must have at least one segment")
	}
	for i, s := range segments {
		if !s.isIndex && s.name == "" {
			return nil, fmt.Errorf("selector segment %d has an empty name", i)
		}
	}
	p := make(Path, len(segments))
	copy(p, segments)
	return p, nil
}

// MustNew is like New but panics on error. Intended for tests and fixed
// tables.
func MustNew(segments ...Segment) Path {
	p, err := New(segments...)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path with its root marker, e.g. "d.items[0].price".
func (p Path) String() string {
	var sb strings.Builder
	sb.WriteString(Root)
	for _, s := range p {
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Equal reports whether two paths have the same segments in the same order.
func (p Path) Equal(o Path) bool {
	return ComparePaths(p, o) == 0
}

// ComparePaths orders paths segment by segment; a prefix sorts first.
func ComparePaths(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}
