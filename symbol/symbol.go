// Package symbol provides the typed (kind, index) identifiers naming the
// variables of a pose graph, and a registry that allocates them contiguously.
package symbol

import (
	"fmt"
	"sort"
)

// maxIndex is the largest index representable in the packed key layout.
const maxIndex = uint64(1)<<56 - 1

// invalidKind tags the sentinel symbol returned by Invalid.
const invalidKind = 'u'

// A Symbol identifies one variable of the graph by a single-character kind tag
// and a non-negative index, e.g. x0 for the first pose or l3 for the fourth
// landmark. Symbols are comparable values and usable as map keys.
type Symbol struct {
	kind  byte
	index uint64
}

// New creates the symbol for the given kind and index.
func New(kind byte, index uint64) Symbol {
	return Symbol{kind: kind, index: index}
}

// Invalid returns the sentinel symbol used wherever no frame applies yet.
func Invalid() Symbol {
	return Symbol{kind: invalidKind}
}

// IsValid reports whether s names a real variable rather than the sentinel or
// the zero value.
func (s Symbol) IsValid() bool {
	return s.kind != 0 && s != Invalid()
}

// Kind returns the kind tag.
func (s Symbol) Kind() byte {
	return s.kind
}

// Index returns the index within the kind.
func (s Symbol) Index() uint64 {
	return s.index
}

// Key packs the symbol into one integer, kind in the top byte and index in the
// low 56 bits. Integer order of keys agrees with Less.
func (s Symbol) Key() uint64 {
	return uint64(s.kind)<<56 | s.index&maxIndex
}

// String renders the canonical text form, e.g. "x12".
func (s Symbol) String() string {
	return fmt.Sprintf("%c%d", s.kind, s.index)
}

// Less orders symbols by kind first, then index.
func (s Symbol) Less(other Symbol) bool {
	if s.kind != other.kind {
		return s.kind < other.kind
	}
	return s.index < other.index
}

// Sort sorts symbols ascending in place.
func Sort(syms []Symbol) {
	sort.Slice(syms, func(i, j int) bool { return syms[i].Less(syms[j]) })
}
