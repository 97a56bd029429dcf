// Package libkv layers typed, hierarchical containers over a flat sorted
// byte store.
//
// A container is a small descriptor: a key prefix plus the shape of the keys
// below it. Containers hold no state and are cheap to build at call sites.
// Leaf containers (Item) hold a value at exactly their prefix. Branch
// containers (Map, Vector, PriorityQueue, Set, List) map a key segment to an
// inner container whose prefix is the parent prefix followed by the encoded
// segment.
package libkv

import (
	"fmt"

	"github.com/AmitPr/libkv/codec"
	"github.com/AmitPr/libkv/key"
	"github.com/AmitPr/libkv/store"
)

// Kind tells leaf containers from branch containers.
type Kind uint8

const (
	Leaf Kind = iota + 1
	Branch
)

func (k Kind) String() string {
	switch k {
	case Leaf:
		return "leaf"
	case Branch:
		return "branch"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Schema describes the key shape below a container's prefix. Range
// iteration walks it level by level to rebuild typed keys.
type Schema struct {
	Kind Kind
	Name string
	// Segment and Inner are set for branches only.
	Segment key.Segment
	Inner   *Schema
	// MetadataAtPrefix marks a branch that keeps bookkeeping at exactly its
	// own prefix, such as a vector length.
	MetadataAtPrefix bool
}

// Skip reports whether an entry should be hidden at this level. hasSegment
// says whether the entry's key continues past this level's prefix.
func (s *Schema) Skip(hasSegment bool) bool {
	return s.Kind == Branch && !hasSegment && s.MetadataAtPrefix
}

// Depth is the number of key segments between this level and its leaf.
func (s *Schema) Depth() int {
	n := 0
	for l := s; l != nil && l.Kind == Branch; l = l.Inner {
		n++
	}
	return n
}

func (s *Schema) String() string {
	if s.Kind == Leaf {
		return s.Name
	}
	return s.Name + "<" + s.Inner.String() + ">"
}

// validate panics on a malformed schema. Schemas are built by constructors,
// so a failure here is a programming error.
func (s *Schema) validate() *Schema {
	for l := s; ; l = l.Inner {
		if l == nil {
			panic("libkv: nil schema")
		}
		switch l.Kind {
		case Leaf:
			if l.Segment != nil || l.Inner != nil {
				panic(fmt.Sprintf("libkv: leaf schema %q has a key segment", l.Name))
			}
			return s
		case Branch:
			if l.Segment == nil || l.Inner == nil {
				panic(fmt.Sprintf("libkv: branch schema %q needs a segment and an inner schema", l.Name))
			}
		default:
			panic(fmt.Sprintf("libkv: schema %q has invalid kind %s", l.Name, l.Kind))
		}
	}
}

func branchSchema(name string, seg key.Segment, inner *Schema, metadata bool) *Schema {
	s := &Schema{Kind: Branch, Name: name, Segment: seg, Inner: inner, MetadataAtPrefix: metadata}
	return s.validate()
}

// Container is implemented by every container. C is the container's own
// type and T the type of the values stored at its leaves.
type Container[C, T any] interface {
	Prefix() []byte
	Schema() *Schema
	// WithPrefix returns a copy of the container rooted at prefix.
	WithPrefix(prefix []byte) C
	// Values returns the codec of the leaf values.
	Values() codec.Codec[T]
}

// Bound is one endpoint of a typed key range.
type Bound[K any] struct {
	kind store.BoundKind
	key  K
}

func Unbounded[K any]() Bound[K]   { return Bound[K]{kind: store.Unbounded} }
func Included[K any](k K) Bound[K] { return Bound[K]{kind: store.Included, key: k} }
func Excluded[K any](k K) Bound[K] { return Bound[K]{kind: store.Excluded, key: k} }

func (b Bound[K]) Kind() store.BoundKind { return b.kind }
func (b Bound[K]) Key() K                { return b.key }

func join(prefix, suffix []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(suffix))
	return append(append(out, prefix...), suffix...)
}
