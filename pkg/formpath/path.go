package formpath

import (
	"fmt"
	"strconv"
	"strings"
)

// SegmentKind discriminates the two things a form path can address: a named
// field (or group) and a position inside a repeatable group list.
type SegmentKind int

const (
	SegmentField SegmentKind = iota
	SegmentIndex
)

// Segment is one step of a form path.
type Segment struct {
	Kind  SegmentKind
	Name  string
	Index int
}

// Path addresses a value inside a form-state tree as a sequence of typed
// segments. The dotted string form ("partes.comprador.1.provinceId") is derived
// only at the storage and render boundary via String; everything inside the
// engine manipulates segments, never raw strings.
type Path struct {
	segments []Segment
}

// Field starts a path at a named field or group.
func Field(name string) Path {
	return Path{segments: []Segment{{Kind: SegmentField, Name: name}}}
}

// New builds a path from pre-constructed segments.
func New(segments ...Segment) Path {
	if len(segments) == 0 {
		return Path{}
	}
	out := make([]Segment, len(segments))
	copy(out, segments)
	return Path{segments: out}
}

// Parse converts a dotted path back into typed segments. Purely numeric
// segments become index segments; everything else is a field segment. Empty
// segments are rejected.
func Parse(raw string) (Path, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Path{}, fmt.Errorf("formpath: empty path")
	}
	parts := strings.Split(trimmed, ".")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			return Path{}, fmt.Errorf("formpath: empty segment in %q", raw)
		}
		if idx, err := strconv.Atoi(part); err == nil && idx >= 0 {
			segments = append(segments, Segment{Kind: SegmentIndex, Index: idx})
			continue
		}
		segments = append(segments, Segment{Kind: SegmentField, Name: part})
	}
	return Path{segments: segments}, nil
}

// MustParse is Parse for static paths in wiring code and tests.
func MustParse(raw string) Path {
	p, err := Parse(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool { return len(p.segments) == 0 }

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// Segments returns a copy of the underlying segments.
func (p Path) Segments() []Segment {
	if len(p.segments) == 0 {
		return nil
	}
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	return out
}

// Child appends a field segment.
func (p Path) Child(name string) Path {
	return p.append(Segment{Kind: SegmentField, Name: name})
}

// At appends an index segment.
func (p Path) At(index int) Path {
	return p.append(Segment{Kind: SegmentIndex, Index: index})
}

// Join appends every segment of other.
func (p Path) Join(other Path) Path {
	if other.IsZero() {
		return p
	}
	segments := make([]Segment, 0, len(p.segments)+len(other.segments))
	segments = append(segments, p.segments...)
	segments = append(segments, other.segments...)
	return Path{segments: segments}
}

func (p Path) append(seg Segment) Path {
	segments := make([]Segment, 0, len(p.segments)+1)
	segments = append(segments, p.segments...)
	segments = append(segments, seg)
	return Path{segments: segments}
}

// Parent returns the path minus its last segment, or the zero path when there
// is nothing left to strip.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Path{}
	}
	return Path{segments: p.segments[:len(p.segments)-1]}
}

// Last returns the final segment. Calling Last on a zero path returns a zero
// segment.
func (p Path) Last() Segment {
	if len(p.segments) == 0 {
		return Segment{}
	}
	return p.segments[len(p.segments)-1]
}

// LeafField returns the trailing field name, or "" when the path is empty or
// ends in an index segment.
func (p Path) LeafField() string {
	last := p.Last()
	if last.Kind != SegmentField {
		return ""
	}
	return last.Name
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i, seg := range p.segments {
		if seg != other.segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix matches the leading segments of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if seg != p.segments[i] {
			return false
		}
	}
	return true
}

// String renders the dotted form used as the storage key and in rendered
// controls. Index segments render as their decimal value.
func (p Path) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	var builder strings.Builder
	for i, seg := range p.segments {
		if i > 0 {
			builder.WriteByte('.')
		}
		if seg.Kind == SegmentIndex {
			builder.WriteString(strconv.Itoa(seg.Index))
			continue
		}
		builder.WriteString(seg.Name)
	}
	return builder.String()
}
