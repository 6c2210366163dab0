package formstate

import (
	"strings"

	"github.com/goliatone/go-actform/pkg/formpath"
)

// Tree is the mutable value store for one form session. Values are scalars,
// slices of scalars, or slices of nested maps for repeatable groups. Keys are
// the canonical dotted form of their path; callers always address the tree
// through formpath.Path so the string form never leaks into engine logic.
//
// The tree is owned by a single session and is not safe for concurrent
// mutation; the session serializes access.
type Tree struct {
	values map[string]any
}

// Write is one pending path→value assignment.
type Write struct {
	Path  formpath.Path
	Value any
}

// Change groups writes and clears that must land together. Apply installs the
// whole change before any reader can observe the tree again, which is what
// keeps a cascaded municipality/sector clear atomic with the province write
// that triggered it.
type Change struct {
	Writes []Write
	Clears []formpath.Path
}

// NewTree returns an empty tree.
func NewTree() *Tree {
	return &Tree{values: make(map[string]any)}
}

// Get returns the stored value and whether it is present.
func (t *Tree) Get(path formpath.Path) (any, bool) {
	if t == nil || path.IsZero() {
		return nil, false
	}
	value, ok := t.values[path.String()]
	return value, ok
}

// Set stores a single value.
func (t *Tree) Set(path formpath.Path, value any) {
	if path.IsZero() {
		return
	}
	t.values[path.String()] = value
}

// Clear removes a single value. Clearing an absent path is a no-op.
func (t *Tree) Clear(path formpath.Path) {
	if path.IsZero() {
		return
	}
	delete(t.values, path.String())
}

// Apply installs every write and clear of the change in one step. Clears run
// after writes so a change can overwrite and prune in the same event without
// ordering surprises; a path present in both ends up cleared.
func (t *Tree) Apply(change Change) {
	for _, write := range change.Writes {
		t.Set(write.Path, write.Value)
	}
	for _, path := range change.Clears {
		t.Clear(path)
	}
}

// ClearPrefix removes every value at or below prefix. Used when a party group
// is removed: the whole subtree goes, no tombstones.
func (t *Tree) ClearPrefix(prefix formpath.Path) {
	if prefix.IsZero() {
		return
	}
	key := prefix.String()
	for stored := range t.values {
		if stored == key || strings.HasPrefix(stored, key+".") {
			delete(t.values, stored)
		}
	}
}

// MovePrefix rewrites every key under from to live under to. Roster removal
// shifts the indices of trailing groups down with this.
func (t *Tree) MovePrefix(from, to formpath.Path) {
	if from.IsZero() || to.IsZero() || from.Equal(to) {
		return
	}
	fromKey := from.String()
	toKey := to.String()
	moved := make(map[string]any)
	for stored, value := range t.values {
		if stored == fromKey {
			moved[toKey] = value
			delete(t.values, stored)
			continue
		}
		if strings.HasPrefix(stored, fromKey+".") {
			moved[toKey+stored[len(fromKey):]] = value
			delete(t.values, stored)
		}
	}
	for key, value := range moved {
		t.values[key] = value
	}
}

// PresentUnder reports whether any value at or below prefix is present.
func (t *Tree) PresentUnder(prefix formpath.Path) bool {
	if t == nil || prefix.IsZero() {
		return false
	}
	key := prefix.String()
	for stored, value := range t.values {
		if (stored == key || strings.HasPrefix(stored, key+".")) && nonEmpty(value) {
			return true
		}
	}
	return false
}

// Len returns the number of stored values.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.values)
}

// Snapshot returns a flat copy of the tree keyed by dotted path. The snapshot
// is what the submission pipeline serializes; mutating it never touches the
// live tree.
func (t *Tree) Snapshot() map[string]any {
	if t == nil || len(t.values) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(t.values))
	for key, value := range t.values {
		out[key] = value
	}
	return out
}

// Present reports whether the path holds a non-empty value: non-blank strings,
// any bool or number, and sequences with at least one element. A list counts
// as present on length alone; the emptiness of its items is not inspected.
func (t *Tree) Present(path formpath.Path) bool {
	value, ok := t.Get(path)
	if !ok {
		return false
	}
	return nonEmpty(value)
}

func nonEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case []any:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case []map[string]any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}
