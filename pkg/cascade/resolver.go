// Package cascade decides which dependent geo fields must be cleared when an
// ancestor selection changes. The resolver works purely on path structure, so
// it behaves identically for a top-level group, an indexed party group, or a
// nested sub-object — anywhere a provinceId/municipalityId/sectorId triple
// lives.
package cascade

import "github.com/goliatone/go-actform/pkg/formpath"

// Canonical geo field names. Every location group in a form uses this triple;
// the resolver keys off the trailing segment only, never a whole-path list.
const (
	FieldProvince     = "provinceId"
	FieldMunicipality = "municipalityId"
	FieldSector       = "sectorId"
)

// OnFieldChanged returns the sibling paths that must be cleared atomically
// with the write to changed. A province change clears municipality and sector
// in the same update — one level per change event would let a render observe a
// sector pointing at a municipality that is about to go away.
func OnFieldChanged(changed formpath.Path) []formpath.Path {
	prefix := changed.Parent()
	switch changed.LeafField() {
	case FieldProvince:
		return []formpath.Path{
			prefix.Child(FieldMunicipality),
			prefix.Child(FieldSector),
		}
	case FieldMunicipality:
		return []formpath.Path{
			prefix.Child(FieldSector),
		}
	default:
		return nil
	}
}

// IsGeoField reports whether a field name belongs to the cascading triple.
func IsGeoField(name string) bool {
	switch name {
	case FieldProvince, FieldMunicipality, FieldSector:
		return true
	default:
		return false
	}
}
