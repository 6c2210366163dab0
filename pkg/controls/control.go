// Package controls turns schema fields plus form state into the flat control
// list a front end binds to. This is the engine's entire rendering contract:
// a control bound to a value, replaced wholesale when the value changes. The
// visual widget library consuming these lives outside the engine.
package controls

import (
	"github.com/goliatone/go-actform/pkg/cascade"
	"github.com/goliatone/go-actform/pkg/formpath"
	"github.com/goliatone/go-actform/pkg/formstate"
	"github.com/goliatone/go-actform/pkg/geo"
	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/visibility"
)

// Control is one renderable input. Path is the storage identity; Name is the
// bare field name within its group.
type Control struct {
	Path     string          `json:"path"`
	Name     string          `json:"name"`
	Label    string          `json:"label,omitempty"`
	Help     string          `json:"help,omitempty"`
	Type     schema.FieldType `json:"type"`
	Required bool            `json:"required,omitempty"`
	ReadOnly bool            `json:"readOnly,omitempty"`
	Value    any             `json:"value,omitempty"`
	Options  []schema.Option `json:"options,omitempty"`
}

// ReadOnlyFunc reports whether the control at path renders locked. The
// session wires this to the owning group's override tracker.
type ReadOnlyFunc func(path formpath.Path) bool

// Builder assembles controls for a field list under a group prefix.
type Builder struct {
	tree      *formstate.Tree
	catalog   *geo.Catalog
	evaluator visibility.Evaluator
	readOnly  ReadOnlyFunc
}

// NewBuilder wires a control builder. readOnly may be nil when nothing locks.
func NewBuilder(tree *formstate.Tree, catalog *geo.Catalog, evaluator visibility.Evaluator, readOnly ReadOnlyFunc) *Builder {
	return &Builder{tree: tree, catalog: catalog, evaluator: evaluator, readOnly: readOnly}
}

// Build returns one control per visible field, bound to the current value.
// Geo selects get their options from the catalog, filtered by the group's
// current ancestor selection — an unselected ancestor yields an empty option
// list, the "nothing selectable yet" state.
func (b *Builder) Build(fields []schema.FieldSchema, prefix formpath.Path) []Control {
	siblings := b.siblingValues(fields, prefix)
	out := make([]Control, 0, len(fields))
	for _, field := range fields {
		if !b.fieldVisible(field, siblings) {
			continue
		}
		path := childPath(prefix, field.Name)
		value, _ := b.tree.Get(path)
		control := Control{
			Path:     path.String(),
			Name:     field.Name,
			Label:    field.Label,
			Help:     field.Help,
			Type:     field.Type,
			Required: field.Required,
			Value:    value,
			Options:  b.optionsFor(field, siblings),
		}
		if b.readOnly != nil {
			control.ReadOnly = b.readOnly(path)
		}
		out = append(out, control)
	}
	return out
}

func (b *Builder) siblingValues(fields []schema.FieldSchema, prefix formpath.Path) map[string]any {
	siblings := make(map[string]any, len(fields))
	for _, field := range fields {
		if value, ok := b.tree.Get(childPath(prefix, field.Name)); ok {
			siblings[field.Name] = value
		}
	}
	return siblings
}

func (b *Builder) fieldVisible(field schema.FieldSchema, siblings map[string]any) bool {
	if field.VisibleWhen == "" || b.evaluator == nil {
		return true
	}
	ok, err := b.evaluator.Visible(field.VisibleWhen, visibility.Scope{Siblings: siblings})
	if err != nil {
		return true
	}
	return ok
}

func (b *Builder) optionsFor(field schema.FieldSchema, siblings map[string]any) []schema.Option {
	switch field.Type {
	case schema.FieldTypeSelect:
		return field.Options
	case schema.FieldTypeGeoProvince:
		if b.catalog == nil {
			return nil
		}
		return nodeOptions(b.catalog.Provinces())
	case schema.FieldTypeGeoMunicipality:
		if b.catalog == nil {
			return nil
		}
		parent, _ := siblings[cascade.FieldProvince].(string)
		return nodeOptions(b.catalog.ChildrenOf(geo.TierMunicipality, parent))
	case schema.FieldTypeGeoSector:
		if b.catalog == nil {
			return nil
		}
		parent, _ := siblings[cascade.FieldMunicipality].(string)
		return nodeOptions(b.catalog.ChildrenOf(geo.TierSector, parent))
	default:
		return nil
	}
}

func nodeOptions(nodes []geo.Node) []schema.Option {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]schema.Option, 0, len(nodes))
	for _, node := range nodes {
		out = append(out, schema.Option{Value: node.ID, Label: node.Name})
	}
	return out
}

func childPath(prefix formpath.Path, name string) formpath.Path {
	if prefix.IsZero() {
		return formpath.Field(name)
	}
	return prefix.Child(name)
}
