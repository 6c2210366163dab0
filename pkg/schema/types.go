package schema

// FieldType is the closed enumeration of control kinds the engine knows how to
// drive. Renderers switch over this set exhaustively; an unknown value is a
// bundle configuration error, not a fallback case.
type FieldType string

const (
	FieldTypeText           FieldType = "text"
	FieldTypeTextarea       FieldType = "textarea"
	FieldTypeBoolean        FieldType = "boolean"
	FieldTypeDate           FieldType = "date"
	FieldTypeTime           FieldType = "time"
	FieldTypeNumber         FieldType = "number"
	FieldTypeCurrency       FieldType = "currency"
	FieldTypeSelect         FieldType = "select"
	FieldTypeParty          FieldType = "partyReference"
	FieldTypeProfessional   FieldType = "professionalReference"
	FieldTypeGeoProvince    FieldType = "geoProvince"
	FieldTypeGeoMunicipality FieldType = "geoMunicipality"
	FieldTypeGeoSector      FieldType = "geoSector"
	FieldTypeList           FieldType = "list"
	FieldTypeObjectList     FieldType = "objectList"
)

// Known reports whether the type tag belongs to the supported set.
func (t FieldType) Known() bool {
	switch t {
	case FieldTypeText, FieldTypeTextarea, FieldTypeBoolean, FieldTypeDate,
		FieldTypeTime, FieldTypeNumber, FieldTypeCurrency, FieldTypeSelect,
		FieldTypeParty, FieldTypeProfessional, FieldTypeGeoProvince,
		FieldTypeGeoMunicipality, FieldTypeGeoSector, FieldTypeList,
		FieldTypeObjectList:
		return true
	default:
		return false
	}
}

// Option is one selectable entry of a select field.
type Option struct {
	Value string `json:"value" yaml:"value"`
	Label string `json:"label" yaml:"label"`
}

// FieldSchema describes one form field. Name values are stable identifiers
// used as storage keys; renaming one breaks stored drafts.
type FieldSchema struct {
	Name        string        `json:"name" yaml:"name"`
	Label       string        `json:"label,omitempty" yaml:"label,omitempty"`
	Type        FieldType     `json:"type" yaml:"type"`
	Required    bool          `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []Option      `json:"options,omitempty" yaml:"options,omitempty"`
	Subtype     string        `json:"subtype,omitempty" yaml:"subtype,omitempty"`
	ItemSchema  []FieldSchema `json:"itemSchema,omitempty" yaml:"itemSchema,omitempty"`
	VisibleWhen string        `json:"visibleWhen,omitempty" yaml:"visibleWhen,omitempty"`
	Help        string        `json:"help,omitempty" yaml:"help,omitempty"`
	Placeholder string        `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	MinLength   *int          `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   *int          `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Minimum     *float64      `json:"minimum,omitempty" yaml:"minimum,omitempty"`
	Maximum     *float64      `json:"maximum,omitempty" yaml:"maximum,omitempty"`
	Format      string        `json:"format,omitempty" yaml:"format,omitempty"`
}

// ActRoleConfig describes one party roster slot of a legal act: which role
// exists, whether more than one instance is allowed, and which professional
// requirements it drags in. Immutable for the lifetime of a form session.
type ActRoleConfig struct {
	Role            string `json:"role" yaml:"role"`
	Label           string `json:"label,omitempty" yaml:"label,omitempty"`
	Multiple        bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Required        bool   `json:"required,omitempty" yaml:"required,omitempty"`
	RequiresNotary  bool   `json:"requiresNotary,omitempty" yaml:"requiresNotary,omitempty"`
	RequiresLawyers bool   `json:"requiresLawyers,omitempty" yaml:"requiresLawyers,omitempty"`

	// EntityKind pins which directory roster autofill queries for this role.
	// Empty means "derive from the role name, default client".
	EntityKind string `json:"entityKind,omitempty" yaml:"entityKind,omitempty"`
}

// ActBundle is the static definition of one legal-act type: its roster
// configuration, field schema, pagination and document template. Loaded once
// per act and treated as read-only afterwards.
type ActBundle struct {
	Slug       string          `json:"slug" yaml:"slug"`
	Title      string          `json:"title" yaml:"title"`
	IsContract bool            `json:"isContract,omitempty" yaml:"isContract,omitempty"`
	Roles      []ActRoleConfig `json:"roles,omitempty" yaml:"roles,omitempty"`
	Fields     []FieldSchema   `json:"fields" yaml:"fields"`
	PageSize   int             `json:"pageSize,omitempty" yaml:"pageSize,omitempty"`
	Template   string          `json:"template,omitempty" yaml:"template,omitempty"`
}

// RequiresNotary reports whether any roster slot of the act mandates a notary.
func (b ActBundle) RequiresNotary() bool {
	for _, role := range b.Roles {
		if role.RequiresNotary {
			return true
		}
	}
	return false
}

// RoleConfig returns the configuration for a role name.
func (b ActBundle) RoleConfig(role string) (ActRoleConfig, bool) {
	for _, cfg := range b.Roles {
		if cfg.Role == role {
			return cfg, true
		}
	}
	return ActRoleConfig{}, false
}

// FieldByName walks the top-level field list for a name.
func (b ActBundle) FieldByName(name string) (FieldSchema, bool) {
	for _, field := range b.Fields {
		if field.Name == name {
			return field, true
		}
	}
	return FieldSchema{}, false
}
