package session

import (
	"github.com/goliatone/go-actform/pkg/cascade"
	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/hydrate"
	"github.com/goliatone/go-actform/pkg/schema"
)

// partyFieldLabels maps autofillable field names to their display labels.
// Names missing here fall back to the bare field name.
var partyFieldLabels = map[string]string{
	"name":             "Nombre completo",
	"nationalId":       "Cédula",
	"maskedNationalId": "Cédula",
	"nationality":      "Nacionalidad",
	"maritalStatus":    "Estado civil",
	"profession":       "Profesión",
	"occupation":       "Ocupación",
	"employer":         "Empleador",
	"address":          "Dirección",
	"provinceId":       "Provincia",
	"municipalityId":   "Municipio",
	"sectorId":         "Sector",
	"email":            "Correo electrónico",
	"phone":            "Teléfono",
	"birthDate":        "Fecha de nacimiento",
	"birthPlace":       "Lugar de nacimiento",
	"passport":         "Pasaporte",
	"licenseNumber":    "Matrícula",
	"office":           "Oficina",
	"jurisdiction":     "Jurisdicción",
}

// partyFields derives the control schema of a party group from the kind's
// autofillable field set. Geo fields keep their cascading select types so
// group addresses get the same province/municipality/sector behavior as
// top-level ones.
func partyFields(kind entity.Kind) []schema.FieldSchema {
	names := hydrate.Fields(kind)
	fields := make([]schema.FieldSchema, 0, len(names))
	for _, name := range names {
		field := schema.FieldSchema{
			Name:  name,
			Label: partyFieldLabels[name],
			Type:  schema.FieldTypeText,
		}
		if field.Label == "" {
			field.Label = name
		}
		switch name {
		case cascade.FieldProvince:
			field.Type = schema.FieldTypeGeoProvince
		case cascade.FieldMunicipality:
			field.Type = schema.FieldTypeGeoMunicipality
		case cascade.FieldSector:
			field.Type = schema.FieldTypeGeoSector
		case "birthDate":
			field.Type = schema.FieldTypeDate
		case "email":
			field.Format = "email"
		}
		fields = append(fields, field)
	}
	return fields
}
