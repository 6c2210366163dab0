// Package testsupport provides canned act bundles and directory data shared
// by tests and the demo CLI. Nothing here ships in a production wiring.
package testsupport

import (
	"github.com/goliatone/go-actform/pkg/entity"
	"github.com/goliatone/go-actform/pkg/schema"
)

// CompraventaBundle returns a ready-to-use sale contract definition covering
// every roster behavior: a singular required seller, repeatable buyers and a
// mandatory notary, plus geo fields and a conditional clause.
func CompraventaBundle() schema.ActBundle {
	min10 := 10
	zero := 0.0
	return schema.ActBundle{
		Slug:       "compraventa-inmueble",
		Title:      "Contrato de Compraventa de Inmueble",
		IsContract: true,
		PageSize:   4,
		Roles: []schema.ActRoleConfig{
			{Role: "vendedor", Label: "Vendedor", Required: true},
			{Role: "comprador", Label: "Comprador", Required: true, Multiple: true},
			{Role: "notario", Label: "Notario", RequiresNotary: true},
		},
		Fields: []schema.FieldSchema{
			{Name: "descripcion", Label: "Descripción del inmueble", Type: schema.FieldTypeText, Required: true, MinLength: &min10},
			{Name: "precio", Label: "Precio de venta (RD$)", Type: schema.FieldTypeCurrency, Required: true, Minimum: &zero},
			{Name: "financiado", Label: "¿Venta financiada?", Type: schema.FieldTypeBoolean},
			{Name: "cuotas", Label: "Número de cuotas", Type: schema.FieldTypeNumber, VisibleWhen: "financiado"},
			{Name: "provinceId", Label: "Provincia", Type: schema.FieldTypeGeoProvince, Required: true},
			{Name: "municipalityId", Label: "Municipio", Type: schema.FieldTypeGeoMunicipality, Required: true},
			{Name: "sectorId", Label: "Sector", Type: schema.FieldTypeGeoSector},
			{Name: "observaciones", Label: "Observaciones", Type: schema.FieldTypeTextarea},
		},
		Template: "ACTO No. {{ numero_asignado }}\n{{ descripcion }} por RD$ {{ precio }}.",
	}
}

// Directory returns an in-memory people directory with a handful of clients
// and professionals the sample bundles can resolve.
func Directory() *entity.MemoryDirectory {
	dir := entity.NewMemoryDirectory()
	for _, record := range []entity.Record{
		{ID: "cli-maria", Kind: entity.KindClient, Attributes: map[string]string{
			"name":           "María Altagracia Pérez",
			"nationalId":     "001-1234567-8",
			"nationality":    "Dominicana",
			"maritalStatus":  "Casada",
			"profession":     "Ingeniera Civil",
			"address":        "Calle El Conde 203",
			"provinceId":     "01",
			"municipalityId": "0101",
			"sectorId":       "010105",
			"email":          "maria.perez@example.do",
			"phone":          "809-555-0147",
			"birthDate":      "1984-03-12",
		}},
		{ID: "cli-jose", Kind: entity.KindClient, Attributes: map[string]string{
			"name":          "José Rafael Santana",
			"nationalId":    "031-7654321-0",
			"nationality":   "Dominicana",
			"maritalStatus": "Soltero",
			"profession":    "Contador",
			"provinceId":    "25",
		}},
		{ID: "cli-ana", Kind: entity.KindClient, Attributes: map[string]string{
			"name":       "Ana Iris Guzmán",
			"nationalId": "402-1112223-4",
		}},
		{ID: "not-then", Kind: entity.KindNotary, Attributes: map[string]string{
			"name":             "Lic. Ramón Then",
			"licenseNumber":    "4521",
			"maskedNationalId": "001-***4567-8",
			"office":           "Av. Abraham Lincoln 512",
			"jurisdiction":     "Distrito Nacional",
			"phone":            "809-555-0321",
			"email":            "rthen@notarias.do",
		}},
		{ID: "abg-reyes", Kind: entity.KindLawyer, Attributes: map[string]string{
			"name":          "Licda. Carmen Reyes",
			"licenseNumber": "18733",
		}},
	} {
		dir.Put(record)
	}
	return dir
}

// CompraventaBundleYAML is the YAML form of a minimal sale bundle, for loader
// round-trip tests and as a template for authoring real bundles.
const CompraventaBundleYAML = `slug: compraventa-inmueble
title: Contrato de Compraventa de Inmueble
isContract: true
pageSize: 4
roles:
  - role: vendedor
    label: Vendedor
    required: true
  - role: comprador
    label: Comprador
    required: true
    multiple: true
  - role: notario
    label: Notario
    requiresNotary: true
fields:
  - name: descripcion
    label: Descripción del inmueble
    type: text
    required: true
  - name: precio
    label: Precio de venta (RD$)
    type: currency
    required: true
  - name: provinceId
    label: Provincia
    type: geoProvince
    required: true
  - name: municipalityId
    label: Municipio
    type: geoMunicipality
  - name: sectorId
    label: Sector
    type: geoSector
`
