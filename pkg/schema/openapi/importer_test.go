package openapi_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-actform/pkg/schema"
	"github.com/goliatone/go-actform/pkg/schema/openapi"
)

const intakeSpec = `
openapi: 3.0.3
info:
  title: Intake API
  version: 1.0.0
paths:
  /acts/compraventa:
    post:
      operationId: createCompraventa
      requestBody:
        content:
          application/json:
            schema:
              type: object
              required: [descripcion, precio]
              properties:
                descripcion:
                  type: string
                  title: Descripción del inmueble
                  minLength: 10
                precio:
                  type: number
                  minimum: 0
                moneda:
                  type: string
                  enum: [DOP, USD]
                provinciaId:
                  type: string
                  x-actform:
                    type: geoProvince
                    label: Provincia
                mejoras:
                  type: array
                  items:
                    type: object
                    required: [detalle]
                    properties:
                      detalle:
                        type: string
      responses:
        "201":
          description: created
`

func TestImporterFields(t *testing.T) {
	importer := openapi.New()
	fields, err := importer.Fields(context.Background(), []byte(intakeSpec), "createCompraventa")
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}

	var names []string
	for _, field := range fields {
		names = append(names, field.Name)
	}
	// Required first in declaration order, optional sorted after.
	want := []string{"descripcion", "precio", "mejoras", "moneda", "provinciaId"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}

	byName := make(map[string]schema.FieldSchema, len(fields))
	for _, field := range fields {
		byName[field.Name] = field
	}

	descripcion := byName["descripcion"]
	if !descripcion.Required || descripcion.Type != schema.FieldTypeText {
		t.Errorf("descripcion = %+v", descripcion)
	}
	if descripcion.MinLength == nil || *descripcion.MinLength != 10 {
		t.Errorf("descripcion minLength = %v", descripcion.MinLength)
	}
	if descripcion.Label != "Descripción del inmueble" {
		t.Errorf("descripcion label = %q", descripcion.Label)
	}

	precio := byName["precio"]
	if precio.Type != schema.FieldTypeNumber || precio.Minimum == nil || *precio.Minimum != 0 {
		t.Errorf("precio = %+v", precio)
	}

	moneda := byName["moneda"]
	if moneda.Type != schema.FieldTypeSelect {
		t.Errorf("moneda type = %q", moneda.Type)
	}
	wantOptions := []schema.Option{{Value: "DOP", Label: "DOP"}, {Value: "USD", Label: "USD"}}
	if diff := cmp.Diff(wantOptions, moneda.Options); diff != "" {
		t.Errorf("moneda options mismatch (-want +got):\n%s", diff)
	}

	provincia := byName["provinciaId"]
	if provincia.Type != schema.FieldTypeGeoProvince {
		t.Errorf("provinciaId type = %q, extension override not applied", provincia.Type)
	}
	if provincia.Label != "Provincia" {
		t.Errorf("provinciaId label = %q", provincia.Label)
	}

	mejoras := byName["mejoras"]
	if mejoras.Type != schema.FieldTypeObjectList {
		t.Fatalf("mejoras type = %q", mejoras.Type)
	}
	if len(mejoras.ItemSchema) != 1 || mejoras.ItemSchema[0].Name != "detalle" || !mejoras.ItemSchema[0].Required {
		t.Errorf("mejoras itemSchema = %+v", mejoras.ItemSchema)
	}
}

func TestImporterUnknownOperation(t *testing.T) {
	importer := openapi.New()
	_, err := importer.Fields(context.Background(), []byte(intakeSpec), "nope")
	if !errors.Is(err, openapi.ErrOperationNotFound) {
		t.Fatalf("err = %v, want ErrOperationNotFound", err)
	}
}

func TestImporterRejectsUnknownOverride(t *testing.T) {
	spec := `
openapi: 3.0.3
info: {title: t, version: "1"}
paths:
  /x:
    post:
      operationId: op
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                campo:
                  type: string
                  x-actform:
                    type: hologram
      responses:
        "200":
          description: ok
`
	_, err := openapi.New().Fields(context.Background(), []byte(spec), "op")
	if err == nil {
		t.Fatal("want error for unknown x-actform type")
	}
}

func TestImporterEmptyDocument(t *testing.T) {
	if _, err := openapi.New().Fields(context.Background(), nil, "op"); err == nil {
		t.Fatal("want error for empty document")
	}
}
