// Package openapi imports field schemas from OpenAPI 3 documents. Practices
// that publish their intake API as OpenAPI can derive an act bundle's field
// list from an operation's request body instead of hand-writing it; the
// importer maps JSON-schema shapes onto the engine's field types and honors
// x-actform extensions for the mappings a plain schema cannot express.
package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-actform/pkg/schema"
)

// extensionKey is the vendor extension namespace the importer reads. A
// property may carry, for example:
//
//	x-actform:
//	  type: geoProvince
const extensionKey = "x-actform"

// ErrOperationNotFound reports a request for an operationId the document does
// not define.
var ErrOperationNotFound = errors.New("openapi: operation not found")

// Option configures an Importer.
type Option func(*Importer)

// WithValidation runs full document validation before import. Off by default:
// hand-maintained specs in the wild rarely validate cleanly and the importer
// only needs the request schemas.
func WithValidation() Option {
	return func(i *Importer) { i.validate = true }
}

// Importer converts OpenAPI operation request bodies into field schemas.
type Importer struct {
	validate bool
}

// New constructs an Importer.
func New(options ...Option) *Importer {
	i := &Importer{}
	for _, opt := range options {
		if opt != nil {
			opt(i)
		}
	}
	return i
}

// Fields loads the document and converts the request body schema of the
// operation identified by operationID into the engine's field list. Field
// order follows the schema's required list first, then the remaining
// properties alphabetically, which keeps imports deterministic.
func (i *Importer) Fields(ctx context.Context, document []byte, operationID string) ([]schema.FieldSchema, error) {
	if len(document) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if i.validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate document: %w", err)
		}
	}

	operation, err := findOperation(spec, operationID)
	if err != nil {
		return nil, err
	}

	body := requestSchema(operation.RequestBody)
	if body == nil || body.Value == nil {
		return nil, fmt.Errorf("openapi: operation %q has no request body schema", operationID)
	}
	return convertObject(body.Value)
}

func findOperation(spec *openapi3.T, operationID string) (*openapi3.Operation, error) {
	if spec.Paths == nil {
		return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
	}
	for _, item := range spec.Paths.Map() {
		if item == nil {
			continue
		}
		for _, operation := range item.Operations() {
			if operation != nil && operation.OperationID == operationID {
				return operation, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
}

func requestSchema(body *openapi3.RequestBodyRef) *openapi3.SchemaRef {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok {
			return mt.Schema
		}
	}
	for _, mt := range content {
		return mt.Schema
	}
	return nil
}

func convertObject(src *openapi3.Schema) ([]schema.FieldSchema, error) {
	if len(src.Properties) == 0 {
		return nil, errors.New("openapi: request schema has no properties")
	}

	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}

	fields := make([]schema.FieldSchema, 0, len(src.Properties))
	for _, name := range propertyOrder(src) {
		ref := src.Properties[name]
		if ref == nil || ref.Value == nil {
			continue
		}
		field, err := convertProperty(name, ref.Value, required[name])
		if err != nil {
			return nil, err
		}
		fields = append(fields, field)
	}
	return fields, nil
}

// propertyOrder lists required properties in declaration order of the
// required slice, then the rest sorted by name.
func propertyOrder(src *openapi3.Schema) []string {
	seen := make(map[string]bool, len(src.Properties))
	var order []string
	for _, name := range src.Required {
		if _, ok := src.Properties[name]; ok && !seen[name] {
			order = append(order, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range src.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

func convertProperty(name string, src *openapi3.Schema, required bool) (schema.FieldSchema, error) {
	field := schema.FieldSchema{
		Name:     name,
		Label:    src.Title,
		Help:     src.Description,
		Required: required,
		Format:   src.Format,
	}

	fieldType, err := mapType(name, src)
	if err != nil {
		return schema.FieldSchema{}, err
	}
	field.Type = fieldType

	if len(src.Enum) > 0 && field.Type == schema.FieldTypeSelect {
		for _, value := range src.Enum {
			text := fmt.Sprint(value)
			field.Options = append(field.Options, schema.Option{Value: text, Label: text})
		}
	}
	if src.MinLength != 0 {
		value := int(src.MinLength)
		field.MinLength = &value
	}
	if src.MaxLength != nil {
		value := int(*src.MaxLength)
		field.MaxLength = &value
	}
	if src.Min != nil {
		value := *src.Min
		field.Minimum = &value
	}
	if src.Max != nil {
		value := *src.Max
		field.Maximum = &value
	}

	if field.Type == schema.FieldTypeObjectList && src.Items != nil && src.Items.Value != nil {
		items, err := convertObject(src.Items.Value)
		if err != nil {
			return schema.FieldSchema{}, fmt.Errorf("openapi: items of %q: %w", name, err)
		}
		field.ItemSchema = items
	}

	applyExtension(&field, src.Extensions)
	return field, nil
}

// mapType resolves the engine field type from the JSON-schema type, format and
// any x-actform override. An override always wins when it names a known type.
func mapType(name string, src *openapi3.Schema) (schema.FieldType, error) {
	if override := extensionType(src.Extensions); override != "" {
		if !override.Known() {
			return "", fmt.Errorf("openapi: property %q: unknown x-actform type %q", name, override)
		}
		return override, nil
	}

	switch jsonType(src.Type) {
	case "string":
		switch src.Format {
		case "date":
			return schema.FieldTypeDate, nil
		case "time":
			return schema.FieldTypeTime, nil
		}
		if len(src.Enum) > 0 {
			return schema.FieldTypeSelect, nil
		}
		return schema.FieldTypeText, nil
	case "number", "integer":
		return schema.FieldTypeNumber, nil
	case "boolean":
		return schema.FieldTypeBoolean, nil
	case "array":
		if src.Items != nil && src.Items.Value != nil && jsonType(src.Items.Value.Type) == "object" {
			return schema.FieldTypeObjectList, nil
		}
		return schema.FieldTypeList, nil
	default:
		return "", fmt.Errorf("openapi: property %q: unsupported schema type %q", name, jsonType(src.Type))
	}
}

func jsonType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	values := types.Slice()
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func extensionType(ext map[string]any) schema.FieldType {
	nested, ok := ext[extensionKey].(map[string]any)
	if !ok {
		return ""
	}
	text, _ := nested["type"].(string)
	return schema.FieldType(text)
}

// applyExtension copies the remaining x-actform attributes onto the field.
func applyExtension(field *schema.FieldSchema, ext map[string]any) {
	nested, ok := ext[extensionKey].(map[string]any)
	if !ok {
		return
	}
	if text, ok := nested["label"].(string); ok && text != "" {
		field.Label = text
	}
	if text, ok := nested["placeholder"].(string); ok && text != "" {
		field.Placeholder = text
	}
	if text, ok := nested["subtype"].(string); ok && text != "" {
		field.Subtype = text
	}
	if text, ok := nested["visibleWhen"].(string); ok && text != "" {
		field.VisibleWhen = text
	}
}
