package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

const (
	SchemaTypeArray  = "ARRAY"
	SchemaTypeObject = "OBJECT"
)

// Properties is a property name to type descriptor mapping that remembers the
// order its keys were declared in.
type Properties = orderedmap.OrderedMap[string, any]

// ObjectSchema describes one structured record. PropertyOrdering always lists
// the keys of Properties in declaration order.
type ObjectSchema struct {
	Type             string      `json:"type"`
	Properties       *Properties `json:"properties"`
	PropertyOrdering []string    `json:"propertyOrdering"`
}

// ResponseSchema is the provider-facing schema: a list of ObjectSchema records.
type ResponseSchema struct {
	Type  string       `json:"type"`
	Items ObjectSchema `json:"items"`
}

// ParseProperties decodes a stored schema. It accepts a JSON object or a JSON
// string whose content is a JSON object, and keeps key order.
func ParseProperties(ctx context.Context, raw []byte) (*Properties, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fail(ctx, KindMalformedSchema, "schema is empty", nil, "5b0f2a4e-5c1d-4b83-9a57-2f4f7c0a6e11")
	}
	if !json.Valid(trimmed) {
		return nil, fail(ctx, KindMalformedSchema, "schema is not valid JSON", nil, "0c6a1f7e-8d6b-4a8c-b3d2-61c8f0e9a4b2")
	}

	if trimmed[0] == '"' {
		var inner string
		if err := json.Unmarshal(trimmed, &inner); err != nil {
			return nil, fail(ctx, KindMalformedSchema, "schema string could not be decoded", err, "a7e3c9d1-2f48-4b6e-8c0a-93d5e7f1b2c4")
		}
		trimmed = bytes.TrimSpace([]byte(inner))
		if len(trimmed) == 0 || !json.Valid(trimmed) {
			return nil, fail(ctx, KindMalformedSchema, "schema string does not contain valid JSON", nil, "e2b84f16-7a3c-4d9e-b05f-c8a1d6e3f972")
		}
	}

	if trimmed[0] != '{' {
		return nil, fail(ctx, KindMalformedSchema, "schema must be a JSON object", nil, "3f9d7b2a-6e1c-4c58-a4d0-b7e2c9f81a36")
	}

	props := orderedmap.New[string, any]()
	if err := props.UnmarshalJSON(trimmed); err != nil {
		return nil, fail(ctx, KindMalformedSchema, "schema could not be decoded", err, "c4a1e8f3-9b2d-4e7a-8f61-d3b5a2c7e094")
	}
	if props.Len() == 0 {
		return nil, fail(ctx, KindMalformedSchema, "schema must declare at least one property", nil, "8d2c6e4b-1a7f-4f93-b8e5-07c3a9d1f6e2")
	}
	return props, nil
}

// NewResponseSchema wraps props into the provider's array-of-object schema.
func NewResponseSchema(ctx context.Context, props *Properties) (*ResponseSchema, error) {
	if props == nil || props.Len() == 0 {
		return nil, fail(ctx, KindMalformedSchema, "schema must declare at least one property", errors.New("no properties"), "6a3e9f1c-4d7b-4b2a-9e85-f1c0d7a2b3e8")
	}

	ordering := make([]string, 0, props.Len())
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		ordering = append(ordering, pair.Key)
	}

	return &ResponseSchema{
		Type: SchemaTypeArray,
		Items: ObjectSchema{
			Type:             SchemaTypeObject,
			Properties:       props,
			PropertyOrdering: ordering,
		},
	}, nil
}

// NormalizeSchema decodes raw and builds the provider schema from it.
func NormalizeSchema(ctx context.Context, raw []byte) (*ResponseSchema, error) {
	props, err := ParseProperties(ctx, raw)
	if err != nil {
		return nil, err
	}
	return NewResponseSchema(ctx, props)
}
