package prompt

import (
	"strings"

	"github.com/invopop/jsonschema"

	"promptforge/internal/domain/generation"
)

// ExportJSONSchema describes the structured output of a prompt as a draft
// 2020-12 JSON Schema: an array of objects with the declared properties, in
// declaration order.
func ExportJSONSchema(title string, props *generation.Properties) *jsonschema.Schema {
	item := &jsonschema.Schema{
		Type:                 "object",
		Properties:           jsonschema.NewProperties(),
		AdditionalProperties: jsonschema.FalseSchema,
	}
	if props != nil {
		for pair := props.Oldest(); pair != nil; pair = pair.Next() {
			item.Properties.Set(pair.Key, propertySchema(pair.Value))
			item.Required = append(item.Required, pair.Key)
		}
	}

	return &jsonschema.Schema{
		Version: jsonschema.Version,
		Title:   title,
		Type:    "array",
		Items:   item,
	}
}

// propertySchema maps a descriptor such as "string", "NUMBER" or
// {"type":"integer","description":"..."} onto a JSON Schema node.
func propertySchema(descriptor any) *jsonschema.Schema {
	switch d := descriptor.(type) {
	case string:
		return &jsonschema.Schema{Type: jsonType(d)}
	case map[string]any:
		node := &jsonschema.Schema{}
		if t, ok := d["type"].(string); ok {
			node.Type = jsonType(t)
		}
		if desc, ok := d["description"].(string); ok {
			node.Description = desc
		}
		if values, ok := d["enum"].([]any); ok {
			node.Enum = values
		}
		return node
	default:
		return &jsonschema.Schema{}
	}
}

func jsonType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "string", "text":
		return "string"
	case "number", "float", "double":
		return "number"
	case "integer", "int":
		return "integer"
	case "boolean", "bool":
		return "boolean"
	case "array", "list":
		return "array"
	case "object":
		return "object"
	default:
		return ""
	}
}
