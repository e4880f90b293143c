package generation

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSchemaPreservesDeclarationOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "two keys", raw: `{"name":"string","age":"string"}`, want: []string{"name", "age"}},
		{name: "reverse alphabetical", raw: `{"zeta":"STRING","beta":"STRING","alpha":"NUMBER"}`, want: []string{"zeta", "beta", "alpha"}},
		{name: "single key", raw: `{"title":"string"}`, want: []string{"title"}},
		{name: "nested descriptor", raw: `{"b":{"type":"STRING"},"a":{"type":"INTEGER"}}`, want: []string{"b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema, err := NormalizeSchema(context.Background(), []byte(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, SchemaTypeArray, schema.Type)
			assert.Equal(t, SchemaTypeObject, schema.Items.Type)
			assert.Equal(t, tt.want, schema.Items.PropertyOrdering)

			var keys []string
			for pair := schema.Items.Properties.Oldest(); pair != nil; pair = pair.Next() {
				keys = append(keys, pair.Key)
			}
			assert.Equal(t, schema.Items.PropertyOrdering, keys)
		})
	}
}

func TestNormalizeSchemaWireShape(t *testing.T) {
	schema, err := NormalizeSchema(context.Background(), []byte(`{"name": "string", "age": "string"}`))
	require.NoError(t, err)

	body, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Equal(t,
		`{"type":"ARRAY","items":{"type":"OBJECT","properties":{"name":"string","age":"string"},"propertyOrdering":["name","age"]}}`,
		string(body))
}

func TestNormalizeSchemaAcceptsEncodedString(t *testing.T) {
	raw, err := json.Marshal(`{"count":"string","label":"string"}`)
	require.NoError(t, err)

	schema, err := NormalizeSchema(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"count", "label"}, schema.Items.PropertyOrdering)
}

func TestNormalizeSchemaRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{name: "empty input", raw: ""},
		{name: "empty object", raw: "{}"},
		{name: "array", raw: `["name","age"]`},
		{name: "number", raw: "42"},
		{name: "null", raw: "null"},
		{name: "invalid json", raw: `{"name":`},
		{name: "string holding array", raw: `"[1,2]"`},
		{name: "string holding garbage", raw: `"not json"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSchema(context.Background(), []byte(tt.raw))
			require.Error(t, err)
			kind, ok := KindOf(err)
			require.True(t, ok)
			assert.Equal(t, KindMalformedSchema, kind)
		})
	}
}

func TestNewResponseSchemaRejectsNil(t *testing.T) {
	_, err := NewResponseSchema(context.Background(), nil)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindMalformedSchema, kind)
}
