package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	Value string `json:"value"`
}

type sample struct {
	Name     string   `json:"name" description:"the name"`
	Count    int      `json:"count"`
	Ratio    float64  `json:"ratio,omitempty"`
	Tags     []string `json:"tags"`
	Nested   inner    `json:"nested"`
	Optional *inner   `json:"optional,omitempty"`
	Ignored  string   `json:"-"`
	hidden   string   //nolint:unused
}

func TestCreateSchema(t *testing.T) {
	schema := CreateSchema(sample{})

	assert.Equal(t, "object", schema["type"])

	props, ok := schema["properties"].(map[string]any)
	require.True(t, ok)

	assert.Contains(t, props, "name")
	assert.Contains(t, props, "count")
	assert.Contains(t, props, "ratio")
	assert.Contains(t, props, "tags")
	assert.Contains(t, props, "nested")
	assert.Contains(t, props, "optional")
	assert.NotContains(t, props, "Ignored")
	assert.NotContains(t, props, "hidden")

	name := props["name"].(map[string]any)
	assert.Equal(t, "string", name["type"])
	assert.Equal(t, "the name", name["description"])

	assert.Equal(t, "integer", props["count"].(map[string]any)["type"])
	assert.Equal(t, "number", props["ratio"].(map[string]any)["type"])
	assert.Equal(t, "array", props["tags"].(map[string]any)["type"])

	nested := props["nested"].(map[string]any)
	assert.Equal(t, "object", nested["type"])
	nestedProps := nested["properties"].(map[string]any)
	assert.Contains(t, nestedProps, "value")

	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Contains(t, required, "name")
	assert.Contains(t, required, "count")
	assert.Contains(t, required, "tags")
	// omitempty and pointer fields are not required.
	assert.NotContains(t, required, "ratio")
	assert.NotContains(t, required, "optional")
}

func TestCreateSchemaNonStruct(t *testing.T) {
	schema := CreateSchema("not a struct")

	assert.Equal(t, "object", schema["type"])
	assert.Empty(t, schema["properties"])
}

func TestCreateSchemaPointer(t *testing.T) {
	schema := CreateSchema(&sample{})
	props := schema["properties"].(map[string]any)
	assert.Contains(t, props, "name")
}
