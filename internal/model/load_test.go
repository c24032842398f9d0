package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlDoc = `
id: m1
name: Example
namespace: https://example.org/dmn
inputs:
  - id: A
    name: A
    typeRef: number
constants:
  - id: c1
    name: LIMIT
    value: 10
    type: number
decisions:
  - id: Double
    name: Double
    typeRef: number
    expression: A * 2
    informationRequirements:
      - id: r1
        type: input
        href: A
testCases:
  - id: tc1
    name: six
    inputs:
      A: 6
    expectations:
      - decisionId: Double
        decisionName: Double
        expectedValue: 12
`

func TestParse(t *testing.T) {
	t.Run("yaml document", func(t *testing.T) {
		// --- Act ---
		m, err := Parse([]byte(yamlDoc))

		// --- Assert ---
		require.NoError(t, err)
		assert.Equal(t, "Example", m.Name)
		require.Len(t, m.Decisions, 1)
		assert.Equal(t, "A * 2", m.Decisions[0].Expression)
		assert.NotNil(t, m.Decisions[0].KnowledgeRequirements)
		assert.NotNil(t, m.KnowledgeModels)
		assert.Equal(t, 10.0, m.Constants[0].Value, "integer constants are normalized to float64")
		require.Len(t, m.TestCases, 1)
		assert.Equal(t, 6, m.TestCases[0].Inputs["A"])
	})

	t.Run("json document", func(t *testing.T) {
		doc := `{"name":"J","inputs":[{"id":"x","name":"X","typeRef":"string"}],"decisions":[]}`
		m, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, "J", m.Name)
		assert.NotEmpty(t, m.ID, "missing id is generated")
		assert.Len(t, m.Inputs, 1)

		again, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, m.ID, again.ID, "the generated id is stable across loads")
		assert.NotEqual(t, NameID("K"), m.ID)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := Parse([]byte(`id: x`))
		assert.ErrorContains(t, err, "missing required field 'name'")
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := Parse([]byte("  \n"))
		assert.Error(t, err)
	})

	t.Run("malformed document", func(t *testing.T) {
		_, err := Parse([]byte("name: [unterminated"))
		assert.Error(t, err)
	})
}

func TestLoadAndMarshal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0600))

	m, err := Load(path)
	require.NoError(t, err)

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			data, err := Marshal(m, format)
			require.NoError(t, err)

			again, err := Parse(data)
			require.NoError(t, err)
			assert.Equal(t, m.Decisions, again.Decisions)
			assert.Equal(t, m.Inputs, again.Inputs)
		})
	}

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read model file")
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, "json", FormatFromPath("a/b.JSON"))
	assert.Equal(t, "yaml", FormatFromPath("a/b.yml"))
	assert.Equal(t, "yaml", FormatFromPath("model"))
}

func TestLoadInputs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inputs.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"A": 6, "Name": "x"}`), 0600))

	inputs, err := LoadInputs(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"A": 6, "Name": "x"}, inputs)
}
