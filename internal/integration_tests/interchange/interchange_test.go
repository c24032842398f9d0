package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/dmnxml"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportDMN(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	h := testutil.NewHarness(t, map[string]string{"m.yaml": testutil.DoublerModel}, nil)

	// --- Act ---
	stdout := h.Run("export", "dmn", "{{dir}}/m.yaml")
	toFile := h.Run("export", "dmn", "{{dir}}/m.yaml", "--out", "{{dir}}/m.dmn")

	// --- Assert ---
	require.NoError(t, stdout.Err)
	require.NoError(t, toFile.Err)
	assert.Empty(t, toFile.Stdout)
	assert.Equal(t, stdout.Stdout, toFile.ReadFile(t, "m.dmn"))
	assert.Contains(t, stdout.Stdout, `id="`+model.NameID("Doubler")+`"`)

	imported, err := dmnxml.Import([]byte(stdout.Stdout))
	require.NoError(t, err)
	assert.Equal(t, "Doubler", imported.Name)
	require.Len(t, imported.Constants, 1)
	assert.Equal(t, 10.0, imported.Constants[0].Value)
	assert.Len(t, imported.Decisions, 2)
}

func TestTCKRoundTrip(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The target model shares names with the source but has no test cases.
	bare := testutil.DoublerModel[:strings.Index(testutil.DoublerModel, "testCases:")]
	h := testutil.NewHarness(t, map[string]string{
		"source.yaml": testutil.DoublerModel,
		"target.yaml": bare,
	}, nil)

	// --- Act ---
	exported := h.Run("export", "tck", "{{dir}}/source.yaml", "-O", "{{dir}}/cases.xml")
	require.NoError(t, exported.Err)
	imported := h.Run("import-tck", "{{dir}}/target.yaml", "{{dir}}/cases.xml")
	require.NoError(t, imported.Err)

	// --- Assert ---
	assert.Contains(t, imported.Stdout, "Imported 2 test case(s)")
	m, err := model.Load(h.Path("target.yaml"))
	require.NoError(t, err)
	require.Len(t, m.TestCases, 2)
	assert.Equal(t, "Big input", m.TestCases[0].Name)

	res := h.Run("test", "{{dir}}/target.yaml")
	assert.Equal(t, 1, res.ExitCode, "the imported failing case still fails")
	assert.Contains(t, res.Stdout, "PASS  Big input")
	assert.Contains(t, res.Stdout, "FAIL  Small input")
}

func TestImportTCKWarnings(t *testing.T) {
	t.Parallel()

	tckDoc := `<?xml version="1.0" encoding="UTF-8"?>
<testCases xmlns="http://www.omg.org/spec/DMN/20160719/testcase" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance" xmlns:xsd="http://www.w3.org/2001/XMLSchema">
  <testCase id="t1" name="t1">
    <inputNode name="a"><value xsi:type="xsd:decimal">6</value></inputNode>
    <inputNode name="Ghost"><value xsi:type="xsd:decimal">1</value></inputNode>
    <resultNode name="isbig" type="decision"><expected><value xsi:type="xsd:boolean">true</value></expected></resultNode>
  </testCase>
</testCases>`
	h := testutil.NewHarness(t, map[string]string{"m.yaml": testutil.PassingDoublerModel, "t.xml": tckDoc}, nil)

	res := h.Run("import-tck", "{{dir}}/m.yaml", "{{dir}}/t.xml", "--out", "{{dir}}/out.json")
	require.NoError(t, res.Err)
	assert.Contains(t, res.LogOutput, `warning: Test "t1": Input "Ghost" not found in model, skipped`)

	m, err := model.Load(res.Path("out.json"))
	require.NoError(t, err)
	require.Len(t, m.TestCases, 2)
	assert.EqualValues(t, 6, m.TestCases[1].Inputs["in_a"])
	assert.Len(t, m.TestCases[1].Inputs, 1)
	assert.Equal(t, "d_big", m.TestCases[1].Expectations[0].DecisionID)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(res.ReadFile(t, "out.json")), "{"))
}
