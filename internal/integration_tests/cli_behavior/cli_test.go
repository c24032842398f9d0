package integration_tests

import (
	"strings"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginesListsBothEngines(t *testing.T) {
	t.Parallel()

	// --- Act ---
	res := testutil.RunCLI(t, nil, "engines")

	// --- Assert ---
	require.NoError(t, res.Err)
	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "* localInterpreter"), "the default engine is marked: %q", lines[0])
	assert.Contains(t, lines[2], "remoteService")
	assert.Contains(t, lines[2], "(requires connection)")
}

func TestConfigLayering(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"dmngrid.yaml": "engine: remoteService\nlogFormat: json\n",
	}
	h := testutil.NewHarness(t, files, map[string]string{"DMNGRID_LOG_FORMAT": "text"})

	t.Run("file and environment", func(t *testing.T) {
		res := h.Run("--config", "{{dir}}/dmngrid.yaml", "engines")
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "* remoteService")
		assert.Contains(t, res.LogOutput, "level=DEBUG", "the environment switched logs back to text")
	})

	t.Run("flags win", func(t *testing.T) {
		res := h.Run("--config", "{{dir}}/dmngrid.yaml", "--engine", "localInterpreter", "--log-format", "json", "engines")
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, "* localInterpreter")
		assert.Contains(t, res.LogOutput, `"level":"DEBUG"`)
	})

	t.Run("invalid layered value", func(t *testing.T) {
		res := h.Run("--config", "{{dir}}/dmngrid.yaml", "--engine", "nope", "engines")
		assert.Equal(t, 2, res.ExitCode)
		assert.ErrorContains(t, res.Err, "invalid engine")
	})
}

func TestValidateCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid model", func(t *testing.T) {
		res := testutil.RunCLI(t, map[string]string{"m.yaml": testutil.DoublerModel}, "validate", "{{dir}}/m.yaml")
		require.NoError(t, res.Err)
		assert.Contains(t, res.Stdout, `Model "Doubler" is valid!`)
	})

	t.Run("cycle and lint findings", func(t *testing.T) {
		broken := strings.Replace(testutil.CyclicModel, "expectedValue: 1", "expectedValue: 1\n      - decisionId: ghost\n        decisionName: Ghost\n        expectedValue: 2", 1)
		res := testutil.RunCLI(t, map[string]string{"m.yaml": broken}, "validate", "{{dir}}/m.yaml")
		assert.Equal(t, 1, res.ExitCode)
		assert.Contains(t, res.Stdout, "circular dependency detected at: X")
		assert.Contains(t, res.Stdout, `expects unknown decision "ghost"`)
		assert.ErrorContains(t, res.Err, "2 problem(s)")
	})
}

func TestProbeLocalEngine(t *testing.T) {
	t.Parallel()

	res := testutil.RunCLI(t, nil, "probe", "localInterpreter")
	require.NoError(t, res.Err)
	assert.Equal(t, "localInterpreter: reachable\n", res.Stdout)

	res = testutil.RunCLI(t, nil, "probe", "camunda")
	assert.Equal(t, 2, res.ExitCode)
	assert.ErrorContains(t, res.Err, "unknown engine")
}
