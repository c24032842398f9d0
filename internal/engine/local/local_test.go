package local

import (
	"context"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/scope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type constEvaluator struct{ v any }

func (c constEvaluator) Evaluate(context.Context, string, *scope.Scope) (any, error) { return c.v, nil }

func TestEngine(t *testing.T) {
	m := &model.Model{
		Name:      "m",
		Inputs:    []model.InputData{{ID: "A", Name: "A"}},
		Decisions: []model.Decision{{ID: "d", Name: "D", Expression: "A + 1"}},
	}

	t.Run("info", func(t *testing.T) {
		info := New().Info()
		assert.Equal(t, engine.LocalInterpreterID, info.ID)
		assert.False(t, info.RequiresConnection)
		assert.True(t, engine.CheckConnection(context.Background(), New()))
	})

	t.Run("evaluate with the interpreter", func(t *testing.T) {
		res, err := New().Evaluate(context.Background(), m, map[string]any{"A": 1})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 2.0, res.Decisions["d"].Value)
	})

	t.Run("custom evaluator", func(t *testing.T) {
		res, err := New(WithEvaluator(constEvaluator{v: "x"})).Evaluate(context.Background(), m, nil)
		require.NoError(t, err)
		assert.Equal(t, "x", res.Decisions["d"].Value)
	})
}
