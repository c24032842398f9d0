package scope

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoEvaluator returns the value bound under the expression text, which
// lets tests observe exactly what a function body can see.
type echoEvaluator struct{}

func (echoEvaluator) Evaluate(_ context.Context, expression string, s *Scope) (any, error) {
	v, ok := s.Lookup(expression)
	if !ok {
		return nil, errors.New("unbound " + expression)
	}
	return v, nil
}

func TestScopeLayers(t *testing.T) {
	s := New()
	s.Bind("id1", "Amount", 1)
	s.BindID("Amount", 2)

	v, ok := s.Lookup("Amount")
	require.True(t, ok)
	assert.Equal(t, 1, v, "names take precedence over ids")

	v, ok = s.LookupID("Amount")
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = s.Lookup("missing")
	assert.False(t, ok)

	s.BindName("Amount", 3)
	v, _ = s.LookupName("Amount")
	assert.Equal(t, 3, v, "later binding wins")

	assert.Equal(t, map[string]any{"id1": 1, "Amount": 3}, s.Flatten())
	assert.Equal(t, []string{"Amount", "id1"}, s.Keys())
}

func TestSnapshotIsIndependent(t *testing.T) {
	s := New()
	s.BindName("a", 1)
	snap := s.Snapshot()
	s.BindName("b", 2)
	snap.BindName("a", 9)

	_, ok := snap.Lookup("b")
	assert.False(t, ok)
	v, _ := s.Lookup("a")
	assert.Equal(t, 1, v)
}

func TestBuild(t *testing.T) {
	ctx := context.Background()
	m := &model.Model{
		Inputs: []model.InputData{
			{ID: "in_a", Name: "A"},
			{ID: "in_b", Name: "B"},
			{ID: "in_c", Name: "C"},
		},
		Constants: []model.Constant{{ID: "c1", Name: "LIMIT", Value: 10.0, Type: model.ConstantNumber}},
		KnowledgeModels: []model.KnowledgeModel{
			{ID: "k1", Name: "Echo Param", Parameters: []model.Parameter{{Name: "x"}}, Expression: "x"},
			{ID: "k2", Name: "Sees Limit", Expression: "LIMIT"},
			{ID: "k3", Name: "Sees Later", Expression: "Decision"},
		},
	}

	t.Run("inputs by id then by name", func(t *testing.T) {
		s := Build(ctx, m, map[string]any{"in_a": 1, "B": 2, "in_c": nil, "C": 3}, echoEvaluator{})

		for key, want := range map[string]any{"A": 1, "in_a": 1, "B": 2, "in_b": 2, "C": 3} {
			got, ok := s.Lookup(key)
			require.True(t, ok, key)
			assert.Equal(t, want, got, key)
		}
	})

	t.Run("missing input is bound as nil", func(t *testing.T) {
		s := Build(ctx, m, nil, echoEvaluator{})
		v, ok := s.Lookup("A")
		assert.True(t, ok)
		assert.Nil(t, v)
	})

	t.Run("constants and knowledge models", func(t *testing.T) {
		s := Build(ctx, m, nil, echoEvaluator{})

		v, _ := s.Lookup("LIMIT")
		assert.Equal(t, 10.0, v)

		fn, ok := s.Lookup("EchoParam")
		require.True(t, ok, "whitespace-stripped alias")
		same, _ := s.Lookup("Echo Param")
		assert.Same(t, fn, same)
		byID, _ := s.LookupID("k1")
		assert.Same(t, fn, byID)
	})

	t.Run("functions bind parameters over their closure", func(t *testing.T) {
		s := Build(ctx, m, nil, echoEvaluator{})
		s.Bind("d1", "Decision", true)

		echo := mustFunction(t, s, "Echo Param")
		got, err := echo.Call(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", got)

		got, err = echo.Call(ctx, nil)
		require.NoError(t, err)
		assert.Nil(t, got, "null arguments are bound as nil")

		_, err = echo.Call(ctx)
		assert.ErrorContains(t, err, "expected 1 arguments, got 0")

		_, err = echo.Call(ctx, 1, 2)
		assert.ErrorContains(t, err, "expected 1 arguments, got 2")

		got, err = mustFunction(t, s, "Sees Limit").Call(ctx)
		require.NoError(t, err)
		assert.Equal(t, 10.0, got)

		_, err = mustFunction(t, s, "Sees Later").Call(ctx)
		assert.ErrorContains(t, err, "unbound Decision", "the closure is the scope at binding time")
	})
}

func mustFunction(t *testing.T, s *Scope, name string) *Function {
	t.Helper()
	v, ok := s.Lookup(name)
	require.True(t, ok, name)
	fn, ok := v.(*Function)
	require.True(t, ok, name)
	return fn
}
