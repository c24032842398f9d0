package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEngine struct {
	info      Info
	reachable bool
}

func (f *fakeEngine) Info() Info { return f.info }

func (f *fakeEngine) Evaluate(_ context.Context, _ *model.Model, inputs map[string]any) (*ExecutionResult, error) {
	return NewExecutionResult(inputs), nil
}

type probedEngine struct {
	fakeEngine
}

func (p *probedEngine) CheckConnection(context.Context) bool { return p.reachable }

func TestRegistry(t *testing.T) {
	ctx := context.Background()
	local := &fakeEngine{info: Info{ID: LocalInterpreterID, Name: "Local"}}
	remote := &probedEngine{fakeEngine{info: Info{ID: RemoteServiceID, Name: "Remote", RequiresConnection: true}}}

	reg := NewRegistry(local, remote)

	t.Run("get registered engine", func(t *testing.T) {
		e, err := reg.Get(RemoteServiceID)
		require.NoError(t, err)
		assert.Same(t, remote, e)
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := reg.Get("nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownEngine))
		assert.Contains(t, err.Error(), "localInterpreter")
	})

	t.Run("duplicate id is rejected", func(t *testing.T) {
		err := reg.Register(&fakeEngine{info: Info{ID: LocalInterpreterID}})
		assert.ErrorContains(t, err, "already registered")
	})

	t.Run("empty id is rejected", func(t *testing.T) {
		assert.Error(t, reg.Register(&fakeEngine{}))
	})

	t.Run("all keeps registration order", func(t *testing.T) {
		infos := reg.All()
		require.Len(t, infos, 2)
		assert.Equal(t, LocalInterpreterID, infos[0].ID)
		assert.Equal(t, RemoteServiceID, infos[1].ID)
		assert.True(t, infos[1].RequiresConnection)
	})

	t.Run("connection checks", func(t *testing.T) {
		assert.True(t, reg.CheckConnection(ctx, LocalInterpreterID), "engines without a probe are always reachable")
		assert.False(t, reg.CheckConnection(ctx, RemoteServiceID))
		remote.reachable = true
		assert.True(t, reg.CheckConnection(ctx, RemoteServiceID))
		assert.False(t, reg.CheckConnection(ctx, "nope"))
	})
}

func TestNewRegistryPanicsOnDuplicate(t *testing.T) {
	e := &fakeEngine{info: Info{ID: "x"}}
	assert.Panics(t, func() { NewRegistry(e, e) })
}

func TestFailed(t *testing.T) {
	r := Failed(map[string]any{"A": 1}, "boom")
	assert.False(t, r.Success)
	assert.Empty(t, r.Decisions)
	assert.Equal(t, []string{"boom"}, r.Errors)
}

func TestFormatValue(t *testing.T) {
	testCases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"whole float", 12.0, "12"},
		{"int", 7, "7"},
		{"fraction", 3.14159, "3.14"},
		{"negative fraction", -0.5, "-0.50"},
		{"string", "ok", `"ok"`},
		{"list", []any{1.0, "a", nil}, `[1, "a", null]`},
		{"record", map[string]any{"b": 2.0, "a": true}, `{"a":true,"b":2}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatValue(tc.in))
		})
	}
}
