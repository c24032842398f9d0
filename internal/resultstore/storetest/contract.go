// Package storetest holds the behaviour every resultstore.Store must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/specialistvlad/dmngrid/internal/resultstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContract runs the shared store tests. newStore must return an empty
// store on every call.
func RunContract(t *testing.T, newStore func(t *testing.T) resultstore.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("unknown case is not run", func(t *testing.T) {
		s := newStore(t)
		status, err := s.GetStatus(ctx, "nope")
		require.NoError(t, err)
		assert.Equal(t, resultstore.StatusNotRun, status)

		_, ok, err := s.GetResult(ctx, "nope")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("lifecycle", func(t *testing.T) {
		// --- Arrange ---
		s := newStore(t)
		result := resultstore.TestCaseResult{
			TestCaseID:   "tc1",
			TestCaseName: "first",
			Status:       resultstore.StatusFailed,
			Expectations: []resultstore.ExpectationResult{
				{DecisionID: "d", DecisionName: "D", ExpectedValue: true, ActualValue: false, Error: ""},
			},
			DurationMS: 3,
		}

		// --- Act / Assert ---
		assert.ErrorIs(t, s.SetResult(ctx, result), resultstore.ErrInvalidTransition, "a result needs a running case")

		require.NoError(t, s.SetStatus(ctx, "tc1", resultstore.StatusRunning))
		status, err := s.GetStatus(ctx, "tc1")
		require.NoError(t, err)
		assert.Equal(t, resultstore.StatusRunning, status)

		require.NoError(t, s.SetResult(ctx, result))
		status, err = s.GetStatus(ctx, "tc1")
		require.NoError(t, err)
		assert.Equal(t, resultstore.StatusFailed, status)

		got, ok, err := s.GetResult(ctx, "tc1")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "first", got.TestCaseName)
		require.Len(t, got.Expectations, 1)
		assert.Equal(t, false, got.Expectations[0].ActualValue)

		assert.ErrorIs(t, s.SetStatus(ctx, "tc1", resultstore.StatusNotRun), resultstore.ErrInvalidTransition)
		assert.ErrorIs(t, s.SetStatus(ctx, "tc1", resultstore.StatusPassed), resultstore.ErrInvalidTransition)

		require.NoError(t, s.SetStatus(ctx, "tc1", resultstore.StatusRunning), "a finished case may be re-run")
	})

	t.Run("results are ordered and cleared", func(t *testing.T) {
		s := newStore(t)
		for _, id := range []string{"b", "a", "c"} {
			require.NoError(t, s.SetStatus(ctx, id, resultstore.StatusRunning))
			require.NoError(t, s.SetResult(ctx, resultstore.TestCaseResult{TestCaseID: id, Status: resultstore.StatusPassed}))
		}

		results, err := s.Results(ctx)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, "a", results[0].TestCaseID)
		assert.Equal(t, "c", results[2].TestCaseID)

		require.NoError(t, s.Clear(ctx))
		results, err = s.Results(ctx)
		require.NoError(t, err)
		assert.Empty(t, results)
		status, err := s.GetStatus(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, resultstore.StatusNotRun, status)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		s := newStore(t)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				id := fmt.Sprintf("tc%02d", i)
				assert.NoError(t, s.SetStatus(ctx, id, resultstore.StatusRunning))
				assert.NoError(t, s.SetResult(ctx, resultstore.TestCaseResult{TestCaseID: id, Status: resultstore.StatusPassed}))
			}(i)
		}
		wg.Wait()

		results, err := s.Results(ctx)
		require.NoError(t, err)
		assert.Len(t, results, 20)
	})
}
