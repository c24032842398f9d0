package testrunner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/inmemorystore"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/resultstore"
	"golang.org/x/sync/errgroup"
)

// ReasonNodeNotFound is the error given when an expectation names a decision
// absent from the evaluation result.
const ReasonNodeNotFound = "node not found in model"

// ErrDuplicateTestCase is returned by RunAllTestCases when two test cases
// share an id, since their outcomes would be recorded under the same key.
var ErrDuplicateTestCase = errors.New("duplicate test case id")

// DefaultConcurrency bounds batch runs against engines that need a
// connection.
const DefaultConcurrency = 4

// Runner runs test cases with one engine and records outcomes in a store.
type Runner struct {
	engine      engine.Engine
	store       resultstore.Store
	concurrency int
	now         func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithStore records outcomes in s instead of a private in-memory store.
func WithStore(s resultstore.Store) Option {
	return func(r *Runner) { r.store = s }
}

// WithConcurrency sets how many cases a batch run evaluates at once. Values
// below 1 restore the default, which is DefaultConcurrency for engines that
// need a connection and 1 otherwise.
func WithConcurrency(n int) Option {
	return func(r *Runner) { r.concurrency = n }
}

// New creates a runner for e.
func New(e engine.Engine, opts ...Option) *Runner {
	r := &Runner{engine: e, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = inmemorystore.New()
	}
	if r.concurrency < 1 {
		r.concurrency = 1
		if e.Info().RequiresConnection {
			r.concurrency = DefaultConcurrency
		}
	}
	return r
}

// Store returns the store outcomes are recorded in.
func (r *Runner) Store() resultstore.Store { return r.store }

// RunTestCase evaluates m with the inputs of tc and scores its expectations.
// The returned error only reports a store failure; evaluation failures are
// part of the result.
func (r *Runner) RunTestCase(ctx context.Context, tc model.TestCase, m *model.Model) (resultstore.TestCaseResult, error) {
	logger := ctxlog.FromContext(ctx).With("test_case", tc.Name)
	logger.Info("▶️ Running test case")

	start := r.now()
	result := resultstore.TestCaseResult{
		TestCaseID:   tc.ID,
		TestCaseName: tc.Name,
		EngineID:     r.engine.Info().ID,
		StartedAt:    start.UTC().Format(time.RFC3339Nano),
		Expectations: make([]resultstore.ExpectationResult, 0, len(tc.Expectations)),
	}

	if err := r.store.SetStatus(ctx, tc.ID, resultstore.StatusRunning); err != nil {
		return result, fmt.Errorf("failed to mark test case '%s' running: %w", tc.ID, err)
	}

	res, err := r.engine.Evaluate(ctx, m, Normalize(m, tc.Inputs))
	switch {
	case err != nil:
		result.Error = err.Error()
	case len(res.Decisions) == 0 && len(res.Errors) > 0:
		result.Error = strings.Join(res.Errors, "; ")
	}

	allPassed := result.Error == ""
	for _, exp := range tc.Expectations {
		var er resultstore.ExpectationResult
		if result.Error != "" {
			er = resultstore.ExpectationResult{
				DecisionID:    exp.DecisionID,
				DecisionName:  exp.DecisionName,
				ExpectedValue: exp.ExpectedValue,
				Error:         result.Error,
			}
		} else {
			er = scoreExpectation(exp, res)
		}
		allPassed = allPassed && er.Passed
		result.Expectations = append(result.Expectations, er)
	}

	result.Status = resultstore.StatusFailed
	if allPassed {
		result.Status = resultstore.StatusPassed
	}
	result.DurationMS = r.now().Sub(start).Milliseconds()

	if err := r.store.SetResult(ctx, result); err != nil {
		return result, fmt.Errorf("failed to record result of test case '%s': %w", tc.ID, err)
	}
	if result.Status == resultstore.StatusPassed {
		logger.Info("✅ Test case passed")
	} else {
		logger.Info("❌ Test case failed", "error", result.Error)
	}
	return result, nil
}

func scoreExpectation(exp model.Expectation, res *engine.ExecutionResult) resultstore.ExpectationResult {
	er := resultstore.ExpectationResult{
		DecisionID:    exp.DecisionID,
		DecisionName:  exp.DecisionName,
		ExpectedValue: exp.ExpectedValue,
	}
	dr, ok := res.Decisions[exp.DecisionID]
	if !ok {
		er.Error = ReasonNodeNotFound
		return er
	}
	if dr.Error != "" {
		er.Error = dr.Error
		return er
	}
	er.ActualValue = dr.Value

	equal, err := Equal(exp.ExpectedValue, dr.Value)
	if err != nil {
		er.Error = err.Error()
		return er
	}
	er.Passed = equal
	return er
}

// Equal compares two values by their canonical JSON encoding.
func Equal(expected, actual any) (bool, error) {
	a, err := json.Marshal(expected)
	if err != nil {
		return false, fmt.Errorf("cannot encode expected value: %w", err)
	}
	b, err := json.Marshal(actual)
	if err != nil {
		return false, fmt.Errorf("cannot encode actual value: %w", err)
	}
	return bytes.Equal(a, b), nil
}

// RunAllTestCases clears previous outcomes, then runs every test case of m.
// A failing case never stops the others. Results follow the order of
// m.TestCases.
func (r *Runner) RunAllTestCases(ctx context.Context, m *model.Model) ([]resultstore.TestCaseResult, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Running all test cases.", "count", len(m.TestCases), "concurrency", r.concurrency)

	seen := make(map[string]bool, len(m.TestCases))
	for _, tc := range m.TestCases {
		if seen[tc.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTestCase, tc.ID)
		}
		seen[tc.ID] = true
	}

	if err := r.ClearResults(ctx); err != nil {
		return nil, err
	}

	results := make([]resultstore.TestCaseResult, len(m.TestCases))
	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, tc := range m.TestCases {
		g.Go(func() error {
			res, err := r.RunTestCase(ctx, tc, m)
			results[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	passed := 0
	for _, res := range results {
		if res.Passed() {
			passed++
		}
	}
	logger.Info("🏁 Test run finished.", "passed", passed, "failed", len(results)-passed)
	return results, nil
}

// ClearResults returns every test case to not_run.
func (r *Runner) ClearResults(ctx context.Context) error {
	if err := r.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear test results: %w", err)
	}
	return nil
}

// CaptureExpectations evaluates m with inputs and turns every successful
// decision into an expectation, in model order.
func (r *Runner) CaptureExpectations(ctx context.Context, m *model.Model, inputs map[string]any) ([]model.Expectation, error) {
	res, err := r.engine.Evaluate(ctx, m, Normalize(m, inputs))
	if err != nil {
		return nil, err
	}
	if len(res.Decisions) == 0 && len(res.Errors) > 0 {
		return nil, fmt.Errorf("evaluation failed: %s", strings.Join(res.Errors, "; "))
	}

	out := []model.Expectation{}
	seen := map[string]bool{}
	for _, d := range m.Decisions {
		dr, ok := res.Decisions[d.ID]
		if !ok || dr.Error != "" || seen[d.ID] {
			continue
		}
		seen[d.ID] = true
		out = append(out, model.Expectation{
			DecisionID:    dr.DecisionID,
			DecisionName:  dr.DecisionName,
			ExpectedValue: dr.Value,
		})
	}
	return out, nil
}
