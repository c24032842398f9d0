package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/dag"
	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/scope"
)

// Execute evaluates every decision of m against inputs. The model is only
// read. A *dag.CircularDependencyError is returned, with no result, when the
// decisions cannot be ordered.
func Execute(ctx context.Context, m *model.Model, inputs map[string]any, eval scope.Evaluator) (*engine.ExecutionResult, error) {
	logger := ctxlog.FromContext(ctx).With("model", m.Name)
	logger.Info("🚀 Starting model execution.", "decisions", len(m.Decisions))
	start := time.Now()

	plan, err := dag.Resolve(ctx, m)
	if err != nil {
		logger.Error("Failed to resolve decision order.", "error", err)
		return nil, err
	}

	s := scope.Build(ctx, m, inputs, eval)
	result := engine.NewExecutionResult(inputs)

	for _, d := range plan.Order {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("execution of model '%s' interrupted: %w", m.Name, err)
		}

		dr := runDecision(ctx, d, plan.Unresolved[d.ID], s, eval)
		result.Decisions[d.ID] = dr
		result.Order = append(result.Order, d.ID)

		if dr.Status == engine.StatusSucceeded {
			s.Bind(d.ID, d.Name, dr.Value)
			continue
		}
		s.Bind(d.ID, d.Name, nil)
		result.Errors = append(result.Errors, fmt.Sprintf("Error evaluating %q: %s", d.Name, dr.Error))
	}

	result.Success = len(result.Errors) == 0
	logger.Info("🏁 Model execution finished.",
		"success", result.Success,
		"errors", len(result.Errors),
		"duration", time.Since(start),
	)
	return result, nil
}

// runDecision evaluates a single decision. Panics raised by the evaluator are
// turned into a failed result.
func runDecision(ctx context.Context, d *model.Decision, unresolved *dag.ResolutionError, s *scope.Scope, eval scope.Evaluator) (dr engine.DecisionResult) {
	logger := ctxlog.FromContext(ctx).With("decision", d.Name)
	logger.Info("▶️ Evaluating decision")

	dr = engine.DecisionResult{DecisionID: d.ID, DecisionName: d.Name}

	if unresolved != nil {
		logger.Warn("Decision has an unresolved requirement.", "href", unresolved.Href)
		dr.Status = engine.StatusFailed
		dr.Error = unresolved.Error()
		return dr
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Evaluator panicked.", "panic", r)
			dr.Value = nil
			dr.Status = engine.StatusFailed
			dr.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	v, err := eval.Evaluate(ctx, d.Expression, s)
	if err != nil {
		logger.Debug("Decision failed.", "error", err)
		dr.Status = engine.StatusFailed
		dr.Error = err.Error()
		return dr
	}

	dr.Value = v
	dr.Status = engine.StatusSucceeded
	logger.Info("✅ Finished decision", "value", engine.FormatValue(v))
	return dr
}
