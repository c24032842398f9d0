package engine

import (
	"context"

	"github.com/specialistvlad/dmngrid/internal/model"
)

// Engine identifiers.
const (
	LocalInterpreterID = "localInterpreter"
	RemoteServiceID    = "remoteService"
)

// Status is the evaluation status of one decision.
type Status string

const (
	StatusSucceeded Status = "SUCCEEDED"
	StatusFailed    Status = "FAILED"
	StatusSkipped   Status = "SKIPPED"
)

// DecisionResult is the outcome of evaluating one decision. Error is empty
// when the decision succeeded.
type DecisionResult struct {
	DecisionID   string `json:"decisionId" yaml:"decisionId"`
	DecisionName string `json:"decisionName" yaml:"decisionName"`
	Value        any    `json:"value" yaml:"value"`
	Error        string `json:"error,omitempty" yaml:"error,omitempty"`
	Status       Status `json:"status" yaml:"status"`
}

// ExecutionResult is produced fresh by every evaluation and is never stored
// on the model.
type ExecutionResult struct {
	// Success is true iff no decision failed and no run-level error occurred.
	Success bool           `json:"success" yaml:"success"`
	Inputs  map[string]any `json:"inputs" yaml:"inputs"`
	// Decisions is keyed by decision id.
	Decisions map[string]DecisionResult `json:"decisions" yaml:"decisions"`
	// Order lists decision ids in evaluation order when the engine knows it.
	Order  []string `json:"order,omitempty" yaml:"order,omitempty"`
	Errors []string `json:"errors" yaml:"errors"`
}

// NewExecutionResult returns an empty result for the given inputs.
func NewExecutionResult(inputs map[string]any) *ExecutionResult {
	return &ExecutionResult{
		Inputs:    inputs,
		Decisions: map[string]DecisionResult{},
		Errors:    []string{},
	}
}

// Failed builds the single synthetic result used when a whole run fails
// without any per-decision breakdown.
func Failed(inputs map[string]any, message string) *ExecutionResult {
	r := NewExecutionResult(inputs)
	r.Errors = append(r.Errors, message)
	return r
}

// Info describes an engine to callers choosing between them.
type Info struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description"`
	RequiresConnection bool   `json:"requiresConnection"`
}

// Engine evaluates a whole model against a set of input values.
//
// Evaluate returns an error only for model-level fatal conditions, such as a
// dependency cycle, where no result can be produced. Per-decision failures
// and transport failures are reported inside the ExecutionResult.
type Engine interface {
	Info() Info
	Evaluate(ctx context.Context, m *model.Model, inputs map[string]any) (*ExecutionResult, error)
}

// ConnectionChecker is implemented by engines that depend on an external
// service. A false result only means the engine is currently unusable.
type ConnectionChecker interface {
	CheckConnection(ctx context.Context) bool
}

// CheckConnection probes e if it implements ConnectionChecker and reports
// true otherwise.
func CheckConnection(ctx context.Context, e Engine) bool {
	if c, ok := e.(ConnectionChecker); ok {
		return c.CheckConnection(ctx)
	}
	return true
}
