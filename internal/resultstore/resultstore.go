package resultstore

import (
	"context"
	"errors"
	"fmt"
)

// Status is the lifecycle state of one test case.
type Status string

const (
	StatusNotRun  Status = "not_run"
	StatusRunning Status = "running"
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
)

// ErrInvalidTransition is returned when a status change breaks the test case
// lifecycle.
var ErrInvalidTransition = errors.New("invalid status transition")

// CheckTransition reports whether a case in status from may move to status to.
func CheckTransition(from, to Status) error {
	switch to {
	case StatusRunning:
		return nil
	case StatusPassed, StatusFailed:
		if from == StatusRunning {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// ExpectationResult is the score of one expectation.
type ExpectationResult struct {
	DecisionID    string `json:"decisionId"`
	DecisionName  string `json:"decisionName"`
	ExpectedValue any    `json:"expectedValue"`
	ActualValue   any    `json:"actualValue"`
	Passed        bool   `json:"passed"`
	Error         string `json:"error,omitempty"`
}

// TestCaseResult is the outcome of running one test case.
type TestCaseResult struct {
	TestCaseID   string              `json:"testCaseId"`
	TestCaseName string              `json:"testCaseName"`
	Status       Status              `json:"status"`
	Expectations []ExpectationResult `json:"expectations"`
	// Error is set when the whole model could not be evaluated.
	Error      string `json:"error,omitempty"`
	EngineID   string `json:"engineId,omitempty"`
	StartedAt  string `json:"startedAt,omitempty"`
	DurationMS int64  `json:"durationMs"`
}

// Passed reports whether every expectation passed.
func (r *TestCaseResult) Passed() bool { return r.Status == StatusPassed }

// Store keeps test case statuses and results. Implementations must be safe
// for concurrent use by goroutines working on different test cases.
type Store interface {
	// SetStatus moves a case to status. Moving to not_run is rejected; use
	// Clear.
	SetStatus(ctx context.Context, testCaseID string, status Status) error

	// GetStatus returns not_run for unknown cases.
	GetStatus(ctx context.Context, testCaseID string) (Status, error)

	// SetResult records a finished run and moves the case to result.Status,
	// which must be passed or failed.
	SetResult(ctx context.Context, result TestCaseResult) error

	// GetResult returns the last recorded result, or false when there is none.
	GetResult(ctx context.Context, testCaseID string) (*TestCaseResult, bool, error)

	// Results returns every recorded result ordered by test case id.
	Results(ctx context.Context) ([]TestCaseResult, error)

	// Clear drops every status and result.
	Clear(ctx context.Context) error
}

// ValidateResult checks the status a result may be recorded with.
func ValidateResult(r TestCaseResult) error {
	if r.TestCaseID == "" {
		return errors.New("result has no test case id")
	}
	if r.Status != StatusPassed && r.Status != StatusFailed {
		return fmt.Errorf("%w: result status must be passed or failed, got %q", ErrInvalidTransition, r.Status)
	}
	return nil
}
