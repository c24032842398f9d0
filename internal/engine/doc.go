// Package engine defines the evaluator capability shared by every way of
// running a decision model.
//
// An Engine turns a model plus an input map into an ExecutionResult. Two
// implementations exist: the in-process interpreter in engine/local and the
// HTTP client for an external evaluation service in engine/remote. Callers
// pick one by identifier through a Registry, so nothing in the process holds
// a global "current engine".
//
// Results are uniform across engines:
//   - Decisions is keyed by decision id and carries a value or an error.
//   - Errors collects a human-readable line for every failure.
//   - Success is true only when Errors is empty.
//
// Evaluate returns a Go error only when the model itself cannot be executed
// at all (a dependency cycle). Everything else, including an unreachable
// remote service, is reported inside the result.
package engine
