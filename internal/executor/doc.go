// Package executor runs the decisions of a model, in dependency order,
// against one set of input values.
//
// A run resolves the decision order, builds a fresh scope, then evaluates each
// decision's expression with the supplied scope.Evaluator. A failed decision
// is recorded and bound as null so later decisions still run; siblings are
// never stopped by it. Only a dependency cycle aborts the run.
package executor
