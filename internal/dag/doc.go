// Package dag orders the decisions of a model for evaluation.
//
// Graph is a small, insertion-ordered directed graph with a three-color
// depth-first TopologicalOrder. Resolve builds one from a model's
// decision-typed information requirements and returns a Plan: the decisions
// in dependency order plus any dangling requirement per decision.
//
// Two failure modes are kept apart on purpose. A cycle means no valid order
// exists, so Resolve returns a *CircularDependencyError and no Plan. A
// requirement pointing at an element that does not exist only poisons the
// decision declaring it; it is recorded in Plan.Unresolved as a
// *ResolutionError and evaluation of the rest of the model proceeds.
package dag
