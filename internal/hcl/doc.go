// Package hcl is the embedded expression interpreter of the local engine.
//
// Decision and knowledge model bodies are HCL native-syntax expressions
// (`A * 2`, `Double > 10 ? "big" : "small"`, `Twice(A) + LIMIT`). The
// Interpreter parses an expression with hclsyntax, builds an hcl.EvalContext
// from a scope.Scope and evaluates it:
//
//   - every non-function binding becomes a variable, with names taking
//     precedence over ids when both spell the same key;
//   - every *scope.Function becomes a cty function of the same name, so
//     knowledge models are called like any built-in;
//   - a fixed library of go-cty stdlib functions (upper, max, length, ...)
//     plus sum and round is always available.
//
// Values cross the boundary through ToCty and FromCty. Numbers come back as
// float64, lists and tuples as []any, objects and maps as map[string]any.
package hcl
