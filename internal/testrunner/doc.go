// Package testrunner scores stored test cases against an engine.
//
// A run normalizes the case's inputs, evaluates the model once and compares
// every expectation with the produced decision value. Values are equal when
// their canonical JSON encodings are identical. JSON sorts record keys, so
// records compare regardless of key order; lists still compare element by
// element in order.
//
// Outcomes go to a resultstore.Store, never to the model.
package testrunner
