// Package tck reads and writes test cases in the DMN TCK testCases format.
//
// Inputs and expected results are matched to the model by element name,
// ignoring case, never by id. Names that match nothing are reported as
// warnings and skipped, so a partially matching file still imports.
package tck
