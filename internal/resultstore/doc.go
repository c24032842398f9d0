// Package resultstore defines where test case outcomes live between runs.
//
// A model owns its test cases, but their outcomes are not model state: they
// are kept in a Store, keyed by test case id, and thrown away by Clear. The
// store also tracks each case's lifecycle:
//
//	not_run -> running -> passed | failed
//
// Re-running a finished case moves it back to running. Only Clear returns a
// case to not_run.
//
// internal/inmemorystore holds results for a single process. The redisstore
// subpackage shares them between processes, for example between several
// evaluation service replicas.
package resultstore
