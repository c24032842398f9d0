// Package inmemorystore provides a thread-safe, in-memory implementation
// of the resultstore.Store interface. It is suitable for the CLI, for tests,
// or for any single process where test outcomes do not need to outlive it.
package inmemorystore
