package inmemorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/dmngrid/internal/resultstore"
)

// Store is an in-memory implementation of resultstore.Store.
//
// Statuses and results live in two independent sync.Maps keyed by test case
// id. A per-store mutex serializes transitions so the check and the write of
// a status change happen together; reads never take it.
type Store struct {
	mu       sync.Mutex
	statuses sync.Map // Key: test case id, Value: resultstore.Status
	results  sync.Map // Key: test case id, Value: resultstore.TestCaseResult
}

var _ resultstore.Store = (*Store)(nil)

// New creates a new, empty in-memory result store.
func New() *Store {
	return &Store{}
}

// SetStatus moves a test case to status.
func (s *Store) SetStatus(_ context.Context, testCaseID string, status resultstore.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := resultstore.CheckTransition(s.status(testCaseID), status); err != nil {
		return err
	}
	s.statuses.Store(testCaseID, status)
	return nil
}

// GetStatus retrieves the status of a test case. If none has been set, it
// returns StatusNotRun.
func (s *Store) GetStatus(_ context.Context, testCaseID string) (resultstore.Status, error) {
	return s.status(testCaseID), nil
}

func (s *Store) status(testCaseID string) resultstore.Status {
	v, ok := s.statuses.Load(testCaseID)
	if !ok {
		return resultstore.StatusNotRun
	}
	return v.(resultstore.Status)
}

// SetResult records the result of a finished run.
func (s *Store) SetResult(_ context.Context, result resultstore.TestCaseResult) error {
	if err := resultstore.ValidateResult(result); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := resultstore.CheckTransition(s.status(result.TestCaseID), result.Status); err != nil {
		return err
	}
	s.results.Store(result.TestCaseID, result)
	s.statuses.Store(result.TestCaseID, result.Status)
	return nil
}

// GetResult retrieves the last recorded result of a test case.
func (s *Store) GetResult(_ context.Context, testCaseID string) (*resultstore.TestCaseResult, bool, error) {
	v, ok := s.results.Load(testCaseID)
	if !ok {
		return nil, false, nil
	}
	r := v.(resultstore.TestCaseResult)
	return &r, true, nil
}

// Results returns every recorded result ordered by test case id.
func (s *Store) Results(_ context.Context) ([]resultstore.TestCaseResult, error) {
	out := []resultstore.TestCaseResult{}
	s.results.Range(func(_, v any) bool {
		out = append(out, v.(resultstore.TestCaseResult))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].TestCaseID < out[j].TestCaseID })
	return out, nil
}

// Clear drops every status and result.
func (s *Store) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.statuses.Clear()
	s.results.Clear()
	return nil
}
