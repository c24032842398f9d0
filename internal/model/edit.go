// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the editing operations on a Model.
//
// Why do removals cascade?
//
// A requirement is only meaningful while its target exists. Removing an
// element therefore also drops every requirement whose Href points at it, so
// an edited model never carries dangling references introduced by the edit
// itself. Hrefs that were already dangling in a loaded document are left
// alone; the resolver reports them per decision.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an edit targets an element that is absent.
var ErrNotFound = errors.New("element not found")

// NewID generates an element id. XML NCNames cannot start with a digit, so
// the uuid is prefixed with an underscore.
func NewID() string {
	return "_" + uuid.NewString()
}

// NameID derives a stable element id from a name, so documents that omit an
// id get the same one every time they are read.
func NameID(name string) string {
	return "_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// AddInformationRequirement declares that the decision depends on the input
// or decision identified by href. Adding an href that is already required is
// a no-op and returns the existing requirement.
func (m *Model) AddInformationRequirement(decisionID, href string, typ RequirementType) (*InformationRequirement, error) {
	d, ok := m.Decision(decisionID)
	if !ok {
		return nil, fmt.Errorf("decision %q: %w", decisionID, ErrNotFound)
	}
	for i := range d.InformationRequirements {
		if d.InformationRequirements[i].Href == href {
			return &d.InformationRequirements[i], nil
		}
	}
	d.InformationRequirements = append(d.InformationRequirements, InformationRequirement{
		ID:   NewID(),
		Type: typ,
		Href: href,
	})
	return &d.InformationRequirements[len(d.InformationRequirements)-1], nil
}

// AddKnowledgeRequirement declares that the decision calls the BKM
// identified by href. Duplicate hrefs are ignored.
func (m *Model) AddKnowledgeRequirement(decisionID, href string) (*KnowledgeRequirement, error) {
	d, ok := m.Decision(decisionID)
	if !ok {
		return nil, fmt.Errorf("decision %q: %w", decisionID, ErrNotFound)
	}
	for i := range d.KnowledgeRequirements {
		if d.KnowledgeRequirements[i].Href == href {
			return &d.KnowledgeRequirements[i], nil
		}
	}
	d.KnowledgeRequirements = append(d.KnowledgeRequirements, KnowledgeRequirement{
		ID:   NewID(),
		Href: href,
	})
	return &d.KnowledgeRequirements[len(d.KnowledgeRequirements)-1], nil
}

// RemoveRequirement deletes a requirement of either kind by its own id.
func (m *Model) RemoveRequirement(decisionID, requirementID string) error {
	d, ok := m.Decision(decisionID)
	if !ok {
		return fmt.Errorf("decision %q: %w", decisionID, ErrNotFound)
	}
	d.InformationRequirements = filter(d.InformationRequirements, func(r InformationRequirement) bool {
		return r.ID != requirementID
	})
	d.KnowledgeRequirements = filter(d.KnowledgeRequirements, func(r KnowledgeRequirement) bool {
		return r.ID != requirementID
	})
	return nil
}

// RemoveInput deletes an input and every requirement pointing at it. Test
// case fixtures keyed by the input id are pruned as well.
func (m *Model) RemoveInput(id string) error {
	if _, ok := m.Input(id); !ok {
		return fmt.Errorf("input %q: %w", id, ErrNotFound)
	}
	m.Inputs = filter(m.Inputs, func(in InputData) bool { return in.ID != id })
	m.dropInformationHref(id)
	for i := range m.TestCases {
		delete(m.TestCases[i].Inputs, id)
	}
	return nil
}

// RemoveDecision deletes a decision and every requirement pointing at it.
func (m *Model) RemoveDecision(id string) error {
	if _, ok := m.Decision(id); !ok {
		return fmt.Errorf("decision %q: %w", id, ErrNotFound)
	}
	m.Decisions = filter(m.Decisions, func(d Decision) bool { return d.ID != id })
	m.dropInformationHref(id)
	return nil
}

// RemoveKnowledgeModel deletes a BKM and every knowledge requirement on it.
func (m *Model) RemoveKnowledgeModel(id string) error {
	if _, ok := m.KnowledgeModel(id); !ok {
		return fmt.Errorf("knowledge model %q: %w", id, ErrNotFound)
	}
	m.KnowledgeModels = filter(m.KnowledgeModels, func(k KnowledgeModel) bool { return k.ID != id })
	for i := range m.Decisions {
		m.Decisions[i].KnowledgeRequirements = filter(m.Decisions[i].KnowledgeRequirements, func(r KnowledgeRequirement) bool {
			return r.Href != id
		})
	}
	return nil
}

// RemoveConstant deletes a constant. Information requirements can point at
// constants after an import from the interchange format, so those go too.
func (m *Model) RemoveConstant(id string) error {
	if _, ok := m.Constant(id); !ok {
		return fmt.Errorf("constant %q: %w", id, ErrNotFound)
	}
	m.Constants = filter(m.Constants, func(c Constant) bool { return c.ID != id })
	m.dropInformationHref(id)
	return nil
}

// UpsertTestCase replaces the test case with the same id or appends it.
// Missing ids are generated and timestamps are maintained.
func (m *Model) UpsertTestCase(tc TestCase) TestCase {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if tc.ID == "" {
		tc.ID = NewID()
	}
	tc.UpdatedAt = now
	if existing, ok := m.TestCase(tc.ID); ok {
		tc.CreatedAt = existing.CreatedAt
		*existing = tc
		return tc
	}
	if tc.CreatedAt == "" {
		tc.CreatedAt = now
	}
	m.TestCases = append(m.TestCases, tc)
	return tc
}

// RemoveTestCase deletes a test case by id.
func (m *Model) RemoveTestCase(id string) error {
	if _, ok := m.TestCase(id); !ok {
		return fmt.Errorf("test case %q: %w", id, ErrNotFound)
	}
	m.TestCases = filter(m.TestCases, func(tc TestCase) bool { return tc.ID != id })
	return nil
}

// DuplicateTestCase copies a test case under a new id with " (copy)"
// appended to its name.
func (m *Model) DuplicateTestCase(id string) (TestCase, error) {
	src, ok := m.TestCase(id)
	if !ok {
		return TestCase{}, fmt.Errorf("test case %q: %w", id, ErrNotFound)
	}
	dup := TestCase{
		Name:         src.Name + " (copy)",
		Description:  src.Description,
		Inputs:       make(map[string]any, len(src.Inputs)),
		Expectations: append([]Expectation(nil), src.Expectations...),
	}
	for k, v := range src.Inputs {
		dup.Inputs[k] = v
	}
	return m.UpsertTestCase(dup), nil
}

func (m *Model) dropInformationHref(href string) {
	for i := range m.Decisions {
		m.Decisions[i].InformationRequirements = filter(m.Decisions[i].InformationRequirements, func(r InformationRequirement) bool {
			return r.Href != href
		})
	}
}

func filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}
