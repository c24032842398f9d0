// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file holds read-only lookups over a Model's element collections.
//
// Lookups return pointers into the model's slices so callers can inspect an
// element without copying it. Callers in the evaluation path must not write
// through them.
package model

import "strings"

// Input returns the input with the given id.
func (m *Model) Input(id string) (*InputData, bool) {
	for i := range m.Inputs {
		if m.Inputs[i].ID == id {
			return &m.Inputs[i], true
		}
	}
	return nil, false
}

// Decision returns the decision with the given id.
func (m *Model) Decision(id string) (*Decision, bool) {
	for i := range m.Decisions {
		if m.Decisions[i].ID == id {
			return &m.Decisions[i], true
		}
	}
	return nil, false
}

// KnowledgeModel returns the BKM with the given id.
func (m *Model) KnowledgeModel(id string) (*KnowledgeModel, bool) {
	for i := range m.KnowledgeModels {
		if m.KnowledgeModels[i].ID == id {
			return &m.KnowledgeModels[i], true
		}
	}
	return nil, false
}

// Constant returns the constant with the given id.
func (m *Model) Constant(id string) (*Constant, bool) {
	for i := range m.Constants {
		if m.Constants[i].ID == id {
			return &m.Constants[i], true
		}
	}
	return nil, false
}

// TestCase returns the test case with the given id.
func (m *Model) TestCase(id string) (*TestCase, bool) {
	for i := range m.TestCases {
		if m.TestCases[i].ID == id {
			return &m.TestCases[i], true
		}
	}
	return nil, false
}

// InputByName finds an input by name, ignoring case.
func (m *Model) InputByName(name string) (*InputData, bool) {
	for i := range m.Inputs {
		if strings.EqualFold(m.Inputs[i].Name, name) {
			return &m.Inputs[i], true
		}
	}
	return nil, false
}

// DecisionByName finds a decision by name, ignoring case.
func (m *Model) DecisionByName(name string) (*Decision, bool) {
	for i := range m.Decisions {
		if strings.EqualFold(m.Decisions[i].Name, name) {
			return &m.Decisions[i], true
		}
	}
	return nil, false
}

// ElementName returns the name of any element with the given id, searching
// inputs, decisions, knowledge models and constants in that order.
func (m *Model) ElementName(id string) (string, bool) {
	if in, ok := m.Input(id); ok {
		return in.Name, true
	}
	if d, ok := m.Decision(id); ok {
		return d.Name, true
	}
	if k, ok := m.KnowledgeModel(id); ok {
		return k.Name, true
	}
	if c, ok := m.Constant(id); ok {
		return c.Name, true
	}
	return "", false
}
