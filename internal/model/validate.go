// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file implements the modeler-facing lint of a Model.
//
// The executor never calls Validate. Duplicate names and dangling hrefs are
// tolerated during evaluation (later bindings win, dangling requirements fail
// only their own decision); Validate exists so tooling can surface those
// problems before a run.
package model

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Validate reports every structural problem found in the model. The returned
// error is a *multierror.Error listing each finding, or nil.
func (m *Model) Validate() error {
	var result *multierror.Error

	ids := map[string]string{}
	names := map[string]string{}
	track := func(kind, id, name string) {
		if id == "" {
			result = multierror.Append(result, fmt.Errorf("%s %q has an empty id", kind, name))
		} else if prev, dup := ids[id]; dup {
			result = multierror.Append(result, fmt.Errorf("%s %q reuses id %q already used by %s", kind, name, id, prev))
		} else {
			ids[id] = kind + " " + name
		}
		if strings.TrimSpace(name) == "" {
			result = multierror.Append(result, fmt.Errorf("%s %q has an empty name", kind, id))
			return
		}
		key := strings.ToLower(name)
		if prev, dup := names[key]; dup {
			result = multierror.Append(result, fmt.Errorf("%s name %q collides with %s", kind, name, prev))
		} else {
			names[key] = kind + " " + id
		}
	}

	for _, in := range m.Inputs {
		track("input", in.ID, in.Name)
	}
	for _, c := range m.Constants {
		track("constant", c.ID, c.Name)
		if err := checkConstant(c); err != nil {
			result = multierror.Append(result, err)
		}
	}
	for _, k := range m.KnowledgeModels {
		track("knowledge model", k.ID, k.Name)
		if strings.TrimSpace(k.Expression) == "" {
			result = multierror.Append(result, fmt.Errorf("knowledge model %q has an empty expression", k.Name))
		}
	}
	for _, d := range m.Decisions {
		track("decision", d.ID, d.Name)
		if strings.TrimSpace(d.Expression) == "" {
			result = multierror.Append(result, fmt.Errorf("decision %q has an empty expression", d.Name))
		}
	}

	for _, d := range m.Decisions {
		for _, r := range d.InformationRequirements {
			switch r.Type {
			case RequirementInput:
				if _, ok := m.Input(r.Href); !ok {
					result = multierror.Append(result, fmt.Errorf("decision %q requires unknown input %q", d.Name, r.Href))
				}
			case RequirementDecision:
				if _, ok := m.Decision(r.Href); !ok {
					result = multierror.Append(result, fmt.Errorf("decision %q requires unknown decision %q", d.Name, r.Href))
				}
			default:
				result = multierror.Append(result, fmt.Errorf("decision %q has requirement %q of unknown type %q", d.Name, r.ID, r.Type))
			}
		}
		for _, r := range d.KnowledgeRequirements {
			if _, ok := m.KnowledgeModel(r.Href); !ok {
				result = multierror.Append(result, fmt.Errorf("decision %q requires unknown knowledge model %q", d.Name, r.Href))
			}
		}
	}

	caseIDs := map[string]string{}
	for _, tc := range m.TestCases {
		if prev, dup := caseIDs[tc.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("test case %q reuses id %q already used by test case %q", tc.Name, tc.ID, prev))
		} else {
			caseIDs[tc.ID] = tc.Name
		}
		for _, e := range tc.Expectations {
			if _, ok := m.Decision(e.DecisionID); !ok {
				result = multierror.Append(result, fmt.Errorf("test case %q expects unknown decision %q", tc.Name, e.DecisionID))
			}
		}
	}

	return result.ErrorOrNil()
}

func checkConstant(c Constant) error {
	var ok bool
	switch c.Type {
	case ConstantNumber:
		switch c.Value.(type) {
		case float64, float32, int, int64:
			ok = true
		}
	case ConstantString:
		_, ok = c.Value.(string)
	case ConstantBoolean:
		_, ok = c.Value.(bool)
	default:
		return fmt.Errorf("constant %q has unknown type %q", c.Name, c.Type)
	}
	if !ok {
		return fmt.Errorf("constant %q value %v does not match type %q", c.Name, c.Value, c.Type)
	}
	return nil
}
