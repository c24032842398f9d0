package dag

import (
	"context"
	"errors"
	"fmt"

	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/model"
)

// CircularDependencyError is returned when the decisions of a model cannot be
// ordered. It names the decision at which the cycle was detected and aborts
// the whole evaluation.
type CircularDependencyError struct {
	DecisionID   string
	DecisionName string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected at: %s", e.DecisionName)
}

// ResolutionError records a requirement whose href matches no element of the
// expected kind. It fails only the decision that declares it.
type ResolutionError struct {
	DecisionID   string
	DecisionName string
	Kind         string
	Href         string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("decision %q requires unknown %s %q", e.DecisionName, e.Kind, e.Href)
}

// Plan is the evaluation order of a model's decisions.
type Plan struct {
	// Order lists every decision exactly once, each after the decisions it
	// requires.
	Order []*model.Decision
	// Unresolved maps a decision id to the first dangling requirement it
	// declares. Those decisions still appear in Order.
	Unresolved map[string]*ResolutionError
}

// Resolve orders the decisions of m by their decision-typed information
// requirements. Input and knowledge requirements are checked for dangling
// hrefs but take no part in the ordering. When two decisions share an id the
// first one wins.
func Resolve(ctx context.Context, m *model.Model) (*Plan, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Resolving decision order.", "decisions", len(m.Decisions))

	g := New()
	byID := make(map[string]*model.Decision, len(m.Decisions))
	for i := range m.Decisions {
		d := &m.Decisions[i]
		if _, dup := byID[d.ID]; dup {
			logger.Warn("Duplicate decision id, later definition ignored.", "id", d.ID, "name", d.Name)
			continue
		}
		byID[d.ID] = d
		g.AddNode(d.ID)
	}

	plan := &Plan{
		Order:      make([]*model.Decision, 0, len(byID)),
		Unresolved: map[string]*ResolutionError{},
	}

	for i := range m.Decisions {
		d := &m.Decisions[i]
		if byID[d.ID] != d {
			continue
		}
		for _, req := range d.InformationRequirements {
			if req.Type == model.RequirementDecision {
				if _, ok := byID[req.Href]; ok {
					if err := g.AddEdge(req.Href, d.ID); err != nil {
						return nil, fmt.Errorf("internal error: %w", err)
					}
					continue
				}
			}
			if !hrefResolves(m, req) {
				plan.recordUnresolved(d, string(req.Type), req.Href)
			}
		}
		for _, req := range d.KnowledgeRequirements {
			if _, ok := m.KnowledgeModel(req.Href); !ok {
				plan.recordUnresolved(d, "knowledge model", req.Href)
			}
		}
	}

	ids, err := g.TopologicalOrder()
	if err != nil {
		var cycle *CycleError
		if errors.As(err, &cycle) {
			d := byID[cycle.NodeID]
			logger.Debug("Cycle found while ordering decisions.", "decision", d.Name)
			return nil, &CircularDependencyError{DecisionID: d.ID, DecisionName: d.Name}
		}
		return nil, err
	}

	for _, id := range ids {
		plan.Order = append(plan.Order, byID[id])
	}
	logger.Debug("Decision order resolved.", "ordered", len(plan.Order), "unresolved", len(plan.Unresolved))
	return plan, nil
}

func (p *Plan) recordUnresolved(d *model.Decision, kind, href string) {
	if _, seen := p.Unresolved[d.ID]; seen {
		return
	}
	p.Unresolved[d.ID] = &ResolutionError{
		DecisionID:   d.ID,
		DecisionName: d.Name,
		Kind:         kind,
		Href:         href,
	}
}

// hrefResolves accepts constants as targets of either requirement type, as
// the interchange format encodes them as decisions.
func hrefResolves(m *model.Model, req model.InformationRequirement) bool {
	if _, ok := m.Constant(req.Href); ok {
		return true
	}
	switch req.Type {
	case model.RequirementInput:
		_, ok := m.Input(req.Href)
		return ok
	case model.RequirementDecision:
		_, ok := m.Decision(req.Href)
		return ok
	default:
		return false
	}
}
