package dmnxml

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/specialistvlad/dmngrid/internal/model"
)

// Import reads a document produced by Export, or any DMN file limited to
// literal expressions, back into a model. Decisions carrying the constant
// marker become constants, and information requirements pointing at those
// constants are dropped since constants are always in scope.
func Import(data []byte) (*model.Model, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("DMN document is empty")
	}

	var doc definitions
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse DMN document: %w", err)
	}

	m := &model.Model{
		ID:              doc.ID,
		Name:            doc.Name,
		Namespace:       doc.Namespace,
		Description:     strings.TrimSpace(doc.Description),
		Inputs:          []model.InputData{},
		Decisions:       []model.Decision{},
		KnowledgeModels: []model.KnowledgeModel{},
		Constants:       []model.Constant{},
	}

	for _, in := range doc.Inputs {
		m.Inputs = append(m.Inputs, model.InputData{
			ID:          in.ID,
			Name:        nameOf(in.Name, in.Variable),
			TypeRef:     model.TypeRef(in.Variable.TypeRef),
			Description: strings.TrimSpace(in.Description),
		})
	}

	for _, b := range doc.Knowledge {
		k := model.KnowledgeModel{
			ID:          b.ID,
			Name:        nameOf(b.Name, b.Variable),
			Description: strings.TrimSpace(b.Description),
			TypeRef:     model.TypeRef(b.Variable.TypeRef),
			Parameters:  []model.Parameter{},
			Expression:  strings.TrimSpace(b.Logic.Literal.Text),
		}
		for _, p := range b.Logic.Parameters {
			k.Parameters = append(k.Parameters, model.Parameter{Name: p.Name, TypeRef: model.TypeRef(p.TypeRef)})
		}
		m.KnowledgeModels = append(m.KnowledgeModels, k)
	}

	constantIDs := map[string]bool{}
	for _, d := range doc.Decisions {
		if d.Extension == nil || d.Extension.Constant == nil {
			continue
		}
		c, err := constantFromXML(d)
		if err != nil {
			return nil, err
		}
		constantIDs[c.ID] = true
		m.Constants = append(m.Constants, c)
	}

	for _, d := range doc.Decisions {
		if d.Extension != nil && d.Extension.Constant != nil {
			continue
		}
		dec := model.Decision{
			ID:                      d.ID,
			Name:                    nameOf(d.Name, d.Variable),
			Description:             strings.TrimSpace(d.Description),
			TypeRef:                 model.TypeRef(d.Variable.TypeRef),
			Expression:              strings.TrimSpace(d.Literal.Text),
			InformationRequirements: []model.InformationRequirement{},
			KnowledgeRequirements:   []model.KnowledgeRequirement{},
		}
		for _, r := range d.InfoReqs {
			req := model.InformationRequirement{ID: r.ID}
			switch {
			case r.RequiredInput != nil:
				req.Type, req.Href = model.RequirementInput, stripHash(r.RequiredInput.Href)
			case r.RequiredDecision != nil:
				req.Type, req.Href = model.RequirementDecision, stripHash(r.RequiredDecision.Href)
			default:
				return nil, fmt.Errorf("decision %q has an information requirement without a target", dec.Name)
			}
			if constantIDs[req.Href] {
				continue
			}
			dec.InformationRequirements = append(dec.InformationRequirements, req)
		}
		for _, r := range d.KnowReqs {
			dec.KnowledgeRequirements = append(dec.KnowledgeRequirements, model.KnowledgeRequirement{
				ID:   r.ID,
				Href: stripHash(r.RequiredKnowledge.Href),
			})
		}
		m.Decisions = append(m.Decisions, dec)
	}

	return m, nil
}

func constantFromXML(d decXML) (model.Constant, error) {
	marker := d.Extension.Constant
	c := model.Constant{
		ID:          d.ID,
		Name:        nameOf(d.Name, d.Variable),
		Type:        model.ConstantType(marker.Type),
		Description: strings.TrimSpace(d.Description),
		Category:    marker.Category,
	}
	text := strings.TrimSpace(d.Literal.Text)

	switch c.Type {
	case model.ConstantString:
		s, err := strconv.Unquote(text)
		if err != nil {
			s = strings.Trim(text, `"`)
		}
		c.Value = s
	case model.ConstantBoolean:
		b, err := strconv.ParseBool(text)
		if err != nil {
			return c, fmt.Errorf("constant %q: invalid boolean %q", c.Name, text)
		}
		c.Value = b
	case model.ConstantNumber:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return c, fmt.Errorf("constant %q: invalid number %q", c.Name, text)
		}
		c.Value = f
	default:
		return c, fmt.Errorf("constant %q has unknown type %q", c.Name, marker.Type)
	}
	return c, nil
}

func nameOf(name string, v variableXML) string {
	if name != "" {
		return name
	}
	return v.Name
}

func stripHash(href string) string {
	return strings.TrimPrefix(href, "#")
}
