package dmnxml

import (
	"encoding/xml"
	"fmt"
	"strconv"

	"github.com/spf13/cast"
	"github.com/specialistvlad/dmngrid/internal/model"
)

// idSource hands out ids for generated elements. A new one is used for every
// export so ids never depend on earlier calls.
type idSource struct {
	prefix string
	next   int
}

func (s *idSource) id() string {
	s.next++
	return fmt.Sprintf("%s%d", s.prefix, s.next)
}

// Export renders m as an indented DMN document, XML declaration included.
func Export(m *model.Model) ([]byte, error) {
	ids := &idSource{prefix: "_generated_"}

	doc := definitions{
		Xmlns:       NamespaceDMN,
		XmlnsFeel:   NamespaceFEEL,
		ID:          m.ID,
		Name:        m.Name,
		Namespace:   m.Namespace,
		Description: m.Description,
	}

	for _, in := range m.Inputs {
		doc.Inputs = append(doc.Inputs, inputXML{
			ID:          in.ID,
			Name:        in.Name,
			Description: in.Description,
			Variable:    variableXML{Name: in.Name, TypeRef: string(in.TypeRef)},
		})
	}

	for _, k := range m.KnowledgeModels {
		b := bkmXML{
			ID:          k.ID,
			Name:        k.Name,
			Description: k.Description,
			Variable:    variableXML{Name: k.Name, TypeRef: string(k.TypeRef)},
			Logic:       logicXML{TypeRef: string(k.TypeRef), Literal: literalXML{Text: k.Expression}},
		}
		for _, p := range k.Parameters {
			b.Logic.Parameters = append(b.Logic.Parameters, variableXML{Name: p.Name, TypeRef: string(p.TypeRef)})
		}
		doc.Knowledge = append(doc.Knowledge, b)
	}

	for _, c := range m.Constants {
		doc.Decisions = append(doc.Decisions, decXML{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Extension:   &extensionXML{Constant: &constantXML{Type: string(c.Type), Category: c.Category}},
			Variable:    variableXML{Name: c.Name, TypeRef: string(c.Type)},
			Literal:     literalXML{Text: constantLiteral(c)},
		})
	}

	for _, d := range m.Decisions {
		doc.Decisions = append(doc.Decisions, decisionXML(m, d, ids))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode DMN document: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

func decisionXML(m *model.Model, d model.Decision, ids *idSource) decXML {
	x := decXML{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Variable:    variableXML{Name: d.Name, TypeRef: string(d.TypeRef)},
		Literal:     literalXML{Text: d.Expression},
	}

	declared := make(map[string]bool, len(d.InformationRequirements))
	for _, req := range d.InformationRequirements {
		declared[req.Href] = true
		r := infoReqXML{ID: req.ID}
		if r.ID == "" {
			r.ID = ids.id()
		}
		href := &hrefXML{Href: "#" + req.Href}
		if req.Type == model.RequirementInput {
			r.RequiredInput = href
		} else {
			r.RequiredDecision = href
		}
		x.InfoReqs = append(x.InfoReqs, r)
	}

	for _, c := range DetectConstantReferences(d.Expression, m.Constants) {
		if declared[c.ID] {
			continue
		}
		declared[c.ID] = true
		x.InfoReqs = append(x.InfoReqs, infoReqXML{
			ID:               ids.id(),
			RequiredDecision: &hrefXML{Href: "#" + c.ID},
		})
	}

	for _, req := range d.KnowledgeRequirements {
		r := knowReqXML{ID: req.ID, RequiredKnowledge: hrefXML{Href: "#" + req.Href}}
		if r.ID == "" {
			r.ID = ids.id()
		}
		x.KnowReqs = append(x.KnowReqs, r)
	}
	return x
}

// constantLiteral writes a constant value as expression text. Strings are
// quoted.
func constantLiteral(c model.Constant) string {
	switch c.Type {
	case model.ConstantString:
		return strconv.Quote(cast.ToString(c.Value))
	case model.ConstantBoolean:
		return strconv.FormatBool(cast.ToBool(c.Value))
	default:
		return strconv.FormatFloat(cast.ToFloat64(c.Value), 'f', -1, 64)
	}
}
