package tck

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/specialistvlad/dmngrid/internal/model"
)

const (
	NamespaceTestCase = "http://www.omg.org/spec/DMN/20180521/testcase"
	NamespaceXSI      = "http://www.w3.org/2001/XMLSchema-instance"
	NamespaceXSD      = "http://www.w3.org/2001/XMLSchema"
	NamespaceTCK      = "http://www.omg.org/spec/DMN/20180521/tck"
)

// DefaultTestCaseName names imported test cases without a name attribute.
const DefaultTestCaseName = "Imported Test Case"

type testCasesXML struct {
	XMLName   xml.Name      `xml:"testCases"`
	Xmlns     string        `xml:"xmlns,attr,omitempty"`
	XmlnsXSI  string        `xml:"xmlns:xsi,attr,omitempty"`
	XmlnsXSD  string        `xml:"xmlns:xsd,attr,omitempty"`
	XmlnsTCK  string        `xml:"xmlns:tck,attr,omitempty"`
	ModelName string        `xml:"modelName,omitempty"`
	TestCases []testCaseXML `xml:"testCase"`
}

type testCaseXML struct {
	ID          string          `xml:"id,attr,omitempty"`
	Name        string          `xml:"name,attr,omitempty"`
	Description string          `xml:"description,omitempty"`
	InputNodes  []inputNodeXML  `xml:"inputNode"`
	ResultNodes []resultNodeXML `xml:"resultNode"`
}

type inputNodeXML struct {
	Name  string `xml:"name,attr"`
	Value *Value `xml:"value"`
}

type resultNodeXML struct {
	Name     string       `xml:"name,attr"`
	Type     string       `xml:"type,attr,omitempty"`
	Expected *expectedXML `xml:"expected"`
}

type expectedXML struct {
	Value *Value `xml:"value"`
}

// Export writes every test case of m. Input values are keyed by the current
// input name; inputs that no longer exist are left out. Expectations use the
// current decision name when the decision still exists and the stored name
// otherwise.
func Export(m *model.Model) ([]byte, error) {
	doc := testCasesXML{
		Xmlns:     NamespaceTestCase,
		XmlnsXSI:  NamespaceXSI,
		XmlnsXSD:  NamespaceXSD,
		XmlnsTCK:  NamespaceTCK,
		ModelName: m.Name,
	}

	for _, tc := range m.TestCases {
		x := testCaseXML{ID: tc.ID, Name: tc.Name, Description: tc.Description}

		ids := make([]string, 0, len(tc.Inputs))
		for id := range tc.Inputs {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return inputIndex(m, ids[i]) < inputIndex(m, ids[j]) })
		for _, id := range ids {
			in, ok := m.Input(id)
			if !ok {
				continue
			}
			x.InputNodes = append(x.InputNodes, inputNodeXML{Name: in.Name, Value: &Value{V: tc.Inputs[id]}})
		}

		for _, exp := range tc.Expectations {
			name := exp.DecisionName
			if d, ok := m.Decision(exp.DecisionID); ok {
				name = d.Name
			}
			x.ResultNodes = append(x.ResultNodes, resultNodeXML{
				Name:     name,
				Type:     "decision",
				Expected: &expectedXML{Value: &Value{V: exp.ExpectedValue}},
			})
		}
		doc.TestCases = append(doc.TestCases, x)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode TCK document: %w", err)
	}
	out := append([]byte(xml.Header), body...)
	return append(out, '\n'), nil
}

func inputIndex(m *model.Model, id string) int {
	for i, in := range m.Inputs {
		if in.ID == id {
			return i
		}
	}
	return len(m.Inputs)
}

// ImportResult holds the test cases read from a TCK document.
type ImportResult struct {
	TestCases []model.TestCase
	Warnings  []string
}

// Import reads test cases from data and binds them to m by name. The model
// is not modified.
func Import(data []byte, m *model.Model) (*ImportResult, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("TCK document is empty")
	}

	var doc testCasesXML
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("XML parse error: %w", err)
	}

	res := &ImportResult{TestCases: []model.TestCase{}, Warnings: []string{}}
	if len(doc.TestCases) == 0 {
		res.Warnings = append(res.Warnings, "No test cases found in TCK file")
		return res, nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, x := range doc.TestCases {
		tc := model.TestCase{
			ID:           x.ID,
			Name:         x.Name,
			Description:  x.Description,
			Inputs:       map[string]any{},
			Expectations: []model.Expectation{},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if tc.ID == "" {
			tc.ID = model.NewID()
		}
		if tc.Name == "" {
			tc.Name = DefaultTestCaseName
		}

		for _, node := range x.InputNodes {
			if node.Name == "" {
				continue
			}
			in, ok := m.InputByName(node.Name)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Test %q: Input %q not found in model, skipped", tc.Name, node.Name))
				continue
			}
			if node.Value != nil {
				tc.Inputs[in.ID] = node.Value.V
			}
		}

		for _, node := range x.ResultNodes {
			if node.Name == "" {
				continue
			}
			if node.Type != "" && node.Type != "decision" {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Test %q: Result node type %q not supported, skipped", tc.Name, node.Type))
				continue
			}
			d, ok := m.DecisionByName(node.Name)
			if !ok {
				res.Warnings = append(res.Warnings, fmt.Sprintf("Test %q: Decision %q not found in model, skipped", tc.Name, node.Name))
				continue
			}
			if node.Expected == nil || node.Expected.Value == nil {
				continue
			}
			tc.Expectations = append(tc.Expectations, model.Expectation{
				DecisionID:    d.ID,
				DecisionName:  d.Name,
				ExpectedValue: node.Expected.Value.V,
			})
		}
		res.TestCases = append(res.TestCases, tc)
	}
	return res, nil
}
