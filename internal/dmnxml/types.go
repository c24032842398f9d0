package dmnxml

import "encoding/xml"

// Namespaces written on the definitions element.
const (
	NamespaceDMN  = "https://www.omg.org/spec/DMN/20191111/MODEL/"
	NamespaceFEEL = "https://www.omg.org/spec/DMN/20191111/FEEL/"
	// NamespaceExtension qualifies the constant marker inside extensionElements.
	NamespaceExtension = "https://github.com/specialistvlad/dmngrid/dmn-extension"
)

type definitions struct {
	XMLName     xml.Name   `xml:"definitions"`
	Xmlns       string     `xml:"xmlns,attr,omitempty"`
	XmlnsFeel   string     `xml:"xmlns:feel,attr,omitempty"`
	ID          string     `xml:"id,attr"`
	Name        string     `xml:"name,attr"`
	Namespace   string     `xml:"namespace,attr"`
	Description string     `xml:"description,omitempty"`
	Inputs      []inputXML `xml:"inputData"`
	Knowledge   []bkmXML   `xml:"businessKnowledgeModel"`
	Decisions   []decXML   `xml:"decision"`
}

type variableXML struct {
	Name    string `xml:"name,attr"`
	TypeRef string `xml:"typeRef,attr,omitempty"`
}

type inputXML struct {
	ID          string      `xml:"id,attr"`
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description,omitempty"`
	Variable    variableXML `xml:"variable"`
}

type literalXML struct {
	Text string `xml:"text"`
}

type bkmXML struct {
	ID          string      `xml:"id,attr"`
	Name        string      `xml:"name,attr"`
	Description string      `xml:"description,omitempty"`
	Variable    variableXML `xml:"variable"`
	Logic       logicXML    `xml:"encapsulatedLogic"`
}

type logicXML struct {
	TypeRef    string        `xml:"typeRef,attr,omitempty"`
	Parameters []variableXML `xml:"formalParameter"`
	Literal    literalXML    `xml:"literalExpression"`
}

type hrefXML struct {
	Href string `xml:"href,attr"`
}

type infoReqXML struct {
	ID               string   `xml:"id,attr,omitempty"`
	RequiredInput    *hrefXML `xml:"requiredInput,omitempty"`
	RequiredDecision *hrefXML `xml:"requiredDecision,omitempty"`
}

type knowReqXML struct {
	ID                string  `xml:"id,attr,omitempty"`
	RequiredKnowledge hrefXML `xml:"requiredKnowledge"`
}

type constantXML struct {
	XMLName  xml.Name `xml:"https://github.com/specialistvlad/dmngrid/dmn-extension constant"`
	Type     string   `xml:"type,attr"`
	Category string   `xml:"category,attr,omitempty"`
}

type extensionXML struct {
	Constant *constantXML `xml:"https://github.com/specialistvlad/dmngrid/dmn-extension constant"`
}

type decXML struct {
	ID          string        `xml:"id,attr"`
	Name        string        `xml:"name,attr"`
	Description string        `xml:"description,omitempty"`
	Extension   *extensionXML `xml:"extensionElements,omitempty"`
	Variable    variableXML   `xml:"variable"`
	InfoReqs    []infoReqXML  `xml:"informationRequirement"`
	KnowReqs    []knowReqXML  `xml:"knowledgeRequirement"`
	Literal     literalXML    `xml:"literalExpression"`
}
