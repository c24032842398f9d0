// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines the element types of a decision model.
//
// Why tag every field for both YAML and JSON?
//
// Model documents are read with yaml.v3, which also accepts JSON input, while
// the same structs are written back as JSON by the service and the CLI. Both
// encodings share one set of camelCase field names so a document survives a
// round trip through either format.
package model

// TypeRef names the declared data type of an element.
type TypeRef string

const (
	TypeString   TypeRef = "string"
	TypeNumber   TypeRef = "number"
	TypeBoolean  TypeRef = "boolean"
	TypeDate     TypeRef = "date"
	TypeTime     TypeRef = "time"
	TypeDateTime TypeRef = "dateTime"
	TypeContext  TypeRef = "context"
	TypeList     TypeRef = "list"
	TypeAny      TypeRef = "any"
)

// RequirementType distinguishes what an InformationRequirement points at.
type RequirementType string

const (
	RequirementInput    RequirementType = "input"
	RequirementDecision RequirementType = "decision"
)

// ConstantType is the literal kind of a Constant's value.
type ConstantType string

const (
	ConstantNumber  ConstantType = "number"
	ConstantString  ConstantType = "string"
	ConstantBoolean ConstantType = "boolean"
)

// Model is the root of a decision graph.
type Model struct {
	ID              string           `yaml:"id" json:"id"`
	Name            string           `yaml:"name" json:"name"`
	Namespace       string           `yaml:"namespace" json:"namespace"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs          []InputData      `yaml:"inputs" json:"inputs"`
	Decisions       []Decision       `yaml:"decisions" json:"decisions"`
	KnowledgeModels []KnowledgeModel `yaml:"businessKnowledgeModels" json:"businessKnowledgeModels"`
	Constants       []Constant       `yaml:"constants" json:"constants"`
	TestCases       []TestCase       `yaml:"testCases,omitempty" json:"testCases,omitempty"`
}

// InputData is a leaf value supplied externally.
type InputData struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	TypeRef     TypeRef `yaml:"typeRef" json:"typeRef"`
}

// Parameter is a formal parameter of a KnowledgeModel.
type Parameter struct {
	Name    string  `yaml:"name" json:"name"`
	TypeRef TypeRef `yaml:"typeRef" json:"typeRef"`
}

// KnowledgeModel is a parameterized expression usable as a function.
type KnowledgeModel struct {
	ID          string      `yaml:"id" json:"id"`
	Name        string      `yaml:"name" json:"name"`
	Description string      `yaml:"description,omitempty" json:"description,omitempty"`
	TypeRef     TypeRef     `yaml:"typeRef" json:"typeRef"`
	Parameters  []Parameter `yaml:"parameters" json:"parameters"`
	Expression  string      `yaml:"expression" json:"expression"`
}

// Constant is a named literal. Value holds a float64, string or bool
// matching Type.
type Constant struct {
	ID          string       `yaml:"id" json:"id"`
	Name        string       `yaml:"name" json:"name"`
	Value       any          `yaml:"value" json:"value"`
	Type        ConstantType `yaml:"type" json:"type"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
	Category    string       `yaml:"category,omitempty" json:"category,omitempty"`
}

// InformationRequirement is a dependency on an input or another decision.
type InformationRequirement struct {
	ID   string          `yaml:"id" json:"id"`
	Type RequirementType `yaml:"type" json:"type"`
	Href string          `yaml:"href" json:"href"`
}

// KnowledgeRequirement is a dependency on a KnowledgeModel.
type KnowledgeRequirement struct {
	ID   string `yaml:"id" json:"id"`
	Href string `yaml:"href" json:"href"`
}

// Decision computes a value from its expression.
type Decision struct {
	ID                      string                   `yaml:"id" json:"id"`
	Name                    string                   `yaml:"name" json:"name"`
	Description             string                   `yaml:"description,omitempty" json:"description,omitempty"`
	TypeRef                 TypeRef                  `yaml:"typeRef" json:"typeRef"`
	Expression              string                   `yaml:"expression" json:"expression"`
	InformationRequirements []InformationRequirement `yaml:"informationRequirements" json:"informationRequirements"`
	KnowledgeRequirements   []KnowledgeRequirement   `yaml:"knowledgeRequirements" json:"knowledgeRequirements"`
}

// Expectation is the value a test case expects a decision to produce.
type Expectation struct {
	DecisionID    string `yaml:"decisionId" json:"decisionId"`
	DecisionName  string `yaml:"decisionName" json:"decisionName"`
	ExpectedValue any    `yaml:"expectedValue" json:"expectedValue"`
}

// TestCase is an input fixture with expected outputs. Inputs are keyed by
// input id. Timestamps are RFC 3339 strings.
type TestCase struct {
	ID           string         `yaml:"id" json:"id"`
	Name         string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description,omitempty" json:"description,omitempty"`
	Inputs       map[string]any `yaml:"inputs" json:"inputs"`
	Expectations []Expectation  `yaml:"expectations" json:"expectations"`
	CreatedAt    string         `yaml:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt    string         `yaml:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}
