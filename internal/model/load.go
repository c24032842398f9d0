// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file reads and writes model documents.
//
// Documents may be YAML or JSON. yaml.v3 accepts both, so a single decoder
// serves every file the CLI is handed, and Marshal picks the output format
// from the requested file extension.
package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a model document from disk.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file %q: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse model file %q: %w", path, err)
	}
	return m, nil
}

// Parse decodes a YAML or JSON model document. Element collections that are
// absent from the document are normalized to empty slices.
func Parse(data []byte) (*Model, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("empty model document")
	}
	var m Model
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, fmt.Errorf("model is missing required field 'name'")
	}
	if m.ID == "" {
		m.ID = NameID(m.Name)
	}
	m.normalize()
	return &m, nil
}

// Marshal encodes the model as JSON when format is "json" and as YAML
// otherwise.
func Marshal(m *Model, format string) ([]byte, error) {
	if strings.EqualFold(format, "json") {
		return json.MarshalIndent(m, "", "  ")
	}
	return yaml.Marshal(m)
}

// FormatFromPath returns "json" for .json files and "yaml" for anything else.
func FormatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

// LoadInputs reads an input value map (YAML or JSON object) from disk.
func LoadInputs(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inputs file %q: %w", path, err)
	}
	inputs := map[string]any{}
	if err := yaml.Unmarshal(data, &inputs); err != nil {
		return nil, fmt.Errorf("failed to parse inputs file %q: %w", path, err)
	}
	return inputs, nil
}

func (m *Model) normalize() {
	if m.Inputs == nil {
		m.Inputs = []InputData{}
	}
	if m.Decisions == nil {
		m.Decisions = []Decision{}
	}
	if m.KnowledgeModels == nil {
		m.KnowledgeModels = []KnowledgeModel{}
	}
	if m.Constants == nil {
		m.Constants = []Constant{}
	}
	for i := range m.Decisions {
		d := &m.Decisions[i]
		if d.InformationRequirements == nil {
			d.InformationRequirements = []InformationRequirement{}
		}
		if d.KnowledgeRequirements == nil {
			d.KnowledgeRequirements = []KnowledgeRequirement{}
		}
	}
	for i := range m.Constants {
		c := &m.Constants[i]
		// yaml.v3 decodes integer literals as int.
		if n, ok := c.Value.(int); ok {
			c.Value = float64(n)
		}
	}
}
