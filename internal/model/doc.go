// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go struct representation of a decision model.
// Its core purpose is to hold a strongly-typed, in-memory description of the
// modeler's definitions: the inputs, decisions, business knowledge models
// (BKMs), constants and test cases that make up one decision graph.
//
// # Core Concepts
//
// The model is built around a few key structures:
//
//   - Model: The root container. It aggregates every element of one decision
//     graph together with its metadata (name, namespace) and its test cases.
//
//   - InputData: A leaf value supplied by whoever evaluates the model.
//
//   - Decision: A node computing a value from an expression. Its dependencies
//     are declared through InformationRequirements (inputs and other
//     decisions) and KnowledgeRequirements (BKMs). Requirements reference
//     their target by element id through Href.
//
//   - KnowledgeModel: A named, parameterized expression. It becomes a callable
//     inside the evaluation scope and has no graph edges of its own.
//
//   - Constant: A named literal bound into every evaluation scope.
//
//   - TestCase: A named input fixture plus expected decision outputs.
//
// Why a separate model package?
//
// The executor, the interchange encoders and the test runner all consume the
// same blueprint. Keeping it free of evaluation logic means it can be loaded
// from YAML or JSON, edited, linted and exported without pulling in the
// expression interpreter. The executor borrows a Model read-only; nothing in
// the evaluation path mutates it.
//
// The editing helpers in edit.go are the only mutating operations. They keep
// requirement edges consistent when elements are removed (no dangling hrefs
// are left behind by a removal) and deduplicate requirements by href.
package model
