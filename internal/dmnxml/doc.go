// Package dmnxml converts models to and from a minimal DMN 1.3 XML document.
//
// The document carries inputData, businessKnowledgeModel and decision
// elements. Constants have no DMN counterpart, so they are written as
// decisions without requirements whose literal expression is the value; an
// extension element marks them so Import can restore them. Expressions are
// copied verbatim into literalExpression text.
//
// Export also adds a requiredDecision edge for every constant whose name
// appears as a whole word in a decision's expression. This only affects the
// document; runtime ordering never depends on it.
package dmnxml
