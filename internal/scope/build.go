package scope

import (
	"context"
	"regexp"

	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/model"
)

var whitespace = regexp.MustCompile(`\s+`)

// Build seeds a scope for one run of m. Inputs are read from inputs by id,
// falling back to the input name when the id is absent or nil. Constants are
// bound next, then knowledge models, each closing over the scope as it stands
// when the model is bound. A knowledge model whose name contains whitespace
// is also bound under the name with the whitespace removed.
func Build(ctx context.Context, m *model.Model, inputs map[string]any, eval Evaluator) *Scope {
	logger := ctxlog.FromContext(ctx)
	s := New()

	for _, in := range m.Inputs {
		v, ok := inputs[in.ID]
		if !ok || v == nil {
			v = inputs[in.Name]
		}
		s.Bind(in.ID, in.Name, v)
	}

	for _, c := range m.Constants {
		s.Bind(c.ID, c.Name, c.Value)
	}

	for _, k := range m.KnowledgeModels {
		params := make([]string, len(k.Parameters))
		for i, p := range k.Parameters {
			params[i] = p.Name
		}
		fn := NewFunction(k.ID, k.Name, params, k.Expression, s, eval)
		s.Bind(k.ID, k.Name, fn)
		if alias := whitespace.ReplaceAllString(k.Name, ""); alias != k.Name {
			s.BindName(alias, fn)
		}
	}

	logger.Debug("Evaluation scope built.",
		"inputs", len(m.Inputs),
		"constants", len(m.Constants),
		"knowledge_models", len(m.KnowledgeModels),
	)
	return s
}
