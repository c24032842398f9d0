package scope

import (
	"context"
	"fmt"
)

// Evaluator evaluates expression text against a scope.
type Evaluator interface {
	Evaluate(ctx context.Context, expression string, s *Scope) (any, error)
}

// Function is a business knowledge model bound into a scope.
type Function struct {
	ID     string
	Name   string
	Params []string
	Body   string

	closure *Scope
	eval    Evaluator
}

// NewFunction creates a callable that evaluates body with eval over a
// snapshot of closure taken now.
func NewFunction(id, name string, params []string, body string, closure *Scope, eval Evaluator) *Function {
	return &Function{
		ID:      id,
		Name:    name,
		Params:  params,
		Body:    body,
		closure: closure.Snapshot(),
		eval:    eval,
	}
}

// Call binds args to the parameters by position and evaluates the body. The
// number of arguments must match the parameters exactly.
func (f *Function) Call(ctx context.Context, args ...any) (any, error) {
	if len(args) != len(f.Params) {
		return nil, fmt.Errorf("%s: expected %d arguments, got %d", f.Name, len(f.Params), len(args))
	}
	local := f.closure.Snapshot()
	for i, p := range f.Params {
		local.BindName(p, args[i])
	}
	return f.eval.Evaluate(ctx, f.Body, local)
}
