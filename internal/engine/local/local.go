// Package local provides the in-process engine. It evaluates HCL native
// expressions synchronously and never touches the network.
package local

import (
	"context"

	"github.com/specialistvlad/dmngrid/internal/engine"
	"github.com/specialistvlad/dmngrid/internal/executor"
	"github.com/specialistvlad/dmngrid/internal/hcl"
	"github.com/specialistvlad/dmngrid/internal/model"
	"github.com/specialistvlad/dmngrid/internal/scope"
)

// Engine runs models with executor.Execute. Every call builds its own scope,
// so one Engine may serve concurrent evaluations.
type Engine struct {
	eval scope.Evaluator
}

var _ engine.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithEvaluator replaces the HCL interpreter.
func WithEvaluator(eval scope.Evaluator) Option {
	return func(e *Engine) { e.eval = eval }
}

// New creates a local engine.
func New(opts ...Option) *Engine {
	e := &Engine{eval: hcl.NewInterpreter()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Info() engine.Info {
	return engine.Info{
		ID:                 engine.LocalInterpreterID,
		Name:               "Local interpreter",
		Description:        "Evaluates HCL expressions in-process. Fast, works offline.",
		RequiresConnection: false,
	}
}

func (e *Engine) Evaluate(ctx context.Context, m *model.Model, inputs map[string]any) (*engine.ExecutionResult, error) {
	return executor.Execute(ctx, m, inputs, e.eval)
}

// CheckConnection always reports true.
func (e *Engine) CheckConnection(context.Context) bool { return true }
