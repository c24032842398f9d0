package hcl

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/specialistvlad/dmngrid/internal/ctxlog"
	"github.com/specialistvlad/dmngrid/internal/scope"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Interpreter evaluates HCL native-syntax expressions. It holds no per-run
// state and is safe for concurrent use.
type Interpreter struct {
	builtins map[string]function.Function
}

var _ scope.Evaluator = (*Interpreter)(nil)

// NewInterpreter creates an Interpreter with the built-in function library.
func NewInterpreter() *Interpreter {
	return &Interpreter{builtins: builtins()}
}

// Evaluate parses expression and evaluates it against s.
func (in *Interpreter) Evaluate(ctx context.Context, expression string, s *scope.Scope) (any, error) {
	logger := ctxlog.FromContext(ctx)

	src := strings.TrimSpace(expression)
	if src == "" {
		return nil, errors.New("expression is empty")
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}

	evalCtx, err := in.evalContext(ctx, s, rootNames(expr))
	if err != nil {
		return nil, err
	}

	val, diags := expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}
	logger.Debug("Expression evaluated.", "expression", src, "type", val.Type().FriendlyName())

	return FromCty(val)
}

// Parse checks that expression is syntactically valid and returns the root
// names it references.
func Parse(expression string) ([]string, error) {
	expr, diags := hclsyntax.ParseExpression([]byte(strings.TrimSpace(expression)), "expression", hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diagnosticsError(diags)
	}
	return rootNames(expr), nil
}

// rootNames lists the distinct root variable names expr references, in
// order of first appearance.
func rootNames(expr hclsyntax.Expression) []string {
	seen := map[string]bool{}
	var roots []string
	for _, tr := range expr.Variables() {
		name := tr.RootName()
		if !seen[name] {
			seen[name] = true
			roots = append(roots, name)
		}
	}
	return roots
}

// evalContext exposes the knowledge models of s as functions and converts
// only the bindings named in roots into variables. A knowledge model bound
// under several keys is wrapped once.
func (in *Interpreter) evalContext(ctx context.Context, s *scope.Scope, roots []string) (*hcl.EvalContext, error) {
	flat := s.Flatten()
	referenced := make(map[string]bool, len(roots))
	for _, name := range roots {
		referenced[name] = true
	}
	vars := make(map[string]cty.Value, len(roots))
	funcs := make(map[string]function.Function, len(in.builtins)+4)
	for name, fn := range in.builtins {
		funcs[name] = fn
	}

	wrapped := map[*scope.Function]function.Function{}
	for key, v := range flat {
		if fn, ok := v.(*scope.Function); ok {
			cf, done := wrapped[fn]
			if !done {
				cf = knowledgeFunction(ctx, fn)
				wrapped[fn] = cf
			}
			funcs[key] = cf
			continue
		}
		if !referenced[key] {
			continue
		}
		cv, err := ToCty(v)
		if err != nil {
			return nil, fmt.Errorf("cannot bind %q: %w", key, err)
		}
		vars[key] = cv
	}

	return &hcl.EvalContext{Variables: vars, Functions: funcs}, nil
}

// knowledgeFunction exposes a scope.Function as a cty function. Arguments
// may be of any type, including null.
func knowledgeFunction(ctx context.Context, fn *scope.Function) function.Function {
	params := make([]function.Parameter, len(fn.Params))
	for i, p := range fn.Params {
		params[i] = function.Parameter{
			Name:             p,
			Type:             cty.DynamicPseudoType,
			AllowNull:        true,
			AllowDynamicType: true,
		}
	}
	return function.New(&function.Spec{
		Description: fmt.Sprintf("Business knowledge model %q.", fn.Name),
		Params:      params,
		Type:        function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			native := make([]any, len(args))
			for i, a := range args {
				v, err := FromCty(a)
				if err != nil {
					return cty.NilVal, err
				}
				native[i] = v
			}
			out, err := fn.Call(ctx, native...)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", fn.Name, err)
			}
			return ToCty(out)
		},
	})
}

// diagnosticsError renders error diagnostics as one line each.
func diagnosticsError(diags hcl.Diagnostics) error {
	var parts []string
	for _, d := range diags {
		if d.Severity != hcl.DiagError {
			continue
		}
		msg := d.Summary
		if d.Detail != "" {
			msg += ": " + d.Detail
		}
		parts = append(parts, msg)
	}
	if len(parts) == 0 {
		return diags
	}
	return errors.New(strings.Join(parts, "; "))
}
