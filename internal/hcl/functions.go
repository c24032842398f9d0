package hcl

import (
	"math"
	"math/big"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// builtins is the function library every expression can call. Knowledge
// models with the same name take precedence.
func builtins() map[string]function.Function {
	return map[string]function.Function{
		"abs":        stdlib.AbsoluteFunc,
		"ceil":       stdlib.CeilFunc,
		"floor":      stdlib.FloorFunc,
		"max":        stdlib.MaxFunc,
		"min":        stdlib.MinFunc,
		"pow":        stdlib.PowFunc,
		"log":        stdlib.LogFunc,
		"signum":     stdlib.SignumFunc,
		"parseint":   stdlib.ParseIntFunc,
		"int":        stdlib.IntFunc,
		"upper":      stdlib.UpperFunc,
		"lower":      stdlib.LowerFunc,
		"strlen":     stdlib.StrlenFunc,
		"substr":     stdlib.SubstrFunc,
		"join":       stdlib.JoinFunc,
		"split":      stdlib.SplitFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"replace":    stdlib.ReplaceFunc,
		"regex":      stdlib.RegexFunc,
		"format":     stdlib.FormatFunc,
		"concat":     stdlib.ConcatFunc,
		"contains":   stdlib.ContainsFunc,
		"coalesce":   stdlib.CoalesceFunc,
		"length":     stdlib.LengthFunc,
		"keys":       stdlib.KeysFunc,
		"values":     stdlib.ValuesFunc,
		"merge":      stdlib.MergeFunc,
		"lookup":     stdlib.LookupFunc,
		"distinct":   stdlib.DistinctFunc,
		"flatten":    stdlib.FlattenFunc,
		"reverse":    stdlib.ReverseListFunc,
		"sort":       stdlib.SortFunc,
		"range":      stdlib.RangeFunc,
		"jsonencode": stdlib.JSONEncodeFunc,
		"jsondecode": stdlib.JSONDecodeFunc,
		"sum":        sumFunc,
		"round":      roundFunc,
	}
}

// sumFunc adds every number of a list or tuple. Null elements count as zero.
var sumFunc = function.New(&function.Spec{
	Description: "Returns the sum of a collection of numbers.",
	Params: []function.Parameter{
		{Name: "numbers", Type: cty.DynamicPseudoType},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		list := args[0]
		ty := list.Type()
		if !(ty.IsListType() || ty.IsTupleType() || ty.IsSetType()) {
			return cty.NilVal, function.NewArgErrorf(0, "sum requires a list of numbers, got %s", ty.FriendlyName())
		}
		total := new(big.Float)
		it := list.ElementIterator()
		i := 0
		for it.Next() {
			_, ev := it.Element()
			if ev.IsNull() {
				i++
				continue
			}
			if ev.Type() != cty.Number {
				return cty.NilVal, function.NewArgErrorf(0, "element %d is %s, not a number", i, ev.Type().FriendlyName())
			}
			total.Add(total, ev.AsBigFloat())
			i++
		}
		return cty.NumberVal(total), nil
	},
})

// maxRoundPlaces is the largest power of ten a float64 can hold.
const maxRoundPlaces = 308

// roundFunc rounds half away from zero to the given number of decimals.
var roundFunc = function.New(&function.Spec{
	Description: "Rounds a number to a number of decimal places.",
	Params: []function.Parameter{
		{Name: "num", Type: cty.Number},
		{Name: "places", Type: cty.Number},
	},
	Type: function.StaticReturnType(cty.Number),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		f, _ := args[0].AsBigFloat().Float64()
		p, acc := args[1].AsBigFloat().Int64()
		if acc != big.Exact {
			return cty.NilVal, function.NewArgErrorf(1, "places must be a whole number")
		}
		if p < -maxRoundPlaces || p > maxRoundPlaces {
			return cty.NilVal, function.NewArgErrorf(1, "places must be between %d and %d", -maxRoundPlaces, maxRoundPlaces)
		}
		scale := math.Pow10(int(p))
		out := math.Round(f*scale) / scale
		if math.IsNaN(out) || math.IsInf(out, 0) {
			return cty.NilVal, function.NewArgErrorf(0, "cannot round %v to %d places", f, p)
		}
		return cty.NumberFloatVal(out), nil
	},
})
