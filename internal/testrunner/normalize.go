package testrunner

import (
	"github.com/spf13/cast"
	"github.com/specialistvlad/dmngrid/internal/model"
)

// Normalize maps raw fixture values onto the model's inputs, keyed by input
// id. Values are read by id, then by name; keys matching no input are
// dropped.
//
// A number input that is missing, empty or unparsable becomes 0 and numeric
// strings are parsed. Boolean strings are parsed. Any other missing value
// defaults by type: false for booleans, "" for strings and nil otherwise.
func Normalize(m *model.Model, raw map[string]any) map[string]any {
	out := make(map[string]any, len(m.Inputs))
	for _, in := range m.Inputs {
		v, ok := raw[in.ID]
		if !ok || v == nil {
			v = raw[in.Name]
		}
		out[in.ID] = normalizeValue(in.TypeRef, v)
	}
	return out
}

func normalizeValue(t model.TypeRef, v any) any {
	switch t {
	case model.TypeNumber:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0.0
		}
		return f
	case model.TypeBoolean:
		if v == nil {
			return false
		}
		if s, ok := v.(string); ok {
			if b, err := cast.ToBoolE(s); err == nil {
				return b
			}
		}
		return v
	case model.TypeString:
		if v == nil {
			return ""
		}
		return v
	default:
		return v
	}
}
