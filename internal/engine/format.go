package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

// FormatValue renders a decision value for display: whole numbers without
// decimals, other numbers with two, strings quoted, lists element by element
// and records as JSON.
func FormatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case bool:
		return strconv.FormatBool(tv)
	case string:
		return `"` + tv + `"`
	case json.Number, float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return formatNumber(cast.ToFloat64(tv))
	case []any:
		parts := make([]string, len(tv))
		for i, e := range tv {
			parts[i] = FormatValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		b, err := json.Marshal(tv)
		if err != nil {
			return fmt.Sprint(tv)
		}
		return string(b)
	}
	return fmt.Sprint(v)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && !math.IsInf(f, 0) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', 2, 64)
}
