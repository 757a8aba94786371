package place

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Properties is the raw property bag of a feature. A nil bag behaves as empty.
type Properties map[string]any

// Value returns the first non-empty trimmed value among keys, or "".
func (p Properties) Value(keys ...string) string {
	for _, k := range keys {
		if s := Stringify(p[k]); s != "" {
			return s
		}
	}
	return ""
}

// Stringify renders a property value as trimmed text. Nil becomes "".
// Numbers are written without exponent, nested values as JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(b))
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
