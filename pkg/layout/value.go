package layout

import (
	"fmt"
	"math"
	"sort"
)

// Value is the closed union of decoded values. Its shape mirrors the
// descriptor it was decoded with.
type Value interface {
	value()
}

type (
	// Bool is the value of a bool scalar.
	Bool bool
	// Int is the value of a byte or int scalar.
	Int int64
	// Float is the value of a float or double scalar.
	Float float64
	// String is the value of a text field.
	String string
	// List is the value of an array.
	List []Value
	// Map is the value of a struct, keyed by field name.
	Map map[string]Value
)

func (Bool) value()   {}
func (Int) value()    {}
func (Float) value()  {}
func (String) value() {}
func (List) value()   {}
func (Map) value()    {}

// ZeroValue returns the value a decoder substitutes when a primitive
// conversion yields no value: false, 0, 0.0 or "".
func ZeroValue(kind Kind) Value {
	switch kind {
	case KindBool:
		return Bool(false)
	case KindByte, KindInt:
		return Int(0)
	case KindFloat, KindDouble:
		return Float(0)
	default:
		return String("")
	}
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToAny converts v into plain Go data (bool, int64, float64, string, []any,
// map[string]any) suitable for encoding/json, yaml.v3 or mapstructure.
func ToAny(v Value) any {
	switch v := v.(type) {
	case Bool:
		return bool(v)
	case Int:
		return int64(v)
	case Float:
		return float64(v)
	case String:
		return string(v)
	case List:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = ToAny(e)
		}
		return out
	case Map:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = ToAny(e)
		}
		return out
	default:
		return nil
	}
}

// FromAny converts plain Go data, as produced by encoding/json, yaml.v3 or
// mapstructure, into a Value. Integral floats stay Float; callers that need an
// Int for a byte or int field may pass either, the encoder converts.
func FromAny(x any) (Value, error) {
	switch x := x.(type) {
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(x), nil
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d overflows int64", x)
		}
		return Int(x), nil
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []any:
		out := make(List, len(x))
		for i, e := range x {
			v, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = v
		}
		return out, nil
	case map[string]any:
		out := make(Map, len(x))
		for k, e := range x {
			v, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			out[k] = v
		}
		return out, nil
	case map[any]any:
		out := make(Map, len(x))
		for k, e := range x {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string map key %v", k)
			}
			v, err := FromAny(e)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			out[key] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", x)
	}
}
