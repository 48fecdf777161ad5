// Package bind maps decoded value trees onto Go structs and back.
//
// Struct fields are matched to layout fields by the `layout` tag, or by a
// case-insensitive field name when the tag is absent:
//
//	type Point struct {
//	    X float32 `layout:"x"`
//	    Y float32 `layout:"y"`
//	}
//
//	p, err := bind.Decode[Point](c, buf)
//	buf, err := bind.Encode(c, p)
//
// Arrays bind to slices or Go arrays, structs to structs or maps. Integer
// conversions follow mapstructure rules, so a value that overflows the Go
// field type is truncated.
package bind

import (
	"fmt"
	"reflect"

	"github.com/marmos91/binlayout/pkg/codec"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/mitchellh/mapstructure"
)

// TagName is the struct tag bind reads field names from.
const TagName = "layout"

// Decode decodes buf with c into a new T.
func Decode[T any](c *codec.Codec, buf []byte) (T, error) {
	var out T

	v, err := c.Decode(buf)
	if err != nil {
		return out, err
	}
	if err := Assign(v, &out); err != nil {
		return out, err
	}
	return out, nil
}

// Assign stores the value tree v into target, which must be a non-nil
// pointer.
func Assign(v layout.Value, target any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  target,
		TagName: TagName,
	})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	if err := dec.Decode(layout.ToAny(v)); err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	return nil
}

// Encode encodes the Go value v with c.
func Encode(c *codec.Codec, v any) ([]byte, error) {
	val, err := Value(v)
	if err != nil {
		return nil, err
	}
	return c.Encode(val)
}

// Value converts a Go value (struct, map, slice, array or scalar) into a
// value tree.
func Value(v any) (layout.Value, error) {
	p, err := plain(reflect.ValueOf(v))
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}
	val, err := layout.FromAny(p)
	if err != nil {
		return nil, fmt.Errorf("bind: %w", err)
	}
	return val, nil
}

// plain lowers rv to the bool/number/string/[]any/map[string]any shapes
// layout.FromAny accepts. Structs go through mapstructure so the layout tag
// is honored the same way in both directions.
func plain(rv reflect.Value) (any, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil %s", rv.Type())
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Invalid:
		return nil, fmt.Errorf("invalid value")

	case reflect.Struct:
		m := make(map[string]any)
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:  &m,
			TagName: TagName,
		})
		if err != nil {
			return nil, err
		}
		if err := dec.Decode(rv.Interface()); err != nil {
			return nil, err
		}
		for k, e := range m {
			p, err := plain(reflect.ValueOf(e))
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = p
		}
		return m, nil

	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("map key type %s is not string", rv.Type().Key())
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			p, err := plain(iter.Value())
			if err != nil {
				return nil, fmt.Errorf("%s: %w", iter.Key().String(), err)
			}
			m[iter.Key().String()] = p
		}
		return m, nil

	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range rv.Len() {
			p, err := plain(rv.Index(i))
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = p
		}
		return out, nil

	default:
		return rv.Interface(), nil
	}
}
