// Package primitive converts between byte buffers and single scalar values.
//
// Every conversion is defined in little-endian terms. For Big the byte
// sequence is reversed before decoding (To) or after encoding (From), so a
// big-endian int is simply its little-endian bytes read backwards.
//
// To reports a missing value through its second return instead of an error:
// an unsupported kind or an unusable buffer is "no value", which the
// structural decoder replaces with the kind's zero value.
package primitive

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/marmos91/binlayout/pkg/layout"
)

var (
	// ErrUnsupportedKind is returned by From for kinds it cannot encode.
	ErrUnsupportedKind = errors.New("unsupported kind")

	// ErrTypeMismatch is returned by From when the value variant does not fit
	// the kind, e.g. a String for an int field.
	ErrTypeMismatch = errors.New("value type mismatch")

	// ErrUnsupportedWidth is returned by FromWidth for a float or double
	// that is neither 4 nor 8 bytes wide.
	ErrUnsupportedWidth = errors.New("unsupported width")
)

// To decodes b as one value of kind. ok is false when there is no value.
func To(kind layout.Kind, order layout.Endianness, b []byte) (v layout.Value, ok bool) {
	if order == layout.Big {
		b = layout.Reverse(append([]byte(nil), b...))
	}

	switch kind {
	case layout.KindBool:
		if len(b) == 0 {
			return nil, false
		}
		return layout.Bool(b[0] > 0), true
	case layout.KindByte:
		if len(b) == 0 {
			return nil, false
		}
		return layout.Int(b[0]), true
	case layout.KindInt:
		if len(b) == 0 {
			return nil, false
		}
		var word [4]byte
		copy(word[:], b)
		return layout.Int(int32(binary.LittleEndian.Uint32(word[:]))), true
	case layout.KindFloat, layout.KindDouble:
		switch len(b) {
		case 4:
			return layout.Float(math.Float32frombits(binary.LittleEndian.Uint32(b))), true
		case 8:
			return layout.Float(math.Float64frombits(binary.LittleEndian.Uint64(b))), true
		default:
			return nil, false
		}
	case layout.KindText:
		return layout.String(toUTF8(b)), true
	default:
		return nil, false
	}
}

// From encodes v as the minimal little-endian representation of kind:
// 1 byte for bool and byte, 4 for int and float, 8 for double, the raw UTF-8
// bytes for text. The result is reversed for Big.
func From(kind layout.Kind, order layout.Endianness, v layout.Value) ([]byte, error) {
	var out []byte

	switch kind {
	case layout.KindBool:
		b, ok := v.(layout.Bool)
		if !ok {
			return nil, mismatch(kind, v)
		}
		if b {
			out = []byte{1}
		} else {
			out = []byte{0}
		}
	case layout.KindByte:
		n, err := asInt(kind, v)
		if err != nil {
			return nil, err
		}
		out = []byte{byte(n)}
	case layout.KindInt:
		n, err := asInt(kind, v)
		if err != nil {
			return nil, err
		}
		out = binary.LittleEndian.AppendUint32(nil, uint32(int32(n)))
	case layout.KindFloat:
		f, err := asFloat(kind, v)
		if err != nil {
			return nil, err
		}
		out = binary.LittleEndian.AppendUint32(nil, math.Float32bits(float32(f)))
	case layout.KindDouble:
		f, err := asFloat(kind, v)
		if err != nil {
			return nil, err
		}
		out = binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))
	case layout.KindText:
		s, ok := v.(layout.String)
		if !ok {
			return nil, mismatch(kind, v)
		}
		out = []byte(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	if order == layout.Big {
		layout.Reverse(out)
	}
	return out, nil
}

// FromWidth encodes v into exactly n bytes. The little-endian representation
// is truncated (high bytes dropped) or zero-extended to n before the Big
// reversal. Floating-point kinds pick their format from n: 4 bytes is
// binary32 and 8 bytes is binary64, the same rule To applies when decoding.
// Any other float width fails with ErrUnsupportedWidth.
func FromWidth(kind layout.Kind, order layout.Endianness, v layout.Value, n int) ([]byte, error) {
	if kind == layout.KindFloat || kind == layout.KindDouble {
		switch n {
		case 4:
			kind = layout.KindFloat
		case 8:
			kind = layout.KindDouble
		default:
			return nil, fmt.Errorf("%w: %s needs 4 or 8 bytes, got %d", ErrUnsupportedWidth, kind, n)
		}
	}

	out, err := From(kind, layout.Little, v)
	if err != nil {
		return nil, err
	}
	out = fit(out, n)
	if order == layout.Big {
		layout.Reverse(out)
	}
	return out, nil
}

// fit truncates or zero-extends b to n bytes.
func fit(b []byte, n int) []byte {
	if n < 0 {
		n = 0
	}
	if len(b) >= n {
		return b[:n]
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

func asInt(kind layout.Kind, v layout.Value) (int64, error) {
	switch n := v.(type) {
	case layout.Int:
		return int64(n), nil
	case layout.Float:
		return int64(n), nil
	case layout.Bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, mismatch(kind, v)
	}
}

func asFloat(kind layout.Kind, v layout.Value) (float64, error) {
	switch n := v.(type) {
	case layout.Float:
		return float64(n), nil
	case layout.Int:
		return float64(n), nil
	default:
		return 0, mismatch(kind, v)
	}
}

func mismatch(kind layout.Kind, v layout.Value) error {
	return fmt.Errorf("%w: cannot encode %T as %s", ErrTypeMismatch, v, kind)
}

// toUTF8 decodes b as UTF-8, replacing invalid sequences with U+FFFD the way
// a standard text decoder does.
func toUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	runes := make([]rune, 0, len(b))
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		runes = append(runes, r)
		b = b[size:]
	}
	return string(runes)
}
