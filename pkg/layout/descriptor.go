// Package layout defines the descriptor vocabulary of binlayout: the declarative
// field-layout description from which encoders and decoders are built, the value
// tree those codecs produce and consume, and the size calculator.
//
// A Descriptor is a closed tagged union implemented by exactly four types:
//
//   - *Scalar: bool, byte, int, float or double with a bit or byte width
//   - *Text:   UTF-8 text, fixed-length or null-terminated
//   - *Array:  a fixed number of elements of one descriptor
//   - *Struct: an ordered list of named field descriptors
//
// Descriptors are plain data. They are built once and shared read-only by every
// codec invocation; nothing in this package mutates them after construction.
//
//	point := layout.NewStruct("point",
//	    layout.NewScalar("x", layout.KindFloat, layout.Bytes(4)),
//	    layout.NewScalar("y", layout.KindFloat, layout.Bytes(4)),
//	)
//	polygon := layout.NewStruct("polygon",
//	    layout.NewArray("points", point, 2),
//	)
package layout

import (
	"fmt"
	"math"
)

// Kind identifies a primitive type.
type Kind uint8

const (
	// KindInvalid is the zero Kind and never valid in a descriptor.
	KindInvalid Kind = iota
	KindBool
	KindByte
	KindInt
	KindFloat
	KindDouble
	// KindText is the primitive kind of a Text descriptor. It is not a valid
	// Scalar kind.
	KindText
)

// String returns the wire name of the kind as used in descriptor files.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindByte:
		return "byte"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindText:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// IsScalar reports whether k may be used as the kind of a Scalar descriptor.
func (k Kind) IsScalar() bool {
	return k >= KindBool && k <= KindDouble
}

// Unit is the unit a Width is expressed in.
type Unit uint8

const (
	UnitBits Unit = iota + 1
	UnitBytes
)

// Width is the declared size of a scalar, either in bits or in bytes.
// Exactly one form is present; the zero Width is a caller error.
type Width struct {
	Unit Unit
	N    int
}

// Bits returns a width of n bits. The field occupies ceil(n/8) bytes.
func Bits(n int) Width { return Width{Unit: UnitBits, N: n} }

// Bytes returns a width of n bytes.
func Bytes(n int) Width { return Width{Unit: UnitBytes, N: n} }

// ByteLen returns the number of bytes the width occupies in a buffer.
func (w Width) ByteLen() int {
	switch w.Unit {
	case UnitBits:
		return w.N/8 + min(w.N%8, 1)
	case UnitBytes:
		return w.N
	default:
		return 0
	}
}

// BitLen returns the number of significant bits of the width.
func (w Width) BitLen() int {
	switch w.Unit {
	case UnitBits:
		return w.N
	case UnitBytes:
		if w.N > math.MaxInt/8 {
			return math.MaxInt
		}
		return w.N * 8
	default:
		return 0
	}
}

// String renders the width the way descriptor files spell it.
func (w Width) String() string {
	switch w.Unit {
	case UnitBits:
		return fmt.Sprintf("bits:%d", w.N)
	case UnitBytes:
		return fmt.Sprintf("bytes:%d", w.N)
	default:
		return "none"
	}
}

// Descriptor is the closed union of field descriptors.
type Descriptor interface {
	// FieldName returns the name the descriptor is stored under in an
	// enclosing struct.
	FieldName() string

	descriptor()
}

// Scalar describes a primitive numeric or boolean field.
type Scalar struct {
	Name  string
	Kind  Kind
	Width Width

	// Order overrides the codec byte order for this field when non-nil.
	Order *Endianness
}

// Text describes a UTF-8 text field. A nil Fixed means the field is
// null-terminated on decode and written with its own length on encode.
type Text struct {
	Name  string
	Fixed *int
}

// Array describes Count consecutive elements of one descriptor.
type Array struct {
	Name    string
	Element Descriptor
	Count   int
}

// Struct describes an ordered sequence of named fields. Field order is the
// wire order.
type Struct struct {
	Name   string
	Fields []Descriptor
}

func (s *Scalar) FieldName() string { return s.Name }
func (t *Text) FieldName() string   { return t.Name }
func (a *Array) FieldName() string  { return a.Name }
func (s *Struct) FieldName() string { return s.Name }

func (*Scalar) descriptor() {}
func (*Text) descriptor()   {}
func (*Array) descriptor()  {}
func (*Struct) descriptor() {}

// NewScalar returns a scalar descriptor.
func NewScalar(name string, kind Kind, width Width) *Scalar {
	return &Scalar{Name: name, Kind: kind, Width: width}
}

// WithOrder returns a copy of s whose byte order is pinned to e regardless of
// the codec's endianness.
func (s *Scalar) WithOrder(e Endianness) *Scalar {
	c := *s
	c.Order = &e
	return &c
}

// NewText returns a null-terminated text descriptor.
func NewText(name string) *Text {
	return &Text{Name: name}
}

// NewFixedText returns a text descriptor occupying exactly n bytes.
func NewFixedText(name string, n int) *Text {
	return &Text{Name: name, Fixed: &n}
}

// NewArray returns an array descriptor of count elements.
func NewArray(name string, element Descriptor, count int) *Array {
	return &Array{Name: name, Element: element, Count: count}
}

// NewStruct returns a struct descriptor with the given fields in wire order.
func NewStruct(name string, fields ...Descriptor) *Struct {
	return &Struct{Name: name, Fields: fields}
}

// TypeName returns the descriptor-file type name of d ("int", "string",
// "array", "struct", ...).
func TypeName(d Descriptor) string {
	switch d := d.(type) {
	case *Scalar:
		return d.Kind.String()
	case *Text:
		return KindText.String()
	case *Array:
		return "array"
	case *Struct:
		return "struct"
	default:
		return "unknown"
	}
}
