// Package schema reads and writes descriptors in their plain-data wire form,
// the YAML or JSON document layouts are exchanged and stored as:
//
//	name: header
//	type: struct
//	description:
//	  - { name: magic,   type: int,    bytes: 4, endian: big }
//	  - { name: flags,   type: byte,   bits: 3 }
//	  - { name: label,   type: string, bytes: 8 }
//	  - name: samples
//	    type: array
//	    size: 4
//	    value_description: { name: sample, type: double, bytes: 8 }
//
// Scalars take exactly one of bits or bytes. A string without bytes is
// null-terminated. Every document is validated before it becomes a
// descriptor.
package schema

import (
	"fmt"
	"strings"

	"github.com/marmos91/binlayout/pkg/layout"
)

// Type names accepted in the type field.
const (
	TypeBool   = "bool"
	TypeByte   = "byte"
	TypeInt    = "int"
	TypeFloat  = "float"
	TypeDouble = "double"
	TypeString = "string"
	TypeArray  = "array"
	TypeStruct = "struct"

	// typeFloat4 is the legacy spelling of float.
	typeFloat4 = "float4"
)

// Field is the wire form of one descriptor.
type Field struct {
	// Name is the key of the field in its enclosing struct.
	Name string `yaml:"name" json:"name" mapstructure:"name" jsonschema:"description=Field name, unique within its struct"`

	// Type selects the descriptor variant.
	Type string `yaml:"type" json:"type" mapstructure:"type" validate:"required,oneof=bool byte int float float4 double string array struct" jsonschema:"enum=bool,enum=byte,enum=int,enum=float,enum=float4,enum=double,enum=string,enum=array,enum=struct"`

	// Bits is the width of a scalar in bits.
	Bits *int `yaml:"bits,omitempty" json:"bits,omitempty" mapstructure:"bits" validate:"omitempty,gt=0" jsonschema:"minimum=1"`

	// Bytes is the width of a scalar, or the fixed length of a string.
	Bytes *int `yaml:"bytes,omitempty" json:"bytes,omitempty" mapstructure:"bytes" validate:"omitempty,gt=0,lte=1073741824" jsonschema:"minimum=1,maximum=1073741824"`

	// Endian pins the byte order of a scalar regardless of the codec's.
	Endian string `yaml:"endian,omitempty" json:"endian,omitempty" mapstructure:"endian" validate:"omitempty,oneof=little big le be LITTLE BIG LE BE" jsonschema:"enum=little,enum=big"`

	// Size is the element count of an array.
	Size *int `yaml:"size,omitempty" json:"size,omitempty" mapstructure:"size" validate:"omitempty,gte=0,lte=16777216" jsonschema:"minimum=0,maximum=16777216"`

	// ValueDescription is the element descriptor of an array.
	ValueDescription *Field `yaml:"value_description,omitempty" json:"value_description,omitempty" mapstructure:"value_description"`

	// Description lists the fields of a struct in wire order.
	Description []Field `yaml:"description,omitempty" json:"description,omitempty" mapstructure:"description" validate:"dive"`
}

// Descriptor converts f into a descriptor. It checks the rules the struct
// tags cannot express but does not run layout.Validate.
func (f *Field) Descriptor() (layout.Descriptor, error) {
	return f.descriptor(pathOf(f.Name))
}

func pathOf(name string) string {
	if name == "" {
		return "$"
	}
	return name
}

func (f *Field) descriptor(path string) (layout.Descriptor, error) {
	typ := strings.ToLower(f.Type)

	switch typ {
	case TypeBool, TypeByte, TypeInt, TypeFloat, typeFloat4, TypeDouble:
		return f.scalar(path, typ)

	case TypeString:
		if f.Bits != nil {
			return nil, invalid(path, "string takes bytes, not bits")
		}
		if err := f.onlyFor(path, typ, false); err != nil {
			return nil, err
		}
		if f.Bytes != nil {
			return layout.NewFixedText(f.Name, *f.Bytes), nil
		}
		return layout.NewText(f.Name), nil

	case TypeArray:
		if f.Bits != nil || f.Bytes != nil || f.Endian != "" || len(f.Description) > 0 {
			return nil, invalid(path, "array takes only size and value_description")
		}
		if f.Size == nil {
			return nil, invalid(path, "array requires size")
		}
		if f.ValueDescription == nil {
			return nil, invalid(path, "array requires value_description")
		}
		elem, err := f.ValueDescription.descriptor(path + "[]")
		if err != nil {
			return nil, err
		}
		return layout.NewArray(f.Name, elem, *f.Size), nil

	case TypeStruct:
		if f.Bits != nil || f.Bytes != nil || f.Endian != "" || f.Size != nil || f.ValueDescription != nil {
			return nil, invalid(path, "struct takes only description")
		}
		fields := make([]layout.Descriptor, 0, len(f.Description))
		for i := range f.Description {
			child := &f.Description[i]
			d, err := child.descriptor(path + "." + pathOf(child.Name))
			if err != nil {
				return nil, err
			}
			fields = append(fields, d)
		}
		return layout.NewStruct(f.Name, fields...), nil

	default:
		return nil, invalid(path, fmt.Sprintf("unknown type %q", f.Type))
	}
}

func (f *Field) scalar(path, typ string) (layout.Descriptor, error) {
	if err := f.onlyFor(path, typ, true); err != nil {
		return nil, err
	}

	var w layout.Width
	switch {
	case f.Bits != nil && f.Bytes != nil:
		return nil, invalid(path, "exactly one of bits or bytes is allowed")
	case f.Bits != nil:
		w = layout.Bits(*f.Bits)
	case f.Bytes != nil:
		w = layout.Bytes(*f.Bytes)
	default:
		return nil, invalid(path, typ+" requires bits or bytes")
	}

	s := layout.NewScalar(f.Name, kindOf(typ), w)
	if f.Endian != "" {
		e, err := layout.ParseEndianness(f.Endian)
		if err != nil {
			return nil, invalid(path, err.Error())
		}
		s = s.WithOrder(e)
	}
	return s, nil
}

// onlyFor rejects the compound-only keys on a leaf type.
func (f *Field) onlyFor(path, typ string, endian bool) error {
	if f.Size != nil || f.ValueDescription != nil || len(f.Description) > 0 {
		return invalid(path, typ+" does not take size, value_description or description")
	}
	if !endian && f.Endian != "" {
		return invalid(path, typ+" does not take endian")
	}
	return nil
}

func kindOf(typ string) layout.Kind {
	switch typ {
	case TypeBool:
		return layout.KindBool
	case TypeByte:
		return layout.KindByte
	case TypeInt:
		return layout.KindInt
	case TypeFloat, typeFloat4:
		return layout.KindFloat
	case TypeDouble:
		return layout.KindDouble
	default:
		return layout.KindInvalid
	}
}

// FromDescriptor returns the wire form of d.
func FromDescriptor(d layout.Descriptor) Field {
	switch d := d.(type) {
	case *layout.Scalar:
		f := Field{Name: d.Name, Type: d.Kind.String()}
		n := d.Width.N
		if d.Width.Unit == layout.UnitBits {
			f.Bits = &n
		} else {
			f.Bytes = &n
		}
		if d.Order != nil {
			f.Endian = d.Order.String()
		}
		return f
	case *layout.Text:
		f := Field{Name: d.Name, Type: TypeString}
		if d.Fixed != nil {
			n := *d.Fixed
			f.Bytes = &n
		}
		return f
	case *layout.Array:
		elem := FromDescriptor(d.Element)
		n := d.Count
		return Field{Name: d.Name, Type: TypeArray, Size: &n, ValueDescription: &elem}
	case *layout.Struct:
		fields := make([]Field, 0, len(d.Fields))
		for _, c := range d.Fields {
			fields = append(fields, FromDescriptor(c))
		}
		return Field{Name: d.Name, Type: TypeStruct, Description: fields}
	default:
		return Field{}
	}
}
