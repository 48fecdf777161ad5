package layout

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is wrapped by every error Validate returns.
var ErrInvalidDescriptor = errors.New("invalid descriptor")

// Validate checks d for the mistakes the codec does not detect on its own:
// missing or non-positive widths, unknown kinds, negative counts, unnamed or
// duplicate struct fields, floats that are neither 32 nor 64 bits wide, and
// widths, counts or total sizes past MaxSize and MaxCount. The codec never calls Validate; descriptors built
// in code are trusted, descriptors read from files are validated.
func Validate(d Descriptor) error {
	path := rootPath(d)
	if err := validate(d, path); err != nil {
		return err
	}
	if n := Size(d); n > MaxSize {
		return fmt.Errorf("%w: %s: layout size %d exceeds %d bytes", ErrInvalidDescriptor, path, n, MaxSize)
	}
	return nil
}

func rootPath(d Descriptor) string {
	if d == nil || d.FieldName() == "" {
		return "$"
	}
	return d.FieldName()
}

func validate(d Descriptor, path string) error {
	switch d := d.(type) {
	case nil:
		return fmt.Errorf("%w: %s: nil descriptor", ErrInvalidDescriptor, path)
	case *Scalar:
		if !d.Kind.IsScalar() {
			return fmt.Errorf("%w: %s: unsupported scalar kind %s", ErrInvalidDescriptor, path, d.Kind)
		}
		if d.Width.Unit != UnitBits && d.Width.Unit != UnitBytes {
			return fmt.Errorf("%w: %s: exactly one of bits or bytes is required", ErrInvalidDescriptor, path)
		}
		if d.Width.N <= 0 {
			return fmt.Errorf("%w: %s: width must be positive, got %s", ErrInvalidDescriptor, path, d.Width)
		}
		if d.Width.ByteLen() > MaxSize {
			return fmt.Errorf("%w: %s: width %s exceeds %d bytes", ErrInvalidDescriptor, path, d.Width, MaxSize)
		}
		if d.Kind == KindFloat || d.Kind == KindDouble {
			if bits := d.Width.BitLen(); bits != 32 && bits != 64 {
				return fmt.Errorf("%w: %s: %s must be 32 or 64 bits wide, got %s", ErrInvalidDescriptor, path, d.Kind, d.Width)
			}
		}
		if d.Order != nil && *d.Order != Little && *d.Order != Big {
			return fmt.Errorf("%w: %s: invalid byte order %s", ErrInvalidDescriptor, path, *d.Order)
		}
	case *Text:
		if d.Fixed != nil && *d.Fixed <= 0 {
			return fmt.Errorf("%w: %s: fixed text length must be positive, got %d", ErrInvalidDescriptor, path, *d.Fixed)
		}
		if d.Fixed != nil && *d.Fixed > MaxSize {
			return fmt.Errorf("%w: %s: fixed text length %d exceeds %d bytes", ErrInvalidDescriptor, path, *d.Fixed, MaxSize)
		}
	case *Array:
		if d.Count < 0 {
			return fmt.Errorf("%w: %s: negative array size %d", ErrInvalidDescriptor, path, d.Count)
		}
		if d.Count > MaxCount {
			return fmt.Errorf("%w: %s: array size %d exceeds %d", ErrInvalidDescriptor, path, d.Count, MaxCount)
		}
		return validate(d.Element, path+"[]")
	case *Struct:
		seen := make(map[string]struct{}, len(d.Fields))
		for i, f := range d.Fields {
			if f == nil {
				return fmt.Errorf("%w: %s: field %d is nil", ErrInvalidDescriptor, path, i)
			}
			name := f.FieldName()
			if name == "" {
				return fmt.Errorf("%w: %s: field %d has no name", ErrInvalidDescriptor, path, i)
			}
			if _, dup := seen[name]; dup {
				return fmt.Errorf("%w: %s: duplicate field name %q", ErrInvalidDescriptor, path, name)
			}
			seen[name] = struct{}{}
			if err := validate(f, path+"."+name); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("%w: %s: unknown descriptor type %T", ErrInvalidDescriptor, path, d)
	}
	return nil
}
