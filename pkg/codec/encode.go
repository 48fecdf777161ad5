package codec

import (
	"fmt"

	"github.com/marmos91/binlayout/internal/wire"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/primitive"
)

func (c *Codec) encode(w *wire.Writer, d layout.Descriptor, v layout.Value, path string) error {
	switch d := d.(type) {
	case *layout.Scalar:
		return c.encodeScalar(w, d, v, path)
	case *layout.Text:
		return c.encodeText(w, d, v, path)
	case *layout.Array:
		list, ok := v.(layout.List)
		if !ok {
			return fieldErr(path, w.Len(), fmt.Errorf("%w: array needs a list, got %T", primitive.ErrTypeMismatch, v))
		}
		switch {
		case len(list) < d.Count:
			return fieldErr(path, w.Len(), fmt.Errorf("%w: %d of %d elements", ErrUndersizedArray, len(list), d.Count))
		case len(list) > d.Count:
			return fieldErr(path, w.Len(), fmt.Errorf("%w: %d of %d elements", ErrOversizedArray, len(list), d.Count))
		}
		for i, e := range list {
			if err := c.encode(w, d.Element, e, index(path, i)); err != nil {
				return err
			}
		}
		return nil
	case *layout.Struct:
		m, ok := v.(layout.Map)
		if !ok {
			return fieldErr(path, w.Len(), fmt.Errorf("%w: struct needs a map, got %T", primitive.ErrTypeMismatch, v))
		}
		for _, f := range d.Fields {
			name := f.FieldName()
			fv, ok := m[name]
			if !ok {
				return fieldErr(join(path, name), w.Len(), ErrMissingField)
			}
			if err := c.encode(w, f, fv, join(path, name)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fieldErr(path, w.Len(), fmt.Errorf("%w: unknown descriptor %T", layout.ErrInvalidDescriptor, d))
	}
}

func (c *Codec) encodeScalar(w *wire.Writer, d *layout.Scalar, v layout.Value, path string) error {
	order := c.orderOf(d)
	n := d.Width.ByteLen()

	b, err := primitive.FromWidth(d.Kind, order, v, n)
	if err != nil {
		return fieldErr(path, w.Len(), err)
	}
	if d.Width.Unit == layout.UnitBits {
		maskBits(b, d.Width.N, order)
	}
	w.WriteBytes(b)
	return nil
}

// maskBits clears the bits of the most significant byte of b that lie past
// the first n bits, so a Bits(n) field never carries more than n bits.
func maskBits(b []byte, n int, order layout.Endianness) {
	rem := n % 8
	if rem == 0 || len(b) == 0 {
		return
	}
	msb := len(b) - 1
	if order == layout.Big {
		msb = 0
	}
	b[msb] &= byte(1)<<rem - 1
}

func (c *Codec) encodeText(w *wire.Writer, d *layout.Text, v layout.Value, path string) error {
	s, ok := v.(layout.String)
	if !ok {
		return fieldErr(path, w.Len(), fmt.Errorf("%w: text needs a string, got %T", primitive.ErrTypeMismatch, v))
	}

	if d.Fixed != nil {
		w.WriteFixed([]byte(s), *d.Fixed)
		return nil
	}
	w.WriteBytes([]byte(s))
	if c.opts.terminated {
		w.WriteUint8(0)
	}
	return nil
}
