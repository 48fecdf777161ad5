package codec

import (
	"fmt"

	"github.com/marmos91/binlayout/internal/logger"
	"github.com/marmos91/binlayout/internal/wire"
	"github.com/marmos91/binlayout/pkg/bitframe"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/primitive"
)

func (c *Codec) checkInput(buf []byte) error {
	if c.opts.maxInput > 0 && len(buf) > c.opts.maxInput {
		return fieldErr("", 0, fmt.Errorf("%w: %d bytes exceeds the limit of %d", ErrInputTooLarge, len(buf), c.opts.maxInput))
	}
	return nil
}

// decode decodes d at byte offset pos and returns the value together with
// the offset just past it.
func (c *Codec) decode(r *wire.Reader, d layout.Descriptor, pos int, path string) (layout.Value, int, error) {
	switch d := d.(type) {
	case *layout.Scalar:
		return c.decodeScalar(r, d, pos, path)
	case *layout.Text:
		return c.decodeText(r, d, pos, path)
	case *layout.Array:
		if d.Count > layout.MaxCount {
			return nil, pos, fieldErr(path, pos, fmt.Errorf("%w: array size %d exceeds %d", layout.ErrInvalidDescriptor, d.Count, layout.MaxCount))
		}
		// Every element but a zero-width one consumes at least a byte, so
		// the remaining input bounds how many can decode.
		list := make(layout.List, 0, min(d.Count, r.Remaining(pos)+1))
		for i := range d.Count {
			v, next, err := c.decode(r, d.Element, pos, index(path, i))
			if err != nil {
				return nil, pos, err
			}
			list = append(list, v)
			pos = next
		}
		return list, pos, nil
	case *layout.Struct:
		m := make(layout.Map, len(d.Fields))
		for _, f := range d.Fields {
			name := f.FieldName()
			v, next, err := c.decode(r, f, pos, join(path, name))
			if err != nil {
				return nil, pos, err
			}
			m[name] = v
			pos = next
		}
		return m, pos, nil
	default:
		return nil, pos, fieldErr(path, pos, fmt.Errorf("%w: unknown descriptor %T", layout.ErrInvalidDescriptor, d))
	}
}

func (c *Codec) decodeScalar(r *wire.Reader, d *layout.Scalar, pos int, path string) (layout.Value, int, error) {
	n := d.Width.ByteLen()
	raw := r.Slice(pos, n)
	if err := r.Err(); err != nil {
		return nil, pos, fieldErr(path, pos, fmt.Errorf("%w: %w", ErrOutOfBounds, err))
	}

	// Reframing into little-endian order both applies the byte order and
	// masks the field to its declared bit width.
	order := c.orderOf(d)
	bits := bitframe.Reframe(0, d.Width.BitLen(), order, layout.Little, raw)

	v, ok := primitive.To(d.Kind, layout.Little, bits)
	if !ok {
		logger.Debug("no value for field, using zero value",
			logger.Layout(c.opts.name), logger.Field(path), logger.Kind(d.Kind.String()),
			logger.Offset(pos), logger.Size(n))
		v = layout.ZeroValue(d.Kind)
	}
	return v, pos + n, nil
}

func (c *Codec) decodeText(r *wire.Reader, d *layout.Text, pos int, path string) (layout.Value, int, error) {
	n := layout.SizeAt(d, r.Tail(pos))
	raw := r.Slice(pos, n)
	if err := r.Err(); err != nil {
		return nil, pos, fieldErr(path, pos, fmt.Errorf("%w: %w", ErrOutOfBounds, err))
	}
	next := pos + n

	if d.Fixed != nil {
		// Fixed text is zero-padded on encode; the padding is not content.
		raw = raw[:layout.Strlen(raw)]
	} else if c.opts.terminated {
		if b, ok := r.ByteAt(next); ok && b == 0 {
			next++
		}
	}

	v, _ := primitive.To(layout.KindText, layout.Little, raw)
	return v, next, nil
}
