// Package codec builds byte-exact encoders and decoders from layout
// descriptors.
//
// A Codec is built once per descriptor and reused. It holds no per-call
// state: every Encode and Decode call owns its own buffer and cursor, so a
// single Codec may be shared by any number of goroutines.
//
//	c := codec.New(header, codec.WithEndianness(layout.Big))
//	buf, err := c.Encode(layout.Map{"magic": layout.Int(0xCAFE), "len": layout.Int(12)})
//	v, err := c.Decode(buf)
//
// Byte order is applied only where a scalar is converted: composite values
// are the concatenation of their fields and are never re-reversed. Text is a
// byte string and is never reordered.
package codec

import (
	"fmt"
	"time"

	"github.com/marmos91/binlayout/internal/wire"
	"github.com/marmos91/binlayout/pkg/layout"
	"github.com/marmos91/binlayout/pkg/metrics"
)

// maxPrealloc caps the capacity Encode reserves up front.
const maxPrealloc = 64 << 10

// Option configures a Codec.
type Option func(*options)

type options struct {
	order      layout.Endianness
	terminated bool
	maxInput   int
	metrics    metrics.CodecMetrics
	name       string
}

// WithEndianness sets the byte order of every scalar whose descriptor does
// not pin its own. The default is layout.Little.
func WithEndianness(e layout.Endianness) Option {
	return func(o *options) {
		o.order = e
	}
}

// WithTerminatedText makes unterminated text fields NUL-terminated on the
// wire: Encode appends a zero byte after the text and Decode consumes it.
// Without it, Encode writes only the text bytes, which a following field
// can run into on decode.
func WithTerminatedText() Option {
	return func(o *options) {
		o.terminated = true
	}
}

// WithMaxInputSize rejects Decode inputs longer than n bytes with
// ErrInputTooLarge. Zero or negative n means no limit.
func WithMaxInputSize(n int) Option {
	return func(o *options) {
		o.maxInput = n
	}
}

// WithMetrics records every Encode and Decode call on m. A nil m disables
// metrics.
func WithMetrics(m metrics.CodecMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithName labels the codec for metrics and logs, typically with the name
// the layout is registered under.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// Codec encodes and decodes values of one descriptor.
type Codec struct {
	desc layout.Descriptor
	opts options
}

// New returns a Codec for d. d must not be modified afterwards.
func New(d layout.Descriptor, opts ...Option) *Codec {
	c := &Codec{desc: d}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// Descriptor returns the descriptor the codec was built from.
func (c *Codec) Descriptor() layout.Descriptor {
	return c.desc
}

// Name returns the label set with WithName.
func (c *Codec) Name() string {
	return c.opts.name
}

// Endianness returns the codec's default byte order.
func (c *Codec) Endianness() layout.Endianness {
	return c.opts.order
}

// Size returns the static size of the descriptor. Unterminated text counts
// as zero bytes; use Measure for layouts that contain it.
func (c *Codec) Size() int {
	return layout.Size(c.desc)
}

// Encode encodes v into a new buffer.
func (c *Codec) Encode(v layout.Value) ([]byte, error) {
	start := time.Now()

	size := c.Size()
	if size > layout.MaxSize {
		err := fieldErr("", 0, fmt.Errorf("%w: layout size %d exceeds %d bytes", layout.ErrInvalidDescriptor, size, layout.MaxSize))
		metrics.ObserveEncode(c.opts.metrics, c.opts.name, 0, time.Since(start), err)
		return nil, err
	}

	w := wire.NewWriter(min(size, maxPrealloc))
	err := c.encode(w, c.desc, v, "")
	if err != nil {
		metrics.ObserveEncode(c.opts.metrics, c.opts.name, 0, time.Since(start), err)
		return nil, err
	}

	out := w.Bytes()
	metrics.ObserveEncode(c.opts.metrics, c.opts.name, len(out), time.Since(start), nil)
	return out, nil
}

// Decode decodes the value at the start of buf. Bytes past the end of the
// descriptor are ignored. buf is never modified or retained.
func (c *Codec) Decode(buf []byte) (layout.Value, error) {
	start := time.Now()

	v, _, err := c.decodeAll(buf)
	metrics.ObserveDecode(c.opts.metrics, c.opts.name, len(buf), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Measure returns the number of bytes the descriptor occupies at the start
// of buf, including consumed text terminators. It fails where Decode would.
func (c *Codec) Measure(buf []byte) (int, error) {
	_, n, err := c.decodeAll(buf)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *Codec) decodeAll(buf []byte) (layout.Value, int, error) {
	if err := c.checkInput(buf); err != nil {
		return nil, 0, err
	}
	return c.decode(wire.NewReader(buf), c.desc, 0, "")
}

// Encode encodes v with a throwaway Codec for d.
func Encode(d layout.Descriptor, v layout.Value, opts ...Option) ([]byte, error) {
	return New(d, opts...).Encode(v)
}

// Decode decodes buf with a throwaway Codec for d.
func Decode(d layout.Descriptor, buf []byte, opts ...Option) (layout.Value, error) {
	return New(d, opts...).Decode(buf)
}

// orderOf returns the byte order of scalar s.
func (c *Codec) orderOf(s *layout.Scalar) layout.Endianness {
	if s.Order != nil {
		return *s.Order
	}
	return c.opts.order
}
