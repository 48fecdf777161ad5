package layout

import "math"

const (
	// MaxSize bounds the static size of a valid descriptor, and with it
	// every scalar width and fixed text length inside it.
	MaxSize = 1 << 30

	// MaxCount bounds the element count of a valid array.
	MaxCount = 1 << 24
)

// Size returns the number of bytes d occupies, computed from the descriptor
// alone. Null-terminated text counts as zero bytes, so Size is only exact for
// layouts without unterminated text; use SizeAt for those. Sizes past
// math.MaxInt saturate rather than wrap.
func Size(d Descriptor) int {
	switch d := d.(type) {
	case *Scalar:
		return d.Width.ByteLen()
	case *Text:
		if d.Fixed != nil {
			return *d.Fixed
		}
		return 0
	case *Array:
		return mulSat(d.Count, Size(d.Element))
	case *Struct:
		n := 0
		for _, f := range d.Fields {
			n = addSat(n, Size(f))
		}
		return n
	default:
		return 0
	}
}

// SizeAt returns the number of bytes d occupies in buf, where buf starts at the
// first byte of the field. Null-terminated text measures up to (not including)
// the first zero byte, or to the end of buf when there is none. Arrays and
// structs measure each child at its own position.
func SizeAt(d Descriptor, buf []byte) int {
	switch d := d.(type) {
	case *Text:
		if d.Fixed != nil {
			return *d.Fixed
		}
		return Strlen(buf)
	case *Array:
		if !HasUnterminatedText(d) {
			return Size(d)
		}
		pos := 0
		for i := range d.Count {
			if pos >= len(buf) {
				// Past the end every element measures its static size.
				return addSat(pos, mulSat(d.Count-i, Size(d.Element)))
			}
			pos = addSat(pos, SizeAt(d.Element, tail(buf, pos)))
		}
		return pos
	case *Struct:
		if !HasUnterminatedText(d) {
			return Size(d)
		}
		pos := 0
		for _, f := range d.Fields {
			pos = addSat(pos, SizeAt(f, tail(buf, pos)))
		}
		return pos
	default:
		return Size(d)
	}
}

// Strlen returns the index of the first zero byte in buf, or len(buf) when buf
// holds no zero byte.
func Strlen(buf []byte) int {
	for i, b := range buf {
		if b == 0 {
			return i
		}
	}
	return len(buf)
}

// HasUnterminatedText reports whether d contains a text field without a fixed
// length, which makes its size depend on the buffer.
func HasUnterminatedText(d Descriptor) bool {
	switch d := d.(type) {
	case *Text:
		return d.Fixed == nil
	case *Array:
		return d.Count > 0 && HasUnterminatedText(d.Element)
	case *Struct:
		for _, f := range d.Fields {
			if HasUnterminatedText(f) {
				return true
			}
		}
	}
	return false
}

func tail(buf []byte, pos int) []byte {
	if pos >= len(buf) {
		return nil
	}
	return buf[pos:]
}

func addSat(a, b int) int {
	if a > math.MaxInt-b {
		return math.MaxInt
	}
	return a + b
}

func mulSat(a, b int) int {
	if a <= 0 || b <= 0 {
		return 0
	}
	if a > math.MaxInt/b {
		return math.MaxInt
	}
	return a * b
}
