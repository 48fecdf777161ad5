// Package bitframe extracts an arbitrary run of bits from a byte buffer and
// repacks it into a fresh, byte-aligned buffer.
//
// Bit positions are absolute: position p addresses bit p%8 of byte p/8, where
// bit 0 is the least significant bit of its byte. Extracted bits are packed
// least-significant-bit first starting at output bit 0, so a run that starts
// mid-byte and spans byte boundaries comes out right-aligned:
//
//	in := []byte{0b10101010, 0b11001100}
//	bitframe.Reframe(3, 10, layout.Little, layout.Little, in)
//	// => []byte{0b10010101, 0b00000001}
//
// The input byte order selects how byte indices map onto the buffer (Big reads
// byte i from the end), the output byte order reverses the packed result.
// Bit order within a byte is never changed.
package bitframe

import "github.com/marmos91/binlayout/pkg/layout"

// Reframe extracts bits [offset, offset+count) of in and packs them into
// ceil(count/8) new bytes. Bits that fall past the end of in read as zero.
// A non-positive count yields an empty, non-nil buffer.
func Reframe(offset, count int, inOrder, outOrder layout.Endianness, in []byte) []byte {
	if count <= 0 {
		return []byte{}
	}
	out := make([]byte, (count+7)/8)
	for i := range count {
		if bitAt(in, offset+i, inOrder) != 0 {
			out[i/8] |= 1 << (i % 8)
		}
	}
	if outOrder == layout.Big {
		layout.Reverse(out)
	}
	return out
}

// New returns Reframe with its parameters bound, for callers that apply the
// same extraction to many buffers.
func New(offset, count int, inOrder, outOrder layout.Endianness) func([]byte) []byte {
	return func(in []byte) []byte {
		return Reframe(offset, count, inOrder, outOrder, in)
	}
}

// bitAt returns bit pos of b under the given byte order. Positions outside
// the buffer read as zero.
func bitAt(b []byte, pos int, order layout.Endianness) byte {
	if pos < 0 {
		return 0
	}
	idx := pos / 8
	if idx >= len(b) {
		return 0
	}
	if order == layout.Big {
		idx = len(b) - 1 - idx
	}
	return (b[idx] >> (pos % 8)) & 1
}
