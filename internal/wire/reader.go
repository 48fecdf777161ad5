package wire

import (
	"errors"
	"fmt"
)

// ErrShortRead is returned when a read extends past the end of the buffer.
var ErrShortRead = errors.New("wire: short read")

// Reader provides positional, bounds-checked reads over a byte slice with
// error accumulation. Once an error occurs, all subsequent reads return nil.
type Reader struct {
	data []byte
	err  error
}

// NewReader creates a Reader over data. data is never modified.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// require checks that n bytes are available at pos.
// Returns false and sets the error if insufficient data remains.
func (r *Reader) require(pos, n int) bool {
	if r.err != nil {
		return false
	}
	if pos < 0 || n < 0 || pos > len(r.data) || n > len(r.data)-pos {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortRead, n, pos, r.Remaining(pos))
		return false
	}
	return true
}

// Slice returns the n bytes starting at pos. The result aliases the
// underlying buffer and must not be modified.
// Returns nil and sets the error on short read.
func (r *Reader) Slice(pos, n int) []byte {
	if !r.require(pos, n) {
		return nil
	}
	return r.data[pos : pos+n : pos+n]
}

// Tail returns everything from pos to the end of the buffer, or nil when pos
// is at or past the end. It never fails.
func (r *Reader) Tail(pos int) []byte {
	if pos < 0 || pos >= len(r.data) {
		return nil
	}
	return r.data[pos:]
}

// ByteAt returns the byte at pos and whether pos is inside the buffer. It
// never sets the error.
func (r *Reader) ByteAt(pos int) (byte, bool) {
	if pos < 0 || pos >= len(r.data) {
		return 0, false
	}
	return r.data[pos], true
}

// Err returns the first error encountered, or nil.
func (r *Reader) Err() error {
	return r.err
}

// Remaining returns the number of bytes from pos to the end of the buffer.
func (r *Reader) Remaining(pos int) int {
	return max(len(r.data)-pos, 0)
}

// Len returns the length of the underlying buffer.
func (r *Reader) Len() int {
	return len(r.data)
}
