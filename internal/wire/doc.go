// Package wire provides the bounds-checked buffer primitives the structural
// codec walks with.
//
// Reader wraps an immutable byte slice but, unlike a stream reader, holds no
// cursor: every read names its absolute position and the caller threads the
// position through its own recursion. The first failed read is remembered,
// and every later read becomes a no-op returning nil, so a caller may check
// Err once after a sequence of reads:
//
//	r := wire.NewReader(data)
//	head := r.Slice(0, 4)
//	body := r.Slice(4, n)
//	if r.Err() != nil {
//	    return r.Err() // reports the first short read with its offset
//	}
//
// Writer appends to a byte buffer with pre-allocated capacity. It knows
// nothing about byte order; callers hand it bytes already converted.
//
// Neither type is safe for concurrent use. Both are created per call.
package wire
