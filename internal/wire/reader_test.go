package wire

import (
	"errors"
	"math"
	"testing"
)

func TestNewReader(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	if r.Len() != 4 {
		t.Errorf("expected len 4, got %d", r.Len())
	}
	if r.Remaining(1) != 3 {
		t.Errorf("expected remaining 3, got %d", r.Remaining(1))
	}
	if r.Err() != nil {
		t.Errorf("expected no error, got %v", r.Err())
	}
}

func TestNewReaderNilData(t *testing.T) {
	r := NewReader(nil)
	if r.Len() != 0 {
		t.Errorf("expected len 0, got %d", r.Len())
	}
	if r.Remaining(0) != 0 {
		t.Errorf("expected remaining 0, got %d", r.Remaining(0))
	}
	if r.Remaining(5) != 0 {
		t.Errorf("expected remaining 0 past end, got %d", r.Remaining(5))
	}
}

func TestReaderSlice(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04}
	r := NewReader(data)

	got := r.Slice(1, 2)
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if len(got) != 2 || got[0] != 0x02 || got[1] != 0x03 {
		t.Errorf("expected [02 03], got % x", got)
	}

	// Positional reads do not consume: the same range reads again.
	again := r.Slice(1, 2)
	if len(again) != 2 || again[0] != 0x02 {
		t.Errorf("expected [02 03] on re-read, got % x", again)
	}
}

func TestReaderSliceCapIsClamped(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	got := r.Slice(0, 2)
	if cap(got) != 2 {
		t.Errorf("expected cap 2, got %d", cap(got))
	}
}

func TestReaderZeroLengthSliceAtEnd(t *testing.T) {
	r := NewReader([]byte{0x01})
	got := r.Slice(1, 0)
	if r.Err() != nil {
		t.Fatalf("unexpected error: %v", r.Err())
	}
	if len(got) != 0 {
		t.Errorf("expected empty slice, got % x", got)
	}
}

func TestReaderShortRead(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	got := r.Slice(1, 4)
	if got != nil {
		t.Errorf("expected nil on short read, got % x", got)
	}
	if !errors.Is(r.Err(), ErrShortRead) {
		t.Fatalf("expected ErrShortRead, got %v", r.Err())
	}
	want := "wire: short read: need 4 bytes at offset 1, have 1"
	if r.Err().Error() != want {
		t.Errorf("expected %q, got %q", want, r.Err().Error())
	}
}

func TestReaderHugeLengthDoesNotOverflow(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if got := r.Slice(1, math.MaxInt); got != nil {
		t.Errorf("expected nil for oversized read, got % x", got)
	}
	if !errors.Is(r.Err(), ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", r.Err())
	}
}

func TestReaderErrorAccumulation(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04})
	_ = r.Slice(3, 2) // fails
	first := r.Err()
	if first == nil {
		t.Fatal("expected error after short read")
	}

	// Subsequent valid reads are no-ops and keep the first error.
	if got := r.Slice(0, 1); got != nil {
		t.Errorf("expected nil after error, got % x", got)
	}
	if r.Err() != first {
		t.Errorf("expected first error to be kept, got %v", r.Err())
	}
}

func TestReaderNegativePosition(t *testing.T) {
	r := NewReader([]byte{0x01})
	if got := r.Slice(-1, 1); got != nil {
		t.Errorf("expected nil for negative position, got % x", got)
	}
	if !errors.Is(r.Err(), ErrShortRead) {
		t.Errorf("expected ErrShortRead, got %v", r.Err())
	}
}

func TestReaderTail(t *testing.T) {
	r := NewReader([]byte{'a', 'b', 0, 'c'})
	if got := r.Tail(1); string(got) != "b\x00c" {
		t.Errorf("expected tail from 1, got %q", got)
	}
	if got := r.Tail(4); got != nil {
		t.Errorf("expected nil tail at end, got %q", got)
	}
	if r.Err() != nil {
		t.Errorf("Tail must not set an error, got %v", r.Err())
	}
}

func TestReaderByteAt(t *testing.T) {
	r := NewReader([]byte{0x10, 0x20})
	if b, ok := r.ByteAt(1); !ok || b != 0x20 {
		t.Errorf("expected 0x20, got 0x%02x ok=%v", b, ok)
	}
	if _, ok := r.ByteAt(2); ok {
		t.Error("expected ok=false past end")
	}
	if r.Err() != nil {
		t.Errorf("ByteAt must not set an error, got %v", r.Err())
	}
}
