package wire

// Writer appends encoded fields to a growing buffer.
type Writer struct {
	buf []byte
}

// NewWriter creates a new Writer with the given initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{
		buf: make([]byte, 0, max(capacity, 0)),
	}
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(data []byte) {
	w.buf = append(w.buf, data...)
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteZeros appends n zero bytes. Non-positive n is a no-op.
func (w *Writer) WriteZeros(n int) {
	if n <= 0 {
		return
	}
	w.buf = append(w.buf, make([]byte, n)...)
}

// WriteFixed appends exactly n bytes: data truncated to n, or data followed
// by zero padding up to n.
func (w *Writer) WriteFixed(data []byte, n int) {
	if n <= 0 {
		return
	}
	if len(data) >= n {
		w.buf = append(w.buf, data[:n]...)
		return
	}
	w.buf = append(w.buf, data...)
	w.WriteZeros(n - len(data))
}

// Bytes returns the accumulated bytes.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the current length of the buffer.
func (w *Writer) Len() int {
	return len(w.buf)
}
