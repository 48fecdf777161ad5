package logger

import (
	"encoding/hex"
	"log/slog"
)

// Standard field keys. Use them consistently so log lines from the CLI, the
// HTTP service and the codec can be queried together.
const (
	// Tracing
	KeyTraceID = "trace_id"
	KeySpanID  = "span_id"

	// Codec
	KeyLayout = "layout"   // registered layout or descriptor file name
	KeyField  = "field"    // dotted field path, e.g. points[1].x
	KeyKind   = "kind"     // primitive kind of a scalar field
	KeyOffset = "offset"   // byte offset in the buffer
	KeySize   = "size"     // size in bytes
	KeyBits   = "bits"     // bit count
	KeyEndian = "endian"   // little or big
	KeyOp     = "op"       // encode, decode, size
	KeyBytes  = "bytes"    // payload length
	KeyHex    = "hex"      // payload preview

	// HTTP
	KeyRequestID = "request_id"
	KeyClientIP  = "client_ip"
	KeyMethod    = "method"
	KeyPath      = "path"
	KeyStatus    = "status"

	// Storage
	KeyStore = "store" // registry backend type
	KeyFile  = "file"  // file path on disk

	// Outcome
	KeyDurationMs = "duration_ms"
	KeyError      = "error"
)

// previewLimit caps the number of bytes rendered by Hex.
const previewLimit = 32

func Layout(name string) slog.Attr {
	return slog.String(KeyLayout, name)
}

func Field(path string) slog.Attr {
	return slog.String(KeyField, path)
}

func Kind(k string) slog.Attr {
	return slog.String(KeyKind, k)
}

func Offset(off int) slog.Attr {
	return slog.Int(KeyOffset, off)
}

func Size(n int) slog.Attr {
	return slog.Int(KeySize, n)
}

func Bits(n int) slog.Attr {
	return slog.Int(KeyBits, n)
}

func Endian(e string) slog.Attr {
	return slog.String(KeyEndian, e)
}

func Op(op string) slog.Attr {
	return slog.String(KeyOp, op)
}

func Bytes(n int) slog.Attr {
	return slog.Int(KeyBytes, n)
}

// Hex renders at most the first 32 bytes of b, followed by "..." when b is
// longer.
func Hex(b []byte) slog.Attr {
	if len(b) > previewLimit {
		return slog.String(KeyHex, hex.EncodeToString(b[:previewLimit])+"...")
	}
	return slog.String(KeyHex, hex.EncodeToString(b))
}

func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

func ClientIP(addr string) slog.Attr {
	return slog.String(KeyClientIP, addr)
}

func Method(m string) slog.Attr {
	return slog.String(KeyMethod, m)
}

func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

func Store(t string) slog.Attr {
	return slog.String(KeyStore, t)
}

func File(p string) slog.Attr {
	return slog.String(KeyFile, p)
}

func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns an error attribute, or an empty attribute for a nil error
// which handlers drop.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
