package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for codec and registry spans.
const (
	AttrLayout     = "layout.name"
	AttrOperation  = "codec.operation"
	AttrEndianness = "codec.endianness"
	AttrBytes      = "codec.bytes"
	AttrField      = "codec.field"
	AttrOffset     = "codec.offset"
	AttrStore      = "registry.store"
	AttrClientIP   = "client.ip"
)

func Layout(name string) attribute.KeyValue { return attribute.String(AttrLayout, name) }
func Operation(op string) attribute.KeyValue { return attribute.String(AttrOperation, op) }
func Endianness(e string) attribute.KeyValue { return attribute.String(AttrEndianness, e) }
func Bytes(n int) attribute.KeyValue { return attribute.Int(AttrBytes, n) }
func Field(path string) attribute.KeyValue { return attribute.String(AttrField, path) }
func Offset(off int) attribute.KeyValue { return attribute.Int(AttrOffset, off) }
func Store(backend string) attribute.KeyValue { return attribute.String(AttrStore, backend) }
func ClientIP(ip string) attribute.KeyValue { return attribute.String(AttrClientIP, ip) }

// StartCodecSpan starts a "codec.<op>" span for the named layout.
func StartCodecSpan(ctx context.Context, op, layout string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Operation(op), Layout(layout)}, attrs...)
	return StartSpan(ctx, "codec."+op, trace.WithAttributes(all...))
}

// StartRegistrySpan starts a "registry.<op>" span.
func StartRegistrySpan(ctx context.Context, op, backend string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{Store(backend)}, attrs...)
	return StartSpan(ctx, "registry."+op, trace.WithAttributes(all...))
}
