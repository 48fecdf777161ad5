package metrics

import "time"

// CodecMetrics observes encode and decode calls.
//
// layout is the registered name of the layout (or "" for anonymous codecs),
// bytes the size of the produced or consumed buffer, and err the outcome of
// the call.
type CodecMetrics interface {
	ObserveEncode(layout string, bytes int, d time.Duration, err error)
	ObserveDecode(layout string, bytes int, d time.Duration, err error)
}

// ObserveEncode records an encode call on m when m is non-nil.
func ObserveEncode(m CodecMetrics, layout string, bytes int, d time.Duration, err error) {
	if m != nil {
		m.ObserveEncode(layout, bytes, d, err)
	}
}

// ObserveDecode records a decode call on m when m is non-nil.
func ObserveDecode(m CodecMetrics, layout string, bytes int, d time.Duration, err error) {
	if m != nil {
		m.ObserveDecode(layout, bytes, d, err)
	}
}
