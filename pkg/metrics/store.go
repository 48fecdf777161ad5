package metrics

import "time"

// StoreMetrics observes layout registry operations.
//
// store is the backend type ("memory", "badger") and op the operation name
// ("put", "get", "list", "delete").
type StoreMetrics interface {
	ObserveStoreOp(store, op string, d time.Duration, err error)
	RecordLayoutCount(store string, n int)
}

// ObserveStoreOp records a registry operation on m when m is non-nil.
func ObserveStoreOp(m StoreMetrics, store, op string, d time.Duration, err error) {
	if m != nil {
		m.ObserveStoreOp(store, op, d, err)
	}
}

// RecordLayoutCount records the number of stored layouts on m when m is
// non-nil.
func RecordLayoutCount(m StoreMetrics, store string, n int) {
	if m != nil {
		m.RecordLayoutCount(store, n)
	}
}
