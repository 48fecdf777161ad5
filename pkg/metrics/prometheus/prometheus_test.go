package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/marmos91/binlayout/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withRegistry(t *testing.T) {
	t.Helper()
	metrics.Reset()
	metrics.InitRegistry()
	t.Cleanup(metrics.Reset)
}

func TestNewCodecMetricsDisabled(t *testing.T) {
	metrics.Reset()
	assert.Nil(t, NewCodecMetrics())
	assert.Nil(t, NewStoreMetrics())
}

func TestCodecMetrics(t *testing.T) {
	withRegistry(t)

	m := NewCodecMetrics()
	require.NotNil(t, m)

	m.ObserveEncode("point", 8, 2*time.Millisecond, nil)
	m.ObserveEncode("point", 8, time.Millisecond, nil)
	m.ObserveDecode("point", 3, time.Millisecond, errors.New("out of bounds"))

	cm := m.(*codecMetrics)
	assert.Equal(t, 2.0, testutil.ToFloat64(cm.operations.WithLabelValues("encode", "point", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(cm.operations.WithLabelValues("decode", "point", "error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(cm.operations.WithLabelValues("decode", "point", "ok")))

	// Failed calls do not record a size sample.
	assert.Equal(t, 1, testutil.CollectAndCount(cm.size))
	assert.Equal(t, 2, testutil.CollectAndCount(cm.duration))
}

func TestStoreMetrics(t *testing.T) {
	withRegistry(t)

	m := NewStoreMetrics()
	require.NotNil(t, m)

	m.ObserveStoreOp("badger", "put", time.Millisecond, nil)
	m.ObserveStoreOp("badger", "get", time.Millisecond, errors.New("not found"))
	m.RecordLayoutCount("badger", 4)

	sm := m.(*storeMetrics)
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.operations.WithLabelValues("badger", "put", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sm.operations.WithLabelValues("badger", "get", "error")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sm.layouts.WithLabelValues("badger")))
}

func TestMetricsRegisteredOnSharedRegistry(t *testing.T) {
	withRegistry(t)

	m := NewCodecMetrics()
	m.ObserveDecode("hdr", 12, time.Millisecond, nil)

	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["binlayout_codec_operations_total"])
	assert.True(t, names["binlayout_codec_duration_milliseconds"])
	assert.True(t, names["binlayout_codec_bytes"])
}
