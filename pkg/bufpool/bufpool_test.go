package bufpool

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferAllocation(t *testing.T) {
	t.Run("AllocatesSmallBuffer", func(t *testing.T) {
		buf := Get(100)
		defer Put(buf)

		assert.Len(t, buf, 100)
		assert.Equal(t, DefaultSmallSize, cap(buf))
	})

	t.Run("AllocatesMediumBuffer", func(t *testing.T) {
		buf := Get(10 * 1024)
		defer Put(buf)

		assert.Len(t, buf, 10*1024)
		assert.Equal(t, DefaultMediumSize, cap(buf))
	})

	t.Run("AllocatesLargeBuffer", func(t *testing.T) {
		buf := Get(100 * 1024)
		defer Put(buf)

		assert.Len(t, buf, 100*1024)
		assert.Equal(t, DefaultLargeSize, cap(buf))
	})

	t.Run("AllocatesOversizedBuffer", func(t *testing.T) {
		buf := Get(2 * 1024 * 1024)
		defer Put(buf)

		assert.Len(t, buf, 2*1024*1024)
		assert.Equal(t, len(buf), cap(buf))
	})

	t.Run("AllocatesZeroSizeBuffer", func(t *testing.T) {
		buf := Get(0)
		defer Put(buf)

		assert.NotNil(t, buf)
		assert.Equal(t, DefaultSmallSize, cap(buf))
	})
}

func TestTierBoundaries(t *testing.T) {
	tests := []struct {
		size     int
		expected int
	}{
		{DefaultSmallSize, DefaultSmallSize},
		{DefaultSmallSize + 1, DefaultMediumSize},
		{DefaultMediumSize, DefaultMediumSize},
		{DefaultMediumSize + 1, DefaultLargeSize},
		{DefaultLargeSize, DefaultLargeSize},
		{DefaultLargeSize + 1, DefaultLargeSize + 1},
	}
	for _, tt := range tests {
		buf := Get(tt.size)
		assert.Equal(t, tt.expected, cap(buf), "size %d", tt.size)
		Put(buf)
	}
}

func TestCustomPool(t *testing.T) {
	p := NewPool(&Config{SmallSize: 8, MediumSize: 64})

	assert.Equal(t, 8, cap(p.Get(8)))
	assert.Equal(t, 64, cap(p.Get(9)))
	assert.Equal(t, DefaultLargeSize, cap(p.Get(65)))
}

func TestPutIgnoresForeignBuffers(t *testing.T) {
	p := NewPool(nil)

	// None of these may panic or end up in a tier.
	p.Put(nil)
	p.Put(make([]byte, 10))
	p.Put(make([]byte, DefaultLargeSize*2))

	buf := p.Get(10)
	assert.Equal(t, DefaultSmallSize, cap(buf))
}

func TestReadAll(t *testing.T) {
	t.Run("ExactHint", func(t *testing.T) {
		data := []byte{1, 2, 3, 4}
		buf, err := ReadAll(bytes.NewReader(data), int64(len(data)))
		require.NoError(t, err)
		defer Put(buf)

		assert.Equal(t, data, buf)
		assert.Equal(t, DefaultSmallSize, cap(buf))
	})

	t.Run("NoHintGrowsThroughTiers", func(t *testing.T) {
		data := bytes.Repeat([]byte{0xab}, DefaultMediumSize+10)
		buf, err := ReadAll(bytes.NewReader(data), -1)
		require.NoError(t, err)
		defer Put(buf)

		assert.Equal(t, data, buf)
		assert.Equal(t, DefaultLargeSize, cap(buf))
	})

	t.Run("PastLargestTier", func(t *testing.T) {
		data := bytes.Repeat([]byte{7}, DefaultLargeSize+1)
		buf, err := ReadAll(bytes.NewReader(data), 0)
		require.NoError(t, err)

		assert.Equal(t, data, buf)
	})

	t.Run("Empty", func(t *testing.T) {
		buf, err := ReadAll(strings.NewReader(""), 0)
		require.NoError(t, err)
		assert.Empty(t, buf)
		Put(buf)
	})

	t.Run("ReaderError", func(t *testing.T) {
		boom := errors.New("boom")
		r := io.MultiReader(strings.NewReader("abc"), errReader{boom})
		_, err := ReadAll(r, 0)
		assert.ErrorIs(t, err, boom)
	})
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }

func TestConcurrentAccess(t *testing.T) {
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			size := (i + 1) * 1000
			buf := Get(size)
			for j := range buf {
				buf[j] = byte(i)
			}
			for j := range buf {
				if buf[j] != byte(i) {
					t.Errorf("buffer shared between goroutines")
					return
				}
			}
			Put(buf)
		}()
	}
	wg.Wait()
}

func BenchmarkReadAll(b *testing.B) {
	data := bytes.Repeat([]byte{1}, 4096)
	for b.Loop() {
		buf, err := ReadAll(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			b.Fatal(err)
		}
		Put(buf)
	}
}
