// Package bufpool provides a tiered buffer pool for request bodies.
//
// The codec service reads every decode and size request into a byte slice
// that lives only until the response is written. Decoded values never
// alias the input buffer, so those slices can be reused across requests.
//
// The pool uses three size tiers:
//   - Small buffers (default 512B): single records and headers
//   - Medium buffers (default 16KB): batches of records
//   - Large buffers (default 1MB): the default request body limit
//
// Buffers larger than the large tier are allocated directly and not pooled.
//
// # Usage
//
//	buf, err := bufpool.ReadAll(r.Body, r.ContentLength)
//	if err != nil { ... }
//	defer bufpool.Put(buf)
package bufpool

import (
	"errors"
	"io"
	"sync"
)

// Default buffer size classes.
const (
	DefaultSmallSize  = 512
	DefaultMediumSize = 16 << 10
	DefaultLargeSize  = 1 << 20
)

// Pool manages byte slices organized by size class.
type Pool struct {
	tiers [3]tier
}

type tier struct {
	size int
	pool sync.Pool
}

// Config holds the tier sizes of a custom pool. Zero values take the
// defaults.
type Config struct {
	SmallSize  int
	MediumSize int
	LargeSize  int
}

// NewPool creates a pool. A nil cfg uses the default sizes.
func NewPool(cfg *Config) *Pool {
	var c Config
	if cfg != nil {
		c = *cfg
	}
	if c.SmallSize <= 0 {
		c.SmallSize = DefaultSmallSize
	}
	if c.MediumSize <= 0 {
		c.MediumSize = DefaultMediumSize
	}
	if c.LargeSize <= 0 {
		c.LargeSize = DefaultLargeSize
	}

	p := &Pool{}
	for i, size := range []int{c.SmallSize, c.MediumSize, c.LargeSize} {
		p.tiers[i].size = size
		p.tiers[i].pool.New = func() any {
			buf := make([]byte, size)
			return &buf
		}
	}
	return p
}

// Get returns a slice of length size. Its capacity is that of the
// smallest tier that fits, or exactly size when no tier does.
//
// Return the slice with Put once nothing references it.
func (p *Pool) Get(size int) []byte {
	for i := range p.tiers {
		t := &p.tiers[i]
		if size <= t.size {
			buf := *t.pool.Get().(*[]byte)
			return buf[:size]
		}
	}
	return make([]byte, size)
}

// Put returns buf to the tier matching its capacity. Other slices are left
// to the garbage collector.
func (p *Pool) Put(buf []byte) {
	if buf == nil {
		return
	}
	for i := range p.tiers {
		t := &p.tiers[i]
		if cap(buf) == t.size {
			full := buf[:cap(buf)]
			t.pool.Put(&full)
			return
		}
	}
}

// ReadAll reads r to EOF into a pooled buffer. sizeHint, typically the
// request's Content-Length, picks the starting tier; a non-positive hint
// starts from the smallest. The buffer doubles whenever it fills, moving
// up the tiers and past the largest into unpooled slices.
func (p *Pool) ReadAll(r io.Reader, sizeHint int64) ([]byte, error) {
	start := p.tiers[0].size
	if sizeHint > 0 && sizeHint <= int64(p.tiers[len(p.tiers)-1].size) {
		start = int(sizeHint)
	}

	buf := p.Get(start)[:0]
	for {
		if len(buf) == cap(buf) {
			next := p.Get(2 * cap(buf))[:len(buf)]
			copy(next, buf)
			p.Put(buf)
			buf = next
		}

		n, err := r.Read(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		if errors.Is(err, io.EOF) {
			return buf, nil
		}
		if err != nil {
			p.Put(buf)
			return nil, err
		}
	}
}

// globalPool is the package-level pool with the default sizes.
var globalPool = NewPool(nil)

// Get returns a slice of length size from the global pool.
func Get(size int) []byte {
	return globalPool.Get(size)
}

// Put returns a buffer to the global pool.
func Put(buf []byte) {
	globalPool.Put(buf)
}

// ReadAll reads r into a buffer from the global pool.
func ReadAll(r io.Reader, sizeHint int64) ([]byte, error) {
	return globalPool.ReadAll(r, sizeHint)
}
