// Package bufpool hands out pooled byte buffers by size class, tracking
// per-class hit/miss counts. The connection read loop allocates its own
// backing buffer and does not draw from this pool, and nothing copies these
// counts into the metrics package's buffer-pool counters.
package bufpool

import (
	"fmt"
	"sync/atomic"

	"github.com/valyala/bytebufferpool"
)

// Size classes a connection's buffer is rounded up to, mirroring the
// power-of-two classes a fixed-size pool would use.
const (
	Size2KB  = 2 * 1024
	Size4KB  = 4 * 1024
	Size8KB  = 8 * 1024
	Size16KB = 16 * 1024
	Size32KB = 32 * 1024
	Size64KB = 64 * 1024
)

var classes = []int{Size2KB, Size4KB, Size8KB, Size16KB, Size32KB, Size64KB}

// ClassFor returns the smallest size class that fits want, or the largest
// class if want exceeds all of them (bytebufferpool grows the returned
// buffer past its class on demand, so this is only a starting hint).
func ClassFor(want int) int {
	for _, c := range classes {
		if want <= c {
			return c
		}
	}
	return classes[len(classes)-1]
}

// Pool hands out *bytebufferpool.ByteBuffer instances sized for the
// engine's connection read buffers, with one underlying bytebufferpool.Pool
// per size class so a connection that tends to need 64KB buffers doesn't
// thrash a pool full of 2KB ones.
type Pool struct {
	pools [len(classes)]bytebufferpool.Pool

	gets, puts, hits, misses [len(classes)]atomic.Uint64
}

// New returns an empty, ready-to-use Pool.
func New() *Pool {
	return &Pool{}
}

func classIndex(size int) int {
	for i, c := range classes {
		if size == c {
			return i
		}
	}
	return len(classes) - 1
}

// Get returns a buffer whose backing array has at least `want` bytes of
// capacity, reusing a pooled one when available.
func (p *Pool) Get(want int) *bytebufferpool.ByteBuffer {
	class := ClassFor(want)
	idx := classIndex(class)

	need := max(class, want)

	p.gets[idx].Add(1)
	buf := p.pools[idx].Get()
	if cap(buf.B) >= need {
		p.hits[idx].Add(1)
	} else {
		p.misses[idx].Add(1)
		buf.B = make([]byte, 0, need)
	}
	return buf
}

// Put returns buf to the pool it was drawn from, inferred from its current
// capacity.
func (p *Pool) Put(buf *bytebufferpool.ByteBuffer) {
	idx := classIndex(ClassFor(cap(buf.B)))
	p.puts[idx].Add(1)
	buf.Reset()
	p.pools[idx].Put(buf)
}

// Stats reports the cumulative gets/puts/hits/misses for a given size
// class, for wiring into the metrics package's counters.
func (p *Pool) Stats(class int) (gets, puts, hits, misses uint64) {
	idx := classIndex(class)
	return p.gets[idx].Load(), p.puts[idx].Load(), p.hits[idx].Load(), p.misses[idx].Load()
}

// Label returns the metrics label for a size class, e.g. "4kb".
func Label(class int) string {
	return fmt.Sprintf("%dkb", class/1024)
}

// Classes returns every size class this package rounds up to, in
// ascending order, for callers that want to export per-class metrics.
func Classes() []int {
	out := make([]int, len(classes))
	copy(out, classes)
	return out
}
