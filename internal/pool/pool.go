// Package pool recycles the large byte buffers a batch conversion needs
// for decoded pixels. Buffers are bucketed by power-of-two size class.
package pool

import (
	"math/bits"
	"sync"
)

// Size classes: 64 KiB up to 256 MiB. Larger buffers are not pooled.
const (
	minShift = 16
	maxShift = 28

	MinSize = 1 << minShift
	MaxSize = 1 << maxShift
)

var pools [maxShift - minShift + 1]sync.Pool

func init() {
	for i := range pools {
		sz := 1 << (minShift + i)
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// bucketIndex returns the pool index for a buffer of size bytes, or -1
// when size is above MaxSize.
func bucketIndex(size int) int {
	if size <= MinSize {
		return 0
	}
	if size > MaxSize {
		return -1
	}
	return bits.Len(uint(size-1)) - minShift
}

// Get returns a byte slice of length size. Its contents are unspecified.
// The caller should call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	return (*bp)[:size]
}

// Put returns a slice obtained from Get to its pool. Slices whose capacity
// is not a size class are dropped.
func Put(b []byte) {
	c := cap(b)
	if c < MinSize || c > MaxSize || c&(c-1) != 0 {
		return
	}
	b = b[:c]
	pools[bits.Len(uint(c))-1-minShift].Put(&b)
}
