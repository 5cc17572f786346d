package radix

import (
	"fmt"
	"math"
	"runtime"
)

// Allocator supplies the byte storage behind buckets.
//
// Alloc returns a zeroed slice of exactly size bytes or an error. Any error is
// reported to the caller of Sort wrapped in ErrAllocation. Free receives every
// slice obtained from Alloc exactly once.
type Allocator interface {
	Alloc(size int) ([]byte, error)
	Free(buf []byte)
}

// maxAllocSize bounds single bucket allocations so size arithmetic cannot overflow.
const maxAllocSize = math.MaxInt >> 1

type heapAllocator struct{}

func (heapAllocator) Alloc(size int) (buf []byte, err error) {
	if size < 0 || size > maxAllocSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrAllocation, size)
	}
	// make panics with a runtime error when the size exceeds what the
	// platform can address; surface that as an allocation failure.
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(runtime.Error); ok {
				buf, err = nil, fmt.Errorf("%w: %d bytes: %v", ErrAllocation, size, rerr)
				return
			}
			panic(r)
		}
	}()
	return make([]byte, size), nil
}

func (heapAllocator) Free([]byte) {}
