package pools

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBudgetExceeded is returned by Budget.Alloc when a request would push the
// bytes in use past the limit.
var ErrBudgetExceeded = errors.New("memory budget exceeded")

// Budget hands out zeroed byte buffers from the heap while keeping the total
// number of bytes in use at or below a limit. It satisfies radix.Allocator.
// Thread-safe; one Budget can be shared by concurrent sorts.
type Budget struct {
	mu     sync.Mutex
	limit  int
	inUse  int
	peak   int
	allocs int
	frees  int
}

// BudgetStats is a snapshot of a Budget's counters.
type BudgetStats struct {
	Limit  int
	InUse  int
	Peak   int
	Allocs int
	Frees  int
}

// NewBudget creates a budget of limit bytes. A limit of zero or less is unlimited.
func NewBudget(limit int) *Budget {
	if limit < 0 {
		limit = 0
	}
	return &Budget{limit: limit}
}

// Alloc reserves size bytes against the budget and returns a buffer of that length.
// The heap allocation itself happens outside the lock.
func (b *Budget) Alloc(size int) ([]byte, error) {
	if size < 0 {
		return nil, fmt.Errorf("negative allocation of %d bytes", size)
	}

	b.mu.Lock()
	if b.limit > 0 && size > b.limit-b.inUse {
		inUse := b.inUse
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use", ErrBudgetExceeded, size, inUse, b.limit)
	}
	b.inUse += size
	b.allocs++
	if b.inUse > b.peak {
		b.peak = b.inUse
	}
	b.mu.Unlock()

	return make([]byte, size), nil
}

// Free returns a buffer obtained from Alloc to the budget.
func (b *Budget) Free(buf []byte) {
	if buf == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inUse -= len(buf)
	if b.inUse < 0 {
		b.inUse = 0
	}
	b.frees++
}

// Stats returns the current counters.
func (b *Budget) Stats() BudgetStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BudgetStats{
		Limit:  b.limit,
		InUse:  b.inUse,
		Peak:   b.peak,
		Allocs: b.allocs,
		Frees:  b.frees,
	}
}

// Reset clears the counters but keeps the limit.
// Should only be called once every buffer has been freed.
func (b *Budget) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.inUse = 0
	b.peak = 0
	b.allocs = 0
	b.frees = 0
}

// lineBuffers holds scratch buffers for formatting one record as a text line.
var lineBuffers = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 0, 64) // enough for any numeric key plus newline
		return &buf
	},
}

// GetLineBuffer gets an empty line buffer from the pool.
func GetLineBuffer() *[]byte {
	buf := lineBuffers.Get().(*[]byte)
	*buf = (*buf)[:0]
	return buf
}

// PutLineBuffer returns a line buffer to the pool.
func PutLineBuffer(buf *[]byte) {
	if cap(*buf) > 4096 { // Prevent memory bloat from huge raw records
		return
	}
	lineBuffers.Put(buf)
}
