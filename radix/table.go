package radix

import (
	"slices"

	"github.com/alphadose/haxmap"
)

// denseDigitWidth is the widest digit that gets one pre-sized bucket slot per
// digit value (65536 slots). Wider digits use a sparse table.
const denseDigitWidth = 2

// table holds every bucket of one sort call, addressed by digit value.
type table interface {
	// get returns the bucket for digit, creating an empty one on first use.
	get(digit uint64) *bucket
	// reset empties every bucket, keeping storage.
	reset()
	// drain concatenates all buckets into dest in ascending digit order.
	drain(dest []byte, width int) int
	// each visits non-empty buckets in ascending digit order.
	each(fn func(digit uint64, b *bucket))
	release(alloc Allocator)
}

func newTable(digitWidth int) table {
	if digitWidth <= denseDigitWidth {
		return &denseTable{buckets: make([]bucket, 1<<(8*digitWidth))}
	}
	return newSparseTable()
}

type denseTable struct {
	buckets []bucket
}

func (t *denseTable) get(digit uint64) *bucket {
	return &t.buckets[digit]
}

func (t *denseTable) reset() {
	for i := range t.buckets {
		t.buckets[i].reset()
	}
}

func (t *denseTable) drain(dest []byte, width int) int {
	offset := 0
	for i := range t.buckets {
		if t.buckets[i].count > 0 {
			offset = t.buckets[i].drainInto(dest, offset, width)
		}
	}
	return offset
}

func (t *denseTable) each(fn func(uint64, *bucket)) {
	for i := range t.buckets {
		if t.buckets[i].count > 0 {
			fn(uint64(i), &t.buckets[i])
		}
	}
}

func (t *denseTable) release(alloc Allocator) {
	for i := range t.buckets {
		t.buckets[i].release(alloc)
	}
}

// sparseTable creates buckets only for digit values that actually occur, so
// digit widths up to MaxDigitWidth never materialise 2^(8*d) slots.
type sparseTable struct {
	buckets *haxmap.Map[uint64, *bucket]
	digits  []uint64
	sorted  bool
}

func newSparseTable() *sparseTable {
	return &sparseTable{
		buckets: haxmap.New[uint64, *bucket](),
		sorted:  true,
	}
}

func (t *sparseTable) get(digit uint64) *bucket {
	if b, ok := t.buckets.Get(digit); ok {
		return b
	}
	b := &bucket{}
	t.buckets.Set(digit, b)
	t.digits = append(t.digits, digit)
	t.sorted = false
	return b
}

// ordered returns the known digits in ascending order, sorting only when new
// digits appeared since the last call.
func (t *sparseTable) ordered() []uint64 {
	if !t.sorted {
		slices.Sort(t.digits)
		t.sorted = true
	}
	return t.digits
}

func (t *sparseTable) reset() {
	for _, d := range t.digits {
		if b, ok := t.buckets.Get(d); ok {
			b.reset()
		}
	}
}

func (t *sparseTable) drain(dest []byte, width int) int {
	offset := 0
	t.each(func(_ uint64, b *bucket) {
		offset = b.drainInto(dest, offset, width)
	})
	return offset
}

func (t *sparseTable) each(fn func(uint64, *bucket)) {
	for _, d := range t.ordered() {
		b, ok := t.buckets.Get(d)
		if ok && b.count > 0 {
			fn(d, b)
		}
	}
}

func (t *sparseTable) release(alloc Allocator) {
	for _, d := range t.digits {
		if b, ok := t.buckets.Get(d); ok {
			b.release(alloc)
		}
	}
}
