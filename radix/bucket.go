package radix

import (
	"errors"
	"fmt"
)

// bucket is a growable run of fixed-width records collected during one pass.
// len(storage) == capacity*width whenever storage is non-nil.
type bucket struct {
	storage  []byte
	count    int
	capacity int
}

// append copies rec into the bucket. The first call allocates room for
// initial records; afterwards capacity doubles whenever the bucket is full.
func (b *bucket) append(rec []byte, initial int, alloc Allocator) error {
	width := len(rec)
	if b.count == b.capacity {
		newCap := initial
		if b.capacity > 0 {
			if b.capacity > maxAllocSize/(2*width) {
				return fmt.Errorf("%w: bucket of %d records cannot double", ErrAllocation, b.capacity)
			}
			newCap = b.capacity * 2
		} else if newCap < 1 || newCap > maxAllocSize/width {
			return fmt.Errorf("%w: initial capacity of %d records", ErrAllocation, newCap)
		}

		size := newCap * width
		buf, err := alloc.Alloc(size)
		if err != nil {
			if !errors.Is(err, ErrAllocation) {
				err = fmt.Errorf("%w: %w", ErrAllocation, err)
			}
			return err
		}
		if len(buf) < size {
			alloc.Free(buf)
			return fmt.Errorf("%w: allocator returned %d of %d bytes", ErrAllocation, len(buf), size)
		}
		buf = buf[:size]

		if b.storage != nil {
			copy(buf, b.storage[:b.count*width])
			alloc.Free(b.storage)
		}
		b.storage = buf
		b.capacity = newCap
	}

	copy(b.storage[b.count*width:], rec)
	b.count++
	return nil
}

// reset empties the bucket but keeps its storage for the next pass.
func (b *bucket) reset() {
	b.count = 0
}

// drainInto copies the bucket's records into dest at offset and returns the
// offset just past them. The bucket itself is left untouched.
func (b *bucket) drainInto(dest []byte, offset, width int) int {
	n := b.count * width
	copy(dest[offset:offset+n], b.storage[:n])
	return offset + n
}

// release hands the storage back to alloc. Calling it twice is harmless.
func (b *bucket) release(alloc Allocator) {
	if b.storage != nil {
		alloc.Free(b.storage)
	}
	b.storage = nil
	b.count = 0
	b.capacity = 0
}
