// Package verify checks sort results over packed fixed-width records.
package verify

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/ChristianF88/recsort/radix"
)

// Fingerprint is an order-independent digest of a multiset of records.
// Two permutations of the same records always have equal fingerprints.
type Fingerprint struct {
	Count int    `json:"count"`
	Sum   uint64 `json:"sum"`
	Xor   uint64 `json:"xor"`
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%d records sum=%016x xor=%016x", f.Count, f.Sum, f.Xor)
}

// Compute fingerprints data, read as records of width bytes.
func Compute(data []byte, width int) Fingerprint {
	var f Fingerprint
	if width < 1 {
		return f
	}
	for off := 0; off+width <= len(data); off += width {
		h := xxhash.Sum64(data[off : off+width])
		f.Count++
		f.Sum += h
		f.Xor ^= h
	}
	return f
}

// Compare orders two records of equal width by their unsigned value in order.
func Compare(a, b []byte, order radix.ByteOrder) int {
	if order == radix.BigEndian {
		return bytes.Compare(a, b)
	}
	for i := len(a) - 1; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// FirstInversion returns the index of the first record that is smaller than
// its predecessor, or -1 when data is sorted.
func FirstInversion(data []byte, width int, order radix.ByteOrder) int {
	if width < 1 {
		return -1
	}
	n := len(data) / width
	for i := 1; i < n; i++ {
		prev := data[(i-1)*width : i*width]
		cur := data[i*width : (i+1)*width]
		if Compare(prev, cur, order) > 0 {
			return i
		}
	}
	return -1
}

// IsSorted reports whether data is in ascending order.
func IsSorted(data []byte, width int, order radix.ByteOrder) bool {
	return FirstInversion(data, width, order) < 0
}

// Result summarises a before/after check of one sort.
type Result struct {
	Before       Fingerprint `json:"before"`
	After        Fingerprint `json:"after"`
	Permutation  bool        `json:"permutation"`
	Sorted       bool        `json:"sorted"`
	FirstUnorder int         `json:"first_unordered,omitempty"`
}

// OK reports whether the output is a sorted permutation of the input.
func (r Result) OK() bool {
	return r.Permutation && r.Sorted
}

// Check compares the fingerprint taken before sorting with data after sorting.
func Check(before Fingerprint, data []byte, width int, order radix.ByteOrder) Result {
	r := Result{
		Before: before,
		After:  Compute(data, width),
	}
	r.Permutation = r.Before == r.After
	if idx := FirstInversion(data, width, order); idx >= 0 {
		r.FirstUnorder = idx
	} else {
		r.Sorted = true
	}
	return r
}
