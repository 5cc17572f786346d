package radix

// Stats describes what a sort call did.
type Stats struct {
	Records          int
	Width            int
	DigitWidth       int
	ByteOrder        ByteOrder
	SignificantBytes int

	// Passes is the number of distribution passes actually completed.
	Passes int

	// BucketsUsed counts buckets that received storage during the call.
	BucketsUsed int

	// Grows counts bucket reallocations after the first allocation.
	Grows int

	// PeakBucketBytes is the largest amount of bucket storage held at once.
	PeakBucketBytes int
}

// PassStats is handed to an Observer after each pass has been written back.
type PassStats struct {
	Pass int
	Span Span

	// Occupied is the number of non-empty buckets in this pass and Largest
	// the record count of the fullest one.
	Occupied int
	Largest  int

	// Histogram maps each occupied digit value to its record count.
	Histogram map[uint64]int
}

// Observer receives per-pass statistics. It runs on the sorting goroutine
// and must not retain or modify the records.
type Observer func(PassStats)
