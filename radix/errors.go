package radix

import "errors"

var (
	// ErrInvalidRadixWidth reports a digit width outside 1..MaxDigitWidth.
	ErrInvalidRadixWidth = errors.New("invalid radix width")

	// ErrInvalidRecordWidth reports a record width below 1, or a record
	// slice whose length is not a multiple of the record width.
	ErrInvalidRecordWidth = errors.New("invalid record width")

	// ErrAllocation reports that bucket storage could not grow.
	// The records passed to the failed call are left in an undefined order.
	ErrAllocation = errors.New("bucket allocation failed")
)
