package radix

import (
	"fmt"
	"strings"
)

// MaxDigitWidth is the widest digit, in bytes, that fits the uint64 digit accumulator.
const MaxDigitWidth = 8

// ByteOrder tells the engine which end of a record holds its most significant byte.
// Digits are always read in this order; the host byte order never matters.
type ByteOrder uint8

const (
	// BigEndian records keep their most significant byte at offset 0.
	// Encoded keys from package keys use this layout.
	BigEndian ByteOrder = iota
	// LittleEndian records keep their least significant byte at offset 0,
	// like native integers on little-endian hosts.
	LittleEndian
)

func (o ByteOrder) String() string {
	switch o {
	case BigEndian:
		return "big"
	case LittleEndian:
		return "little"
	}
	return fmt.Sprintf("ByteOrder(%d)", uint8(o))
}

// ParseByteOrder accepts "big"/"be" and "little"/"le". An empty string is BigEndian.
func ParseByteOrder(s string) (ByteOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "big", "be", "big-endian", "bigendian":
		return BigEndian, nil
	case "little", "le", "little-endian", "littleendian":
		return LittleEndian, nil
	}
	return BigEndian, fmt.Errorf("unknown byte order %q (expected big or little)", s)
}

// Config controls a single sort call. Nothing in it is retained after the call returns.
type Config struct {
	// DigitWidth is the number of bytes read as one digit per pass.
	// Each pass distributes into 2^(8*DigitWidth) buckets.
	DigitWidth int

	// ByteOrder selects which end of a record is most significant.
	ByteOrder ByteOrder

	// Allocator provides bucket storage. Nil uses the Go heap.
	Allocator Allocator

	// Observer, when set, is called after every pass.
	Observer Observer
}

// DefaultConfig sorts one byte per pass with BigEndian significance, so
// big-endian encoded integers come out in numeric order. Records laid out
// least significant byte first need ByteOrder: LittleEndian; for the
// big-endian words 0x04, 0x01, 0x2101, 0x00 that order yields
// 0x00, 0x01, 0x2101, 0x04 where the default yields 0x00, 0x01, 0x04, 0x2101.
func DefaultConfig() Config {
	return Config{DigitWidth: 1}
}

// Validate checks the configuration without looking at any records.
func (c Config) Validate() error {
	if c.DigitWidth < 1 || c.DigitWidth > MaxDigitWidth {
		return fmt.Errorf("%w: %d bytes (must be between 1 and %d)", ErrInvalidRadixWidth, c.DigitWidth, MaxDigitWidth)
	}
	if c.ByteOrder != BigEndian && c.ByteOrder != LittleEndian {
		return fmt.Errorf("invalid byte order %v", c.ByteOrder)
	}
	return nil
}

func (c Config) allocator() Allocator {
	if c.Allocator == nil {
		return heapAllocator{}
	}
	return c.Allocator
}
