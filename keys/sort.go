package keys

import (
	"math"
	"reflect"

	"github.com/ChristianF88/recsort/radix"
)

// Number is the set of value types Sort can order.
type Number interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~int |
		~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uint |
		~float32 | ~float64
}

type layout struct {
	width  int
	signed bool
	float  bool
}

func layoutOf[T Number]() layout {
	var zero T
	t := reflect.TypeOf(zero)
	l := layout{width: int(t.Size())}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		l.signed = true
	case reflect.Float32, reflect.Float64:
		l.float = true
	}
	return l
}

// Sort orders values ascending with the radix engine. Floats order -Inf below
// negative values below -0 below +0; NaNs land at the end their sign bit puts
// them. cfg.ByteOrder is ignored because the encoding is always big-endian.
func Sort[T Number](values []T, cfg radix.Config) error {
	if len(values) <= 1 {
		return cfg.Validate()
	}
	l := layoutOf[T]()
	cfg.ByteOrder = radix.BigEndian

	records := make([]byte, len(values)*l.width)
	for i, v := range values {
		putUint(records[i*l.width:(i+1)*l.width], encodeValue(v, l))
	}
	if err := radix.Sort(records, l.width, cfg); err != nil {
		return err
	}
	for i := range values {
		values[i] = decodeValue[T](getUint(records[i*l.width:(i+1)*l.width]), l)
	}
	return nil
}

// SortUint32 sorts IPv4 addresses in their integer form, one byte per pass.
func SortUint32(data []uint32) error {
	return Sort(data, radix.DefaultConfig())
}

func encodeValue[T Number](v T, l layout) uint64 {
	switch {
	case l.float && l.width == 4:
		return sortableFloatBits(uint64(math.Float32bits(float32(v))), signBit(4), math.MaxUint32)
	case l.float:
		return sortableFloatBits(math.Float64bits(float64(v)), signBit(8), math.MaxUint64)
	case l.signed:
		return (uint64(int64(v)) ^ signBit(l.width)) & widthMask(l.width)
	default:
		return uint64(v)
	}
}

func decodeValue[T Number](u uint64, l layout) T {
	switch {
	case l.float && l.width == 4:
		return T(math.Float32frombits(uint32(floatBitsFromSortable(u, signBit(4), math.MaxUint32))))
	case l.float:
		return T(math.Float64frombits(floatBitsFromSortable(u, signBit(8), math.MaxUint64)))
	case l.signed:
		shift := 64 - 8*l.width
		return T(int64((u^signBit(l.width))<<shift) >> shift)
	default:
		return T(u)
	}
}

func widthMask(width int) uint64 {
	if width == 8 {
		return math.MaxUint64
	}
	return 1<<(8*width) - 1
}
