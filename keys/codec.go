// Package keys converts typed values to and from fixed-width records whose
// big-endian byte order matches the natural order of the values.
package keys

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownCodec is returned by Lookup for a name it does not know.
var ErrUnknownCodec = errors.New("unknown key codec")

// Codec encodes one text value into a record and formats a record back as text.
type Codec struct {
	Name  string
	Width int

	encode func(dst []byte, text string) error
	decode func(dst, rec []byte) []byte
}

// Encode parses text into dst, which must be Width bytes long.
func (c Codec) Encode(dst []byte, text string) error {
	if len(dst) != c.Width {
		return fmt.Errorf("%s: record buffer of %d bytes, want %d", c.Name, len(dst), c.Width)
	}
	return c.encode(dst, strings.TrimSpace(text))
}

// Decode appends the text form of rec to dst.
func (c Codec) Decode(dst, rec []byte) []byte {
	return c.decode(dst, rec)
}

type codecFactory func(width int) (Codec, error)

var codecs = map[string]codecFactory{
	"uint8":   fixed(unsignedCodec("uint8", 1)),
	"uint16":  fixed(unsignedCodec("uint16", 2)),
	"uint32":  fixed(unsignedCodec("uint32", 4)),
	"uint64":  fixed(unsignedCodec("uint64", 8)),
	"int8":    fixed(signedCodec("int8", 1)),
	"int16":   fixed(signedCodec("int16", 2)),
	"int32":   fixed(signedCodec("int32", 4)),
	"int64":   fixed(signedCodec("int64", 8)),
	"float32": fixed(float32Codec()),
	"float64": fixed(float64Codec()),
	"ipv4":    fixed(ipv4Codec()),
	"hex":     hexCodec("hex"),
	"raw":     hexCodec("raw"),
}

// Lookup returns the codec called name. width is required by the hex and raw
// codecs; for fixed-width codecs it must be zero or match the codec width.
func Lookup(name string, width int) (Codec, error) {
	factory, ok := codecs[strings.ToLower(name)]
	if !ok {
		return Codec{}, fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownCodec, name, strings.Join(Names(), ", "))
	}
	return factory(width)
}

// Names lists the known codec names in sorted order.
func Names() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func fixed(c Codec) codecFactory {
	return func(width int) (Codec, error) {
		if width != 0 && width != c.Width {
			return Codec{}, fmt.Errorf("%s records are %d bytes wide, not %d", c.Name, c.Width, width)
		}
		return c, nil
	}
}

func putUint(dst []byte, v uint64) {
	switch len(dst) {
	case 1:
		dst[0] = byte(v)
	case 2:
		binary.BigEndian.PutUint16(dst, uint16(v))
	case 4:
		binary.BigEndian.PutUint32(dst, uint32(v))
	case 8:
		binary.BigEndian.PutUint64(dst, v)
	}
}

func getUint(rec []byte) uint64 {
	switch len(rec) {
	case 1:
		return uint64(rec[0])
	case 2:
		return uint64(binary.BigEndian.Uint16(rec))
	case 4:
		return uint64(binary.BigEndian.Uint32(rec))
	case 8:
		return binary.BigEndian.Uint64(rec)
	}
	return 0
}

func signBit(width int) uint64 {
	return 1 << (8*width - 1)
}

func unsignedCodec(name string, width int) Codec {
	return Codec{
		Name:  name,
		Width: width,
		encode: func(dst []byte, text string) error {
			v, err := strconv.ParseUint(text, 0, 8*width)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, text, err)
			}
			putUint(dst, v)
			return nil
		},
		decode: func(dst, rec []byte) []byte {
			return strconv.AppendUint(dst, getUint(rec), 10)
		},
	}
}

// Signed values flip the sign bit so that negatives order below positives.
func signedCodec(name string, width int) Codec {
	sign := signBit(width)
	return Codec{
		Name:  name,
		Width: width,
		encode: func(dst []byte, text string) error {
			v, err := strconv.ParseInt(text, 0, 8*width)
			if err != nil {
				return fmt.Errorf("invalid %s %q: %w", name, text, err)
			}
			putUint(dst, uint64(v)^sign)
			return nil
		},
		decode: func(dst, rec []byte) []byte {
			u := getUint(rec) ^ sign
			// sign-extend from the record width
			shift := 64 - 8*width
			return strconv.AppendInt(dst, int64(u<<shift)>>shift, 10)
		},
	}
}

// Floats: positive values flip the sign bit, negative values flip all bits.
func sortableFloatBits(bits, sign uint64, mask uint64) uint64 {
	if bits&sign != 0 {
		return ^bits & mask
	}
	return bits | sign
}

func floatBitsFromSortable(u, sign uint64, mask uint64) uint64 {
	if u&sign != 0 {
		return u ^ sign
	}
	return ^u & mask
}

func float32Codec() Codec {
	const sign, mask = 1 << 31, math.MaxUint32
	return Codec{
		Name:  "float32",
		Width: 4,
		encode: func(dst []byte, text string) error {
			f, err := strconv.ParseFloat(text, 32)
			if err != nil {
				return fmt.Errorf("invalid float32 %q: %w", text, err)
			}
			putUint(dst, sortableFloatBits(uint64(math.Float32bits(float32(f))), sign, mask))
			return nil
		},
		decode: func(dst, rec []byte) []byte {
			f := math.Float32frombits(uint32(floatBitsFromSortable(getUint(rec), sign, mask)))
			return strconv.AppendFloat(dst, float64(f), 'g', -1, 32)
		},
	}
}

func float64Codec() Codec {
	const sign, mask = 1 << 63, math.MaxUint64
	return Codec{
		Name:  "float64",
		Width: 8,
		encode: func(dst []byte, text string) error {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return fmt.Errorf("invalid float64 %q: %w", text, err)
			}
			putUint(dst, sortableFloatBits(math.Float64bits(f), sign, mask))
			return nil
		},
		decode: func(dst, rec []byte) []byte {
			f := math.Float64frombits(floatBitsFromSortable(getUint(rec), sign, mask))
			return strconv.AppendFloat(dst, f, 'g', -1, 64)
		},
	}
}

// hexCodec reads records written as hex strings, most significant byte first.
func hexCodec(name string) codecFactory {
	return func(width int) (Codec, error) {
		if width < 1 {
			return Codec{}, fmt.Errorf("%s records need an explicit width", name)
		}
		return Codec{
			Name:  name,
			Width: width,
			encode: func(dst []byte, text string) error {
				text = strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
				if len(text) != 2*width {
					return fmt.Errorf("invalid %s record %q: want %d hex digits", name, text, 2*width)
				}
				if _, err := hex.Decode(dst, []byte(text)); err != nil {
					return fmt.Errorf("invalid %s record %q: %w", name, text, err)
				}
				return nil
			},
			decode: func(dst, rec []byte) []byte {
				return hex.AppendEncode(dst, rec)
			},
		}, nil
	}
}
