package radix

import (
	"errors"
	"testing"
)

func be32(vals ...uint32) []byte {
	out := make([]byte, 0, 4*len(vals))
	for _, v := range vals {
		out = append(out, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
	return out
}

func TestReadDigit(t *testing.T) {
	rec := []byte{0x12, 0x34, 0x56, 0x78, 0x9A}
	tests := []struct {
		span  Span
		order ByteOrder
		want  uint64
	}{
		{Span{0, 1}, BigEndian, 0x12},
		{Span{3, 2}, BigEndian, 0x789A},
		{Span{1, 3}, BigEndian, 0x345678},
		{Span{3, 2}, LittleEndian, 0x9A78},
		{Span{0, 5}, LittleEndian, 0x9A78563412},
		{Span{0, 5}, BigEndian, 0x123456789A},
	}
	for _, tt := range tests {
		if got := ReadDigit(rec, tt.span, tt.order); got != tt.want {
			t.Errorf("ReadDigit(%v, %v) = %#x, want %#x", tt.span, tt.order, got, tt.want)
		}
	}
}

func TestReadDigitFullAccumulator(t *testing.T) {
	rec := []byte{0xFF, 0xFE, 0xFD, 0xFC, 0xFB, 0xFA, 0xF9, 0xF8}
	if got := ReadDigit(rec, Span{0, 8}, BigEndian); got != 0xFFFEFDFCFBFAF9F8 {
		t.Errorf("got %#x", got)
	}
	if got := ReadDigit(rec, Span{0, 8}, LittleEndian); got != 0xF8F9FAFBFCFDFEFF {
		t.Errorf("got %#x", got)
	}
}

func TestNewPlanSignificantBytes(t *testing.T) {
	tests := []struct {
		name    string
		records []byte
		order   ByteOrder
		want    int
	}{
		{"all zero", be32(0, 0, 0), BigEndian, 0},
		{"identical", be32(0xDEADBEEF, 0xDEADBEEF), BigEndian, 0},
		{"last byte only", be32(1, 7, 3), BigEndian, 1},
		{"shared nonzero prefix", be32(0xAB000001, 0xAB000002), BigEndian, 1},
		{"second byte", be32(0x00010000, 0x00020000), BigEndian, 3},
		{"top byte", be32(0x01000000, 0), BigEndian, 4},
		// big-endian storage read with offset 0 least significant
		{"little order sees last offset", be32(4, 1, 0x2101, 0), LittleEndian, 4},
		{"little order first offset", []byte{1, 0, 2, 0, 3, 0}, LittleEndian, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			width := 4
			if tt.order == LittleEndian && len(tt.records) == 6 {
				width = 2
			}
			p, err := NewPlan(tt.records, width, Config{DigitWidth: 1, ByteOrder: tt.order})
			if err != nil {
				t.Fatal(err)
			}
			if p.SignificantBytes != tt.want {
				t.Errorf("SignificantBytes = %d, want %d", p.SignificantBytes, tt.want)
			}
			if p.Passes() != tt.want {
				t.Errorf("Passes = %d, want %d", p.Passes(), tt.want)
			}
		})
	}
}

func TestNewPlanSpans(t *testing.T) {
	// five-byte records varying in every byte
	records := []byte{
		1, 2, 3, 4, 5,
		5, 4, 3, 2, 1,
	}

	tests := []struct {
		digitWidth int
		order      ByteOrder
		want       []Span
	}{
		{1, BigEndian, []Span{{4, 1}, {3, 1}, {2, 1}, {1, 1}, {0, 1}}},
		{2, BigEndian, []Span{{3, 2}, {1, 2}, {0, 1}}},
		{2, LittleEndian, []Span{{0, 2}, {2, 2}, {4, 1}}},
		{5, BigEndian, []Span{{0, 5}}},
		{8, LittleEndian, []Span{{0, 5}}},
	}
	for _, tt := range tests {
		p, err := NewPlan(records, 5, Config{DigitWidth: tt.digitWidth, ByteOrder: tt.order})
		if err != nil {
			t.Fatal(err)
		}
		if len(p.Spans) != len(tt.want) {
			t.Errorf("d=%d %v: spans %v, want %v", tt.digitWidth, tt.order, p.Spans, tt.want)
			continue
		}
		for i := range tt.want {
			if p.Spans[i] != tt.want[i] {
				t.Errorf("d=%d %v: spans %v, want %v", tt.digitWidth, tt.order, p.Spans, tt.want)
				break
			}
		}
	}
}

func TestNewPlanValidation(t *testing.T) {
	if _, err := NewPlan(nil, 4, Config{DigitWidth: 0}); !errors.Is(err, ErrInvalidRadixWidth) {
		t.Errorf("digit width 0: %v", err)
	}
	if _, err := NewPlan(nil, 4, Config{DigitWidth: MaxDigitWidth + 1}); !errors.Is(err, ErrInvalidRadixWidth) {
		t.Errorf("digit width 9: %v", err)
	}
	if _, err := NewPlan(nil, 0, DefaultConfig()); !errors.Is(err, ErrInvalidRecordWidth) {
		t.Errorf("width 0: %v", err)
	}
	if _, err := NewPlan(make([]byte, 7), 4, DefaultConfig()); !errors.Is(err, ErrInvalidRecordWidth) {
		t.Errorf("ragged records: %v", err)
	}
	if _, err := NewPlan(nil, 4, Config{DigitWidth: 1, ByteOrder: ByteOrder(9)}); err == nil {
		t.Error("unknown byte order accepted")
	}
}

func TestNewPlanTrivialLengths(t *testing.T) {
	for _, records := range [][]byte{nil, {}, be32(0xFFFFFFFF)} {
		p, err := NewPlan(records, 4, DefaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if p.Passes() != 0 {
			t.Errorf("%d records: %d passes", p.Records, p.Passes())
		}
	}
}

func TestParseByteOrder(t *testing.T) {
	tests := []struct {
		in      string
		want    ByteOrder
		wantErr bool
	}{
		{"big", BigEndian, false},
		{"BE", BigEndian, false},
		{"", BigEndian, false},
		{"little", LittleEndian, false},
		{" le ", LittleEndian, false},
		{"middle", BigEndian, true},
	}
	for _, tt := range tests {
		got, err := ParseByteOrder(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseByteOrder(%q) err = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseByteOrder(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if BigEndian.String() != "big" || LittleEndian.String() != "little" {
		t.Error("unexpected String()")
	}
}
