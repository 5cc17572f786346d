package radix

import "fmt"

// Span is the byte range [Offset, Offset+Width) of a record read as one digit.
type Span struct {
	Offset int
	Width  int
}

// Plan is the pass schedule of a sort: which digit each pass reads, least
// significant first.
type Plan struct {
	Records    int
	Width      int
	DigitWidth int
	ByteOrder  ByteOrder

	// SignificantBytes counts the byte columns, from the least significant
	// end, up to and including the most significant column in which some
	// record differs from the first record. Columns beyond it are identical
	// in every record and need no pass.
	SignificantBytes int

	Spans []Span
}

// Passes returns the number of distribution passes the plan performs.
func (p Plan) Passes() int {
	return len(p.Spans)
}

// NewPlan validates cfg and the record layout and computes the passes a sort
// of records would perform. records is only read.
func NewPlan(records []byte, width int, cfg Config) (Plan, error) {
	if err := cfg.Validate(); err != nil {
		return Plan{}, err
	}
	if width < 1 {
		return Plan{}, fmt.Errorf("%w: %d", ErrInvalidRecordWidth, width)
	}
	if len(records)%width != 0 {
		return Plan{}, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrInvalidRecordWidth, len(records), width)
	}

	p := Plan{
		Records:    len(records) / width,
		Width:      width,
		DigitWidth: min(cfg.DigitWidth, width),
		ByteOrder:  cfg.ByteOrder,
	}
	if p.Records <= 1 {
		return p, nil
	}

	p.SignificantBytes = significantBytes(records, width, cfg.ByteOrder)
	for covered := 0; covered < p.SignificantBytes; covered += p.DigitWidth {
		p.Spans = append(p.Spans, digitSpan(covered, p.DigitWidth, width, cfg.ByteOrder))
	}
	return p, nil
}

// significantBytes scans byte columns from the most significant end and stops
// at the first column where any record differs from the first record.
func significantBytes(records []byte, width int, order ByteOrder) int {
	for rank := width - 1; rank >= 0; rank-- {
		if columnVaries(records, width, columnOffset(rank, width, order)) {
			return rank + 1
		}
	}
	return 0
}

// columnOffset maps a significance rank (0 = least significant byte) to a
// byte offset within the record.
func columnOffset(rank, width int, order ByteOrder) int {
	if order == BigEndian {
		return width - 1 - rank
	}
	return rank
}

func columnVaries(records []byte, width, offset int) bool {
	first := records[offset]
	var diff byte
	for i := offset + width; i < len(records); i += width {
		diff |= records[i] ^ first
		if diff != 0 {
			return true
		}
	}
	return false
}

// digitSpan returns the span holding the digit whose least significant byte
// has significance rank low. The most significant digit may be narrower than
// digitWidth when the record width is not a multiple of it.
func digitSpan(low, digitWidth, width int, order ByteOrder) Span {
	n := min(digitWidth, width-low)
	if order == BigEndian {
		return Span{Offset: width - low - n, Width: n}
	}
	return Span{Offset: low, Width: n}
}

// ReadDigit reads the bytes of rec covered by span as an unsigned integer in
// the given byte order. span.Width must not exceed MaxDigitWidth.
func ReadDigit(rec []byte, span Span, order ByteOrder) uint64 {
	b := rec[span.Offset : span.Offset+span.Width]
	var v uint64
	if order == BigEndian {
		for _, c := range b {
			v = v<<8 | uint64(c)
		}
		return v
	}
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v
}
