package radix

import (
	"context"
	"fmt"
)

// Sort orders the fixed-width records packed in records in place, ascending
// by their unsigned value in cfg.ByteOrder. Records with equal keys keep their
// relative order.
//
// len(records) must be a multiple of width. A slice of zero or one record is
// returned untouched without allocating. On error the configuration is
// reported before any record is read; an allocation failure leaves records
// in an undefined order.
func Sort(records []byte, width int, cfg Config) error {
	_, err := SortContext(context.Background(), records, width, cfg)
	return err
}

// SortContext is Sort with instrumentation and cancellation. ctx is checked
// between passes; a cancelled sort returns ctx.Err() and leaves records in an
// undefined order.
func SortContext(ctx context.Context, records []byte, width int, cfg Config) (Stats, error) {
	plan, err := NewPlan(records, width, cfg)
	if err != nil {
		return Stats{}, err
	}

	e := newEngine(plan, cfg)
	defer e.release()

	for i, span := range plan.Spans {
		if err := ctx.Err(); err != nil {
			return e.stats, err
		}
		if err := e.pass(records, i, span); err != nil {
			return e.stats, fmt.Errorf("pass %d (bytes %d-%d): %w", i, span.Offset, span.Offset+span.Width-1, err)
		}
	}
	return e.stats, nil
}

// engine carries the state of one sort call. Its buckets never outlive it.
type engine struct {
	width    int
	order    ByteOrder
	digits   int
	initial  int
	alloc    Allocator
	observer Observer

	table table
	bytes int
	stats Stats
}

func newEngine(plan Plan, cfg Config) *engine {
	// Pre-size for an even spread over all buckets. Shifting by 64 for
	// eight-byte digits yields zero, which max lifts back to one.
	perBucket := plan.Records >> (8 * plan.DigitWidth)

	return &engine{
		width:    plan.Width,
		order:    plan.ByteOrder,
		digits:   plan.DigitWidth,
		initial:  max(1, perBucket) + 1,
		alloc:    cfg.allocator(),
		observer: cfg.Observer,
		stats: Stats{
			Records:          plan.Records,
			Width:            plan.Width,
			DigitWidth:       plan.DigitWidth,
			ByteOrder:        plan.ByteOrder,
			SignificantBytes: plan.SignificantBytes,
		},
	}
}

// pass distributes every record by the digit at span and writes the buckets
// back in ascending digit order. Buckets preserve insertion order, which is
// what makes the whole sort stable.
func (e *engine) pass(records []byte, index int, span Span) error {
	if e.table == nil {
		e.table = newTable(e.digits)
	} else {
		e.table.reset()
	}

	w := e.width
	for off := 0; off < len(records); off += w {
		rec := records[off : off+w]
		b := e.table.get(ReadDigit(rec, span, e.order))

		before := b.capacity
		if err := b.append(rec, e.initial, e.alloc); err != nil {
			return err
		}
		if b.capacity != before {
			e.account(before, b.capacity)
		}
	}

	e.table.drain(records, w)
	e.stats.Passes++

	if e.observer != nil {
		e.observer(e.passStats(index, span))
	}
	return nil
}

func (e *engine) account(before, after int) {
	if before == 0 {
		e.stats.BucketsUsed++
	} else {
		e.stats.Grows++
	}
	e.bytes += (after - before) * e.width
	if e.bytes > e.stats.PeakBucketBytes {
		e.stats.PeakBucketBytes = e.bytes
	}
}

func (e *engine) passStats(index int, span Span) PassStats {
	ps := PassStats{
		Pass:      index,
		Span:      span,
		Histogram: make(map[uint64]int),
	}
	e.table.each(func(digit uint64, b *bucket) {
		ps.Occupied++
		ps.Largest = max(ps.Largest, b.count)
		ps.Histogram[digit] = b.count
	})
	return ps
}

func (e *engine) release() {
	if e.table != nil {
		e.table.release(e.alloc)
		e.table = nil
	}
	e.bytes = 0
}
