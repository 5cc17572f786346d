package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ChristianF88/recsort/recordio"
)

func sizeString(bytes int) string {
	if bytes < 0 {
		bytes = 0
	}
	return humanize.IBytes(uint64(bytes))
}

// NewFileInfo describes recs as read from or written to path.
func NewFileInfo(path string, format recordio.Format, key string, recs *recordio.Records) FileInfo {
	return FileInfo{
		Path:    path,
		Format:  format.String(),
		Key:     key,
		Records: recs.Len(),
		Width:   recs.Width,
		Bytes:   len(recs.Data),
		Size:    sizeString(len(recs.Data)),
	}
}

// WritePlain writes a human-readable summary of r
func WritePlain(w io.Writer, r *Report) error {
	var b strings.Builder

	fmt.Fprintf(&b, "recsort %s (%s)\n", r.Metadata.Command, r.Metadata.Version)
	fmt.Fprintf(&b, "Input:   %s [%s, key %s] %s records of %d bytes (%s)\n",
		r.Input.Path, r.Input.Format, r.Input.Key, humanize.Comma(int64(r.Input.Records)), r.Input.Width, r.Input.Size)
	if r.Output != nil {
		fmt.Fprintf(&b, "Output:  %s [%s] %s\n", r.Output.Path, r.Output.Format, r.Output.Size)
	}

	s := r.Sort
	fmt.Fprintf(&b, "Digits:  %d byte(s), %s, %d significant byte(s), %d pass(es)\n",
		s.DigitWidth, s.ByteOrder, s.SignificantBytes, len(s.Spans))
	for i, span := range s.Spans {
		fmt.Fprintf(&b, "  pass %d: bytes %d-%d\n", i, span.Offset, span.Offset+span.Width-1)
	}
	if s.Passes > 0 {
		fmt.Fprintf(&b, "Buckets: %d used, %d grows, peak %s", s.BucketsUsed, s.Grows, s.PeakBucketSize)
		if s.MemoryLimit != "" {
			fmt.Fprintf(&b, " of %s limit", s.MemoryLimit)
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "Time:    %d µs (%s records/s)\n", s.DurationUS, humanize.Comma(s.RatePerSecond))
	}
	for _, p := range r.Passes {
		fmt.Fprintf(&b, "  pass %d: %d bucket(s) occupied, largest %s\n", p.Pass, p.Occupied, humanize.Comma(int64(p.Largest)))
	}

	if v := r.Verification; v != nil {
		status := "OK"
		if !v.OK() {
			status = "FAILED"
		}
		fmt.Fprintf(&b, "Verify:  %s (permutation %t, sorted %t)\n", status, v.Permutation, v.Sorted)
	}
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "Warning: %s: %s\n", warn.Type, warn.Message)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "Error:   %s: %s\n", e.Type, e.Message)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
