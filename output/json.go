package output

import (
	"slices"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/ChristianF88/recsort/radix"
	"github.com/ChristianF88/recsort/verify"
	"github.com/ChristianF88/recsort/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Report represents the complete result of one sort or plan run
type Report struct {
	Metadata     Metadata       `json:"metadata"`
	Input        FileInfo       `json:"input"`
	Output       *FileInfo      `json:"output,omitempty"`
	Sort         SortSummary    `json:"sort"`
	Passes       []PassSummary  `json:"passes"`
	Verification *verify.Result `json:"verification,omitempty"`
	Warnings     []Warning      `json:"warnings"`
	Errors       []Error        `json:"errors"`

	// Mutex for thread-safe appending
	mu sync.Mutex `json:"-"`
}

// Metadata contains information about the run
type Metadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	Command     string    `json:"command"`
	Version     string    `json:"version"`
	DurationMS  int64     `json:"duration_ms"`
}

// FileInfo describes a record file
type FileInfo struct {
	Path    string `json:"path"`
	Format  string `json:"format"`
	Key     string `json:"key"`
	Records int    `json:"records"`
	Width   int    `json:"width"`
	Bytes   int    `json:"bytes"`
	Size    string `json:"size"`
}

// SortSummary contains the engine configuration and counters
type SortSummary struct {
	DigitWidth       int    `json:"digit_width"`
	ByteOrder        string `json:"byte_order"`
	SignificantBytes int    `json:"significant_bytes"`
	Spans            []Span `json:"spans"`
	Passes           int    `json:"passes"`
	BucketsUsed      int    `json:"buckets_used"`
	Grows            int    `json:"grows"`
	PeakBucketBytes  int    `json:"peak_bucket_bytes"`
	PeakBucketSize   string `json:"peak_bucket_size"`
	MemoryLimit      string `json:"memory_limit,omitempty"`
	DurationUS       int64  `json:"duration_us"`
	RatePerSecond    int64  `json:"rate_per_second"`
}

// Span is the byte range a pass reads as its digit
type Span struct {
	Offset int `json:"offset"`
	Width  int `json:"width"`
}

// PassSummary describes the bucket distribution of one pass
type PassSummary struct {
	Pass     int           `json:"pass"`
	Span     Span          `json:"span"`
	Occupied int           `json:"occupied"`
	Largest  int           `json:"largest"`
	Buckets  []BucketCount `json:"buckets,omitempty"`
}

// BucketCount is the number of records that landed in the bucket of Digit
type BucketCount struct {
	Digit uint64 `json:"digit"`
	Count int    `json:"count"`
}

// Warning represents a warning message
type Warning struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// Error represents an error message
type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
}

// NewReport creates a new Report with default metadata
func NewReport(command string, startTime time.Time) *Report {
	return &Report{
		Metadata: Metadata{
			GeneratedAt: time.Now().UTC(),
			Command:     command,
			Version:     version.Version,
			DurationMS:  time.Since(startTime).Milliseconds(),
		},
		Passes:   []PassSummary{},
		Warnings: []Warning{},
		Errors:   []Error{},
	}
}

// SetPlan records the pass schedule before any pass has run
func (r *Report) SetPlan(plan radix.Plan) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sort.DigitWidth = plan.DigitWidth
	r.Sort.ByteOrder = plan.ByteOrder.String()
	r.Sort.SignificantBytes = plan.SignificantBytes
	r.Sort.Spans = make([]Span, len(plan.Spans))
	for i, s := range plan.Spans {
		r.Sort.Spans[i] = Span{Offset: s.Offset, Width: s.Width}
	}
}

// SetStats copies the counters of a finished sort
func (r *Report) SetStats(stats radix.Stats, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.Sort.DigitWidth = stats.DigitWidth
	r.Sort.ByteOrder = stats.ByteOrder.String()
	r.Sort.SignificantBytes = stats.SignificantBytes
	r.Sort.Passes = stats.Passes
	r.Sort.BucketsUsed = stats.BucketsUsed
	r.Sort.Grows = stats.Grows
	r.Sort.PeakBucketBytes = stats.PeakBucketBytes
	r.Sort.PeakBucketSize = sizeString(stats.PeakBucketBytes)
	r.Sort.DurationUS = elapsed.Microseconds()
	if secs := elapsed.Seconds(); secs > 0 {
		r.Sort.RatePerSecond = int64(float64(stats.Records) / secs)
	}
}

// AddPass records one pass. The histogram is stored sorted by digit (thread-safe)
func (r *Report) AddPass(ps radix.PassStats) {
	summary := PassSummary{
		Pass:     ps.Pass,
		Span:     Span{Offset: ps.Span.Offset, Width: ps.Span.Width},
		Occupied: ps.Occupied,
		Largest:  ps.Largest,
		Buckets:  make([]BucketCount, 0, len(ps.Histogram)),
	}
	for digit, count := range ps.Histogram {
		summary.Buckets = append(summary.Buckets, BucketCount{Digit: digit, Count: count})
	}
	slices.SortFunc(summary.Buckets, func(a, b BucketCount) int {
		switch {
		case a.Digit < b.Digit:
			return -1
		case a.Digit > b.Digit:
			return 1
		}
		return 0
	})

	r.mu.Lock()
	defer r.mu.Unlock()
	r.Passes = append(r.Passes, summary)
}

// SetVerification stores the outcome of a before/after check
func (r *Report) SetVerification(res verify.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Verification = &res
	if !res.OK() {
		r.Errors = append(r.Errors, Error{
			Type:    "verification_failed",
			Message: "output is not a sorted permutation of the input",
		})
	}
}

// ToJSON converts the report to pretty-printed JSON
func (r *Report) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ToCompactJSON converts the report to compact JSON
func (r *Report) ToCompactJSON() ([]byte, error) {
	return json.Marshal(r)
}

// AddWarning adds a warning to the report (thread-safe)
func (r *Report) AddWarning(warningType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Warnings = append(r.Warnings, Warning{
		Type:    warningType,
		Message: message,
		Count:   count,
	})
}

// AddError adds an error to the report (thread-safe)
func (r *Report) AddError(errorType, message string, count int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, Error{
		Type:    errorType,
		Message: message,
		Count:   count,
	})
}

// UpdateDuration updates the duration in metadata
func (r *Report) UpdateDuration(startTime time.Time) {
	r.Metadata.DurationMS = time.Since(startTime).Milliseconds()
}
