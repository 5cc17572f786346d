package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"k8s.io/klog/v2"

	"github.com/ChristianF88/recsort/config"
	"github.com/ChristianF88/recsort/keys"
	"github.com/ChristianF88/recsort/output"
	"github.com/ChristianF88/recsort/pools"
	"github.com/ChristianF88/recsort/radix"
	"github.com/ChristianF88/recsort/recordio"
	"github.com/ChristianF88/recsort/tui"
	"github.com/ChristianF88/recsort/verify"
)

// ============================================================================
// CONFIGURATION STRUCTS
// ============================================================================

// OutputConfig contains output and reporting options that apply in both modes
type OutputConfig struct {
	Compact  bool
	Plain    bool
	TUI      bool
	Verify   bool
	Progress bool
}

// ============================================================================
// MAIN ENTRY POINTS - These are the only functions that should be called externally
// ============================================================================

// Sort is the unified sort function for CLI flag values
func Sort(ctx context.Context, input, inputFormat, key string, width int, outputPath, outputFormat string,
	digitWidth int, byteOrder, memoryLimit, report, plotPath string, outputConfig OutputConfig) error {

	// Create config.Config directly from CLI parameters - no intermediate structs
	cfg, err := createConfigFromCLI(input, inputFormat, key, width, outputPath, outputFormat,
		digitWidth, byteOrder, memoryLimit, report, plotPath, outputConfig.Compact)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Use the same execution path regardless of input source
	return executeSort(ctx, cfg, outputConfig, os.Stdout)
}

// SortFromConfig runs a sort from a loaded config file
func SortFromConfig(ctx context.Context, cfg *config.Config, outputConfig OutputConfig) error {
	if cfg.Output.Compact {
		outputConfig.Compact = true
	}
	return executeSort(ctx, cfg, outputConfig, os.Stdout)
}

// PlanFromConfig prints the pass schedule for the configured input
func PlanFromConfig(cfg *config.Config, outputConfig OutputConfig) error {
	if cfg.Output.Compact {
		outputConfig.Compact = true
	}
	return executePlan(cfg, outputConfig, os.Stdout)
}

// ============================================================================
// CORE EXECUTION LOGIC - Single unified execution path
// ============================================================================

// sortJob is everything resolved from a config before any record is read.
type sortJob struct {
	codec        keys.Codec
	inputFormat  recordio.Format
	outputFormat recordio.Format
	radixConfig  radix.Config
}

func resolveJob(cfg *config.Config) (sortJob, error) {
	var job sortJob
	var err error

	if job.codec, err = cfg.Codec(); err != nil {
		return job, err
	}
	if job.inputFormat, err = recordio.ParseFormat(cfg.Input.Format); err != nil {
		return job, err
	}
	if job.outputFormat, err = recordio.ParseFormat(cfg.Output.Format); err != nil {
		return job, err
	}
	if job.radixConfig, err = cfg.RadixConfig(); err != nil {
		return job, err
	}
	return job, nil
}

func readInput(cfg *config.Config, job sortJob) (*recordio.Records, error) {
	readStart := time.Now()
	recs, err := recordio.Read(cfg.Input.Path, job.inputFormat, job.codec)
	if err != nil {
		return nil, err
	}
	klog.Infof("read %d %s records (%d bytes each) from %s in %v",
		recs.Len(), job.codec.Name, recs.Width, cfg.Input.Path, time.Since(readStart))
	return recs, nil
}

// executeSort handles every sort - CLI or config file, doesn't matter
func executeSort(ctx context.Context, cfg *config.Config, outputConfig OutputConfig, stdout io.Writer) error {
	startTime := time.Now()

	job, err := resolveJob(cfg)
	if err != nil {
		return err
	}
	recs, err := readInput(cfg, job)
	if err != nil {
		return err
	}

	report := output.NewReport("sort", startTime)
	report.Input = output.NewFileInfo(cfg.Input.Path, job.inputFormat, job.codec.Name, recs)

	plan, err := radix.NewPlan(recs.Data, recs.Width, job.radixConfig)
	if err != nil {
		return err
	}
	report.SetPlan(plan)
	klog.V(1).Infof("plan: %d significant byte(s), %d pass(es) of %d-byte digits", plan.SignificantBytes, plan.Passes(), plan.DigitWidth)

	budget := pools.NewBudget(int(min(cfg.MemoryLimitBytes(), uint64(maxBudget))))
	job.radixConfig.Allocator = budget
	if cfg.Sort.MemoryLimit != "" {
		report.Sort.MemoryLimit = cfg.Sort.MemoryLimit
	}

	var before verify.Fingerprint
	if outputConfig.Verify {
		before = verify.Compute(recs.Data, recs.Width)
	}

	var bar *progressbar.ProgressBar
	if outputConfig.Progress && plan.Passes() > 0 {
		bar = progressbar.NewOptions(plan.Passes(),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription(fmt.Sprintf("sorting %d records", recs.Len())),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	job.radixConfig.Observer = func(ps radix.PassStats) {
		report.AddPass(ps)
		klog.V(2).Infof("pass %d: bytes %d-%d, %d bucket(s) occupied, largest %d",
			ps.Pass, ps.Span.Offset, ps.Span.Offset+ps.Span.Width-1, ps.Occupied, ps.Largest)
		if bar != nil {
			bar.Add(1)
		}
	}

	sortStart := time.Now()
	stats, err := radix.SortContext(ctx, recs.Data, recs.Width, job.radixConfig)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return fmt.Errorf("sorting %s: %w", cfg.Input.Path, err)
	}
	report.SetStats(stats, time.Since(sortStart))
	klog.Infof("sorted %d records in %d pass(es) in %v, peak bucket storage %d bytes",
		stats.Records, stats.Passes, time.Since(sortStart), budget.Stats().Peak)

	if outputConfig.Verify {
		res := verify.Check(before, recs.Data, recs.Width, job.radixConfig.ByteOrder)
		report.SetVerification(res)
		if !res.OK() {
			klog.Errorf("verification failed: permutation=%t sorted=%t first unordered=%d", res.Permutation, res.Sorted, res.FirstUnorder)
		}
	}

	if err := writeOutput(cfg, job, recs, report, stdout); err != nil {
		return err
	}

	// Generate heatmap if plotPath is provided
	if cfg.Output.PlotPath != "" && len(report.Passes) > 0 {
		plotStart := time.Now()
		if err := output.PlotBucketHeatmap(report.Passes, cfg.Output.PlotPath); err != nil {
			report.AddError("plot_failed", err.Error(), 0)
		} else {
			report.AddWarning("info", fmt.Sprintf("Heatmap generated in %v at %s", time.Since(plotStart), cfg.Output.PlotPath), 0)
		}
	}

	report.UpdateDuration(startTime)
	if err := writeReport(cfg, report, outputConfig.Compact); err != nil {
		return err
	}

	switch {
	case outputConfig.TUI:
		if err := tui.Run(report); err != nil {
			return fmt.Errorf("running TUI: %w", err)
		}
	case cfg.Output.Path != "" && cfg.Output.Path != recordio.Stdio:
		// Sorted values went to a file, so stdout carries the report
		if err := outputResult(stdout, report, outputConfig); err != nil {
			return err
		}
	}

	if v := report.Verification; v != nil && !v.OK() {
		return fmt.Errorf("verification failed: output is not a sorted permutation of the input")
	}
	return nil
}

// maxBudget keeps the budget limit representable as an int on every platform.
const maxBudget = int(^uint(0) >> 1)

// writeOutput stores the sorted records, or prints them when no path is set.
func writeOutput(cfg *config.Config, job sortJob, recs *recordio.Records, report *output.Report, stdout io.Writer) error {
	if cfg.Output.Path == "" {
		return recordio.WriteTo(stdout, recordio.Text, job.codec, recs)
	}
	if cfg.Output.Path == recordio.Stdio {
		return recordio.WriteTo(stdout, job.outputFormat, job.codec, recs)
	}

	writeStart := time.Now()
	if err := recordio.Write(cfg.Output.Path, job.outputFormat, job.codec, recs); err != nil {
		return err
	}
	info := output.NewFileInfo(cfg.Output.Path, job.outputFormat, job.codec.Name, recs)
	if st, err := os.Stat(cfg.Output.Path); err == nil {
		info.Bytes = int(st.Size())
	}
	report.Output = &info
	klog.Infof("wrote %s in %v", cfg.Output.Path, time.Since(writeStart))
	return nil
}

func writeReport(cfg *config.Config, report *output.Report, compact bool) error {
	if cfg.Output.Report == "" {
		return nil
	}
	data, err := marshalReport(report, compact)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.Output.Report, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing report %s: %w", cfg.Output.Report, err)
	}
	return nil
}

// executePlan reads the input and reports the passes a sort would run.
func executePlan(cfg *config.Config, outputConfig OutputConfig, stdout io.Writer) error {
	startTime := time.Now()

	job, err := resolveJob(cfg)
	if err != nil {
		return err
	}
	recs, err := readInput(cfg, job)
	if err != nil {
		return err
	}

	plan, err := radix.NewPlan(recs.Data, recs.Width, job.radixConfig)
	if err != nil {
		return err
	}

	report := output.NewReport("plan", startTime)
	report.Input = output.NewFileInfo(cfg.Input.Path, job.inputFormat, job.codec.Name, recs)
	report.SetPlan(plan)
	if plan.Passes() == 0 {
		report.AddWarning("already_sorted", "all records are identical or there are fewer than two", recs.Len())
	}
	report.UpdateDuration(startTime)

	return outputResult(stdout, report, outputConfig)
}

// createConfigFromCLI converts flag values into config.Config
func createConfigFromCLI(input, inputFormat, key string, width int, outputPath, outputFormat string,
	digitWidth int, byteOrder, memoryLimit, report, plotPath string, compact bool) (*config.Config, error) {

	sortConfig, err := config.NewSortConfig(digitWidth, byteOrder, memoryLimit)
	if err != nil {
		return nil, err
	}

	return &config.Config{
		Sort: sortConfig,
		Input: &config.InputConfig{
			Path:   input,
			Format: inputFormat,
			Key:    key,
			Width:  width,
		},
		Output: &config.OutputConfig{
			Path:     outputPath,
			Format:   outputFormat,
			Report:   report,
			PlotPath: plotPath,
			Compact:  compact,
		},
	}, nil
}

// ============================================================================
// OUTPUT FUNCTIONS - Unified output handling
// ============================================================================

func marshalReport(report *output.Report, compact bool) ([]byte, error) {
	if compact {
		return report.ToCompactJSON()
	}
	return report.ToJSON()
}

// outputResult is the unified output function that handles all output formats
func outputResult(w io.Writer, report *output.Report, outputConfig OutputConfig) error {
	if outputConfig.Plain {
		return output.WritePlain(w, report)
	}

	jsonBytes, err := marshalReport(report, outputConfig.Compact)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
