package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChristianF88/recsort/config"
	"github.com/ChristianF88/recsort/output"
	"github.com/ChristianF88/recsort/radix"
	"github.com/ChristianF88/recsort/testutil"
)

// runApp runs the CLI and returns what it printed on stdout.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	var capturedOutput bytes.Buffer
	done := make(chan bool)
	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := r.Read(buf)
			if err != nil {
				break
			}
			capturedOutput.Write(buf[:n])
		}
		done <- true
	}()

	runErr := App.Run(append([]string{"recsort"}, args...))

	w.Close()
	os.Stdout = oldStdout
	<-done
	return capturedOutput.String(), runErr
}

func TestSortCommandValidation(t *testing.T) {
	input := testutil.WriteTextRecords(t, "values.txt", []string{"4", "1", "8449", "0"})
	configPath := filepath.Join(t.TempDir(), "recsort.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[input]\npath = \""+input+"\"\nkey = \"uint32\"\n"), 0644))

	tests := []struct {
		name       string
		args       []string
		errorMatch string
	}{
		{
			name:       "Missing input",
			args:       []string{"sort", "--key", "uint32"},
			errorMatch: "input is required",
		},
		{
			name:       "Nonexistent input",
			args:       []string{"sort", "--input", "/nonexistent/values.txt"},
			errorMatch: "does not exist",
		},
		{
			name:       "Unknown key",
			args:       []string{"sort", "--input", input, "--key", "uint128"},
			errorMatch: "unknown key codec",
		},
		{
			name:       "Digit width zero",
			args:       []string{"sort", "--input", input, "--digitWidth", "0"},
			errorMatch: "invalid radix width",
		},
		{
			name:       "Digit width too large",
			args:       []string{"sort", "--input", input, "--digitWidth", "9"},
			errorMatch: "invalid radix width",
		},
		{
			name:       "Invalid memory limit",
			args:       []string{"sort", "--input", input, "--memoryLimit", "plenty"},
			errorMatch: "invalid memoryLimit",
		},
		{
			name:       "Plot directory missing",
			args:       []string{"sort", "--input", input, "--plotPath", "/nonexistent/dir/plot.html"},
			errorMatch: "plot directory does not exist",
		},
		{
			name:       "Config with input flags",
			args:       []string{"sort", "--config", configPath, "--digitWidth", "2"},
			errorMatch: "when using --config",
		},
		{
			name:       "TUI without output file",
			args:       []string{"sort", "--input", input, "--tui"},
			errorMatch: "--tui needs --output",
		},
		{
			name:       "TUI and plain",
			args:       []string{"sort", "--input", input, "--tui", "--plain", "--output", filepath.Join(t.TempDir(), "o.txt")},
			errorMatch: "cannot be combined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runApp(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMatch)
		})
	}
}

func TestSortCommandPrintsValues(t *testing.T) {
	input := testutil.WriteTextRecords(t, "values.txt", []string{"4", "1", "8449", "0"})

	out, err := runApp(t, "sort", "--input", input, "--key", "uint32")
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n4\n8449\n", out)
}

func TestHelpAndVersion(t *testing.T) {
	var buf bytes.Buffer
	oldWriter := App.Writer
	if oldWriter == nil {
		oldWriter = os.Stdout
	}
	App.Writer = &buf
	defer func() { App.Writer = oldWriter }()

	require.NoError(t, App.Run([]string{"recsort", "--help"}))
	assert.Contains(t, buf.String(), "sort")
	assert.Contains(t, buf.String(), "--version")

	buf.Reset()
	require.NoError(t, App.Run([]string{"recsort", "--version"}))
	assert.Contains(t, buf.String(), "recsort version")

	buf.Reset()
	require.NoError(t, App.Run([]string{"recsort", "sort", "--help"}))
	assert.Contains(t, buf.String(), "--digitWidth")
}

func TestVerbosityFlag(t *testing.T) {
	input := testutil.WriteTextRecords(t, "values.txt", []string{"3", "2", "1"})

	out, err := runApp(t, "--v", "2", "sort", "--input", input, "--key", "uint8")
	require.NoError(t, err)
	assert.Equal(t, "1\n2\n3\n", out)
}

func TestSortCommandLittleEndianSignificance(t *testing.T) {
	input := testutil.WriteTextRecords(t, "values.txt", []string{"00000004", "00000001", "00002101", "00000000"})

	out, err := runApp(t, "sort", "--input", input, "--key", "hex", "--width", "4", "--byteOrder", "little")
	require.NoError(t, err)
	assert.Equal(t, "00000000\n00000001\n00002101\n00000004\n", out)
}

func TestSortCommandWithConfig(t *testing.T) {
	dir := t.TempDir()
	input := testutil.WriteTextRecords(t, "values.txt", []string{"-5", "3", "-70000", "0"})
	outPath := filepath.Join(dir, "sorted.txt.zst")
	reportPath := filepath.Join(dir, "report.json")
	plotPath := filepath.Join(dir, "plot.html")

	configContent := `
[sort]
digitWidth = 2
memoryLimit = "1MiB"

[input]
path = "` + input + `"
key = "int32"

[output]
path = "` + outPath + `"
report = "` + reportPath + `"
plotPath = "` + plotPath + `"
`
	configPath := filepath.Join(dir, "recsort.toml")
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0644))

	out, err := runApp(t, "sort", "--config", configPath, "--verify", "--compact")
	require.NoError(t, err)

	var report output.Report
	require.NoError(t, jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.Input.Records)
	assert.Equal(t, 2, report.Sort.DigitWidth)
	assert.Equal(t, "1MiB", report.Sort.MemoryLimit)
	require.NotNil(t, report.Verification)
	assert.True(t, report.Verification.OK())
	require.NotNil(t, report.Output)
	assert.Equal(t, outPath, report.Output.Path)

	for _, path := range []string{outPath, reportPath, plotPath} {
		_, err := os.Stat(path)
		assert.NoError(t, err, "expected %s to exist", path)
	}
}

func TestPlanCommand(t *testing.T) {
	values := make([]string, 100)
	for i := range values {
		values[i] = strconv.Itoa(0xABCD00 + i) // only the last byte varies
	}
	input := testutil.WriteTextRecords(t, "values.txt", values)

	out, err := runApp(t, "plan", "--input", input, "--key", "uint32", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "1 significant byte(s), 1 pass(es)")
	assert.Contains(t, out, "pass 0: bytes 3-3")
}

func TestExecuteSortMemoryLimitExceeded(t *testing.T) {
	values := testutil.RandomUint32Values(42, 5000)
	input := testutil.WriteTextRecords(t, "values.txt", values)

	cfg, err := createConfigFromCLI(input, "text", "uint32", 0, "", "text", 1, "big", "256B", "", "", false)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	var stdout bytes.Buffer
	err = executeSort(context.Background(), cfg, OutputConfig{}, &stdout)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allocation")
	assert.Empty(t, stdout.String())
}

func TestExecuteSortCancelled(t *testing.T) {
	input := testutil.WriteTextRecords(t, "values.txt", testutil.RandomUint32Values(1, 100))
	cfg, err := createConfigFromCLI(input, "text", "uint32", 0, "", "text", 1, "big", "", "", "", false)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = executeSort(ctx, cfg, OutputConfig{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExecuteSortBinaryRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(input, testutil.RandomRecords(7, 1000, 6), 0644))
	outPath := filepath.Join(dir, "out.bin")

	cfg, err := createConfigFromCLI(input, "binary", "raw", 6, outPath, "binary", 3, "big", "", "", "", true)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	var stdout bytes.Buffer
	require.NoError(t, executeSort(context.Background(), cfg, OutputConfig{Verify: true, Plain: true}, &stdout))
	assert.Contains(t, stdout.String(), "Verify:  OK")

	sorted, err := os.ReadFile(outPath)
	require.NoError(t, err)
	require.Len(t, sorted, 6000)
	for i := 6; i < len(sorted); i += 6 {
		assert.LessOrEqual(t, bytes.Compare(sorted[i-6:i], sorted[i:i+6]), 0)
	}
}

func TestCreateConfigFromCLI(t *testing.T) {
	cfg, err := createConfigFromCLI("in.txt", "text", "ipv4", 0, "out.txt", "binary", 2, "little", "64KiB", "r.json", "p.html", true)
	require.NoError(t, err)

	assert.Equal(t, &config.InputConfig{Path: "in.txt", Format: "text", Key: "ipv4"}, cfg.Input)
	assert.Equal(t, "binary", cfg.Output.Format)
	assert.True(t, cfg.Output.Compact)
	assert.Equal(t, uint64(64<<10), cfg.MemoryLimitBytes())
}

func TestCreateConfigFromCLIZeroDigitWidth(t *testing.T) {
	cfg, err := createConfigFromCLI("-", "text", "uint32", 0, "", "text", 0, "big", "", "", "", false)
	require.NoError(t, err)

	_, err = cfg.RadixConfig()
	assert.ErrorIs(t, err, radix.ErrInvalidRadixWidth)
	assert.ErrorIs(t, cfg.Validate(), radix.ErrInvalidRadixWidth)
}

func TestCLIFlags(t *testing.T) {
	sortCmd := App.Commands[0]

	expectedFlags := []string{"config", "input", "inputFormat", "key", "width", "output", "outputFormat",
		"digitWidth", "byteOrder", "memoryLimit", "report", "plotPath", "compact", "plain", "verify", "progress", "tui"}

	for _, expectedFlag := range expectedFlags {
		found := false
		for _, flag := range sortCmd.Flags {
			if flag.Names()[0] == expectedFlag {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected flag '%s' not found in sort command", expectedFlag)
		}
	}
}

func TestParseDate(t *testing.T) {
	d := parseDate("2025-06-30T12:00:00Z")
	assert.Equal(t, 2025, d.Year())
	assert.False(t, parseDate("garbage").IsZero())
	assert.True(t, strings.HasPrefix(App.Name, "recsort"))
}
