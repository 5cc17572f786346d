package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	cli "github.com/urfave/cli/v2"

	"github.com/ChristianF88/recsort/config"
	"github.com/ChristianF88/recsort/keys"
	"github.com/ChristianF88/recsort/recordio"
	"github.com/ChristianF88/recsort/version"
)

func init() {
	// urfave's default version flag aliases "v", which belongs to klog verbosity.
	cli.VersionFlag = &cli.BoolFlag{
		Name:  "version",
		Usage: "print the version",
	}
}

// parseDate attempts to parse the build date
func parseDate(d string) time.Time {
	t, err := time.Parse(time.RFC3339, d)
	if err != nil {
		return time.Now()
	}
	return t
}

// Shared flag definitions to eliminate duplication
var (
	// Configuration flags
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to configuration file (mutually exclusive with input, output and sort flags)",
	}

	// Input flags
	inputFlag = &cli.StringFlag{
		Name:  "input",
		Usage: "Path to the record file ('-' for stdin, '.zst' is decompressed)",
	}
	inputFormatFlag = &cli.StringFlag{
		Name:  "inputFormat",
		Usage: "Input layout: text (one value per line) or binary (packed records)",
		Value: "text",
	}
	keyFlag = &cli.StringFlag{
		Name:  "key",
		Usage: "Record codec: " + strings.Join(keys.Names(), ", "),
		Value: "uint32",
	}
	widthFlag = &cli.IntFlag{
		Name:  "width",
		Usage: "Record width in bytes, required for the raw and hex codecs",
	}

	// Sort flags
	digitWidthFlag = &cli.IntFlag{
		Name:  "digitWidth",
		Usage: "Bytes per radix digit (1-8)",
		Value: 1,
	}
	byteOrderFlag = &cli.StringFlag{
		Name:  "byteOrder",
		Usage: "Which end of a record is most significant: big or little",
		Value: "big",
	}
	memoryLimitFlag = &cli.StringFlag{
		Name:  "memoryLimit",
		Usage: "Upper bound for bucket storage (e.g., '256MiB'). Unlimited if not provided.",
	}

	// Output flags
	outputFlag = &cli.StringFlag{
		Name:  "output",
		Usage: "Path for the sorted records. If not provided, values are printed one per line.",
	}
	outputFormatFlag = &cli.StringFlag{
		Name:  "outputFormat",
		Usage: "Output layout: text or binary",
		Value: "text",
	}
	reportFlag = &cli.StringFlag{
		Name:  "report",
		Usage: "Path where to save the JSON report",
	}
	plotPathFlag = &cli.StringFlag{
		Name:  "plotPath",
		Usage: "Path where to save the bucket heatmap (e.g., '/path/to/buckets.html'). If not provided, no plot will be generated.",
	}
	compactFlag = &cli.BoolFlag{
		Name:  "compact",
		Usage: "Output compact JSON (no pretty printing)",
		Value: false,
	}
	plainFlag = &cli.BoolFlag{
		Name:  "plain",
		Usage: "Output plain text format for easy readability",
		Value: false,
	}
	verifyFlag = &cli.BoolFlag{
		Name:  "verify",
		Usage: "Check that the output is a sorted permutation of the input",
		Value: false,
	}
	progressFlag = &cli.BoolFlag{
		Name:  "progress",
		Usage: "Show a progress bar on stderr, one step per pass",
		Value: false,
	}
	tuiFlag = &cli.BoolFlag{
		Name:  "tui",
		Usage: "Browse the passes in a TUI (Terminal User Interface) after sorting",
		Value: false,
	}
)

// outputModeFlags are accepted together with --config.
var outputModeFlags = []string{"compact", "plain", "verify", "progress", "tui"}

// Shared validation functions
func validateConfigModeFlags(c *cli.Context, allowedFlags []string) error {
	// Create a map for quick lookup of allowed flags
	allowed := make(map[string]bool)
	for _, flag := range allowedFlags {
		allowed[flag] = true
	}

	// Check all possible flags
	flagsToCheck := []string{
		"input", "inputFormat", "key", "width", "output", "outputFormat",
		"digitWidth", "byteOrder", "memoryLimit", "report", "plotPath",
		"compact", "plain", "verify", "progress", "tui",
	}

	for _, flag := range flagsToCheck {
		if c.IsSet(flag) && !allowed[flag] {
			return fmt.Errorf("when using --config, only %v flags are allowed", allowedFlags)
		}
	}
	return nil
}

func validatePlotPath(plotPath string) error {
	if plotPath != "" {
		plotDir := filepath.Dir(plotPath)
		if plotDir == "." {
			plotDir, _ = os.Getwd()
		}
		if _, err := os.Stat(plotDir); os.IsNotExist(err) {
			return fmt.Errorf("plot directory does not exist: %s", plotDir)
		}
	}
	return nil
}

func validateOutputFlags(outputConfig OutputConfig, cfg *config.Config) error {
	if outputConfig.TUI && outputConfig.Plain {
		return fmt.Errorf("--tui and --plain cannot be combined")
	}
	if outputConfig.TUI && (cfg.Output.Path == "" || cfg.Output.Path == recordio.Stdio) {
		return fmt.Errorf("--tui needs --output, the terminal is used by the viewer")
	}
	return nil
}

func outputConfigFromFlags(c *cli.Context) OutputConfig {
	return OutputConfig{
		Compact:  c.Bool("compact"),
		Plain:    c.Bool("plain"),
		TUI:      c.Bool("tui"),
		Verify:   c.Bool("verify"),
		Progress: c.Bool("progress"),
	}
}

// loadConfigMode loads and validates the config file named by --config.
func loadConfigMode(c *cli.Context, configPath string) (*config.Config, error) {
	// Validate only allowed flags in config mode
	if err := validateConfigModeFlags(c, outputModeFlags); err != nil {
		return nil, err
	}

	// Load and validate config
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validatePlotPath(cfg.Output.PlotPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFlagsMode builds the same configuration from CLI flags.
func loadFlagsMode(c *cli.Context) (*config.Config, error) {
	// Validate required flags
	if !c.IsSet("input") {
		return nil, fmt.Errorf("input is required when not using --config")
	}

	cfg, err := createConfigFromCLI(
		c.String("input"),
		c.String("inputFormat"),
		c.String("key"),
		c.Int("width"),
		c.String("output"),
		c.String("outputFormat"),
		c.Int("digitWidth"),
		c.String("byteOrder"),
		c.String("memoryLimit"),
		c.String("report"),
		c.String("plotPath"),
		c.Bool("compact"),
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := validatePlotPath(cfg.Output.PlotPath); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Command handler functions to reduce deep nesting

// handleSortCommand processes the sort command with proper separation of concerns
func handleSortCommand(c *cli.Context) error {
	var cfg *config.Config
	var err error

	if configPath := c.String("config"); configPath != "" {
		cfg, err = loadConfigMode(c, configPath)
	} else {
		cfg, err = loadFlagsMode(c)
	}
	if err != nil {
		return err
	}

	outputConfig := outputConfigFromFlags(c)
	if err := validateOutputFlags(outputConfig, cfg); err != nil {
		return err
	}

	// Use unified sort interface
	return SortFromConfig(c.Context, cfg, outputConfig)
}

// handlePlanCommand processes the plan command
func handlePlanCommand(c *cli.Context) error {
	var cfg *config.Config
	var err error

	if configPath := c.String("config"); configPath != "" {
		cfg, err = loadConfigMode(c, configPath)
	} else {
		cfg, err = loadFlagsMode(c)
	}
	if err != nil {
		return err
	}

	return PlanFromConfig(cfg, outputConfigFromFlags(c))
}

var App = &cli.App{
	Name:     "recsort",
	Usage:    "Sort files of fixed-width records with an LSD radix sort",
	Version:  version.Version,
	Compiled: parseDate(version.Date),
	Flags:    newKlogFlags(),
	Commands: []*cli.Command{
		{
			Name:  "sort",
			Usage: "Sort a record file",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// Input flags
				inputFlag,
				inputFormatFlag,
				keyFlag,
				widthFlag,
				// Sort flags
				digitWidthFlag,
				byteOrderFlag,
				memoryLimitFlag,
				// Output flags
				outputFlag,
				outputFormatFlag,
				reportFlag,
				plotPathFlag,
				compactFlag,
				plainFlag,
				verifyFlag,
				progressFlag,
				tuiFlag,
			},
			Action: handleSortCommand,
		},
		{
			Name:  "plan",
			Usage: "Show the significant bytes and digit passes a sort would use, without sorting",
			Flags: []cli.Flag{
				// Configuration
				configFlag,
				// Input flags
				inputFlag,
				inputFormatFlag,
				keyFlag,
				widthFlag,
				// Sort flags
				digitWidthFlag,
				byteOrderFlag,
				// Output flags
				compactFlag,
				plainFlag,
			},
			Action: handlePlanCommand,
		},
	},
}
