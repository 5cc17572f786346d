package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/dustin/go-humanize"

	"github.com/ChristianF88/recsort/keys"
	"github.com/ChristianF88/recsort/radix"
	"github.com/ChristianF88/recsort/recordio"
)

type SortConfig struct {
	DigitWidth  int    `toml:"digitWidth"`
	ByteOrder   string `toml:"byteOrder"`
	MemoryLimit string `toml:"memoryLimit"`

	// Parsed MemoryLimit in bytes, 0 when unlimited
	memoryLimitBytes uint64
}

type InputConfig struct {
	Path   string `toml:"path"`
	Format string `toml:"format"`
	Key    string `toml:"key"`
	Width  int    `toml:"width"`
}

type OutputConfig struct {
	Path     string `toml:"path"`
	Format   string `toml:"format"`
	Report   string `toml:"report"`
	PlotPath string `toml:"plotPath"`
	Compact  bool   `toml:"compact"`
}

type Config struct {
	Sort   *SortConfig   `toml:"sort"`
	Input  *InputConfig  `toml:"input"`
	Output *OutputConfig `toml:"output"`
}

func LoadConfig(configPath string) (*Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(string(configData))
}

// Parse decodes a TOML document. Missing sections are left empty.
func Parse(data string) (*Config, error) {
	var rawConfig map[string]any
	if _, err := toml.Decode(data, &rawConfig); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := &Config{}
	for key, value := range rawConfig {
		section, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%q must be a table", key)
		}
		switch key {
		case "sort":
			sortConfig, err := parseSortConfig(section)
			if err != nil {
				return nil, fmt.Errorf("parsing sort config: %w", err)
			}
			config.Sort = sortConfig
		case "input":
			inputConfig, err := parseInputConfig(section)
			if err != nil {
				return nil, fmt.Errorf("parsing input config: %w", err)
			}
			config.Input = inputConfig
		case "output":
			outputConfig, err := parseOutputConfig(section)
			if err != nil {
				return nil, fmt.Errorf("parsing output config: %w", err)
			}
			config.Output = outputConfig
		default:
			return nil, fmt.Errorf("unknown config section %q", key)
		}
	}

	if config.Sort == nil {
		config.Sort = &SortConfig{DigitWidth: radix.DefaultConfig().DigitWidth}
	}
	if config.Input == nil {
		config.Input = &InputConfig{}
	}
	if config.Output == nil {
		config.Output = &OutputConfig{}
	}

	return config, nil
}

// setString, setInt and setBool copy a key into dst when present and reject
// values of the wrong TOML type.
func setString(m map[string]any, key string, dst *string) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	s, ok := v.(string)
	if !ok {
		return fmt.Errorf("%s must be a string, got %T", key, v)
	}
	*dst = s
	return nil
}

func setInt(m map[string]any, key string, dst *int) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	n, ok := v.(int64)
	if !ok {
		return fmt.Errorf("%s must be an integer, got %T", key, v)
	}
	*dst = int(n)
	return nil
}

func setBool(m map[string]any, key string, dst *bool) error {
	v, ok := m[key]
	if !ok {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		return fmt.Errorf("%s must be a boolean, got %T", key, v)
	}
	*dst = b
	return nil
}

func parseSortConfig(m map[string]any) (*SortConfig, error) {
	config := &SortConfig{DigitWidth: radix.DefaultConfig().DigitWidth}
	if err := setInt(m, "digitWidth", &config.DigitWidth); err != nil {
		return nil, err
	}
	if err := setString(m, "byteOrder", &config.ByteOrder); err != nil {
		return nil, err
	}
	switch v := m["memoryLimit"].(type) {
	case nil:
	case string:
		bytes, err := ParseMemoryLimit(v)
		if err != nil {
			return nil, err
		}
		config.MemoryLimit = v
		config.memoryLimitBytes = bytes
	case int64:
		if v < 0 {
			return nil, fmt.Errorf("memoryLimit must not be negative, got %d", v)
		}
		config.MemoryLimit = humanize.IBytes(uint64(v))
		config.memoryLimitBytes = uint64(v)
	default:
		return nil, fmt.Errorf("memoryLimit must be a size string or a byte count, got %T", v)
	}
	return config, nil
}

func parseInputConfig(m map[string]any) (*InputConfig, error) {
	config := &InputConfig{}
	for _, err := range []error{
		setString(m, "path", &config.Path),
		setString(m, "format", &config.Format),
		setString(m, "key", &config.Key),
		setInt(m, "width", &config.Width),
	} {
		if err != nil {
			return nil, err
		}
	}
	return config, nil
}

func parseOutputConfig(m map[string]any) (*OutputConfig, error) {
	config := &OutputConfig{}
	for _, err := range []error{
		setString(m, "path", &config.Path),
		setString(m, "format", &config.Format),
		setString(m, "report", &config.Report),
		setString(m, "plotPath", &config.PlotPath),
		setBool(m, "compact", &config.Compact),
	} {
		if err != nil {
			return nil, err
		}
	}
	return config, nil
}

// NewSortConfig builds a sort section from flag values.
func NewSortConfig(digitWidth int, byteOrder, memoryLimit string) (*SortConfig, error) {
	bytes, err := ParseMemoryLimit(memoryLimit)
	if err != nil {
		return nil, err
	}
	return &SortConfig{
		DigitWidth:       digitWidth,
		ByteOrder:        byteOrder,
		MemoryLimit:      memoryLimit,
		memoryLimitBytes: bytes,
	}, nil
}

// ParseMemoryLimit parses a human byte size such as "256MiB" or "1GB".
// An empty string means no limit.
func ParseMemoryLimit(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	bytes, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("invalid memoryLimit %q: %w", s, err)
	}
	return bytes, nil
}

// MemoryLimitBytes returns the parsed memory limit, 0 for unlimited.
func (c *Config) MemoryLimitBytes() uint64 {
	if c.Sort == nil {
		return 0
	}
	return c.Sort.memoryLimitBytes
}

// RadixConfig builds the sort configuration. Without a sort section the
// defaults apply; a present digitWidth is taken as given, zero included.
func (c *Config) RadixConfig() (radix.Config, error) {
	cfg := radix.DefaultConfig()
	if c.Sort != nil {
		cfg.DigitWidth = c.Sort.DigitWidth
		order, err := radix.ParseByteOrder(c.Sort.ByteOrder)
		if err != nil {
			return radix.Config{}, err
		}
		cfg.ByteOrder = order
	}
	if err := cfg.Validate(); err != nil {
		return radix.Config{}, err
	}
	return cfg, nil
}

// Codec resolves the input key codec.
func (c *Config) Codec() (keys.Codec, error) {
	return keys.Lookup(c.Input.Key, c.Input.Width)
}

func (c *Config) Validate() error {
	if c.Input == nil || c.Input.Path == "" {
		return fmt.Errorf("path is required in input configuration")
	}
	if c.Input.Key == "" {
		return fmt.Errorf("key is required in input configuration")
	}
	if c.Input.Path != recordio.Stdio {
		if _, err := os.Stat(c.Input.Path); os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", c.Input.Path)
		}
	}
	if _, err := recordio.ParseFormat(c.Input.Format); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if _, err := c.Codec(); err != nil {
		return fmt.Errorf("input: %w", err)
	}
	if c.Output != nil {
		if _, err := recordio.ParseFormat(c.Output.Format); err != nil {
			return fmt.Errorf("output: %w", err)
		}
	}
	if _, err := c.RadixConfig(); err != nil {
		return fmt.Errorf("sort: %w", err)
	}
	return nil
}
